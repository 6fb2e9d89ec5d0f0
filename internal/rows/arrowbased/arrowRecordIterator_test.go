package arrowbased

import (
	"context"
	"io"
	"testing"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/databricks/databricks-recordbatch-go/engine"
	rberr "github.com/databricks/databricks-recordbatch-go/errors"
	rberrint "github.com/databricks/databricks-recordbatch-go/internal/errors"
	"github.com/databricks/databricks-recordbatch-go/poll"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

var testSchema = arrow.NewSchema([]arrow.Field{
	{Name: "id", Type: arrow.PrimitiveTypes.Int32},
	{Name: "name", Type: arrow.BinaryTypes.String},
}, nil)

func makeRecord(mem memory.Allocator, n int) arrow.Record {
	builder := array.NewRecordBuilder(mem, testSchema)
	defer builder.Release()

	for i := 0; i < n; i++ {
		builder.Field(0).(*array.Int32Builder).Append(int32(i))
		builder.Field(1).(*array.StringBuilder).Append("row")
	}
	return builder.NewRecord()
}

// yields from a script of polls, waking the caller before each pending
type scriptedStream struct {
	polls []poll.Poll[arrow.Record]
}

func (s *scriptedStream) Schema() *arrow.Schema { return testSchema }

func (s *scriptedStream) PollNext(cx *poll.Context) poll.Poll[arrow.Record] {
	if len(s.polls) == 0 {
		return poll.Done[arrow.Record]()
	}
	p := s.polls[0]
	s.polls = s.polls[1:]
	if p.IsPending() {
		cx.Wake()
	}
	return p
}

func (s *scriptedStream) SizeHint() poll.SizeHint { return poll.UnknownSize() }

func TestArrowRecordIterator(t *testing.T) {

	t.Run("iterates all records of a stream", func(t *testing.T) {
		mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
		defer mem.AssertSize(t, 0)

		rs := NewArrowRecordIterator(
			context.Background(),
			engine.NewMemoryStream(testSchema, makeRecord(mem, 3), makeRecord(mem, 2)),
		)
		defer rs.Close()

		hasNext := rs.HasNext()
		assert.True(t, hasNext)
		r, err := rs.Next()
		assert.Nil(t, err)
		assert.EqualValues(t, 3, r.NumRows())
		r.Release()

		hasNext = rs.HasNext()
		assert.True(t, hasNext)
		r2, err := rs.Next()
		assert.Nil(t, err)
		assert.EqualValues(t, 2, r2.NumRows())
		r2.Release()

		hasNext = rs.HasNext()
		assert.False(t, hasNext)
		r3, err := rs.Next()
		assert.Nil(t, r3)
		assert.ErrorContains(t, err, io.EOF.Error())
	})

	t.Run("waits through pending polls", func(t *testing.T) {
		mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
		defer mem.AssertSize(t, 0)

		rs := NewArrowRecordIterator(context.Background(), &scriptedStream{polls: []poll.Poll[arrow.Record]{
			poll.Pending[arrow.Record](),
			poll.Pending[arrow.Record](),
			poll.Item(makeRecord(mem, 1)),
		}})
		defer rs.Close()

		r, err := rs.Next()
		assert.Nil(t, err)
		assert.EqualValues(t, 1, r.NumRows())
		r.Release()

		assert.False(t, rs.HasNext())
	})

	t.Run("returns error items and keeps going", func(t *testing.T) {
		mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
		defer mem.AssertSize(t, 0)

		cause := errors.New("bad page")
		rs := NewArrowRecordIterator(context.Background(), &scriptedStream{polls: []poll.Poll[arrow.Record]{
			poll.Err[arrow.Record](cause),
			poll.Item(makeRecord(mem, 4)),
		}})
		defer rs.Close()

		assert.True(t, rs.HasNext())
		r, err := rs.Next()
		assert.Nil(t, r)
		assert.ErrorIs(t, err, cause)

		assert.True(t, rs.HasNext())
		r, err = rs.Next()
		assert.Nil(t, err)
		assert.EqualValues(t, 4, r.NumRows())
		r.Release()

		assert.False(t, rs.HasNext())
	})

	t.Run("stops after a stream creation error", func(t *testing.T) {
		createErr := rberrint.NewCreateRecordBatchesError(context.Background(), "read error from stream", errors.New("no such file"))
		s := &repeatingErrorStream{err: engine.NewExternalError("", createErr)}
		rs := NewArrowRecordIterator(context.Background(), s)
		defer rs.Close()

		assert.True(t, rs.HasNext())
		r, err := rs.Next()
		assert.Nil(t, r)
		assert.ErrorIs(t, err, rberr.CreateRecordBatchesError)

		assert.False(t, rs.HasNext())
		_, err = rs.Next()
		assert.Equal(t, io.EOF, err)
		assert.Equal(t, 1, s.polls)
		assert.True(t, s.closed)
	})

	t.Run("close releases the stream", func(t *testing.T) {
		mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
		defer mem.AssertSize(t, 0)

		rs := NewArrowRecordIterator(
			context.Background(),
			engine.NewMemoryStream(testSchema, makeRecord(mem, 1), makeRecord(mem, 1)),
		)

		// loads the first record into the iterator
		assert.True(t, rs.HasNext())
		rs.Close()

		assert.False(t, rs.HasNext())
		_, err := rs.Next()
		assert.Equal(t, io.EOF, err)
	})

	t.Run("stops when the context is done", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		rs := NewArrowRecordIterator(ctx, neverReadyStream{})
		defer rs.Close()

		_, err := rs.Next()
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, rs.HasNext())
	})
}

// pending forever and never wakes
type neverReadyStream struct{}

func (neverReadyStream) Schema() *arrow.Schema { return testSchema }

func (neverReadyStream) PollNext(*poll.Context) poll.Poll[arrow.Record] {
	return poll.Pending[arrow.Record]()
}

func (neverReadyStream) SizeHint() poll.SizeHint { return poll.UnknownSize() }

// yields the same error on every poll
type repeatingErrorStream struct {
	err    error
	polls  int
	closed bool
}

func (s *repeatingErrorStream) Schema() *arrow.Schema { return testSchema }

func (s *repeatingErrorStream) PollNext(*poll.Context) poll.Poll[arrow.Record] {
	s.polls++
	return poll.Err[arrow.Record](s.err)
}

func (s *repeatingErrorStream) SizeHint() poll.SizeHint { return poll.UnknownSize() }

func (s *repeatingErrorStream) Close() error {
	s.closed = true
	return nil
}
