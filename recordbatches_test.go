package recordbatch

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/databricks/databricks-recordbatch-go/engine"
	rberr "github.com/databricks/databricks-recordbatch-go/errors"
	"github.com/databricks/databricks-recordbatch-go/ipcstream"
	"github.com/databricks/databricks-recordbatch-go/poll"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecordBatch(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	schema := newTestSchema(t)

	t.Run("wraps a matching record", func(t *testing.T) {
		b, err := NewRecordBatch(schema, makeRecord(mem, testArrowSchema, 1, 2, 3))
		require.NoError(t, err)
		defer b.Release()

		assert.Same(t, schema, b.Schema())
		assert.EqualValues(t, 3, b.NumRows())
		assert.Equal(t, 2, b.NumColumns())
		col, ok := b.ColumnByName("value")
		require.True(t, ok)
		assert.Equal(t, 1.5, col.(*array.Float64).Value(2))
		_, ok = b.ColumnByName("missing")
		assert.False(t, ok)
	})

	t.Run("rejects mismatched records", func(t *testing.T) {
		other := arrow.NewSchema([]arrow.Field{
			{Name: "ts", Type: &arrow.TimestampType{Unit: arrow.Second}},
			{Name: "value", Type: arrow.PrimitiveTypes.Float64},
		}, nil)
		wrongUnit := makeRecord(mem, other, 1)
		defer wrongUnit.Release()

		_, err := NewRecordBatch(schema, wrongUnit)
		assert.True(t, errors.Is(err, rberr.InvalidBatchError))
		assert.ErrorContains(t, err, "record does not match schema")

		narrow, err := NewSchema([]ColumnSchema{{Name: "ts", DataType: TimestampType(arrow.Millisecond, "")}})
		require.NoError(t, err)
		r := makeRecord(mem, testArrowSchema, 1)
		defer r.Release()
		_, err = NewRecordBatch(narrow, r)
		assert.ErrorContains(t, err, "expected 1 columns, got 2")

		_, err = NewRecordBatch(schema, nil)
		assert.ErrorContains(t, err, "record is nil")
		_, err = NewRecordBatch(nil, r)
		assert.ErrorContains(t, err, "schema is nil")
	})

	t.Run("zero batch", func(t *testing.T) {
		var b RecordBatch
		assert.EqualValues(t, 0, b.NumRows())
		assert.Equal(t, 0, b.NumColumns())
		b.Retain()
		b.Release()
	})
}

func newTestBatches(t *testing.T, mem memory.Allocator, schema *Schema, rows ...[]int64) *RecordBatches {
	batches := make([]RecordBatch, len(rows))
	for i, ts := range rows {
		b, err := NewRecordBatch(schema, makeRecord(mem, schema.ArrowSchema(), ts...))
		require.NoError(t, err)
		batches[i] = b
	}
	rb, err := NewRecordBatches(schema, batches)
	require.NoError(t, err)
	return rb
}

func TestRecordBatches(t *testing.T) {

	t.Run("counts rows and batches", func(t *testing.T) {
		mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
		defer mem.AssertSize(t, 0)

		rb := newTestBatches(t, mem, newTestSchema(t), []int64{1, 2}, []int64{3, 4, 5})
		defer rb.Release()

		assert.Equal(t, 2, rb.Len())
		assert.EqualValues(t, 5, rb.NumRows())
		assert.Len(t, rb.Batches(), 2)
	})

	t.Run("rejects batches of another schema", func(t *testing.T) {
		mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
		defer mem.AssertSize(t, 0)

		schema := newTestSchema(t)
		other, err := SchemaFromArrow(testArrowSchema)
		require.NoError(t, err)

		b, err := NewRecordBatch(other, makeRecord(mem, testArrowSchema, 1))
		require.NoError(t, err)
		defer b.Release()

		_, err = NewRecordBatches(schema, []RecordBatch{b})
		assert.True(t, errors.Is(err, rberr.InvalidBatchError))
		assert.ErrorContains(t, err, "record batches have different schemas")

		_, err = NewRecordBatches(nil, nil)
		assert.ErrorContains(t, err, "schema is nil")
	})

	t.Run("as stream moves the batches", func(t *testing.T) {
		mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
		defer mem.AssertSize(t, 0)

		rb := newTestBatches(t, mem, newTestSchema(t), []int64{1}, []int64{2}, []int64{3})
		s := rb.AsStream()
		assert.Equal(t, 0, rb.Len())
		assert.Equal(t, poll.ExactSize(3), s.SizeHint())

		p := s.PollNext(testContext())
		require.True(t, p.IsReady())
		p.Item.Release()
		assert.Equal(t, poll.ExactSize(2), s.SizeHint())

		// the two left are released on close
		assert.Nil(t, s.(io.Closer).Close())
		assert.True(t, s.PollNext(testContext()).IsDone())
	})

	t.Run("arrow batches", func(t *testing.T) {
		mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
		defer mem.AssertSize(t, 0)

		rb := newTestBatches(t, mem, newTestSchema(t), []int64{1, 2}, []int64{3})
		it, err := rb.GetArrowBatches(context.Background())
		require.NoError(t, err)
		defer it.Close()

		var got [][]int64
		for it.HasNext() {
			r, err := it.Next()
			require.NoError(t, err)
			got = append(got, timestamps(r))
			r.Release()
		}
		assert.Equal(t, [][]int64{{1, 2}, {3}}, got)

		_, err = it.Next()
		assert.ErrorIs(t, err, io.EOF)
	})
}

func TestCollect(t *testing.T) {

	t.Run("collects through pending polls", func(t *testing.T) {
		mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
		defer mem.AssertSize(t, 0)

		schema := newTestSchema(t)
		s := &scriptedStream{schema: schema, polls: []poll.Poll[RecordBatch]{
			poll.Pending[RecordBatch](),
			poll.Item(RecordBatch{schema: schema, record: makeRecord(mem, testArrowSchema, 1)}),
			poll.Pending[RecordBatch](),
			poll.Item(RecordBatch{schema: schema, record: makeRecord(mem, testArrowSchema, 2)}),
		}}

		rb, err := CollectBatches(context.Background(), s)
		require.NoError(t, err)
		defer rb.Release()
		assert.Same(t, schema, rb.Schema())
		assert.Equal(t, 2, rb.Len())
		assert.EqualValues(t, 2, rb.NumRows())
	})

	t.Run("releases collected batches on error", func(t *testing.T) {
		mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
		defer mem.AssertSize(t, 0)

		schema := newTestSchema(t)
		cause := errors.New("scan failed")
		s := &scriptedStream{schema: schema, polls: []poll.Poll[RecordBatch]{
			poll.Item(RecordBatch{schema: schema, record: makeRecord(mem, testArrowSchema, 1)}),
			poll.Err[RecordBatch](cause),
		}}

		batches, err := Collect(context.Background(), s)
		assert.Nil(t, batches)
		assert.Equal(t, cause, err)

		_, err = CollectBatches(context.Background(), &scriptedStream{schema: schema, polls: []poll.Poll[RecordBatch]{
			poll.Err[RecordBatch](cause),
		}})
		assert.Equal(t, cause, err)
	})

	t.Run("stops when the context is done", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// never ready and never wakes
		never := poll.FutureFunc[engine.Stream](func(*poll.Context) (poll.Result[engine.Stream], bool) {
			return poll.Result[engine.Stream]{}, false
		})
		_, err := Collect(ctx, NewAsyncStreamAdapter(newTestSchema(t), never))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestEmptyStream(t *testing.T) {
	schema := newTestSchema(t)
	s := NewEmptyStream(schema)
	assert.Same(t, schema, s.Schema())
	assert.Equal(t, poll.ExactSize(0), s.SizeHint())
	assert.True(t, s.PollNext(testContext()).IsDone())
	assert.True(t, s.PollNext(testContext()).IsDone())

	batches, err := Collect(context.Background(), s)
	assert.NoError(t, err)
	assert.Empty(t, batches)

	adapter := NewEngineStreamAdapter(s)
	assert.True(t, adapter.PollNext(testContext()).IsDone())
}

func TestArrowBatchIteratorOverLazyIPCStream(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	var buf bytes.Buffer
	_, err := ipcstream.Write(context.Background(), &buf,
		engine.NewMemoryStream(testArrowSchema,
			makeRecord(mem, testArrowSchema, 10, 20),
			makeRecord(mem, testArrowSchema, 30),
		),
		ipcstream.WithLz4Compression(true), ipcstream.WithAllocator(mem))
	require.NoError(t, err)

	schema, err := SchemaFromArrow(testArrowSchema)
	require.NoError(t, err)

	future := ipcstream.Open(context.Background(), bytes.NewReader(buf.Bytes()),
		ipcstream.WithLz4Compression(true), ipcstream.WithAllocator(mem))
	adapter := NewAsyncStreamAdapter(schema, future)
	defer adapter.Close()

	it := NewArrowBatchIterator(context.Background(), adapter)
	defer it.Close()

	var got [][]int64
	for it.HasNext() {
		r, err := it.Next()
		require.NoError(t, err)
		got = append(got, timestamps(r))
		r.Release()
	}
	assert.Equal(t, [][]int64{{10, 20}, {30}}, got)
}

func TestArrowBatchIteratorOverFailedLazyStream(t *testing.T) {
	cause := errors.New("open scan failed")
	adapter := NewAsyncStreamAdapter(newTestSchema(t), poll.Ready[engine.Stream](nil, cause))

	it := NewArrowBatchIterator(context.Background(), adapter)
	defer it.Close()

	var errs []error
	for it.HasNext() {
		r, err := it.Next()
		assert.Nil(t, r)
		errs = append(errs, err)
		require.Less(t, len(errs), 10)
	}

	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], rberr.CreateRecordBatchesError))
	assert.True(t, errors.Is(errs[0], cause))
}
