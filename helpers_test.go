package recordbatch

import (
	"context"
	"testing"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/databricks/databricks-recordbatch-go/engine"
	"github.com/databricks/databricks-recordbatch-go/poll"
	"github.com/stretchr/testify/require"
)

var testArrowSchema = arrow.NewSchema([]arrow.Field{
	{Name: "ts", Type: &arrow.TimestampType{Unit: arrow.Millisecond}},
	{Name: "value", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
}, nil)

func newTestSchema(t *testing.T) *Schema {
	s, err := NewSchema([]ColumnSchema{
		{Name: "ts", DataType: TimestampType(arrow.Millisecond, "")},
		{Name: "value", DataType: Float64Type, Nullable: true},
	}, WithTimestampIndex(0))
	require.NoError(t, err)
	return s
}

func makeRecord(mem memory.Allocator, schema *arrow.Schema, ts ...int64) arrow.Record {
	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()

	for _, v := range ts {
		builder.Field(0).(*array.TimestampBuilder).Append(arrow.Timestamp(v))
		builder.Field(1).(*array.Float64Builder).Append(float64(v) / 2)
	}
	return builder.NewRecord()
}

func timestamps(r arrow.Record) []int64 {
	col := r.Column(0).(*array.Timestamp)
	out := make([]int64, col.Len())
	for i := range out {
		out[i] = int64(col.Value(i))
	}
	return out
}

func testContext() *poll.Context {
	return poll.NewContext(context.Background(), nil)
}

// scriptedEngineStream replays a fixed sequence of polls, then reports done.
type scriptedEngineStream struct {
	schema *arrow.Schema
	polls  []poll.Poll[arrow.Record]
	hint   poll.SizeHint
	calls  int
	closed bool
}

var _ engine.Stream = (*scriptedEngineStream)(nil)

func (s *scriptedEngineStream) Schema() *arrow.Schema { return s.schema }

func (s *scriptedEngineStream) PollNext(cx *poll.Context) poll.Poll[arrow.Record] {
	s.calls++
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

func (s *scriptedEngineStream) SizeHint() poll.SizeHint { return s.hint }

func (s *scriptedEngineStream) Close() error {
	s.closed = true
	for _, p := range s.polls {
		if p.Item != nil {
			p.Item.Release()
		}
	}
	s.polls = nil
	return nil
}

// scriptedStream is the internal counterpart of scriptedEngineStream.
type scriptedStream struct {
	schema *Schema
	polls  []poll.Poll[RecordBatch]
	hint   poll.SizeHint
}

var _ Stream = (*scriptedStream)(nil)

func (s *scriptedStream) Schema() *Schema { return s.schema }

func (s *scriptedStream) PollNext(cx *poll.Context) poll.Poll[RecordBatch] {
	if len(s.polls) == 0 {
		return poll.Done[RecordBatch]()
	}
	p := s.polls[0]
	s.polls = s.polls[1:]
	if p.IsPending() {
		cx.Wake()
	}
	return p
}

func (s *scriptedStream) SizeHint() poll.SizeHint { return s.hint }

// delayedFuture reports pending a fixed number of times, then settles.
type delayedFuture struct {
	pendingPolls int
	res          poll.Result[engine.Stream]
	calls        int
	closed       bool
}

func (f *delayedFuture) Poll(cx *poll.Context) (poll.Result[engine.Stream], bool) {
	f.calls++
	if f.calls <= f.pendingPolls {
		cx.Wake()
		return poll.Result[engine.Stream]{}, false
	}
	return f.res, true
}

func (f *delayedFuture) Close() error {
	f.closed = true
	return nil
}
