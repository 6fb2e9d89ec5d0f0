package recordbatch

import (
	"github.com/databricks/databricks-recordbatch-go/poll"
)

// Stream is a single consumer, poll driven sequence of record batches.
//
// Every batch returned by a ready poll is owned by the caller, who must Release it.
// Polling after exhaustion reports exhaustion again.
type Stream interface {
	// Schema of every batch the stream yields. Never blocks.
	Schema() *Schema

	// PollNext attempts to pull out the next batch.
	PollNext(cx *poll.Context) poll.Poll[RecordBatch]

	// SizeHint returns bounds on the number of batches left.
	SizeHint() poll.SizeHint
}

// NewEmptyStream returns a stream that yields nothing.
func NewEmptyStream(schema *Schema) Stream {
	return emptyStream{schema: schema}
}

type emptyStream struct {
	schema *Schema
}

func (s emptyStream) Schema() *Schema {
	return s.schema
}

func (s emptyStream) PollNext(cx *poll.Context) poll.Poll[RecordBatch] {
	return poll.Done[RecordBatch]()
}

func (s emptyStream) SizeHint() poll.SizeHint {
	return poll.ExactSize(0)
}
