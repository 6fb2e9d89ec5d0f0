package recordbatch

import (
	"context"

	rberrint "github.com/databricks/databricks-recordbatch-go/internal/errors"
	"github.com/databricks/databricks-recordbatch-go/poll"
	"github.com/databricks/databricks-recordbatch-go/rows"
	"github.com/pkg/errors"
)

// RecordBatches is an in-memory collection of batches sharing one schema.
type RecordBatches struct {
	schema  *Schema
	batches []RecordBatch
}

var _ rows.Rows = (*RecordBatches)(nil)

// NewRecordBatches takes ownership of batches. Every batch must have a schema
// equal to schema.
func NewRecordBatches(schema *Schema, batches []RecordBatch) (*RecordBatches, error) {
	if schema == nil {
		return nil, rberrint.NewInvalidBatchError(context.Background(), rberrint.ErrNilSchema, nil)
	}
	for i := range batches {
		if !schema.Equal(batches[i].Schema()) {
			err := errors.Errorf("batch %d", i)
			return nil, rberrint.NewInvalidBatchError(context.Background(), rberrint.ErrBatchesSchemaMismatch, err)
		}
	}

	return &RecordBatches{schema: schema, batches: batches}, nil
}

func (rb *RecordBatches) Schema() *Schema {
	return rb.schema
}

func (rb *RecordBatches) Len() int {
	return len(rb.batches)
}

func (rb *RecordBatches) NumRows() int64 {
	var n int64
	for i := range rb.batches {
		n += rb.batches[i].NumRows()
	}
	return n
}

// Batches returns the held batches, which stay owned by rb.
func (rb *RecordBatches) Batches() []RecordBatch {
	return rb.batches
}

// Take hands the batches over to the caller and leaves rb empty.
func (rb *RecordBatches) Take() []RecordBatch {
	b := rb.batches
	rb.batches = nil
	return b
}

// AsStream moves the batches into a stream, leaving rb empty.
func (rb *RecordBatches) AsStream() Stream {
	return &memoryStream{schema: rb.schema, batches: rb.Take()}
}

// GetArrowBatches moves the batches into a blocking arrow record iterator.
func (rb *RecordBatches) GetArrowBatches(ctx context.Context) (rows.ArrowBatchIterator, error) {
	return NewArrowBatchIterator(ctx, rb.AsStream()), nil
}

func (rb *RecordBatches) Release() {
	for i := range rb.batches {
		rb.batches[i].Release()
	}
	rb.batches = nil
}

type memoryStream struct {
	schema  *Schema
	batches []RecordBatch
}

func (s *memoryStream) Schema() *Schema {
	return s.schema
}

func (s *memoryStream) PollNext(cx *poll.Context) poll.Poll[RecordBatch] {
	if len(s.batches) == 0 {
		return poll.Done[RecordBatch]()
	}
	b := s.batches[0]
	s.batches[0] = RecordBatch{}
	s.batches = s.batches[1:]
	return poll.Item(b)
}

func (s *memoryStream) SizeHint() poll.SizeHint {
	return poll.ExactSize(len(s.batches))
}

// Close releases the batches that were not polled.
func (s *memoryStream) Close() error {
	for i := range s.batches {
		s.batches[i].Release()
	}
	s.batches = nil
	return nil
}
