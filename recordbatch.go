package recordbatch

import (
	"context"

	"github.com/apache/arrow/go/v12/arrow"
	rberrint "github.com/databricks/databricks-recordbatch-go/internal/errors"
	"github.com/pkg/errors"
)

// RecordBatch pairs an arrow record with the schema of the stream that produced it.
// The record is not copied; Release drops this batch's reference to it.
type RecordBatch struct {
	schema *Schema
	record arrow.Record
}

// NewRecordBatch checks that record matches schema, column by column, and wraps it.
// The batch takes over the caller's reference to record.
func NewRecordBatch(schema *Schema, record arrow.Record) (RecordBatch, error) {
	ctx := context.Background()
	if schema == nil {
		return RecordBatch{}, rberrint.NewInvalidBatchError(ctx, rberrint.ErrNilSchema, nil)
	}
	if record == nil {
		return RecordBatch{}, rberrint.NewInvalidBatchError(ctx, rberrint.ErrNilRecord, nil)
	}

	if int(record.NumCols()) != schema.NumColumns() {
		err := errors.Errorf("expected %d columns, got %d", schema.NumColumns(), record.NumCols())
		return RecordBatch{}, rberrint.NewInvalidBatchError(ctx, rberrint.ErrBatchSchemaMismatch, err)
	}

	for i := 0; i < schema.NumColumns(); i++ {
		col := schema.Column(i)
		dt, err := DataTypeFromArrow(record.Column(i).DataType())
		if err != nil {
			return RecordBatch{}, rberrint.NewInvalidBatchError(ctx, rberrint.ErrBatchSchemaMismatch, err)
		}
		if !dt.Equal(col.DataType) {
			err := errors.Errorf("column %s: expected %s, got %s", col.Name, col.DataType, dt)
			return RecordBatch{}, rberrint.NewInvalidBatchError(ctx, rberrint.ErrBatchSchemaMismatch, err)
		}
	}

	return RecordBatch{schema: schema, record: record}, nil
}

func (b RecordBatch) Schema() *Schema {
	return b.schema
}

// Record returns the wrapped arrow record without touching its reference count.
func (b RecordBatch) Record() arrow.Record {
	return b.record
}

func (b RecordBatch) NumRows() int64 {
	if b.record == nil {
		return 0
	}
	return b.record.NumRows()
}

func (b RecordBatch) NumColumns() int {
	if b.record == nil {
		return 0
	}
	return int(b.record.NumCols())
}

func (b RecordBatch) Column(i int) arrow.Array {
	return b.record.Column(i)
}

func (b RecordBatch) ColumnByName(name string) (arrow.Array, bool) {
	i, ok := b.schema.ColumnIndexByName(name)
	if !ok {
		return nil, false
	}
	return b.record.Column(i), true
}

func (b RecordBatch) Retain() {
	if b.record != nil {
		b.record.Retain()
	}
}

func (b RecordBatch) Release() {
	if b.record != nil {
		b.record.Release()
	}
}
