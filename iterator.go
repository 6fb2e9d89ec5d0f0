package recordbatch

import (
	"context"

	"github.com/databricks/databricks-recordbatch-go/internal/rows/arrowbased"
	"github.com/databricks/databricks-recordbatch-go/rows"
)

// NewArrowBatchIterator returns a blocking iterator over the arrow records of s.
// Error items of s are returned by Next and iteration may continue after them,
// except for a create record batches error, which ends the iteration.
func NewArrowBatchIterator(ctx context.Context, s Stream) rows.ArrowBatchIterator {
	return arrowbased.NewArrowRecordIterator(ctx, NewEngineStreamAdapter(s))
}
