package recordbatch

import (
	"context"

	"github.com/databricks/databricks-recordbatch-go/poll"
)

// Collect drains s, blocking the calling goroutine while s is pending.
// On the first error item the batches collected so far are released and the
// error is returned.
func Collect(ctx context.Context, s Stream) ([]RecordBatch, error) {
	var batches []RecordBatch
	for {
		p := poll.Block(ctx, s.PollNext)
		if p.IsDone() {
			return batches, nil
		}
		if p.Err != nil {
			for i := range batches {
				batches[i].Release()
			}
			return nil, p.Err
		}
		batches = append(batches, p.Item)
	}
}

// CollectBatches drains s into a RecordBatches.
func CollectBatches(ctx context.Context, s Stream) (*RecordBatches, error) {
	batches, err := Collect(ctx, s)
	if err != nil {
		return nil, err
	}
	return &RecordBatches{schema: s.Schema(), batches: batches}, nil
}
