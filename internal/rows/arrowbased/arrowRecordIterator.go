package arrowbased

import (
	"context"
	"io"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/databricks/databricks-recordbatch-go/engine"
	rberr "github.com/databricks/databricks-recordbatch-go/errors"
	"github.com/databricks/databricks-recordbatch-go/poll"
	"github.com/databricks/databricks-recordbatch-go/rows"
	"github.com/pkg/errors"
)

func NewArrowRecordIterator(ctx context.Context, stream engine.Stream) rows.ArrowBatchIterator {
	if ctx == nil {
		ctx = context.Background()
	}

	ari := arrowRecordIterator{
		ctx:    ctx,
		stream: stream,
	}

	return &ari

}

// arrowRecordIterator implements rows.ArrowBatchIterator on top of an engine.Stream
type arrowRecordIterator struct {
	ctx          context.Context
	stream       engine.Stream
	nextRecord   arrow.Record
	nextErr      error
	nextErrFinal bool // nextErr ends the iteration
	isFinished   bool
}

var _ rows.ArrowBatchIterator = (*arrowRecordIterator)(nil)

// Retrieve the next arrow record
func (ri *arrowRecordIterator) Next() (arrow.Record, error) {
	if !ri.HasNext() {
		// returning EOF indicates that there are no more records to iterate
		return nil, io.EOF
	}

	r, err, final := ri.nextRecord, ri.nextErr, ri.nextErrFinal
	ri.nextRecord, ri.nextErr, ri.nextErrFinal = nil, nil, false

	// nothing more can be read once the context is done
	if err != nil && (final || ri.ctx.Err() != nil) {
		ri.Close()
	}

	return r, err
}

// Indicate whether there are any more records available
func (ri *arrowRecordIterator) HasNext() bool {
	if ri.isFinished {
		return false
	}

	if ri.nextRecord != nil || ri.nextErr != nil {
		return true
	}

	ri.fetchNext()
	return !ri.isFinished
}

// Free any resources associated with this iterator
func (ri *arrowRecordIterator) Close() {
	if !ri.isFinished {
		ri.isFinished = true
		if ri.nextRecord != nil {
			ri.nextRecord.Release()
			ri.nextRecord = nil
		}

		if c, ok := ri.stream.(io.Closer); ok {
			_ = c.Close()
		}
	}
}

// Poll the stream for the next record, waiting while it is pending
func (ri *arrowRecordIterator) fetchNext() {
	p := poll.Block(ri.ctx, ri.stream.PollNext)

	switch {
	case p.IsDone():
		// Reached end of the stream so Close
		ri.Close()
	case p.Err != nil:
		ri.nextErr = p.Err
		// a stream that could not be created yields nothing else
		ri.nextErrFinal = errors.Is(p.Err, rberr.CreateRecordBatchesError)
	default:
		ri.nextRecord = p.Item
	}
}
