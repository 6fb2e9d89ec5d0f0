package recordbatch

import (
	"context"
	"fmt"
	"io"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/databricks/databricks-recordbatch-go/engine"
	"github.com/databricks/databricks-recordbatch-go/internal/config"
	rberrint "github.com/databricks/databricks-recordbatch-go/internal/errors"
	"github.com/databricks/databricks-recordbatch-go/logger"
	"github.com/databricks/databricks-recordbatch-go/poll"
	"github.com/databricks/databricks-recordbatch-go/queryctx"
	"github.com/pkg/errors"
)

// EngineStreamAdapter exposes a Stream as an engine.Stream.
type EngineStreamAdapter struct {
	stream Stream
}

var _ engine.Stream = (*EngineStreamAdapter)(nil)

func NewEngineStreamAdapter(stream Stream) *EngineStreamAdapter {
	return &EngineStreamAdapter{stream: stream}
}

func (a *EngineStreamAdapter) Schema() *arrow.Schema {
	return a.stream.Schema().ArrowSchema()
}

func (a *EngineStreamAdapter) PollNext(cx *poll.Context) poll.Poll[arrow.Record] {
	p := a.stream.PollNext(cx)
	switch p.Status {
	case poll.StatusPending:
		return poll.Pending[arrow.Record]()
	case poll.StatusReady:
		if p.Err != nil {
			// the cause describes itself, no context needed
			return poll.Err[arrow.Record](engine.NewExternalError("", p.Err))
		}
		return poll.Item(p.Item.Record())
	default:
		return poll.Done[arrow.Record]()
	}
}

func (a *EngineStreamAdapter) SizeHint() poll.SizeHint {
	return a.stream.SizeHint()
}

// Close closes the wrapped stream if it is an io.Closer.
func (a *EngineStreamAdapter) Close() error {
	return closeIfCloser(a.stream)
}

// StreamAdapter exposes an engine.Stream as a Stream.
type StreamAdapter struct {
	schema *Schema
	stream engine.Stream
}

var _ Stream = (*StreamAdapter)(nil)

// TryNewStreamAdapter converts the schema of stream once. If it cannot be
// converted a schema conversion error is returned and no adapter is created;
// stream is left to the caller in that case.
func TryNewStreamAdapter(ctx context.Context, stream engine.Stream) (*StreamAdapter, error) {
	schema, err := schemaFromArrowContext(ctx, stream.Schema())
	if err != nil {
		logger.WithContext(queryctx.CorrelationIdFromContext(ctx), queryctx.QueryIdFromContext(ctx)).
			Debug().Err(err).Msg("recordbatch: stream adapter schema conversion failed")
		return nil, err
	}

	return &StreamAdapter{schema: schema, stream: stream}, nil
}

func (a *StreamAdapter) Schema() *Schema {
	return a.schema
}

func (a *StreamAdapter) PollNext(cx *poll.Context) poll.Poll[RecordBatch] {
	return pollEngineStream(cx, a.stream, a.schema)
}

func (a *StreamAdapter) SizeHint() poll.SizeHint {
	return a.stream.SizeHint()
}

func (a *StreamAdapter) Close() error {
	return closeIfCloser(a.stream)
}

// pollEngineStream polls s once and wraps the result with schema.
func pollEngineStream(cx *poll.Context, s engine.Stream, schema *Schema) poll.Poll[RecordBatch] {
	p := s.PollNext(cx)
	switch p.Status {
	case poll.StatusPending:
		return poll.Pending[RecordBatch]()
	case poll.StatusReady:
		if p.Err != nil {
			return poll.Err[RecordBatch](rberrint.NewPollStreamError(cx.Context(), p.Err))
		}
		return poll.Item(RecordBatch{schema: schema, record: p.Item})
	default:
		return poll.Done[RecordBatch]()
	}
}

type asyncState int

const (
	asyncUninit asyncState = iota
	asyncInited
)

// AsyncStreamAdapter exposes an engine.Stream that is still being created as a
// Stream. The schema is known up front; the stream future is first polled by the
// first PollNext and its outcome is kept for every later poll.
type AsyncStreamAdapter struct {
	schema *Schema
	cfg    *config.Config

	// context of the latest poll, carries the ids attached to errors
	ctx context.Context

	state asyncState
	// asyncUninit, nil future fails on first poll
	future engine.StreamFuture
	// asyncInited, exactly one of stream and err is set
	stream engine.Stream
	err    error

	failureReported bool
}

var _ Stream = (*AsyncStreamAdapter)(nil)

func NewAsyncStreamAdapter(schema *Schema, future engine.StreamFuture, opts ...AsyncOption) *AsyncStreamAdapter {
	cfg := config.WithDefaults()
	for _, opt := range opts {
		opt(cfg)
	}

	return &AsyncStreamAdapter{
		schema: schema,
		cfg:    cfg,
		ctx:    context.Background(),
		state:  asyncUninit,
		future: future,
	}
}

func (a *AsyncStreamAdapter) Schema() *Schema {
	return a.schema
}

func (a *AsyncStreamAdapter) PollNext(cx *poll.Context) poll.Poll[RecordBatch] {
	a.ctx = cx.Context()
	for {
		switch a.state {
		case asyncUninit:
			if a.future == nil {
				a.state = asyncInited
				a.err = rberrint.NewCreateRecordBatchesError(a.ctx, "stream future is nil", nil)
				continue
			}
			res, ready := a.future.Poll(cx)
			if !ready {
				return poll.Pending[RecordBatch]()
			}
			a.resolve(cx.Context(), res)
			// poll the outcome right away, the future will not wake us again

		case asyncInited:
			if a.err != nil {
				return a.pollFailed()
			}
			return pollEngineStream(cx, a.stream, a.schema)

		default:
			return poll.Done[RecordBatch]()
		}
	}
}

func (a *AsyncStreamAdapter) resolve(ctx context.Context, res poll.Result[engine.Stream]) {
	log := logger.WithContext(queryctx.CorrelationIdFromContext(ctx), queryctx.QueryIdFromContext(ctx))

	a.state = asyncInited
	a.future = nil

	switch {
	case res.Err != nil:
		reason := fmt.Sprintf("read error %v from stream", res.Err)
		a.err = rberrint.NewCreateRecordBatchesError(ctx, reason, res.Err)
		log.Debug().Err(res.Err).Msg("recordbatch: lazy stream failed to resolve")
	case res.Value == nil:
		a.err = rberrint.NewCreateRecordBatchesError(ctx, "read error from stream", errors.New("stream future resolved to nil"))
		log.Debug().Msg("recordbatch: lazy stream resolved to nil")
	default:
		a.stream = res.Value
		log.Trace().Msg("recordbatch: lazy stream resolved")
	}
}

func (a *AsyncStreamAdapter) pollFailed() poll.Poll[RecordBatch] {
	if a.failureReported && a.cfg.ResolutionFailurePolicy == config.ResolutionFailureExhaust {
		return poll.Done[RecordBatch]()
	}
	a.failureReported = true
	return poll.Err[RecordBatch](a.err)
}

// SizeHint is unknown for a lazily created stream, before and after it is created.
func (a *AsyncStreamAdapter) SizeHint() poll.SizeHint {
	return poll.UnknownSize()
}

// Close releases whatever the adapter holds: the pending future or the created stream.
// A stream the future settled with before it was polled again is closed as well.
func (a *AsyncStreamAdapter) Close() error {
	switch a.state {
	case asyncUninit:
		err := a.closeFuture()
		a.future = nil
		a.state = asyncInited
		a.err = rberrint.NewCreateRecordBatchesError(a.ctx, "stream closed before it was created", nil)
		return err
	default:
		return closeIfCloser(a.stream)
	}
}

func (a *AsyncStreamAdapter) closeFuture() error {
	if a.future == nil {
		return nil
	}
	err := closeIfCloser(a.future)

	res, ready := a.future.Poll(poll.NewContext(a.ctx, poll.NoopWaker))
	if ready && res.Value != nil {
		if serr := closeIfCloser(res.Value); err == nil {
			err = serr
		}
	}
	return err
}

func closeIfCloser(v interface{}) error {
	if c, ok := v.(io.Closer); ok && c != nil {
		return c.Close()
	}
	return nil
}
