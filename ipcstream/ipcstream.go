/*
Package ipcstream reads and writes engine streams as Arrow IPC streams,
optionally framed with LZ4.
*/
package ipcstream

import (
	"context"
	"io"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/ipc"
	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/databricks/databricks-recordbatch-go/engine"
	"github.com/databricks/databricks-recordbatch-go/internal/config"
	rberrint "github.com/databricks/databricks-recordbatch-go/internal/errors"
	"github.com/databricks/databricks-recordbatch-go/logger"
	"github.com/databricks/databricks-recordbatch-go/poll"
	"github.com/databricks/databricks-recordbatch-go/queryctx"
	"github.com/pierrec/lz4/v4"
)

type options struct {
	cfg       *config.Config
	allocator memory.Allocator
}

type Option func(*options)

// WithLz4Compression frames the IPC stream with LZ4 when reading and writing.
func WithLz4Compression(enabled bool) Option {
	return func(o *options) {
		o.cfg.UseLz4Compression = enabled
	}
}

// WithConfig starts from a copy of cfg instead of the defaults.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		if cfg != nil {
			o.cfg = cfg.DeepCopy()
		}
	}
}

// WithAllocator sets the allocator used for decoded records.
func WithAllocator(mem memory.Allocator) Option {
	return func(o *options) {
		o.allocator = mem
	}
}

func newOptions(opts []Option) *options {
	o := &options{cfg: config.WithDefaults(), allocator: memory.DefaultAllocator}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type compressibleStream struct {
	useLz4Compression bool
}

func (cs compressibleStream) getReader(r io.Reader) io.Reader {
	if cs.useLz4Compression {
		return lz4.NewReader(r)
	}
	return r
}

// NewStream reads the schema message from r and returns a stream over the
// remaining record messages. Records are decoded when polled, so r should not
// block for long.
func NewStream(r io.Reader, opts ...Option) (engine.Stream, error) {
	o := newOptions(opts)
	cs := compressibleStream{useLz4Compression: o.cfg.UseLz4Compression}

	ipcReader, err := ipc.NewReader(cs.getReader(r), ipc.WithAllocator(o.allocator))
	if err != nil {
		return nil, engine.NewError(engine.KindIO, "failed to read arrow ipc schema", err)
	}

	return engine.FromRecordReader(ipcReader), nil
}

// Open starts reading the schema message of r on its own goroutine and returns
// a future resolving to the stream. The future can be handed to
// recordbatch.NewAsyncStreamAdapter. Closing the future waits for a read in
// progress to return, so r should honor cancellation or be bounded.
func Open(ctx context.Context, r io.Reader, opts ...Option) *poll.SpawnedFuture[engine.Stream] {
	return poll.Spawn(ctx, func(ctx context.Context) (engine.Stream, error) {
		s, err := NewStream(r, opts...)
		if err != nil {
			return nil, err
		}
		if ctx.Err() != nil {
			closeStream(s)
			return nil, engine.NewExternalError("open cancelled", ctx.Err())
		}
		return s, nil
	})
}

// Write drains s into w as an Arrow IPC stream, blocking while s is pending.
// It returns the number of rows written. Every record polled from s is released.
func Write(ctx context.Context, w io.Writer, s engine.Stream, opts ...Option) (int64, error) {
	o := newOptions(opts)
	log := logger.WithContext(queryctx.CorrelationIdFromContext(ctx), queryctx.QueryIdFromContext(ctx))

	var lz4Writer *lz4.Writer
	if o.cfg.UseLz4Compression {
		lz4Writer = lz4.NewWriter(w)
		w = lz4Writer
	}

	ipcWriter := ipc.NewWriter(w, ipc.WithSchema(s.Schema()), ipc.WithAllocator(o.allocator))

	var rows int64
	for {
		p := poll.Block(ctx, s.PollNext)
		if p.IsDone() {
			break
		}
		if p.Err != nil {
			closeWriters(ipcWriter, lz4Writer)
			return rows, p.Err
		}

		err := writeRecord(ipcWriter, p.Item)
		if err != nil {
			closeWriters(ipcWriter, lz4Writer)
			return rows, rberrint.WrapErr(err, "failed to write arrow ipc record")
		}
		rows += p.Item.NumRows()
		p.Item.Release()
	}

	if err := ipcWriter.Close(); err != nil {
		closeWriters(nil, lz4Writer)
		return rows, rberrint.WrapErr(err, "failed to close arrow ipc writer")
	}
	if lz4Writer != nil {
		if err := lz4Writer.Close(); err != nil {
			return rows, rberrint.WrapErr(err, "failed to close lz4 writer")
		}
	}

	log.Debug().Int64("rows", rows).Msg("ipcstream: stream written")
	return rows, nil
}

func writeRecord(w *ipc.Writer, r arrow.Record) error {
	if err := w.Write(r); err != nil {
		r.Release()
		return err
	}
	return nil
}

// closeWriters closes whichever writers are set, ignoring their errors.
func closeWriters(ipcWriter *ipc.Writer, lz4Writer *lz4.Writer) {
	if ipcWriter != nil {
		_ = ipcWriter.Close()
	}
	if lz4Writer != nil {
		_ = lz4Writer.Close()
	}
}

func closeStream(s engine.Stream) {
	if c, ok := s.(io.Closer); ok {
		_ = c.Close()
	}
}
