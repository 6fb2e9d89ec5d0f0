/*
Package recordbatch implements record batch streams and the adapters that bridge
them to engine streams of plain arrow records.

# Streams

A Stream is a single consumer, poll driven sequence of RecordBatch values. Each
batch pairs an arrow.Record with the *Schema of its stream. Polls are described by
the poll package:

	p := s.PollNext(cx)
	switch {
	case p.IsPending():
		// the waker of cx is called once progress can be made
	case p.IsDone():
		// exhausted, later polls report exhaustion again
	case p.Err != nil:
		// an error item, the stream may still yield more
	default:
		defer p.Item.Release()
	}

Callers that would rather block use Collect, CollectBatches or NewArrowBatchIterator.

# Adapters

Three adapters convert between Stream and engine.Stream:

  - EngineStreamAdapter exposes a Stream as an engine.Stream. Records are passed
    through unchanged and errors are embedded in an engine.Error of kind KindExternal.
  - StreamAdapter exposes an engine.Stream as a Stream. The arrow schema is
    converted once by TryNewStreamAdapter, which fails with a schema conversion
    error if it cannot be converted.
  - AsyncStreamAdapter exposes an engine.Stream that is still being created, given
    as a poll.Future, as a Stream whose schema is known up front.

Example opening an Arrow IPC file lazily:

	f, _ := os.Open("metrics.arrows")
	future := ipcstream.Open(ctx, f)

	s := recordbatch.NewAsyncStreamAdapter(schema, future)
	defer s.Close()

	batches, err := recordbatch.Collect(ctx, s)

If the future fails, every later poll yields the same create record batches error.
Use WithResolutionFailurePolicy(ResolutionFailureExhaust) to report exhaustion after
the first one instead.

# Errors

Errors created by this package implement errors.RecordBatchError and can be
matched with errors.Is against the sentinels of the errors package:

	if errors.Is(err, rberr.SchemaConversionError) {
		...
	}

Error items yielded by a StreamAdapter or AsyncStreamAdapter wrap the engine error
they came from, which stays reachable with errors.As.

# Logging

Logging goes through the logger package. The default level is warn, call
logger.SetLogLevel to change it.
*/
package recordbatch
