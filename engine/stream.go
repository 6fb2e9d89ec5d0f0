/*
Package engine defines the query engine side of the record batch adapters: a poll
based stream of arrow records described by an arrow schema, with its own error type.
*/
package engine

import (
	"github.com/apache/arrow/go/v12/arrow"
	"github.com/databricks/databricks-recordbatch-go/poll"
)

// Stream is a single consumer, poll driven sequence of arrow records.
//
// Each record returned by a ready poll is owned by the caller, who must Release it.
// Errors are reported as ready polls with a non-nil Err, which should be an *Error.
type Stream interface {
	// Schema of every record the stream yields. Never blocks.
	Schema() *arrow.Schema

	// PollNext attempts to pull out the next record.
	PollNext(cx *poll.Context) poll.Poll[arrow.Record]

	// SizeHint returns bounds on the number of records left.
	SizeHint() poll.SizeHint
}

// StreamFuture resolves to a Stream, e.g. a remote scan that is still being opened.
type StreamFuture = poll.Future[Stream]
