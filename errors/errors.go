package errors

import "github.com/pkg/errors"

// value to be used with errors.Is() to determine if an error chain contains a schema conversion error
var SchemaConversionError error = errors.New("Schema Conversion Error")

// value to be used with errors.Is() to determine if an error chain contains a failed stream poll
var PollStreamError error = errors.New("Poll Stream Error")

// value to be used with errors.Is() to determine if an error chain contains a failure to create record batches
var CreateRecordBatchesError error = errors.New("Create Record Batches Error")

// value to be used with errors.Is() to determine if an error chain contains invalid record batches
var InvalidBatchError error = errors.New("Invalid Batch Error")

// Base interface for record batch errors
type RecordBatchError interface {
	// Descriptive message describing the error
	Error() string

	// User specified id to track what happens under a request.
	// Appears in log messages as field corrId.  See queryctx.NewContextWithCorrelationId()
	CorrelationId() string

	// Id of the query the failing stream belongs to.
	// Appears in log messages as field queryId.  See queryctx.NewContextWithQueryId()
	QueryId() string

	// Stack trace associated with the error.  May be nil.
	StackTrace() errors.StackTrace

	// Underlying causative error. May be nil.
	Cause() error
}

// A schema has no representation on the other side of an adapter.
type RBSchemaConversionError interface {
	RecordBatchError
}

// The wrapped stream yielded an error item.
type RBPollStreamError interface {
	RecordBatchError
}

// A stream could not be created, e.g. a lazily opened stream failed to resolve.
type RBCreateRecordBatchesError interface {
	RecordBatchError

	// Human readable reason, embeds the underlying failure.
	Reason() string
}
