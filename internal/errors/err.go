package errors

import (
	"context"
	"fmt"

	rberr "github.com/databricks/databricks-recordbatch-go/errors"
	"github.com/databricks/databricks-recordbatch-go/queryctx"
	"github.com/pkg/errors"
)

// Error messages
const (
	ErrSchemaConversion = "failed to convert schema"
	ErrPollStream       = "failed to poll stream"
	ErrCreateBatches    = "failed to create record batches"

	ErrUnsupportedArrowType   = "unsupported arrow data type"
	ErrDuplicateColumn        = "duplicate column name"
	ErrInvalidTimestampIndex  = "invalid timestamp index"
	ErrInvalidSchemaVersion   = "invalid schema version"
	ErrBatchSchemaMismatch    = "record does not match schema"
	ErrBatchesSchemaMismatch  = "record batches have different schemas"
	ErrNilSchema              = "schema is nil"
	ErrNilRecord              = "record is nil"
	ErrStreamSchemaConversion = "failed to convert stream schema"
)

type recordBatchError struct {
	err           error
	correlationId string
	queryId       string
	errType       string
}

var _ error = (*recordBatchError)(nil)

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func newRecordBatchError(ctx context.Context, msg string, err error) recordBatchError {
	// create an error with the new message
	if err == nil {
		err = errors.New(msg)
	} else {
		err = errors.WithMessage(err, msg)
	}

	// if the source error does not have a stack trace in its
	// error chain add a stack trace
	var st stackTracer
	if ok := errors.As(err, &st); !ok {
		err = errors.WithStack(err)
	}

	return recordBatchError{
		err:           err,
		correlationId: queryctx.CorrelationIdFromContext(ctx),
		queryId:       queryctx.QueryIdFromContext(ctx),
		errType:       "unknown",
	}
}

func (e recordBatchError) Error() string {
	return fmt.Sprintf("recordbatch: %s: %s", e.errType, e.err.Error())
}

func (e recordBatchError) Cause() error {
	return e.err
}

func (e recordBatchError) StackTrace() errors.StackTrace {
	var st stackTracer
	if ok := errors.As(e.err, &st); ok {
		return st.StackTrace()
	}

	return nil
}

func (e recordBatchError) CorrelationId() string {
	return e.correlationId
}

func (e recordBatchError) QueryId() string {
	return e.queryId
}

// schemaConversionError is raised when a schema has no valid target representation
type schemaConversionError struct {
	recordBatchError
}

var _ rberr.RBSchemaConversionError = (*schemaConversionError)(nil)

func (e schemaConversionError) Is(err error) bool {
	return err == rberr.SchemaConversionError
}

func (e schemaConversionError) Unwrap() error {
	return e.err
}

func NewSchemaConversionError(ctx context.Context, msg string, err error) *schemaConversionError {
	rbErr := newRecordBatchError(ctx, msg, err)
	rbErr.errType = "schema conversion error"
	return &schemaConversionError{recordBatchError: rbErr}
}

// pollStreamError wraps an error item yielded by an adapted stream
type pollStreamError struct {
	recordBatchError
}

var _ rberr.RBPollStreamError = (*pollStreamError)(nil)

func (e pollStreamError) Is(err error) bool {
	return err == rberr.PollStreamError
}

func (e pollStreamError) Unwrap() error {
	return e.err
}

func NewPollStreamError(ctx context.Context, err error) *pollStreamError {
	rbErr := newRecordBatchError(ctx, ErrPollStream, err)
	rbErr.errType = "poll stream error"
	return &pollStreamError{recordBatchError: rbErr}
}

// createRecordBatchesError reports a stream that could not be created
type createRecordBatchesError struct {
	recordBatchError
	reason string
}

var _ rberr.RBCreateRecordBatchesError = (*createRecordBatchesError)(nil)

func (e createRecordBatchesError) Is(err error) bool {
	return err == rberr.CreateRecordBatchesError
}

func (e createRecordBatchesError) Unwrap() error {
	return e.err
}

func (e createRecordBatchesError) Reason() string {
	return e.reason
}

func NewCreateRecordBatchesError(ctx context.Context, reason string, err error) *createRecordBatchesError {
	rbErr := newRecordBatchError(ctx, reason, err)
	rbErr.errType = "create record batches error"
	return &createRecordBatchesError{recordBatchError: rbErr, reason: reason}
}

// invalidBatchError reports a record or batch collection that does not match its schema
type invalidBatchError struct {
	recordBatchError
}

var _ rberr.RecordBatchError = (*invalidBatchError)(nil)

func (e invalidBatchError) Is(err error) bool {
	return err == rberr.InvalidBatchError
}

func (e invalidBatchError) Unwrap() error {
	return e.err
}

func NewInvalidBatchError(ctx context.Context, msg string, err error) *invalidBatchError {
	rbErr := newRecordBatchError(ctx, msg, err)
	rbErr.errType = "invalid batch error"
	return &invalidBatchError{recordBatchError: rbErr}
}

// wraps an error and adds trace if not already present
func WrapErr(err error, msg string) error {
	var st stackTracer
	if ok := errors.As(err, &st); ok {
		// wrap passed in error in a new error with the message
		return errors.WithMessage(err, msg)
	}

	// wrap passed in error in errors with the message and a stack trace
	return errors.Wrap(err, msg)
}

// adds a stack trace if not already present
func WrapErrf(err error, format string, args ...interface{}) error {
	var st stackTracer
	if ok := errors.As(err, &st); ok {
		// wrap passed in error in a new error with the formatted message
		return errors.WithMessagef(err, format, args...)
	}

	// wrap passed in error in errors with the formatted message and a stack trace
	return errors.Wrapf(err, format, args...)
}
