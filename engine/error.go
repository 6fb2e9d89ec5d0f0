package engine

import (
	"fmt"

	"github.com/pkg/errors"
)

type ErrorKind int

const (
	// KindExternal carries an error that originated outside the engine.
	KindExternal ErrorKind = iota
	KindIO
	KindSchema
	KindInvalidArgument
	KindCompute
)

func (k ErrorKind) String() string {
	switch k {
	case KindExternal:
		return "external error"
	case KindIO:
		return "io error"
	case KindSchema:
		return "schema error"
	case KindInvalidArgument:
		return "invalid argument error"
	case KindCompute:
		return "compute error"
	default:
		return "unknown error"
	}
}

// Error is the error type of engine streams. Context is an optional diagnostic
// message and Cause is the embedded error, if any.
type Error struct {
	Kind    ErrorKind
	Context string
	Cause   error
}

var _ error = (*Error)(nil)

func (e *Error) Error() string {
	switch {
	case e.Context != "" && e.Cause != nil:
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Context, e.Cause.Error())
	case e.Cause != nil:
		return fmt.Sprintf("%s: %s", e.Kind, e.Cause.Error())
	case e.Context != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Context)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewExternalError embeds an error from outside the engine.
func NewExternalError(context string, cause error) *Error {
	return &Error{Kind: KindExternal, Context: context, Cause: cause}
}

// NewError creates an error of kind k with cause attached.
func NewError(k ErrorKind, context string, cause error) *Error {
	return &Error{Kind: k, Context: context, Cause: cause}
}

// Errorf creates an error of kind k without a cause.
func Errorf(k ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: k, Context: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
