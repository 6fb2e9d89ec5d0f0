/*
Package poll defines the cooperative polling protocol shared by record batch streams.

A stream is polled by calling its PollNext method with a *Context. PollNext never
blocks: it either returns an item (or an error item), reports exhaustion, or reports
that no progress is possible yet. In the last case the stream arranges for the Waker
held by the Context to be called once progress is possible, and the caller is expected
to poll again after that.

Callers that want plain blocking semantics can use Block and Await.
*/
package poll

import (
	"context"
)

// Status of a single poll.
type Status int

const (
	// StatusPending means no item is available yet. The waker will be called.
	StatusPending Status = iota
	// StatusReady means an item (or an error item) is available.
	StatusReady
	// StatusDone means the stream is exhausted.
	StatusDone
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusReady:
		return "ready"
	case StatusDone:
		return "done"
	default:
		return "unknown"
	}
}

// Poll is the outcome of polling a stream for its next item.
// A ready poll with a non-nil Err is an error item.
type Poll[T any] struct {
	Status Status
	Item   T
	Err    error
}

// Pending returns a poll reporting that no item is available yet.
func Pending[T any]() Poll[T] {
	return Poll[T]{Status: StatusPending}
}

// Item returns a ready poll carrying item.
func Item[T any](item T) Poll[T] {
	return Poll[T]{Status: StatusReady, Item: item}
}

// Err returns a ready poll carrying an error item.
func Err[T any](err error) Poll[T] {
	return Poll[T]{Status: StatusReady, Err: err}
}

// Done returns a poll reporting exhaustion.
func Done[T any]() Poll[T] {
	return Poll[T]{Status: StatusDone}
}

func (p Poll[T]) IsPending() bool {
	return p.Status == StatusPending
}

func (p Poll[T]) IsReady() bool {
	return p.Status == StatusReady
}

func (p Poll[T]) IsDone() bool {
	return p.Status == StatusDone
}

// A Waker is notified when a pending stream or future can make progress.
// Wake may be called from any goroutine and more than once.
type Waker interface {
	Wake()
}

// WakerFunc adapts an ordinary function to the Waker interface.
type WakerFunc func()

func (f WakerFunc) Wake() {
	f()
}

// NoopWaker ignores wake-ups. Useful for streams known to never report pending.
var NoopWaker Waker = WakerFunc(func() {})

// Context is passed to every poll. It carries the caller's context.Context,
// used for cancellation and diagnostic ids, and the waker for the current task.
type Context struct {
	ctx   context.Context
	waker Waker
}

func NewContext(ctx context.Context, waker Waker) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if waker == nil {
		waker = NoopWaker
	}
	return &Context{ctx: ctx, waker: waker}
}

func (cx *Context) Context() context.Context {
	if cx == nil || cx.ctx == nil {
		return context.Background()
	}
	return cx.ctx
}

func (cx *Context) Waker() Waker {
	if cx == nil || cx.waker == nil {
		return NoopWaker
	}
	return cx.waker
}

// Wake notifies the waker of this context.
func (cx *Context) Wake() {
	cx.Waker().Wake()
}

// SizeHint gives bounds on the remaining number of items of a stream.
// HasUpper is false when no upper bound is known.
type SizeHint struct {
	Lower    int
	Upper    int
	HasUpper bool
}

// UnknownSize is the hint of a stream that knows nothing about its length.
func UnknownSize() SizeHint {
	return SizeHint{}
}

// ExactSize is the hint of a stream that will yield exactly n more items.
func ExactSize(n int) SizeHint {
	return SizeHint{Lower: n, Upper: n, HasUpper: true}
}
