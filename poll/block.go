package poll

import (
	"context"
)

// Block polls fn until it reports something other than pending, parking the calling
// goroutine between wake-ups. If ctx is done first, Block returns an error item
// carrying ctx.Err().
func Block[T any](ctx context.Context, fn func(cx *Context) Poll[T]) Poll[T] {
	if ctx == nil {
		ctx = context.Background()
	}

	// one slot is enough, wake-ups between two polls collapse into one
	signal := make(chan struct{}, 1)
	cx := NewContext(ctx, WakerFunc(func() {
		select {
		case signal <- struct{}{}:
		default:
		}
	}))

	for {
		p := fn(cx)
		if !p.IsPending() {
			return p
		}

		select {
		case <-signal:
		case <-ctx.Done():
			return Err[T](ctx.Err())
		}
	}
}

// Await blocks until f settles or ctx is done.
func Await[T any](ctx context.Context, f Future[T]) (T, error) {
	p := Block(ctx, func(cx *Context) Poll[Result[T]] {
		res, ready := f.Poll(cx)
		if !ready {
			return Pending[Result[T]]()
		}
		return Item(res)
	})

	if p.Err != nil {
		var zero T
		return zero, p.Err
	}
	return p.Item.Value, p.Item.Err
}
