package poll

import (
	"context"
	"sync"
)

// Result is the settled value of a Future.
type Result[T any] struct {
	Value T
	Err   error
}

// A Future is a one-shot asynchronous computation.
//
// Poll returns ready=false while the computation is in progress, after arranging for
// cx's waker to be called. Once it returns ready=true the future must not be polled again.
type Future[T any] interface {
	Poll(cx *Context) (res Result[T], ready bool)
}

// FutureFunc adapts an ordinary function to the Future interface.
type FutureFunc[T any] func(cx *Context) (Result[T], bool)

func (f FutureFunc[T]) Poll(cx *Context) (Result[T], bool) {
	return f(cx)
}

// Ready returns a future that is already settled with value and err.
func Ready[T any](value T, err error) Future[T] {
	res := Result[T]{Value: value, Err: err}
	return FutureFunc[T](func(*Context) (Result[T], bool) {
		return res, true
	})
}

// Spawn runs fn on its own goroutine and returns a future settled with its result.
// The waker registered by the most recent poll is called when fn returns.
//
// The returned future implements io.Closer; Close cancels the context passed to fn.
func Spawn[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *SpawnedFuture[T] {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	sf := &SpawnedFuture[T]{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer cancel()
		v, err := fn(ctx)

		sf.mu.Lock()
		sf.res = Result[T]{Value: v, Err: err}
		sf.settled = true
		w := sf.waker
		sf.waker = nil
		sf.mu.Unlock()

		close(sf.done)
		if w != nil {
			w.Wake()
		}
	}()

	return sf
}

// SpawnedFuture is the future returned by Spawn.
type SpawnedFuture[T any] struct {
	mu      sync.Mutex
	res     Result[T]
	settled bool
	waker   Waker
	cancel  context.CancelFunc
	done    chan struct{}
}

var _ Future[any] = (*SpawnedFuture[any])(nil)

func (sf *SpawnedFuture[T]) Poll(cx *Context) (Result[T], bool) {
	sf.mu.Lock()
	defer sf.mu.Unlock()

	if sf.settled {
		return sf.res, true
	}

	sf.waker = cx.Waker()
	return Result[T]{}, false
}

// Close cancels the spawned computation and waits for its goroutine to exit.
func (sf *SpawnedFuture[T]) Close() error {
	sf.cancel()
	<-sf.done
	return nil
}
