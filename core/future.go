package core

import (
	"context"
	"sync"
)

// Future is the pending result of a function submitted to a ThreadPool.
type Future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// resolve stores the outcome. Only the first call has an effect.
func (f *Future[T]) resolve(value T, err error) {
	f.once.Do(func() {
		f.value = value
		f.err = err
		close(f.done)
	})
}

// Get blocks until the result is available.
func (f *Future[T]) Get() (T, error) {
	<-f.done
	return f.value, f.err
}

// Wait is Get bounded by ctx. On cancellation it returns ctx.Err(); the
// submitted function is not interrupted.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done returns a channel closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// IsDone reports whether the result is available.
func (f *Future[T]) IsDone() bool {
	return isClosed(f.done)
}
