package messaging

import (
	"context"
	"sync"
)

// Future is the awaitable handle a slot call returns for its asynchronous
// reply (spec §4.5.1, §4.5.2). Exactly one of Resolve/Reject/reject-on-
// disconnect fires; later calls are no-ops.
type Future[T any] struct {
	done chan struct{}
	once sync.Once
	val  T
	err  error
}

// NewFuture returns a pending Future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolve completes the future successfully. Safe to call once; later
// calls (from either Resolve or Reject) are ignored.
func (f *Future[T]) Resolve(v T) {
	f.once.Do(func() {
		f.val = v
		close(f.done)
	})
}

// Reject completes the future with err.
func (f *Future[T]) Reject(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Await blocks until the future resolves, rejects, or ctx is done.
// Context cancellation/deadline yields [ErrCancelled]/[ErrTimeout]
// respectively without affecting the callee (spec §4.5.2): the eventual
// reply, if any, is simply discarded by whichever caller wins the
// f.once.Do race.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T

		if ctx.Err() == context.DeadlineExceeded {
			return zero, ErrTimeout
		}

		return zero, ErrCancelled
	}
}
