package concurrency

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
)

// Block runs call on the calling goroutine. The caller holds lock on entry
// and holds it again on return; it is released while the call is in flight.
// Only ctx and the policy timeouts inside call can interrupt it.
func Block[T any](ctx context.Context, r *Runtime, lock sync.Locker, call func(context.Context) (T, error)) (T, error) {
	lock = lockOrNone(lock)
	id := callID(r)
	r.observe(id, Entered)

	lock.Unlock()
	r.observe(id, LockReleased)
	v, err := run(ctx, r, id, call)
	lock.Lock()
	r.observe(id, LockReacquired)

	r.observe(id, Returned)
	return v, err
}

// Future is the pending result of a submitted call.
type Future[T any] struct {
	id        string
	r         *Runtime
	lock      sync.Locker
	done      chan struct{}
	cancel    context.CancelFunc
	cancelled atomic.Bool

	val T
	err error
}

// Submit schedules call and returns immediately. The caller holds lock while
// submitting; the task itself never takes it.
func Submit[T any](ctx context.Context, r *Runtime, lock sync.Locker, call func(context.Context) (T, error)) *Future[T] {
	ctx, cancel := context.WithCancel(ctx)
	f := &Future[T]{
		id:     callID(r),
		r:      r,
		lock:   lockOrNone(lock),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	r.observe(f.id, Entered)

	go func() {
		defer close(f.done)
		defer cancel()
		r.observe(f.id, LockReleased)
		v, err := run(ctx, r, f.id, call)
		if f.cancelled.Load() {
			return
		}
		f.val, f.err = v, err
	}()
	return f
}

// ID identifies the call in observer notifications.
func (f *Future[T]) ID() string { return f.id }

// Done is closed when the task has finished.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Cancel stops waiting for the call. A request already sent is not aborted;
// its result is dropped and Await reports the call as cancelled.
func (f *Future[T]) Cancel() {
	f.cancelled.Store(true)
	f.cancel()
}

// Await waits for the result. The caller holds the execution lock; it is
// released while waiting and held again when Await returns.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
	default:
		f.lock.Unlock()
		select {
		case <-f.done:
		case <-ctx.Done():
			f.lock.Lock()
			f.r.observe(f.id, LockReacquired)
			f.r.observe(f.id, Returned)
			var zero T
			return zero, ctxError(ctx, ctx.Err())
		}
		f.lock.Lock()
	}
	f.r.observe(f.id, LockReacquired)
	f.r.observe(f.id, Returned)
	return f.result()
}

func (f *Future[T]) result() (T, error) {
	if f.cancelled.Load() {
		var zero T
		return zero, kverrors.FromCode(kverrors.CodeCancelled, "call cancelled")
	}
	return f.val, f.err
}

// AwaitAll waits for every future and returns the results in order. The first
// failure stops the wait and is returned. The execution lock of the futures
// is released while waiting.
func AwaitAll[T any](ctx context.Context, futures ...*Future[T]) ([]T, error) {
	out := make([]T, len(futures))
	if len(futures) == 0 {
		return out, nil
	}
	lock := futures[0].lock
	lock.Unlock()
	defer lock.Lock()

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range futures {
		g.Go(func() error {
			select {
			case <-f.done:
			case <-gctx.Done():
				return ctxError(gctx, gctx.Err())
			}
			v, err := f.result()
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func callID(r *Runtime) string {
	if r.observer == nil {
		return ""
	}
	return uuid.NewString()
}
