// Package concurrency runs storage calls for the two host calling
// conventions over one shared runtime.
//
// A blocking call (Block) parks the calling goroutine until the remote call
// returns. A non-blocking call (Submit) schedules the remote call as a task
// and hands back a Future immediately. Both release the host execution lock
// while the call is in flight and hold it again before results are converted.
//
// Every call walks the same phases:
//
//	Entered -> LockReleased -> RemoteInFlight -> LockReacquired -> Returned
//
// The runtime bounds the number of calls in flight with a weighted
// semaphore. Calls beyond the bound wait for a slot, honouring their context.
package concurrency

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/logger"
)

// DefaultMaxInFlight bounds concurrent remote calls when no limit is configured.
const DefaultMaxInFlight int64 = 1024

// Phase is a step of a call's life cycle.
type Phase int

const (
	Entered Phase = iota
	LockReleased
	RemoteInFlight
	LockReacquired
	Returned
)

func (p Phase) String() string {
	switch p {
	case Entered:
		return "entered"
	case LockReleased:
		return "lock_released"
	case RemoteInFlight:
		return "remote_in_flight"
	case LockReacquired:
		return "lock_reacquired"
	case Returned:
		return "returned"
	default:
		return "unknown"
	}
}

// Observer is told about every phase change. It runs on the goroutine that
// changed phase and must not block.
type Observer func(callID string, phase Phase)

// Runtime schedules remote calls.
type Runtime struct {
	sem         *semaphore.Weighted
	maxInFlight int64
	inFlight    atomic.Int64
	observer    Observer
	logger      *zap.Logger
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithObserver installs a phase observer.
func WithObserver(o Observer) Option {
	return func(r *Runtime) { r.observer = o }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runtime) { r.logger = l }
}

// NewRuntime creates a runtime allowing maxInFlight concurrent remote calls.
// A non-positive limit selects DefaultMaxInFlight.
func NewRuntime(maxInFlight int64, opts ...Option) *Runtime {
	if maxInFlight <= 0 {
		maxInFlight = DefaultMaxInFlight
	}
	r := &Runtime{
		sem:         semaphore.NewWeighted(maxInFlight),
		maxInFlight: maxInFlight,
		logger:      logger.Get(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(zap.String("component", "runtime"))
	return r
}

var (
	shared     *Runtime
	sharedOnce sync.Once
)

// InitShared creates the process-wide runtime on first use. Later calls
// return the existing runtime and ignore their arguments.
func InitShared(maxInFlight int64, opts ...Option) *Runtime {
	sharedOnce.Do(func() {
		shared = NewRuntime(maxInFlight, opts...)
		shared.logger.Debug("shared runtime created", zap.Int64("max_in_flight", shared.maxInFlight))
	})
	return shared
}

// Shared returns the process-wide runtime, creating it with the default limit
// if needed. It lives until the process exits.
func Shared() *Runtime {
	return InitShared(DefaultMaxInFlight)
}

// MaxInFlight returns the concurrency bound.
func (r *Runtime) MaxInFlight() int64 { return r.maxInFlight }

// InFlight returns the number of remote calls currently running.
func (r *Runtime) InFlight() int64 { return r.inFlight.Load() }

func (r *Runtime) observe(id string, p Phase) {
	if r.observer != nil {
		r.observer(id, p)
	}
}

// run waits for a slot and performs the call. A panic in call becomes an
// error.
func run[T any](ctx context.Context, r *Runtime, id string, call func(context.Context) (T, error)) (v T, err error) {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return v, ctxError(ctx, err)
	}
	r.inFlight.Add(1)
	defer func() {
		r.inFlight.Add(-1)
		r.sem.Release(1)
		if p := recover(); p != nil {
			r.logger.Error("remote call panicked", zap.String("call_id", id), zap.Any("panic", p))
			err = kverrors.Newf(kverrors.ClientError, "remote call panicked: %v", p)
		}
	}()
	r.observe(id, RemoteInFlight)
	return call(ctx)
}

func ctxError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return kverrors.Wrap(err, kverrors.TimeoutError, "timed out waiting for the call")
	}
	return kverrors.FromCode(kverrors.CodeCancelled, "call cancelled")
}

// NoLock is the execution lock of hosts that have none.
type NoLock struct{}

func (NoLock) Lock()   {}
func (NoLock) Unlock() {}

func lockOrNone(l sync.Locker) sync.Locker {
	if l == nil {
		return NoLock{}
	}
	return l
}
