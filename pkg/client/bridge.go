package client

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ajitpratap0/kvbridge/internal/concurrency"
	"github.com/ajitpratap0/kvbridge/pkg/cluster"
	"github.com/ajitpratap0/kvbridge/pkg/cluster/aerospike"
	"github.com/ajitpratap0/kvbridge/pkg/cluster/local"
	"github.com/ajitpratap0/kvbridge/pkg/config"
	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/logger"
	"github.com/ajitpratap0/kvbridge/pkg/observability"
	"github.com/ajitpratap0/kvbridge/pkg/policy"
)

// bridge is the core shared by Client and AsyncClient. Each of its
// operations validates and encodes the host arguments, resolves the policy
// and returns an invocation; the caller decides how the remote part runs.
type bridge struct {
	cfg      *config.ClientConfig
	cluster  cluster.Cluster
	policies *policy.Set
	inst     *observability.Instrumentation
	logger   *zap.Logger
	runtime  *concurrency.Runtime
	lock     sync.Locker
}

func newBridge(cfg *config.ClientConfig, opts []Option) (*bridge, error) {
	if cfg == nil {
		return nil, kverrors.New(kverrors.InvalidArgError, "client configuration is required")
	}
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	// An injected cluster needs no seed hosts.
	if s.cluster != nil && len(cfg.Hosts) == 0 {
		cfg = cfg.Clone()
		cfg.Hosts = []config.Host{{Name: "localhost", Port: config.DefaultPort}}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	policies, err := cfg.PolicySet()
	if err != nil {
		return nil, err
	}

	if s.logger == nil {
		if err := logger.Init(cfg.Logging); err != nil {
			return nil, kverrors.Wrap(err, kverrors.InvalidArgError, "invalid logging configuration")
		}
		s.logger = logger.Get()
	}
	l := s.logger.With(zap.String("component", "client"))

	if s.cluster == nil {
		s.cluster, err = openBackend(cfg, s.logger)
		if err != nil {
			return nil, err
		}
	}
	if s.runtime == nil {
		s.runtime = concurrency.InitShared(cfg.Runtime.MaxInFlight, concurrency.WithLogger(s.logger))
	}
	if s.inst == nil {
		s.inst = observability.New(observability.WithLogger(s.logger))
	}
	if s.lock == nil {
		s.lock = concurrency.NoLock{}
	}

	return &bridge{
		cfg:      cfg,
		cluster:  s.cluster,
		policies: policies,
		inst:     s.inst,
		logger:   l,
		runtime:  s.runtime,
		lock:     s.lock,
	}, nil
}

// openBackend builds the cluster named by the configuration.
func openBackend(cfg *config.ClientConfig, l *zap.Logger) (cluster.Cluster, error) {
	switch cfg.Backend.Type {
	case config.BackendLocal:
		var store local.Store = local.NewMemoryStore()
		if cfg.Backend.Path != "" {
			bolt, err := local.OpenBoltStore(cfg.Backend.Path, &cfg.Backend.Compression)
			if err != nil {
				return nil, kverrors.Wrap(err, kverrors.ClusterError, "failed to open local store").
					WithDetail("path", cfg.Backend.Path)
			}
			store = bolt
		}
		opts := []local.Option{local.WithStore(store), local.WithLogger(l)}
		if len(cfg.Backend.Namespaces) > 0 {
			opts = append(opts, local.WithNamespaces(cfg.Backend.Namespaces...))
		}
		return local.New(opts...), nil
	default:
		return aerospike.New(cfg, aerospike.WithLogger(l)), nil
	}
}

// invocation is a prepared call. remote runs without the execution lock;
// decode runs with it held.
type invocation[T any] struct {
	op        string
	namespace string
	set       string
	batch     int
	err       error
	remote    func(ctx context.Context) (any, error)
	decode    func(any) (T, error)
}

func invoke[R, T any](op, namespace, set string, remote func(context.Context) (R, error), decode func(R) (T, error)) invocation[T] {
	return invocation[T]{
		op:        op,
		namespace: namespace,
		set:       set,
		remote: func(ctx context.Context) (any, error) {
			return remote(ctx)
		},
		decode: func(r any) (T, error) {
			rr, _ := r.(R)
			return decode(rr)
		},
	}
}

// same is the decode of calls whose result needs no conversion.
func same[T any](v T) (T, error) { return v, nil }

func failed[T any](op string, err error) invocation[T] {
	return invocation[T]{op: op, err: err}
}

func (inv invocation[T]) withBatch(n int) invocation[T] {
	inv.batch = n
	return inv
}

// instrumented wraps the remote part with metrics, tracing and a request id.
func instrumented[T any](b *bridge, inv invocation[T]) func(context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		ctx = logger.ContextWithRequestID(ctx, uuid.NewString())
		ctx = logger.ContextWithOperation(ctx, inv.op, inv.namespace)
		ctx, op := b.inst.Begin(ctx, inv.op, inv.namespace, inv.set)
		if inv.batch > 0 {
			op.BatchSize(inv.batch)
		}
		r, err := inv.remote(ctx)
		op.End(err)
		return r, err
	}
}

// rejected records a call that failed before reaching the cluster.
func (b *bridge) rejected(ctx context.Context, op string, err error) {
	_, o := b.inst.Begin(ctx, op, "", "")
	o.End(err)
}

// block runs inv on the calling goroutine.
func block[T any](ctx context.Context, b *bridge, inv invocation[T]) (T, error) {
	var zero T
	if inv.err != nil {
		b.rejected(ctx, inv.op, inv.err)
		return zero, inv.err
	}
	r, err := concurrency.Block(ctx, b.runtime, b.lock, instrumented(b, inv))
	if err != nil {
		return zero, err
	}
	return inv.decode(r)
}

// submit schedules inv and returns its future.
func submit[T any](ctx context.Context, b *bridge, inv invocation[T]) *Future[T] {
	if inv.err != nil {
		b.rejected(ctx, inv.op, inv.err)
		return &Future[T]{err: inv.err}
	}
	return &Future[T]{
		inner:  concurrency.Submit(ctx, b.runtime, b.lock, instrumented(b, inv)),
		decode: inv.decode,
	}
}

// Future is the pending result of an AsyncClient call.
type Future[T any] struct {
	inner  *concurrency.Future[any]
	decode func(any) (T, error)
	err    error
}

var closed = func() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}()

// Await waits for the result. The execution lock is released while waiting
// and held when the result is converted.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	var zero T
	if f.err != nil {
		return zero, f.err
	}
	r, err := f.inner.Await(ctx)
	if err != nil {
		return zero, err
	}
	return f.decode(r)
}

// Done is closed when the remote call has finished.
func (f *Future[T]) Done() <-chan struct{} {
	if f.inner == nil {
		return closed
	}
	return f.inner.Done()
}

// Cancel stops waiting for the result. The remote call is not aborted.
func (f *Future[T]) Cancel() {
	if f.inner != nil {
		f.inner.Cancel()
	}
}

// AwaitAll waits for every future and returns the results in order. The
// first failure is returned.
func AwaitAll[T any](ctx context.Context, futures ...*Future[T]) ([]T, error) {
	inner := make([]*concurrency.Future[any], 0, len(futures))
	for _, f := range futures {
		if f.err != nil {
			return nil, f.err
		}
		inner = append(inner, f.inner)
	}
	raw, err := concurrency.AwaitAll(ctx, inner...)
	if err != nil {
		return nil, err
	}
	out := make([]T, len(futures))
	for i, f := range futures {
		if out[i], err = f.decode(raw[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
