package client

import (
	"sync"

	"go.uber.org/zap"

	"github.com/ajitpratap0/kvbridge/internal/concurrency"
	"github.com/ajitpratap0/kvbridge/pkg/cluster"
	"github.com/ajitpratap0/kvbridge/pkg/observability"
	"github.com/ajitpratap0/kvbridge/pkg/policy"
)

// Option configures a client at construction.
type Option func(*settings)

type settings struct {
	cluster cluster.Cluster
	logger  *zap.Logger
	runtime *concurrency.Runtime
	lock    sync.Locker
	inst    *observability.Instrumentation
}

// WithCluster talks to c instead of the backend named by the configuration.
func WithCluster(c cluster.Cluster) Option {
	return func(s *settings) { s.cluster = c }
}

// WithLogger sets the logger. The default is the global logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithRuntime runs calls on r instead of the shared runtime.
func WithRuntime(r *concurrency.Runtime) Option {
	return func(s *settings) { s.runtime = r }
}

// WithExecutionLock installs the host execution lock. The caller holds it
// when calling into the client; it is released while a remote call is in
// flight.
func WithExecutionLock(l sync.Locker) Option {
	return func(s *settings) { s.lock = l }
}

// WithInstrumentation replaces the default metrics and tracing.
func WithInstrumentation(i *observability.Instrumentation) Option {
	return func(s *settings) { s.inst = i }
}

// CallOption adjusts a single call.
type CallOption func(*callOptions)

type callOptions struct {
	policy      map[string]any
	writePolicy map[string]any
	meta        map[string]any
	strict      bool
}

// WithPolicy overrides policy fields for one call. The keys are the field
// names of the call's policy category.
func WithPolicy(overrides map[string]any) CallOption {
	return func(o *callOptions) { o.policy = overrides }
}

// WithWritePolicy overrides write policy fields for the records of a batch
// write or batch operate. WithPolicy on those calls addresses the batch
// policy.
func WithWritePolicy(overrides map[string]any) CallOption {
	return func(o *callOptions) { o.writePolicy = overrides }
}

// WithMeta sets record metadata for one write: "gen" and "ttl".
func WithMeta(meta map[string]any) CallOption {
	return func(o *callOptions) { o.meta = meta }
}

// WithStrictColumns logs bins missing from, or unknown to, a columnar
// descriptor.
func WithStrictColumns() CallOption {
	return func(o *callOptions) { o.strict = true }
}

func collect(opts []CallOption) callOptions {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (b *bridge) readPolicy(o callOptions) (*policy.Read, error) {
	r, err := policy.ResolveRead(b.policies.Read, o.policy)
	if err != nil {
		return nil, err
	}
	return r.Policy(), nil
}

func (b *bridge) writePolicy(o callOptions) (*policy.Write, error) {
	r, err := policy.ResolveWrite(b.policies.Write, o.policy)
	if err != nil {
		return nil, err
	}
	r, err = policy.ApplyMeta(r, o.meta)
	if err != nil {
		return nil, err
	}
	return r.Policy(), nil
}

// batchPolicies resolves the batch policy from the call overrides. Batch
// writes use the client write policy with the WithWritePolicy overrides and
// the call metadata applied.
func (b *bridge) batchPolicies(o callOptions) (*policy.Batch, *policy.Write, error) {
	r, err := policy.ResolveBatch(b.policies.Batch, o.policy)
	if err != nil {
		return nil, nil, err
	}
	wr, err := policy.ResolveWrite(b.policies.Write, o.writePolicy)
	if err != nil {
		return nil, nil, err
	}
	w, err := policy.ApplyMeta(wr, o.meta)
	if err != nil {
		return nil, nil, err
	}
	return r.Policy(), w.Policy(), nil
}

func (b *bridge) queryPolicy(o callOptions) (*policy.Query, error) {
	r, err := policy.ResolveQuery(b.policies.Query, o.policy)
	if err != nil {
		return nil, err
	}
	return r.Policy(), nil
}

func (b *bridge) infoPolicy(o callOptions) (*policy.Info, error) {
	r, err := policy.ResolveInfo(b.policies.Info, o.policy)
	if err != nil {
		return nil, err
	}
	return r.Policy(), nil
}

func (b *bridge) adminPolicy(o callOptions) (*policy.Admin, error) {
	r, err := policy.ResolveAdmin(b.policies.Admin, o.policy)
	if err != nil {
		return nil, err
	}
	return r.Policy(), nil
}
