// Package local is an in-process cluster. It honours the record semantics of
// the storage cluster (generations, TTL expiry, write policies, list and map
// operations, batches, secondary-index queries, UDFs, users and roles, info
// commands) so that the client can be embedded or tested without a server.
//
// Records live in a Store: MemoryStore by default, or BoltStore for a
// persistent single-file cluster.
package local

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/kvbridge/pkg/cluster"
	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/logger"
	"github.com/ajitpratap0/kvbridge/pkg/predicate"
)

// Build is reported by the "build" info command.
const Build = "7.0.0-local"

var _ cluster.Cluster = (*Cluster)(nil)

// Cluster is an in-process implementation of cluster.Cluster.
type Cluster struct {
	store      Store
	now        func() time.Time
	logger     *zap.Logger
	nodes      []string
	namespaces map[string]bool
	defaultTTL int32

	// mu serializes record mutations.
	mu sync.Mutex

	metaMu    sync.RWMutex
	connected bool
	indexes   map[string]predicate.Index
	udfs      map[string][]byte
	functions map[string]map[string]Function
	users     map[string]*user
	roles     map[string]*cluster.RoleInfo
}

// Option configures a Cluster.
type Option func(*Cluster)

// WithStore replaces the default MemoryStore.
func WithStore(s Store) Option {
	return func(c *Cluster) { c.store = s }
}

// WithClock replaces time.Now, for TTL tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cluster) { c.now = now }
}

// WithLogger sets the logger. The default is the global logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cluster) { c.logger = l }
}

// WithNamespaces restricts the cluster to the named namespaces. Without it
// every namespace is accepted.
func WithNamespaces(names ...string) Option {
	return func(c *Cluster) {
		c.namespaces = make(map[string]bool, len(names))
		for _, n := range names {
			c.namespaces[n] = true
		}
	}
}

// WithNodes names the simulated nodes. The default is a single node.
func WithNodes(names ...string) Option {
	return func(c *Cluster) { c.nodes = append([]string(nil), names...) }
}

// WithDefaultTTL sets the namespace default TTL in seconds; 0 never expires.
func WithDefaultTTL(seconds int32) Option {
	return func(c *Cluster) { c.defaultTTL = seconds }
}

// New creates a disconnected cluster.
func New(opts ...Option) *Cluster {
	c := &Cluster{
		now:       time.Now,
		nodes:     []string{"BB9000000000001"},
		indexes:   make(map[string]predicate.Index),
		udfs:      make(map[string][]byte),
		functions: make(map[string]map[string]Function),
		users:     make(map[string]*user),
		roles:     make(map[string]*cluster.RoleInfo),
	}
	for _, opt := range opts {
		opt(c)
	}
	if len(c.nodes) == 0 {
		c.nodes = []string{"BB9000000000001"}
	}
	if c.store == nil {
		c.store = NewMemoryStore()
	}
	if c.logger == nil {
		c.logger = logger.Get()
	}
	c.logger = c.logger.With(zap.String("component", "local_cluster"))
	return c
}

func (c *Cluster) Connect(ctx context.Context) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	c.metaMu.Lock()
	defer c.metaMu.Unlock()

	c.connected = true
	c.logger.Info("connected", zap.Strings("nodes", c.nodes))
	return nil
}

func (c *Cluster) Close() error {
	c.metaMu.Lock()
	defer c.metaMu.Unlock()

	if !c.connected {
		return nil
	}
	c.connected = false
	c.logger.Info("closed")
	if err := c.store.Close(); err != nil {
		return kverrors.Wrap(err, kverrors.ClusterError, "failed to close record store")
	}
	return nil
}

func (c *Cluster) IsConnected() bool {
	c.metaMu.RLock()
	defer c.metaMu.RUnlock()
	return c.connected
}

func (c *Cluster) NodeNames(ctx context.Context) ([]string, error) {
	if err := c.ready(ctx); err != nil {
		return nil, err
	}
	return append([]string(nil), c.nodes...), nil
}

// ready checks the connection state and the context before a command.
func (c *Cluster) ready(ctx context.Context) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	if !c.IsConnected() {
		return kverrors.FromCode(kverrors.CodeNotConnected, "")
	}
	return nil
}

func (c *Cluster) checkNamespace(ns string) error {
	if c.namespaces != nil && !c.namespaces[ns] {
		return kverrors.FromCode(kverrors.CodeInvalidNamespace, "namespace "+ns+" not found").
			WithDetail("namespace", ns)
	}
	return nil
}

// withTimeout bounds ctx by a policy's total timeout; zero means no limit.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

func ctxErr(ctx context.Context) error {
	err := ctx.Err()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return kverrors.Wrap(err, kverrors.TimeoutError, "command timed out")
	default:
		return kverrors.FromCode(kverrors.CodeCancelled, "")
	}
}

func storeErr(err error) error {
	return kverrors.Wrap(err, kverrors.ServerError, "record store failure")
}
