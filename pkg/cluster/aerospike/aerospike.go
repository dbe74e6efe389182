// Package aerospike implements cluster.Cluster over the Aerospike Go client.
//
// The adapter only translates: keys, values, policies and operations go in as
// kvbridge types and come back the same way, with every failure converted to
// a *kverrors.Error carrying the server result code and the in-doubt flag.
// Networking, node discovery, retries and authentication stay inside the
// underlying client.
package aerospike

import (
	"context"
	"sync"

	aero "github.com/aerospike/aerospike-client-go/v7"
	"go.uber.org/zap"

	"github.com/ajitpratap0/kvbridge/pkg/cluster"
	"github.com/ajitpratap0/kvbridge/pkg/config"
	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/logger"
)

var _ cluster.Cluster = (*Cluster)(nil)

// Cluster is a cluster.Cluster backed by an *aero.Client.
type Cluster struct {
	cfg    *config.ClientConfig
	logger *zap.Logger

	mu     sync.RWMutex
	client *aero.Client
}

// Option configures a Cluster.
type Option func(*Cluster)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cluster) { c.logger = l }
}

// New creates a disconnected cluster for cfg.
func New(cfg *config.ClientConfig, opts ...Option) *Cluster {
	c := &Cluster{
		cfg:    cfg,
		logger: logger.Get(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(zap.String("backend", "aerospike"))
	return c
}

// Connect dials the seed hosts and waits for the first cluster tend.
func (c *Cluster) Connect(ctx context.Context) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil && c.client.IsConnected() {
		return nil
	}

	hosts := make([]*aero.Host, len(c.cfg.Hosts))
	for i, h := range c.cfg.Hosts {
		hosts[i] = aero.NewHost(h.Name, h.Port)
	}

	client, err := aero.NewClientWithPolicyAndHost(clientPolicy(c.cfg), hosts...)
	if err != nil {
		c.logger.Warn("connect failed", zap.Int("hosts", len(hosts)), zap.Error(err))
		return mapError(err, kverrors.OpGeneric)
	}
	c.client = client
	c.logger.Info("connected",
		zap.Int("hosts", len(hosts)),
		zap.Strings("nodes", client.GetNodeNames()))
	return nil
}

// Close closes every connection. It is safe to call on a closed cluster.
func (c *Cluster) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	c.client.Close()
	c.client = nil
	c.logger.Info("closed")
	return nil
}

func (c *Cluster) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client != nil && c.client.IsConnected()
}

func (c *Cluster) NodeNames(ctx context.Context) ([]string, error) {
	client, err := c.conn(ctx)
	if err != nil {
		return nil, err
	}
	return client.GetNodeNames(), nil
}

// conn returns the live client after checking ctx.
func (c *Cluster) conn(ctx context.Context) (*aero.Client, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	client := c.client
	c.mu.RUnlock()
	if client == nil || !client.IsConnected() {
		return nil, kverrors.FromCode(kverrors.CodeNotConnected, "")
	}
	return client, nil
}

func clientPolicy(cfg *config.ClientConfig) *aero.ClientPolicy {
	p := aero.NewClientPolicy()
	p.Timeout = cfg.Timeout
	p.IdleTimeout = cfg.IdleTimeout
	p.ConnectionQueueSize = cfg.MaxConnsPerNode
	p.MinConnectionsPerNode = cfg.MinConnsPerNode
	p.TendInterval = cfg.TendInterval
	p.UseServicesAlternate = cfg.UseServicesAlternate
	p.ClusterName = cfg.ClusterName

	if cfg.User != "" {
		p.User = cfg.User
		p.Password = cfg.Password
	}
	switch cfg.AuthMode {
	case config.AuthExternal:
		p.AuthMode = aero.AuthModeExternal
	case config.AuthPKI:
		p.AuthMode = aero.AuthModePKI
	default:
		p.AuthMode = aero.AuthModeInternal
	}
	return p
}
