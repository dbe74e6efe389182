package config

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/ajitpratap0/kvbridge/pkg/compression"
	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/logger"
	"github.com/ajitpratap0/kvbridge/pkg/policy"
)

// DefaultPort is the service port used when a host omits one.
const DefaultPort = 3000

// AuthMode selects how credentials are checked by the cluster.
type AuthMode string

const (
	AuthInternal AuthMode = "internal"
	AuthExternal AuthMode = "external"
	AuthPKI      AuthMode = "pki"
)

// BackendType selects the cluster implementation a client talks to.
type BackendType string

const (
	// BackendAerospike connects to a real cluster.
	BackendAerospike BackendType = "aerospike"
	// BackendLocal runs an in-process cluster, in memory or in a bbolt file.
	BackendLocal BackendType = "local"
)

// ClientConfig is the complete configuration of a client.
//
// Durations in YAML use Go duration strings ("1s", "250ms"). The host dict
// form accepted by FromMap expresses them in milliseconds.
type ClientConfig struct {
	// Hosts are the seed nodes; at least one is required.
	Hosts []Host `yaml:"hosts" json:"hosts"`

	// ClusterName, when set, is checked against the name each node reports.
	ClusterName string `yaml:"cluster_name,omitempty" json:"cluster_name,omitempty"`

	// Authentication
	User     string   `yaml:"user,omitempty" json:"user,omitempty"`
	Password string   `yaml:"password,omitempty" json:"password,omitempty"`
	AuthMode AuthMode `yaml:"auth_mode,omitempty" json:"auth_mode,omitempty"`

	// Connection management
	Timeout              time.Duration `yaml:"timeout" json:"timeout"`
	IdleTimeout          time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	MaxConnsPerNode      int           `yaml:"max_conns_per_node" json:"max_conns_per_node"`
	MinConnsPerNode      int           `yaml:"min_conns_per_node" json:"min_conns_per_node"`
	TendInterval         time.Duration `yaml:"tend_interval" json:"tend_interval"`
	UseServicesAlternate bool          `yaml:"use_services_alternate" json:"use_services_alternate"`

	// Policies holds client-level default overrides per policy category
	// (read, write, batch, query, admin, info).
	Policies map[string]map[string]any `yaml:"policies,omitempty" json:"policies,omitempty"`

	Runtime RuntimeConfig `yaml:"runtime" json:"runtime"`
	Backend BackendConfig `yaml:"backend" json:"backend"`
	Logging logger.Config `yaml:"logging" json:"logging"`
}

// RuntimeConfig bounds the background work of the asynchronous client.
type RuntimeConfig struct {
	// MaxInFlight caps the remote calls running at once across the process.
	MaxInFlight int64 `yaml:"max_in_flight" json:"max_in_flight"`
}

// BackendConfig selects and configures the cluster implementation.
type BackendConfig struct {
	Type BackendType `yaml:"type" json:"type"`

	// Path is the bbolt file of the local backend. Empty keeps records in
	// memory.
	Path string `yaml:"path,omitempty" json:"path,omitempty"`

	// Compression is the record compression of the bbolt file.
	Compression compression.Config `yaml:"compression" json:"compression"`

	// Namespaces restricts the namespaces the local backend accepts. Empty
	// accepts every namespace.
	Namespaces []string `yaml:"namespaces,omitempty" json:"namespaces,omitempty"`
}

// NewClientConfig returns a configuration with every default applied and
// the given seed hosts.
func NewClientConfig(hosts ...Host) *ClientConfig {
	return &ClientConfig{
		Hosts:           hosts,
		AuthMode:        AuthInternal,
		Timeout:         time.Second,
		IdleTimeout:     55 * time.Second,
		MaxConnsPerNode: 100,
		MinConnsPerNode: 0,
		TendInterval:    time.Second,
		Runtime: RuntimeConfig{
			MaxInFlight: 1024,
		},
		Backend: BackendConfig{
			Type:        BackendAerospike,
			Compression: *compression.DefaultConfig(),
		},
		Logging: logger.DefaultConfig(),
	}
}

// Validate checks the configuration and reports every problem at once as a
// kverrors.InvalidArgError.
func (c *ClientConfig) Validate() error {
	var errs []error

	if len(c.Hosts) == 0 {
		errs = append(errs, errors.New("at least one host is required"))
	}
	for i, h := range c.Hosts {
		if err := h.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("hosts[%d]: %w", i, err))
		}
	}

	switch c.AuthMode {
	case "", AuthInternal, AuthExternal, AuthPKI:
	default:
		errs = append(errs, fmt.Errorf("unknown auth_mode %q", c.AuthMode))
	}
	if c.Password != "" && c.User == "" {
		errs = append(errs, errors.New("password given without user"))
	}
	if c.AuthMode == AuthExternal && c.User == "" {
		errs = append(errs, errors.New("external authentication requires a user"))
	}

	if c.Timeout < 0 {
		errs = append(errs, errors.New("timeout must not be negative"))
	}
	if c.IdleTimeout < 0 {
		errs = append(errs, errors.New("idle_timeout must not be negative"))
	}
	if c.TendInterval <= 0 {
		errs = append(errs, errors.New("tend_interval must be positive"))
	}
	if c.MaxConnsPerNode <= 0 {
		errs = append(errs, errors.New("max_conns_per_node must be positive"))
	}
	if c.MinConnsPerNode < 0 || c.MinConnsPerNode > c.MaxConnsPerNode {
		errs = append(errs, fmt.Errorf("min_conns_per_node must be between 0 and max_conns_per_node (%d)", c.MaxConnsPerNode))
	}

	if _, err := policy.NewSet(c.Policies); err != nil {
		errs = append(errs, fmt.Errorf("policies: %w", err))
	}

	if c.Runtime.MaxInFlight <= 0 {
		errs = append(errs, errors.New("runtime.max_in_flight must be positive"))
	}

	switch c.Backend.Type {
	case BackendAerospike, BackendLocal:
	default:
		errs = append(errs, fmt.Errorf("unknown backend type %q", c.Backend.Type))
	}
	if c.Backend.Path != "" {
		if _, err := compression.NewCompressor(&c.Backend.Compression); err != nil {
			errs = append(errs, fmt.Errorf("backend.compression: %w", err))
		}
	}

	if c.Logging.Level != "" {
		if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
			errs = append(errs, fmt.Errorf("logging.level: %w", err))
		}
	}
	switch c.Logging.Encoding {
	case "", "json", "console":
	default:
		errs = append(errs, fmt.Errorf("unknown logging.encoding %q", c.Logging.Encoding))
	}

	if len(errs) == 0 {
		return nil
	}
	return kverrors.Wrap(errors.Join(errs...), kverrors.InvalidArgError, "invalid client configuration")
}

// PolicySet resolves the configured policy overrides.
func (c *ClientConfig) PolicySet() (*policy.Set, error) {
	return policy.NewSet(c.Policies)
}

// Clone returns a deep copy of the configuration.
func (c *ClientConfig) Clone() *ClientConfig {
	out := *c
	out.Hosts = append([]Host(nil), c.Hosts...)
	out.Backend.Namespaces = append([]string(nil), c.Backend.Namespaces...)
	out.Logging.OutputPaths = append([]string(nil), c.Logging.OutputPaths...)
	if c.Policies != nil {
		out.Policies = make(map[string]map[string]any, len(c.Policies))
		for category, fields := range c.Policies {
			m := make(map[string]any, len(fields))
			for k, v := range fields {
				m[k] = v
			}
			out.Policies[category] = m
		}
	}
	return &out
}
