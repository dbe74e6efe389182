package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/kvbridge/pkg/compression"
	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
)

func validConfig() *ClientConfig {
	return NewClientConfig(Host{Name: "127.0.0.1", Port: 3000})
}

func TestNewClientConfigDefaults(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, time.Second, cfg.Timeout)
	assert.Equal(t, 55*time.Second, cfg.IdleTimeout)
	assert.Equal(t, 100, cfg.MaxConnsPerNode)
	assert.Equal(t, 0, cfg.MinConnsPerNode)
	assert.Equal(t, time.Second, cfg.TendInterval)
	assert.Equal(t, int64(1024), cfg.Runtime.MaxInFlight)
	assert.Equal(t, BackendAerospike, cfg.Backend.Type)
	assert.Equal(t, AuthInternal, cfg.AuthMode)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ClientConfig)
		wantErr string
	}{
		{"no hosts", func(c *ClientConfig) { c.Hosts = nil }, "at least one host is required"},
		{"empty host name", func(c *ClientConfig) { c.Hosts[0].Name = "" }, "host name must not be empty"},
		{"bad port", func(c *ClientConfig) { c.Hosts[0].Port = 70000 }, "out of range"},
		{"unknown auth mode", func(c *ClientConfig) { c.AuthMode = "kerberos" }, `unknown auth_mode "kerberos"`},
		{"password without user", func(c *ClientConfig) { c.Password = "secret" }, "password given without user"},
		{"external without user", func(c *ClientConfig) { c.AuthMode = AuthExternal }, "external authentication requires a user"},
		{"negative timeout", func(c *ClientConfig) { c.Timeout = -time.Second }, "timeout must not be negative"},
		{"zero tend interval", func(c *ClientConfig) { c.TendInterval = 0 }, "tend_interval must be positive"},
		{"zero max conns", func(c *ClientConfig) { c.MaxConnsPerNode = 0 }, "max_conns_per_node must be positive"},
		{"min above max", func(c *ClientConfig) { c.MinConnsPerNode = 101 }, "min_conns_per_node must be between"},
		{"unknown policy category", func(c *ClientConfig) {
			c.Policies = map[string]map[string]any{"scan": {"total_timeout": 5}}
		}, `unknown policy category "scan"`},
		{"unknown policy field", func(c *ClientConfig) {
			c.Policies = map[string]map[string]any{"read": {"timeout_ms": 5}}
		}, "timeout_ms"},
		{"zero max in flight", func(c *ClientConfig) { c.Runtime.MaxInFlight = 0 }, "runtime.max_in_flight must be positive"},
		{"unknown backend", func(c *ClientConfig) { c.Backend.Type = "redis" }, `unknown backend type "redis"`},
		{"unknown compression", func(c *ClientConfig) {
			c.Backend = BackendConfig{Type: BackendLocal, Path: "db.bolt", Compression: compression.Config{Algorithm: "brotli"}}
		}, "backend.compression"},
		{"bad log level", func(c *ClientConfig) { c.Logging.Level = "chatty" }, "logging.level"},
		{"bad log encoding", func(c *ClientConfig) { c.Logging.Encoding = "xml" }, `unknown logging.encoding "xml"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, kverrors.InvalidArgError))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := validConfig()
	cfg.Hosts = nil
	cfg.MaxConnsPerNode = 0
	cfg.Backend.Type = "redis"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one host is required")
	assert.Contains(t, err.Error(), "max_conns_per_node must be positive")
	assert.Contains(t, err.Error(), "unknown backend type")
}

func TestParseHost(t *testing.T) {
	tests := []struct {
		in      string
		want    Host
		wantErr bool
	}{
		{in: "localhost", want: Host{Name: "localhost", Port: 3000}},
		{in: "10.0.0.1:3100", want: Host{Name: "10.0.0.1", Port: 3100}},
		{in: " db.example.com:4000 ", want: Host{Name: "db.example.com", Port: 4000}},
		{in: "::1", want: Host{Name: "::1", Port: 3000}},
		{in: "[::1]:3001", want: Host{Name: "::1", Port: 3001}},
		{in: "", wantErr: true},
		{in: "host:port", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHost(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "[::1]:3001", Host{Name: "::1", Port: 3001}.String())
}

func TestFromMap(t *testing.T) {
	cfg, err := FromMap(map[string]any{
		"hosts": []any{
			[]any{"127.0.0.1", 3000},
			"10.0.0.2:3100",
			map[string]any{"host": "10.0.0.3"},
		},
		"cluster_name":           "prod",
		"user":                   "admin",
		"password":               "secret",
		"auth_mode":              float64(1),
		"timeout":                1500,
		"idle_timeout":           float64(30000),
		"max_conns_per_node":     int64(50),
		"min_conns_per_node":     5,
		"tend_interval":          250,
		"use_services_alternate": true,
		"policies":               map[string]any{"read": map[string]any{"total_timeout": 500}},
		"runtime":                map[string]any{"max_in_flight": 16},
		"backend":                map[string]any{"type": "local", "namespaces": []any{"test"}},
		"logging":                map[string]any{"level": "debug", "development": true},
	})
	require.NoError(t, err)

	assert.Equal(t, []Host{
		{Name: "127.0.0.1", Port: 3000},
		{Name: "10.0.0.2", Port: 3100},
		{Name: "10.0.0.3", Port: 3000},
	}, cfg.Hosts)
	assert.Equal(t, "prod", cfg.ClusterName)
	assert.Equal(t, AuthExternal, cfg.AuthMode)
	assert.Equal(t, 1500*time.Millisecond, cfg.Timeout)
	assert.Equal(t, 30*time.Second, cfg.IdleTimeout)
	assert.Equal(t, 50, cfg.MaxConnsPerNode)
	assert.Equal(t, 5, cfg.MinConnsPerNode)
	assert.Equal(t, 250*time.Millisecond, cfg.TendInterval)
	assert.True(t, cfg.UseServicesAlternate)
	assert.Equal(t, int64(16), cfg.Runtime.MaxInFlight)
	assert.Equal(t, BackendLocal, cfg.Backend.Type)
	assert.Equal(t, []string{"test"}, cfg.Backend.Namespaces)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)

	set, err := cfg.PolicySet()
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, set.Read.TotalTimeout)
}

func TestFromMapErrors(t *testing.T) {
	hosts := []any{"127.0.0.1"}
	tests := []struct {
		name    string
		in      map[string]any
		wantErr string
	}{
		{"unknown key", map[string]any{"hosts": hosts, "shards": 4}, "shards: unknown configuration key"},
		{"hosts not a list", map[string]any{"hosts": "127.0.0.1"}, "expected a list"},
		{"short host pair", map[string]any{"hosts": []any{[]any{"127.0.0.1"}}}, "host pair must have 2 elements"},
		{"fractional timeout", map[string]any{"hosts": hosts, "timeout": 1.5}, "expected an integer"},
		{"auth mode out of range", map[string]any{"hosts": hosts, "auth_mode": 7}, "unknown auth mode 7"},
		{"policy not a dict", map[string]any{"hosts": hosts, "policies": map[string]any{"read": 1}}, "read: expected a dict"},
		{"unknown backend key", map[string]any{"hosts": hosts, "backend": map[string]any{"url": "x"}}, `unknown key "url"`},
		{"validation still runs", map[string]any{"hosts": []any{}}, "at least one host is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromMap(tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, kverrors.InvalidArgError))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadClientConfig(t *testing.T) {
	t.Setenv("KVBRIDGE_TEST_PASSWORD", "s3cret")
	path := filepath.Join(t.TempDir(), "kvbridge.yaml")
	content := `
hosts:
  - 10.0.0.1:3100
  - host: 10.0.0.2
user: admin
password: ${KVBRIDGE_TEST_PASSWORD}
timeout: 1500ms
policies:
  write:
    key: 1
backend:
  type: local
  path: /tmp/kv.bolt
  compression:
    algorithm: zstd
logging:
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadClientConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []Host{{Name: "10.0.0.1", Port: 3100}, {Name: "10.0.0.2", Port: 3000}}, cfg.Hosts)
	assert.Equal(t, "s3cret", cfg.Password)
	assert.Equal(t, 1500*time.Millisecond, cfg.Timeout)
	assert.Equal(t, 55*time.Second, cfg.IdleTimeout, "defaults survive a partial file")
	assert.Equal(t, compression.Zstd, cfg.Backend.Compression.Algorithm)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Encoding)
}

func TestLoadClientConfigErrors(t *testing.T) {
	_, err := LoadClientConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("hosts:\n  - [1, 2]\n"), 0600))
	_, err = LoadClientConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("KVBRIDGE_A", "alpha")
	t.Setenv("KVBRIDGE_LOOP", "${KVBRIDGE_A}")

	assert.Equal(t, "x alpha y", substituteEnvVars("x ${KVBRIDGE_A} y"))
	assert.Equal(t, "alpha-", substituteEnvVars("${KVBRIDGE_A}-${KVBRIDGE_UNSET_VAR}"))
	assert.Equal(t, "${KVBRIDGE_A}", substituteEnvVars("${KVBRIDGE_LOOP}"))
	assert.Equal(t, "open ${brace", substituteEnvVars("open ${brace"))
}

func TestClone(t *testing.T) {
	cfg := validConfig()
	cfg.Policies = map[string]map[string]any{"read": {"max_retries": 1}}

	clone := cfg.Clone()
	clone.Hosts[0].Name = "other"
	clone.Policies["read"]["max_retries"] = 3

	assert.Equal(t, "127.0.0.1", cfg.Hosts[0].Name)
	assert.Equal(t, 1, cfg.Policies["read"]["max_retries"])
}
