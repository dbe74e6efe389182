package config

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ajitpratap0/kvbridge/pkg/compression"
	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
)

// FromMap builds a validated configuration from a host dict such as
//
//	{
//		"hosts":   []any{[]any{"127.0.0.1", 3000}, "10.0.0.2:3100"},
//		"user":    "admin",
//		"timeout": 1500, // milliseconds
//		"policies": map[string]any{"read": map[string]any{"total_timeout": 500}},
//	}
//
// Durations are milliseconds. auth_mode takes 0 (internal), 1 (external) or 2
// (pki), or the mode name. Keys FromMap does not know fail with
// kverrors.InvalidArgError.
func FromMap(m map[string]any) (*ClientConfig, error) {
	cfg := NewClientConfig()
	var errs []error
	fail := func(key string, err error) {
		errs = append(errs, fmt.Errorf("%s: %w", key, err))
	}

	for _, key := range sortedKeys(m) {
		raw := m[key]
		var err error
		switch key {
		case "hosts":
			cfg.Hosts, err = hostsOf(raw)
		case "cluster_name":
			cfg.ClusterName, err = stringOf(raw)
		case "user":
			cfg.User, err = stringOf(raw)
		case "password":
			cfg.Password, err = stringOf(raw)
		case "auth_mode":
			cfg.AuthMode, err = authModeOf(raw)
		case "timeout":
			cfg.Timeout, err = millisOf(raw)
		case "idle_timeout":
			cfg.IdleTimeout, err = millisOf(raw)
		case "tend_interval":
			cfg.TendInterval, err = millisOf(raw)
		case "max_conns_per_node":
			cfg.MaxConnsPerNode, err = intOf(raw)
		case "min_conns_per_node":
			cfg.MinConnsPerNode, err = intOf(raw)
		case "use_services_alternate":
			cfg.UseServicesAlternate, err = boolOf(raw)
		case "policies":
			cfg.Policies, err = policiesOf(raw)
		case "runtime":
			err = applyRuntime(&cfg.Runtime, raw)
		case "backend":
			err = applyBackend(&cfg.Backend, raw)
		case "logging":
			err = applyLogging(cfg, raw)
		default:
			err = errors.New("unknown configuration key")
		}
		if err != nil {
			fail(key, err)
		}
	}

	if len(errs) > 0 {
		return nil, kverrors.Wrap(errors.Join(errs...), kverrors.InvalidArgError, "invalid client configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func hostsOf(raw any) ([]Host, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list, got %T", raw)
	}
	hosts := make([]Host, 0, len(items))
	for i, item := range items {
		h, err := hostOf(item)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		hosts = append(hosts, h)
	}
	return hosts, nil
}

func hostOf(raw any) (Host, error) {
	switch v := raw.(type) {
	case string:
		return ParseHost(v)
	case Host:
		return v, nil
	case []any:
		if len(v) != 2 {
			return Host{}, fmt.Errorf("host pair must have 2 elements, got %d", len(v))
		}
		name, err := stringOf(v[0])
		if err != nil {
			return Host{}, err
		}
		port, err := intOf(v[1])
		if err != nil {
			return Host{}, err
		}
		return Host{Name: name, Port: port}, nil
	case map[string]any:
		h := Host{Port: DefaultPort}
		var err error
		if h.Name, err = stringOf(v["host"]); err != nil {
			return Host{}, err
		}
		if p, ok := v["port"]; ok {
			if h.Port, err = intOf(p); err != nil {
				return Host{}, err
			}
		}
		return h, nil
	default:
		return Host{}, fmt.Errorf("unsupported host %T", raw)
	}
}

func authModeOf(raw any) (AuthMode, error) {
	if s, ok := raw.(string); ok {
		return AuthMode(s), nil
	}
	n, err := intOf(raw)
	if err != nil {
		return "", err
	}
	switch n {
	case 0:
		return AuthInternal, nil
	case 1:
		return AuthExternal, nil
	case 2:
		return AuthPKI, nil
	default:
		return "", fmt.Errorf("unknown auth mode %d", n)
	}
}

func policiesOf(raw any) (map[string]map[string]any, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a dict, got %T", raw)
	}
	out := make(map[string]map[string]any, len(m))
	for category, v := range m {
		fields, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s: expected a dict, got %T", category, v)
		}
		out[category] = fields
	}
	return out, nil
}

func applyRuntime(rt *RuntimeConfig, raw any) error {
	m, ok := raw.(map[string]any)
	if !ok {
		return fmt.Errorf("expected a dict, got %T", raw)
	}
	for key, v := range m {
		switch key {
		case "max_in_flight":
			n, err := intOf(v)
			if err != nil {
				return fmt.Errorf("max_in_flight: %w", err)
			}
			rt.MaxInFlight = int64(n)
		default:
			return fmt.Errorf("unknown key %q", key)
		}
	}
	return nil
}

func applyBackend(b *BackendConfig, raw any) error {
	m, ok := raw.(map[string]any)
	if !ok {
		return fmt.Errorf("expected a dict, got %T", raw)
	}
	for _, key := range sortedKeys(m) {
		v := m[key]
		switch key {
		case "type":
			s, err := stringOf(v)
			if err != nil {
				return fmt.Errorf("type: %w", err)
			}
			b.Type = BackendType(s)
		case "path":
			s, err := stringOf(v)
			if err != nil {
				return fmt.Errorf("path: %w", err)
			}
			b.Path = s
		case "compression":
			s, err := stringOf(v)
			if err != nil {
				return fmt.Errorf("compression: %w", err)
			}
			b.Compression.Algorithm = compression.Algorithm(s)
		case "namespaces":
			list, ok := v.([]any)
			if !ok {
				return fmt.Errorf("namespaces: expected a list, got %T", v)
			}
			b.Namespaces = b.Namespaces[:0]
			for _, item := range list {
				s, err := stringOf(item)
				if err != nil {
					return fmt.Errorf("namespaces: %w", err)
				}
				b.Namespaces = append(b.Namespaces, s)
			}
		default:
			return fmt.Errorf("unknown key %q", key)
		}
	}
	return nil
}

func applyLogging(cfg *ClientConfig, raw any) error {
	m, ok := raw.(map[string]any)
	if !ok {
		return fmt.Errorf("expected a dict, got %T", raw)
	}
	for _, key := range sortedKeys(m) {
		v := m[key]
		var err error
		switch key {
		case "level":
			cfg.Logging.Level, err = stringOf(v)
		case "encoding":
			cfg.Logging.Encoding, err = stringOf(v)
		case "development":
			cfg.Logging.Development, err = boolOf(v)
		default:
			err = errors.New("unknown key")
		}
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

func stringOf(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected a string, got %T", v)
	}
	return s, nil
}

func boolOf(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("expected a bool, got %T", v)
	}
	return b, nil
}

// intOf accepts Go integers and integral floats, which JSON decoders hand
// over for whole numbers.
func intOf(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		if n > math.MaxInt32 || n < math.MinInt32 {
			return 0, fmt.Errorf("integer %d out of range", n)
		}
		return int(n), nil
	case uint32:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
			return 0, fmt.Errorf("expected an integer, got %v", n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("expected an integer, got %T", v)
	}
}

func millisOf(v any) (time.Duration, error) {
	n, err := intOf(v)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Millisecond, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
