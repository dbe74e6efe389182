// Package kvbridge is an embeddable client for a distributed key-value
// cluster. It converts host values to the cluster's typed values, resolves
// per-call policies, classifies every failure by result code and runs each
// call either blocking or asynchronously on a shared runtime.
//
// # Quick Start
//
//	cfg, err := config.LoadClientConfig("kvbridge.yaml")
//	if err != nil {
//	    return err
//	}
//	c, err := client.New(cfg)
//	if err != nil {
//	    return err
//	}
//	if err := c.Connect(ctx); err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	key := record.MustKey("test", "users", "user:1")
//	err = c.Put(ctx, key, map[string]any{"name": "ada", "visits": 1},
//	    client.WithPolicy(map[string]any{"exists": policy.ExistsCreateOnly}))
//
// # Key Packages
//
//	pkg/client        - Blocking and asynchronous clients
//	pkg/value         - Host value codec
//	pkg/policy        - Policy categories, defaults and per-call overrides
//	pkg/expression    - Filter expressions evaluated before a command runs
//	pkg/kverrors      - Result codes and the error taxonomy
//	pkg/columnar      - Fixed-width columnar batch codec
//	pkg/cluster       - Cluster interface with aerospike and local backends
//	pkg/config        - Client configuration
//	pkg/logger        - Structured logging
//	pkg/observability - Operation metrics and traces
//
// # Configuration
//
// A client is configured by a config.ClientConfig, built in code, loaded
// from YAML or converted from a host dictionary with config.FromMap:
//
//	hosts:
//	  - host: 127.0.0.1
//	    port: 3000
//	timeout: 1s
//	policies:
//	  write:
//	    total_timeout: 500
//	backend:
//	  type: aerospike
//
// Environment variables are expanded with ${VAR_NAME} syntax. A backend of
// type "local" runs an in-process cluster, in memory or in a bbolt file,
// for tests and single-node embedding.
package kvbridge
