// Package config provides the configuration of a kvbridge client.
//
// A ClientConfig carries the seed hosts, authentication, connection
// management, client-level policy overrides, the runtime bound of the
// asynchronous client, the cluster backend and logging. It can be built in
// three ways:
//
//   - programmatically, starting from NewClientConfig
//   - from a YAML file with LoadClientConfig
//   - from a host dict with FromMap
//
// # Loading from YAML
//
//	cfg, err := config.LoadClientConfig("kvbridge.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
// ${VAR_NAME} references are replaced with environment values before the file
// is parsed:
//
//	# kvbridge.yaml
//	hosts:
//	  - 10.0.0.1:3000
//	  - host: 10.0.0.2
//	    port: 3100
//	user: admin
//	password: ${KV_PASSWORD}
//	timeout: 1500ms
//	policies:
//	  read:
//	    total_timeout: 500
//	  write:
//	    key: 1
//	backend:
//	  type: aerospike
//	logging:
//	  level: debug
//
// Hosts may be "name:port" strings or {host, port} mappings; the port defaults
// to 3000. Policy override values follow the policy package: durations there
// are milliseconds.
//
// # Host dicts
//
// FromMap accepts the dict form used by dynamically typed hosts. Durations are
// milliseconds and hosts may also be [name, port] pairs:
//
//	cfg, err := config.FromMap(map[string]any{
//		"hosts":   []any{[]any{"127.0.0.1", 3000}},
//		"timeout": 1500,
//	})
//
// # Validation
//
// Validate reports every problem at once. The returned error is a
// *kverrors.Error of kind InvalidArgError whose cause joins the individual
// problems.
package config
