package config_test

import (
	"fmt"
	"log"
	"time"

	"github.com/ajitpratap0/kvbridge/pkg/config"
)

// ExampleNewClientConfig demonstrates creating a configuration with default
// values.
func ExampleNewClientConfig() {
	cfg := config.NewClientConfig(config.Host{Name: "127.0.0.1", Port: 3000})

	fmt.Printf("Timeout: %s\n", cfg.Timeout)
	fmt.Printf("Idle Timeout: %s\n", cfg.IdleTimeout)
	fmt.Printf("Max Conns Per Node: %d\n", cfg.MaxConnsPerNode)
	fmt.Printf("Backend: %s\n", cfg.Backend.Type)

	// Output:
	// Timeout: 1s
	// Idle Timeout: 55s
	// Max Conns Per Node: 100
	// Backend: aerospike
}

// ExampleClientConfig_Validate shows how to validate a configuration before
// building a client from it.
func ExampleClientConfig_Validate() {
	cfg := config.NewClientConfig(config.Host{Name: "10.0.0.1", Port: 3000})

	cfg.Timeout = 2 * time.Second
	cfg.Policies = map[string]map[string]any{
		"write": {"key": 1, "total_timeout": 2000},
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	fmt.Println("Configuration is valid!")

	// Output:
	// Configuration is valid!
}

// ExampleFromMap builds a configuration from a host dict.
func ExampleFromMap() {
	cfg, err := config.FromMap(map[string]any{
		"hosts":         []any{[]any{"127.0.0.1", 3000}, "10.0.0.2:3100"},
		"timeout":       1500,
		"tend_interval": 500,
		"backend":       map[string]any{"type": "local"},
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Hosts: %v\n", cfg.Hosts)
	fmt.Printf("Timeout: %s\n", cfg.Timeout)
	fmt.Printf("Backend: %s\n", cfg.Backend.Type)

	// Output:
	// Hosts: [127.0.0.1:3000 10.0.0.2:3100]
	// Timeout: 1.5s
	// Backend: local
}
