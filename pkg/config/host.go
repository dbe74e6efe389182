package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Host is one seed node.
type Host struct {
	Name string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
}

// ParseHost parses "name", "name:port" or "[ipv6]:port".
func ParseHost(s string) (Host, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Host{}, errors.New("empty host")
	}
	if !strings.Contains(s, ":") || (strings.Count(s, ":") > 1 && !strings.HasPrefix(s, "[")) {
		return Host{Name: s, Port: DefaultPort}, nil
	}
	name, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return Host{}, fmt.Errorf("invalid host %q: %w", s, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return Host{}, fmt.Errorf("invalid port in host %q", s)
	}
	return Host{Name: name, Port: port}, nil
}

// Validate checks the name and port.
func (h Host) Validate() error {
	if h.Name == "" {
		return errors.New("host name must not be empty")
	}
	if h.Port < 1 || h.Port > 65535 {
		return fmt.Errorf("port %d of %s out of range", h.Port, h.Name)
	}
	return nil
}

func (h Host) String() string {
	return net.JoinHostPort(h.Name, strconv.Itoa(h.Port))
}

// UnmarshalYAML accepts a "name:port" scalar or a {host, port} mapping.
func (h *Host) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		parsed, err := ParseHost(node.Value)
		if err != nil {
			return err
		}
		*h = parsed
		return nil
	case yaml.MappingNode:
		var raw struct {
			Name string `yaml:"host"`
			Port int    `yaml:"port"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		if raw.Port == 0 {
			raw.Port = DefaultPort
		}
		*h = Host{Name: raw.Name, Port: raw.Port}
		return nil
	default:
		return fmt.Errorf("line %d: host must be a string or a mapping", node.Line)
	}
}
