// Package config provides configuration loading for leaptds.
//
// Configuration is read with koanf from, lowest to highest precedence:
// built-in defaults, leaptds.yaml, LEAPTDS_* environment variables and
// command-line flags.
package config

import (
	"github.com/leapstack-labs/leaptds/pkg/core"
)

// ServerConfig is an alias for the shared server configuration.
type ServerConfig = core.ServerConfig

// Config holds all leaptds configuration options.
type Config struct {
	DefaultServer string                  `koanf:"default_server"`
	LogLevel      string                  `koanf:"log_level"`
	Output        string                  `koanf:"output"`
	Servers       map[string]ServerConfig `koanf:"servers"`
}

// Server returns the named server, or the default server when name is empty.
func (c *Config) Server(name string) (ServerConfig, bool) {
	if name == "" {
		name = c.DefaultServer
	}
	s, ok := c.Servers[name]
	return s, ok
}
