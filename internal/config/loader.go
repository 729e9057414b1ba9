package config

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/leapstack-labs/leaptds/pkg/adapter"
	"github.com/spf13/pflag"
)

// ConfigFileName is the name of the config file.
const ConfigFileName = "leaptds.yaml"

// ConfigFileNameAlt is the alternate name of the config file.
const ConfigFileNameAlt = "leaptds.yml"

// EnvPrefix prefixes environment variables read as configuration.
const EnvPrefix = "LEAPTDS_"

// findConfigFile finds the config file to use.
// Priority: explicit path > leaptds.yaml > leaptds.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
// It returns the config file used, which is empty when none was found.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, string, error) {
	k := koanf.New(".")

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"default_server": DefaultServer,
		"log_level":      DefaultLogLevel,
		"output":         DefaultOutput,
	}, "."), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, "", fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Environment variables
	// Transform: LEAPTDS_LOG_LEVEL -> log_level, LEAPTDS_SERVERS__MAIN__HOST -> servers.main.host
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			switch key {
			case "server":
				return "default_server", posflag.FlagVal(flags, f)
			case "log_level", "output":
				return key, posflag.FlagVal(flags, f)
			}
			// Command-specific flags are not configuration.
			return "", nil
		}), nil); err != nil {
			return nil, "", fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, "", fmt.Errorf("unable to decode config: %w", err)
	}

	for name, s := range cfg.Servers {
		ApplyServerDefaults(&s)
		expandServerEnvVars(&s)
		cfg.Servers[name] = s
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, used, nil
}

// Validate checks the server definitions against the adapter registry.
func (c *Config) Validate() error {
	names := make([]string, 0, len(c.Servers))
	for name := range c.Servers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		s := c.Servers[name]
		if !adapter.IsRegistered(strings.ToLower(s.Type)) {
			return fmt.Errorf("server %s: %w", name, &adapter.UnknownAdapterError{
				Type:      s.Type,
				Available: adapter.ListAdapters(),
			})
		}
	}
	return nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if not found
	})
}

// expandServerEnvVars expands environment variables in sensitive server fields.
func expandServerEnvVars(s *ServerConfig) {
	s.Host = expandEnvVars(s.Host)
	s.User = expandEnvVars(s.User)
	s.Password = expandEnvVars(s.Password)
	s.Database = expandEnvVars(s.Database)
}
