// Package config loads pgscope configuration from a YAML file with
// environment-variable overrides for deployment-specific settings.
package config

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pgscope/pgscope/internal/errs"
)

// DefaultPath is used when no -config flag or PGSCOPE_CONFIG is set.
const DefaultPath = "pgscope.yaml"

// Config is the top-level configuration.
type Config struct {
	Server      ServerConfig          `yaml:"server"`
	Log         LogConfig             `yaml:"log,omitempty"`
	Connections map[string]Connection `yaml:"connections"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr,omitempty"`             // default ":8080"
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout,omitempty"` // default 10s
}

// LogConfig defines logging settings.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error
	Format string `yaml:"format,omitempty"` // json, console
}

// Connection defines one named PostgreSQL connection and its pool tuning.
// Zero-valued pool fields fall back to the database package defaults.
type Connection struct {
	DSN             string        `yaml:"dsn"`
	MaxConns        int32         `yaml:"max_conns,omitempty"`
	MinConns        int32         `yaml:"min_conns,omitempty"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime,omitempty"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time,omitempty"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout,omitempty"`
	QueryTimeout    time.Duration `yaml:"query_timeout,omitempty"`
}

// Load reads and parses the config file at path, applies environment
// overrides, and validates the result.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides file values with environment variables.
// PGSCOPE_ADDR and PGSCOPE_LOG_LEVEL are the deployment-facing knobs;
// connection DSNs stay in the file.
func (c *Config) applyEnv() {
	if v := os.Getenv("PGSCOPE_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("PGSCOPE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("PGSCOPE_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

func (c *Config) validate() error {
	if len(c.Connections) == 0 {
		return errs.New(errs.ErrKindInvalidInput, "config defines no connections")
	}
	for id, conn := range c.Connections {
		if conn.DSN == "" {
			return errs.New(errs.ErrKindInvalidInput,
				fmt.Sprintf("connection %q has no dsn", id))
		}
	}
	return nil
}
