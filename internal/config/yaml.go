package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// YAMLConfig represents the top-level sugbo configuration file.
type YAMLConfig struct {
	Server   ServerYAML   `yaml:"server"`
	Database DatabaseYAML `yaml:"database"`
	Auth     AuthYAML     `yaml:"auth"`
	Logging  LoggingYAML  `yaml:"logging"`
}

// ServerYAML controls the HTTP server behavior.
type ServerYAML struct {
	Host            string   `yaml:"host"`
	Port            int      `yaml:"port"`
	ShutdownTimeout string   `yaml:"shutdown_timeout"`
	CORSOrigins     []string `yaml:"cors_origins"`
}

// DatabaseYAML defines the backing database connection.
type DatabaseYAML struct {
	Driver          string `yaml:"driver"` // postgres, sqlite, mysql
	DSN             string `yaml:"dsn"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime"`
}

// AuthYAML controls authentication settings.
type AuthYAML struct {
	JWTSecret        string `yaml:"jwt_secret"`
	SessionTimeout   string `yaml:"session_timeout"`
	MaxLoginAttempts int    `yaml:"max_login_attempts"`
	LockoutDuration  string `yaml:"lockout_duration"`
}

// LoggingYAML controls log output.
type LoggingYAML struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LoadYAMLConfig reads and parses a YAML configuration file. Environment
// variables referenced as ${VAR_NAME} in the file are expanded before
// parsing.
func LoadYAMLConfig(path string) (*YAMLConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	content := os.ExpandEnv(string(data))

	var cfg YAMLConfig
	if err := yaml.Unmarshal([]byte(content), &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return &cfg, nil
}

// ParseDuration parses a duration string, returning fallback for empty or
// malformed values. YAML knobs like shutdown_timeout go through this.
func ParseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
