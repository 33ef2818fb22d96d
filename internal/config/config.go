package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogPretty bool   `mapstructure:"log_pretty" yaml:"log_pretty"`

	DatabaseDriver        string        `mapstructure:"database_driver" yaml:"database_driver"`
	DatabaseDSN           string        `mapstructure:"database_dsn" yaml:"database_dsn"`
	DatabaseRetryInterval time.Duration `mapstructure:"database_retry_interval" yaml:"database_retry_interval"`

	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// Default returns configuration with reasonable starter defaults. The
// sqlite file path is a placeholder store used when no connection string
// is configured.
func Default() Config {
	return Config{
		Addr:                  ":8080",
		ReadHeaderTimeout:     5 * time.Second,
		ShutdownTimeout:       5 * time.Second,
		LogLevel:              "info",
		LogPretty:             false,
		DatabaseDriver:        "sqlite3",
		DatabaseDSN:           "chatapp.db",
		DatabaseRetryInterval: 5 * time.Second,
		CORSOrigins:           []string{"*"},
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.DatabaseDriver != "" {
		c.DatabaseDriver = other.DatabaseDriver
	}
	if other.DatabaseDSN != "" {
		c.DatabaseDSN = other.DatabaseDSN
	}
	if other.DatabaseRetryInterval != 0 {
		c.DatabaseRetryInterval = other.DatabaseRetryInterval
	}
	if len(other.CORSOrigins) != 0 {
		c.CORSOrigins = other.CORSOrigins
	}
}
