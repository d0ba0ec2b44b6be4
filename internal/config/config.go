package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Practice PracticeConfig `mapstructure:"practice" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
// Driver selects the backend: "postgres" for a server database or "sqlite"
// for an embedded file.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	URL             string        `mapstructure:"url" validate:"required"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// PracticeConfig contains settings of the scheduler and session tracking.
type PracticeConfig struct {
	// ProgressValidity is how long a saved session can be resumed.
	ProgressValidity time.Duration `mapstructure:"progress_validity" validate:"gt=0"`
	// SweepInterval is how often stale progress rows are purged.
	SweepInterval time.Duration `mapstructure:"sweep_interval" validate:"gt=0"`
	SweepEnabled  bool          `mapstructure:"sweep_enabled"`
	// DefaultSessionLimit applies when a request does not pass a limit; 0 means unbounded.
	DefaultSessionLimit int `mapstructure:"default_session_limit" validate:"gte=0"`
}
