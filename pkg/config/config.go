// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Formats  FormatsConfig  `mapstructure:"formats"`
	Export   ExportConfig   `mapstructure:"export"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	LevelName string     `mapstructure:"level"`
	Level     slog.Level `mapstructure:"-"`
	Format    string     `mapstructure:"format"` // "json" or "text"
}

// DatabaseConfig holds database-related configuration. An empty URL
// disables persistence.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// DSN returns the connection string.
func (d DatabaseConfig) DSN() string { return d.URL }

// Enabled reports whether a database is configured.
func (d DatabaseConfig) Enabled() bool { return d.URL != "" }

// FormatsConfig points at an optional format table file merged over the
// built-in formats.
type FormatsConfig struct {
	File string `mapstructure:"file"`
}

// ExportConfig holds spreadsheet export settings
type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

// settings maps each config key to its environment variable and default.
var settings = []struct {
	key, env string
	def      any
}{
	{"log.level", "LOG_LEVEL", "info"},
	{"log.format", "LOG_FORMAT", "json"},
	{"database.url", "DATABASE_URL", ""},
	{"database.max_conns", "DB_MAX_CONNS", int32(10)},
	{"database.min_conns", "DB_MIN_CONNS", int32(1)},
	{"database.max_conn_lifetime", "DB_MAX_CONN_LIFETIME", 5 * time.Minute},
	{"database.max_conn_idle_time", "DB_MAX_CONN_IDLE_TIME", 10 * time.Minute},
	{"formats.file", "STATEMENT_FORMATS_FILE", ""},
	{"export.dir", "EXPORT_DIR", "."},
}

// Load reads configuration from environment variables. Values that do not
// parse are an error.
func Load() (*Config, error) {
	v := viper.New()
	for _, s := range settings {
		v.SetDefault(s.key, s.def)
		if err := v.BindEnv(s.key, s.env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", s.env, err)
		}
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	level, err := parseLevel(cfg.Log.LevelName)
	if err != nil {
		return nil, err
	}
	cfg.Log.Level = level

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the loaded configuration
func (c *Config) Validate() error {
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.Log.Format)
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.Database.MinConns, c.Database.MaxConns)
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return l, nil
}
