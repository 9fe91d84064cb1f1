// Package config reads the server configuration from USERFORMS_* environment
// variables through viper.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every key: db_driver is read from USERFORMS_DB_DRIVER.
const EnvPrefix = "USERFORMS"

// Config is the complete runtime configuration of cmd/userforms.
type Config struct {
	// HTTP
	Addr            string
	ShutdownTimeout time.Duration

	// Database
	DBDriver   string
	DBDSN      string
	DBMaxConns int
	SlowQuery  time.Duration
	LogQueries bool

	// Logging
	LogLevel slog.Level
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("addr", ":8080")
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.SetDefault("db_driver", "sqlite3")
	v.SetDefault("db_dsn", "file:userforms.db?cache=shared&mode=rwc")
	v.SetDefault("db_max_conns", 10)
	v.SetDefault("slow_query", 200*time.Millisecond)
	v.SetDefault("log_queries", false)
	v.SetDefault("log_level", "info")
	return v
}

// Load reads configuration from environment variables with defaults and
// validates the result. Malformed values are errors, not silently defaulted.
func Load() (*Config, error) {
	v := newViper()

	var errs []error
	cfg := &Config{
		Addr:     v.GetString("addr"),
		DBDriver: v.GetString("db_driver"),
		DBDSN:    v.GetString("db_dsn"),
	}

	var err error
	if cfg.DBMaxConns, err = cast.ToIntE(v.Get("db_max_conns")); err != nil {
		errs = append(errs, keyError("db_max_conns", err))
	}
	if cfg.SlowQuery, err = cast.ToDurationE(v.Get("slow_query")); err != nil {
		errs = append(errs, keyError("slow_query", err))
	}
	if cfg.ShutdownTimeout, err = cast.ToDurationE(v.Get("shutdown_timeout")); err != nil {
		errs = append(errs, keyError("shutdown_timeout", err))
	}
	if cfg.LogQueries, err = cast.ToBoolE(v.Get("log_queries")); err != nil {
		errs = append(errs, keyError("log_queries", err))
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("log_level"))); err != nil {
		errs = append(errs, keyError("log_level", err))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// keyError names the environment variable a bad value came from.
func keyError(key string, err error) error {
	return fmt.Errorf("%s_%s: %w", EnvPrefix, strings.ToUpper(key), err)
}

// Validate checks the values that parse but cannot be served.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("config: USERFORMS_DB_DRIVER %q: want sqlite3 or postgres", c.DBDriver)
	}
	if c.DBDSN == "" {
		return errors.New("config: USERFORMS_DB_DSN is empty")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("config: USERFORMS_DB_MAX_CONNS must be positive, got %d", c.DBMaxConns)
	}
	if c.SlowQuery <= 0 || c.ShutdownTimeout <= 0 {
		return errors.New("config: durations must be positive")
	}
	return nil
}
