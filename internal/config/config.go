// Package config loads simplebalance settings from flags, the environment
// and an optional .env file, in that order of precedence.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. SIMPLEBALANCE_DB.
const EnvPrefix = "SIMPLEBALANCE"

// Keys shared by viper, the environment and the cobra flags bound to them.
const (
	KeyDB          = "db"
	KeyAddr        = "addr"
	KeyServer      = "server"
	KeyLogLevel    = "log_level"
	KeySaveTimeout = "save_timeout"
)

// Config holds application configuration.
type Config struct {
	// DB is a SQLite path, ":memory:" or a postgres:// URL.
	DB          string
	Addr        string
	Server      string
	LogLevel    slog.Level
	SaveTimeout time.Duration
}

// New returns a viper instance with defaults set and the environment
// attached. Callers bind their flags to it before calling Load.
func New() *viper.Viper {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault(KeyDB, "simplebalance.db")
	v.SetDefault(KeyAddr, ":8888")
	v.SetDefault(KeyServer, "http://localhost:8888")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeySaveTimeout, "10s")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the settings out of v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DB:     v.GetString(KeyDB),
		Addr:   v.GetString(KeyAddr),
		Server: strings.TrimRight(v.GetString(KeyServer), "/"),
	}
	if cfg.DB == "" {
		return nil, fmt.Errorf("%s_DB must not be empty", EnvPrefix)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString(KeyLogLevel))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", v.GetString(KeyLogLevel), err)
	}

	timeout, err := time.ParseDuration(v.GetString(KeySaveTimeout))
	if err != nil {
		return nil, fmt.Errorf("invalid save timeout %q: %w", v.GetString(KeySaveTimeout), err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("save timeout must be positive, got %s", timeout)
	}
	cfg.SaveTimeout = timeout

	return cfg, nil
}

// Logger builds the process logger at the configured level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.LogLevel}))
}
