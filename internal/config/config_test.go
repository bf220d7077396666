package config_test

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/simonvc/simplebalance/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(config.New())
	require.NoError(t, err)

	assert.Equal(t, "simplebalance.db", cfg.DB)
	assert.Equal(t, ":8888", cfg.Addr)
	assert.Equal(t, "http://localhost:8888", cfg.Server)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.SaveTimeout)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("SIMPLEBALANCE_DB", ":memory:")
	t.Setenv("SIMPLEBALANCE_SERVER", "http://ledger.local:9000/")
	t.Setenv("SIMPLEBALANCE_LOG_LEVEL", "debug")
	t.Setenv("SIMPLEBALANCE_SAVE_TIMEOUT", "250ms")

	cfg, err := config.Load(config.New())
	require.NoError(t, err)

	assert.Equal(t, ":memory:", cfg.DB)
	assert.Equal(t, "http://ledger.local:9000", cfg.Server)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 250*time.Millisecond, cfg.SaveTimeout)
}

func TestLoad_OverridesWinOverEnvironment(t *testing.T) {
	t.Setenv("SIMPLEBALANCE_DB", "from-env.db")

	v := config.New()
	v.Set(config.KeyDB, "from-flag.db")

	cfg, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, "from-flag.db", cfg.DB)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"empty db", "SIMPLEBALANCE_DB", ""},
		{"bad level", "SIMPLEBALANCE_LOG_LEVEL", "loud"},
		{"bad timeout", "SIMPLEBALANCE_SAVE_TIMEOUT", "soon"},
		{"zero timeout", "SIMPLEBALANCE_SAVE_TIMEOUT", "0s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := config.New()
			v.Set(config.KeyDB, "x.db")
			switch tt.key {
			case "SIMPLEBALANCE_DB":
				v.Set(config.KeyDB, tt.val)
			default:
				t.Setenv(tt.key, tt.val)
			}
			_, err := config.Load(v)
			assert.Error(t, err)
		})
	}
}

func TestLogger_RespectsLevel(t *testing.T) {
	cfg := &config.Config{LogLevel: slog.LevelWarn}
	var buf bytes.Buffer
	log := cfg.Logger(&buf)

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
