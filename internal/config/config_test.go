package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	m, err := Load()
	require.NoError(t, err)

	cfg := m.Get()
	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "none", cfg.EventBroker)
	assert.Equal(t, 30*time.Second, cfg.TrackingStep)
	assert.Equal(t, 10*time.Minute, cfg.MFACodeTTL)
	assert.Equal(t, 3, cfg.MFAMaxAttempts)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("APP_PORT", ":9090")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")

	m, err := Load()
	require.NoError(t, err)

	cfg := m.Get()
	assert.Equal(t, ":9090", cfg.AppPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokerList())
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("driver", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "mysql")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("broker", func(t *testing.T) {
		t.Setenv("EVENT_BROKER", "nats")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("production secret", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestManager_ReloadNotifiesListeners(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("LOG_LEVEL: info\n"), 0o600))
	t.Setenv("CONFIG_FILE", file)

	m, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "info", m.Get().LogLevel)

	var got string
	m.OnChange(func(c *Config) { got = c.LogLevel })

	require.NoError(t, os.WriteFile(file, []byte("LOG_LEVEL: debug\n"), 0o600))
	require.NoError(t, m.v.ReadInConfig())
	require.NoError(t, m.reload())

	assert.Equal(t, "debug", got)
	assert.Equal(t, "debug", m.Get().LogLevel)
}
