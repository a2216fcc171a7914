package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresJWTSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")

	_, err := New()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_JWT_SECRET")
}

func TestNew_Defaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, cfg.Database.WriterDSN, cfg.Database.ReaderDSN)
	assert.Equal(t, "INV-", cfg.Sales.InvoicePrefix)
	assert.Equal(t, 5, cfg.Sales.InvoiceAttempts)
	assert.Equal(t, time.UTC, cfg.Sales.Location)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "sales.events", cfg.Messaging.Kafka.Topic)
}

func TestNew_DisabledBackendsFallBackToNoop(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("MESSAGING_ENABLED", "false")
	t.Setenv("OBS_PROMETHEUS_PATH", "prom")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "noop", cfg.Cache.Driver)
	assert.Equal(t, "noop", cfg.Messaging.Driver)
	assert.Equal(t, "/prom", cfg.Observability.PrometheusPath)
}

func TestNew_SalesTimezone(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")

	t.Run("valid zone", func(t *testing.T) {
		t.Setenv("SALES_TIMEZONE", "Asia/Colombo")
		cfg, err := New()
		require.NoError(t, err)
		assert.Equal(t, "Asia/Colombo", cfg.Sales.Location.String())
	})

	t.Run("unknown zone", func(t *testing.T) {
		t.Setenv("SALES_TIMEZONE", "Mars/Olympus")
		_, err := New()
		require.Error(t, err)
	})
}

func TestNew_RejectsUnknownCacheDriver(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")
	t.Setenv("CACHE_DRIVER", "memcached")

	_, err := New()
	require.Error(t, err)
}

func TestNew_TraceSampleRate(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")

	t.Run("unparsable falls back to default", func(t *testing.T) {
		t.Setenv("OBS_TRACE_SAMPLE_RATE", "half")
		cfg, err := New()
		require.NoError(t, err)
		assert.InDelta(t, 1.0, cfg.Observability.TraceSampleRate, 0)
	})

	t.Run("out of range", func(t *testing.T) {
		t.Setenv("OBS_TRACE_SAMPLE_RATE", "1.5")
		_, err := New()
		require.Error(t, err)
	})
}

func TestGetEnvAsStringSlice(t *testing.T) {
	t.Setenv("TILLPOS_TEST_LIST", " a, ,b ")
	assert.Equal(t, []string{"a", "b"}, getEnvAsStringSlice("TILLPOS_TEST_LIST", nil))

	t.Setenv("TILLPOS_TEST_LIST", " , ")
	assert.Equal(t, []string{"x"}, getEnvAsStringSlice("TILLPOS_TEST_LIST", []string{"x"}))
}
