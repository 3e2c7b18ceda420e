package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "memory", cfg.StoreMode)
	assert.Equal(t, "USD", cfg.Currency)
	assert.Equal(t, 12, cfg.ServiceFeePercent)
	assert.Equal(t, 8, cfg.TaxPercent)
	assert.Equal(t, 15, cfg.DefaultCommissionPercent)
	assert.Equal(t, int64(150), cfg.ShortTermRateThreshold)
	assert.Equal(t, 1, cfg.DefaultMinNights)
	assert.Equal(t, 500*time.Millisecond, cfg.OutboxPollInterval)
	assert.Equal(t, []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}, cfg.RetryBackoff)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_MODE", "Mongo")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("SERVICE_FEE_PERCENT", "10")
	t.Setenv("RETRY_BACKOFF", "2s, 10s")
	t.Setenv("OUTBOX_POLL_INTERVAL", "1s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "mongo", cfg.StoreMode)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 10, cfg.ServiceFeePercent)
	assert.Equal(t, []time.Duration{2 * time.Second, 10 * time.Second}, cfg.RetryBackoff)
	assert.Equal(t, time.Second, cfg.OutboxPollInterval)
}

func TestLoadRejections(t *testing.T) {
	t.Run("mongo mode without uri", func(t *testing.T) {
		t.Setenv("STORE_MODE", "mongo")
		_, err := Load()
		assert.ErrorContains(t, err, "MONGO_URI")
	})

	t.Run("unknown store mode", func(t *testing.T) {
		t.Setenv("STORE_MODE", "dynamo")
		_, err := Load()
		assert.ErrorContains(t, err, "STORE_MODE")
	})

	t.Run("percent out of range", func(t *testing.T) {
		t.Setenv("TAX_PERCENT", "140")
		_, err := Load()
		assert.ErrorContains(t, err, "TAX_PERCENT")
	})

	t.Run("bad backoff component", func(t *testing.T) {
		t.Setenv("RETRY_BACKOFF", "1s,soon")
		_, err := Load()
		assert.ErrorContains(t, err, "RETRY_BACKOFF")
	})
}
