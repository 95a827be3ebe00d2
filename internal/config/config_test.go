package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "RESTAURANT_TZ", "SNAPSHOT_TTL", "KAFKA_BROKERS", "REDIS_ADDR", "CONSUMER_WORKERS", "EXPIRY_SWEEP_INTERVAL", "SHARED_CATALOG_TTL"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, time.UTC, cfg.TimeZone)
	assert.Equal(t, 30*time.Second, cfg.SnapshotTTL)
	assert.Equal(t, 15*time.Minute, cfg.ExpirySweepInterval)
	assert.Equal(t, 4, cfg.ConsumerWorkers)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("RESTAURANT_TZ", "Europe/Madrid")
	t.Setenv("SNAPSHOT_TTL", "5s")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("CONSUMER_WORKERS", "2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Madrid", cfg.TimeZone.String())
	assert.Equal(t, 5*time.Second, cfg.SnapshotTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 2, cfg.ConsumerWorkers)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"bad zone", "RESTAURANT_TZ", "Mars/Olympus"},
		{"bad duration", "SNAPSHOT_TTL", "soon"},
		{"bad workers", "CONSUMER_WORKERS", "many"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.ErrorContains(t, err, tt.key)
		})
	}
}
