package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "9090", cfg.MetricsPort)
	assert.Equal(t, BroadcastInline, cfg.Notify.BroadcastMode)
	assert.Equal(t, 50, cfg.Notify.BroadcastCap)
	assert.Equal(t, 500, cfg.Notify.BroadcastBatch)
	assert.Equal(t, 30, cfg.Notify.RetentionDays)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("ENV", "production")
	t.Setenv("NOTIFY_BROADCAST_MODE", "async")
	t.Setenv("NOTIFY_BROADCAST_CAP", "0")
	t.Setenv("REDIS_DB", "4")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, BroadcastAsync, cfg.Notify.BroadcastMode)
	assert.Equal(t, 0, cfg.Notify.BroadcastCap)
	assert.Equal(t, 4, cfg.RedisDB)
}

func TestLoad_UnknownBroadcastModeFallsBackToInline(t *testing.T) {
	t.Setenv("NOTIFY_BROADCAST_MODE", "carrier-pigeon")
	t.Setenv("NOTIFY_BROADCAST_BATCH", "-3")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, BroadcastInline, cfg.Notify.BroadcastMode)
	assert.Equal(t, 500, cfg.Notify.BroadcastBatch)
}

func TestLoad_RejectsNegativeLimits(t *testing.T) {
	t.Run("broadcast cap", func(t *testing.T) {
		t.Setenv("NOTIFY_BROADCAST_CAP", "-1")
		_, err := load()
		assert.ErrorContains(t, err, "NOTIFY_BROADCAST_CAP")
	})
	t.Run("retention days", func(t *testing.T) {
		t.Setenv("NOTIFY_RETENTION_DAYS", "-5")
		_, err := load()
		assert.ErrorContains(t, err, "NOTIFY_RETENTION_DAYS")
	})
}
