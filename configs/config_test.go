package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("WEATHER_API_KEY", "abc")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "abc", cfg.Weather.APIKey)
	require.Equal(t, "https://api.openweathermap.org", cfg.Weather.BaseURL)
	require.Equal(t, "metric", cfg.Weather.Units)
	require.Equal(t, "on_demand", cfg.Weather.Mode)
	require.Equal(t, 10*time.Second, cfg.Weather.HTTPTimeout)
	require.Equal(t, 10, cfg.Cache.Capacity)
	require.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	require.Equal(t, 5*time.Minute, cfg.Cache.PollInterval)
	require.Equal(t, RegistryBackendMemory, cfg.Registry.Backend)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr())
	require.Zero(t, cfg.RateLimit.RequestsPerSecond)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("WEATHER_API_KEY", "abc")
	t.Setenv("WEATHER_MODE", "polling")
	t.Setenv("CACHE_CAPACITY", "25")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("POLL_INTERVAL", "1m")
	t.Setenv("REGISTRY_BACKEND", "redis")
	t.Setenv("REDIS_HOST", "cache.internal")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "polling", cfg.Weather.Mode)
	require.Equal(t, 25, cfg.Cache.Capacity)
	require.Equal(t, 90*time.Second, cfg.Cache.TTL)
	require.Equal(t, time.Minute, cfg.Cache.PollInterval)
	require.Equal(t, RegistryBackendRedis, cfg.Registry.Backend)
	require.Equal(t, "cache.internal:6379", cfg.Redis.Addr())
	require.InDelta(t, 2.5, cfg.RateLimit.RequestsPerSecond, 0.0001)
}

func TestLoad_MalformedNumbersFallBack(t *testing.T) {
	t.Setenv("WEATHER_API_KEY", "abc")
	t.Setenv("CACHE_CAPACITY", "lots")
	t.Setenv("CACHE_TTL", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 10, cfg.Cache.Capacity)
	require.Equal(t, 10*time.Minute, cfg.Cache.TTL)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Setenv("WEATHER_API_KEY", "abc")

	t.Run("capacity", func(t *testing.T) {
		t.Setenv("CACHE_CAPACITY", "0")
		_, err := Load()
		require.Error(t, err)
	})
	t.Run("registry backend", func(t *testing.T) {
		t.Setenv("REGISTRY_BACKEND", "etcd")
		_, err := Load()
		require.Error(t, err)
	})
}

func TestLoad_RequiresAPIKey(t *testing.T) {
	t.Setenv("WEATHER_API_KEY", "")
	require.Panics(t, func() { _, _ = Load() })
}
