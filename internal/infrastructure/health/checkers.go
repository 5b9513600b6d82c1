package health

import (
	"context"

	"github.com/go-redis/redis/v8"

	"github.com/avatarctic/weather-sdk/go/internal/core/domain/weather"
	"github.com/avatarctic/weather-sdk/go/internal/core/ports"
)

// redisHealthChecker wraps the redis client for health checks.
type redisHealthChecker struct{ client redis.Cmdable }

func (r *redisHealthChecker) Name() string                    { return "redis" }
func (r *redisHealthChecker) Check(ctx context.Context) error { return r.client.Ping(ctx).Err() }

// NewRedisHealthChecker creates a health checker for Redis.
func NewRedisHealthChecker(client redis.Cmdable) ports.HealthChecker {
	return &redisHealthChecker{client: client}
}

type disposable interface {
	Disposed() bool
}

// weatherServiceChecker reports unhealthy once the service has been disposed.
type weatherServiceChecker struct{ svc disposable }

func (w *weatherServiceChecker) Name() string { return "weather_service" }

func (w *weatherServiceChecker) Check(ctx context.Context) error {
	if w.svc.Disposed() {
		return weather.ErrDisposed
	}
	return nil
}

// NewWeatherServiceChecker creates a health checker for the weather service.
func NewWeatherServiceChecker(svc disposable) ports.HealthChecker {
	return &weatherServiceChecker{svc: svc}
}
