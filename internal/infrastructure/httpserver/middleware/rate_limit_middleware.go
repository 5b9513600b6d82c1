package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware throttles lookups per client IP so a single caller cannot
// burn through the provider quota of the shared API key.
type RateLimitMiddleware struct {
	store  echoMiddleware.RateLimiterStore
	logger *logrus.Logger
}

// NewRateLimitMiddleware returns a limiter allowing rps requests per second with
// the given burst. rps <= 0 disables limiting.
func NewRateLimitMiddleware(rps float64, burst int, logger *logrus.Logger) *RateLimitMiddleware {
	if rps <= 0 {
		return &RateLimitMiddleware{logger: logger}
	}
	if burst <= 0 {
		burst = int(rps)
		if burst < 1 {
			burst = 1
		}
	}
	store := echoMiddleware.NewRateLimiterMemoryStoreWithConfig(echoMiddleware.RateLimiterMemoryStoreConfig{
		Rate:  rate.Limit(rps),
		Burst: burst,
	})
	return &RateLimitMiddleware{store: store, logger: logger}
}

func (r *RateLimitMiddleware) Handler() echo.MiddlewareFunc {
	if r.store == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return echoMiddleware.RateLimiterWithConfig(echoMiddleware.RateLimiterConfig{
		Store: r.store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			if r.logger != nil {
				r.logger.WithField("client_ip", identifier).Warn("rate limit exceeded")
			}
			return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
		},
	})
}
