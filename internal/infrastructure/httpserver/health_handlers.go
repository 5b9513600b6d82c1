package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type healthResponse struct {
	Status       string            `json:"status"`
	Timestamp    string            `json:"timestamp"`
	Service      string            `json:"service"`
	Mode         string            `json:"mode,omitempty"`
	CachedCities int               `json:"cached_cities"`
	Dependencies map[string]string `json:"dependencies"`
}

// healthCheck probes every registered dependency. Any failure degrades the
// service and answers 503.
func (s *Server) healthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	deps := make(map[string]string)
	overall := "healthy"
	for _, hc := range s.healthCheckers {
		if hc == nil {
			continue
		}
		if err := hc.Check(ctx); err != nil {
			deps[hc.Name()] = "unhealthy"
			overall = "degraded"
			if s.logger != nil {
				s.logger.WithField("dependency", hc.Name()).WithError(err).Warn("health check failed")
			}
		} else {
			deps[hc.Name()] = "healthy"
		}
	}

	resp := healthResponse{
		Status:       overall,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Service:      "weather-sdk",
		Dependencies: deps,
	}
	if s.weatherSvc != nil {
		resp.Mode = s.weatherSvc.Mode().String()
		resp.CachedCities = len(s.weatherSvc.CachedCities())
	}

	code := http.StatusOK
	if overall != "healthy" {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, resp)
}
