package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// Route groups used as the "group" label.
const (
	GroupWeatherAPI = "weather_api"
	GroupOps        = "ops"
	GroupUnmatched  = "unmatched"
)

const weatherAPIPrefix = "/api/v1/"

// MetricsMiddleware records request counts and latencies labelled by
// method, route group, route template and status.
type MetricsMiddleware struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetricsMiddleware creates a new metrics middleware instance. requestsTotal
// takes (method, group, endpoint, status) and requestDuration (method, group, endpoint).
func NewMetricsMiddleware(requestsTotal *prometheus.CounterVec, requestDuration *prometheus.HistogramVec) *MetricsMiddleware {
	return &MetricsMiddleware{
		requestsTotal:   requestsTotal,
		requestDuration: requestDuration,
	}
}

// CollectHTTPMetrics creates middleware that collects HTTP request metrics
func (m *MetricsMiddleware) CollectHTTPMetrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			// Route templates keep city names out of the label values.
			endpoint := c.Path()
			group := routeGroup(endpoint)
			if errors.Is(err, echo.ErrNotFound) || errors.Is(err, echo.ErrMethodNotAllowed) {
				group = GroupUnmatched
			}
			if group == GroupUnmatched {
				endpoint = GroupUnmatched
			}
			status := c.Response().Status
			if err != nil && !c.Response().Committed {
				// The error handler has not written the response yet.
				status = http.StatusInternalServerError
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			method := c.Request().Method

			m.requestsTotal.WithLabelValues(method, group, endpoint, strconv.Itoa(status)).Inc()
			m.requestDuration.WithLabelValues(method, group, endpoint).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

func routeGroup(path string) string {
	switch {
	case path == "" || path == "/*":
		return GroupUnmatched
	case strings.HasPrefix(path, weatherAPIPrefix):
		return GroupWeatherAPI
	default:
		return GroupOps
	}
}
