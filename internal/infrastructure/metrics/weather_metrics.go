package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/avatarctic/weather-sdk/go/internal/core/domain/weather"
	"github.com/avatarctic/weather-sdk/go/internal/core/ports"
)

const namespace = "weather_sdk"

const (
	ResultHit  = ports.LookupResultHit
	ResultMiss = ports.LookupResultMiss

	SourceLookup = ports.FetchSourceLookup
	SourcePoll   = ports.FetchSourcePoll
)

// WeatherMetrics holds the Prometheus collectors for the SDK core.
// A nil *WeatherMetrics is valid and records nothing.
type WeatherMetrics struct {
	lookups       *prometheus.CounterVec
	fetchFailures *prometheus.CounterVec
	evictions     prometheus.Counter
	pollTicks     prometheus.Counter
	cacheSize     prometheus.Gauge
}

// NewWeatherMetrics creates the collectors and registers them with reg when it is not nil.
func NewWeatherMetrics(reg prometheus.Registerer) *WeatherMetrics {
	m := &WeatherMetrics{
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lookups_total",
				Help:      "Weather lookups by cache result",
			},
			[]string{"result"},
		),
		fetchFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_failures_total",
				Help:      "Failed provider calls by source and failure kind",
			},
			[]string{"source", "kind"},
		),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_evictions_total",
			Help:      "Cities evicted to make room for new ones",
		}),
		pollTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_ticks_total",
			Help:      "Completed background refresh passes",
		}),
		cacheSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_entries",
			Help:      "Cities currently cached",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.lookups, m.fetchFailures, m.evictions, m.pollTicks, m.cacheSize)
	}
	return m
}

func (m *WeatherMetrics) ObserveLookup(result string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(result).Inc()
}

func (m *WeatherMetrics) ObserveFetchFailure(source string, kind weather.FetchErrorKind) {
	if m == nil {
		return
	}
	m.fetchFailures.WithLabelValues(source, string(kind)).Inc()
}

func (m *WeatherMetrics) ObserveEviction() {
	if m == nil {
		return
	}
	m.evictions.Inc()
}

func (m *WeatherMetrics) ObservePollTick() {
	if m == nil {
		return
	}
	m.pollTicks.Inc()
}

func (m *WeatherMetrics) SetCacheSize(n int) {
	if m == nil {
		return
	}
	m.cacheSize.Set(float64(n))
}

// Lookups exposes the lookup counter for tests and dashboards.
func (m *WeatherMetrics) Lookups() *prometheus.CounterVec { return m.lookups }

// FetchFailures exposes the failure counter.
func (m *WeatherMetrics) FetchFailures() *prometheus.CounterVec { return m.fetchFailures }

func (m *WeatherMetrics) Evictions() prometheus.Counter { return m.evictions }

func (m *WeatherMetrics) PollTicks() prometheus.Counter { return m.pollTicks }

func (m *WeatherMetrics) CacheSize() prometheus.Gauge { return m.cacheSize }

var _ ports.WeatherMetrics = (*WeatherMetrics)(nil)
