package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/weather-sdk/go/internal/core/domain/weather"
	"github.com/avatarctic/weather-sdk/go/internal/core/ports"
)

// WeatherServiceConfig groups the per-instance settings of the SDK facade.
type WeatherServiceConfig struct {
	APIKey       string
	Mode         weather.Mode
	Freshness    time.Duration
	PollInterval time.Duration
	// Now overrides the clock; used by tests.
	Now func() time.Time
}

// WeatherServiceDeps are the collaborators owned or shared by one instance.
// Cache must not be shared with another instance.
type WeatherServiceDeps struct {
	Cache    ports.WeatherCache
	Fetcher  ports.WeatherFetcher
	Registry ports.InstanceRegistry
	Metrics  ports.WeatherMetrics
	Logger   *logrus.Logger
}

// WeatherService serves city lookups from a bounded cache and falls back to the
// provider on a miss or stale entry. Concurrent lookups for the same stale city
// may each fetch; the last write wins.
type WeatherService struct {
	id        uuid.UUID
	apiKey    string
	mode      weather.Mode
	freshness time.Duration
	now       func() time.Time

	cache    ports.WeatherCache
	fetcher  ports.WeatherFetcher
	registry ports.InstanceRegistry
	poller   *Poller
	metrics  ports.WeatherMetrics
	logger   *logrus.Logger

	// mu guards disposed; Lookup writes to the cache under it so nothing
	// lands in the cache after Dispose has cleared it.
	mu       sync.Mutex
	disposed bool

	// disposeMu serializes Dispose; released is set once the key is freed.
	disposeMu sync.Mutex
	released  bool
}

// NewWeatherService reserves cfg.APIKey in the registry and, in polling mode,
// starts the background refresh. It fails with weather.ErrDuplicateInstance if
// the key is already held by a live instance.
func NewWeatherService(cfg *WeatherServiceConfig, deps WeatherServiceDeps) (*WeatherService, error) {
	if cfg == nil || strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: API key must not be empty", weather.ErrInvalidInput)
	}
	if deps.Cache == nil || deps.Fetcher == nil || deps.Registry == nil {
		return nil, fmt.Errorf("weather service requires a cache, a fetcher and a registry")
	}

	mode := cfg.Mode
	if mode == "" {
		mode = weather.ModeOnDemand
	}
	if mode != weather.ModeOnDemand && mode != weather.ModePolling {
		return nil, fmt.Errorf("%w: unknown mode %q", weather.ErrInvalidInput, mode)
	}
	freshness := cfg.Freshness
	if freshness <= 0 {
		freshness = weather.DefaultFreshness
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	m := deps.Metrics
	if m == nil {
		m = noopMetrics{}
	}

	if err := deps.Registry.Reserve(context.Background(), cfg.APIKey); err != nil {
		if errors.Is(err, weather.ErrDuplicateInstance) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to reserve API key: %w", err)
	}

	s := &WeatherService{
		id:        uuid.New(),
		apiKey:    cfg.APIKey,
		mode:      mode,
		freshness: freshness,
		now:       now,
		cache:     deps.Cache,
		fetcher:   deps.Fetcher,
		registry:  deps.Registry,
		metrics:   m,
		logger:    deps.Logger,
	}

	if mode == weather.ModePolling {
		s.poller = NewPoller(PollerConfig{
			Cache:    deps.Cache,
			Fetcher:  deps.Fetcher,
			APIKey:   cfg.APIKey,
			Interval: cfg.PollInterval,
			Now:      now,
			Metrics:  m,
			Logger:   deps.Logger,
		})
		s.poller.Start()
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"instance_id": s.id, "mode": mode}).Info("weather service created")
	}
	return s, nil
}

// Lookup returns the weather for city, from cache when fresh.
// A failed fetch is returned even if a stale entry exists. A fetch that
// completes after Dispose is dropped and reported as weather.ErrDisposed.
func (s *WeatherService) Lookup(ctx context.Context, city string) (*weather.Document, error) {
	if strings.TrimSpace(city) == "" {
		return nil, fmt.Errorf("%w: city name must not be empty", weather.ErrInvalidInput)
	}
	if s.isDisposed() {
		return nil, weather.ErrDisposed
	}

	if entry, ok := s.cache.Get(city); ok && entry.IsFresh(s.now(), s.freshness) {
		s.metrics.ObserveLookup(ports.LookupResultHit)
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"instance_id": s.id, "city": city}).Debug("weather cache hit")
		}
		return entry.Document, nil
	}
	s.metrics.ObserveLookup(ports.LookupResultMiss)

	doc, err := s.fetcher.Fetch(ctx, city, s.apiKey)
	if err != nil {
		fe := weather.AsFetchError(city, err)
		s.metrics.ObserveFetchFailure(ports.FetchSourceLookup, fe.Kind)
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"instance_id": s.id, "city": city, "kind": fe.Kind}).WithError(err).Warn("weather fetch failed")
		}
		return nil, fe
	}

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return nil, weather.ErrDisposed
	}
	s.cache.Put(city, doc, s.now())
	s.mu.Unlock()
	s.metrics.SetCacheSize(s.cache.Len())
	return doc, nil
}

// CachedCities returns the cached city names, oldest write first.
func (s *WeatherService) CachedCities() []string {
	return s.cache.Keys()
}

func (s *WeatherService) Mode() weather.Mode {
	return s.mode
}

// ID identifies this instance in logs.
func (s *WeatherService) ID() uuid.UUID {
	return s.id
}

// Polling reports whether the background refresh is running.
func (s *WeatherService) Polling() bool {
	return s.poller != nil && s.poller.Running()
}

// Dispose stops polling, clears the cache and releases the API key.
// If the release fails, a later call retries it; once the key is released,
// Dispose is a no-op.
func (s *WeatherService) Dispose(ctx context.Context) error {
	s.disposeMu.Lock()
	defer s.disposeMu.Unlock()
	if s.released {
		return nil
	}

	s.mu.Lock()
	first := !s.disposed
	s.disposed = true
	s.mu.Unlock()

	if first {
		if s.poller != nil {
			s.poller.Stop()
		}
		s.cache.Clear()
		s.metrics.SetCacheSize(0)
	}

	if err := s.registry.Release(ctx, s.apiKey); err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"instance_id": s.id}).WithError(err).Error("failed to release API key")
		}
		return fmt.Errorf("failed to release API key: %w", err)
	}
	s.released = true

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"instance_id": s.id}).Info("weather service disposed")
	}
	return nil
}

// Disposed reports whether Dispose has been called.
func (s *WeatherService) Disposed() bool {
	return s.isDisposed()
}

func (s *WeatherService) isDisposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}

var _ ports.WeatherService = (*WeatherService)(nil)
