package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/avatarctic/weather-sdk/go/internal/core/domain/weather"
	"github.com/avatarctic/weather-sdk/go/internal/core/ports"
)

// Poller periodically refetches every city currently held in the cache.
// It is either stopped or running; Stop waits for the loop to exit.
type Poller struct {
	cache    ports.WeatherCache
	fetcher  ports.WeatherFetcher
	apiKey   string
	interval time.Duration
	now      func() time.Time
	metrics  ports.WeatherMetrics
	logger   *logrus.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// PollerConfig groups the Poller's dependencies.
type PollerConfig struct {
	Cache    ports.WeatherCache
	Fetcher  ports.WeatherFetcher
	APIKey   string
	Interval time.Duration
	Now      func() time.Time
	Metrics  ports.WeatherMetrics
	Logger   *logrus.Logger
}

func NewPoller(cfg PollerConfig) *Poller {
	interval := cfg.Interval
	if interval <= 0 {
		interval = weather.DefaultPollInterval
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	m := cfg.Metrics
	if m == nil {
		m = noopMetrics{}
	}
	return &Poller{
		cache:    cfg.Cache,
		fetcher:  cfg.Fetcher,
		apiKey:   cfg.APIKey,
		interval: interval,
		now:      now,
		metrics:  m,
		logger:   cfg.Logger,
	}
}

// Start launches the refresh loop. The first pass runs immediately.
// Calling Start on a running Poller does nothing.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(ctx, p.done)

	if p.logger != nil {
		p.logger.WithFields(logrus.Fields{"interval": p.interval.String()}).Info("weather poller started")
	}
}

// Stop cancels the loop and blocks until it has exited. No fetch is started
// after Stop returns. Stopping a stopped Poller does nothing.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	if p.logger != nil {
		p.logger.Info("weather poller stopped")
	}
}

// Running reports whether the loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.RefreshOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.RefreshOnce(ctx)
		}
	}
}

// RefreshOnce runs a single pass over the cities cached right now and returns
// how many were refreshed and how many failed. A failure for one city never
// stops the pass.
func (p *Poller) RefreshOnce(ctx context.Context) (refreshed, failed int) {
	for _, city := range p.cache.Keys() {
		if ctx.Err() != nil {
			return refreshed, failed
		}
		doc, err := p.fetcher.Fetch(ctx, city, p.apiKey)
		if err != nil {
			if ctx.Err() != nil {
				return refreshed, failed
			}
			failed++
			fe := weather.AsFetchError(city, err)
			p.metrics.ObserveFetchFailure(ports.FetchSourcePoll, fe.Kind)
			if p.logger != nil {
				p.logger.WithFields(logrus.Fields{"city": city, "kind": fe.Kind}).WithError(err).Warn("poller: failed to refresh city")
			}
			continue
		}
		p.cache.Put(city, doc, p.now())
		refreshed++
	}

	p.metrics.ObservePollTick()
	p.metrics.SetCacheSize(p.cache.Len())
	if p.logger != nil {
		p.logger.WithFields(logrus.Fields{"refreshed": refreshed, "failed": failed}).Debug("poller pass complete")
	}
	return refreshed, failed
}

type noopMetrics struct{}

func (noopMetrics) ObserveLookup(string)                               {}
func (noopMetrics) ObserveFetchFailure(string, weather.FetchErrorKind) {}
func (noopMetrics) ObserveEviction()                                   {}
func (noopMetrics) ObservePollTick()                                   {}
func (noopMetrics) SetCacheSize(int)                                   {}
