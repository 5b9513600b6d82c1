package ports

import (
	"context"
	"time"

	"github.com/avatarctic/weather-sdk/go/internal/core/domain/weather"
)

// WeatherFetcher retrieves current weather for one city from the upstream provider.
// Implementations must be safe for concurrent use and return *weather.FetchError on failure.
type WeatherFetcher interface {
	Fetch(ctx context.Context, city, apiKey string) (*weather.Document, error)
}

// WeatherCache is the bounded, write-ordered store of fetched documents.
type WeatherCache interface {
	// Get returns the entry for city without touching its recency.
	Get(city string) (weather.CacheEntry, bool)
	// Put stores doc for city as fetched at now and marks city most recently written.
	Put(city string, doc *weather.Document, now time.Time)
	// Keys returns the cached cities, oldest write first.
	Keys() []string
	Len() int
	Clear()
}

// InstanceRegistry tracks which API keys are bound to a live SDK instance.
// Reserve must be an atomic check-and-set; Release of an unknown id is a no-op.
type InstanceRegistry interface {
	Reserve(ctx context.Context, id string) error
	Release(ctx context.Context, id string) error
}

// WeatherService is the SDK facade.
type WeatherService interface {
	Lookup(ctx context.Context, city string) (*weather.Document, error)
	CachedCities() []string
	Mode() weather.Mode
	Disposed() bool
	Dispose(ctx context.Context) error
}

// Label values used by WeatherMetrics.
const (
	LookupResultHit  = "hit"
	LookupResultMiss = "miss"

	FetchSourceLookup = "lookup"
	FetchSourcePoll   = "poll"
)

// WeatherMetrics records SDK activity. Implementations must tolerate concurrent calls.
type WeatherMetrics interface {
	ObserveLookup(result string)
	ObserveFetchFailure(source string, kind weather.FetchErrorKind)
	ObserveEviction()
	ObservePollTick()
	SetCacheSize(n int)
}
