package weather

import (
	"fmt"
	"strings"
	"time"
)

// Default tuning for the SDK cache and poller.
const (
	DefaultCacheCapacity = 10
	DefaultFreshness     = 10 * time.Minute
	DefaultPollInterval  = 5 * time.Minute
)

// Document is the current-weather payload returned by the provider.
// It is stored as-is and never mutated after it enters the cache.
type Document struct {
	Coord      Coordinates `json:"coord"`
	Conditions []Condition `json:"weather"`
	Base       string      `json:"base,omitempty"`
	Main       Readings    `json:"main"`
	Visibility int         `json:"visibility"`
	Wind       Wind        `json:"wind"`
	Clouds     Clouds      `json:"clouds"`
	Dt         int64       `json:"dt"`
	Sys        Sys         `json:"sys"`
	Timezone   int         `json:"timezone"`
	ID         int64       `json:"id"`
	Name       string      `json:"name"`
	Cod        int         `json:"cod"`
}

type Coordinates struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type Readings struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Pressure  int     `json:"pressure"`
	Humidity  int     `json:"humidity"`
}

type Wind struct {
	Speed float64 `json:"speed"`
	Deg   int     `json:"deg"`
}

type Clouds struct {
	All int `json:"all"`
}

type Sys struct {
	Country string `json:"country"`
	Sunrise int64  `json:"sunrise"`
	Sunset  int64  `json:"sunset"`
}

// CacheEntry pairs a document with the moment it was fetched.
type CacheEntry struct {
	Document  *Document `json:"document"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Age returns how old the entry is relative to now.
func (e CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.FetchedAt)
}

// IsFresh reports whether the entry is younger than ttl at now.
func (e CacheEntry) IsFresh(now time.Time, ttl time.Duration) bool {
	return e.Age(now) < ttl
}

// Mode selects how the SDK keeps cached cities up to date.
type Mode string

const (
	// ModeOnDemand fetches only when a lookup misses or finds stale data.
	ModeOnDemand Mode = "on_demand"
	// ModePolling additionally refreshes every cached city in the background.
	ModePolling Mode = "polling"
)

// ParseMode accepts the configuration spellings of a mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "on_demand", "on-demand", "ondemand":
		return ModeOnDemand, nil
	case "polling", "poll":
		return ModePolling, nil
	default:
		return "", fmt.Errorf("%w: unknown weather mode %q", ErrInvalidInput, s)
	}
}

func (m Mode) String() string {
	return string(m)
}
