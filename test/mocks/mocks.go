package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/avatarctic/weather-sdk/go/internal/core/domain/weather"
	"github.com/avatarctic/weather-sdk/go/internal/core/ports"
)

// WeatherFetcherMock is a lightweight mock for WeatherFetcher that records calls.
type WeatherFetcherMock struct {
	FetchFn func(ctx context.Context, city, apiKey string) (*weather.Document, error)

	mu    sync.Mutex
	calls []string
}

func (m *WeatherFetcherMock) Fetch(ctx context.Context, city, apiKey string) (*weather.Document, error) {
	m.mu.Lock()
	m.calls = append(m.calls, city)
	m.mu.Unlock()
	if m.FetchFn != nil {
		return m.FetchFn(ctx, city, apiKey)
	}
	return &weather.Document{Name: city}, nil
}

// Calls returns the cities fetched so far, in call order.
func (m *WeatherFetcherMock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times city was fetched.
func (m *WeatherFetcherMock) CallCount(city string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == city {
			n++
		}
	}
	return n
}

// InstanceRegistryMock is a lightweight mock for InstanceRegistry
type InstanceRegistryMock struct {
	ReserveFn func(ctx context.Context, id string) error
	ReleaseFn func(ctx context.Context, id string) error
}

func (m *InstanceRegistryMock) Reserve(ctx context.Context, id string) error {
	if m.ReserveFn != nil {
		return m.ReserveFn(ctx, id)
	}
	return nil
}

func (m *InstanceRegistryMock) Release(ctx context.Context, id string) error {
	if m.ReleaseFn != nil {
		return m.ReleaseFn(ctx, id)
	}
	return nil
}

// WeatherServiceMock is a lightweight mock for WeatherService
type WeatherServiceMock struct {
	LookupFn       func(ctx context.Context, city string) (*weather.Document, error)
	CachedCitiesFn func() []string
	ModeFn         func() weather.Mode
	DisposedFn     func() bool
	DisposeFn      func(ctx context.Context) error
}

func (m *WeatherServiceMock) Lookup(ctx context.Context, city string) (*weather.Document, error) {
	if m.LookupFn != nil {
		return m.LookupFn(ctx, city)
	}
	return nil, fmt.Errorf("not found")
}

func (m *WeatherServiceMock) CachedCities() []string {
	if m.CachedCitiesFn != nil {
		return m.CachedCitiesFn()
	}
	return nil
}

func (m *WeatherServiceMock) Mode() weather.Mode {
	if m.ModeFn != nil {
		return m.ModeFn()
	}
	return weather.ModeOnDemand
}

func (m *WeatherServiceMock) Disposed() bool {
	if m.DisposedFn != nil {
		return m.DisposedFn()
	}
	return false
}

func (m *WeatherServiceMock) Dispose(ctx context.Context) error {
	if m.DisposeFn != nil {
		return m.DisposeFn(ctx)
	}
	return nil
}

var (
	_ ports.WeatherFetcher   = (*WeatherFetcherMock)(nil)
	_ ports.InstanceRegistry = (*InstanceRegistryMock)(nil)
	_ ports.WeatherService   = (*WeatherServiceMock)(nil)
)
