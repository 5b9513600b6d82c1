package services_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	impl "github.com/avatarctic/weather-sdk/go/internal/application/services"
	"github.com/avatarctic/weather-sdk/go/internal/core/domain/weather"
	tmocks "github.com/avatarctic/weather-sdk/go/test/mocks"
)

func TestRefreshOnce_IsolatesFailures(t *testing.T) {
	c := newTestCache(t)
	clock := newFakeClock()
	written := clock.Now()
	for _, city := range []string{"A", "B", "C"} {
		c.Put(city, &weather.Document{Name: "old"}, written)
	}
	fetcher := &tmocks.WeatherFetcherMock{FetchFn: func(ctx context.Context, city, apiKey string) (*weather.Document, error) {
		if city == "B" {
			return nil, &weather.FetchError{City: city, Kind: weather.FetchUpstream, StatusCode: 500}
		}
		return &weather.Document{Name: "new"}, nil
	}}
	clock.Advance(time.Minute)
	p := impl.NewPoller(impl.PollerConfig{Cache: c, Fetcher: fetcher, APIKey: "key", Now: clock.Now})

	refreshed, failed := p.RefreshOnce(context.Background())
	require.Equal(t, 2, refreshed)
	require.Equal(t, 1, failed)
	require.Equal(t, []string{"A", "B", "C"}, fetcher.Calls())

	b, ok := c.Get("B")
	require.True(t, ok)
	require.Equal(t, "old", b.Document.Name)
	require.True(t, b.FetchedAt.Equal(written))

	a, _ := c.Get("A")
	require.Equal(t, "new", a.Document.Name)
	require.True(t, a.FetchedAt.Equal(clock.Now()))
}

func TestRefreshOnce_UsesCurrentKeys(t *testing.T) {
	c := newTestCache(t)
	fetcher := &tmocks.WeatherFetcherMock{}
	p := impl.NewPoller(impl.PollerConfig{Cache: c, Fetcher: fetcher, APIKey: "key"})

	refreshed, _ := p.RefreshOnce(context.Background())
	require.Zero(t, refreshed)

	c.Put("Tokyo", &weather.Document{}, time.Now())
	refreshed, _ = p.RefreshOnce(context.Background())
	require.Equal(t, 1, refreshed)
	require.Equal(t, []string{"Tokyo"}, fetcher.Calls())
}

func TestRefreshOnce_StopsOnCanceledContext(t *testing.T) {
	c := newTestCache(t)
	c.Put("A", &weather.Document{}, time.Now())
	c.Put("B", &weather.Document{}, time.Now())
	fetcher := &tmocks.WeatherFetcherMock{}
	p := impl.NewPoller(impl.PollerConfig{Cache: c, Fetcher: fetcher})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	refreshed, failed := p.RefreshOnce(ctx)
	require.Zero(t, refreshed)
	require.Zero(t, failed)
	require.Empty(t, fetcher.Calls())
}

func TestPoller_StartStop(t *testing.T) {
	c := newTestCache(t)
	c.Put("Paris", &weather.Document{}, time.Now())
	fetcher := &tmocks.WeatherFetcherMock{}
	p := impl.NewPoller(impl.PollerConfig{Cache: c, Fetcher: fetcher, APIKey: "key", Interval: 5 * time.Millisecond})

	require.False(t, p.Running())
	p.Start()
	p.Start()
	require.True(t, p.Running())

	require.Eventually(t, func() bool { return fetcher.CallCount("Paris") >= 2 }, time.Second, 5*time.Millisecond)

	p.Stop()
	require.False(t, p.Running())
	after := len(fetcher.Calls())
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, after, len(fetcher.Calls()))

	p.Stop()
}

func TestPoller_FirstPassRunsImmediately(t *testing.T) {
	c := newTestCache(t)
	c.Put("Paris", &weather.Document{}, time.Now())
	fetcher := &tmocks.WeatherFetcherMock{}
	p := impl.NewPoller(impl.PollerConfig{Cache: c, Fetcher: fetcher, Interval: time.Hour})

	p.Start()
	defer p.Stop()
	require.Eventually(t, func() bool { return fetcher.CallCount("Paris") == 1 }, time.Second, 5*time.Millisecond)
}

func TestPoller_StopWaitsForInFlightFetch(t *testing.T) {
	c := newTestCache(t)
	c.Put("Slow", &weather.Document{}, time.Now())
	c.Put("Next", &weather.Document{}, time.Now())

	started := make(chan struct{})
	var finished int32
	fetcher := &tmocks.WeatherFetcherMock{FetchFn: func(ctx context.Context, city, apiKey string) (*weather.Document, error) {
		if city == "Slow" {
			close(started)
			<-ctx.Done()
			atomic.StoreInt32(&finished, 1)
			return nil, ctx.Err()
		}
		return &weather.Document{}, nil
	}}
	p := impl.NewPoller(impl.PollerConfig{Cache: c, Fetcher: fetcher, Interval: time.Hour})

	p.Start()
	<-started
	p.Stop()

	require.Equal(t, int32(1), atomic.LoadInt32(&finished), "Stop must wait for the in-flight fetch")
	require.Equal(t, []string{"Slow"}, fetcher.Calls(), "no fetch may start once stopping")
}

func TestPoller_RestartAfterStop(t *testing.T) {
	c := newTestCache(t)
	c.Put("Paris", &weather.Document{}, time.Now())
	fetcher := &tmocks.WeatherFetcherMock{FetchFn: func(ctx context.Context, city, apiKey string) (*weather.Document, error) {
		return nil, errors.New("upstream down")
	}}
	p := impl.NewPoller(impl.PollerConfig{Cache: c, Fetcher: fetcher, Interval: 5 * time.Millisecond})

	p.Start()
	require.Eventually(t, func() bool { return len(fetcher.Calls()) >= 2 }, time.Second, 5*time.Millisecond)
	p.Stop()

	before := len(fetcher.Calls())
	p.Start()
	defer p.Stop()
	require.Eventually(t, func() bool { return len(fetcher.Calls()) > before }, time.Second, 5*time.Millisecond)

	_, ok := c.Get("Paris")
	require.True(t, ok, "failed refreshes keep the existing entry")
}
