package weather_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/avatarctic/weather-sdk/go/internal/core/domain/weather"
)

func TestCacheEntry_IsFresh(t *testing.T) {
	fetched := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	e := weather.CacheEntry{Document: &weather.Document{}, FetchedAt: fetched}

	require.True(t, e.IsFresh(fetched, weather.DefaultFreshness))
	require.True(t, e.IsFresh(fetched.Add(9*time.Minute+59*time.Second), weather.DefaultFreshness))
	require.False(t, e.IsFresh(fetched.Add(10*time.Minute), weather.DefaultFreshness))
	require.Equal(t, 3*time.Minute, e.Age(fetched.Add(3*time.Minute)))
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]weather.Mode{
		"":          weather.ModeOnDemand,
		"on_demand": weather.ModeOnDemand,
		"On-Demand": weather.ModeOnDemand,
		"polling":   weather.ModePolling,
		" POLL ":    weather.ModePolling,
	} {
		got, err := weather.ParseMode(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := weather.ParseMode("push")
	require.ErrorIs(t, err, weather.ErrInvalidInput)
}

func TestFetchError_MatchesFetchFailed(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("lookup: %w", &weather.FetchError{City: "Oslo", Kind: weather.FetchNetwork, Err: cause})

	require.ErrorIs(t, err, weather.ErrFetchFailed)
	require.ErrorIs(t, err, cause)
	require.NotErrorIs(t, err, weather.ErrInvalidInput)
	require.Contains(t, err.Error(), `"Oslo"`)
}

func TestAsFetchError(t *testing.T) {
	fe := &weather.FetchError{City: "Rome", Kind: weather.FetchCityNotFound, StatusCode: 404}
	require.Same(t, fe, weather.AsFetchError("Rome", fmt.Errorf("wrapped: %w", fe)))

	plain := weather.AsFetchError("Rome", errors.New("boom"))
	require.Equal(t, weather.FetchUpstream, plain.Kind)
	require.Equal(t, "Rome", plain.City)
}
