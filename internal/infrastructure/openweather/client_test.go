package openweather_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/avatarctic/weather-sdk/go/internal/core/domain/weather"
	"github.com/avatarctic/weather-sdk/go/internal/infrastructure/openweather"
)

const londonPayload = `{
  "coord": {"lon": -0.1257, "lat": 51.5085},
  "weather": [{"id": 803, "main": "Clouds", "description": "broken clouds", "icon": "04d"}],
  "base": "stations",
  "main": {"temp": 14.2, "feels_like": 13.6, "temp_min": 12.9, "temp_max": 15.4, "pressure": 1012, "humidity": 76},
  "visibility": 10000,
  "wind": {"speed": 4.1, "deg": 240},
  "clouds": {"all": 75},
  "dt": 1700000000,
  "sys": {"country": "GB", "sunrise": 1699990000, "sunset": 1700020000},
  "timezone": 0,
  "id": 2643743,
  "name": "London",
  "cod": 200
}`

func newTestClient(t *testing.T, h http.HandlerFunc) *openweather.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return openweather.NewClient(openweather.Config{BaseURL: srv.URL, Timeout: time.Second}, nil)
}

func TestFetch_Success(t *testing.T) {
	var gotPath, gotCity, gotKey, gotUnits string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotCity = r.URL.Query().Get("q")
		gotKey = r.URL.Query().Get("appid")
		gotUnits = r.URL.Query().Get("units")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(londonPayload))
	})

	doc, err := c.Fetch(context.Background(), "London", "secret")
	require.NoError(t, err)
	require.Equal(t, "/data/2.5/weather", gotPath)
	require.Equal(t, "London", gotCity)
	require.Equal(t, "secret", gotKey)
	require.Equal(t, "metric", gotUnits)

	require.Equal(t, "London", doc.Name)
	require.Equal(t, int64(2643743), doc.ID)
	require.InDelta(t, 14.2, doc.Main.Temp, 0.001)
	require.Len(t, doc.Conditions, 1)
	require.Equal(t, "Clouds", doc.Conditions[0].Main)
	require.Equal(t, "GB", doc.Sys.Country)
}

func TestFetch_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		kind    weather.FetchErrorKind
		message string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"cod":401,"message":"Invalid API key"}`, weather.FetchUnauthorized, "Invalid API key"},
		{"not found", http.StatusNotFound, `{"cod":"404","message":"city not found"}`, weather.FetchCityNotFound, "city not found"},
		{"rate limited", http.StatusTooManyRequests, `{"cod":429,"message":"slow down"}`, weather.FetchUpstream, "slow down"},
		{"server error", http.StatusInternalServerError, `oops`, weather.FetchUpstream, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			doc, err := c.Fetch(context.Background(), "Atlantis", "secret")
			require.Nil(t, doc)
			require.ErrorIs(t, err, weather.ErrFetchFailed)

			var fe *weather.FetchError
			require.ErrorAs(t, err, &fe)
			require.Equal(t, tt.kind, fe.Kind)
			require.Equal(t, tt.status, fe.StatusCode)
			require.Equal(t, tt.message, fe.Message)
			require.Equal(t, "Atlantis", fe.City)
		})
	}
}

func TestFetch_DecodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":`))
	})

	_, err := c.Fetch(context.Background(), "London", "secret")
	var fe *weather.FetchError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, weather.FetchDecode, fe.Kind)
}

func TestFetch_NetworkErrorDoesNotLeakKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	c := openweather.NewClient(openweather.Config{BaseURL: srv.URL, Timeout: time.Second}, nil)

	_, err := c.Fetch(context.Background(), "London", "super-secret-key")
	var fe *weather.FetchError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, weather.FetchNetwork, fe.Kind)
	require.False(t, strings.Contains(err.Error(), "super-secret-key"))
}

func TestFetch_HonorsContext(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Fetch(ctx, "London", "secret")
	var fe *weather.FetchError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, weather.FetchNetwork, fe.Kind)
}
