package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/avatarctic/weather-sdk/go/internal/core/domain/weather"
	"github.com/avatarctic/weather-sdk/go/internal/core/ports"
)

const (
	DefaultBaseURL = "https://api.openweathermap.org"
	DefaultUnits   = "metric"
	DefaultTimeout = 10 * time.Second

	currentWeatherPath = "/data/2.5/weather"
	maxBodyBytes       = 1 << 20
)

// Config holds the provider connection settings.
type Config struct {
	BaseURL string
	Units   string
	Timeout time.Duration
}

// Client fetches current weather from the OpenWeather REST API.
type Client struct {
	baseURL    string
	units      string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewClient(cfg Config, logger *logrus.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	units := cfg.Units
	if units == "" {
		units = DefaultUnits
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		units:      units,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type errorBody struct {
	Message string `json:"message"`
}

// Fetch returns the current weather for city. Every failure is a *weather.FetchError.
func (c *Client) Fetch(ctx context.Context, city, apiKey string) (*weather.Document, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", apiKey)
	q.Set("units", c.units)
	endpoint := c.baseURL + currentWeatherPath + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &weather.FetchError{City: city, Kind: weather.FetchNetwork, Err: fmt.Errorf("failed to build request: %w", stripURL(err))}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &weather.FetchError{City: city, Kind: weather.FetchNetwork, Err: stripURL(err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &weather.FetchError{City: city, Kind: weather.FetchNetwork, StatusCode: resp.StatusCode, Err: stripURL(err)}
	}

	if c.logger != nil {
		c.logger.WithFields(logrus.Fields{
			"city":        city,
			"status":      resp.StatusCode,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Debug("openweather request completed")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(city, resp.StatusCode, body)
	}

	var doc weather.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &weather.FetchError{City: city, Kind: weather.FetchDecode, StatusCode: resp.StatusCode, Err: err}
	}
	return &doc, nil
}

func statusError(city string, status int, body []byte) *weather.FetchError {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)

	kind := weather.FetchUpstream
	switch status {
	case http.StatusUnauthorized:
		kind = weather.FetchUnauthorized
	case http.StatusNotFound:
		kind = weather.FetchCityNotFound
	}
	return &weather.FetchError{City: city, Kind: kind, StatusCode: status, Message: eb.Message}
}

// stripURL drops the request URL from transport errors so the API key never
// reaches logs or callers.
func stripURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}

var _ ports.WeatherFetcher = (*Client)(nil)
