package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/weather-sdk/go/internal/core/domain/weather"
)

type cacheStateResponse struct {
	Mode     string   `json:"mode"`
	Capacity int      `json:"capacity"`
	Count    int      `json:"count"`
	Cities   []string `json:"cities"`
}

// getWeather looks up a city given as a path parameter.
func (s *Server) getWeather(c echo.Context) error {
	return s.lookup(c, c.Param("city"))
}

// getWeatherByQuery looks up a city given as ?city=.
func (s *Server) getWeatherByQuery(c echo.Context) error {
	return s.lookup(c, c.QueryParam("city"))
}

func (s *Server) lookup(c echo.Context, city string) error {
	doc, err := s.weatherSvc.Lookup(c.Request().Context(), city)
	if err != nil {
		return s.lookupError(c, city, err)
	}
	return c.JSON(http.StatusOK, doc)
}

func (s *Server) lookupError(c echo.Context, city string, err error) error {
	status, msg := http.StatusInternalServerError, "internal server error"

	var fe *weather.FetchError
	switch {
	case errors.Is(err, weather.ErrInvalidInput):
		status, msg = http.StatusBadRequest, "city is required"
	case errors.Is(err, weather.ErrDisposed):
		status, msg = http.StatusServiceUnavailable, "weather service unavailable"
	case errors.As(err, &fe) && fe.Kind == weather.FetchCityNotFound:
		status, msg = http.StatusNotFound, "city not found"
	case errors.Is(err, weather.ErrFetchFailed):
		status, msg = http.StatusBadGateway, "weather provider request failed"
	}

	if s.logger != nil && status >= http.StatusInternalServerError {
		s.logger.WithFields(logrus.Fields{
			"city":       city,
			"status":     status,
			"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
		}).WithError(err).Warn("weather lookup failed")
	}
	return echo.NewHTTPError(status, msg)
}

// getCacheState lists the cached cities, oldest write first.
func (s *Server) getCacheState(c echo.Context) error {
	cities := s.weatherSvc.CachedCities()
	if cities == nil {
		cities = []string{}
	}
	return c.JSON(http.StatusOK, cacheStateResponse{
		Mode:     s.weatherSvc.Mode().String(),
		Capacity: s.cacheCapacity,
		Count:    len(cities),
		Cities:   cities,
	})
}
