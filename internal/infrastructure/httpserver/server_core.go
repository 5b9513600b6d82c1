package httpserver

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/weather-sdk/go/internal/core/ports"
	customMiddleware "github.com/avatarctic/weather-sdk/go/internal/infrastructure/httpserver/middleware"
)

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	TLSCertFile  string
	TLSKeyFile   string
	// RateLimitRPS caps requests per second per client IP; zero disables the limiter.
	RateLimitRPS   float64
	RateLimitBurst int
}

type ServerDeps struct {
	WeatherService ports.WeatherService
	CacheCapacity  int
	HealthCheckers []ports.HealthChecker
}

type Server struct {
	echo           *echo.Echo
	config         *ServerConfig
	logger         *logrus.Logger
	weatherSvc     ports.WeatherService
	cacheCapacity  int
	middleware     *customMiddleware.MiddlewareCollection
	healthCheckers []ports.HealthChecker
}

func NewServer(serverConfig *ServerConfig, logger *logrus.Logger, deps ServerDeps) *Server {
	e := echo.New()
	e.HideBanner = true

	server := &Server{
		echo:           e,
		config:         serverConfig,
		logger:         logger,
		weatherSvc:     deps.WeatherService,
		cacheCapacity:  deps.CacheCapacity,
		healthCheckers: deps.HealthCheckers,
		middleware: customMiddleware.NewMiddlewareCollection(
			logger,
			serverConfig.RateLimitRPS,
			serverConfig.RateLimitBurst,
			GetRequestsTotal(),
			GetRequestDuration(),
		),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}
