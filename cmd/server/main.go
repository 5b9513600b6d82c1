package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	config "github.com/avatarctic/weather-sdk/go/configs"
	"github.com/avatarctic/weather-sdk/go/internal/application/services"
	"github.com/avatarctic/weather-sdk/go/internal/core/domain/weather"
	"github.com/avatarctic/weather-sdk/go/internal/core/ports"
	"github.com/avatarctic/weather-sdk/go/internal/infrastructure/cache"
	"github.com/avatarctic/weather-sdk/go/internal/infrastructure/health"
	"github.com/avatarctic/weather-sdk/go/internal/infrastructure/httpserver"
	"github.com/avatarctic/weather-sdk/go/internal/infrastructure/metrics"
	"github.com/avatarctic/weather-sdk/go/internal/infrastructure/openweather"
	"github.com/avatarctic/weather-sdk/go/internal/infrastructure/redis"
	"github.com/avatarctic/weather-sdk/go/internal/infrastructure/registry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Setup logger
	logger := logrus.New()
	if cfg.Log.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}

	mode, err := weather.ParseMode(cfg.Weather.Mode)
	if err != nil {
		logger.Fatal("Invalid WEATHER_MODE:", err)
	}

	logger.WithFields(logrus.Fields{"mode": mode, "registry": cfg.Registry.Backend}).Info("Starting weather SDK service...")

	weatherMetrics := metrics.NewWeatherMetrics(prometheus.DefaultRegisterer)

	hcSlice := []ports.HealthChecker{}

	// Instance registry: in-process by default, shared through Redis when several
	// processes must not run with the same API key.
	var instanceRegistry ports.InstanceRegistry
	switch cfg.Registry.Backend {
	case config.RegistryBackendRedis:
		redisClient, err := redis.NewRedisClient(&cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis:", err)
		}
		defer redisClient.Close()
		logger.Info("Connected to Redis successfully")

		instanceRegistry = registry.NewRedisRegistry(redisClient, cfg.Registry.KeyPrefix, logger)
		hcSlice = append(hcSlice, health.NewRedisHealthChecker(redisClient))
	default:
		instanceRegistry = registry.NewMemoryRegistry()
	}

	weatherCache, err := cache.NewWriteOrderedCache(cfg.Cache.Capacity, func(city string) {
		weatherMetrics.ObserveEviction()
		logger.WithField("city", city).Debug("evicted city from weather cache")
	})
	if err != nil {
		logger.Fatal("Failed to create weather cache:", err)
	}

	fetcher := openweather.NewClient(openweather.Config{
		BaseURL: cfg.Weather.BaseURL,
		Units:   cfg.Weather.Units,
		Timeout: cfg.Weather.HTTPTimeout,
	}, logger)

	weatherService, err := services.NewWeatherService(
		&services.WeatherServiceConfig{
			APIKey:       cfg.Weather.APIKey,
			Mode:         mode,
			Freshness:    cfg.Cache.TTL,
			PollInterval: cfg.Cache.PollInterval,
		},
		services.WeatherServiceDeps{
			Cache:    weatherCache,
			Fetcher:  fetcher,
			Registry: instanceRegistry,
			Metrics:  weatherMetrics,
			Logger:   logger,
		},
	)
	if err != nil {
		logger.Fatal("Failed to create weather service:", err)
	}
	hcSlice = append(hcSlice, health.NewWeatherServiceChecker(weatherService))

	// Create server configuration
	serverConfig := &httpserver.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		TLSCertFile:    cfg.Server.TLSCertFile,
		TLSKeyFile:     cfg.Server.TLSKeyFile,
		RateLimitRPS:   cfg.RateLimit.RequestsPerSecond,
		RateLimitBurst: cfg.RateLimit.Burst,
	}

	server := httpserver.NewServer(serverConfig, logger, httpserver.ServerDeps{
		WeatherService: weatherService,
		CacheCapacity:  weatherCache.Capacity(),
		HealthCheckers: hcSlice,
	})

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	logger.Infof("Server started on %s:%s", cfg.Server.Host, cfg.Server.Port)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}
	if err := weatherService.Dispose(ctx); err != nil {
		logger.WithError(err).Error("Failed to dispose weather service")
	}

	logger.Info("Server exited")
}
