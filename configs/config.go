package configs

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Weather   WeatherConfig
	Cache     CacheConfig
	Registry  RegistryConfig
	Redis     RedisConfig
	Log       LogConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	TLSCertFile     string
	TLSKeyFile      string
}

type WeatherConfig struct {
	APIKey      string
	BaseURL     string
	Units       string
	Mode        string // on_demand or polling
	HTTPTimeout time.Duration
}

type CacheConfig struct {
	Capacity     int
	TTL          time.Duration
	PollInterval time.Duration
}

type RegistryConfig struct {
	Backend   string // memory or redis
	KeyPrefix string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	// Pool and timeout settings
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolTimeout  time.Duration
	IdleTimeout  time.Duration
}

type LogConfig struct {
	Level  string
	Format string // json or text
}

// RateLimitConfig throttles the HTTP API per client IP. Zero disables it.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

const (
	RegistryBackendMemory = "memory"
	RegistryBackendRedis  = "redis"
)

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnv("SERVER_PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			TLSCertFile:     getEnv("TLS_CERT_FILE", ""),
			TLSKeyFile:      getEnv("TLS_KEY_FILE", ""),
		},
		Weather: WeatherConfig{
			APIKey:      getEnvRequired("WEATHER_API_KEY"),
			BaseURL:     getEnv("WEATHER_BASE_URL", "https://api.openweathermap.org"),
			Units:       getEnv("WEATHER_UNITS", "metric"),
			Mode:        getEnv("WEATHER_MODE", "on_demand"),
			HTTPTimeout: getDurationEnv("WEATHER_HTTP_TIMEOUT", 10*time.Second),
		},
		Cache: CacheConfig{
			Capacity:     getIntEnv("CACHE_CAPACITY", 10),
			TTL:          getDurationEnv("CACHE_TTL", 10*time.Minute),
			PollInterval: getDurationEnv("POLL_INTERVAL", 5*time.Minute),
		},
		Registry: RegistryConfig{
			Backend:   getEnv("REGISTRY_BACKEND", RegistryBackendMemory),
			KeyPrefix: getEnv("REGISTRY_KEY_PREFIX", "weather_sdk:instance"),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getIntEnv("REDIS_DB", 0),
			PoolSize:     getIntEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns: getIntEnv("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDurationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDurationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDurationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
			PoolTimeout:  getDurationEnv("REDIS_POOL_TIMEOUT", 4*time.Second),
			IdleTimeout:  getDurationEnv("REDIS_IDLE_TIMEOUT", 5*time.Minute),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getFloatEnv("RATE_LIMIT_RPS", 0),
			Burst:             getIntEnv("RATE_LIMIT_BURST", 0),
		},
	}

	if cfg.Cache.Capacity <= 0 {
		return nil, fmt.Errorf("CACHE_CAPACITY must be positive, got %d", cfg.Cache.Capacity)
	}
	if cfg.Cache.TTL <= 0 || cfg.Cache.PollInterval <= 0 {
		return nil, fmt.Errorf("CACHE_TTL and POLL_INTERVAL must be positive")
	}
	switch cfg.Registry.Backend {
	case RegistryBackendMemory, RegistryBackendRedis:
	default:
		return nil, fmt.Errorf("unknown REGISTRY_BACKEND %q", cfg.Registry.Backend)
	}

	return cfg, nil
}

// Addr returns host:port for the Redis client.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvRequired(key string) string {
	value := os.Getenv(key)
	if value == "" {
		panic(fmt.Sprintf("Required environment variable %s is not set", key))
	}
	return value
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
