package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	Server struct {
		Port         string
		ReadTimeout  time.Duration
		WriteTimeout time.Duration
		LogLevel     string
	}

	Backend struct {
		BaseURL string
		// Zero means no client-side timeout.
		Timeout time.Duration
	}

	CircuitBreaker struct {
		Enabled   bool
		Threshold int
		Timeout   time.Duration
	}

	Geolocation struct {
		Latitude  string
		Longitude string
		LookupURL string
	}

	Refresh struct {
		Schedule string
	}
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		zap.L().Info("No .env file found, using environment variables")
	}

	cfg := &Config{}

	// Dashboard server configuration
	cfg.Server.Port = getEnv("DASHBOARD_PORT", "3000")
	cfg.Server.ReadTimeout = parseDuration(getEnv("DASHBOARD_READ_TIMEOUT", "10s"))
	cfg.Server.WriteTimeout = parseDuration(getEnv("DASHBOARD_WRITE_TIMEOUT", "10s"))
	cfg.Server.LogLevel = getEnv("LOG_LEVEL", "info")

	// Weather backend configuration
	cfg.Backend.BaseURL = getEnv("WEATHER_API_BASE_URL", "http://localhost:8080/api/weather")
	cfg.Backend.Timeout = parseDuration(getEnv("HTTP_TIMEOUT", "0s"))

	// Circuit breaker configuration
	cfg.CircuitBreaker.Enabled = parseBool(getEnv("CIRCUIT_BREAKER_ENABLED", "false"))
	cfg.CircuitBreaker.Threshold = parseInt(getEnv("CIRCUIT_BREAKER_THRESHOLD", "3"))
	cfg.CircuitBreaker.Timeout = parseDuration(getEnv("CIRCUIT_BREAKER_TIMEOUT", "30s"))

	// Device position sources
	cfg.Geolocation.Latitude = getEnv("DEVICE_LATITUDE", "")
	cfg.Geolocation.Longitude = getEnv("DEVICE_LONGITUDE", "")
	cfg.Geolocation.LookupURL = getEnv("GEOLOCATION_URL", "")

	// Auto refresh, disabled when empty
	cfg.Refresh.Schedule = getEnv("REFRESH_SCHEDULE", "")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(value string) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		zap.L().Warn("Failed to parse duration", zap.String("value", value), zap.Error(err))
		return 0
	}
	return duration
}

func parseInt(value string) int {
	intValue, err := strconv.Atoi(value)
	if err != nil {
		zap.L().Warn("Failed to parse int", zap.String("value", value), zap.Error(err))
		return 0
	}
	return intValue
}

func parseBool(value string) bool {
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		zap.L().Warn("Failed to parse bool", zap.String("value", value), zap.Error(err))
		return false
	}
	return boolValue
}
