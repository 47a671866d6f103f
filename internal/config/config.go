package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPPort       string
	PostgresDSN    string
	RedisAddr      string
	RedisPassword  string
	SessionTTL     time.Duration
	RequestTimeout time.Duration
	PaymentTimeout time.Duration
}

// Load reads configuration from environment variables with local defaults.
func Load() *Config {
	return &Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		PostgresDSN:    getEnv("POSTGRES_DSN", "host=localhost port=5432 user=postgres password=postgres dbname=storefront sslmode=disable"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		SessionTTL:     getEnvDuration("SESSION_TTL", 24*time.Hour),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
		PaymentTimeout: getEnvDuration("PAYMENT_TIMEOUT", 5*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
