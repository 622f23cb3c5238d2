// Package config loads service configuration from the environment, with
// defaults suitable for local development.
package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	ServerAddr string

	// DBDriver is "postgres" (default, requires DatabaseURL) or "sqlite".
	DBDriver    string
	DatabaseURL string
	SQLitePath  string

	// Credentials for the basic-auth challenge on DELETE /books/:id.
	AdminUser string
	AdminPass string

	// Fixed-window rate limit applied to POST /books and POST /borrowers.
	RateLimitMax    int
	RateLimitWindow time.Duration

	// When set, the rate limiter is backed by redis instead of process memory.
	RedisAddr     string
	RedisPassword string
}

func Load() Config {
	return Config{
		ServerAddr:      getenv("SERVER_ADDR", ":8080"),
		DBDriver:        getenv("DB_DRIVER", "postgres"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		SQLitePath:      getenv("SQLITE_PATH", "library.db"),
		AdminUser:       getenv("ADMIN_USER", "admin"),
		AdminPass:       getenv("ADMIN_PASS", "admin"),
		RateLimitMax:    getenvInt("RATE_LIMIT_MAX", 10),
		RateLimitWindow: getenvDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
