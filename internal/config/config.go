package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port            int
	DatabaseURL     string
	JWTSecret       string
	TokenExpiry     time.Duration
	RedisAddr       string
	SearchCacheTTL  time.Duration
	TMDBAccessToken string
	ProviderTimeout time.Duration
}

func Load() *Config {
	return &Config{
		Port:            envInt("PORT", 8080),
		DatabaseURL:     env("DATABASE_URL", "postgres://watchnest:watchnest@db:5432/watchnest?sslmode=disable"),
		JWTSecret:       env("JWT_SECRET", "change-me-in-production"),
		TokenExpiry:     envDuration("TOKEN_EXPIRY", 7*24*time.Hour),
		RedisAddr:       env("REDIS_ADDR", ""),
		SearchCacheTTL:  envDuration("SEARCH_CACHE_TTL", 10*time.Minute),
		TMDBAccessToken: env("TMDB_ACCESS_TOKEN", ""),
		ProviderTimeout: envDuration("PROVIDER_TIMEOUT", 10*time.Second),
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
