// Package config reads the service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the full runtime configuration of the toolkit server.
type Config struct {
	AppEnv string
	Port   int

	// DBDriver selects the remote state store backend: "sqlite" (default,
	// DBPath) or "postgres" (PG_* vars).
	DBDriver string
	DBPath   string

	PGHost     string
	PGPort     string
	PGUser     string
	PGPassword string
	PGDatabase string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	// UseRedisCache switches the local blob cache from in-memory to Redis.
	UseRedisCache bool

	// TokenSecret signs the HMAC bearer tokens that authenticate
	// trendline state access.
	TokenSecret string

	// FlushQuiet is the debounce quiet period before a locally mutated
	// state is mirrored to the remote store.
	FlushQuiet time.Duration
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Load builds the config from environment variables with development
// defaults.
func Load() Config {
	cfg := Config{
		AppEnv:        getenv("APP_ENV", "development"),
		Port:          8080,
		DBDriver:      getenv("DB_DRIVER", "sqlite"),
		DBPath:        getenv("DB_PATH", "toolkit.db"),
		PGHost:        getenv("PG_HOST", "localhost"),
		PGPort:        getenv("PG_PORT", "5432"),
		PGUser:        os.Getenv("PG_USER"),
		PGPassword:    os.Getenv("PG_PASSWORD"),
		PGDatabase:    os.Getenv("PG_DB"),
		RedisHost:     getenv("REDIS_HOST", "localhost"),
		RedisPort:     getenv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		UseRedisCache: os.Getenv("USE_REDIS_CACHE") == "true",
		TokenSecret:   getenv("TOKEN_SECRET", "dev-secret-do-not-use"),
		FlushQuiet:    900 * time.Millisecond,
	}

	if p, err := strconv.Atoi(os.Getenv("PORT")); err == nil && p > 0 {
		cfg.Port = p
	}
	if ms, err := strconv.Atoi(os.Getenv("FLUSH_QUIET_MS")); err == nil && ms > 0 {
		cfg.FlushQuiet = time.Duration(ms) * time.Millisecond
	}

	return cfg
}

// PostgresDSN assembles the connection string for the postgres backends.
func (c Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}

// RedisAddr assembles the Redis address.
func (c Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}
