// Package config loads server configuration from the process environment,
// optionally seeded from a .env file in development.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the server's runtime configuration.
type Config struct {
	Port           int
	DBPath         string
	MigrationsPath string
	Env            string
	LogLevel       string
}

// Load reads configuration from environment variables, after attempting to
// populate the environment from a .env file. Load() is a no-op when no
// .env file is present, so this is safe to call in production.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:           getEnvInt("PORT", 8080),
		DBPath:         getEnv("DB_PATH", "hypertrophy.db"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
