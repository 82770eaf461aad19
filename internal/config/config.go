// Package config loads application configuration from the environment,
// with an optional .env file for local development.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is used when JWT_SECRET is unset. It keeps local setups
// working out of the box; main logs a warning whenever it is in use.
const DefaultJWTSecret = "devboards-dev-secret"

// Config holds everything the server needs to start.
type Config struct {
	Port   int
	DBPath string

	JWTSecret string

	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string

	CORSOrigins []string
}

// Load reads the .env file (if present) and then the environment.
// Environment variables always win over .env values.
func Load() Config {
	// Missing .env is the normal case in production.
	_ = godotenv.Load()

	return Config{
		Port:               getEnvAsInt("PORT", 8080),
		DBPath:             getEnv("DB_PATH", "data/devboards.db"),
		JWTSecret:          getEnv("JWT_SECRET", DefaultJWTSecret),
		GitHubClientID:     getEnv("GITHUB_CLIENT_ID", ""),
		GitHubClientSecret: getEnv("GITHUB_CLIENT_SECRET", ""),
		GitHubCallbackURL:  getEnv("GITHUB_CALLBACK_URL", ""),
		CORSOrigins:        getEnvAsList("CORS_ORIGINS", []string{"http://localhost:3000"}),
	}
}

// GitHubEnabled reports whether the OAuth login routes should be mounted.
func (c Config) GitHubEnabled() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	var values []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return fallback
	}
	return values
}
