// Package config loads SERP credentials and defaults from the process
// environment. Credentials are never embedded; a missing token is a fatal
// configuration error raised before any query is attempted.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var (
	ErrMissingAPIKey = errors.New("config: SERP_API_KEY is not set")
	ErrMissingZone   = errors.New("config: SERP_ZONE is not set")
)

// Config carries everything the SERP client and orchestrator need. It is
// passed explicitly into constructors; there is no ambient global state.
type Config struct {
	APIKey   string
	Zone     string
	Endpoint string
	Country  string
	Language string
	Timeout  time.Duration
	// ResultCount caps records kept per research category
	ResultCount int
	// Query pacing; 0 disables the limiter
	RequestsPerSecond float64
	Jitter            float64
}

// Load reads configuration from the environment, after attempting to load a
// .env file from the working directory. A missing .env is not an error.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		APIKey:            os.Getenv("SERP_API_KEY"),
		Zone:              os.Getenv("SERP_ZONE"),
		Endpoint:          getEnv("SERP_ENDPOINT", ""),
		Country:           getEnv("DEFAULT_COUNTRY", "us"),
		Language:          getEnv("DEFAULT_LANGUAGE", "en"),
		Timeout:           time.Duration(getEnvInt("SERP_TIMEOUT_SECONDS", 30)) * time.Second,
		ResultCount:       getEnvInt("RESULT_COUNT", 3),
		RequestsPerSecond: getEnvFloat("REQUESTS_PER_SECOND", 0),
		Jitter:            getEnvFloat("REQUEST_JITTER", 0),
	}
}

// Validate reports missing required credentials. Callers must check this
// before constructing any client.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("%w (see .env.example for the template)", ErrMissingAPIKey)
	}
	if c.Zone == "" {
		return fmt.Errorf("%w (see .env.example for the template)", ErrMissingZone)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
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

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
