package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/calvares/digger/internal/constants"
)

// Config holds all application configuration
type Config struct {
	Port              string
	DBPath            string
	DiscogsURL        string
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
	YouTubeAPIKey     string
	UserAgent         string
	MaxAgeHours       int
	LogLevel          string
	LogFormat         string
}

// Load loads configuration from a .env file (if present) and environment
// variables with defaults
func Load() *Config {
	// Missing .env is fine, env vars still apply
	_ = godotenv.Load()

	return &Config{
		Port:              getEnv("PORT", constants.DefaultPort),
		DBPath:            getEnv("DB_PATH", constants.DefaultDBPath),
		DiscogsURL:        getEnv("DISCOGS_URL", constants.DefaultDiscogsURL),
		ConsumerKey:       getEnv("DISCOGS_CONSUMER_KEY", ""),
		ConsumerSecret:    getEnv("DISCOGS_CONSUMER_SECRET", ""),
		AccessToken:       getEnv("DISCOGS_ACCESS_TOKEN", ""),
		AccessTokenSecret: getEnv("DISCOGS_ACCESS_TOKEN_SECRET", ""),
		YouTubeAPIKey:     getEnv("YOUTUBE_API_KEY", ""),
		UserAgent:         getEnv("USER_AGENT", constants.DefaultUserAgent),
		MaxAgeHours:       getEnvInt("CACHE_MAX_AGE_HOURS", constants.DefaultMaxAgeHours),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
	}
}

// Validate validates the configuration and returns detailed errors
func (c *Config) Validate() error {
	var errors []string

	// Validate Port
	if c.Port == "" {
		errors = append(errors, "PORT cannot be empty")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
		}
	}

	// Validate DBPath
	if c.DBPath == "" {
		errors = append(errors, "DB_PATH cannot be empty")
	}

	// Validate Discogs credentials: a personal access token is enough,
	// otherwise the consumer key/secret pair is required
	if c.AccessToken == "" {
		if c.ConsumerKey == "" {
			errors = append(errors, "DISCOGS_CONSUMER_KEY cannot be empty")
		}
		if c.ConsumerSecret == "" {
			errors = append(errors, "DISCOGS_CONSUMER_SECRET cannot be empty")
		}
	}

	// Validate MaxAgeHours
	if c.MaxAgeHours < 1 {
		errors = append(errors, fmt.Sprintf("CACHE_MAX_AGE_HOURS must be at least 1, got: %d", c.MaxAgeHours))
	}

	// Validate LogLevel
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	// Validate LogFormat
	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
