package config

import (
	"os"
	"strings"
	"testing"

	"github.com/calvares/digger/internal/constants"
)

func TestLoad(t *testing.T) {
	// Test default values
	cfg := Load()

	if cfg.Port != constants.DefaultPort {
		t.Errorf("Expected Port to be %s, got %s", constants.DefaultPort, cfg.Port)
	}

	if cfg.DBPath != constants.DefaultDBPath {
		t.Errorf("Expected DBPath to be %s, got %s", constants.DefaultDBPath, cfg.DBPath)
	}

	if cfg.DiscogsURL != constants.DefaultDiscogsURL {
		t.Errorf("Expected DiscogsURL to be %s, got %s", constants.DefaultDiscogsURL, cfg.DiscogsURL)
	}

	if cfg.MaxAgeHours != constants.DefaultMaxAgeHours {
		t.Errorf("Expected MaxAgeHours to be %d, got %d", constants.DefaultMaxAgeHours, cfg.MaxAgeHours)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	os.Setenv("PORT", "9001")
	os.Setenv("CACHE_MAX_AGE_HOURS", "48")
	defer func() {
		os.Unsetenv("PORT")
		os.Unsetenv("CACHE_MAX_AGE_HOURS")
	}()

	cfg := Load()
	if cfg.Port != "9001" {
		t.Errorf("Expected Port 9001, got %s", cfg.Port)
	}
	if cfg.MaxAgeHours != 48 {
		t.Errorf("Expected MaxAgeHours 48, got %d", cfg.MaxAgeHours)
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := &Config{
		Port:           "5001",
		DBPath:         "digger.db",
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		MaxAgeHours:    24,
		LogLevel:       "info",
		LogFormat:      "text",
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected valid config, got error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	cfg := &Config{
		Port:        "not-a-port",
		DBPath:      "",
		MaxAgeHours: 0,
		LogLevel:    "verbose",
		LogFormat:   "xml",
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected validation error, got nil")
	}

	msg := err.Error()
	for _, want := range []string{"PORT", "DB_PATH", "DISCOGS_CONSUMER_KEY", "CACHE_MAX_AGE_HOURS", "LOG_LEVEL", "LOG_FORMAT"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Expected error message to mention %s, got: %s", want, msg)
		}
	}
}

func TestValidate_TokenOnly(t *testing.T) {
	cfg := &Config{
		Port:        "5001",
		DBPath:      "digger.db",
		AccessToken: "token",
		MaxAgeHours: 24,
		LogLevel:    "info",
		LogFormat:   "text",
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected token to satisfy credentials, got error: %v", err)
	}
}

func TestValidate_PortRange(t *testing.T) {
	cfg := &Config{
		Port:           "70000",
		DBPath:         "digger.db",
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		MaxAgeHours:    24,
		LogLevel:       "info",
		LogFormat:      "text",
	}

	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for out-of-range port")
	}
}
