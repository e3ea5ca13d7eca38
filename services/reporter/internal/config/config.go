package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAPIBaseURL     = "http://localhost:8080"
	defaultRequestTimeout = 30 * time.Second
	defaultOutputDir      = "."
)

// Config holds runtime configuration for the reporter.
type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	OutputDir      string
	Location       *time.Location
	DryRun         bool
	LogLevel       string
	LogFormat      string
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load(".env")

	cfg := Config{Location: time.UTC, LogLevel: "info", LogFormat: "json"}

	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(os.Getenv("API_BASE_URL")), "/")
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}
	if u, err := url.Parse(cfg.APIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return cfg, errors.New("API_BASE_URL must be an absolute http(s) URL")
	}

	cfg.RequestTimeout = defaultRequestTimeout
	if v := strings.TrimSpace(os.Getenv("REPORT_REQUEST_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid REPORT_REQUEST_TIMEOUT: %w", err)
		}
		if d <= 0 {
			return cfg, fmt.Errorf("invalid REPORT_REQUEST_TIMEOUT: %s", v)
		}
		cfg.RequestTimeout = d
	}

	cfg.OutputDir = strings.TrimSpace(os.Getenv("REPORT_OUTPUT_DIR"))
	if cfg.OutputDir == "" {
		cfg.OutputDir = defaultOutputDir
	}

	if v := strings.TrimSpace(os.Getenv("TIMEZONE")); v != "" {
		loc, err := time.LoadLocation(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid TIMEZONE: %w", err)
		}
		cfg.Location = loc
	}

	dryRun := strings.TrimSpace(os.Getenv("DRY_RUN"))
	cfg.DryRun = dryRun == "1" || strings.EqualFold(dryRun, "true")

	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_FORMAT")); v != "" {
		cfg.LogFormat = v
	}

	return cfg, nil
}
