package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds environment-driven settings for the REST API.
type Config struct {
	StoreDriver       string
	DatabaseURL       string
	MemorySeedPath    string
	DBMaxConns        int32
	DBMinConns        int32
	Port              int
	QueryTimeout      time.Duration
	Location          *time.Location
	DiabetesA1CColumn bool
	CORSOrigin        string
	LogLevel          string
	LogFormat         string
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := Config{
		StoreDriver:       DriverPostgres,
		DBMaxConns:        10,
		DBMinConns:        1,
		Port:              8080,
		QueryTimeout:      15 * time.Second,
		Location:          time.UTC,
		DiabetesA1CColumn: true,
		CORSOrigin:        "*",
		LogLevel:          "info",
		LogFormat:         "json",
	}

	if driver := strings.TrimSpace(os.Getenv("STORE_DRIVER")); driver != "" {
		switch strings.ToLower(driver) {
		case DriverPostgres, DriverMemory:
			cfg.StoreDriver = strings.ToLower(driver)
		default:
			return cfg, fmt.Errorf("invalid STORE_DRIVER: %s", driver)
		}
	}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if cfg.StoreDriver == DriverPostgres && cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL is required")
	}
	cfg.MemorySeedPath = strings.TrimSpace(os.Getenv("MEMORY_SEED_PATH"))

	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid PORT: %s", portStr)
		}
	} else if portStr := os.Getenv("API_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid API_PORT: %s", portStr)
		}
	}

	if v := os.Getenv("DB_MAX_CONNS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return cfg, fmt.Errorf("invalid DB_MAX_CONNS: %s", v)
		}
		cfg.DBMaxConns = int32(n)
	}
	if v := os.Getenv("DB_MIN_CONNS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return cfg, fmt.Errorf("invalid DB_MIN_CONNS: %s", v)
		}
		cfg.DBMinConns = int32(n)
	}
	if cfg.DBMinConns > cfg.DBMaxConns {
		return cfg, fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", cfg.DBMinConns, cfg.DBMaxConns)
	}

	if v := strings.TrimSpace(os.Getenv("QUERY_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return cfg, fmt.Errorf("invalid QUERY_TIMEOUT: %s", v)
		}
		cfg.QueryTimeout = d
	}

	if v := strings.TrimSpace(os.Getenv("TIMEZONE")); v != "" {
		loc, err := time.LoadLocation(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid TIMEZONE: %w", err)
		}
		cfg.Location = loc
	}

	if v := strings.TrimSpace(os.Getenv("DIABETES_A1C_COLUMN")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid DIABETES_A1C_COLUMN: %s", v)
		}
		cfg.DiabetesA1CColumn = b
	}

	if v := strings.TrimSpace(os.Getenv("CORS_ORIGIN")); v != "" {
		cfg.CORSOrigin = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_FORMAT")); v != "" {
		cfg.LogFormat = v
	}

	return cfg, nil
}

// ListenAddr returns the host:port string for the HTTP server.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Today returns the current calendar day in the configured location.
func (c Config) Today() time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	now := time.Now().In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
}
