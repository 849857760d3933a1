package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Sources the API server can read placements from.
const (
	SourcePostgres = "postgres"
	SourceAPI      = "api"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	APIBaseURL         string
	HTTPTimeoutSeconds int
	MaxRetries         int
	RetryBaseDelayMs   int
	MaxConcurrency     int
	RateLimitMs        int

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	CSVOutputPath      string
	ReportMarkdownPath string
	ReportPDFPath      string
	ChromeBin          string

	HTTPPort        string
	GinMode         string
	AllowedOrigins  string
	StatsSource     string
	CacheTTLSeconds int

	LogLevel string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		APIBaseURL:         strings.TrimRight(getEnv("PLACEMENTS_API_URL", "http://localhost:8080"), "/"),
		HTTPTimeoutSeconds: getEnvInt("HTTP_TIMEOUT_SECONDS", 15),
		MaxRetries:         getEnvInt("MAX_RETRIES", 3),
		RetryBaseDelayMs:   getEnvInt("RETRY_BASE_DELAY_MS", 500),
		MaxConcurrency:     getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:        getEnvInt("RATE_LIMIT_MS", 0),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "placements"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "placements123"),
		PostgresDB:       getEnv("POSTGRES_DB", "placement_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		CSVOutputPath:      getEnv("CSV_OUTPUT_PATH", "./output/raw_placements.csv"),
		ReportMarkdownPath: getEnvAllowEmpty("REPORT_MARKDOWN_PATH", "./output/placement_report.md"),
		ReportPDFPath:      getEnv("REPORT_PDF_PATH", ""),
		ChromeBin:          getEnv("CHROME_BIN", ""),

		HTTPPort:        getEnv("HTTP_PORT", "8090"),
		GinMode:         getEnv("GIN_MODE", "release"),
		AllowedOrigins:  getEnv("ALLOWED_ORIGINS", "*"),
		StatsSource:     strings.ToLower(getEnv("STATS_SOURCE", SourcePostgres)),
		CacheTTLSeconds: getEnvInt("CACHE_TTL_SECONDS", 300),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate reports settings the application cannot run with.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return errors.New("PLACEMENTS_API_URL is required")
	}
	if c.StatsSource != SourcePostgres && c.StatsSource != SourceAPI {
		return fmt.Errorf("STATS_SOURCE must be %q or %q, got %q", SourcePostgres, SourceAPI, c.StatsSource)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("MAX_RETRIES must be positive, got %d", c.MaxRetries)
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("MAX_CONCURRENCY must be positive, got %d", c.MaxConcurrency)
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// HTTPTimeout is the per-request timeout of the upstream client.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// RetryBaseDelay is the first back-off delay between upstream attempts.
func (c *Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.RetryBaseDelayMs) * time.Millisecond
}

// CacheTTL is how long a computed report stays valid.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

// getEnvAllowEmpty lets an explicitly empty variable switch a feature off.
func getEnvAllowEmpty(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(val)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err == nil {
			return n
		}
	}
	return fallback
}
