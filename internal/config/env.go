package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level      string
	Pretty     bool
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// AxiomConfig holds Axiom logging configuration.
type AxiomConfig struct {
	Send     bool
	APIKey   string
	OrgID    string
	Dataset  string
	MinLevel string
}

// HTTPConfig defines the local web server.
type HTTPConfig struct {
	Address         string
	MaxUploadMB     int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// SiteConfig holds values rendered into the marketing pages.
type SiteConfig struct {
	Name      string
	BaseURL   string
	GitHubURL string
}

// TelemetryConfig selects where usage events go.
type TelemetryConfig struct {
	Enabled     bool
	Log         bool
	Metrics     bool
	RedisURL    string // empty disables the stream sink
	RedisStream string
	Buffer      int
}

// OutputConfig controls where the CLI writes produced files.
type OutputConfig struct {
	Dir       string
	Overwrite bool
}

// Config is the top-level configuration.
type Config struct {
	Logging   LoggingConfig
	Axiom     AxiomConfig
	HTTP      HTTPConfig
	Site      SiteConfig
	Telemetry TelemetryConfig
	Output    OutputConfig
}

// Load reads the given .env files (missing files are ignored) and then the environment.
func Load(envFiles ...string) Config {
	for _, f := range envFiles {
		if f == "" {
			continue
		}
		if _, err := os.Stat(f); err != nil {
			continue
		}
		// existing environment wins over the file
		_ = godotenv.Load(f)
	}
	return FromEnv()
}

// FromEnv loads configuration from environment with sensible defaults.
func FromEnv() Config {
	cfg := Config{}

	cfg.Logging = LoggingConfig{
		Level:      getEnv("LOG_LEVEL", "info"),
		Pretty:     parseBool(getEnv("LOG_PRETTY", devDefaultPretty())),
		File:       getEnv("LOG_FILE", ""),
		MaxSizeMB:  parseInt(getEnv("LOG_MAX_SIZE_MB", "100"), 100),
		MaxBackups: parseInt(getEnv("LOG_MAX_BACKUPS", "10"), 10),
		MaxAgeDays: parseInt(getEnv("LOG_MAX_AGE_DAYS", "30"), 30),
		Compress:   parseBool(getEnv("LOG_COMPRESS", "true")),
	}

	baseDataset := getEnv("AXIOM_DATASET", "dev")
	cfg.Axiom = AxiomConfig{
		Send:     parseBool(getEnv("SEND_LOGS_TO_AXIOM", "0")),
		APIKey:   getEnv("AXIOM_API_KEY", ""),
		OrgID:    getEnv("AXIOM_ORG_ID", ""),
		Dataset:  baseDataset + "_pdfmerger",
		MinLevel: getEnv("AXIOM_MIN_LEVEL", "info"),
	}

	cfg.HTTP = HTTPConfig{
		Address:         getEnv("HTTP_ADDRESS", "127.0.0.1:8080"),
		MaxUploadMB:     parseInt(getEnv("HTTP_MAX_UPLOAD_MB", "100"), 100),
		ReadTimeout:     parseDuration(getEnv("HTTP_READ_TIMEOUT", "2m"), 2*time.Minute),
		WriteTimeout:    parseDuration(getEnv("HTTP_WRITE_TIMEOUT", "5m"), 5*time.Minute),
		ShutdownTimeout: parseDuration(getEnv("HTTP_SHUTDOWN_TIMEOUT", "10s"), 10*time.Second),
	}
	if cfg.HTTP.MaxUploadMB <= 0 {
		cfg.HTTP.MaxUploadMB = 100
	}

	cfg.Site = SiteConfig{
		Name:      getEnv("SITE_NAME", "PDF Merger"),
		BaseURL:   strings.TrimRight(getEnv("SITE_BASE_URL", "/"), "/") + "/",
		GitHubURL: getEnv("SITE_GITHUB_URL", "https://github.com/ftwtie/pdf-merger"),
	}

	cfg.Telemetry = TelemetryConfig{
		Enabled:     parseBool(getEnv("TELEMETRY_ENABLED", "true")),
		Log:         parseBool(getEnv("TELEMETRY_LOG", "true")),
		Metrics:     parseBool(getEnv("TELEMETRY_METRICS", "true")),
		RedisURL:    getEnv("TELEMETRY_REDIS_URL", ""),
		RedisStream: getEnv("TELEMETRY_REDIS_STREAM", "events:pdfmerger"),
		Buffer:      parseInt(getEnv("TELEMETRY_BUFFER", "256"), 256),
	}

	cfg.Output = OutputConfig{
		Dir:       getEnv("OUTPUT_DIR", "."),
		Overwrite: parseBool(getEnv("OUTPUT_OVERWRITE", "false")),
	}

	return cfg
}

// MaxUploadBytes returns the upload limit in bytes.
func (c HTTPConfig) MaxUploadBytes() int64 { return int64(c.MaxUploadMB) << 20 }

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

func parseBool(s string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return def
}

func devDefaultPretty() string {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))
	if env == "dev" || env == "development" || env == "local" {
		return "true"
	}
	return "false"
}
