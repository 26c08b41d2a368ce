// Package config provides configuration management for the complaint dashboard.
//
// This package handles loading configuration from environment variables,
// validating required settings, and providing sensible defaults for optional
// parameters. Configuration is loaded once at startup and remains immutable
// during runtime.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (highest priority)
//  2. External .env file in the working directory
//  3. Embedded .env file (fallback, included in binary)
//  4. Hard-coded defaults (lowest priority)
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// embeddedEnv contains the .env file embedded at build time.
//
// The embedded file only carries template values; production deployments
// override them with real environment variables.
//
//go:embed .env
var embeddedEnv string

// Supported values for DATE_ORDER.
const (
	DateOrderAuto = "auto"
	DateOrderDMY  = "dmy"
	DateOrderMDY  = "mdy"
)

// Supported values for SCHEMA_VERSION.
const (
	// SchemaLegacy posts create intents without an action tag.
	SchemaLegacy = 1
	// SchemaCurrent tags every intent with an explicit action.
	SchemaCurrent = 2
)

// Config holds all application configuration.
type Config struct {
	// Published spreadsheet feeds and the scripting endpoint
	TeacherFeedURL string // CSV export of the teacher sheet
	ReportFeedURL  string // CSV export of the report sheet
	ScriptURL      string // Mutation endpoint (POST, response never read)
	SchemaVersion  int    // 1 = legacy create payload, 2 = action-tagged

	// Feed interpretation
	ImageProxyHost  string         // Host serving thumbnail/zoom renditions
	DateOrder       string         // auto, dmy or mdy
	DisplayTZ       string         // IANA zone for dates stamped by this service
	DisplayLocation *time.Location // DisplayTZ, resolved by LoadConfig

	// Admin gate (static shared secret, not a security boundary). May be given
	// as a bcrypt hash.
	AdminPassword string

	// Uploads
	MaxUploadBytes int64 // Images above this size are rejected before any network call

	// Outbound HTTP
	HTTPTimeout  time.Duration // Applied to every feed fetch and mutation dispatch
	HTTPMaxConns int           // Maximum idle connections in pool

	// Reconciliation
	ReconcileInterval time.Duration // How often refresh() re-runs in the background
	ReconcileGrace    time.Duration // Age after which an unconfirmed intent is a discrepancy
	RedisAddr         string        // Optional shared pending ledger
	LedgerFile        string        // Optional CSV ledger for a single instance, used when RedisAddr is empty

	// HTTP server
	HTTPPort  string
	PublicURL string // Encoded in the QR code on printable listings

	// Export
	ExportFilePrefix string
	ChromePath       string        // Optional explicit Chrome/Chromium binary
	ExportTimeout    time.Duration // Maximum time for one PDF conversion

	// Telegram configuration (optional)
	TelegramBotToken string
	TelegramChatID   string
	NotifyWorkers    int    // Concurrent notification senders
	DigestSchedule   string // Cron spec for the open-reports digest, "off" disables it

	// Debug mode - mutation intents are logged but not dispatched
	DebugMode bool
}

// LoadConfig loads configuration from environment variables with defaults.
//
// Loading process:
//  1. Parse embedded .env file and set as fallback environment variables
//  2. Try to load external .env file
//  3. Read environment variables, applying defaults for missing optional values
//  4. Validate
func LoadConfig() (*Config, error) {
	envMap, err := godotenv.Unmarshal(embeddedEnv)
	if err == nil {
		for k, v := range envMap {
			if os.Getenv(k) == "" {
				os.Setenv(k, v)
			}
		}
	}

	// Optional, missing file is not an error
	_ = godotenv.Load()

	cfg := &Config{
		TeacherFeedURL: os.Getenv("TEACHER_FEED_URL"),
		ReportFeedURL:  os.Getenv("REPORT_FEED_URL"),
		ScriptURL:      os.Getenv("SCRIPT_URL"),
		SchemaVersion:  getEnvInt("SCHEMA_VERSION", SchemaCurrent),

		ImageProxyHost: getEnvOrDefault("IMAGE_PROXY_HOST", "lh3.googleusercontent.com"),
		DateOrder:      strings.ToLower(getEnvOrDefault("DATE_ORDER", DateOrderAuto)),
		DisplayTZ:      getEnvOrDefault("DISPLAY_TZ", "Asia/Kuala_Lumpur"),

		AdminPassword: getEnvOrDefault("ADMIN_PASSWORD", "admin123"),

		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", 50*1024*1024), // 50MB, same ceiling as the form

		HTTPTimeout:  getEnvDuration("HTTP_TIMEOUT", 30*time.Second),
		HTTPMaxConns: getEnvInt("HTTP_MAX_CONNS", 20),

		ReconcileInterval: getEnvDuration("RECONCILE_INTERVAL", 5*time.Minute), // sheet cache lags ~5 minutes
		ReconcileGrace:    getEnvDuration("RECONCILE_GRACE", 15*time.Minute),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		LedgerFile:        os.Getenv("LEDGER_FILE"),

		HTTPPort:  getEnvOrDefault("HTTP_PORT", "8080"),
		PublicURL: os.Getenv("PUBLIC_URL"),

		ExportFilePrefix: getEnvOrDefault("EXPORT_FILE_PREFIX", "Laporan_Aduan_SMKK"),
		ChromePath:       os.Getenv("CHROME_PATH"),
		ExportTimeout:    getEnvDuration("EXPORT_TIMEOUT", 60*time.Second),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
		NotifyWorkers:    getEnvInt("NOTIFY_WORKERS", 2),
		DigestSchedule:   getEnvOrDefault("DIGEST_SCHEDULE", "0 7 * * 1-5"), // weekday mornings

		DebugMode: getEnvBool("DEBUG_MODE", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.DisplayLocation, _ = time.LoadLocation(cfg.DisplayTZ)

	return cfg, nil
}

// Validate checks that required configuration is present and values are sensible.
func (c *Config) Validate() error {
	if c.TeacherFeedURL == "" {
		return fmt.Errorf("TEACHER_FEED_URL environment variable is required")
	}
	if c.ReportFeedURL == "" {
		return fmt.Errorf("REPORT_FEED_URL environment variable is required")
	}
	if c.ScriptURL == "" {
		return fmt.Errorf("SCRIPT_URL environment variable is required")
	}

	switch c.DateOrder {
	case DateOrderAuto, DateOrderDMY, DateOrderMDY:
	default:
		return fmt.Errorf("DATE_ORDER must be one of auto, dmy, mdy, got %q", c.DateOrder)
	}

	if _, err := time.LoadLocation(c.DisplayTZ); err != nil {
		return fmt.Errorf("DISPLAY_TZ %q is not a known time zone: %w", c.DisplayTZ, err)
	}

	if c.SchemaVersion != SchemaLegacy && c.SchemaVersion != SchemaCurrent {
		return fmt.Errorf("SCHEMA_VERSION must be 1 or 2, got %d", c.SchemaVersion)
	}
	if len(c.AdminPassword) > 72 {
		return fmt.Errorf("ADMIN_PASSWORD must be at most 72 bytes")
	}
	if c.MaxUploadBytes < 1 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be at least 1, got %d", c.MaxUploadBytes)
	}
	if c.HTTPMaxConns < 1 {
		return fmt.Errorf("HTTP_MAX_CONNS must be at least 1, got %d", c.HTTPMaxConns)
	}
	if c.NotifyWorkers < 1 {
		return fmt.Errorf("NOTIFY_WORKERS must be at least 1, got %d", c.NotifyWorkers)
	}
	if c.ReconcileInterval <= 0 {
		return fmt.Errorf("RECONCILE_INTERVAL must be positive, got %v", c.ReconcileInterval)
	}

	return nil
}

// TelegramEnabled reports whether both Telegram settings are present.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != ""
}

// Helper functions for environment variable parsing

// getEnvOrDefault returns the environment variable value or a default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as an integer or a default if not set/invalid
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns the environment variable as a duration or a default if not set/invalid.
//
// Accepts standard Go duration strings like "5s", "10m", "1h30m"
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
