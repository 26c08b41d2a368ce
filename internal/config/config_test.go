package config

import (
	"strings"
	"testing"
	"time"
)

// withoutEmbeddedEnv disables the embedded fallback for the duration of a test.
func withoutEmbeddedEnv(t *testing.T) {
	t.Helper()
	orig := embeddedEnv
	embeddedEnv = ""
	t.Cleanup(func() { embeddedEnv = orig })
}

func TestLoadConfig(t *testing.T) {
	withoutEmbeddedEnv(t)

	// Present-but-empty keys are not overridden by a .env file
	t.Setenv("TEACHER_FEED_URL", "")
	t.Setenv("REPORT_FEED_URL", "")
	t.Setenv("SCRIPT_URL", "")

	if _, err := LoadConfig(); err == nil {
		t.Error("expected error for missing TEACHER_FEED_URL")
	}

	t.Setenv("TEACHER_FEED_URL", "http://feeds.test/teachers.csv")
	t.Setenv("REPORT_FEED_URL", "http://feeds.test/reports.csv")
	t.Setenv("SCRIPT_URL", "http://script.test/exec")
	t.Setenv("DATE_ORDER", "")
	t.Setenv("SCHEMA_VERSION", "")
	t.Setenv("ADMIN_PASSWORD", "")
	t.Setenv("MAX_UPLOAD_BYTES", "")
	t.Setenv("RECONCILE_INTERVAL", "")
	t.Setenv("DISPLAY_TZ", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}

	if cfg.ScriptURL != "http://script.test/exec" {
		t.Errorf("expected script URL from env but got %q", cfg.ScriptURL)
	}

	// Defaults
	if cfg.DateOrder != DateOrderAuto {
		t.Errorf("expected default DateOrder=auto but got %q", cfg.DateOrder)
	}
	if cfg.SchemaVersion != SchemaCurrent {
		t.Errorf("expected default SchemaVersion=2 but got %d", cfg.SchemaVersion)
	}
	if cfg.AdminPassword != "admin123" {
		t.Errorf("expected default admin password but got %q", cfg.AdminPassword)
	}
	if cfg.MaxUploadBytes != 50*1024*1024 {
		t.Errorf("expected default MaxUploadBytes=50MB but got %d", cfg.MaxUploadBytes)
	}
	if cfg.ReconcileInterval != 5*time.Minute {
		t.Errorf("expected default ReconcileInterval=5m but got %v", cfg.ReconcileInterval)
	}
	if cfg.DisplayLocation == nil || cfg.DisplayLocation.String() != "Asia/Kuala_Lumpur" {
		t.Errorf("expected default display zone Asia/Kuala_Lumpur but got %v", cfg.DisplayLocation)
	}
}

func TestLoadConfig_EmbeddedFallback(t *testing.T) {
	orig := embeddedEnv
	embeddedEnv = "TEACHER_FEED_URL=http://embedded.test/t.csv\nREPORT_FEED_URL=http://embedded.test/r.csv\nSCRIPT_URL=http://embedded.test/exec\n"
	t.Cleanup(func() { embeddedEnv = orig })

	// Unset keys so the embedded values apply
	for _, key := range []string{"TEACHER_FEED_URL", "REPORT_FEED_URL", "SCRIPT_URL"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
	if cfg.TeacherFeedURL != "http://embedded.test/t.csv" {
		t.Errorf("expected embedded teacher feed but got %q", cfg.TeacherFeedURL)
	}
}

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		expected     string
	}{
		{
			name:         "env var set",
			key:          "ADUAN_TEST_VAR",
			defaultValue: "default",
			envValue:     "custom",
			expected:     "custom",
		},
		{
			name:         "env var not set",
			key:          "ADUAN_NONEXISTENT_VAR",
			defaultValue: "default",
			envValue:     "",
			expected:     "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.envValue)

			result := getEnvOrDefault(tt.key, tt.defaultValue)
			if result != tt.expected {
				t.Errorf("expected %q but got %q", tt.expected, result)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue int
		expected     int
	}{
		{name: "valid int", envValue: "25", defaultValue: 10, expected: 25},
		{name: "invalid int uses default", envValue: "notanumber", defaultValue: 10, expected: 10},
		{name: "empty uses default", envValue: "", defaultValue: 10, expected: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ADUAN_TEST_INT", tt.envValue)

			result := getEnvInt("ADUAN_TEST_INT", tt.defaultValue)
			if result != tt.expected {
				t.Errorf("expected %d but got %d", tt.expected, result)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("ADUAN_TEST_BOOL", "true")
	if !getEnvBool("ADUAN_TEST_BOOL", false) {
		t.Error("expected true from env")
	}

	t.Setenv("ADUAN_TEST_BOOL", "maybe")
	if !getEnvBool("ADUAN_TEST_BOOL", true) {
		t.Error("expected default for unparseable bool")
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			TeacherFeedURL:    "http://example.com/t.csv",
			ReportFeedURL:     "http://example.com/r.csv",
			ScriptURL:         "http://example.com/exec",
			SchemaVersion:     SchemaCurrent,
			DateOrder:         DateOrderAuto,
			MaxUploadBytes:    1024,
			HTTPMaxConns:      1,
			NotifyWorkers:     1,
			ReconcileInterval: time.Minute,
		}
	}

	tests := []struct {
		name      string
		mutate    func(c *Config)
		expectErr bool
	}{
		{name: "valid config", mutate: func(c *Config) {}, expectErr: false},
		{name: "missing teacher feed", mutate: func(c *Config) { c.TeacherFeedURL = "" }, expectErr: true},
		{name: "missing report feed", mutate: func(c *Config) { c.ReportFeedURL = "" }, expectErr: true},
		{name: "missing script url", mutate: func(c *Config) { c.ScriptURL = "" }, expectErr: true},
		{name: "unknown date order", mutate: func(c *Config) { c.DateOrder = "ymd" }, expectErr: true},
		{name: "explicit day first", mutate: func(c *Config) { c.DateOrder = DateOrderDMY }, expectErr: false},
		{name: "unknown display zone", mutate: func(c *Config) { c.DisplayTZ = "Mars/Olympus" }, expectErr: true},
		{name: "explicit display zone", mutate: func(c *Config) { c.DisplayTZ = "UTC" }, expectErr: false},
		{name: "unknown schema", mutate: func(c *Config) { c.SchemaVersion = 3 }, expectErr: true},
		{name: "legacy schema", mutate: func(c *Config) { c.SchemaVersion = SchemaLegacy }, expectErr: false},
		{name: "admin password too long", mutate: func(c *Config) { c.AdminPassword = strings.Repeat("x", 73) }, expectErr: true},
		{name: "zero upload ceiling", mutate: func(c *Config) { c.MaxUploadBytes = 0 }, expectErr: true},
		{name: "zero workers", mutate: func(c *Config) { c.NotifyWorkers = 0 }, expectErr: true},
		{name: "zero interval", mutate: func(c *Config) { c.ReconcileInterval = 0 }, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.expectErr && err == nil {
				t.Error("expected error but got nil")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("expected no error but got: %v", err)
			}
		})
	}
}

func TestTelegramEnabled(t *testing.T) {
	cfg := &Config{TelegramBotToken: "token"}
	if cfg.TelegramEnabled() {
		t.Error("expected Telegram disabled without chat id")
	}
	cfg.TelegramChatID = "42"
	if !cfg.TelegramEnabled() {
		t.Error("expected Telegram enabled with token and chat id")
	}
}
