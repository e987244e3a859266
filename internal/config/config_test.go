package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usnaveen/paperlink/internal/config"
)

// clearEnv blanks every variable Load reads so tests see the defaults
// regardless of the environment they run in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PAPERLINK_DB", "PAPERLINK_ADDR", "PAPERLINK_BASE_URL",
		"PAPERLINK_OCR_ENGINE", "PAPERLINK_MAX_DISTANCE", "PAPERLINK_CONFUSION_FILE",
		"LOG_LEVEL", "LOG_FORMAT", "LOG_TIME_FORMAT", "LOG_OUTPUT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "paperlink.db", cfg.DatabasePath)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, "tesseract", cfg.OCREngine)
	assert.Equal(t, 2, cfg.MaxDistance)
	assert.Empty(t, cfg.ConfusionFile)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PAPERLINK_DB", "/var/lib/paperlink/links.db")
	t.Setenv("PAPERLINK_ADDR", ":9090")
	t.Setenv("PAPERLINK_BASE_URL", "https://paper.link")
	t.Setenv("PAPERLINK_OCR_ENGINE", "vision")
	t.Setenv("PAPERLINK_MAX_DISTANCE", "1")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/paperlink/links.db", cfg.DatabasePath)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "https://paper.link", cfg.BaseURL)
	assert.Equal(t, "vision", cfg.OCREngine)
	assert.Equal(t, 1, cfg.MaxDistance)

	logCfg := cfg.GetLoggerConfig()
	assert.Equal(t, "debug", logCfg.Level)
	assert.Equal(t, "json", logCfg.Format)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown OCR engine", key: "PAPERLINK_OCR_ENGINE", value: "gpt4-vision"},
		{name: "negative max distance", key: "PAPERLINK_MAX_DISTANCE", value: "-1"},
		{name: "non-numeric max distance", key: "PAPERLINK_MAX_DISTANCE", value: "two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}
