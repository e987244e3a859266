package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/usnaveen/paperlink/internal/logger"
)

type Config struct {
	// Storage Configuration
	DatabasePath string

	// Server Configuration
	ListenAddr string
	BaseURL    string

	// Recovery Configuration
	OCREngine     string
	MaxDistance   int
	ConfusionFile string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	maxDistance, err := getEnvInt("PAPERLINK_MAX_DISTANCE", 2)
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	config := &Config{
		DatabasePath:  getEnv("PAPERLINK_DB", "paperlink.db"),
		ListenAddr:    getEnv("PAPERLINK_ADDR", ":8080"),
		BaseURL:       getEnv("PAPERLINK_BASE_URL", "http://localhost:8080"),
		OCREngine:     getEnv("PAPERLINK_OCR_ENGINE", "tesseract"),
		MaxDistance:   maxDistance,
		ConfusionFile: getEnv("PAPERLINK_CONFUSION_FILE", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "console"),
		LogTimeFormat: getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:     getEnv("LOG_OUTPUT", "stdout"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("PAPERLINK_DB is required")
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("PAPERLINK_ADDR is required")
	}
	if c.OCREngine != "tesseract" && c.OCREngine != "vision" {
		return fmt.Errorf("PAPERLINK_OCR_ENGINE must be tesseract or vision, got %q", c.OCREngine)
	}
	if c.MaxDistance < 0 {
		return fmt.Errorf("PAPERLINK_MAX_DISTANCE must not be negative")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, value)
	}
	return n, nil
}
