// Package config loads and validates the server configuration from the
// environment, optionally seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config is the full server configuration.
type Config struct {
	// Addr is the listen address for the HTTP/WebSocket server.
	Addr string `validate:"required"`

	// StaticDir serves the frontend when non-empty.
	StaticDir string

	// DBPath is the SQLite database location.
	DBPath string `validate:"required"`

	// SequenceLength is the sliding window size fed to the classifier.
	SequenceLength int `validate:"gt=0"`

	// SmoothingWindow is the prediction history size for temporal gating.
	SmoothingWindow int `validate:"gt=0"`

	// Threshold is the minimum confidence for surfacing a label.
	Threshold float64 `validate:"gt=0,lt=1"`

	// IdleTimeout closes connections that stop sending frames. Zero
	// disables the reaper.
	IdleTimeout time.Duration `validate:"gte=0"`

	// ExtractorScript overrides the holistic service script location.
	ExtractorScript string

	// ClassifierScript overrides the classifier service script location.
	ClassifierScript string

	// ModelPath is the trained model handed to the classifier service.
	ModelPath string

	// LabelsPath is the label list handed to the classifier service.
	LabelsPath string

	// LogLevel is a logrus level name.
	LogLevel string

	// LogFile, when set, enables rotating file logging.
	LogFile string

	// MockModel swaps both external services for mocks. Development only.
	MockModel bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() (*Config, error) {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg := &Config{
		Addr:             envOr("SSLMS_ADDR", ":8001"),
		StaticDir:        os.Getenv("SSLMS_STATIC_DIR"),
		DBPath:           envOr("SSLMS_DB_PATH", "sslms.db"),
		SequenceLength:   40,
		SmoothingWindow:  12,
		Threshold:        0.6,
		ExtractorScript:  os.Getenv("SSLMS_EXTRACTOR_SCRIPT"),
		ClassifierScript: os.Getenv("SSLMS_CLASSIFIER_SCRIPT"),
		ModelPath:        os.Getenv("SSLMS_MODEL_PATH"),
		LabelsPath:       os.Getenv("SSLMS_LABELS_PATH"),
		LogLevel:         envOr("SSLMS_LOG_LEVEL", "info"),
		LogFile:          os.Getenv("SSLMS_LOG_FILE"),
	}

	var err error
	if cfg.SequenceLength, err = envInt("SSLMS_SEQUENCE_LENGTH", cfg.SequenceLength); err != nil {
		return nil, err
	}
	if cfg.SmoothingWindow, err = envInt("SSLMS_SMOOTHING_WINDOW", cfg.SmoothingWindow); err != nil {
		return nil, err
	}
	if cfg.Threshold, err = envFloat("SSLMS_THRESHOLD", cfg.Threshold); err != nil {
		return nil, err
	}
	if cfg.IdleTimeout, err = envDuration("SSLMS_IDLE_TIMEOUT", 0); err != nil {
		return nil, err
	}
	if cfg.MockModel, err = envBool("SSLMS_MOCK_MODEL", false); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
