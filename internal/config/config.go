package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Message expiry modes.
const (
	// ExpirySequenced clears a message only if it is still the one displayed.
	ExpirySequenced = "sequenced"
	// ExpiryIndependent lets every timer clear whatever is displayed.
	ExpiryIndependent = "independent"
)

// Config holds all application configuration.
type Config struct {
	// API configuration
	API APIConfig `json:"api" mapstructure:"api"`

	// Interactive page behaviour
	UI UIConfig `json:"ui" mapstructure:"ui"`

	// Logging
	Log LogConfig `json:"log" mapstructure:"log"`

	// Development options
	Dev DevConfig `json:"dev,omitempty" mapstructure:"dev"`
}

// APIConfig for server communication.
type APIConfig struct {
	BaseURL   string        `json:"base_url" mapstructure:"base_url"`
	Timeout   time.Duration `json:"timeout" mapstructure:"timeout"` // 0 = no client timeout
	UserAgent string        `json:"user_agent" mapstructure:"user_agent"`
}

// UIConfig for the workflow page.
type UIConfig struct {
	MessageTTL      time.Duration `json:"message_ttl" mapstructure:"message_ttl"`
	CopyFeedbackTTL time.Duration `json:"copy_feedback_ttl" mapstructure:"copy_feedback_ttl"`
	CodeMaxLength   int           `json:"code_max_length" mapstructure:"code_max_length"`
	MessageExpiry   string        `json:"message_expiry" mapstructure:"message_expiry"` // sequenced, independent
	EnableViewTab   bool          `json:"enable_view_tab" mapstructure:"enable_view_tab"`
	Color           bool          `json:"color" mapstructure:"color"`
}

// LogConfig for logging behavior.
type LogConfig struct {
	Level     string `json:"level" mapstructure:"level"`   // debug, info, warn, error
	Format    string `json:"format" mapstructure:"format"` // text, json
	File      string `json:"file" mapstructure:"file"`     // Log file path (empty = stderr)
	Color     bool   `json:"color" mapstructure:"color"`
	Timestamp bool   `json:"timestamp" mapstructure:"timestamp"`
}

// DevConfig for development/debugging.
type DevConfig struct {
	InsecureSkipVerify bool `json:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "https://mymedicines-api-xwipe.ondigitalocean.app",
			Timeout:   30 * time.Second,
			UserAgent: "otpdesk/1.0",
		},
		UI: UIConfig{
			MessageTTL:      5 * time.Second,
			CopyFeedbackTTL: 2 * time.Second,
			CodeMaxLength:   6,
			MessageExpiry:   ExpirySequenced,
			EnableViewTab:   false,
			Color:           true,
		},
		Log: LogConfig{
			Level:     "warn",
			Format:    "text",
			File:      "",
			Color:     true,
			Timestamp: true,
		},
	}
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}

	if c.API.Timeout < 0 {
		return errors.New("api.timeout must not be negative")
	}

	if c.UI.MessageTTL <= 0 {
		return errors.New("ui.message_ttl must be positive")
	}

	if c.UI.CopyFeedbackTTL <= 0 {
		return errors.New("ui.copy_feedback_ttl must be positive")
	}

	if c.UI.CodeMaxLength <= 0 {
		return errors.New("ui.code_max_length must be positive")
	}

	switch c.UI.MessageExpiry {
	case ExpirySequenced, ExpiryIndependent:
	default:
		return fmt.Errorf("invalid message expiry mode: %s", c.UI.MessageExpiry)
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}

	return nil
}

// EnsureDirectories creates the log file directory if one is configured.
func (c *Config) EnsureDirectories() error {
	if c.Log.File == "" {
		return nil
	}

	dir := filepath.Dir(c.Log.File)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	return nil
}
