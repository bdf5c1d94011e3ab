package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheMichaelB/otpdesk/internal/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	assert.NotEmpty(t, cfg.API.BaseURL)
	assert.Positive(t, cfg.API.Timeout)
	assert.Equal(t, 5*time.Second, cfg.UI.MessageTTL)
	assert.Equal(t, 2*time.Second, cfg.UI.CopyFeedbackTTL)
	assert.Equal(t, 6, cfg.UI.CodeMaxLength)
	assert.Equal(t, config.ExpirySequenced, cfg.UI.MessageExpiry)
	assert.False(t, cfg.UI.EnableViewTab)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*config.Config)
		wantErr string
	}{
		{
			name:    "valid config",
			modify:  func(c *config.Config) {},
			wantErr: "",
		},
		{
			name: "zero timeout allowed",
			modify: func(c *config.Config) {
				c.API.Timeout = 0
			},
			wantErr: "",
		},
		{
			name: "missing base URL",
			modify: func(c *config.Config) {
				c.API.BaseURL = ""
			},
			wantErr: "api.base_url is required",
		},
		{
			name: "negative timeout",
			modify: func(c *config.Config) {
				c.API.Timeout = -1
			},
			wantErr: "api.timeout must not be negative",
		},
		{
			name: "zero message ttl",
			modify: func(c *config.Config) {
				c.UI.MessageTTL = 0
			},
			wantErr: "ui.message_ttl must be positive",
		},
		{
			name: "zero code length",
			modify: func(c *config.Config) {
				c.UI.CodeMaxLength = 0
			},
			wantErr: "ui.code_max_length must be positive",
		},
		{
			name: "unknown expiry mode",
			modify: func(c *config.Config) {
				c.UI.MessageExpiry = "eventually"
			},
			wantErr: "invalid message expiry mode",
		},
		{
			name: "invalid log level",
			modify: func(c *config.Config) {
				c.Log.Level = "invalid"
			},
			wantErr: "invalid log level",
		},
		{
			name: "invalid log format",
			modify: func(c *config.Config) {
				c.Log.Format = "xml"
			},
			wantErr: "invalid log format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoaderEnv(t *testing.T) {
	t.Setenv("OTPDESK_API_BASE_URL", "https://test.example.com")
	t.Setenv("OTPDESK_API_TIMEOUT", "45s")
	t.Setenv("OTPDESK_LOG_LEVEL", "DEBUG")
	t.Setenv("OTPDESK_UI_MESSAGE_EXPIRY", "independent")
	t.Setenv("OTPDESK_UI_ENABLE_VIEW_TAB", "true")

	loader := config.NewLoader("")
	cfg, err := loader.Load()

	require.NoError(t, err)
	assert.Equal(t, "https://test.example.com", cfg.API.BaseURL)
	assert.Equal(t, 45*time.Second, cfg.API.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, config.ExpiryIndependent, cfg.UI.MessageExpiry)
	assert.True(t, cfg.UI.EnableViewTab)
}

func TestLoaderFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test.json")

	configJSON := `{
		"api": {
			"base_url": "https://file.example.com",
			"timeout": "10s"
		},
		"ui": {
			"message_ttl": "3s"
		},
		"log": {
			"level": "warn",
			"format": "json"
		}
	}`

	err := os.WriteFile(configPath, []byte(configJSON), 0644)
	require.NoError(t, err)

	loader := config.NewLoader(configPath)
	cfg, err := loader.Load()

	require.NoError(t, err)
	assert.Equal(t, configPath, loader.ConfigFile())
	assert.Equal(t, "https://file.example.com", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, 3*time.Second, cfg.UI.MessageTTL)
	assert.Equal(t, 2*time.Second, cfg.UI.CopyFeedbackTTL, "unset keys keep defaults")
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoaderMissingFile(t *testing.T) {
	loader := config.NewLoader(filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := loader.Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config file")
}

func TestLoaderRejectsInvalid(t *testing.T) {
	t.Setenv("OTPDESK_LOG_FORMAT", "xml")

	_, err := config.NewLoader("").Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestSaveExampleRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "otpdesk.yaml")

	require.NoError(t, config.SaveExample(path))
	assert.FileExists(t, path)

	cfg, err := config.NewLoader(path).Load()
	require.NoError(t, err)

	want := config.DefaultConfig()
	assert.Equal(t, want.API, cfg.API)
	assert.Equal(t, want.UI, cfg.UI)
}

func TestConfigEnsureDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Log.File = filepath.Join(tmpDir, "logs", "otpdesk.log")

	err := cfg.EnsureDirectories()
	require.NoError(t, err)

	assert.DirExists(t, filepath.Dir(cfg.Log.File))
}

func TestLoaderEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "otpdesk.env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"OTPDESK_UI_MESSAGE_EXPIRY=independent\nOTPDESK_API_USER_AGENT=from-dotenv\n"), 0600))

	// Registered so the values exported by the loader are removed afterwards.
	t.Setenv("OTPDESK_UI_MESSAGE_EXPIRY", "")
	require.NoError(t, os.Unsetenv("OTPDESK_UI_MESSAGE_EXPIRY"))
	t.Setenv("OTPDESK_API_USER_AGENT", "from-env")

	cfg, err := config.NewLoader("").WithEnvFiles(envFile).Load()
	require.NoError(t, err)

	assert.Equal(t, config.ExpiryIndependent, cfg.UI.MessageExpiry)
	assert.Equal(t, "from-env", cfg.API.UserAgent, "process environment wins")
}

func TestLoaderMissingEnvFile(t *testing.T) {
	_, err := config.NewLoader("").WithEnvFiles(filepath.Join(t.TempDir(), "nope.env")).Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "load env file")
}
