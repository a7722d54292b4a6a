package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DENTAL_API_BASE_URL", "")
	t.Setenv("VITE_API_BASE_URL", "")
	t.Setenv("DENTAL_STORAGE_PATH", filepath.Join(t.TempDir(), "storage.json"))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, time.Duration(0), cfg.API.Timeout)
	assert.Equal(t, 50, cfg.API.TrackingLimit)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "4000", cfg.Server.Port)
	assert.Equal(t, DevTokenKey, cfg.Server.TokenKey)
	assert.Equal(t, 12*time.Hour, cfg.Server.TokenTTL)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	storage := filepath.Join(t.TempDir(), "s.json")
	t.Setenv("DENTAL_API_BASE_URL", "https://clinic.example.com/")
	t.Setenv("DENTAL_API_TIMEOUT", "15s")
	t.Setenv("DENTAL_TRACKING_LIMIT", "20")
	t.Setenv("DENTAL_STORAGE_PATH", storage)
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://clinic.example.com", cfg.API.BaseURL, "trailing slash is trimmed")
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, 20, cfg.API.TrackingLimit)
	assert.Equal(t, storage, cfg.Session.StoragePath)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_ViteVariableIsHonored(t *testing.T) {
	t.Setenv("DENTAL_API_BASE_URL", "")
	t.Setenv("VITE_API_BASE_URL", "http://api.internal:8080")
	t.Setenv("DENTAL_STORAGE_PATH", filepath.Join(t.TempDir(), "s.json"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://api.internal:8080", cfg.API.BaseURL)
}

func TestLoad_ConfigFile(t *testing.T) {
	t.Setenv("DENTAL_API_BASE_URL", "")
	t.Setenv("VITE_API_BASE_URL", "")
	dir := t.TempDir()
	file := filepath.Join(dir, "dentalctl.yaml")
	content := "api:\n  baseurl: http://files.example.com\n  trackinglimit: 10\nsession:\n  storagepath: " + filepath.Join(dir, "s.json") + "\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, "http://files.example.com", cfg.API.BaseURL)
	assert.Equal(t, 10, cfg.API.TrackingLimit)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			API:     APIConfig{BaseURL: "http://localhost:4000", TrackingLimit: 50},
			Session: SessionConfig{StoragePath: "/tmp/s.json"},
			Logging: LoggingConfig{Level: "info", Format: "json"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid configuration", mutate: func(c *Config) {}},
		{name: "unsupported scheme", mutate: func(c *Config) { c.API.BaseURL = "ftp://clinic" }, wantErr: true},
		{name: "missing host", mutate: func(c *Config) { c.API.BaseURL = "http://" }, wantErr: true},
		{name: "negative timeout", mutate: func(c *Config) { c.API.Timeout = -time.Second }, wantErr: true},
		{name: "zero tracking limit", mutate: func(c *Config) { c.API.TrackingLimit = 0 }, wantErr: true},
		{name: "missing storage path", mutate: func(c *Config) { c.Session.StoragePath = "" }, wantErr: true},
		{name: "unknown log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: true},
		{name: "development key in production", mutate: func(c *Config) {
			c.Server.Environment = "production"
			c.Server.TokenKey = DevTokenKey
		}, wantErr: true},
		{name: "own key in production", mutate: func(c *Config) {
			c.Server.Environment = "production"
			c.Server.TokenKey = "k"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
