package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultBaseURL is used when no backend URL is configured
const DefaultBaseURL = "http://localhost:4000"

// DevTokenKey is the sandbox signing key outside production
const DevTokenKey = "sandbox-development-key"

// Config holds all application configuration
type Config struct {
	API     APIConfig
	Session SessionConfig
	Logging LoggingConfig
	Server  ServerConfig
}

// APIConfig holds settings for the clinic REST backend
type APIConfig struct {
	BaseURL string
	// Timeout of zero leaves hang behavior to the HTTP stack
	Timeout       time.Duration
	TrackingLimit int
}

// SessionConfig holds local session storage settings
type SessionConfig struct {
	StoragePath   string
	EncryptionKey string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json or console
}

// ServerConfig holds sandbox server configuration
type ServerConfig struct {
	Port            string
	Environment     string
	ShutdownTimeout time.Duration
	// TokenKey signs sandbox bearer tokens
	TokenKey    string
	TokenTTL    time.Duration
	CORSOrigins []string
}

// Load reads configuration from environment variables and an optional config file
func Load(configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.AutomaticEnv()
	bindEnvVars(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.API.BaseURL), "/")
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = DefaultBaseURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("api.baseurl", DefaultBaseURL)
	v.SetDefault("api.timeout", time.Duration(0))
	v.SetDefault("api.trackinglimit", 50)

	// Session defaults
	v.SetDefault("session.storagepath", defaultStoragePath())

	// Logging defaults
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")

	// Sandbox server defaults
	v.SetDefault("server.port", "4000")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.shutdowntimeout", 10*time.Second)
	v.SetDefault("server.tokenkey", DevTokenKey)
	v.SetDefault("server.tokenttl", 12*time.Hour)
	v.SetDefault("server.corsorigins", []string{})
}

// bindEnvVars binds environment variables to config keys
func bindEnvVars(v *viper.Viper) {
	// API
	v.BindEnv("api.baseurl", "DENTAL_API_BASE_URL", "VITE_API_BASE_URL")
	v.BindEnv("api.timeout", "DENTAL_API_TIMEOUT")
	v.BindEnv("api.trackinglimit", "DENTAL_TRACKING_LIMIT")

	// Session
	v.BindEnv("session.storagepath", "DENTAL_STORAGE_PATH")
	v.BindEnv("session.encryptionkey", "DENTAL_STORAGE_KEY")

	// Logging
	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("logging.format", "LOG_FORMAT")

	// Server
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.environment", "ENV", "ENVIRONMENT")
	v.BindEnv("server.tokenkey", "SANDBOX_TOKEN_KEY")
	v.BindEnv("server.tokenttl", "SANDBOX_TOKEN_TTL")
	v.BindEnv("server.corsorigins", "SANDBOX_CORS_ORIGINS")
}

// defaultStoragePath places the session store under the user's config directory
func defaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "dentalctl", "storage.json")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api.baseurl is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.baseurl must use http or https, got %q", c.API.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("api.baseurl must include a host")
	}

	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}

	if c.API.TrackingLimit <= 0 {
		return fmt.Errorf("api.trackinglimit must be positive")
	}

	if c.Session.StoragePath == "" {
		return fmt.Errorf("session.storagepath is required")
	}

	if c.Server.Environment == "production" && c.Server.TokenKey == DevTokenKey {
		return fmt.Errorf("server.tokenkey must be set in production")
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}

	return nil
}
