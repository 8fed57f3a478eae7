package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/abelbrown/truthlens/internal/logging"
)

// Config is the persistent application configuration
type Config struct {
	// Analysis service
	API APIConfig `json:"api"`

	// UI Preferences
	UI UIConfig `json:"ui"`

	// History listing and the local cache
	History HistoryConfig `json:"history"`

	// Token overrides the saved session. Only ever set from the environment.
	Token string `json:"-"`
}

// APIConfig holds the analysis service settings
type APIConfig struct {
	BaseURL           string `json:"base_url"`
	TimeoutSeconds    int    `json:"timeout_seconds"`
	RequestsPerMinute int    `json:"requests_per_minute"` // Client-side guard, 0 = unlimited
}

// UIConfig holds UI preferences
type UIConfig struct {
	DefaultTab string `json:"default_tab"` // "text", "url" or "image"
	MaxWidth   int    `json:"max_width"`   // Result cards never grow past this
	ShowHelp   bool   `json:"show_help"`
}

// HistoryConfig holds history preferences
type HistoryConfig struct {
	PageSize   int  `json:"page_size"`
	LocalCache bool `json:"local_cache"` // Keep successful analyses in ~/.truthlens/history.db
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:           "http://localhost:5000",
			TimeoutSeconds:    60,
			RequestsPerMinute: 30,
		},
		UI: UIConfig{
			DefaultTab: "text",
			MaxWidth:   100,
			ShowHelp:   true,
		},
		History: HistoryConfig{
			PageSize:   10,
			LocalCache: true,
		},
	}
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	if c.API.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// Dir returns ~/.truthlens.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".truthlens")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(Dir(), "config.json")
}

// Load reads config from disk (defaults when missing), then .env files, then
// environment overrides.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom is Load with an explicit config file path.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			logging.Warn("config file unreadable, using defaults", "path", path, "error", err)
			cfg = DefaultConfig()
		}
	}

	loadDotenv(filepath.Join(filepath.Dir(path), ".env"))
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotenv populates the process environment from ./.env and the config
// directory's .env. Existing variables win.
func loadDotenv(extra string) {
	for _, p := range []string{".env", extra} {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			logging.Warn("failed to load env file", "path", p, "error", err)
		}
	}
}

// ApplyEnv overrides fields from TRUTHLENS_* variables.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := strings.TrimSpace(getenv("TRUTHLENS_API_URL")); v != "" {
		c.API.BaseURL = strings.TrimRight(v, "/")
	}
	if v := getenv("TRUTHLENS_TIMEOUT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TRUTHLENS_TIMEOUT: %w", err)
		}
		c.API.TimeoutSeconds = n
	}
	if v := getenv("TRUTHLENS_RPM"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TRUTHLENS_RPM: %w", err)
		}
		c.API.RequestsPerMinute = n
	}
	if v := strings.TrimSpace(getenv("TRUTHLENS_TOKEN")); v != "" {
		c.Token = v
	}
	return nil
}

// Save writes config to disk
func (c *Config) Save() error {
	return c.SaveTo(ConfigPath())
}

// SaveTo writes config to path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
