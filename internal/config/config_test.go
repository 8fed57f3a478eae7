package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	def := DefaultConfig()
	if cfg.API.BaseURL != def.API.BaseURL && os.Getenv("TRUTHLENS_API_URL") == "" {
		t.Errorf("BaseURL = %q, want default %q", cfg.API.BaseURL, def.API.BaseURL)
	}
	if cfg.History.PageSize != 10 {
		t.Errorf("PageSize = %d, want 10", cfg.History.PageSize)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := DefaultConfig()
	cfg.UI.DefaultTab = "url"
	cfg.History.LocalCache = false
	cfg.Token = "secret"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config perms = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if loaded.UI.DefaultTab != "url" || loaded.History.LocalCache {
		t.Errorf("round trip lost fields: %+v", loaded)
	}
	if loaded.Token == "secret" {
		t.Error("token must never be written to the config file")
	}
}

func TestCorruptFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.UI.MaxWidth != DefaultConfig().UI.MaxWidth {
		t.Errorf("expected defaults, got %+v", cfg.UI)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"TRUTHLENS_API_URL": "https://truthlens.example.com/",
		"TRUTHLENS_TIMEOUT": "15",
		"TRUTHLENS_RPM":     "0",
		"TRUTHLENS_TOKEN":   "abc",
	}
	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(func(k string) string { return env[k] }); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}

	if cfg.API.BaseURL != "https://truthlens.example.com" {
		t.Errorf("BaseURL = %q, trailing slash should be trimmed", cfg.API.BaseURL)
	}
	if cfg.Timeout() != 15*time.Second {
		t.Errorf("Timeout() = %v", cfg.Timeout())
	}
	if cfg.API.RequestsPerMinute != 0 || cfg.Token != "abc" {
		t.Errorf("unexpected overrides: %+v token=%q", cfg.API, cfg.Token)
	}

	bad := DefaultConfig()
	if err := bad.ApplyEnv(func(k string) string {
		if k == "TRUTHLENS_TIMEOUT" {
			return "soon"
		}
		return ""
	}); err == nil {
		t.Error("non-numeric timeout should be rejected")
	}
}

func TestDotenvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("TRUTHLENS_RPM=7\nTRUTHLENS_TIMEOUT=9\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TRUTHLENS_TIMEOUT", "3")
	t.Setenv("TRUTHLENS_RPM", "")
	os.Unsetenv("TRUTHLENS_RPM")

	cfg, err := LoadFrom(filepath.Join(dir, "config.json"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.API.TimeoutSeconds != 3 {
		t.Errorf("TimeoutSeconds = %d, environment should win over .env", cfg.API.TimeoutSeconds)
	}
	if cfg.API.RequestsPerMinute != 7 {
		t.Errorf("RequestsPerMinute = %d, want value from .env", cfg.API.RequestsPerMinute)
	}
}
