// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	// Moltbook defaults
	if cfg.Moltbook.BaseURL != "https://www.moltbook.com/api/v1" {
		t.Errorf("Moltbook.BaseURL = %q, want https://www.moltbook.com/api/v1", cfg.Moltbook.BaseURL)
	}
	if len(cfg.Moltbook.APIKeys) != 0 {
		t.Errorf("Moltbook.APIKeys should be empty by default, got %v", cfg.Moltbook.APIKeys)
	}
	if cfg.Moltbook.RateLimit != 100 {
		t.Errorf("Moltbook.RateLimit = %d, want 100", cfg.Moltbook.RateLimit)
	}
	if cfg.Moltbook.Timeout != 30*time.Second {
		t.Errorf("Moltbook.Timeout = %v, want 30s", cfg.Moltbook.Timeout)
	}
	if cfg.Moltbook.RetryAttempts != 5 {
		t.Errorf("Moltbook.RetryAttempts = %d, want 5", cfg.Moltbook.RetryAttempts)
	}

	// Database defaults
	if cfg.Database.Path != "/data/moltwatch.duckdb" {
		t.Errorf("Database.Path = %q, want /data/moltwatch.duckdb", cfg.Database.Path)
	}
	if cfg.Database.MaxMemory != "2GB" {
		t.Errorf("Database.MaxMemory = %q, want 2GB", cfg.Database.MaxMemory)
	}

	// Poll defaults
	if cfg.Poll.PostsInterval != 5*time.Minute {
		t.Errorf("Poll.PostsInterval = %v, want 5m", cfg.Poll.PostsInterval)
	}
	if cfg.Poll.SnapshotInterval != time.Hour {
		t.Errorf("Poll.SnapshotInterval = %v, want 1h", cfg.Poll.SnapshotInterval)
	}

	// Analytics defaults
	if cfg.Analytics.SentimentSampleSize != 500 {
		t.Errorf("Analytics.SentimentSampleSize = %d, want 500", cfg.Analytics.SentimentSampleSize)
	}
	if cfg.Analytics.SentimentCacheTTL != 10*time.Minute {
		t.Errorf("Analytics.SentimentCacheTTL = %v, want 10m", cfg.Analytics.SentimentCacheTTL)
	}
	if cfg.Analytics.TrendMinCount != 3 {
		t.Errorf("Analytics.TrendMinCount = %d, want 3", cfg.Analytics.TrendMinCount)
	}

	// Server defaults
	if cfg.Server.Port != 3857 {
		t.Errorf("Server.Port = %d, want 3857", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0", cfg.Server.Host)
	}

	// API defaults
	if cfg.API.DefaultPageSize != 20 {
		t.Errorf("API.DefaultPageSize = %d, want 20", cfg.API.DefaultPageSize)
	}
	if len(cfg.API.CORSOrigins) != 1 || cfg.API.CORSOrigins[0] != "*" {
		t.Errorf("API.CORSOrigins = %v, want [*]", cfg.API.CORSOrigins)
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want json", cfg.Logging.Format)
	}
}

// TestEnvTransformFunc verifies environment variable name mapping
func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"MOLTBOOK_BASE_URL", "moltbook.base_url"},
		{"MOLTBOOK_API_KEYS", "moltbook.api_keys"},
		{"MOLTBOOK_API_RATE_LIMIT", "moltbook.rate_limit"},
		{"DUCKDB_PATH", "database.path"},
		{"POLL_POSTS_INTERVAL", "poll.posts_interval"},
		{"SENTIMENT_SAMPLE_SIZE", "analytics.sentiment_sample_size"},
		{"HTTP_PORT", "server.port"},
		{"LOG_LEVEL", "logging.level"},
		{"RANDOM_UNRELATED_VAR", ""},
		{"PATH", ""},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Parallel()
			if got := envTransformFunc(tt.env); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

// TestLoadWithKoanf_EnvOverride verifies env vars override defaults
func TestLoadWithKoanf_EnvOverride(t *testing.T) {
	t.Setenv("MOLTBOOK_API_KEYS", "key-one,key-two, key-three")
	t.Setenv("MOLTBOOK_API_RATE_LIMIT", "50")
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error: %v", err)
	}

	if len(cfg.Moltbook.APIKeys) != 3 {
		t.Fatalf("expected 3 API keys, got %v", cfg.Moltbook.APIKeys)
	}
	if cfg.Moltbook.APIKeys[2] != "key-three" {
		t.Errorf("expected trimmed key 'key-three', got %q", cfg.Moltbook.APIKeys[2])
	}
	if cfg.Moltbook.RateLimit != 50 {
		t.Errorf("Moltbook.RateLimit = %d, want 50", cfg.Moltbook.RateLimit)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

// TestLoadWithKoanf_ConfigFile verifies YAML config file loading via CONFIG_PATH
func TestLoadWithKoanf_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
moltbook:
  api_keys:
    - file-key-1
    - file-key-2
  rate_limit: 25
server:
  port: 9999
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error: %v", err)
	}

	if len(cfg.Moltbook.APIKeys) != 2 {
		t.Fatalf("expected 2 API keys from file, got %v", cfg.Moltbook.APIKeys)
	}
	if cfg.Moltbook.RateLimit != 25 {
		t.Errorf("Moltbook.RateLimit = %d, want 25", cfg.Moltbook.RateLimit)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	// Untouched settings keep defaults
	if cfg.Database.Path != "/data/moltwatch.duckdb" {
		t.Errorf("Database.Path = %q, want default", cfg.Database.Path)
	}
}

// TestLoadWithKoanf_EnvBeatsFile verifies precedence ENV > file
func TestLoadWithKoanf_EnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
moltbook:
  api_keys:
    - file-key
  rate_limit: 25
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("MOLTBOOK_API_RATE_LIMIT", "75")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error: %v", err)
	}

	if cfg.Moltbook.RateLimit != 75 {
		t.Errorf("Moltbook.RateLimit = %d, want 75 (env should beat file)", cfg.Moltbook.RateLimit)
	}
}

// TestLoadWithKoanf_MissingKeys verifies fail-fast on empty key list
func TestLoadWithKoanf_MissingKeys(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nonexistent.yaml"))

	_, err := LoadWithKoanf()
	if err == nil {
		t.Fatal("expected error when MOLTBOOK_API_KEYS is unset")
	}
}
