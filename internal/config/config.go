// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

package config

import (
	"time"
)

// Config holds all application configuration loaded from environment variables
// and config files. Provides centralized configuration management for all
// application components: the Moltbook API client, database, polling,
// analytics, server, API, and logging.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Example - Load configuration from environment:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	// cfg.Moltbook.BaseURL, cfg.Database.Path, etc. are now populated
//
// Validation:
// Load() validates all required fields and returns an error if:
//   - No Moltbook API keys are configured (MOLTBOOK_API_KEYS)
//   - Values are malformed (invalid URL format, non-positive rate limit)
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access
// from multiple goroutines.
type Config struct {
	Moltbook  MoltbookConfig  `koanf:"moltbook"`
	Database  DatabaseConfig  `koanf:"database"`
	Poll      PollConfig      `koanf:"poll"`
	Analytics AnalyticsConfig `koanf:"analytics"`
	Server    ServerConfig    `koanf:"server"`
	API       APIConfig       `koanf:"api"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// MoltbookConfig holds Moltbook API connection settings.
//
// Environment Variables:
//   - MOLTBOOK_BASE_URL: Moltbook API base URL (default: https://www.moltbook.com/api/v1)
//   - MOLTBOOK_API_KEYS: Comma-separated list of API keys for rotation
//   - MOLTBOOK_API_RATE_LIMIT: Calls per minute allowed per key (default: 100)
//   - MOLTBOOK_TIMEOUT: HTTP client timeout (default: 30s)
//
// Multiple API keys multiply effective throughput: with N keys at R calls
// per minute each, the observatory can issue up to N*R calls per minute.
type MoltbookConfig struct {
	BaseURL string `koanf:"base_url"`
	// APIKeys is the rotation set. At least one key is required.
	APIKeys []string `koanf:"api_keys"`
	// RateLimit is the number of calls allowed per key per minute.
	RateLimit int           `koanf:"rate_limit"`
	Timeout   time.Duration `koanf:"timeout"`
	// RetryAttempts is the maximum number of retries after 429 responses.
	RetryAttempts int `koanf:"retry_attempts"`
	// RetryDelay is the base delay for exponential backoff between retries.
	RetryDelay time.Duration `koanf:"retry_delay"`
}

// DatabaseConfig holds DuckDB settings.
//
// Environment Variables:
//   - DUCKDB_PATH: Database file path (default: /data/moltwatch.duckdb)
//   - DUCKDB_MAX_MEMORY: Memory limit for DuckDB (default: 2GB)
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	// Threads limits DuckDB worker threads. 0 = use runtime.NumCPU().
	Threads int `koanf:"threads"`
}

// PollConfig holds polling intervals for the observatory's data collectors.
//
// Environment Variables:
//   - POLL_POSTS_INTERVAL: Interval between post polls (default: 5m)
//   - POLL_COMMENTS_INTERVAL: Interval between comment polls (default: 10m)
//   - POLL_AGENTS_INTERVAL: Interval between agent profile polls (default: 30m)
//   - POLL_SUBMOLTS_INTERVAL: Interval between submolt polls (default: 1h)
//   - POLL_SNAPSHOT_INTERVAL: Interval between activity snapshots (default: 1h)
type PollConfig struct {
	PostsInterval    time.Duration `koanf:"posts_interval"`
	CommentsInterval time.Duration `koanf:"comments_interval"`
	AgentsInterval   time.Duration `koanf:"agents_interval"`
	SubmoltsInterval time.Duration `koanf:"submolts_interval"`
	SnapshotInterval time.Duration `koanf:"snapshot_interval"`
	// PostsPageSize is how many posts to request per poll.
	PostsPageSize int `koanf:"posts_page_size"`
	// CommentsTopPosts is how many recent posts get their comment trees
	// refreshed each comment poll.
	CommentsTopPosts int `koanf:"comments_top_posts"`
}

// AnalyticsConfig holds tuning knobs for the derived analytics.
type AnalyticsConfig struct {
	// SentimentSampleSize caps how many recent posts are scored per
	// sentiment refresh.
	SentimentSampleSize int           `koanf:"sentiment_sample_size"`
	SentimentCacheTTL   time.Duration `koanf:"sentiment_cache_ttl"`
	StatsCacheTTL       time.Duration `koanf:"stats_cache_ttl"`
	// TrendMinCount is the minimum occurrences before a word is reported
	// as trending.
	TrendMinCount int `koanf:"trend_min_count"`
	// TrendTopWords is how many words each trending query returns.
	TrendTopWords int `koanf:"trend_top_words"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_PORT: Server port (default: 3857)
//   - HTTP_HOST: Bind address (default: 0.0.0.0)
//   - HTTP_TIMEOUT: Request timeout (default: 30s)
//   - ENVIRONMENT: development or production (default: development)
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// APIConfig holds dashboard API settings.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
	// RateLimitReqs is the per-client request budget for dashboard endpoints.
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json or console (default: json)
//   - LOG_CALLER: include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load loads and validates the full application configuration.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
