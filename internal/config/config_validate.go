// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

package config

import (
	"fmt"
	"strings"
)

// Validate checks that required configuration is present and valid.
// Missing API keys fail here rather than at the first API call.
func (c *Config) Validate() error {
	if err := c.validateMoltbook(); err != nil {
		return err
	}

	if err := c.validatePoll(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateAPI(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateMoltbook validates the Moltbook API client configuration.
func (c *Config) validateMoltbook() error {
	if err := validateHTTPURL(c.Moltbook.BaseURL, "MOLTBOOK_BASE_URL"); err != nil {
		return fmt.Errorf("MOLTBOOK_BASE_URL is invalid: %w", err)
	}

	if len(c.Moltbook.APIKeys) == 0 {
		return fmt.Errorf("MOLTBOOK_API_KEYS is required (comma-separated list of at least one key)")
	}
	for i, key := range c.Moltbook.APIKeys {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("MOLTBOOK_API_KEYS entry %d is empty", i+1)
		}
	}

	if c.Moltbook.RateLimit <= 0 {
		return fmt.Errorf("MOLTBOOK_API_RATE_LIMIT must be positive, got %d", c.Moltbook.RateLimit)
	}
	if c.Moltbook.Timeout <= 0 {
		return fmt.Errorf("MOLTBOOK_TIMEOUT must be positive")
	}
	if c.Moltbook.RetryAttempts < 0 {
		return fmt.Errorf("MOLTBOOK_RETRY_ATTEMPTS must not be negative")
	}

	return nil
}

// validatePoll validates polling intervals.
func (c *Config) validatePoll() error {
	intervals := map[string]int64{
		"POLL_POSTS_INTERVAL":    int64(c.Poll.PostsInterval),
		"POLL_COMMENTS_INTERVAL": int64(c.Poll.CommentsInterval),
		"POLL_AGENTS_INTERVAL":   int64(c.Poll.AgentsInterval),
		"POLL_SUBMOLTS_INTERVAL": int64(c.Poll.SubmoltsInterval),
		"POLL_SNAPSHOT_INTERVAL": int64(c.Poll.SnapshotInterval),
	}
	for name, d := range intervals {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}

	if c.Poll.PostsPageSize <= 0 {
		return fmt.Errorf("POLL_POSTS_PAGE_SIZE must be positive")
	}
	if c.Poll.CommentsTopPosts <= 0 {
		return fmt.Errorf("POLL_COMMENTS_TOP must be positive")
	}

	return nil
}

// validateServer validates the HTTP server configuration.
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}

	switch c.Server.Environment {
	case "development", "production":
	default:
		return fmt.Errorf("ENVIRONMENT must be 'development' or 'production', got %q", c.Server.Environment)
	}

	return nil
}

// validateAPI validates dashboard API settings.
func (c *Config) validateAPI() error {
	if c.API.DefaultPageSize <= 0 {
		return fmt.Errorf("API_DEFAULT_PAGE_SIZE must be positive")
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("API_MAX_PAGE_SIZE (%d) must be >= API_DEFAULT_PAGE_SIZE (%d)",
			c.API.MaxPageSize, c.API.DefaultPageSize)
	}
	if c.API.RateLimitReqs <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive")
	}
	if c.API.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

// validateLogging validates logging settings.
func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, fatal; got %q", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be 'json' or 'console', got %q", c.Logging.Format)
	}

	return nil
}
