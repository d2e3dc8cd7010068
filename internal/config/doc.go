// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

/*
Package config provides centralized configuration management for Moltwatch.

This package handles loading, validation, and parsing of configuration for all
application components. It ensures consistent configuration across the backend
services and provides sensible defaults for optional settings.

# Configuration Sources

Configuration is loaded in layers with Koanf v2 (later layers win):

 1. Built-in defaults
 2. Optional YAML config file (config.yaml, or CONFIG_PATH)
 3. Environment variables

# Configuration Structure

The package organizes configuration into logical groups:

  - MoltbookConfig: Moltbook API base URL, key rotation set, per-key rate limit
  - DatabaseConfig: DuckDB path and performance tuning
  - PollConfig: Poll intervals for posts, comments, agents, and submolts
  - AnalyticsConfig: Sentiment sampling, cache TTLs, trend thresholds
  - ServerConfig: HTTP server settings (host, port, timeouts)
  - APIConfig: Dashboard pagination and per-client rate limiting
  - LoggingConfig: Log level and output format

# Key Environment Variables

Moltbook (MoltbookConfig):
  - MOLTBOOK_BASE_URL: API base URL (default: https://www.moltbook.com/api/v1)
  - MOLTBOOK_API_KEYS: Comma-separated API keys (required, at least one)
  - MOLTBOOK_API_RATE_LIMIT: Calls per minute per key (default: 100)

Database (DatabaseConfig):
  - DUCKDB_PATH: Database file path (default: /data/moltwatch.duckdb)
  - DUCKDB_MAX_MEMORY: DuckDB memory ceiling (default: 2GB)

Polling (PollConfig):
  - POLL_POSTS_INTERVAL, POLL_COMMENTS_INTERVAL, POLL_AGENTS_INTERVAL,
    POLL_SUBMOLTS_INTERVAL, POLL_SNAPSHOT_INTERVAL

# Usage

	cfg, err := config.Load()
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to load config")
	}

Load() fails fast when no API keys are configured, so a misconfigured
deployment stops at startup instead of at the first Moltbook call.
*/
package config
