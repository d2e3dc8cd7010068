// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

// Moltwatch server entry point.
//
// Startup order:
//  1. Configuration (koanf: defaults, optional YAML file, env override)
//  2. Logging (zerolog)
//  3. Key pool (fails fast when MOLTBOOK_API_KEYS is empty)
//  4. Database (DuckDB)
//  5. Analyzer, Moltbook client with circuit breaker, poll manager
//  6. Supervisor tree: polling layer (manager, websocket hub) and
//     api layer (http server)
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/moltwatch/internal/analyzer"
	"github.com/tomtom215/moltwatch/internal/api"
	"github.com/tomtom215/moltwatch/internal/config"
	"github.com/tomtom215/moltwatch/internal/database"
	"github.com/tomtom215/moltwatch/internal/logging"
	"github.com/tomtom215/moltwatch/internal/ratelimit"
	"github.com/tomtom215/moltwatch/internal/supervisor"
	moltsync "github.com/tomtom215/moltwatch/internal/sync"
	"github.com/tomtom215/moltwatch/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Config is not available yet, so this uses logging defaults.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("base_url", cfg.Moltbook.BaseURL).
		Int("api_keys", len(cfg.Moltbook.APIKeys)).
		Str("db_path", cfg.Database.Path).
		Msg("Starting Moltwatch")

	pool, err := ratelimit.NewKeyPool(cfg.Moltbook.APIKeys, cfg.Moltbook.RateLimit)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build key pool, set MOLTBOOK_API_KEYS")
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	an := analyzer.New(db, &cfg.Analytics)
	defer an.Stop()

	client := moltsync.NewCircuitBreakerClient(moltsync.NewMoltbookClient(&cfg.Moltbook, pool))
	hub := websocket.NewHub()
	manager := moltsync.NewManager(client, db, an, cfg, hub)

	router := api.NewRouter(db, an, pool, hub, manager, cfg)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Handler(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  2 * cfg.Server.Timeout,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddPollingService(supervisor.NewHubService(hub))
	tree.AddPollingService(supervisor.NewPollService(manager))
	tree.AddAPIService(supervisor.NewHTTPServerService(server, 10*time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutting down, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
		cancel()
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Moltwatch stopped")
}
