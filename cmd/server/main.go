// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

// Package main is the entry point for the MatchPulse server.
//
// MatchPulse matches people to events in a two-sided marketplace. The
// server initializes components in the following order:
//
//  1. Configuration: layered via Koanf v2 (defaults, config.yaml,
//     environment variables)
//  2. Logging: zerolog global logger
//  3. Store: in-memory state store with training-log writers
//  4. Predictor: RSVP model artifact (soft-degrades to a neutral
//     default when the artifact is missing)
//  5. Engine: scoring pipeline plus min-cost-flow assignment solver
//     with greedy fallback
//  6. HTTP server: chi router with graceful shutdown on SIGINT/SIGTERM
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

	"github.com/matchpulse/matchpulse/internal/api"
	"github.com/matchpulse/matchpulse/internal/config"
	"github.com/matchpulse/matchpulse/internal/demo"
	"github.com/matchpulse/matchpulse/internal/logging"
	"github.com/matchpulse/matchpulse/internal/match"
	"github.com/matchpulse/matchpulse/internal/match/solver"
	"github.com/matchpulse/matchpulse/internal/metrics"
	"github.com/matchpulse/matchpulse/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	logger := logging.Logger()

	st := store.New(cfg, logger)
	model := match.LoadModel(cfg.Model.Path, logger)
	slv := solver.NewWithFallbackHook(logger, func() {
		metrics.SolverFallbacks.Inc()
	})
	engine := match.NewEngine(cfg, model, slv, st, logger)
	runner := demo.NewRunner(st, engine, cfg, logger)

	handler := api.NewHandler(st, engine, runner, logger)
	router := api.NewRouter(cfg, handler)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("matchpulse server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	logger.Info().Msg("server stopped")
	return nil
}
