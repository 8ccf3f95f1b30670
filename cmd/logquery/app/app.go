/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package app wires the logquery service together.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/carverauto/logquery/pkg/api"
	"github.com/carverauto/logquery/pkg/config"
	"github.com/carverauto/logquery/pkg/db"
	"github.com/carverauto/logquery/pkg/ingest"
	"github.com/carverauto/logquery/pkg/lifecycle"
	"github.com/carverauto/logquery/pkg/logger"
	"github.com/carverauto/logquery/pkg/logquery"
	"github.com/carverauto/logquery/pkg/models"
	"github.com/carverauto/logquery/pkg/version"
)

const (
	serviceName     = "logquery"
	shutdownTimeout = 10 * time.Second
)

// Options contains runtime configuration derived from CLI flags.
type Options struct {
	ConfigPath string
}

// LoadConfig reads and validates the service configuration at path.
func LoadConfig(ctx context.Context, path string) (*models.ServiceConfig, error) {
	var cfg models.ServiceConfig

	if err := config.NewConfig(nil).LoadAndValidate(ctx, path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// Run boots the service and blocks until ctx is cancelled or a termination
// signal arrives.
func Run(ctx context.Context, opts Options) error {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := LoadConfig(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}

	if err := lifecycle.InitializeLogger(cfg.Logging); err != nil {
		return err
	}

	mainLogger, err := lifecycle.CreateComponentLogger("logquery-main", cfg.Logging)
	if err != nil {
		return err
	}

	if redacted, redactErr := config.Redacted(cfg); redactErr == nil {
		mainLogger.Debug().RawJSON("config", redacted).Msg("Loaded configuration")
	}

	tracing := logger.TracingConfig{
		ServiceName:    serviceName,
		ServiceVersion: version.GetVersion(),
		Logger:         mainLogger,
	}
	if cfg.Logging != nil {
		tracing.OTel = &cfg.Logging.OTel
	}

	if _, err := logger.InitializeTracing(ctx, tracing); err != nil {
		return err
	}

	defer func() {
		if shutdownErr := lifecycle.ShutdownLogger(); shutdownErr != nil {
			mainLogger.Error().Err(shutdownErr).Msg("Error shutting down logger")
		}
	}()

	store, err := db.Open(ctx, &cfg.Database, mainLogger.WithComponent("db"))
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			mainLogger.Warn().Err(closeErr).Msg("Error closing log store")
		}
	}()

	if err := db.EnsureSchema(ctx, store, cfg.Database.Table, store.Dialect()); err != nil {
		return err
	}

	engine := logquery.NewEngine(store,
		logquery.WithDialect(store.Dialect()),
		logquery.WithTable(cfg.Database.Table),
		logquery.WithLogger(mainLogger.WithComponent("engine")),
	)

	if cfg.Ingest != nil && cfg.Ingest.Enabled {
		ingestSvc, err := ingest.NewService(cfg.Ingest, engine, mainLogger.WithComponent("ingest"))
		if err != nil {
			return err
		}

		if err := ingestSvc.Start(ctx); err != nil {
			return err
		}

		defer func() {
			_ = ingestSvc.Stop(context.Background())
		}()
	}

	server := api.NewAPIServer(cfg.CORS,
		api.WithLogService(engine),
		api.WithLogger(mainLogger.WithComponent("api")),
		api.WithAPIKey(cfg.APIKey),
	)

	errCh := make(chan error, 1)

	go func() {
		errCh <- server.Start(cfg.ListenAddr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("api server stopped: %w", err)
	case <-ctx.Done():
	}

	mainLogger.Info().Msg("Shutting down logquery")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		mainLogger.Warn().Err(err).Msg("API server shutdown incomplete")
	}

	return nil
}
