/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package db

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carverauto/logquery/pkg/logger"
	"github.com/carverauto/logquery/pkg/models"
)

const (
	defaultPostgresPort = 5432

	sslModeDisable    = "disable"
	sslModeVerifyFull = "verify-full"
)

// NewPostgresPool dials the configured Postgres cluster and returns a pgx pool.
func NewPostgresPool(ctx context.Context, cfg *models.PostgresDatabase, log logger.Logger) (*pgxpool.Pool, error) {
	if cfg == nil {
		return nil, ErrDatabaseConfigNil
	}

	connURL, err := buildConnURL(cfg)
	if err != nil {
		return nil, err
	}

	poolConfig, err := pgxpool.ParseConfig(connURL.String())
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to parse connection string: %w", err)
	}

	if cfg.MaxConnections > 0 {
		poolConfig.MaxConns = cfg.MaxConnections
	}

	if cfg.MinConnections > 0 {
		poolConfig.MinConns = cfg.MinConnections
	}

	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = time.Duration(cfg.MaxConnLifetime)
	}

	if cfg.HealthCheckPeriod > 0 {
		poolConfig.HealthCheckPeriod = time.Duration(cfg.HealthCheckPeriod)
	}

	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = make(map[string]string)
	}

	if cfg.StatementTimeout > 0 {
		timeout := time.Duration(cfg.StatementTimeout) / time.Millisecond
		poolConfig.ConnConfig.RuntimeParams["statement_timeout"] = strconv.FormatInt(int64(timeout), 10)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to initialize pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()

		return nil, fmt.Errorf("%w: postgres ping: %w", ErrFailedOpenDB, err)
	}

	if log != nil {
		log.Info().
			Str("host", cfg.Host).
			Int("port", portOrDefault(cfg.Port)).
			Int32("max_conns", poolConfig.MaxConns).
			Msg("Connected to Postgres")
	}

	return pool, nil
}

func portOrDefault(port int) int {
	if port == 0 {
		return defaultPostgresPort
	}

	return port
}

// buildConnURL renders cfg as a postgres:// URL. TLS file paths are resolved
// against CertDir and passed to pgx as sslcert/sslkey/sslrootcert.
func buildConnURL(cfg *models.PostgresDatabase) (*url.URL, error) {
	connURL := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", cfg.Host, portOrDefault(cfg.Port)),
		Path:   "/" + cfg.Database,
	}

	if cfg.Username != "" {
		if cfg.Password != "" {
			connURL.User = url.UserPassword(cfg.Username, cfg.Password)
		} else {
			connURL.User = url.User(cfg.Username)
		}
	}

	sslMode, err := resolveSSLMode(cfg)
	if err != nil {
		return nil, err
	}

	query := connURL.Query()

	for k, v := range cfg.ExtraRuntimeParams {
		if k == "" || strings.EqualFold(k, "sslmode") {
			continue
		}

		query.Set(k, v)
	}

	query.Set("sslmode", sslMode)

	if cfg.ApplicationName != "" {
		query.Set("application_name", cfg.ApplicationName)
	}

	if cfg.TLS != nil {
		resolve := func(path string) string {
			if path == "" || filepath.IsAbs(path) || cfg.CertDir == "" {
				return path
			}

			return filepath.Join(cfg.CertDir, path)
		}

		certFile := resolve(cfg.TLS.CertFile)
		keyFile := resolve(cfg.TLS.KeyFile)
		caFile := resolve(cfg.TLS.CAFile)

		if certFile == "" || keyFile == "" || caFile == "" {
			return nil, ErrLackingTLSFiles
		}

		query.Set("sslcert", certFile)
		query.Set("sslkey", keyFile)
		query.Set("sslrootcert", caFile)
	}

	connURL.RawQuery = query.Encode()

	return connURL, nil
}

// resolveSSLMode picks the explicit ssl_mode, then extra_runtime_params, then a
// default that depends on whether TLS files are configured.
func resolveSSLMode(cfg *models.PostgresDatabase) (string, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.SSLMode))

	if mode == "" {
		for k, v := range cfg.ExtraRuntimeParams {
			if strings.EqualFold(k, "sslmode") {
				mode = strings.ToLower(strings.TrimSpace(v))
			}
		}
	}

	if mode == "" {
		if cfg.TLS != nil {
			return sslModeVerifyFull, nil
		}

		return sslModeDisable, nil
	}

	if mode == sslModeDisable && cfg.TLS != nil {
		return "", ErrTLSDisabled
	}

	return mode, nil
}
