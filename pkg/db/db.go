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

// Package db provides the storage backends behind the log query engine.
package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/carverauto/logquery/pkg/logger"
	"github.com/carverauto/logquery/pkg/logquery"
	"github.com/carverauto/logquery/pkg/models"
)

// Store is a storage backend the engine can run on.
type Store interface {
	logquery.Executor
	Exec(ctx context.Context, statement string, args ...interface{}) error
	Dialect() logquery.Dialect
	Close() error
}

var (
	_ Store = (*PoolExecutor)(nil)
	_ Store = (*SQLExecutor)(nil)
)

// Open connects to the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg *models.DatabaseConfig, log logger.Logger) (Store, error) {
	if cfg == nil {
		return nil, ErrDatabaseConfigNil
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case models.DriverPostgres:
		pool, err := NewPostgresPool(ctx, cfg.Postgres, log)
		if err != nil {
			return nil, err
		}

		return NewPoolExecutor(pool), nil
	case models.DriverSQLite:
		return OpenSQLite(ctx, cfg.SQLite, log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}
}
