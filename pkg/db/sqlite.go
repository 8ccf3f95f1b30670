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
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/carverauto/logquery/pkg/logger"
	"github.com/carverauto/logquery/pkg/logquery"
	"github.com/carverauto/logquery/pkg/models"
)

const (
	sqliteDriverName         = "sqlite"
	defaultSQLiteBusyTimeout = 5 * time.Second
)

// sqliteDSN builds a modernc.org/sqlite DSN. LIKE is made case-sensitive and
// time.Time values are stored in SQLite's text format so they compare in order.
func sqliteDSN(cfg *models.SQLiteDatabase) string {
	busy := time.Duration(cfg.BusyTimeout)
	if busy <= 0 {
		busy = defaultSQLiteBusyTimeout
	}

	params := url.Values{}
	params.Add("_pragma", "case_sensitive_like(1)")
	params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busy.Milliseconds()))
	params.Add("_pragma", "journal_mode(WAL)")
	params.Set("_time_format", "sqlite")

	return "file:" + cfg.Path + "?" + params.Encode()
}

// OpenSQLite opens the embedded store described by cfg.
func OpenSQLite(ctx context.Context, cfg *models.SQLiteDatabase, log logger.Logger) (*SQLExecutor, error) {
	if cfg == nil || strings.TrimSpace(cfg.Path) == "" {
		return nil, ErrSQLitePathMissing
	}

	conn, err := sql.Open(sqliteDriverName, sqliteDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedOpenDB, err)
	}

	if cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("%w: %w", ErrFailedOpenDB, err)
	}

	if log != nil {
		log.Info().Str("path", cfg.Path).Msg("Opened SQLite log store")
	}

	return NewSQLExecutor(conn, logquery.SQLite), nil
}

// SQLExecutor adapts a database/sql handle to logquery.Executor.
type SQLExecutor struct {
	conn    *sql.DB
	dialect logquery.Dialect
}

// NewSQLExecutor wraps conn. The dialect must match the driver behind conn.
func NewSQLExecutor(conn *sql.DB, dialect logquery.Dialect) *SQLExecutor {
	return &SQLExecutor{conn: conn, dialect: dialect}
}

// Query implements logquery.Executor.
func (s *SQLExecutor) Query(ctx context.Context, query string, args ...interface{}) (logquery.Rows, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, logquery.NewStorageError("query", err)
	}

	return &sqlRows{rows: rows}, nil
}

// Exec runs a statement that returns no rows.
func (s *SQLExecutor) Exec(ctx context.Context, statement string, args ...interface{}) error {
	if _, err := s.conn.ExecContext(ctx, statement, args...); err != nil {
		return logquery.NewStorageError("exec", err)
	}

	return nil
}

// Dialect implements Store.
func (s *SQLExecutor) Dialect() logquery.Dialect {
	return s.dialect
}

// Close implements Store.
func (s *SQLExecutor) Close() error {
	return s.conn.Close()
}

type sqlRows struct {
	rows *sql.Rows
}

func (r *sqlRows) Next() bool {
	return r.rows.Next()
}

func (r *sqlRows) Scan(dest ...interface{}) error {
	return logquery.NewStorageError("scan", r.rows.Scan(dest...))
}

func (r *sqlRows) Err() error {
	return logquery.NewStorageError("rows", r.rows.Err())
}

func (r *sqlRows) Close() {
	_ = r.rows.Close()
}
