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

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carverauto/logquery/pkg/logquery"
)

// pgxQuerier is the subset of *pgxpool.Pool used by PoolExecutor.
type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// PoolExecutor adapts a pgx pool to logquery.Executor.
type PoolExecutor struct {
	pool  pgxQuerier
	close func()
}

// NewPoolExecutor wraps pool. Close closes the pool.
func NewPoolExecutor(pool *pgxpool.Pool) *PoolExecutor {
	return &PoolExecutor{pool: pool, close: pool.Close}
}

// Query implements logquery.Executor.
func (p *PoolExecutor) Query(ctx context.Context, query string, args ...interface{}) (logquery.Rows, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, logquery.NewStorageError("query", err)
	}

	return &pgxRows{rows: rows}, nil
}

// Exec runs a statement that returns no rows.
func (p *PoolExecutor) Exec(ctx context.Context, statement string, args ...interface{}) error {
	if _, err := p.pool.Exec(ctx, statement, args...); err != nil {
		return logquery.NewStorageError("exec", err)
	}

	return nil
}

// Dialect implements Store.
func (*PoolExecutor) Dialect() logquery.Dialect {
	return logquery.Postgres
}

// Close implements Store.
func (p *PoolExecutor) Close() error {
	if p.close != nil {
		p.close()
	}

	return nil
}

type pgxRows struct {
	rows pgx.Rows
}

func (r *pgxRows) Next() bool {
	return r.rows.Next()
}

func (r *pgxRows) Scan(dest ...interface{}) error {
	return logquery.NewStorageError("scan", r.rows.Scan(dest...))
}

func (r *pgxRows) Err() error {
	return logquery.NewStorageError("rows", r.rows.Err())
}

func (r *pgxRows) Close() {
	r.rows.Close()
}
