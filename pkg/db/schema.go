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
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/carverauto/logquery/pkg/logquery"
	"github.com/carverauto/logquery/pkg/models"
)

// statementExecer runs DDL statements.
type statementExecer interface {
	Exec(ctx context.Context, statement string, args ...interface{}) error
}

// sqliteUUIDv4 generates a random RFC 4122 version 4 id inside SQLite.
const sqliteUUIDv4 = `(lower(hex(randomblob(4))) || '-' || lower(hex(randomblob(2))) || '-4' || ` +
	`substr(lower(hex(randomblob(2))), 2) || '-' || ` +
	`substr('89ab', 1 + (abs(random()) % 4), 1) || substr(lower(hex(randomblob(2))), 2) || '-' || ` +
	`lower(hex(randomblob(6))))`

func schemaStatements(table string, dialect logquery.Dialect) []string {
	if strings.TrimSpace(table) == "" {
		table = models.DefaultLogsTable
	}

	quoted := pgx.Identifier{table}.Sanitize()
	index := pgx.Identifier{"idx_" + table + "_timestamp"}.Sanitize()

	if dialect == logquery.SQLite {
		return []string{
			`CREATE TABLE IF NOT EXISTS ` + quoted + ` (
				id        TEXT PRIMARY KEY NOT NULL DEFAULT ` + sqliteUUIDv4 + `,
				timestamp TIMESTAMP NOT NULL,
				level     TEXT NOT NULL DEFAULT '',
				service   TEXT NOT NULL DEFAULT '',
				message   TEXT NOT NULL DEFAULT '',
				data      TEXT NOT NULL DEFAULT '{}'
			)`,
			`CREATE INDEX IF NOT EXISTS ` + index + ` ON ` + quoted + ` (timestamp DESC)`,
		}
	}

	return []string{
		`CREATE TABLE IF NOT EXISTS ` + quoted + ` (
			id        UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			timestamp TIMESTAMPTZ NOT NULL,
			level     TEXT NOT NULL DEFAULT '',
			service   TEXT NOT NULL DEFAULT '',
			message   TEXT NOT NULL DEFAULT '',
			data      TEXT NOT NULL DEFAULT '{}'
		)`,
		`CREATE INDEX IF NOT EXISTS ` + index + ` ON ` + quoted + ` (timestamp DESC)`,
	}
}

// EnsureSchema creates the logs table and its timestamp index when missing.
func EnsureSchema(ctx context.Context, exec statementExecer, table string, dialect logquery.Dialect) error {
	for _, stmt := range schemaStatements(table, dialect) {
		if err := exec.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%w: %w", ErrFailedToInit, err)
		}
	}

	return nil
}
