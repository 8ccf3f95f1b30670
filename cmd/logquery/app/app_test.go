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

package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/logquery/pkg/db"
	"github.com/carverauto/logquery/pkg/models"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "logquery.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func sqliteConfig(dbPath string) string {
	return `{
		"listen_addr": "127.0.0.1:0",
		"database": {"driver": "sqlite", "table": "app_logs", "sqlite": {"path": "` + dbPath + `"}},
		"logging": {"level": "error", "output": "stderr"}
	}`
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	dbPath := filepath.Join(t.TempDir(), "logs.db")

	cfg, err := LoadConfig(context.Background(), writeConfig(t, sqliteConfig(dbPath)))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:0", cfg.ListenAddr)
	assert.Equal(t, models.DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, dbPath, cfg.Database.SQLite.Path)
	assert.Nil(t, cfg.Ingest)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	_, err := LoadConfig(context.Background(), writeConfig(t, `{"database": {"driver": "sqlite"}}`))
	require.Error(t, err)
}

func TestRunCreatesSchemaAndStopsOnCancel(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	dbPath := filepath.Join(t.TempDir(), "logs.db")
	path := writeConfig(t, sqliteConfig(dbPath))

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	require.NoError(t, Run(ctx, Options{ConfigPath: path}))

	store, err := db.Open(context.Background(), &models.DatabaseConfig{
		Driver: models.DriverSQLite,
		SQLite: &models.SQLiteDatabase{Path: dbPath},
	}, nil)
	require.NoError(t, err)

	defer func() { _ = store.Close() }()

	rows, err := store.Query(context.Background(), `SELECT count(*) FROM "app_logs"`)
	require.NoError(t, err)

	defer rows.Close()

	require.True(t, rows.Next())

	var count int
	require.NoError(t, rows.Scan(&count))
	assert.Zero(t, count)
}
