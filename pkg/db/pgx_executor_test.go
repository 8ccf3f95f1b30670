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
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/logquery/pkg/logquery"
	"github.com/carverauto/logquery/pkg/models"
)

var (
	errFakeRowScanMismatch = errors.New("scan destination mismatch")
	errFakeRowUnsupported  = errors.New("unsupported destination type")
	errConnReset           = errors.New("connection reset by peer")
)

// fakePgxRows replays fixed rows. Methods the executor never calls fall
// through to the nil embedded interface.
type fakePgxRows struct {
	pgx.Rows

	values  [][]interface{}
	pos     int
	scanErr error
	err     error
	closed  bool
}

func (r *fakePgxRows) Next() bool {
	if r.pos >= len(r.values) {
		return false
	}

	r.pos++

	return true
}

func (r *fakePgxRows) Scan(dest ...interface{}) error {
	if r.scanErr != nil {
		return r.scanErr
	}

	values := r.values[r.pos-1]
	if len(dest) != len(values) {
		return fmt.Errorf("%w: dest=%d values=%d", errFakeRowScanMismatch, len(dest), len(values))
	}

	for i, d := range dest {
		switch ptr := d.(type) {
		case *string:
			*ptr, _ = values[i].(string)
		case *time.Time:
			*ptr, _ = values[i].(time.Time)
		default:
			return fmt.Errorf("%w: %T", errFakeRowUnsupported, d)
		}
	}

	return nil
}

func (r *fakePgxRows) Err() error {
	return r.err
}

func (r *fakePgxRows) Close() {
	r.closed = true
}

type fakeQuerier struct {
	rows     *fakePgxRows
	queryErr error
	execErr  error

	lastSQL  string
	lastArgs []interface{}
}

func (q *fakeQuerier) Query(_ context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	q.lastSQL = sql
	q.lastArgs = args

	if q.queryErr != nil {
		return nil, q.queryErr
	}

	return q.rows, nil
}

func (q *fakeQuerier) Exec(_ context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	q.lastSQL = sql
	q.lastArgs = args

	if q.execErr != nil {
		return pgconn.CommandTag{}, q.execErr
	}

	return pgconn.NewCommandTag("CREATE TABLE"), nil
}

func TestPoolExecutorQueryByFilter(t *testing.T) {
	id := uuid.New()
	ts := time.Date(2025, 8, 9, 10, 11, 12, 0, time.UTC)

	rows := &fakePgxRows{values: [][]interface{}{
		{id.String(), ts, "ERROR", "auth", "token expired", `{"user":"7"}`},
	}}
	querier := &fakeQuerier{rows: rows}
	engine := logquery.NewEngine(&PoolExecutor{pool: querier})

	records, err := engine.QueryByFilter(context.Background(), &models.LogFilter{Level: models.Some("ERROR")}, 2)
	require.NoError(t, err)

	assert.Equal(t,
		`SELECT id, timestamp, level, service, message, data FROM "logs" WHERE level = $1 ORDER BY timestamp DESC LIMIT $2`,
		querier.lastSQL)
	assert.Equal(t, []interface{}{"ERROR", 2}, querier.lastArgs)

	require.Len(t, records, 1)
	assert.Equal(t, id, records[0].ID)
	assert.Equal(t, map[string]string{"user": "7"}, records[0].Attributes)
	assert.True(t, rows.closed)
}

func TestPoolExecutorWrapsQueryError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "42P01", Message: `relation "logs" does not exist`}
	exec := &PoolExecutor{pool: &fakeQuerier{queryErr: pgErr}}

	_, err := exec.Query(context.Background(), "SELECT 1")
	require.ErrorIs(t, err, logquery.ErrStorage)

	var storageErr *logquery.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "query", storageErr.Op)

	var gotPgErr *pgconn.PgError
	require.ErrorAs(t, err, &gotPgErr)
	assert.Equal(t, "42P01", gotPgErr.Code)
}

func TestPoolExecutorRowsErrors(t *testing.T) {
	exec := &PoolExecutor{pool: &fakeQuerier{rows: &fakePgxRows{scanErr: errConnReset, err: errConnReset}}}

	rows, err := exec.Query(context.Background(), "SELECT 1")
	require.NoError(t, err)

	scanErr := rows.Scan()
	require.ErrorIs(t, scanErr, logquery.ErrStorage)
	require.ErrorIs(t, scanErr, errConnReset)

	var storageErr *logquery.StorageError
	require.ErrorAs(t, scanErr, &storageErr)
	assert.Equal(t, "scan", storageErr.Op)

	iterErr := rows.Err()
	require.ErrorIs(t, iterErr, logquery.ErrStorage)
	require.ErrorAs(t, iterErr, &storageErr)
	assert.Equal(t, "rows", storageErr.Op)
}

func TestPoolExecutorLeavesNilErrorsAlone(t *testing.T) {
	fake := &fakePgxRows{values: [][]interface{}{{"x"}}}
	exec := &PoolExecutor{pool: &fakeQuerier{rows: fake}}

	rows, err := exec.Query(context.Background(), "SELECT 1")
	require.NoError(t, err)

	require.True(t, rows.Next())

	var got string
	require.NoError(t, rows.Scan(&got))
	assert.Equal(t, "x", got)
	assert.False(t, rows.Next())
	require.NoError(t, rows.Err())

	rows.Close()
	assert.True(t, fake.closed)
}

func TestPoolExecutorExec(t *testing.T) {
	querier := &fakeQuerier{}
	exec := &PoolExecutor{pool: querier}

	require.NoError(t, EnsureSchema(context.Background(), exec, "logs", exec.Dialect()))
	assert.Contains(t, querier.lastSQL, `CREATE INDEX IF NOT EXISTS "idx_logs_timestamp"`)

	querier.execErr = errConnReset

	err := exec.Exec(context.Background(), "CREATE TABLE t (id int)")
	require.ErrorIs(t, err, logquery.ErrStorage)
	require.ErrorIs(t, err, errConnReset)

	var storageErr *logquery.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "exec", storageErr.Op)
}

func TestPoolExecutorDialectAndClose(t *testing.T) {
	closed := false
	exec := &PoolExecutor{pool: &fakeQuerier{}, close: func() { closed = true }}

	assert.Equal(t, logquery.Postgres, exec.Dialect())
	require.NoError(t, exec.Close())
	assert.True(t, closed)

	require.NoError(t, (&PoolExecutor{pool: &fakeQuerier{}}).Close())
}
