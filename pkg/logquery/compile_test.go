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

package logquery

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/logquery/pkg/models"
)

func TestCompileFilterMessageOnly(t *testing.T) {
	q, err := CompileFilter(&models.LogFilter{Message: models.Some("timeout")})
	require.NoError(t, err)

	require.Len(t, q.Predicates, 1)
	assert.Equal(t, Predicate{Column: ColumnMessage, Op: Like, Value: "%timeout%"}, q.Predicates[0])
}

func TestCompileFilterEscapesWildcards(t *testing.T) {
	q, err := CompileFilter(&models.LogFilter{Message: models.Some(`50%_done\`)})
	require.NoError(t, err)

	require.Len(t, q.Predicates, 1)
	assert.Equal(t, `%50\%\_done\\%`, q.Predicates[0].Value)
}

func TestCompileFilterStableOrder(t *testing.T) {
	filter := &models.LogFilter{
		Service: models.Some("auth"),
		Level:   models.Some("ERROR"),
	}

	first, err := CompileFilter(filter)
	require.NoError(t, err)

	second, err := CompileFilter(filter)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []Predicate{
		{Column: ColumnLevel, Op: Equal, Value: "ERROR"},
		{Column: ColumnService, Op: Equal, Value: "auth"},
	}, first.Predicates)
}

func TestCompileFilterAllFields(t *testing.T) {
	id := uuid.MustParse("5b0f1c1e-8f57-4d7a-9f5e-3a0c6f2d9b11")
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))

	q, err := CompileFilter(&models.LogFilter{
		ID:         models.Some(id),
		Timestamp:  models.Some(ts),
		Level:      models.Some("WARN"),
		Service:    models.Some("billing"),
		Message:    models.Some("retry"),
		Attributes: models.Some(map[string]string{"b": "2", "a": "1"}),
	})
	require.NoError(t, err)

	assert.Equal(t, []Predicate{
		{Column: ColumnID, Op: Equal, Value: id.String()},
		{Column: ColumnTimestamp, Op: Equal, Value: ts.UTC()},
		{Column: ColumnLevel, Op: Equal, Value: "WARN"},
		{Column: ColumnService, Op: Equal, Value: "billing"},
		{Column: ColumnMessage, Op: Like, Value: "%retry%"},
		{Column: ColumnData, Op: Equal, Value: `{"a":"1","b":"2"}`},
	}, q.Predicates)
	assert.Nil(t, q.Order)
	assert.Zero(t, q.Limit)
}

func TestCompileFilterEmptyAndNil(t *testing.T) {
	q, err := CompileFilter(&models.LogFilter{})
	require.NoError(t, err)
	assert.Empty(t, q.Predicates)

	q, err = CompileFilter(nil)
	require.NoError(t, err)
	assert.Empty(t, q.Predicates)
}

func TestCompileFilterSetEmptyValues(t *testing.T) {
	q, err := CompileFilter(&models.LogFilter{
		Level:      models.Some(""),
		Attributes: models.Some(map[string]string{}),
	})
	require.NoError(t, err)

	assert.Equal(t, []Predicate{
		{Column: ColumnLevel, Op: Equal, Value: ""},
		{Column: ColumnData, Op: Equal, Value: "{}"},
	}, q.Predicates)
}

func TestCompileFilterAttributeEncodingError(t *testing.T) {
	q, err := CompileFilter(&models.LogFilter{
		Level:      models.Some("INFO"),
		Attributes: models.Some(map[string]string{"k": "\xff"}),
	})
	require.ErrorIs(t, err, ErrAttributeEncoding)
	assert.Empty(t, q.Predicates)
}

func TestParseOperator(t *testing.T) {
	op, err := ParseOperator(" < ")
	require.NoError(t, err)
	assert.Equal(t, Before, op)

	op, err = ParseOperator(">")
	require.NoError(t, err)
	assert.Equal(t, After, op)

	for _, raw := range []string{"<=", ">=", "=", "", "after", "<>", "< 1; DROP TABLE logs"} {
		_, err := ParseOperator(raw)
		require.ErrorIs(t, err, ErrInvalidOperator, "operator %q", raw)
	}
}

func TestCompileRange(t *testing.T) {
	bound := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	q, err := CompileRange(bound, ">")
	require.NoError(t, err)
	assert.Equal(t, []Predicate{{Column: ColumnTimestamp, Op: GreaterThan, Value: bound}}, q.Predicates)

	q, err = CompileRange(bound, "<")
	require.NoError(t, err)
	assert.Equal(t, LessThan, q.Predicates[0].Op)

	_, err = CompileRange(bound, "<=")
	require.ErrorIs(t, err, ErrInvalidOperator)
}

func TestShape(t *testing.T) {
	q := Shape(Query{}, 5)
	assert.Empty(t, q.Predicates)
	assert.Equal(t, &Ordering{Column: ColumnTimestamp, Descending: true}, q.Order)
	assert.Equal(t, 5, q.Limit)

	for _, limit := range []int{0, -1} {
		q = Shape(Query{Limit: 9}, limit)
		assert.Zero(t, q.Limit)
	}

	custom := &Ordering{Column: ColumnLevel}
	q = Shape(Query{Order: custom}, 0)
	assert.Same(t, custom, q.Order)
}

func TestRenderPostgres(t *testing.T) {
	q, err := CompileFilter(&models.LogFilter{
		Service: models.Some("auth"),
		Level:   models.Some("ERROR"),
		Message: models.Some("denied"),
	})
	require.NoError(t, err)

	query, args := Shape(q, 10).Render("logs", Postgres)

	assert.Equal(t,
		`SELECT id, timestamp, level, service, message, data FROM "logs" `+
			`WHERE level = $1 AND service = $2 AND message LIKE $3 ESCAPE '\' `+
			`ORDER BY timestamp DESC LIMIT $4`,
		query)
	assert.Equal(t, []interface{}{"ERROR", "auth", "%denied%", 10}, args)
}

func TestRenderSQLiteUnbounded(t *testing.T) {
	bound := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	q, err := CompileRange(bound, ">")
	require.NoError(t, err)

	query, args := Shape(q, 0).Render("logs", SQLite)

	assert.Equal(t,
		`SELECT id, timestamp, level, service, message, data FROM "logs" WHERE timestamp > ? ORDER BY timestamp DESC`,
		query)
	assert.Equal(t, []interface{}{bound}, args)
}

func TestRenderEmptyFilterWithLimit(t *testing.T) {
	query, args := Shape(Query{}, 5).Render("", Postgres)

	assert.Equal(t, `SELECT id, timestamp, level, service, message, data FROM "logs" ORDER BY timestamp DESC LIMIT $1`, query)
	assert.Equal(t, []interface{}{5}, args)
}

func TestRenderQuotesTableName(t *testing.T) {
	query, _ := Query{}.Render(`app"logs`, Postgres)
	assert.Equal(t, `SELECT id, timestamp, level, service, message, data FROM "app""logs"`, query)
}

func TestInsertStatement(t *testing.T) {
	assert.Equal(t,
		`INSERT INTO "logs" (timestamp, level, service, message, data) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		insertStatement("logs", Postgres))
	assert.Equal(t,
		`INSERT INTO "logs" (timestamp, level, service, message, data) VALUES (?, ?, ?, ?, ?) RETURNING id`,
		insertStatement("logs", SQLite))
}
