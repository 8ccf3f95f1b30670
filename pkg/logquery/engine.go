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
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/carverauto/logquery/pkg/logger"
	"github.com/carverauto/logquery/pkg/models"
)

const tracerName = "github.com/carverauto/logquery/pkg/logquery"

// Engine compiles filters into queries, runs them through an Executor and
// decodes the resulting rows. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	exec    Executor
	dialect Dialect
	table   string
	logger  logger.Logger
	tracer  trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithDialect selects the placeholder syntax. The default is Postgres.
func WithDialect(d Dialect) Option {
	return func(e *Engine) {
		e.dialect = d
	}
}

// WithTable overrides the logs table name.
func WithTable(table string) Option {
	return func(e *Engine) {
		if strings.TrimSpace(table) != "" {
			e.table = table
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.logger = log
		}
	}
}

// NewEngine creates an Engine on top of exec.
func NewEngine(exec Executor, opts ...Option) *Engine {
	e := &Engine{
		exec:    exec,
		dialect: Postgres,
		table:   models.DefaultLogsTable,
		logger:  logger.NewTestLogger(),
		tracer:  otel.Tracer(tracerName),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Dialect reports the placeholder syntax in use.
func (e *Engine) Dialect() Dialect {
	return e.dialect
}

// Insert stores record and returns the id assigned by storage.
func (e *Engine) Insert(ctx context.Context, record *models.LogRecord) (id uuid.UUID, err error) {
	ctx, span := e.tracer.Start(ctx, "logquery.insert")
	defer func() { endSpan(span, err) }()

	if record == nil || record.Timestamp.IsZero() {
		return uuid.Nil, ErrMissingTimestamp
	}

	data, err := EncodeAttributes(record.Attributes)
	if err != nil {
		return uuid.Nil, err
	}

	rows, err := e.exec.Query(ctx, insertStatement(e.table, e.dialect),
		record.Timestamp.UTC(),
		record.Level,
		record.Service,
		record.Message,
		data,
	)
	if err != nil {
		return uuid.Nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return uuid.Nil, err
		}

		return uuid.Nil, fmt.Errorf("%w: insert returned no id", ErrMalformedRow)
	}

	var raw string
	if err = rows.Scan(&raw); err != nil {
		return uuid.Nil, err
	}

	id, err = uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: id %q: %w", ErrMalformedRow, raw, err)
	}

	span.SetAttributes(attribute.String("log.id", id.String()))

	e.logger.Debug().
		Str("id", id.String()).
		Str("service", record.Service).
		Msg("Inserted log record")

	return id, nil
}

// QueryByFilter returns the records matching every set field of filter, most
// recent first, capped at limit rows when limit is positive.
func (e *Engine) QueryByFilter(ctx context.Context, filter *models.LogFilter, limit int) (records []models.LogRecord, err error) {
	ctx, span := e.tracer.Start(ctx, "logquery.query_by_filter")
	defer func() { endSpan(span, err) }()

	q, err := CompileFilter(filter)
	if err != nil {
		return nil, err
	}

	return e.run(ctx, span, Shape(q, limit))
}

// QueryByDate returns the records before ("<") or after (">") bound.
func (e *Engine) QueryByDate(ctx context.Context, bound time.Time, operator string, limit int) (records []models.LogRecord, err error) {
	ctx, span := e.tracer.Start(ctx, "logquery.query_by_date")
	defer func() { endSpan(span, err) }()

	q, err := CompileRange(bound, operator)
	if err != nil {
		return nil, err
	}

	return e.run(ctx, span, Shape(q, limit))
}

func (e *Engine) run(ctx context.Context, span trace.Span, q Query) ([]models.LogRecord, error) {
	query, args := q.Render(e.table, e.dialect)

	span.SetAttributes(
		attribute.Int("logquery.predicates", len(q.Predicates)),
		attribute.Int("logquery.limit", q.Limit),
	)

	e.logger.Debug().
		Str("query", query).
		Int("args", len(args)).
		Msg("Executing log query")

	rows, err := e.exec.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]models.LogRecord, 0)

	for rows.Next() {
		record, err := scanLogRecord(rows)
		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("logquery.rows", len(records)))

	return records, nil
}

// scanLogRecord decodes one row with columns id, timestamp, level, service,
// message, data.
func scanLogRecord(rows Rows) (models.LogRecord, error) {
	var (
		rawID     string
		timestamp time.Time
		record    models.LogRecord
		data      string
	)

	if err := rows.Scan(&rawID, &timestamp, &record.Level, &record.Service, &record.Message, &data); err != nil {
		return models.LogRecord{}, err
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return models.LogRecord{}, fmt.Errorf("%w: id %q: %w", ErrMalformedRow, rawID, err)
	}

	attrs, err := DecodeAttributes(data)
	if err != nil {
		return models.LogRecord{}, fmt.Errorf("record %s: %w", id, err)
	}

	record.ID = id
	record.Timestamp = timestamp.UTC()
	record.Attributes = attrs

	return record, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	span.End()
}
