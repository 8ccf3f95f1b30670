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

// Package logquery translates log filter templates into parameterized queries.
package logquery

import (
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Column names of the logs table.
const (
	ColumnID        = "id"
	ColumnTimestamp = "timestamp"
	ColumnLevel     = "level"
	ColumnService   = "service"
	ColumnMessage   = "message"
	ColumnData      = "data"
)

const selectColumns = "id, timestamp, level, service, message, data"

// Comparison is the operator of a single predicate. It is always a constant
// from this package and is embedded directly in query text.
type Comparison string

const (
	Equal       Comparison = "="
	Like        Comparison = "LIKE"
	GreaterThan Comparison = ">"
	LessThan    Comparison = "<"
)

// Dialect selects the placeholder syntax of the storage engine.
type Dialect int

const (
	// Postgres renders $1, $2, ... placeholders.
	Postgres Dialect = iota
	// SQLite renders ? placeholders.
	SQLite
)

func (d Dialect) placeholder(n int) string {
	if d == SQLite {
		return "?"
	}

	return "$" + strconv.Itoa(n)
}

func (d Dialect) String() string {
	if d == SQLite {
		return "sqlite"
	}

	return "postgres"
}

// Predicate is one column comparison with its bound value.
type Predicate struct {
	Column string
	Op     Comparison
	Value  interface{}
}

// Ordering is a structural ORDER BY directive.
type Ordering struct {
	Column     string
	Descending bool
}

// Query is a compiled, AND-combined predicate list plus the structural
// ordering and row cap added by Shape. A Limit of zero means unbounded.
type Query struct {
	Predicates []Predicate
	Order      *Ordering
	Limit      int
}

// Args returns the bound parameter values in placeholder order.
func (q Query) Args() []interface{} {
	args := make([]interface{}, 0, len(q.Predicates)+1)

	for _, p := range q.Predicates {
		args = append(args, p.Value)
	}

	if q.Limit > 0 {
		args = append(args, q.Limit)
	}

	return args
}

// Render produces the SELECT statement for table and its ordered arguments.
// Values only travel through placeholders.
func (q Query) Render(table string, d Dialect) (string, []interface{}) {
	var b strings.Builder

	b.WriteString("SELECT ")
	b.WriteString(selectColumns)
	b.WriteString(" FROM ")
	b.WriteString(quoteTable(table))

	n := 0

	for i, p := range q.Predicates {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}

		n++

		b.WriteString(p.Column)
		b.WriteByte(' ')
		b.WriteString(string(p.Op))
		b.WriteByte(' ')
		b.WriteString(d.placeholder(n))

		if p.Op == Like {
			b.WriteString(` ESCAPE '\'`)
		}
	}

	if q.Order != nil {
		b.WriteString(" ORDER BY ")
		b.WriteString(q.Order.Column)

		if q.Order.Descending {
			b.WriteString(" DESC")
		} else {
			b.WriteString(" ASC")
		}
	}

	if q.Limit > 0 {
		n++

		b.WriteString(" LIMIT ")
		b.WriteString(d.placeholder(n))
	}

	return b.String(), q.Args()
}

func quoteTable(table string) string {
	if strings.TrimSpace(table) == "" {
		table = "logs"
	}

	return pgx.Identifier{table}.Sanitize()
}

func insertStatement(table string, d Dialect) string {
	return "INSERT INTO " + quoteTable(table) +
		" (timestamp, level, service, message, data) VALUES (" +
		d.placeholder(1) + ", " + d.placeholder(2) + ", " + d.placeholder(3) + ", " +
		d.placeholder(4) + ", " + d.placeholder(5) + ") RETURNING id"
}
