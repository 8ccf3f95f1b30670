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
	"fmt"
	"strings"

	"github.com/carverauto/logquery/pkg/models"
)

// fieldRule contributes at most one predicate for a single filter field.
type fieldRule struct {
	name  string
	build func(f *models.LogFilter) (*Predicate, error)
}

// filterFields is the fixed field order of compiled predicates.
var filterFields = []fieldRule{
	{name: ColumnID, build: func(f *models.LogFilter) (*Predicate, error) {
		id, ok := f.ID.Get()
		if !ok {
			return nil, nil
		}

		return &Predicate{Column: ColumnID, Op: Equal, Value: id.String()}, nil
	}},
	{name: ColumnTimestamp, build: func(f *models.LogFilter) (*Predicate, error) {
		ts, ok := f.Timestamp.Get()
		if !ok {
			return nil, nil
		}

		return &Predicate{Column: ColumnTimestamp, Op: Equal, Value: ts.UTC()}, nil
	}},
	{name: ColumnLevel, build: func(f *models.LogFilter) (*Predicate, error) {
		return equalString(ColumnLevel, f.Level), nil
	}},
	{name: ColumnService, build: func(f *models.LogFilter) (*Predicate, error) {
		return equalString(ColumnService, f.Service), nil
	}},
	{name: ColumnMessage, build: func(f *models.LogFilter) (*Predicate, error) {
		msg, ok := f.Message.Get()
		if !ok {
			return nil, nil
		}

		return &Predicate{Column: ColumnMessage, Op: Like, Value: containsPattern(msg)}, nil
	}},
	{name: "attributes", build: func(f *models.LogFilter) (*Predicate, error) {
		attrs, ok := f.Attributes.Get()
		if !ok {
			return nil, nil
		}

		encoded, err := EncodeAttributes(attrs)
		if err != nil {
			return nil, err
		}

		return &Predicate{Column: ColumnData, Op: Equal, Value: encoded}, nil
	}},
}

func equalString(column string, v models.Optional[string]) *Predicate {
	s, ok := v.Get()
	if !ok {
		return nil
	}

	return &Predicate{Column: column, Op: Equal, Value: s}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern wraps s for a literal substring match. Wildcards inside s
// are escaped so they match themselves.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// CompileFilter turns the set fields of filter into AND-combined predicates in
// a stable field order. A nil filter compiles to an empty query. Nothing is
// returned on error, so a partial predicate set never reaches storage.
func CompileFilter(filter *models.LogFilter) (Query, error) {
	if filter == nil {
		return Query{}, nil
	}

	var predicates []Predicate

	for _, field := range filterFields {
		p, err := field.build(filter)
		if err != nil {
			return Query{}, fmt.Errorf("filter %s: %w", field.name, err)
		}

		if p != nil {
			predicates = append(predicates, *p)
		}
	}

	return Query{Predicates: predicates}, nil
}
