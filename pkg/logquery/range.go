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
	"time"
)

// Operator is a validated timestamp range operator.
type Operator string

const (
	Before Operator = "<"
	After  Operator = ">"
)

// ParseOperator accepts only "<" and ">", ignoring surrounding whitespace.
func ParseOperator(raw string) (Operator, error) {
	switch Operator(strings.TrimSpace(raw)) {
	case Before:
		return Before, nil
	case After:
		return After, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidOperator, raw)
	}
}

func (o Operator) comparison() Comparison {
	if o == Before {
		return LessThan
	}

	return GreaterThan
}

// CompileRange builds the single predicate `timestamp <op> bound`. The operator
// reaches query text only through the Before/After constants.
func CompileRange(bound time.Time, operator string) (Query, error) {
	op, err := ParseOperator(operator)
	if err != nil {
		return Query{}, err
	}

	return Query{
		Predicates: []Predicate{{
			Column: ColumnTimestamp,
			Op:     op.comparison(),
			Value:  bound.UTC(),
		}},
	}, nil
}
