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

// DefaultOrdering is most recent first.
func DefaultOrdering() *Ordering {
	return &Ordering{Column: ColumnTimestamp, Descending: true}
}

// Shape adds the default ordering when q has none and caps the result at
// limit rows. A limit of zero or less leaves the query unbounded.
func Shape(q Query, limit int) Query {
	if q.Order == nil {
		q.Order = DefaultOrdering()
	}

	if limit > 0 {
		q.Limit = limit
	} else {
		q.Limit = 0
	}

	return q
}
