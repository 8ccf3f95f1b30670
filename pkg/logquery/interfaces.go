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
)

//go:generate mockgen -destination=mock_logquery.go -package=logquery github.com/carverauto/logquery/pkg/logquery Executor,Rows

// Executor runs a parameterized query against the storage collaborator.
// Failures should be reported as *StorageError.
type Executor interface {
	Query(ctx context.Context, query string, args ...interface{}) (Rows, error)
}

// Rows is a forward-only cursor over query results.
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
	Close()
}
