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

package models

import (
	"time"

	"github.com/google/uuid"
)

// LogRecord is a single structured log entry as stored in the logs table.
type LogRecord struct {
	// ID is assigned by storage on insert and never changes afterwards.
	ID         uuid.UUID         `json:"id"`
	Timestamp  time.Time         `json:"timestamp"`
	Level      string            `json:"level"`
	Service    string            `json:"service"`
	Message    string            `json:"message"`
	Attributes map[string]string `json:"attributes"`
}

// LogFilter is a record-shaped filter template. Fields left unset place no
// constraint on the matching records.
type LogFilter struct {
	ID         Optional[uuid.UUID]         `json:"id,omitzero"`
	Timestamp  Optional[time.Time]         `json:"timestamp,omitzero"`
	Level      Optional[string]            `json:"level,omitzero"`
	Service    Optional[string]            `json:"service,omitzero"`
	Message    Optional[string]            `json:"message,omitzero"`
	Attributes Optional[map[string]string] `json:"attributes,omitzero"`
}

// InsertResponse is returned by the API after a record has been stored.
type InsertResponse struct {
	ID uuid.UUID `json:"id"`
}
