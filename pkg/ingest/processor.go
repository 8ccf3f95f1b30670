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

package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carverauto/logquery/pkg/logger"
	"github.com/carverauto/logquery/pkg/logquery"
	"github.com/carverauto/logquery/pkg/models"
)

// Inserter stores a single log record. *logquery.Engine implements it.
type Inserter interface {
	Insert(ctx context.Context, record *models.LogRecord) (uuid.UUID, error)
}

// Processor turns message payloads into stored log records.
type Processor struct {
	inserter Inserter
	logger   logger.Logger
	now      func() time.Time
}

// NewProcessor creates a Processor writing through inserter.
func NewProcessor(inserter Inserter, log logger.Logger) (*Processor, error) {
	if inserter == nil {
		return nil, errInserterNil
	}

	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Processor{inserter: inserter, logger: log, now: time.Now}, nil
}

// Process stores every record in data and returns how many were inserted.
// Records without a timestamp are stamped with the receipt time.
func (p *Processor) Process(ctx context.Context, subject string, data []byte) (int, error) {
	records, err := decodeRecords(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	receivedAt := p.now().UTC()

	for i := range records {
		if records[i].Timestamp.IsZero() {
			records[i].Timestamp = receivedAt
		}

		id, err := p.inserter.Insert(ctx, &records[i])
		if err != nil {
			if errors.Is(err, logquery.ErrAttributeEncoding) || errors.Is(err, logquery.ErrMissingTimestamp) {
				return i, fmt.Errorf("%w: record %d: %w", ErrMalformedPayload, i, err)
			}

			return i, err
		}

		p.logger.Debug().
			Str("subject", subject).
			Str("id", id.String()).
			Msg("Stored log record")
	}

	return len(records), nil
}

var errUnexpectedPayload = errors.New("payload must be a JSON object or array")

// decodeRecords accepts a LogRecord object, an array of them, or either one
// wrapped as the data of a CloudEvent.
func decodeRecords(data []byte) ([]models.LogRecord, error) {
	payload := bytes.TrimSpace(data)

	if inner, ok := parseCloudEvent(payload); ok {
		payload = bytes.TrimSpace(inner)
	}

	if len(payload) == 0 {
		return nil, errUnexpectedPayload
	}

	switch payload[0] {
	case '[':
		var records []models.LogRecord
		if err := json.Unmarshal(payload, &records); err != nil {
			return nil, err
		}

		return records, nil
	case '{':
		var record models.LogRecord
		if err := json.Unmarshal(payload, &record); err != nil {
			return nil, err
		}

		return []models.LogRecord{record}, nil
	default:
		return nil, errUnexpectedPayload
	}
}

// parseCloudEvent extracts the data member of a CloudEvent envelope.
func parseCloudEvent(b []byte) (json.RawMessage, bool) {
	if len(b) == 0 || b[0] != '{' {
		return nil, false
	}

	var ce struct {
		SpecVersion string          `json:"specversion"`
		Data        json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(b, &ce); err != nil {
		return nil, false
	}

	if ce.SpecVersion == "" || len(ce.Data) == 0 {
		return nil, false
	}

	return ce.Data, true
}
