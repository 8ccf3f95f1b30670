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

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/carverauto/logquery/pkg/logquery"
	"github.com/carverauto/logquery/pkg/models"
)

const (
	maxBodyBytes = 1 << 20

	// localDateTime is an ISO 8601 date-time without a zone offset.
	localDateTime = "2006-01-02T15:04:05.999999999"
)

var (
	errInvalidLimit = errors.New("limit must be an integer")
	errInvalidDate  = errors.New("date must be RFC 3339 or an ISO local date-time")
	errNoLogService = errors.New("log service not configured")
)

// createLog handles POST /logs.
func (s *APIServer) createLog(w http.ResponseWriter, r *http.Request) {
	if s.logService == nil {
		writeError(w, errNoLogService.Error(), http.StatusServiceUnavailable)
		return
	}

	var record models.LogRecord
	if err := decodeBody(w, r, &record); err != nil {
		writeError(w, "invalid log record: "+err.Error(), http.StatusBadRequest)
		return
	}

	id, err := s.logService.Insert(r.Context(), &record)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, models.InsertResponse{ID: id})
}

// queryLogs handles GET /logs and POST /logs/search. The optional body is a
// filter template; ?limit caps the result.
func (s *APIServer) queryLogs(w http.ResponseWriter, r *http.Request) {
	if s.logService == nil {
		writeError(w, errNoLogService.Error(), http.StatusServiceUnavailable)
		return
	}

	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var filter models.LogFilter
	if err := decodeBody(w, r, &filter); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, "invalid filter: "+err.Error(), http.StatusBadRequest)
		return
	}

	records, err := s.logService.QueryByFilter(r.Context(), &filter, limit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, records)
}

// queryLogsBefore handles GET /logs/before/{date}.
func (s *APIServer) queryLogsBefore(w http.ResponseWriter, r *http.Request) {
	s.queryLogsByDate(w, r, string(logquery.Before))
}

// queryLogsAfter handles GET /logs/after/{date}.
func (s *APIServer) queryLogsAfter(w http.ResponseWriter, r *http.Request) {
	s.queryLogsByDate(w, r, string(logquery.After))
}

func (s *APIServer) queryLogsByDate(w http.ResponseWriter, r *http.Request, operator string) {
	if s.logService == nil {
		writeError(w, errNoLogService.Error(), http.StatusServiceUnavailable)
		return
	}

	bound, err := parseDate(mux.Vars(r)["date"])
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	records, err := s.logService.QueryByDate(r.Context(), bound, operator, limit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, records)
}

// writeServiceError maps engine errors to responses. Validation failures are
// the caller's fault; everything else is reported without detail.
func (s *APIServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, logquery.ErrInvalidOperator),
		errors.Is(err, logquery.ErrMissingTimestamp),
		errors.Is(err, logquery.ErrAttributeEncoding):
		writeError(w, err.Error(), http.StatusBadRequest)
	default:
		s.logger.Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Log service request failed")

		writeError(w, "internal server error", http.StatusInternalServerError)
	}
}

// decodeBody decodes a JSON body into dst. An empty body yields io.EOF.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return io.EOF
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	return dec.Decode(dst)
}

func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errInvalidLimit, raw)
	}

	return limit, nil
}

// parseDate accepts RFC 3339 or a zone-less date-time, which is read as UTC.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}

	t, err := time.ParseInLocation(localDateTime, raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", errInvalidDate, raw)
	}

	return t, nil
}
