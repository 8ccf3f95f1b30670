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

// Package api provides the HTTP API server for logquery
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	lqhttp "github.com/carverauto/logquery/pkg/http"
	"github.com/carverauto/logquery/pkg/logger"
	"github.com/carverauto/logquery/pkg/models"
)

const (
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 60 * time.Second
)

// APIServer serves the log ingestion and query endpoints.
type APIServer struct {
	router     *mux.Router
	corsConfig models.CORSConfig
	logService LogService
	logger     logger.Logger
	apiKey     string

	mu     sync.Mutex
	srv    *http.Server
	closed bool
}

// NewAPIServer creates a new API server instance with the given configuration
func NewAPIServer(config models.CORSConfig, options ...func(server *APIServer)) *APIServer {
	s := &APIServer{
		router:     mux.NewRouter(),
		corsConfig: config,
		logger:     logger.NewTestLogger(),
	}

	for _, o := range options {
		o(s)
	}

	s.setupRoutes()

	return s
}

// WithLogService sets the store used by the log endpoints.
func WithLogService(svc LogService) func(server *APIServer) {
	return func(server *APIServer) {
		server.logService = svc
	}
}

// WithLogger sets the server logger.
func WithLogger(log logger.Logger) func(server *APIServer) {
	return func(server *APIServer) {
		if log != nil {
			server.logger = log
		}
	}
}

// WithAPIKey requires the key on every route except /health.
func WithAPIKey(key string) func(server *APIServer) {
	return func(server *APIServer) {
		server.apiKey = key
	}
}

// setupRoutes configures the HTTP routes for the API server.
func (s *APIServer) setupRoutes() {
	s.router.Use(func(next http.Handler) http.Handler {
		return lqhttp.CommonMiddleware(next, s.corsConfig, s.logger)
	})

	s.router.Use(lqhttp.APIKeyMiddlewareWithOptions(lqhttp.APIKeyOptions{
		APIKey:          s.apiKey,
		ExcludePaths:    []string{"/health"},
		LogUnauthorized: true,
		Logger:          s.logger,
	}))

	s.router.HandleFunc("/health", s.health).Methods(http.MethodGet)

	s.router.HandleFunc("/logs", s.createLog).Methods(http.MethodPost, http.MethodOptions)
	s.router.HandleFunc("/logs", s.queryLogs).Methods(http.MethodGet)
	s.router.HandleFunc("/logs/search", s.queryLogs).Methods(http.MethodPost, http.MethodOptions)
	s.router.HandleFunc("/logs/before/{date}", s.queryLogsBefore).Methods(http.MethodGet, http.MethodOptions)
	s.router.HandleFunc("/logs/after/{date}", s.queryLogsAfter).Methods(http.MethodGet, http.MethodOptions)
}

// Handler exposes the routed handler, mainly for tests and embedding.
func (s *APIServer) Handler() http.Handler {
	return s.router
}

// Start starts the API server on the specified address. It blocks until the
// server stops and returns http.ErrServerClosed after Shutdown, including a
// Shutdown that ran before Start.
func (s *APIServer) Start(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()

		return http.ErrServerClosed
	}

	s.srv = srv
	s.mu.Unlock()

	s.logger.Info().Str("addr", addr).Msg("Starting HTTP API")

	return srv.ListenAndServe()
}

// Shutdown gracefully stops the server. Once called, Start never serves.
func (s *APIServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	srv := s.srv
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	return srv.Shutdown(ctx)
}

func (*APIServer) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{Status: "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, models.ErrorResponse{
		Message: message,
		Status:  statusCode,
	})
}
