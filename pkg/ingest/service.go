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

// Package ingest stores log records published to a NATS JetStream stream.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/logquery/pkg/logger"
	"github.com/carverauto/logquery/pkg/models"
	"github.com/carverauto/logquery/pkg/natsutil"
)

const clientName = "logquery-ingest"

// Service runs the JetStream ingest consumer.
type Service struct {
	cfg       *models.IngestConfig
	processor *Processor
	logger    logger.Logger

	nc     *nats.Conn
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewService validates cfg and prepares a Service writing through inserter.
func NewService(cfg *models.IngestConfig, inserter Inserter, log logger.Logger) (*Service, error) {
	if cfg == nil {
		return nil, errIngestConfigNil
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if log == nil {
		log = logger.NewTestLogger()
	}

	proc, err := NewProcessor(inserter, log)
	if err != nil {
		return nil, err
	}

	return &Service{cfg: cfg, processor: proc, logger: log}, nil
}

// Start connects to NATS and begins processing messages in the background.
func (s *Service) Start(ctx context.Context) error {
	opts, err := natsutil.ConnectOptions(clientName, s.cfg.Security)
	if err != nil {
		return err
	}

	nc, err := nats.Connect(s.cfg.NATSURL, opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	var js jetstream.JetStream

	if s.cfg.Domain != "" {
		js, err = jetstream.NewWithDomain(nc, s.cfg.Domain)
	} else {
		js, err = jetstream.New(nc)
	}

	if err != nil {
		nc.Close()
		return err
	}

	if err := ensureStream(ctx, js, s.cfg); err != nil {
		nc.Close()
		return err
	}

	consumer, err := NewConsumer(ctx, js, s.cfg, s.logger)
	if err != nil {
		nc.Close()
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)

	s.nc = nc
	s.cancel = cancel

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		consumer.ProcessMessages(runCtx, s.processor)
	}()

	s.logger.Info().
		Str("stream_name", s.cfg.StreamName).
		Str("consumer_name", s.cfg.ConsumerName).
		Msg("Log ingest started")

	return nil
}

func ensureStream(ctx context.Context, js jetstream.JetStream, cfg *models.IngestConfig) error {
	stream, err := js.Stream(ctx, cfg.StreamName)
	if errors.Is(err, jetstream.ErrStreamNotFound) {
		stream, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
			Name:     cfg.StreamName,
			Subjects: []string{cfg.Subject},
		})
		if err != nil {
			return fmt.Errorf("failed to create stream %s: %w", cfg.StreamName, err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to get stream %s: %w", cfg.StreamName, err)
	}

	if _, err := stream.Info(ctx); err != nil {
		return fmt.Errorf("failed to get stream info: %w", err)
	}

	return nil
}

// Stop cancels the consumer loop and closes the NATS connection.
func (s *Service) Stop(_ context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	if s.nc != nil {
		s.nc.Close()
	}

	s.wg.Wait()

	s.logger.Info().Msg("Log ingest stopped")

	return nil
}
