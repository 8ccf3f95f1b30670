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
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/logquery/pkg/logger"
	"github.com/carverauto/logquery/pkg/models"
)

const (
	defaultMaxPullMessages = 50
	defaultPullExpiry      = 30 * time.Second
	defaultMaxDeliver      = 3
	defaultAckWait         = 30 * time.Second
	defaultMaxAckPending   = 1000
	fetchRetryDelay        = time.Second
)

// message is the part of jetstream.Msg the consumer relies on.
type message interface {
	Data() []byte
	Subject() string
	Metadata() (*jetstream.MsgMetadata, error)
	Ack() error
	Nak() error
	Term() error
}

// Consumer wraps a JetStream pull consumer.
type Consumer struct {
	consumer     jetstream.Consumer
	streamName   string
	consumerName string
	maxDeliver   int
	logger       logger.Logger
}

// NewConsumer creates or retrieves a durable pull consumer for cfg.
func NewConsumer(ctx context.Context, js jetstream.JetStream, cfg *models.IngestConfig, log logger.Logger) (*Consumer, error) {
	maxDeliver := cfg.MaxDeliver
	if maxDeliver <= 0 {
		maxDeliver = defaultMaxDeliver
	}

	log.Info().
		Str("stream", cfg.StreamName).
		Str("consumer", cfg.ConsumerName).
		Str("subject", cfg.Subject).
		Msg("Creating/getting pull consumer")

	consumer, err := js.Consumer(ctx, cfg.StreamName, cfg.ConsumerName)
	if err != nil {
		consumer, err = js.CreateConsumer(ctx, cfg.StreamName, jetstream.ConsumerConfig{
			Durable:       cfg.ConsumerName,
			AckPolicy:     jetstream.AckExplicitPolicy,
			AckWait:       defaultAckWait,
			MaxDeliver:    maxDeliver,
			MaxAckPending: defaultMaxAckPending,
			FilterSubject: cfg.Subject,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create consumer: %w", err)
		}
	}

	return &Consumer{
		consumer:     consumer,
		streamName:   cfg.StreamName,
		consumerName: cfg.ConsumerName,
		maxDeliver:   maxDeliver,
		logger:       log,
	}, nil
}

// ProcessMessages fetches and processes messages until ctx is cancelled.
func (c *Consumer) ProcessMessages(ctx context.Context, processor *Processor) {
	c.logger.Info().
		Str("stream", c.streamName).
		Str("consumer", c.consumerName).
		Msg("Starting pull consumer")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("Stopping message processing due to context cancellation")
			return
		default:
		}

		msgs, err := c.consumer.Fetch(defaultMaxPullMessages, jetstream.FetchMaxWait(defaultPullExpiry))
		if err != nil {
			c.logger.Warn().Err(err).Msg("Failed to fetch messages")

			select {
			case <-ctx.Done():
				return
			case <-time.After(fetchRetryDelay):
			}

			continue
		}

		for msg := range msgs.Messages() {
			c.handleMessage(ctx, msg, processor)
		}

		if fetchErr := msgs.Error(); fetchErr != nil && !errors.Is(fetchErr, context.Canceled) {
			c.logger.Debug().Err(fetchErr).Msg("Fetch ended with error")
		}
	}
}

// handleMessage acknowledges msg according to the processing outcome.
// Malformed payloads are terminated; storage failures are retried until the
// delivery limit and then dropped.
func (c *Consumer) handleMessage(ctx context.Context, msg message, processor *Processor) {
	stored, err := processor.Process(ctx, msg.Subject(), msg.Data())

	switch {
	case err == nil:
		c.logger.Debug().Str("subject", msg.Subject()).Int("records", stored).Msg("Message processed")

		_ = msg.Ack()
	case errors.Is(err, ErrMalformedPayload):
		c.logger.Warn().Err(err).Str("subject", msg.Subject()).Msg("Dropping malformed message")

		_ = msg.Term()
	default:
		delivered := c.deliveries(msg)
		if delivered >= uint64(c.maxDeliver) {
			c.logger.Error().
				Err(err).
				Str("subject", msg.Subject()).
				Uint64("deliveries", delivered).
				Int("stored", stored).
				Msg("Giving up on message after repeated storage failures")

			_ = msg.Ack()

			return
		}

		c.logger.Warn().Err(err).Str("subject", msg.Subject()).Uint64("deliveries", delivered).Msg("Storage failed, requesting redelivery")

		_ = msg.Nak()
	}
}

func (*Consumer) deliveries(msg message) uint64 {
	metadata, err := msg.Metadata()
	if err != nil || metadata == nil {
		return 1
	}

	return metadata.NumDelivered
}
