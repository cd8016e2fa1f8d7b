// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package events

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/propsight/internal/metrics"
)

// ModelStats aggregates served events for one model selector.
type ModelStats struct {
	Model        string  `json:"model"`
	Served       int64   `json:"served"`
	Fallbacks    int64   `json:"fallbacks"`
	NewUsers     int64   `json:"new_users"`
	Results      int64   `json:"results"`
	AvgLatencyMS float64 `json:"avg_latency_ms"`

	totalLatency int64
}

// Consumer reads RecommendationServed events and aggregates statistics.
type Consumer struct {
	subscriber message.Subscriber
	topic      string
	logger     zerolog.Logger

	mu      sync.RWMutex
	byModel map[string]*ModelStats
	invalid int64
}

// NewConsumer creates a consumer for topic.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewConsumer(subscriber message.Subscriber, topic string, logger zerolog.Logger) *Consumer {
	return &Consumer{
		subscriber: subscriber,
		topic:      topic,
		logger:     logger.With().Str("component", "event_consumer").Logger(),
		byModel:    make(map[string]*ModelStats),
	}
}

// Serve consumes events until ctx is cancelled or the subscription closes.
func (c *Consumer) Serve(ctx context.Context) error {
	messages, err := c.subscriber.Subscribe(ctx, c.topic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", c.topic, err)
	}
	c.logger.Info().Str("topic", c.topic).Msg("event consumer started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			c.handle(msg)
		}
	}
}

func (c *Consumer) handle(msg *message.Message) {
	ev, err := Decode(msg.Payload)
	if err != nil {
		c.mu.Lock()
		c.invalid++
		c.mu.Unlock()
		metrics.RecordEvent(c.topic, "invalid")
		c.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("discarding malformed event")
		msg.Ack()
		return
	}

	c.record(ev)
	metrics.RecordEvent(c.topic, "consumed")
	c.logger.Debug().
		Str("request_id", ev.RequestID).
		Str("user_id", ev.UserID).
		Str("model", ev.Model).
		Int("results", len(ev.ListingIDs)).
		Bool("fallback", ev.FallbackUsed).
		Msg("recommendation served")
	msg.Ack()
}

func (c *Consumer) record(ev *RecommendationServed) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.byModel[ev.Model]
	if s == nil {
		s = &ModelStats{Model: ev.Model}
		c.byModel[ev.Model] = s
	}
	s.Served++
	if ev.FallbackUsed {
		s.Fallbacks++
	}
	if ev.IsNewUser {
		s.NewUsers++
	}
	s.Results += int64(len(ev.ListingIDs))
	s.totalLatency += ev.LatencyMS
	s.AvgLatencyMS = float64(s.totalLatency) / float64(s.Served)
}

// Stats returns per-model statistics sorted by model, and the number of
// malformed messages seen.
func (c *Consumer) Stats() ([]ModelStats, int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]ModelStats, 0, len(c.byModel))
	for _, s := range c.byModel {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Model < out[j].Model })
	return out, c.invalid
}

// String names the service in supervisor logs.
func (c *Consumer) String() string { return "event-consumer" }
