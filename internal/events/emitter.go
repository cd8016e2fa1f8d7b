// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package events

import (
	"context"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/propsight/internal/logging"
	"github.com/tomtom215/propsight/internal/metrics"
	"github.com/tomtom215/propsight/internal/recommend"
)

// Emitter is a non-blocking recommend.EventSink backed by a Watermill
// publisher.
type Emitter struct {
	publisher message.Publisher
	topic     string
	queue     chan *message.Message
	logger    zerolog.Logger

	published atomic.Int64
	dropped   atomic.Int64
	failed    atomic.Int64
}

var _ recommend.EventSink = (*Emitter)(nil)

// NewEmitter creates an emitter with a queue of the given size.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEmitter(publisher message.Publisher, topic string, buffer int, logger zerolog.Logger) *Emitter {
	if buffer <= 0 {
		buffer = 256
	}
	return &Emitter{
		publisher: publisher,
		topic:     topic,
		queue:     make(chan *message.Message, buffer),
		logger:    logger.With().Str("component", "event_emitter").Logger(),
	}
}

// RecommendationServed queues the event for resp. It never blocks; when the
// queue is full the event is dropped.
func (e *Emitter) RecommendationServed(ctx context.Context, resp *recommend.Response) {
	if resp == nil {
		return
	}
	ev := FromResponse(resp)
	data, err := ev.Encode()
	if err != nil {
		e.logger.Warn().Err(err).Msg("failed to encode event")
		return
	}

	msg := message.NewMessage(ev.EventID, data)
	msg.Metadata.Set("type", ev.Type)
	msg.Metadata.Set("model", ev.Model)
	if id := logging.RequestIDFromContext(ctx); id != "" {
		msg.Metadata.Set("request_id", id)
	}

	select {
	case e.queue <- msg:
	default:
		e.dropped.Add(1)
		metrics.RecordEvent(e.topic, "dropped")
	}
}

// Serve publishes queued events until ctx is cancelled, then publishes
// whatever is still queued.
func (e *Emitter) Serve(ctx context.Context) error {
	e.logger.Info().Str("topic", e.topic).Msg("event emitter started")
	for {
		select {
		case <-ctx.Done():
			e.drain()
			return ctx.Err()
		case msg := <-e.queue:
			e.publish(msg)
		}
	}
}

func (e *Emitter) drain() {
	for {
		select {
		case msg := <-e.queue:
			e.publish(msg)
		default:
			return
		}
	}
}

func (e *Emitter) publish(msg *message.Message) {
	if err := e.publisher.Publish(e.topic, msg); err != nil {
		e.failed.Add(1)
		metrics.RecordEvent(e.topic, "failed")
		e.logger.Warn().Err(err).Str("event_id", msg.UUID).Msg("failed to publish event")
		return
	}
	e.published.Add(1)
	metrics.RecordEvent(e.topic, "published")
}

// String names the service in supervisor logs.
func (e *Emitter) String() string { return "event-emitter" }

// EmitterStats is a snapshot of emitter counters.
type EmitterStats struct {
	Published int64 `json:"published"`
	Dropped   int64 `json:"dropped"`
	Failed    int64 `json:"failed"`
	Queued    int   `json:"queued"`
}

// Stats returns the emitter counters.
func (e *Emitter) Stats() EmitterStats {
	return EmitterStats{
		Published: e.published.Load(),
		Dropped:   e.dropped.Load(),
		Failed:    e.failed.Load(),
		Queued:    len(e.queue),
	}
}
