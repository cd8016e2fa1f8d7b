// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

/*
Package events publishes and consumes recommendation events over Watermill.

Every served response becomes a RecommendationServed event. The Emitter
implements recommend.EventSink: it encodes the event and queues it without
blocking the request, dropping events when the queue is full. A supervised
goroutine (Emitter.Serve) drains the queue into the Watermill publisher.

Backends:

  - gochannel: in-process pub/sub, for single-instance deployments and tests
  - nats: NATS JetStream via watermill-nats, streams auto-provisioned

The Consumer subscribes to the same topic and aggregates per-model serving
statistics, exposed by the API. Malformed messages are acknowledged and
counted as invalid so that they are not redelivered forever.

Metrics: propsight_events_total{topic, status} with status one of
published, failed, dropped, consumed, invalid.
*/
package events
