// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package events

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/propsight/internal/config"
)

func TestStartEmbeddedServer_RequiresStoreDir(t *testing.T) {
	t.Parallel()

	if _, err := StartEmbeddedServer(&config.EventsConfig{EmbeddedPort: -1}); err == nil {
		t.Fatal("expected error without a store directory")
	}
}

func TestEmbeddedNATS_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("starts a JetStream server")
	}
	t.Parallel()

	cfg := &config.EventsConfig{
		Enabled:          true,
		Backend:          config.EventsBackendNATS,
		Topic:            "recommendations",
		QueueGroup:       "propsight-test",
		PublishBuffer:    16,
		CloseTimeout:     2 * time.Second,
		Embedded:         true,
		EmbeddedPort:     -1,
		EmbeddedStoreDir: t.TempDir(),
	}

	srv, err := StartEmbeddedServer(cfg)
	if err != nil {
		t.Fatalf("StartEmbeddedServer() error = %v", err)
	}
	t.Cleanup(func() { _ = srv.Close() })

	if !srv.Running() {
		t.Fatal("server not running")
	}
	if !strings.HasPrefix(srv.ClientURL(), "nats://") {
		t.Fatalf("ClientURL() = %q", srv.ClientURL())
	}
	cfg.NATSURL = srv.ClientURL()

	ps, err := NewPubSub(cfg, NewLoggerAdapter(zerolog.Nop()))
	if err != nil {
		t.Fatalf("NewPubSub() error = %v", err)
	}
	t.Cleanup(func() { _ = ps.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := NewConsumer(ps.Subscriber, cfg.Topic, zerolog.Nop())
	go func() { _ = consumer.Serve(ctx) }()

	// The durable consumer delivers only messages published after it exists.
	time.Sleep(300 * time.Millisecond)

	emitter := NewEmitter(ps.Publisher, cfg.Topic, cfg.PublishBuffer, zerolog.Nop())
	go func() { _ = emitter.Serve(ctx) }()

	emitter.RecommendationServed(ctx, testResponse("ensemble", false, "A", "B"))

	waitFor(t, func() bool {
		stats, _ := consumer.Stats()
		return len(stats) == 1 && stats[0].Served == 1
	})

	stats, _ := consumer.Stats()
	if stats[0].Model != "ensemble" || stats[0].Results != 2 {
		t.Errorf("Stats() = %+v", stats)
	}
}
