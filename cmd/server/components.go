// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/tomtom215/propsight/internal/auth"
	"github.com/tomtom215/propsight/internal/cache"
	"github.com/tomtom215/propsight/internal/config"
	"github.com/tomtom215/propsight/internal/database"
	"github.com/tomtom215/propsight/internal/events"
	"github.com/tomtom215/propsight/internal/recommend"
	"github.com/tomtom215/propsight/internal/recommend/scorers"
	"github.com/tomtom215/propsight/internal/recommend/storage"
)

// components holds everything built at startup. closers run in reverse
// order on shutdown.
type components struct {
	db       *database.DB
	matrix   *recommend.MatrixCache
	engine   *recommend.Engine
	cache    cache.Cache
	pubsub   *events.PubSub
	emitter  *events.Emitter
	consumer *events.Consumer
	auth     *auth.Middleware
	closers  []namedCloser
}

type namedCloser struct {
	name string
	c    io.Closer
}

func (c *components) onClose(name string, closer io.Closer) {
	c.closers = append(c.closers, namedCloser{name: name, c: closer})
}

// Close releases resources in reverse creation order.
func (c *components) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		nc := c.closers[i]
		if err := nc.c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", nc.name, err))
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// buildComponents wires storage, the engine, the cache and events. On error
// everything opened so far is closed.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func buildComponents(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (comp *components, err error) {
	comp = &components{}
	defer func() {
		if err != nil {
			if cerr := comp.Close(); cerr != nil {
				logger.Error().Err(cerr).Msg("cleanup after failed startup")
			}
			comp = nil
		}
	}()

	if err = comp.openDatabase(ctx, cfg, logger); err != nil {
		return comp, err
	}
	if err = comp.buildEngine(ctx, cfg, logger); err != nil {
		return comp, err
	}

	comp.cache, err = cache.New(ctx, &cfg.Cache, logger)
	if err != nil {
		return comp, fmt.Errorf("response cache: %w", err)
	}
	comp.onClose("response cache", comp.cache)

	if err = comp.buildAuth(cfg, logger); err != nil {
		return comp, err
	}
	return comp, nil
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func (c *components) openDatabase(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	c.db = db
	c.onClose("database", db)

	if cfg.Database.SeedFile != "" {
		seeded, err := db.SeedFromFile(ctx, cfg.Database.SeedFile)
		if err != nil {
			return fmt.Errorf("seed database: %w", err)
		}
		logger.Info().
			Str("file", cfg.Database.SeedFile).
			Bool("seeded", seeded).
			Msg("seed file processed")
	}

	count, err := db.ListingCount(ctx)
	if err != nil {
		return fmt.Errorf("count listings: %w", err)
	}
	logger.Info().
		Str("path", cfg.Database.Path).
		Int("listings", count).
		Msg("database ready")
	return nil
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func (c *components) buildEngine(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	engineCfg, err := cfg.Recommend.EngineConfig()
	if err != nil {
		return fmt.Errorf("engine config: %w", err)
	}

	var snapshots recommend.MatrixSnapshotStore
	if cfg.Recommend.SnapshotPath != "" {
		store, err := storage.Open(cfg.Recommend.SnapshotPath, cfg.Recommend.SnapshotKeep)
		if err != nil {
			return fmt.Errorf("snapshot store: %w", err)
		}
		c.onClose("snapshot store", store)
		snapshots = store
	}

	c.matrix = recommend.NewMatrixCache(c.db, snapshots, engineCfg.BookingWeight, logger)
	if found, err := c.matrix.LoadSnapshot(ctx); err != nil {
		// A corrupt snapshot is replaced by the first refresh.
		logger.Warn().Err(err).Msg("ignoring matrix snapshot")
	} else if !found {
		logger.Info().Msg("no matrix snapshot, building on first refresh")
	}

	features := recommend.NewFeatureExtractor(nil)
	profiles := recommend.NewProfileBuilder(c.db)
	insights := recommend.NewInsightsBuilder(features)

	opts := []recommend.Option{recommend.WithMatrixCache(c.matrix)}
	if cfg.Events.Enabled {
		if err := c.buildEvents(cfg, logger); err != nil {
			return err
		}
		opts = append(opts, recommend.WithEventSink(c.emitter))
	}

	c.engine, err = recommend.NewEngine(engineCfg, profiles, insights, logger, opts...)
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	for _, s := range scorers.Default(engineCfg, features, c.matrix, logger) {
		c.engine.RegisterScorer(s)
	}

	logger.Info().
		Str("tier", string(engineCfg.Tier)).
		Strs("models", c.engine.Scorers()).
		Msg("recommendation engine ready")
	return nil
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func (c *components) buildEvents(cfg *config.Config, logger zerolog.Logger) error {
	eventsCfg := cfg.Events
	if eventsCfg.Backend == config.EventsBackendNATS && eventsCfg.Embedded {
		srv, err := events.StartEmbeddedServer(&eventsCfg)
		if err != nil {
			return fmt.Errorf("embedded NATS: %w", err)
		}
		c.onClose("embedded NATS", srv)
		eventsCfg.NATSURL = srv.ClientURL()
		logger.Info().
			Str("url", eventsCfg.NATSURL).
			Str("store_dir", eventsCfg.EmbeddedStoreDir).
			Msg("embedded NATS server started")
	}

	ps, err := events.NewPubSub(&eventsCfg, events.NewLoggerAdapter(logger))
	if err != nil {
		return fmt.Errorf("events: %w", err)
	}
	c.pubsub = ps
	c.onClose("event pubsub", ps)

	c.emitter = events.NewEmitter(ps.Publisher, eventsCfg.Topic, eventsCfg.PublishBuffer, logger)
	c.consumer = events.NewConsumer(ps.Subscriber, eventsCfg.Topic, logger)

	logger.Info().
		Str("backend", eventsCfg.Backend).
		Str("topic", eventsCfg.Topic).
		Msg("recommendation events enabled")
	return nil
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func (c *components) buildAuth(cfg *config.Config, logger zerolog.Logger) error {
	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	switch {
	case errors.Is(err, auth.ErrNoSecret):
		// Config validation refuses this in production.
		logger.Warn().Msg("JWT_SECRET not set, trusting the X-User-ID header")
		c.auth = auth.NewMiddleware(nil)
	case err != nil:
		return fmt.Errorf("auth: %w", err)
	default:
		c.auth = auth.NewMiddleware(jwtManager)
	}
	return nil
}
