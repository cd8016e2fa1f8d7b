// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/propsight/internal/recommend"
)

// Task is one unit of periodic work.
type Task func(ctx context.Context) error

// TickerConfig configures a TickerService.
type TickerConfig struct {
	// Name identifies the service in supervisor and log output.
	Name string

	// Interval between runs. Default: 1m
	Interval time.Duration

	// RunOnStart runs the task once before the first tick.
	RunOnStart bool

	// Timeout bounds a single run. Zero means the run is bounded only by
	// the service context.
	Timeout time.Duration
}

// TickerService runs a task on a fixed interval until its context ends.
type TickerService struct {
	task   Task
	config TickerConfig
	logger zerolog.Logger

	runs     atomic.Int64
	failures atomic.Int64
}

// NewTickerService creates a ticker service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTickerService(task Task, cfg TickerConfig, logger zerolog.Logger) *TickerService {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Name == "" {
		cfg.Name = "ticker"
	}
	return &TickerService{
		task:   task,
		config: cfg,
		logger: logger.With().Str("service", cfg.Name).Logger(),
	}
}

// Serve implements suture.Service. Task errors are logged and never end
// the loop.
func (s *TickerService) Serve(ctx context.Context) error {
	s.logger.Info().
		Dur("interval", s.config.Interval).
		Bool("run_on_start", s.config.RunOnStart).
		Msg("service starting")

	if s.config.RunOnStart {
		s.run(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("service shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.run(ctx)
		}
	}
}

func (s *TickerService) run(ctx context.Context) {
	runCtx := ctx
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	s.runs.Add(1)
	if err := s.task(runCtx); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.failures.Add(1)
		s.logger.Warn().Err(err).Dur("duration", time.Since(start)).Msg("scheduled run failed")
		return
	}
	s.logger.Debug().Dur("duration", time.Since(start)).Msg("scheduled run complete")
}

// Runs returns how many times the task was started.
func (s *TickerService) Runs() int64 { return s.runs.Load() }

// Failures returns how many runs returned an error.
func (s *TickerService) Failures() int64 { return s.failures.Load() }

// String implements fmt.Stringer.
func (s *TickerService) String() string { return s.config.Name }

// MatrixRefresher rebuilds the interaction matrix.
type MatrixRefresher interface {
	Refresh(ctx context.Context) (*recommend.InteractionMatrix, error)
}

// NewMatrixRefreshService rebuilds the interaction matrix every interval.
// The first rebuild happens at startup so a restored snapshot is replaced
// by current data.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewMatrixRefreshService(refresher MatrixRefresher, interval time.Duration, logger zerolog.Logger) *TickerService {
	task := func(ctx context.Context) error {
		_, err := refresher.Refresh(ctx)
		return err
	}
	return NewTickerService(task, TickerConfig{
		Name:       "matrix-refresh",
		Interval:   interval,
		RunOnStart: true,
		Timeout:    5 * time.Minute,
	}, logger)
}

// ExpiringCache is a cache whose expired entries can be purged.
type ExpiringCache interface {
	CleanupExpired() int
}

// NewCacheJanitorService purges expired cache entries every interval.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCacheJanitorService(c ExpiringCache, interval time.Duration, logger zerolog.Logger) *TickerService {
	janitorLogger := logger.With().Str("service", "cache-janitor").Logger()
	task := func(context.Context) error {
		if n := c.CleanupExpired(); n > 0 {
			janitorLogger.Debug().Int("removed", n).Msg("expired cache entries removed")
		}
		return nil
	}
	return NewTickerService(task, TickerConfig{
		Name:     "cache-janitor",
		Interval: interval,
	}, logger)
}
