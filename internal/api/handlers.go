// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/propsight/internal/cache"
	"github.com/tomtom215/propsight/internal/config"
	"github.com/tomtom215/propsight/internal/database"
	"github.com/tomtom215/propsight/internal/events"
	"github.com/tomtom215/propsight/internal/filter"
	"github.com/tomtom215/propsight/internal/middleware"
	"github.com/tomtom215/propsight/internal/recommend"
)

// Store is the persistence the handlers need. *database.DB implements it.
type Store interface {
	CandidatePool(ctx context.Context, userID string, limit int) ([]recommend.Listing, error)
	TrendingPool(ctx context.Context, limit int) ([]recommend.Listing, error)
	GetListing(ctx context.Context, id string) (recommend.Listing, error)
	RecordView(ctx context.Context, id string) error
	AddWishlist(ctx context.Context, e database.WishlistEntry) (bool, error)
	RemoveWishlist(ctx context.Context, userID, listingID string) (bool, error)
	AddBooking(ctx context.Context, b database.Booking) (database.Booking, error)
	AddReview(ctx context.Context, r database.Review) (database.Review, error)
	Ping(ctx context.Context) error
}

var _ Store = (*database.DB)(nil)

// EmitterStatsProvider reports event publishing counters.
type EmitterStatsProvider interface {
	Stats() events.EmitterStats
}

// ConsumerStatsProvider reports aggregated served events.
type ConsumerStatsProvider interface {
	Stats() ([]events.ModelStats, int64)
}

// Deps are the handler dependencies. Store, Engine and Config are required.
type Deps struct {
	Store    Store
	Engine   *recommend.Engine
	Config   *config.Config
	Cache    cache.Cache
	Filters  *filter.Compiler
	Matrix   *recommend.MatrixCache
	Emitter  EmitterStatsProvider
	Consumer ConsumerStatsProvider
	Perf     *middleware.PerformanceMonitor
	Version  string
}

// Handler serves the API endpoints.
type Handler struct {
	store    Store
	engine   *recommend.Engine
	config   *config.Config
	cache    cache.Cache
	filters  *filter.Compiler
	matrix   *recommend.MatrixCache
	emitter  EmitterStatsProvider
	consumer ConsumerStatsProvider
	perf     *middleware.PerformanceMonitor
	version  string

	startTime time.Time
}

// NewHandler creates the API handler.
//
//nolint:gocritic // hugeParam: deps is read once at construction
func NewHandler(deps Deps) (*Handler, error) {
	if deps.Store == nil {
		return nil, errors.New("api: store is required")
	}
	if deps.Engine == nil {
		return nil, errors.New("api: engine is required")
	}
	if deps.Config == nil {
		return nil, errors.New("api: config is required")
	}

	h := &Handler{
		store:     deps.Store,
		engine:    deps.Engine,
		config:    deps.Config,
		cache:     deps.Cache,
		filters:   deps.Filters,
		matrix:    deps.Matrix,
		emitter:   deps.Emitter,
		consumer:  deps.Consumer,
		perf:      deps.Perf,
		version:   deps.Version,
		startTime: time.Now(),
	}
	if h.cache == nil {
		h.cache = cache.Nop{}
	}
	if h.filters == nil {
		compiler, err := filter.NewCompiler(nil)
		if err != nil {
			return nil, fmt.Errorf("api: filter compiler: %w", err)
		}
		h.filters = compiler
	}
	if h.version == "" {
		h.version = "dev"
	}
	return h, nil
}

// poolSize is the number of candidates fetched per request.
func (h *Handler) poolSize() int {
	return h.config.Database.CandidatePoolSize
}

// effectiveLimit applies the engine's default and maximum to limit.
func (h *Handler) effectiveLimit(limit int) int {
	cfg := h.engine.Config()
	if limit <= 0 {
		return cfg.DefaultLimit
	}
	if limit > cfg.MaxLimit {
		return cfg.MaxLimit
	}
	return limit
}
