// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/propsight/internal/auth"
	"github.com/tomtom215/propsight/internal/cache"
	"github.com/tomtom215/propsight/internal/events"
	"github.com/tomtom215/propsight/internal/filter"
	"github.com/tomtom215/propsight/internal/logging"
	"github.com/tomtom215/propsight/internal/middleware"
	"github.com/tomtom215/propsight/internal/models"
	"github.com/tomtom215/propsight/internal/recommend"
)

// Recommendations handles GET /api/v1/recommendations.
//
// Query parameters:
//   - limit: 0 to 100, 0 selects the engine default
//   - model: a model name, unknown names select the ensemble
//   - filter: optional CEL expression over listing fields
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		respondError(w, r, http.StatusUnauthorized, models.ErrCodeUnauthorized, "Authentication required", nil)
		return
	}

	limit, apiErr := queryInt(r, "limit", 0)
	if apiErr != nil {
		respondAPIError(w, r, apiErr)
		return
	}
	q := models.RecommendationsQuery{
		Limit:  limit,
		Model:  strings.TrimSpace(r.URL.Query().Get("model")),
		Filter: strings.TrimSpace(r.URL.Query().Get("filter")),
	}
	if apiErr := validateRequest(&q); apiErr != nil {
		respondAPIError(w, r, apiErr)
		return
	}

	f, ok := h.compileFilter(w, r, q.Filter)
	if !ok {
		return
	}

	model := recommend.ParseModelSelector(q.Model)
	limit = h.effectiveLimit(q.Limit)
	key := cache.Key(userID, model.String(), limit, f.String())

	if cached, hit := h.cachedResponse(r, key); hit {
		respondJSON(w, http.StatusOK, &models.APIResponse{
			Status: models.StatusSuccess,
			Data:   cached,
			Metadata: models.Metadata{
				Timestamp: time.Now(),
				Cached:    true,
				RequestID: logging.RequestIDFromContext(ctx),
			},
		})
		return
	}

	candidates, err := h.store.CandidatePool(ctx, userID, h.poolSize())
	if err != nil {
		respondStoreError(w, r, err, "Candidates")
		return
	}
	candidates, ok = h.applyFilter(w, r, f, candidates)
	if !ok {
		return
	}

	resp, err := h.engine.Recommend(ctx, recommend.Request{
		RequestID:  logging.RequestIDFromContext(ctx),
		UserID:     userID,
		Candidates: candidates,
		Limit:      limit,
		Model:      model,
	})
	if err != nil {
		if errors.Is(err, recommend.ErrInvalidRequest) {
			respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Recommendation failed", err)
		return
	}

	h.storeResponse(r, userID, key, resp)
	respondSuccess(w, r, http.StatusOK, resp, start)
}

// Trending handles GET /api/v1/recommendations/trending. It needs no
// authentication and ranks by popularity only.
func (h *Handler) Trending(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit, apiErr := queryInt(r, "limit", 0)
	if apiErr != nil {
		respondAPIError(w, r, apiErr)
		return
	}
	q := models.TrendingQuery{
		Limit:  limit,
		Filter: strings.TrimSpace(r.URL.Query().Get("filter")),
	}
	if apiErr := validateRequest(&q); apiErr != nil {
		respondAPIError(w, r, apiErr)
		return
	}

	f, ok := h.compileFilter(w, r, q.Filter)
	if !ok {
		return
	}

	candidates, err := h.store.TrendingPool(r.Context(), h.poolSize())
	if err != nil {
		respondStoreError(w, r, err, "Listings")
		return
	}
	candidates, ok = h.applyFilter(w, r, f, candidates)
	if !ok {
		return
	}

	recs := h.engine.Trending(candidates, q.Limit)
	respondSuccess(w, r, http.StatusOK, models.TrendingResponse{
		Recommendations: recs,
		TotalCandidates: len(candidates),
		Timestamp:       time.Now(),
	}, start)
}

// Models handles GET /api/v1/recommendations/models.
func (h *Handler) Models(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	cfg := h.engine.Config()

	registered := make(map[string]bool)
	for _, name := range h.engine.Scorers() {
		registered[name] = true
	}

	infos := make([]models.ModelInfo, 0, len(recommend.Models()))
	for _, name := range recommend.Models() {
		info := models.ModelInfo{Name: name}
		if name == recommend.ModelEnsemble {
			info.Registered = len(registered) > 0
		} else {
			info.Registered = registered[name]
			info.Weight = cfg.Weights.Get(name)
			info.AccuracyHint = cfg.AccuracyHints.Get(name)
		}
		infos = append(infos, info)
	}

	respondSuccess(w, r, http.StatusOK, models.ModelsResponse{
		Tier:    string(cfg.Tier),
		Default: recommend.ModelEnsemble,
		Models:  infos,
	}, start)
}

// StatsResponse is returned by the stats endpoint.
type StatsResponse struct {
	Engine        recommend.Stats            `json:"engine"`
	Models        []events.ModelStats        `json:"models"`
	InvalidEvents int64                      `json:"invalid_events"`
	Emitter       *events.EmitterStats       `json:"emitter,omitempty"`
	CacheBackend  string                     `json:"cache_backend"`
	MatrixVersion int64                      `json:"matrix_version"`
	Endpoints     []middleware.EndpointStats `json:"endpoints"`
}

// Stats handles GET /api/v1/recommendations/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	stats := StatsResponse{
		Engine:        h.engine.Stats(),
		Models:        []events.ModelStats{},
		CacheBackend:  h.cache.Backend(),
		MatrixVersion: h.matrixVersion(),
		Endpoints:     []middleware.EndpointStats{},
	}
	if h.consumer != nil {
		stats.Models, stats.InvalidEvents = h.consumer.Stats()
	}
	if h.emitter != nil {
		es := h.emitter.Stats()
		stats.Emitter = &es
	}
	if h.perf != nil {
		stats.Endpoints = h.perf.GetStats()
	}

	respondSuccess(w, r, http.StatusOK, stats, start)
}

func (h *Handler) matrixVersion() int64 {
	if h.matrix == nil {
		return 0
	}
	if m := h.matrix.Current(); m != nil {
		return m.Version()
	}
	return 0
}

// compileFilter compiles expr, writing a 400 and returning false when it is
// invalid. An empty expression yields a nil filter.
func (h *Handler) compileFilter(w http.ResponseWriter, r *http.Request, expr string) (*filter.Filter, bool) {
	f, err := h.filters.Compile(expr)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeInvalidFilter, err.Error(), nil)
		return nil, false
	}
	return f, true
}

func (h *Handler) applyFilter(w http.ResponseWriter, r *http.Request, f *filter.Filter, candidates []recommend.Listing) ([]recommend.Listing, bool) {
	out, err := f.Apply(candidates)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeInvalidFilter, err.Error(), nil)
		return nil, false
	}
	return out, true
}

// cachedResponse returns a cached ranking. Cache failures count as misses.
func (h *Handler) cachedResponse(r *http.Request, key string) (*recommend.Response, bool) {
	data, hit, err := h.cache.Get(r.Context(), key)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("recommendation cache lookup failed")
		return nil, false
	}
	if !hit {
		return nil, false
	}

	var resp recommend.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("discarding undecodable cache entry")
		return nil, false
	}
	return &resp, true
}

func (h *Handler) storeResponse(r *http.Request, userID, key string, resp *recommend.Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("failed to encode response for cache")
		return
	}
	if err := h.cache.Set(r.Context(), userID, key, data); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("recommendation cache store failed")
	}
}

// invalidateUser drops the user's cached rankings after a history change.
func (h *Handler) invalidateUser(r *http.Request, userID string) {
	if err := h.cache.InvalidateUser(r.Context(), userID); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Str("user_id", userID).Msg("cache invalidation failed")
	}
}
