// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package recommend

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/propsight/internal/metrics"
)

// Engine coordinates the per-model scorers and produces final rankings.
// It is safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger

	scorers  map[string]Scorer
	order    []string
	scorerMu sync.RWMutex

	profiles *ProfileBuilder
	insights *InsightsBuilder
	matrix   *MatrixCache
	events   EventSink

	requestCount  atomic.Int64
	fallbackCount atomic.Int64
	errorCount    atomic.Int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithEventSink sets the sink notified of served responses.
func WithEventSink(sink EventSink) Option {
	return func(e *Engine) { e.events = sink }
}

// WithMatrixCache lets responses report the interaction matrix version.
func WithMatrixCache(m *MatrixCache) Option {
	return func(e *Engine) { e.matrix = m }
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, profiles *ProfileBuilder, insights *InsightsBuilder, logger zerolog.Logger, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if profiles == nil {
		profiles = NewProfileBuilder(nil)
	}
	if insights == nil {
		insights = NewInsightsBuilder(NewFeatureExtractor(nil))
	}

	e := &Engine{
		config:   cfg,
		logger:   logger.With().Str("component", "recommend").Logger(),
		scorers:  make(map[string]Scorer),
		profiles: profiles,
		insights: insights,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// RegisterScorer adds a scorer. A scorer with the same name replaces the
// previous one.
func (e *Engine) RegisterScorer(s Scorer) {
	e.scorerMu.Lock()
	defer e.scorerMu.Unlock()

	if _, exists := e.scorers[s.Name()]; !exists {
		e.order = append(e.order, s.Name())
	}
	e.scorers[s.Name()] = s
	e.logger.Info().
		Str("model", s.Name()).
		Msg("registered scorer")
}

// Scorers returns the registered model names in registration order.
func (e *Engine) Scorers() []string {
	e.scorerMu.RLock()
	defer e.scorerMu.RUnlock()

	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Recommend ranks the request's candidates for the user.
//
// The only error is ErrInvalidRequest. Profile loading failures, scorer
// errors and panics degrade to the popularity ranking.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	e.requestCount.Add(1)

	if req.UserID == "" {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidRequest)
	}

	req = e.prepareRequest(req)
	logger := e.logger.With().
		Str("request_id", req.RequestID).
		Str("user_id", req.UserID).
		Str("model", req.Model.String()).
		Logger()

	if len(req.Candidates) == 0 {
		logger.Debug().Msg("no candidates available")
		return e.finish(ctx, req, nil, nil, []string{}, false, start), nil
	}

	profile := e.loadProfile(ctx, req.UserID, logger)

	var (
		recs       []Recommendation
		modelsUsed []string
		fellBack   bool
	)
	switch {
	case profile.IsNewUser:
		// New users get the popularity ranking as is, in its own order.
		recs, modelsUsed, fellBack = Fallback(req.Candidates, req.Limit), []string{ModelPopularity}, true
		metrics.RecordFallback(req.Model.String(), "new_user")
	case req.Model.IsEnsemble():
		recs, modelsUsed, fellBack = e.ensemble(ctx, req, profile, logger)
	default:
		recs, modelsUsed, fellBack = e.single(ctx, req, profile, logger)
	}

	recs = e.insights.Annotate(Truncate(recs, req.Limit), profile)

	resp := e.finish(ctx, req, profile, recs, modelsUsed, fellBack, start)
	logger.Debug().
		Int("candidates", len(req.Candidates)).
		Int("returned", len(recs)).
		Bool("fallback", fellBack).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")

	return resp, nil
}

// Trending returns the popularity ranking with insights for an anonymous
// caller.
func (e *Engine) Trending(candidates []Listing, limit int) []Recommendation {
	if limit <= 0 {
		limit = e.config.DefaultLimit
	}
	if limit > e.config.MaxLimit {
		limit = e.config.MaxLimit
	}
	return e.insights.Annotate(Fallback(candidates, limit), nil)
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req Request) Request {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if req.Limit <= 0 {
		req.Limit = e.config.DefaultLimit
	}
	if req.Limit > e.config.MaxLimit {
		req.Limit = e.config.MaxLimit
	}
	req.Model = ParseModelSelector(string(req.Model))
	return req
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) loadProfile(ctx context.Context, userID string, logger zerolog.Logger) *UserProfile {
	profile, err := e.profiles.Build(ctx, userID)
	if err != nil {
		logger.Warn().Err(err).Msg("profile build failed, treating user as new")
		return NewUserProfile(userID)
	}
	return profile
}

// scorerOutcome is one scorer's result inside the ensemble.
type scorerOutcome struct {
	name     string
	recs     []Recommendation
	fellBack bool
}

// ensemble runs every registered scorer concurrently and combines them.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) ensemble(ctx context.Context, req Request, profile *UserProfile, logger zerolog.Logger) ([]Recommendation, []string, bool) {
	e.scorerMu.RLock()
	names := make([]string, len(e.order))
	copy(names, e.order)
	scorers := make([]Scorer, len(names))
	for i, name := range names {
		scorers[i] = e.scorers[name]
	}
	e.scorerMu.RUnlock()

	depth := req.Limit * e.config.CandidateDepth
	outcomes := make([]scorerOutcome, len(scorers))

	// Scorer failures are absorbed below, so the group never cancels.
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range scorers {
		g.Go(func() error {
			recs, fellBack := e.runScorer(gctx, s, req.Candidates, profile, depth, logger)
			outcomes[i] = scorerOutcome{name: s.Name(), recs: recs, fellBack: fellBack}
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // goroutines never return errors

	results := make([]ModelResult, 0, len(outcomes))
	used := make([]string, 0, len(outcomes))
	anyFallback := false
	for _, o := range outcomes {
		results = append(results, ModelResult{
			Name:            o.name,
			Weight:          e.config.Weights.Get(o.name),
			AccuracyHint:    e.config.AccuracyHints.Get(o.name),
			Recommendations: o.recs,
		})
		used = append(used, o.name)
		anyFallback = anyFallback || o.fellBack
	}

	combined := Combine(results, e.config.DiversityBonus, e.config.EnsembleConfidenceFloor)
	if len(combined) == 0 {
		logger.Warn().Msg("ensemble produced no results, using popularity ranking")
		e.fallbackCount.Add(1)
		metrics.RecordFallback(ModelEnsemble, "empty")
		return Fallback(req.Candidates, req.Limit), []string{ModelPopularity}, true
	}
	return combined, used, anyFallback
}

// single runs one named scorer.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) single(ctx context.Context, req Request, profile *UserProfile, logger zerolog.Logger) ([]Recommendation, []string, bool) {
	e.scorerMu.RLock()
	s, ok := e.scorers[req.Model.String()]
	e.scorerMu.RUnlock()

	if !ok {
		logger.Warn().Msg("model not registered, using popularity ranking")
		e.fallbackCount.Add(1)
		metrics.RecordFallback(req.Model.String(), "unregistered")
		return Fallback(req.Candidates, req.Limit), []string{ModelPopularity}, true
	}

	recs, fellBack := e.runScorer(ctx, s, req.Candidates, profile, req.Limit, logger)
	return recs, []string{s.Name()}, fellBack
}

// runScorer calls a scorer, replacing errors, panics and empty output with
// the popularity ranking. It reports whether the fallback was used.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) runScorer(ctx context.Context, s Scorer, candidates []Listing, profile *UserProfile, limit int, logger zerolog.Logger) (recs []Recommendation, fellBack bool) {
	start := time.Now()
	name := s.Name()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Str("scorer", name).
				Interface("panic", r).
				Msg("scorer panicked, using popularity ranking")
			e.fallbackCount.Add(1)
			metrics.RecordFallback(name, "panic")
			recs, fellBack = Fallback(candidates, limit), true
		}
		metrics.ObserveScorer(name, time.Since(start))
	}()

	sctx, cancel := context.WithTimeout(ctx, e.config.ScorerTimeout)
	defer cancel()

	out, err := s.Score(sctx, candidates, profile, limit)
	if err != nil {
		logger.Warn().
			Str("scorer", name).
			Err(err).
			Msg("scorer failed, using popularity ranking")
		e.fallbackCount.Add(1)
		metrics.RecordFallback(name, "error")
		return Fallback(candidates, limit), true
	}
	if len(out) == 0 {
		e.fallbackCount.Add(1)
		metrics.RecordFallback(name, "empty")
		return Fallback(candidates, limit), true
	}

	fellBack = profile == nil || profile.IsNewUser || out[0].Model == ModelPopularity
	return Truncate(out, limit), fellBack
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) finish(ctx context.Context, req Request, profile *UserProfile, recs []Recommendation, modelsUsed []string, fellBack bool, start time.Time) *Response {
	if recs == nil {
		recs = []Recommendation{}
	}

	var matrixVersion int64
	if e.matrix != nil {
		if m := e.matrix.Current(); m != nil {
			matrixVersion = m.Version()
		}
	}

	resp := &Response{
		Recommendations: recs,
		Profile:         SummarizeProfile(profile),
		Metadata: ResponseMetadata{
			RequestID:       req.RequestID,
			UserID:          req.UserID,
			Model:           req.Model.String(),
			ModelsUsed:      modelsUsed,
			FallbackUsed:    fellBack,
			TotalCandidates: len(req.Candidates),
			LatencyMS:       time.Since(start).Milliseconds(),
			MatrixVersion:   matrixVersion,
			Timestamp:       time.Now(),
		},
	}

	metrics.RecordRecommendation(req.Model.String(), fellBack, len(recs), time.Since(start))

	if e.events != nil {
		e.events.RecommendationServed(ctx, resp)
	}
	return resp
}

// Stats is a snapshot of engine counters.
type Stats struct {
	Requests  int64 `json:"requests"`
	Fallbacks int64 `json:"fallbacks"`
	Errors    int64 `json:"errors"`
}

// Stats returns the engine counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Requests:  e.requestCount.Load(),
		Fallbacks: e.fallbackCount.Load(),
		Errors:    e.errorCount.Load(),
	}
}
