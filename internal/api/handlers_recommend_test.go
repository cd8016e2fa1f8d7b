// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package api

import (
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/propsight/internal/models"
	"github.com/tomtom215/propsight/internal/recommend"
)

func TestRecommendations_RanksAndCaches(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)

	status, env := ts.do(t, http.MethodGet, "/api/v1/recommendations?limit=2", "alice", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d, error = %+v", status, env.Error)
	}
	if env.Status != models.StatusSuccess || env.Metadata.Cached {
		t.Errorf("metadata = %+v, want fresh success", env.Metadata)
	}

	var resp recommend.Response
	decodeData(t, env, &resp)
	if len(resp.Recommendations) == 0 || len(resp.Recommendations) > 2 {
		t.Fatalf("got %d recommendations, want 1 or 2", len(resp.Recommendations))
	}
	if resp.Metadata.UserID != "alice" || resp.Metadata.Model != recommend.ModelEnsemble {
		t.Errorf("response metadata = %+v", resp.Metadata)
	}
	if !resp.Profile.IsNewUser {
		t.Error("alice has no history and should be a new user")
	}
	if resp.Metadata.TotalCandidates != 4 {
		t.Errorf("TotalCandidates = %d, want 4", resp.Metadata.TotalCandidates)
	}

	status, env = ts.do(t, http.MethodGet, "/api/v1/recommendations?limit=2", "alice", "")
	if status != http.StatusOK || !env.Metadata.Cached {
		t.Fatalf("second call status = %d cached = %v, want cached 200", status, env.Metadata.Cached)
	}
	if ts.store.calls() != 1 {
		t.Errorf("candidate pool loaded %d times, want 1", ts.store.calls())
	}

	// A different limit is a different cache entry.
	ts.do(t, http.MethodGet, "/api/v1/recommendations?limit=3", "alice", "")
	if ts.store.calls() != 2 {
		t.Errorf("candidate pool loaded %d times, want 2", ts.store.calls())
	}
}

func TestRecommendations_SingleModelAndUnknownModel(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)

	var resp recommend.Response
	_, env := ts.do(t, http.MethodGet, "/api/v1/recommendations?model=random-forest", "bob", "")
	decodeData(t, env, &resp)
	if resp.Metadata.Model != recommend.ModelRandomForest {
		t.Errorf("Model = %q, want random-forest", resp.Metadata.Model)
	}

	_, env = ts.do(t, http.MethodGet, "/api/v1/recommendations?model=does-not-exist", "bob", "")
	decodeData(t, env, &resp)
	if resp.Metadata.Model != recommend.ModelEnsemble {
		t.Errorf("unknown model selected %q, want ensemble", resp.Metadata.Model)
	}
}

func TestRecommendations_Filter(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)

	target := "/api/v1/recommendations?filter=" + url.QueryEscape(`listing.city == "Pune"`)
	status, env := ts.do(t, http.MethodGet, target, "carol", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d, error = %+v", status, env.Error)
	}
	var resp recommend.Response
	decodeData(t, env, &resp)
	for _, rec := range resp.Recommendations {
		if rec.Listing.City != "Pune" {
			t.Errorf("filtered result has city %q", rec.Listing.City)
		}
	}
	if resp.Metadata.TotalCandidates != 1 {
		t.Errorf("TotalCandidates = %d, want 1", resp.Metadata.TotalCandidates)
	}
}

func TestRecommendations_ExcludesWishlist(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)

	if status, env := ts.do(t, http.MethodPost, "/api/v1/wishlist/L1", "dave", ""); status != http.StatusCreated {
		t.Fatalf("wishlist status = %d, error = %+v", status, env.Error)
	}

	_, env := ts.do(t, http.MethodGet, "/api/v1/recommendations?limit=10", "dave", "")
	var resp recommend.Response
	decodeData(t, env, &resp)
	for _, rec := range resp.Recommendations {
		if rec.Listing.ID == "L1" {
			t.Error("wishlisted listing L1 was recommended")
		}
	}
	if resp.Profile.IsNewUser {
		t.Error("dave has a wishlist and should not be a new user")
	}
}

func TestRecommendations_BadRequests(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)

	tests := []struct {
		name     string
		target   string
		user     string
		wantCode int
		wantErr  string
	}{
		{"no user", "/api/v1/recommendations", "", http.StatusUnauthorized, models.ErrCodeUnauthorized},
		{"non-integer limit", "/api/v1/recommendations?limit=ten", "u", http.StatusBadRequest, models.ErrCodeValidation},
		{"limit too large", "/api/v1/recommendations?limit=500", "u", http.StatusBadRequest, models.ErrCodeValidation},
		{"negative limit", "/api/v1/recommendations?limit=-1", "u", http.StatusBadRequest, models.ErrCodeValidation},
		{"invalid filter", "/api/v1/recommendations?filter=" + url.QueryEscape("listing.price <"), "u",
			http.StatusBadRequest, models.ErrCodeInvalidFilter},
		{"unknown field", "/api/v1/recommendations?filter=" + url.QueryEscape("nope > 1"), "u",
			http.StatusBadRequest, models.ErrCodeInvalidFilter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			status, env := ts.do(t, http.MethodGet, tt.target, tt.user, "")
			if status != tt.wantCode {
				t.Fatalf("status = %d, want %d", status, tt.wantCode)
			}
			if env.Error == nil || env.Error.Code != tt.wantErr {
				t.Errorf("error = %+v, want code %s", env.Error, tt.wantErr)
			}
		})
	}
}

func TestRecommendations_StoreUnavailable(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)
	ts.store.poolErr = gobreaker.ErrOpenState

	status, env := ts.do(t, http.MethodGet, "/api/v1/recommendations", "erin", "")
	if status != http.StatusServiceUnavailable || env.Error.Code != models.ErrCodeUnavailable {
		t.Errorf("got %d %+v, want 503 SERVICE_UNAVAILABLE", status, env.Error)
	}

	ts.store.poolErr = errors.New("disk on fire")
	status, env = ts.do(t, http.MethodGet, "/api/v1/recommendations", "erin", "")
	if status != http.StatusInternalServerError || env.Error.Code != models.ErrCodeDatabase {
		t.Errorf("got %d %+v, want 500 DATABASE_ERROR", status, env.Error)
	}
}

func TestTrending_Public(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)

	status, env := ts.do(t, http.MethodGet, "/api/v1/recommendations/trending?limit=3", "", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d, error = %+v", status, env.Error)
	}
	var resp models.TrendingResponse
	decodeData(t, env, &resp)
	if len(resp.Recommendations) != 3 {
		t.Fatalf("got %d recommendations, want 3", len(resp.Recommendations))
	}
	for i := 1; i < len(resp.Recommendations); i++ {
		if resp.Recommendations[i].Score > resp.Recommendations[i-1].Score {
			t.Errorf("trending not sorted by score at %d", i)
		}
	}
	if resp.Recommendations[0].Model != recommend.ModelPopularity {
		t.Errorf("Model = %q, want popularity", resp.Recommendations[0].Model)
	}
	if len(resp.Recommendations[0].Insights) == 0 {
		t.Error("trending results should carry insights")
	}
}

func TestModels(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)

	status, env := ts.do(t, http.MethodGet, "/api/v1/recommendations/models", "", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	var resp models.ModelsResponse
	decodeData(t, env, &resp)
	if resp.Default != recommend.ModelEnsemble {
		t.Errorf("Default = %q", resp.Default)
	}
	if len(resp.Models) != len(recommend.Models()) {
		t.Fatalf("got %d models, want %d", len(resp.Models), len(recommend.Models()))
	}
	var weights float64
	for _, m := range resp.Models {
		if !m.Registered {
			t.Errorf("model %s not registered", m.Name)
		}
		weights += m.Weight
	}
	if weights < 0.999 || weights > 1.001 {
		t.Errorf("weights sum to %v, want 1", weights)
	}
}

func TestStats(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)

	ts.do(t, http.MethodGet, "/api/v1/recommendations", "frank", "")
	status, env := ts.do(t, http.MethodGet, "/api/v1/recommendations/stats", "frank", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	var stats StatsResponse
	decodeData(t, env, &stats)
	if stats.Engine.Requests != 1 {
		t.Errorf("engine requests = %d, want 1", stats.Engine.Requests)
	}
	if stats.CacheBackend != "memory" {
		t.Errorf("CacheBackend = %q", stats.CacheBackend)
	}
	if len(stats.Endpoints) == 0 {
		t.Error("expected endpoint latency stats")
	}
	if stats.Emitter != nil {
		t.Error("no emitter configured, Emitter should be omitted")
	}
}
