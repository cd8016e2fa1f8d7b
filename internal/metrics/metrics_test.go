// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package metrics

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordRecommendation(t *testing.T) {
	tests := []struct {
		name     string
		model    string
		fallback bool
		outcome  string
	}{
		{name: "personalized ensemble", model: "ensemble", fallback: false, outcome: "personalized"},
		{name: "fallback random forest", model: "random-forest", fallback: true, outcome: "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(RecommendationsTotal.WithLabelValues(tt.model, tt.outcome))
			RecordRecommendation(tt.model, tt.fallback, 5, 12*time.Millisecond)
			after := testutil.ToFloat64(RecommendationsTotal.WithLabelValues(tt.model, tt.outcome))
			if after-before != 1 {
				t.Errorf("RecommendationsTotal delta = %v, want 1", after-before)
			}
		})
	}
}

func TestRecordFallback(t *testing.T) {
	before := testutil.ToFloat64(ScorerFallbacks.WithLabelValues("k-means", "panic"))
	RecordFallback("k-means", "panic")
	RecordFallback("k-means", "panic")
	after := testutil.ToFloat64(ScorerFallbacks.WithLabelValues("k-means", "panic"))
	if after-before != 2 {
		t.Errorf("ScorerFallbacks delta = %v, want 2", after-before)
	}
}

func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name       string
		operation  string
		err        error
		wantErrInc float64
	}{
		{name: "successful query", operation: "candidate_pool", err: nil, wantErrInc: 0},
		{name: "failed query", operation: "user_history", err: errors.New("connection refused"), wantErrInc: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(DBQueryErrors.WithLabelValues(tt.operation))
			RecordDBQuery(tt.operation, 3*time.Millisecond, tt.err)
			after := testutil.ToFloat64(DBQueryErrors.WithLabelValues(tt.operation))
			if after-before != tt.wantErrInc {
				t.Errorf("DBQueryErrors delta = %v, want %v", after-before, tt.wantErrInc)
			}
		})
	}
}

func TestRecordCacheLookupAndEvents(t *testing.T) {
	beforeHit := testutil.ToFloat64(ResponseCache.WithLabelValues("memory", "hit"))
	RecordCacheLookup("memory", "hit")
	if got := testutil.ToFloat64(ResponseCache.WithLabelValues("memory", "hit")) - beforeHit; got != 1 {
		t.Errorf("ResponseCache hit delta = %v, want 1", got)
	}

	beforeEvt := testutil.ToFloat64(EventsTotal.WithLabelValues("recommendation.served", "published"))
	RecordEvent("recommendation.served", "published")
	if got := testutil.ToFloat64(EventsTotal.WithLabelValues("recommendation.served", "published")) - beforeEvt; got != 1 {
		t.Errorf("EventsTotal delta = %v, want 1", got)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/recommendations", "200"))
	RecordAPIRequest(http.MethodGet, "/api/v1/recommendations", http.StatusOK, 40*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/recommendations", "200"))
	if after-before != 1 {
		t.Errorf("APIRequestsTotal delta = %v, want 1", after-before)
	}
}
