// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/propsight/internal/models"
)

func TestHealth(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)

	status, env := ts.do(t, http.MethodGet, "/health", "", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	var health models.HealthResponse
	decodeData(t, env, &health)
	if health.Status != "healthy" || !health.Database {
		t.Errorf("health = %+v", health)
	}

	ts.store.pingErr = errors.New("gone")
	status, env = ts.do(t, http.MethodGet, "/health", "", "")
	decodeData(t, env, &health)
	if status != http.StatusServiceUnavailable || health.Status != "degraded" {
		t.Errorf("got %d %+v, want 503 degraded", status, health)
	}
}

func TestRouter_NotFoundAndMethod(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)

	status, env := ts.do(t, http.MethodGet, "/api/v1/nothing-here", "", "")
	if status != http.StatusNotFound || env.Error.Code != models.ErrCodeNotFound {
		t.Errorf("got %d %+v", status, env.Error)
	}

	status, env = ts.do(t, http.MethodPut, "/api/v1/recommendations/trending", "", "")
	if status != http.StatusMethodNotAllowed || env.Error.Code != models.ErrCodeMethodNotAllowed {
		t.Errorf("got %d %+v", status, env.Error)
	}
}

func TestRouter_HeadersAndMetrics(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/models", nil)
	req.Header.Set("X-Request-ID", "trace-abc")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-ID") != "trace-abc" {
		t.Errorf("X-Request-ID = %q", rec.Header().Get("X-Request-ID"))
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
	if !strings.Contains(rec.Body.String(), `"request_id":"trace-abc"`) {
		t.Errorf("envelope should echo the request id: %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	ts.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "propsight_api_requests_total") {
		t.Errorf("metrics endpoint status %d, missing api request counter", rec.Code)
	}
}

func TestRouter_RateLimit(t *testing.T) {
	t.Parallel()

	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitRequests = 2
	cfg.RateLimitWindow = time.Minute
	ts := newTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		if status, _ := ts.do(t, http.MethodGet, "/api/v1/recommendations/models", "", ""); status != http.StatusOK {
			t.Fatalf("request %d status = %d", i, status)
		}
	}
	status, env := ts.do(t, http.MethodGet, "/api/v1/recommendations/models", "", "")
	if status != http.StatusTooManyRequests || env.Error.Code != models.ErrCodeRateLimited {
		t.Errorf("got %d %+v, want 429", status, env.Error)
	}

	// Health is outside the limited group.
	if status, _ := ts.do(t, http.MethodGet, "/health", "", ""); status != http.StatusOK {
		t.Errorf("health status = %d", status)
	}
}

func TestSanitizeLogValue(t *testing.T) {
	t.Parallel()

	if got := sanitizeLogValue("a\nb\x7f"); got != `a\x0ab\x7f` {
		t.Errorf("sanitizeLogValue() = %q", got)
	}
}
