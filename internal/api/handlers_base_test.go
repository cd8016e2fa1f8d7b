// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/propsight/internal/auth"
	"github.com/tomtom215/propsight/internal/cache"
	"github.com/tomtom215/propsight/internal/config"
	"github.com/tomtom215/propsight/internal/database"
	"github.com/tomtom215/propsight/internal/middleware"
	"github.com/tomtom215/propsight/internal/models"
	"github.com/tomtom215/propsight/internal/recommend"
	"github.com/tomtom215/propsight/internal/recommend/scorers"
)

// mockStore is an in-memory Store that also serves user history to the
// profile builder.
type mockStore struct {
	mu       sync.Mutex
	listings map[string]recommend.Listing
	order    []string
	wishlist map[string]map[string]bool
	bookings []database.Booking
	reviews  []database.Review

	candidateCalls int
	poolErr        error
	pingErr        error
}

var _ recommend.InteractionStore = (*mockStore)(nil)

func newMockStore(listings ...recommend.Listing) *mockStore {
	s := &mockStore{
		listings: make(map[string]recommend.Listing),
		wishlist: make(map[string]map[string]bool),
	}
	for _, l := range listings {
		s.listings[l.ID] = l
		s.order = append(s.order, l.ID)
	}
	return s
}

func (s *mockStore) CandidatePool(_ context.Context, userID string, limit int) ([]recommend.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidateCalls++
	if s.poolErr != nil {
		return nil, s.poolErr
	}
	out := make([]recommend.Listing, 0, len(s.order))
	for _, id := range s.order {
		if s.wishlist[userID][id] {
			continue
		}
		out = append(out, s.listings[id])
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *mockStore) TrendingPool(ctx context.Context, limit int) ([]recommend.Listing, error) {
	return s.CandidatePool(ctx, "", limit)
}

func (s *mockStore) GetListing(_ context.Context, id string) (recommend.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok {
		return recommend.Listing{}, database.ErrNotFound
	}
	return l, nil
}

func (s *mockStore) RecordView(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok {
		return database.ErrNotFound
	}
	l.ViewCount++
	s.listings[id] = l
	return nil
}

func (s *mockStore) AddWishlist(_ context.Context, e database.WishlistEntry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.listings[e.ListingID]; !ok {
		return false, database.ErrNotFound
	}
	if s.wishlist[e.UserID] == nil {
		s.wishlist[e.UserID] = make(map[string]bool)
	}
	if s.wishlist[e.UserID][e.ListingID] {
		return false, nil
	}
	s.wishlist[e.UserID][e.ListingID] = true
	return true, nil
}

func (s *mockStore) RemoveWishlist(_ context.Context, userID, listingID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.wishlist[userID][listingID] {
		return false, nil
	}
	delete(s.wishlist[userID], listingID)
	return true, nil
}

func (s *mockStore) AddBooking(_ context.Context, b database.Booking) (database.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.listings[b.ListingID]; !ok {
		return b, database.ErrNotFound
	}
	b.ID = "booking-1"
	s.bookings = append(s.bookings, b)
	return b, nil
}

func (s *mockStore) AddReview(_ context.Context, r database.Review) (database.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.listings[r.ListingID]; !ok {
		return r, database.ErrNotFound
	}
	r.ID = "review-1"
	s.reviews = append(s.reviews, r)
	return r, nil
}

func (s *mockStore) Ping(context.Context) error { return s.pingErr }

func (s *mockStore) WishlistListings(_ context.Context, userID string) ([]recommend.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []recommend.Listing
	for _, id := range s.order {
		if s.wishlist[userID][id] {
			out = append(out, s.listings[id])
		}
	}
	return out, nil
}

func (s *mockStore) BookedListings(_ context.Context, userID string) ([]recommend.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []recommend.Listing
	for _, b := range s.bookings {
		if b.UserID == userID {
			out = append(out, s.listings[b.ListingID])
		}
	}
	return out, nil
}

func (s *mockStore) ReviewedListings(_ context.Context, userID string) ([]recommend.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []recommend.Listing
	for _, r := range s.reviews {
		if r.UserID == userID {
			out = append(out, s.listings[r.ListingID])
		}
	}
	return out, nil
}

func (s *mockStore) ChatMessageCount(context.Context, string) (int, error) { return 0, nil }

func (s *mockStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.candidateCalls
}

func testListings() []recommend.Listing {
	now := time.Now()
	return []recommend.Listing{
		{ID: "L1", Title: "Sea view flat", Price: 1_500_000, Area: 900, City: "Mumbai", Type: "apartment",
			Bedrooms: 2, ViewCount: 300, WishlistCount: 12, CreatedAt: now.AddDate(0, 0, -1)},
		{ID: "L2", Title: "Garden villa", Price: 9_000_000, Area: 3200, City: "Pune", Type: "villa",
			Bedrooms: 4, BookingCount: 3, CreatedAt: now.AddDate(0, 0, -5)},
		{ID: "L3", Title: "Studio", Price: 800_000, Area: 400, City: "Indore", Type: "apartment",
			Bedrooms: 1, ViewCount: 20, CreatedAt: now.AddDate(0, -1, 0)},
		{ID: "L4", Title: "Penthouse", Price: 25_000_000, Area: 4000, City: "Delhi", Type: "penthouse",
			Bedrooms: 5, Rating: 4.8, ReviewCount: 30, CreatedAt: now.AddDate(0, -3, 0)},
	}
}

type testServer struct {
	store   *mockStore
	handler *Handler
	router  http.Handler
}

func newTestServer(t *testing.T, mwConfig *ChiMiddlewareConfig) *testServer {
	t.Helper()

	store := newMockStore(testListings()...)
	cfg := recommend.DefaultConfig()
	features := recommend.NewFeatureExtractor(nil)
	engine, err := recommend.NewEngine(cfg, recommend.NewProfileBuilder(store),
		recommend.NewInsightsBuilder(features), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	for _, s := range scorers.Default(cfg, features, nil, zerolog.Nop()) {
		engine.RegisterScorer(s)
	}

	h, err := NewHandler(Deps{
		Store:  store,
		Engine: engine,
		Config: &config.Config{Database: config.DatabaseConfig{CandidatePoolSize: 100}},
		Cache:  cache.NewMemory(100, time.Minute),
		Perf:   middleware.NewPerformanceMonitor(100),
	})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	if mwConfig == nil {
		mwConfig = DefaultChiMiddlewareConfig()
		mwConfig.RateLimitDisabled = true
	}
	router := NewRouter(h, auth.NewMiddleware(nil), mwConfig)
	return &testServer{store: store, handler: h, router: router.SetupChi()}
}

type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

// do sends a request as user (empty for anonymous) and decodes the envelope.
func (ts *testServer) do(t *testing.T, method, target, user, body string) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if user != "" {
		req.Header.Set(auth.UserIDHeader, user)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: decode envelope: %v (body %q)", method, target, err, rec.Body.String())
	}
	return rec.Code, env
}

func decodeData(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}
