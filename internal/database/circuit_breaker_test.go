// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

func TestStateConversions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state gobreaker.State
		f     float64
		s     string
	}{
		{gobreaker.StateClosed, 0, "closed"},
		{gobreaker.StateHalfOpen, 1, "half-open"},
		{gobreaker.StateOpen, 2, "open"},
	}
	for _, tt := range tests {
		if got := stateToFloat(tt.state); got != tt.f {
			t.Errorf("stateToFloat(%v) = %v, want %v", tt.state, got, tt.f)
		}
		if got := stateToString(tt.state); got != tt.s {
			t.Errorf("stateToString(%v) = %q, want %q", tt.state, got, tt.s)
		}
	}
}

func TestCastResult(t *testing.T) {
	t.Parallel()

	if v, err := castResult[int](7); err != nil || v != 7 {
		t.Errorf("castResult(7) = %v, %v", v, err)
	}
	if v, err := castResult[[]string](nil); err != nil || v != nil {
		t.Errorf("castResult(nil) = %v, %v", v, err)
	}
	if _, err := castResult[int]("x"); err == nil {
		t.Error("expected type mismatch error")
	}
}

// breakerDB is a DB without a connection, enough to exercise execute.
func breakerDB() *DB {
	return &DB{cb: newCircuitBreaker("test"), queryTimeout: time.Second}
}

func TestExecute_OpensAfterFailures(t *testing.T) {
	t.Parallel()

	db := breakerDB()
	boom := errors.New("boom")
	calls := 0
	fail := func(context.Context) (int, error) {
		calls++
		return 0, boom
	}

	for i := 0; i < 10; i++ {
		if _, err := execute(context.Background(), db, "test", fail); !errors.Is(err, boom) {
			t.Fatalf("call %d error = %v", i, err)
		}
	}

	_, err := execute(context.Background(), db, "test", fail)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("error after trip = %v, want ErrOpenState", err)
	}
	if calls != 10 {
		t.Errorf("fn called %d times, want 10", calls)
	}
}

func TestExecute_NotFoundDoesNotTrip(t *testing.T) {
	t.Parallel()

	db := breakerDB()
	for i := 0; i < 20; i++ {
		_, err := execute(context.Background(), db, "test", func(context.Context) (int, error) {
			return 0, ErrNotFound
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("call %d error = %v", i, err)
		}
	}
	if db.cb.State() != gobreaker.StateClosed {
		t.Errorf("state = %v, want closed", db.cb.State())
	}
}

func TestExecute_AppliesTimeout(t *testing.T) {
	t.Parallel()

	db := breakerDB()
	got, err := execute(context.Background(), db, "test", func(ctx context.Context) (bool, error) {
		_, ok := ctx.Deadline()
		return ok, nil
	})
	if err != nil || !got {
		t.Errorf("execute() = %v, %v, want deadline set", got, err)
	}
}
