// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package scorers

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/tomtom215/propsight/internal/recommend"
)

func TestMatrixFactorization_Score(t *testing.T) {
	t.Parallel()

	s := NewMatrixFactorization(recommend.DefaultConfig(), testFeatures(), staticMatrix{m: testMatrix()}, testLogger())
	cands := []recommend.Listing{{ID: "L4"}, {ID: "L3"}}

	got, err := s.Score(context.Background(), cands, returningProfile(), 10)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Listing.ID != "L3" {
		t.Errorf("top = %q, want L3", got[0].Listing.ID)
	}

	sim := 2 / (math.Sqrt(2) * math.Sqrt(11))
	want := 0.3 + 0.7*sim
	if math.Abs(got[0].Score-want) > 1e-9 {
		t.Errorf("L3 score = %v, want %v", got[0].Score, want)
	}
	if got[1].Score != mfBaseScore || got[1].Confidence != mfBaseConfidence {
		t.Errorf("L4 = %v/%v, want base score", got[1].Score, got[1].Confidence)
	}
}

func TestMatrixFactorization_MatrixErrors(t *testing.T) {
	t.Parallel()

	s := NewMatrixFactorization(recommend.DefaultConfig(), testFeatures(), staticMatrix{err: recommend.ErrMatrixUnavailable}, testLogger())
	if _, err := s.Score(context.Background(), candidates(), returningProfile(), 5); !errors.Is(err, recommend.ErrMatrixUnavailable) {
		t.Errorf("Score() error = %v", err)
	}

	none := NewMatrixFactorization(recommend.DefaultConfig(), testFeatures(), nil, testLogger())
	if _, err := none.Score(context.Background(), candidates(), returningProfile(), 5); !errors.Is(err, recommend.ErrMatrixUnavailable) {
		t.Errorf("Score() error = %v", err)
	}
}

func TestMatrixFactorization_UnknownUserGetsBaseScores(t *testing.T) {
	t.Parallel()

	s := NewMatrixFactorization(recommend.DefaultConfig(), testFeatures(), staticMatrix{m: testMatrix()}, testLogger())
	p := returningProfile()
	p.UserID = "stranger"

	got, err := s.Score(context.Background(), []recommend.Listing{{ID: "L3"}, {ID: "L1"}}, p, 10)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	for _, r := range got {
		if r.Score != mfBaseScore {
			t.Errorf("%s score = %v, want base", r.Listing.ID, r.Score)
		}
	}
	if got[0].Listing.ID != "L1" {
		t.Errorf("ties should break by id, got %q first", got[0].Listing.ID)
	}
}
