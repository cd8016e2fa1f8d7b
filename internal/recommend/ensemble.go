// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package recommend

import (
	"math"
	"sort"
)

// ModelResult is one model's output together with its ensemble constants.
type ModelResult struct {
	Name            string
	Weight          float64
	AccuracyHint    float64
	Recommendations []Recommendation
}

// contribution is one model's vote for one listing.
type contribution struct {
	model      string
	score      float64
	confidence float64
	weight     float64
	hint       float64
	reasons    []string
}

// Combine merges per-model results into a single ranking.
//
// A listing's base score is the sum of score*weight*hint over the models
// that recommended it. Agreement closes part of the gap to 1: with n of N
// weighted models contributing, the score becomes
//
//	base + (1-base) * diversityBonus * (n-1)/(N-1)
//
// A single contributor gets no bonus, and for a fixed n the bonus never
// reorders listings. Contributions are summed in model-name order, so the
// order of results never changes the outcome. Confidence is the mean
// contributor confidence, raised to confidenceFloor.
func Combine(results []ModelResult, diversityBonus, confidenceFloor float64) []Recommendation {
	byListing := make(map[string][]contribution)
	listings := make(map[string]Listing)

	models := 0
	for _, res := range results {
		if res.Weight <= 0 {
			continue
		}
		models++
		for i := range res.Recommendations {
			rec := &res.Recommendations[i]
			id := rec.Listing.ID
			if _, seen := listings[id]; !seen {
				listings[id] = rec.Listing
			}
			byListing[id] = append(byListing[id], contribution{
				model:      res.Name,
				score:      clamp01(rec.Score),
				confidence: clamp01(rec.Confidence),
				weight:     res.Weight,
				hint:       res.AccuracyHint,
				reasons:    rec.Explanation,
			})
		}
	}

	out := make([]Recommendation, 0, len(byListing))
	for id, contribs := range byListing {
		out = append(out, combineListing(listings[id], contribs, agreementBonus(diversityBonus, models), confidenceFloor))
	}

	SortRecommendations(out)
	return out
}

// agreementBonus returns the bonus earned per extra contributor.
func agreementBonus(diversityBonus float64, models int) float64 {
	if models < 2 || diversityBonus <= 0 {
		return 0
	}
	return math.Min(diversityBonus, 1) / float64(models-1)
}

func combineListing(l Listing, contribs []contribution, bonusPerModel, confidenceFloor float64) Recommendation {
	sort.Slice(contribs, func(i, j int) bool {
		if contribs[i].model != contribs[j].model {
			return contribs[i].model < contribs[j].model
		}
		return contribs[i].score < contribs[j].score
	})

	var score, confidence float64
	models := make([]string, 0, len(contribs))
	scores := make(map[string]float64, len(contribs))
	var explanation []string
	seenReason := make(map[string]struct{})

	for _, c := range contribs {
		score += c.score * c.weight * c.hint
		confidence += c.confidence
		if _, dup := scores[c.model]; !dup {
			models = append(models, c.model)
		}
		scores[c.model] = c.score
		for _, r := range c.reasons {
			if _, ok := seenReason[r]; ok {
				continue
			}
			seenReason[r] = struct{}{}
			explanation = append(explanation, r)
		}
	}

	score = clamp01(score)
	score += (1 - score) * bonusPerModel * float64(len(models)-1)
	confidence /= float64(len(contribs))
	if confidence < confidenceFloor {
		confidence = confidenceFloor
	}

	return Recommendation{
		Listing:     l,
		Score:       clamp01(score),
		Confidence:  clamp01(confidence),
		Model:       ModelEnsemble,
		Models:      models,
		Type:        TypeEnsemble,
		Explanation: explanation,
		ModelScores: scores,
	}
}
