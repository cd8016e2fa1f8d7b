// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

// Package filter narrows candidate pools with CEL expressions.
//
// A filter is a boolean CEL expression over the variable listing:
//
//	listing.price < 5000000.0 && listing.city == "Pune"
//	listing.amenities.parking && listing.bedrooms >= 2
//	listing.type in ["villa", "house"] && listing.age_days < 90
//
// Integer and floating point fields compare with each other directly.
// Compiled programs are cached by expression text.
package filter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/cel-go/cel"

	"github.com/tomtom215/propsight/internal/cache"
	"github.com/tomtom215/propsight/internal/recommend"
)

// ErrInvalidFilter is returned for expressions that do not compile, are not
// boolean, or fail at evaluation.
var ErrInvalidFilter = errors.New("invalid filter")

const (
	// MaxExpressionLength bounds the accepted expression size.
	MaxExpressionLength = 512

	// costLimit bounds evaluation work per listing.
	costLimit = 10_000

	programCacheSize = 256
)

// Compiler compiles and caches filter programs. It is safe for concurrent
// use.
type Compiler struct {
	env      *cel.Env
	programs *cache.LRU[cel.Program]
	now      func() time.Time
}

// NewCompiler creates a compiler. A nil clock uses time.Now; it only feeds
// the age_days field.
func NewCompiler(now func() time.Time) (*Compiler, error) {
	env, err := cel.NewEnv(
		cel.Variable("listing", cel.MapType(cel.StringType, cel.DynType)),
		cel.CrossTypeNumericComparisons(true),
	)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}
	if now == nil {
		now = time.Now
	}
	return &Compiler{
		env:      env,
		programs: cache.NewLRU[cel.Program](programCacheSize, 24*time.Hour),
		now:      now,
	}, nil
}

// Filter is a compiled expression.
type Filter struct {
	expr    string
	program cel.Program
	now     func() time.Time
}

// Compile parses and checks an expression. An empty expression yields a nil
// Filter, which matches everything.
func (c *Compiler) Compile(expr string) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	if len(expr) > MaxExpressionLength {
		return nil, fmt.Errorf("%w: expression longer than %d characters", ErrInvalidFilter, MaxExpressionLength)
	}

	if prg, ok := c.programs.Get(expr); ok {
		return &Filter{expr: expr, program: prg, now: c.now}, nil
	}

	ast, issues := c.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, issues.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("%w: expression must be boolean, got %s", ErrInvalidFilter, out)
	}

	prg, err := c.env.Program(ast, cel.CostLimit(costLimit))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	c.programs.Set(expr, prg)
	return &Filter{expr: expr, program: prg, now: c.now}, nil
}

// String returns the expression text.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.expr
}

// Match evaluates the filter for one listing.
//
//nolint:gocritic // hugeParam: listing passed by value, it is read-only here
func (f *Filter) Match(l recommend.Listing) (bool, error) {
	if f == nil {
		return true, nil
	}
	out, _, err := f.program.Eval(map[string]any{"listing": Activation(l, f.now())})
	if err != nil {
		return false, fmt.Errorf("%w: listing %s: %v", ErrInvalidFilter, l.ID, err)
	}
	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w: expression must be boolean, got %T", ErrInvalidFilter, out.Value())
	}
	return matched, nil
}

// Apply returns the listings that match, preserving order. A nil Filter
// returns the input unchanged.
func (f *Filter) Apply(listings []recommend.Listing) ([]recommend.Listing, error) {
	if f == nil {
		return listings, nil
	}
	out := make([]recommend.Listing, 0, len(listings))
	for i := range listings {
		ok, err := f.Match(listings[i])
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, listings[i])
		}
	}
	return out, nil
}

// Activation returns the fields a filter can reference.
//
//nolint:gocritic // hugeParam: listing passed by value, it is read-only here
func Activation(l recommend.Listing, now time.Time) map[string]any {
	ageDays := int64(0)
	if !l.CreatedAt.IsZero() && now.After(l.CreatedAt) {
		ageDays = int64(now.Sub(l.CreatedAt).Hours() / 24)
	}
	return map[string]any{
		"id":             l.ID,
		"title":          l.Title,
		"price":          l.Price,
		"discount_price": l.DiscountPrice,
		"offer":          l.Offer,
		"bedrooms":       int64(l.Bedrooms),
		"bathrooms":      int64(l.Bathrooms),
		"area":           l.Area,
		"type":           strings.ToLower(l.Type),
		"city":           l.City,
		"state":          l.State,
		"property_age":   int64(l.PropertyAge),
		"view_count":     int64(l.ViewCount),
		"wishlist_count": int64(l.WishlistCount),
		"booking_count":  int64(l.BookingCount),
		"rating":         l.Rating,
		"review_count":   int64(l.ReviewCount),
		"age_days":       ageDays,
		"amenities": map[string]any{
			"furnished":    l.Amenities.Furnished,
			"parking":      l.Amenities.Parking,
			"gym":          l.Amenities.Gym,
			"pool":         l.Amenities.Pool,
			"garden":       l.Amenities.Garden,
			"security":     l.Amenities.Security,
			"lift":         l.Amenities.Lift,
			"power_backup": l.Amenities.PowerBackup,
			"count":        int64(l.Amenities.Count()),
		},
	}
}
