// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

package solver

import (
	"math"

	"github.com/rs/zerolog"
)

// costScale quantizes float scores into integer arc costs.
const costScale = 100

// Pair is one user-to-opportunity assignment.
type Pair struct {
	UserID string
	OppID  string
}

// Problem is a capacity-constrained assignment instance. Users and Opps
// carry the input order; Scores holds only feasible pairs (an absent
// entry is a hard exclusion).
type Problem struct {
	Users      []string
	Opps       []string
	Scores     map[string]map[string]float64
	Capacities map[string]int
}

// Solver assigns each user to at most one opportunity, respecting
// capacities and maximizing total score. Leaving a user unassigned is
// always legal.
type Solver interface {
	// Name identifies the solver in logs and run metadata.
	Name() string

	// Solve returns the assignments plus unassigned user ids in input
	// order.
	Solve(p Problem) (assignments []Pair, unassigned []string)
}

// New resolves the solver at startup: min-cost flow when available,
// wrapped so any non-optimal outcome degrades to greedy. The fallback
// is a correctness path, not an optimality guarantee.
func New(logger zerolog.Logger) Solver {
	return &fallbackSolver{
		primary:    &MinCostFlow{},
		fallback:   &Greedy{},
		logger:     logger.With().Str("component", "solver").Logger(),
		onFallback: func() {},
	}
}

// NewWithFallbackHook is New with a callback invoked on every
// degradation, used to feed the fallback counter.
func NewWithFallbackHook(logger zerolog.Logger, onFallback func()) Solver {
	s := New(logger).(*fallbackSolver)
	if onFallback != nil {
		s.onFallback = onFallback
	}
	return s
}

// fallbackSolver runs the primary solver and degrades to the fallback
// when the primary cannot produce an optimal flow.
type fallbackSolver struct {
	primary    *MinCostFlow
	fallback   *Greedy
	logger     zerolog.Logger
	onFallback func()
}

func (f *fallbackSolver) Name() string { return f.primary.Name() }

func (f *fallbackSolver) Solve(p Problem) ([]Pair, []string) {
	assignments, unassigned, ok := f.primary.solve(p)
	if ok {
		return assignments, unassigned
	}
	f.logger.Warn().Msg("min-cost flow non-optimal, degrading to greedy assignment")
	f.onFallback()
	return f.fallback.Solve(p)
}

// costFor quantizes a score into a non-negative integer arc cost.
func costFor(score, maxScore float64) int {
	return int(math.Round((maxScore - score) * costScale))
}

// maxMatrixScore returns the largest score in the matrix, floored at 0.
func maxMatrixScore(scores map[string]map[string]float64) float64 {
	maxScore := 0.0
	for _, row := range scores {
		for _, s := range row {
			if s > maxScore {
				maxScore = s
			}
		}
	}
	return maxScore
}
