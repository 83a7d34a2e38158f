// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

package solver

import (
	"testing"
)

func assignmentMap(pairs []Pair) map[string]string {
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		m[p.UserID] = p.OppID
	}
	return m
}

func TestMinCostFlowPrefersHigherScores(t *testing.T) {
	s := &MinCostFlow{}
	p := Problem{
		Users: []string{"u1", "u2"},
		Opps:  []string{"o1", "o2"},
		Scores: map[string]map[string]float64{
			"u1": {"o1": 0.9, "o2": 0.1},
			"u2": {"o1": 0.8, "o2": 0.7},
		},
		Capacities: map[string]int{"o1": 1, "o2": 1},
	}

	pairs, unassigned := s.Solve(p)
	if len(unassigned) != 0 {
		t.Fatalf("unassigned = %v, want none", unassigned)
	}
	got := assignmentMap(pairs)
	// Global optimum: u1→o1 (0.9) + u2→o2 (0.7) = 1.6 beats 0.8 + 0.1.
	if got["u1"] != "o1" || got["u2"] != "o2" {
		t.Errorf("assignments = %v, want u1:o1 u2:o2", got)
	}
}

func TestMinCostFlowRespectsCapacity(t *testing.T) {
	s := &MinCostFlow{}
	p := Problem{
		Users: []string{"u1", "u2", "u3"},
		Opps:  []string{"o1"},
		Scores: map[string]map[string]float64{
			"u1": {"o1": 0.9},
			"u2": {"o1": 0.8},
			"u3": {"o1": 0.7},
		},
		Capacities: map[string]int{"o1": 2},
	}

	pairs, unassigned := s.Solve(p)
	if len(pairs) != 2 {
		t.Errorf("assigned %d users to a capacity-2 event", len(pairs))
	}
	if len(pairs)+len(unassigned) != 3 {
		t.Errorf("partition broken: %d assigned + %d unassigned != 3", len(pairs), len(unassigned))
	}
}

func TestMinCostFlowZeroCapacityUnreachable(t *testing.T) {
	s := &MinCostFlow{}
	p := Problem{
		Users: []string{"u1"},
		Opps:  []string{"o1"},
		Scores: map[string]map[string]float64{
			"u1": {"o1": 1.0},
		},
		Capacities: map[string]int{"o1": 0},
	}

	pairs, unassigned := s.Solve(p)
	if len(pairs) != 0 {
		t.Errorf("assignments to zero-capacity event: %v", pairs)
	}
	if len(unassigned) != 1 || unassigned[0] != "u1" {
		t.Errorf("unassigned = %v, want [u1]", unassigned)
	}
}

func TestMinCostFlowHardExclusion(t *testing.T) {
	s := &MinCostFlow{}
	// u2 has no feasible pairs at all.
	p := Problem{
		Users: []string{"u1", "u2"},
		Opps:  []string{"o1"},
		Scores: map[string]map[string]float64{
			"u1": {"o1": 0.5},
			"u2": {},
		},
		Capacities: map[string]int{"o1": 5},
	}

	pairs, unassigned := s.Solve(p)
	got := assignmentMap(pairs)
	if got["u1"] != "o1" {
		t.Errorf("u1 assignment = %q, want o1", got["u1"])
	}
	if _, ok := got["u2"]; ok {
		t.Error("u2 assigned despite having no feasible pairs")
	}
	if len(unassigned) != 1 || unassigned[0] != "u2" {
		t.Errorf("unassigned = %v, want [u2]", unassigned)
	}
}

func TestMinCostFlowLeavesPoorFitsUnassigned(t *testing.T) {
	s := &MinCostFlow{}
	// Negative score: being unassigned (cost of score 0) is cheaper.
	p := Problem{
		Users: []string{"u1"},
		Opps:  []string{"o1"},
		Scores: map[string]map[string]float64{
			"u1": {"o1": -5.0},
		},
		Capacities: map[string]int{"o1": 1},
	}

	pairs, unassigned := s.Solve(p)
	if len(pairs) != 0 {
		t.Errorf("negative-score pair was forced: %v", pairs)
	}
	if len(unassigned) != 1 {
		t.Errorf("unassigned = %v, want [u1]", unassigned)
	}
}

func TestMinCostFlowDeterministic(t *testing.T) {
	s := &MinCostFlow{}
	p := Problem{
		Users: []string{"u1", "u2", "u3"},
		Opps:  []string{"o1", "o2", "o3"},
		Scores: map[string]map[string]float64{
			"u1": {"o1": 0.5, "o2": 0.5, "o3": 0.5},
			"u2": {"o1": 0.5, "o2": 0.5, "o3": 0.5},
			"u3": {"o1": 0.5, "o2": 0.5, "o3": 0.5},
		},
		Capacities: map[string]int{"o1": 1, "o2": 1, "o3": 1},
	}

	first, _ := s.Solve(p)
	for i := 0; i < 10; i++ {
		again, _ := s.Solve(p)
		if len(again) != len(first) {
			t.Fatalf("run %d: assignment count changed", i)
		}
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("run %d: assignment %d = %v, want %v", i, j, again[j], first[j])
			}
		}
	}
}

func TestMinCostFlowEmptyProblem(t *testing.T) {
	s := &MinCostFlow{}
	pairs, unassigned := s.Solve(Problem{})
	if len(pairs) != 0 || len(unassigned) != 0 {
		t.Errorf("empty problem = (%v, %v), want empty", pairs, unassigned)
	}
}
