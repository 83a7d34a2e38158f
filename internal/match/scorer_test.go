// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

package match

import (
	"testing"

	"github.com/rs/zerolog"
)

func testScoreOptions() ScoreOptions {
	return ScoreOptions{
		DistanceScaleMins: 10.0,
		LambdaPrice:       1.0,
		NewcomerBoost:     0.15,
	}
}

func TestScoreMatrixSkipsInfeasiblePairs(t *testing.T) {
	s := NewScorer(DefaultModel(), zerolog.Nop())

	users := []User{{ID: "u1", Availability: []string{"sat_morning"}, GroupPref: GroupMedium, IntensityPref: IntensityMed}}
	opps := []Opportunity{
		{ID: "o1", TimeBucket: "sat_morning", Capacity: 5, GroupSize: GroupMedium, Intensity: IntensityMed},
		{ID: "o2", TimeBucket: "sun_evening", Capacity: 5, GroupSize: GroupMedium, Intensity: IntensityMed},
	}

	matrix, explanations := s.ScoreMatrix(users, opps, nil, nil, nil, testScoreOptions())

	if _, ok := matrix["u1"]["o1"]; !ok {
		t.Error("feasible pair missing from matrix")
	}
	if _, ok := matrix["u1"]["o2"]; ok {
		t.Error("availability-gated pair should be absent from matrix")
	}
	if _, ok := explanations[ExplanationKey("u1", "o2")]; ok {
		t.Error("availability-gated pair should have no explanation")
	}
}

func TestScoreMatrixPriceAdjustment(t *testing.T) {
	s := NewScorer(DefaultModel(), zerolog.Nop())

	users := []User{{ID: "u1", GroupPref: GroupMedium, IntensityPref: IntensityMed}}
	opps := []Opportunity{
		{ID: "hot", Capacity: 5, GroupSize: GroupMedium, Intensity: IntensityMed},
		{ID: "cold", Capacity: 5, GroupSize: GroupMedium, Intensity: IntensityMed},
	}
	pulses := map[string]float64{"hot": 90.0, "cold": 10.0}

	matrix, explanations := s.ScoreMatrix(users, opps, nil, pulses, nil, testScoreOptions())

	// Identical features, so the hot event's higher pulse must cost it.
	if matrix["u1"]["hot"] >= matrix["u1"]["cold"] {
		t.Errorf("hot pulse should be penalized: hot=%v cold=%v", matrix["u1"]["hot"], matrix["u1"]["cold"])
	}

	hot := explanations[ExplanationKey("u1", "hot")]
	if !almostEqual(hot.Breakdown["price_adjustment"], -40.0) {
		t.Errorf("hot price_adjustment = %v, want -40 (lambda 1.0 * centered 40)", hot.Breakdown["price_adjustment"])
	}
}

func TestScoreMatrixMissingPulseDefaultsNeutral(t *testing.T) {
	s := NewScorer(DefaultModel(), zerolog.Nop())
	users := []User{{ID: "u1", GroupPref: GroupMedium, IntensityPref: IntensityMed}}
	opps := []Opportunity{{ID: "o1", Capacity: 5, GroupSize: GroupMedium, Intensity: IntensityMed}}

	_, explanations := s.ScoreMatrix(users, opps, nil, map[string]float64{}, nil, testScoreOptions())
	expl := explanations[ExplanationKey("u1", "o1")]
	if !almostEqual(expl.Breakdown["pulse"], 50.0) {
		t.Errorf("missing pulse defaulted to %v, want 50", expl.Breakdown["pulse"])
	}
	if !almostEqual(expl.Breakdown["price_adjustment"], 0.0) {
		t.Errorf("neutral pulse price_adjustment = %v, want 0", expl.Breakdown["price_adjustment"])
	}
}

func TestScoreMatrixNewcomerBoost(t *testing.T) {
	s := NewScorer(DefaultModel(), zerolog.Nop())

	users := []User{
		{ID: "new", Cohort: "Newcomer", GroupPref: GroupMedium, IntensityPref: IntensityMed},
		{ID: "reg", Cohort: "regular", GroupPref: GroupMedium, IntensityPref: IntensityMed},
	}
	opps := []Opportunity{
		{ID: "friendly", Capacity: 5, BeginnerFriendly: true, GroupSize: GroupMedium, Intensity: IntensityMed},
		{ID: "plain", Capacity: 5, GroupSize: GroupMedium, Intensity: IntensityMed},
	}

	_, explanations := s.ScoreMatrix(users, opps, nil, nil, nil, testScoreOptions())

	boosted := explanations[ExplanationKey("new", "friendly")]
	if !almostEqual(boosted.Breakdown["newcomer_boost"], 0.15) {
		t.Errorf("newcomer_boost = %v, want 0.15", boosted.Breakdown["newcomer_boost"])
	}
	if !almostEqual(boosted.Breakdown["s_ml"], 0.5*1.15) {
		t.Errorf("s_ml = %v, want %v", boosted.Breakdown["s_ml"], 0.5*1.15)
	}
	if !containsChip(boosted.ReasonChips, chipNewcomer) {
		t.Errorf("boosted pair missing newcomer chip: %v", boosted.ReasonChips)
	}

	for _, key := range []string{
		ExplanationKey("new", "plain"),
		ExplanationKey("reg", "friendly"),
	} {
		expl := explanations[key]
		if !almostEqual(expl.Breakdown["newcomer_boost"], 0.0) {
			t.Errorf("%s newcomer_boost = %v, want 0", key, expl.Breakdown["newcomer_boost"])
		}
	}
}

func TestScoreMatrixFairnessBoost(t *testing.T) {
	s := NewScorer(DefaultModel(), zerolog.Nop())

	users := []User{
		{ID: "u1", Cohort: "a", GroupPref: GroupMedium, IntensityPref: IntensityMed},
		{ID: "u2", Cohort: "b", GroupPref: GroupMedium, IntensityPref: IntensityMed},
	}
	opps := []Opportunity{{ID: "o1", Capacity: 5, GroupSize: GroupMedium, Intensity: IntensityMed}}
	last := []Assignment{{UserID: "u2", OppID: "o1"}} // cohort b fully exposed

	opts := testScoreOptions()
	opts.ApplyFairness = true
	opts.LambdaFair = 0.5

	_, explanations := s.ScoreMatrix(users, opps, nil, nil, last, opts)

	trailing := explanations[ExplanationKey("u1", "o1")]
	if !almostEqual(trailing.Breakdown["fairness_boost"], 1.0) {
		t.Errorf("trailing fairness_boost = %v, want 1.0", trailing.Breakdown["fairness_boost"])
	}
	leading := explanations[ExplanationKey("u2", "o1")]
	if !almostEqual(leading.Breakdown["fairness_boost"], 0.0) {
		t.Errorf("leading fairness_boost = %v, want 0", leading.Breakdown["fairness_boost"])
	}
	if trailing.Score <= leading.Score {
		t.Errorf("fairness boost should lift the trailing cohort: %v vs %v", trailing.Score, leading.Score)
	}
}

func containsChip(chips []string, want string) bool {
	for _, c := range chips {
		if c == want {
			return true
		}
	}
	return false
}
