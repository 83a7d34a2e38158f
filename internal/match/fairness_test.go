// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

package match

import "testing"

func TestExposureRates(t *testing.T) {
	users := []User{
		{ID: "u1", Cohort: "newcomer"},
		{ID: "u2", Cohort: "newcomer"},
		{ID: "u3", Cohort: "regular"},
		{ID: "u4"}, // no cohort, ignored
	}
	assignments := []Assignment{
		{UserID: "u1", OppID: "o1"},
		{UserID: "u3", OppID: "o1"},
		{UserID: "u4", OppID: "o2"},
	}

	rates := ExposureRates(users, assignments)
	if !almostEqual(rates["newcomer"], 0.5) {
		t.Errorf("newcomer rate = %v, want 0.5", rates["newcomer"])
	}
	if !almostEqual(rates["regular"], 1.0) {
		t.Errorf("regular rate = %v, want 1.0", rates["regular"])
	}
	if _, ok := rates[""]; ok {
		t.Error("empty cohort should not appear in rates")
	}
}

func TestFairnessGap(t *testing.T) {
	tests := []struct {
		name  string
		rates map[string]float64
		want  float64
	}{
		{"empty", nil, 0.0},
		{"single cohort", map[string]float64{"a": 0.4}, 0.0},
		{"spread", map[string]float64{"a": 0.2, "b": 0.9, "c": 0.5}, 0.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FairnessGap(tt.rates); !almostEqual(got, tt.want) {
				t.Errorf("FairnessGap = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFairnessBoost(t *testing.T) {
	rates := map[string]float64{"newcomer": 0.2, "regular": 0.8}

	trailing := User{ID: "u1", Cohort: "newcomer"}
	if got := FairnessBoost(&trailing, rates); !almostEqual(got, 0.6) {
		t.Errorf("trailing cohort boost = %v, want 0.6", got)
	}

	leading := User{ID: "u2", Cohort: "regular"}
	if got := FairnessBoost(&leading, rates); !almostEqual(got, 0.0) {
		t.Errorf("leading cohort boost = %v, want 0", got)
	}

	uncohorted := User{ID: "u3"}
	if got := FairnessBoost(&uncohorted, rates); !almostEqual(got, 0.0) {
		t.Errorf("uncohorted boost = %v, want 0", got)
	}
}
