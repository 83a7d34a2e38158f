// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

package match

import (
	"math"
	"strings"

	"github.com/rs/zerolog"
)

// newcomerLabels are the cohort tags that qualify for the newcomer boost.
var newcomerLabels = map[string]struct{}{
	"newcomer":   {},
	"first_time": {},
	"first-time": {},
	"new":        {},
}

// ScoreOptions tune one scoring run.
type ScoreOptions struct {
	DistanceScaleMins float64
	LambdaPrice       float64
	NewcomerBoost     float64
	ApplyFairness     bool
	LambdaFair        float64
}

// Scorer builds the score matrix and explanations for every feasible
// (user, opportunity) pair. It is stateless apart from the read-only
// model and safe for concurrent use.
type Scorer struct {
	model  *Model
	logger zerolog.Logger
}

// NewScorer creates a scorer around the given predictor model.
func NewScorer(model *Model, logger zerolog.Logger) *Scorer {
	return &Scorer{
		model:  model,
		logger: logger.With().Str("component", "scorer").Logger(),
	}
}

// ScoreMatrix computes scores and explanations for all pairs. Pairs
// failing the availability hard gate are skipped entirely: they appear
// in neither the matrix nor the explanation map. Pulses absent from the
// map default to the neutral 50.
func (s *Scorer) ScoreMatrix(
	users []User,
	opps []Opportunity,
	interactions []Interaction,
	pulses map[string]float64,
	lastAssignment []Assignment,
	opts ScoreOptions,
) (map[string]map[string]float64, map[string]*Explanation) {
	matrix := make(map[string]map[string]float64, len(users))
	explanations := make(map[string]*Explanation)

	var rates map[string]float64
	if opts.ApplyFairness {
		rates = ExposureRates(users, lastAssignment)
	}

	for ui := range users {
		user := &users[ui]
		matrix[user.ID] = make(map[string]float64, len(opps))
		_, isNewcomer := newcomerLabels[strings.ToLower(user.Cohort)]

		for oi := range opps {
			opp := &opps[oi]

			features, chips := ExtractFeatures(user, opp, interactions, opts.DistanceScaleMins)
			if features.AvailabilityOK < 0.5 {
				continue
			}

			goalMatch := GoalMatch(user, opp)
			pulse, ok := pulses[opp.ID]
			if !ok {
				pulse = 50.0
			}
			pulseCentered := pulse - 50.0

			mlFeatures := map[string]float64{
				"interest":           features.Interest,
				"goal_match":         goalMatch,
				"group_match":        features.GroupMatch,
				"travel_penalty":     features.TravelPenalty,
				"intensity_mismatch": features.IntensityMismatch,
				"novelty_bonus":      features.NoveltyBonus,
				"pulse_centered":     pulseCentered,
				"availability_ok":    features.AvailabilityOK,
			}
			sMLRaw := s.model.Predict(mlFeatures)

			sML := sMLRaw
			newcomerBoost := 0.0
			if isNewcomer && opp.BeginnerFriendly && opts.NewcomerBoost > 0 {
				newcomerBoost = opts.NewcomerBoost
				sML = math.Min(1.0, sMLRaw*(1.0+newcomerBoost))
				chips = append(chips, chipNewcomer)
			}

			priceAdjustment := -opts.LambdaPrice * pulseCentered

			boost := 0.0
			fairnessTerm := 0.0
			if opts.ApplyFairness {
				boost = FairnessBoost(user, rates)
				fairnessTerm = opts.LambdaFair * boost
			}

			final := sML + priceAdjustment + fairnessTerm

			matrix[user.ID][opp.ID] = final
			explanations[ExplanationKey(user.ID, opp.ID)] = &Explanation{
				Score: final,
				Breakdown: map[string]float64{
					"interest":           features.Interest,
					"goal_match":         goalMatch,
					"group_match":        features.GroupMatch,
					"travel_minutes":     features.TravelMinutes,
					"travel_penalty":     features.TravelPenalty,
					"intensity_mismatch": features.IntensityMismatch,
					"novelty_bonus":      features.NoveltyBonus,
					"availability_ok":    features.AvailabilityOK,
					"s_ml_raw":           sMLRaw,
					"newcomer_boost":     newcomerBoost,
					"s_ml":               sML,
					"pulse":              pulse,
					"pulse_centered":     pulseCentered,
					"price_adjustment":   priceAdjustment,
					"fairness_boost":     boost,
					"final_score":        final,
				},
				ReasonChips: chips,
			}
		}
	}

	s.logger.Debug().
		Int("users", len(users)).
		Int("opps", len(opps)).
		Int("pairs", len(explanations)).
		Msg("score matrix built")

	return matrix, explanations
}
