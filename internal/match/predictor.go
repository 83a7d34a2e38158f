// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

package match

import (
	"math"
	"os"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// FeatureOrder is the fixed input ordering of the logistic predictor.
// Model artifacts must declare exactly this order or loading degrades
// to the zero-weight default.
var FeatureOrder = []string{
	"interest",
	"goal_match",
	"group_match",
	"travel_penalty",
	"intensity_mismatch",
	"novelty_bonus",
	"pulse_centered",
	"availability_ok",
}

// Model is a logistic regressor over the fixed feature order.
// It is read-only at serving time and safe for concurrent use.
type Model struct {
	FeatureOrder []string  `json:"feature_order"`
	Weights      []float64 `json:"weights"`
	Bias         float64   `json:"bias"`
}

// DefaultModel returns the zero-weight, zero-bias model. Its prediction
// is the sigmoid of zero: 0.5 for every input.
func DefaultModel() *Model {
	return &Model{
		FeatureOrder: append([]string(nil), FeatureOrder...),
		Weights:      make([]float64, len(FeatureOrder)),
		Bias:         0.0,
	}
}

// LoadModel reads the model artifact from path. Any failure (missing
// file, malformed JSON, wrong feature order, weight length mismatch)
// degrades softly to DefaultModel so the engine can always serve.
func LoadModel(path string, logger zerolog.Logger) *Model {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Info().Str("path", path).Msg("model artifact not found, using zero-weight default")
		return DefaultModel()
	}

	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("model artifact unreadable, using zero-weight default")
		return DefaultModel()
	}

	if !sameFeatureOrder(m.FeatureOrder) || len(m.Weights) != len(FeatureOrder) {
		logger.Warn().Str("path", path).Msg("model artifact has unexpected feature order, using zero-weight default")
		return DefaultModel()
	}

	logger.Info().Str("path", path).Msg("loaded RSVP model artifact")
	return &m
}

// sameFeatureOrder compares an artifact's feature order to FeatureOrder.
func sameFeatureOrder(order []string) bool {
	if len(order) != len(FeatureOrder) {
		return false
	}
	for i, name := range order {
		if name != FeatureOrder[i] {
			return false
		}
	}
	return true
}

// Predict evaluates the sigmoid of the affine combination of the named
// features. Missing features contribute zero.
func (m *Model) Predict(features map[string]float64) float64 {
	z := m.Bias
	for i, name := range m.FeatureOrder {
		z += m.Weights[i] * features[name]
	}
	return sigmoid(z)
}

// sigmoid is the standard logistic function.
func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
