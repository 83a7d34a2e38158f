// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

// Package match implements the matching core: feature extraction, the
// calibrated logistic predictor, the demand-to-pulse market maker, the
// scoring pipeline with explanations, cohort fairness, and the
// end-to-end engine that turns a state snapshot into assignments and
// recommendations.
//
// The package has no dependency on the state store. The Engine pulls
// everything it needs through the StateProvider interface, which the
// store package implements, so scoring and assignment run off the
// store's critical section: copy out under the lock, compute, publish
// the result back.
//
// # Scoring pipeline
//
// For each feasible (user, opportunity) pair the scorer combines the
// extracted features, goal match, the predictor output s_ml, a
// pulse-centering price adjustment, and optional cohort-fairness and
// newcomer boosts into a final score, and emits a full numeric
// breakdown for explanation.
//
// # Determinism
//
// Given identical inputs every component in this package is fully
// deterministic: no randomness, stable iteration over the ordered user
// and opportunity lists, index tie-breaks in the solver and sorts.
package match
