// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

// Package solver implements the capacity-constrained assignment step.
//
// Two solvers implement the Solver interface:
//
//   - MinCostFlow: successive shortest paths with Johnson potentials
//     over a source → users → opportunities → sink graph. Every user
//     carries an overflow arc straight to the sink priced at the cost
//     of a zero score, so users are left unassigned instead of being
//     forced into poor fits.
//   - Greedy: first-fit by descending score, the degradation path used
//     when the flow solver reports a non-optimal result.
//
// Scores are quantized to integer costs (scale 100) as
// cost = round((max_score − score) · 100), making the minimum-cost flow
// the maximum-total-score assignment.
//
// Tie-breaking between equally-priced optimal flows follows arc
// insertion order, which tracks the input user and opportunity order,
// so repeated solves over identical state return identical assignments.
package solver
