// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

package match

import "errors"

// Sentinel errors surfaced by the matching core. The HTTP layer maps
// them onto status codes.
var (
	// ErrEmptyStore indicates solve/rebalance was called before any
	// users or opportunities were loaded.
	ErrEmptyStore = errors.New("no users/opportunities loaded")

	// ErrUserNotFound indicates a referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrEventNotFound indicates a referenced opportunity does not exist.
	ErrEventNotFound = errors.New("event not found")

	// ErrInfeasiblePair indicates an explanation was requested for a
	// pair gated out by availability.
	ErrInfeasiblePair = errors.New("no feasible match (availability mismatch)")
)
