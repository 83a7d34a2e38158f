// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

// Package logging provides the zerolog-based global logger for MatchPulse.
//
// All packages log through this facade so that level and format are
// configured once at startup:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("component", "engine").Msg("solve complete")
//
// Components that hold a logger of their own derive it from Logger():
//
//	log := logging.Logger().With().Str("component", "store").Logger()
package logging
