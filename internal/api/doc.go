// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

// Package api is the HTTP surface of the matching engine, built on the
// chi router. Every endpoint responds with the standard envelope from
// response.go; engine sentinel errors map onto status codes in one
// place so handlers stay small.
package api
