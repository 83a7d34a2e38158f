// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

// Package demo drives scripted marketplace scenarios for walkthroughs:
// seeding a synthetic dataset, pushing demand at a designated hot
// event step by step, and running whole scenarios that show the pulse
// mechanism steering assignments away from oversubscribed events.
package demo
