// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

// Package metrics registers the Prometheus instruments for MatchPulse:
// solve latency and outcomes, solver fallbacks, feedback and RSVP
// counters, store population gauges, and HTTP request durations. The
// collectors are registered with promauto at init and exposed via
// promhttp on /metrics/prom.
package metrics
