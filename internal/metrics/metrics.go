// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Solver metrics
	SolveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matchpulse_solve_duration_seconds",
			Help:    "Duration of end-to-end solve runs in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	SolveRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchpulse_solve_runs_total",
			Help: "Total number of solve runs by outcome",
		},
		[]string{"outcome"}, // "ok", "empty_store", "error"
	)

	SolverFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matchpulse_solver_fallbacks_total",
			Help: "Total number of times the greedy fallback replaced min-cost flow",
		},
	)

	AssignedUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "matchpulse_assigned_users",
			Help: "Users assigned in the most recent solve",
		},
	)

	UnassignedUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "matchpulse_unassigned_users",
			Help: "Users left unassigned in the most recent solve",
		},
	)

	// Store metrics
	FeedbackEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchpulse_feedback_events_total",
			Help: "Total feedback events recorded by type",
		},
		[]string{"event"}, // "shown", "clicked", "accepted", "declined", "attended"
	)

	RSVPAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchpulse_rsvp_attempts_total",
			Help: "Total RSVP attempts by status",
		},
		[]string{"status"}, // "CONFIRMED", "FULL", "CANCELLED"
	)

	StoreUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "matchpulse_store_users",
			Help: "Users currently loaded in the state store",
		},
	)

	StoreOpportunities = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "matchpulse_store_opportunities",
			Help: "Opportunities currently loaded in the state store",
		},
	)

	TrainingLogFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchpulse_training_log_failures_total",
			Help: "Training log writes that failed (best effort, never fatal)",
		},
		[]string{"log"}, // "impressions", "rsvps"
	)

	// HTTP metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "matchpulse_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)
)

// ObserveSolve records the duration and outcome of a solve run.
func ObserveSolve(start time.Time, outcome string) {
	SolveDuration.Observe(time.Since(start).Seconds())
	SolveRuns.WithLabelValues(outcome).Inc()
}
