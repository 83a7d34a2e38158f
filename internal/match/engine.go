// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

package match

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/matchpulse/matchpulse/internal/config"
	"github.com/matchpulse/matchpulse/internal/match/solver"
	"github.com/matchpulse/matchpulse/internal/metrics"
)

// Engine coordinates the end-to-end matching pipeline. It is safe for
// concurrent use: all mutable state lives behind the StateProvider, and
// the CPU-bound scoring and assignment run on snapshot copies.
type Engine struct {
	state    StateProvider
	scorer   *Scorer
	solver   solver.Solver
	scoring  config.ScoringConfig
	pricing  config.PricingConfig
	fairness config.FairnessConfig
	feed     config.FeedConfig
	logger   zerolog.Logger
}

// NewEngine wires the matching core together.
func NewEngine(cfg *config.Config, model *Model, s solver.Solver, state StateProvider, logger zerolog.Logger) *Engine {
	return &Engine{
		state:    state,
		scorer:   NewScorer(model, logger),
		solver:   s,
		scoring:  cfg.Scoring,
		pricing:  cfg.Pricing,
		fairness: cfg.Fairness,
		feed:     cfg.Feed,
		logger:   logger.With().Str("component", "engine").Logger(),
	}
}

// SolveRequest carries the optional knobs for one solve run.
type SolveRequest struct {
	// Weights is accepted for wire compatibility but no longer read;
	// the calibrated predictor replaced the hand-tuned linear blend.
	Weights map[string]float64 `json:"weights,omitempty"`

	Pricing             *PricingOverrides `json:"pricing,omitempty"`
	UserIDs             []string          `json:"user_ids,omitempty"`
	TopKAlternatives    int               `json:"return_top_k_alternatives,omitempty"`
	EnableFairnessBoost bool              `json:"enable_fairness_boost,omitempty"`
	LambdaFair          *float64          `json:"lambda_fair,omitempty"`
}

// SolveResult is the outcome of one solve run.
type SolveResult struct {
	RunID             string                    `json:"run_id"`
	Assignments       []Assignment              `json:"assignments"`
	UnassignedUserIDs []string                  `json:"unassigned_user_ids"`
	Recommendations   map[string]Recommendation `json:"recommendations"`
	Explanations      map[string]*Explanation   `json:"explanations"`
	Pulses            map[string]float64        `json:"pulses"`
	Metrics           MarketMetrics             `json:"metrics"`
	Solver            string                    `json:"solver"`
	LatencyMS         int64                     `json:"latency_ms"`
}

// TrendingItem is one opportunity ranked by pulse movement.
type TrendingItem struct {
	EventID    string  `json:"event_id"`
	Title      string  `json:"title"`
	Pulse      float64 `json:"pulse"`
	PulseDelta float64 `json:"pulse_delta"`
}

// RebalanceResult is a solve preceded by a pulse refresh, with per-opp
// pulse deltas and the biggest movers.
type RebalanceResult struct {
	SolveResult
	PulseDeltas    map[string]float64 `json:"pulse_deltas"`
	TopPulseMovers []TrendingItem     `json:"top_pulse_movers"`
}

// pulseParams resolves configured pricing with per-request overrides.
func (e *Engine) pulseParams(overrides *PricingOverrides) PulseParams {
	params := PulseParams{
		LambdaPrice: e.pricing.LambdaPrice,
		LiquidityK:  e.pricing.LiquidityK,
		TauHours:    e.pricing.TauHours,
	}
	return params.WithOverrides(overrides)
}

// scoreOptions resolves scorer options for one run.
func (e *Engine) scoreOptions(req *SolveRequest, params PulseParams) ScoreOptions {
	lambdaFair := e.fairness.LambdaFair
	if req.LambdaFair != nil {
		lambdaFair = *req.LambdaFair
	}
	return ScoreOptions{
		DistanceScaleMins: e.scoring.DistanceScaleMins,
		LambdaPrice:       params.LambdaPrice,
		NewcomerBoost:     e.scoring.NewcomerBoost,
		ApplyFairness:     req.EnableFairnessBoost,
		LambdaFair:        lambdaFair,
	}
}

// filterUsers keeps only the requested users, preserving input order.
func filterUsers(users []User, ids []string) []User {
	if len(ids) == 0 {
		return users
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	filtered := make([]User, 0, len(ids))
	for i := range users {
		if _, ok := want[users[i].ID]; ok {
			filtered = append(filtered, users[i])
		}
	}
	return filtered
}

// Solve runs the full pipeline: refresh pulses, build the score matrix,
// assign under capacity, derive recommendations and marketplace
// metrics, and publish the assignment as the final step.
func (e *Engine) Solve(ctx context.Context, req SolveRequest) (*SolveResult, error) {
	start := time.Now()

	snap := e.state.Snapshot()
	if len(snap.Users) == 0 || len(snap.Opportunities) == 0 {
		metrics.ObserveSolve(start, "empty_store")
		return nil, ErrEmptyStore
	}

	params := e.pulseParams(req.Pricing)
	pulses := e.state.ComputePulses(params, false)

	result := e.solveWithPulses(ctx, &snap, req, params, pulses, start)
	return result, nil
}

// Rebalance refreshes pulses with history sampling, reports per-opp
// deltas and top movers, then re-runs the solve on the fresh pulses.
func (e *Engine) Rebalance(ctx context.Context, req SolveRequest) (*RebalanceResult, error) {
	start := time.Now()

	snap := e.state.Snapshot()
	if len(snap.Users) == 0 || len(snap.Opportunities) == 0 {
		metrics.ObserveSolve(start, "empty_store")
		return nil, ErrEmptyStore
	}

	params := e.pulseParams(req.Pricing)
	oldPulses := snap.Pulses
	newPulses := e.state.ComputePulses(params, true)

	deltas := make(map[string]float64, len(snap.Opportunities))
	for i := range snap.Opportunities {
		oppID := snap.Opportunities[i].ID
		deltas[oppID] = newPulses[oppID] - oldPulses[oppID]
	}

	movers := make([]TrendingItem, 0, len(snap.Opportunities))
	for i := range snap.Opportunities {
		opp := &snap.Opportunities[i]
		movers = append(movers, TrendingItem{
			EventID:    opp.ID,
			Title:      opp.Title,
			Pulse:      newPulses[opp.ID],
			PulseDelta: deltas[opp.ID],
		})
	}
	sort.Slice(movers, func(i, j int) bool {
		di, dj := math.Abs(movers[i].PulseDelta), math.Abs(movers[j].PulseDelta)
		if di != dj {
			return di > dj
		}
		return movers[i].EventID < movers[j].EventID
	})
	if len(movers) > 3 {
		movers = movers[:3]
	}

	result := e.solveWithPulses(ctx, &snap, req, params, newPulses, start)
	return &RebalanceResult{
		SolveResult:    *result,
		PulseDeltas:    deltas,
		TopPulseMovers: movers,
	}, nil
}

// solveWithPulses is the shared back half of Solve and Rebalance.
func (e *Engine) solveWithPulses(
	_ context.Context,
	snap *Snapshot,
	req SolveRequest,
	params PulseParams,
	pulses map[string]float64,
	start time.Time,
) *SolveResult {
	users := filterUsers(snap.Users, req.UserIDs)
	opps := snap.Opportunities

	if len(req.Weights) > 0 {
		e.logger.Debug().Int("count", len(req.Weights)).Msg("ignoring deprecated weight overrides")
	}

	opts := e.scoreOptions(&req, params)
	matrix, explanations := e.scorer.ScoreMatrix(users, opps, snap.Interactions, pulses, snap.LastAssignment, opts)

	userIDs := make([]string, len(users))
	for i := range users {
		userIDs[i] = users[i].ID
	}
	oppIDs := make([]string, len(opps))
	for i := range opps {
		oppIDs[i] = opps[i].ID
	}

	pairs, unassigned := e.solver.Solve(solver.Problem{
		Users:      userIDs,
		Opps:       oppIDs,
		Scores:     matrix,
		Capacities: snap.Capacities(),
	})

	assignments := make([]Assignment, len(pairs))
	for i, p := range pairs {
		assignments[i] = Assignment{UserID: p.UserID, OppID: p.OppID}
	}

	topK := req.TopKAlternatives
	if topK <= 0 {
		topK = 3
	}
	recommendations := BuildRecommendations(users, matrix, assignments, topK)

	market := ComputeMarketMetrics(users, opps, assignments, pulses, snap.Interactions, recommendations)

	// Publishing the assignment is deliberately the final mutation.
	e.state.SetLastAssignment(assignments)

	metrics.ObserveSolve(start, "ok")
	metrics.AssignedUsers.Set(float64(len(assignments)))
	metrics.UnassignedUsers.Set(float64(len(unassigned)))

	runID := uuid.NewString()
	latency := time.Since(start).Milliseconds()
	e.logger.Info().
		Str("run_id", runID).
		Int("users", len(users)).
		Int("assigned", len(assignments)).
		Int("unassigned", len(unassigned)).
		Int64("latency_ms", latency).
		Msg("solve complete")

	return &SolveResult{
		RunID:             runID,
		Assignments:       assignments,
		UnassignedUserIDs: unassigned,
		Recommendations:   recommendations,
		Explanations:      explanations,
		Pulses:            pulses,
		Metrics:           market,
		Solver:            e.solver.Name(),
		LatencyMS:         latency,
	}
}

// Explain scores a single (user, event) pair and returns its breakdown.
// Pairs gated out by availability return ErrInfeasiblePair.
func (e *Engine) Explain(_ context.Context, userID, eventID string) (*Explanation, error) {
	snap := e.state.Snapshot()

	user, ok := findUser(snap.Users, userID)
	if !ok {
		return nil, ErrUserNotFound
	}
	opp, ok := findOpp(snap.Opportunities, eventID)
	if !ok {
		return nil, ErrEventNotFound
	}

	params := e.pulseParams(nil)
	pulses := e.state.ComputePulses(params, false)

	opts := e.scoreOptions(&SolveRequest{}, params)
	_, explanations := e.scorer.ScoreMatrix([]User{user}, []Opportunity{opp}, snap.Interactions, pulses, snap.LastAssignment, opts)

	expl, ok := explanations[ExplanationKey(userID, eventID)]
	if !ok {
		return nil, ErrInfeasiblePair
	}
	return expl, nil
}

// MetricsView is the marketplace metrics endpoint payload.
type MetricsView struct {
	Metrics     MarketMetrics      `json:"metrics"`
	Pulses      map[string]float64 `json:"pulses"`
	DemandByOpp map[string]float64 `json:"demand_by_opp"`
	ShownByOpp  map[string]int     `json:"shown_by_opp"`
}

// MarketplaceMetrics recomputes aggregate metrics from the current
// state and the last published assignment.
func (e *Engine) MarketplaceMetrics(_ context.Context) *MetricsView {
	snap := e.state.Snapshot()
	pulses := e.state.ComputePulses(e.pulseParams(nil), false)

	market := ComputeMarketMetrics(snap.Users, snap.Opportunities, snap.LastAssignment, pulses, snap.Interactions, nil)

	return &MetricsView{
		Metrics:     market,
		Pulses:      pulses,
		DemandByOpp: snap.NetDemand,
		ShownByOpp:  snap.ShownWindow,
	}
}

func findUser(users []User, id string) (User, bool) {
	for i := range users {
		if users[i].ID == id {
			return users[i], true
		}
	}
	return User{}, false
}

func findOpp(opps []Opportunity, id string) (Opportunity, bool) {
	for i := range opps {
		if opps[i].ID == id {
			return opps[i], true
		}
	}
	return Opportunity{}, false
}
