// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

package demo

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/rs/zerolog"

	"github.com/matchpulse/matchpulse/internal/config"
	"github.com/matchpulse/matchpulse/internal/match"
	"github.com/matchpulse/matchpulse/internal/store"
)

// ErrNotSetup is returned when Step or Simulate runs before Setup.
var ErrNotSetup = errors.New("demo not set up")

// ErrUnknownScenario is returned for scenario names Simulate does not know.
var ErrUnknownScenario = errors.New("unknown scenario")

// ScenarioOversubscribe floods one event with demand and lets the
// market maker price users toward alternatives.
const ScenarioOversubscribe = "oversubscribe_one_event"

// Runner drives demo scenarios against the live store and engine.
type Runner struct {
	store  *store.Store
	engine *match.Engine
	params match.PulseParams
	logger zerolog.Logger

	mu         sync.Mutex
	hotEventID string
	step       int
	rng        *rand.Rand
}

// NewRunner wires a demo runner to the application's store and engine.
func NewRunner(st *store.Store, engine *match.Engine, cfg *config.Config, logger zerolog.Logger) *Runner {
	return &Runner{
		store:  st,
		engine: engine,
		params: match.PulseParams{
			LambdaPrice: cfg.Pricing.LambdaPrice,
			LiquidityK:  cfg.Pricing.LiquidityK,
			TauHours:    cfg.Pricing.TauHours,
		},
		logger: logger.With().Str("component", "demo").Logger(),
	}
}

// SetupRequest tunes the synthetic dataset.
type SetupRequest struct {
	Seed     int64 `json:"seed,omitempty"`
	NumUsers int   `json:"num_users,omitempty"`
	NumOpps  int   `json:"num_opps,omitempty"`
}

// SetupResult reports the seeded marketplace.
type SetupResult struct {
	Users      int    `json:"users"`
	Events     int    `json:"events"`
	HotEventID string `json:"hot_event_id"`
	Seed       int64  `json:"seed"`
}

// Setup replaces the store with a synthetic marketplace and designates
// the smallest-capacity event as the scenario's hot event.
func (r *Runner) Setup(_ context.Context, req SetupRequest) (*SetupResult, error) {
	if req.Seed == 0 {
		req.Seed = 42
	}
	if req.NumUsers <= 0 {
		req.NumUsers = 40
	}
	if req.NumOpps <= 0 {
		req.NumOpps = 12
	}

	users, opps := store.GenerateSynthetic(req.Seed, req.NumUsers, req.NumOpps)

	// The tightest event makes the oversubscription story visible fast.
	hot := opps[0]
	for _, o := range opps[1:] {
		if o.Capacity < hot.Capacity {
			hot = o
		}
	}

	numUsers, numOpps := r.store.Seed(users, opps, nil)

	r.mu.Lock()
	r.hotEventID = hot.ID
	r.step = 0
	r.rng = rand.New(rand.NewSource(req.Seed))
	r.mu.Unlock()

	r.logger.Info().
		Int64("seed", req.Seed).
		Int("users", numUsers).
		Int("events", numOpps).
		Str("hot_event", hot.ID).
		Msg("demo marketplace seeded")

	return &SetupResult{
		Users:      numUsers,
		Events:     numOpps,
		HotEventID: hot.ID,
		Seed:       req.Seed,
	}, nil
}

// StepResult reports the state change from one demand burst.
type StepResult struct {
	Step        int     `json:"step"`
	HotEventID  string  `json:"hot_event_id"`
	PulseBefore float64 `json:"pulse_before"`
	PulseAfter  float64 `json:"pulse_after"`
	RSVPCount   int     `json:"rsvp_count"`
	Capacity    int     `json:"capacity"`
	Clicks      int     `json:"clicks"`
	Accepts     int     `json:"accepts"`
}

// Step fires one burst of clicks and RSVP attempts at the hot event
// and reports the pulse movement. RSVP count never exceeds capacity;
// FULL outcomes still feed demand through their preceding clicks.
func (r *Runner) Step(_ context.Context) (*StepResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hotID := r.hotEventID
	rng := r.rng
	if hotID == "" {
		return nil, ErrNotSetup
	}
	r.step++
	step := r.step

	before, err := r.store.GetEvent(hotID, false)
	if err != nil {
		return nil, fmt.Errorf("hot event vanished: %w", err)
	}

	snap := r.store.Snapshot()
	if len(snap.Users) == 0 {
		return nil, ErrNotSetup
	}

	clicks := 0
	accepts := 0
	burst := 3 + rng.Intn(3)
	for i := 0; i < burst; i++ {
		user := snap.Users[rng.Intn(len(snap.Users))]

		if err := r.store.RecordFeedback(user.ID, hotID, match.EventClicked); err != nil {
			continue
		}
		clicks++

		if rng.Float64() < 0.7 {
			out, err := r.store.RSVP(user.ID, hotID)
			if err == nil && out.Status == store.RSVPConfirmed {
				accepts++
			}
		}
	}

	r.store.ComputePulses(r.params, true)
	after, err := r.store.GetEvent(hotID, false)
	if err != nil {
		return nil, err
	}

	return &StepResult{
		Step:        step,
		HotEventID:  hotID,
		PulseBefore: before.Pulse,
		PulseAfter:  after.Pulse,
		RSVPCount:   after.RSVPCount,
		Capacity:    after.Opportunity.Capacity,
		Clicks:      clicks,
		Accepts:     accepts,
	}, nil
}

// SimulateRequest selects and sizes a scenario.
type SimulateRequest struct {
	Scenario string `json:"scenario,omitempty"`
	Steps    int    `json:"steps,omitempty"`
}

// SimulateResult is the scenario outcome: the pulse trajectory of the
// hot event and the rebalanced assignment that routed around it.
type SimulateResult struct {
	Scenario       string               `json:"scenario"`
	HotEventID     string               `json:"hot_event_id"`
	PulseSeries    []float64            `json:"pulse_series"`
	TopPulseMovers []match.TrendingItem `json:"top_pulse_movers"`
	Assigned       int                  `json:"assigned"`
	Unassigned     int                  `json:"unassigned"`
	AssignedToHot  int                  `json:"assigned_to_hot"`
}

// Simulate runs a whole scenario end to end. The only scenario today is
// oversubscribe_one_event, which is also the default.
func (r *Runner) Simulate(ctx context.Context, req SimulateRequest) (*SimulateResult, error) {
	if req.Scenario == "" {
		req.Scenario = ScenarioOversubscribe
	}
	if req.Scenario != ScenarioOversubscribe {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScenario, req.Scenario)
	}
	if req.Steps <= 0 {
		req.Steps = 5
	}

	r.mu.Lock()
	hotID := r.hotEventID
	r.mu.Unlock()
	if hotID == "" {
		return nil, ErrNotSetup
	}

	series := make([]float64, 0, req.Steps)
	for i := 0; i < req.Steps; i++ {
		stepRes, err := r.Step(ctx)
		if err != nil {
			return nil, err
		}
		series = append(series, stepRes.PulseAfter)
	}

	rebalanced, err := r.engine.Rebalance(ctx, match.SolveRequest{})
	if err != nil {
		return nil, err
	}

	toHot := 0
	for _, a := range rebalanced.Assignments {
		if a.OppID == hotID {
			toHot++
		}
	}

	return &SimulateResult{
		Scenario:       req.Scenario,
		HotEventID:     hotID,
		PulseSeries:    series,
		TopPulseMovers: rebalanced.TopPulseMovers,
		Assigned:       len(rebalanced.Assignments),
		Unassigned:     len(rebalanced.UnassignedUserIDs),
		AssignedToHot:  toHot,
	}, nil
}
