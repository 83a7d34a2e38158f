// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

package demo

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/matchpulse/matchpulse/internal/config"
	"github.com/matchpulse/matchpulse/internal/match"
	"github.com/matchpulse/matchpulse/internal/match/solver"
	"github.com/matchpulse/matchpulse/internal/store"
)

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	cfg := &config.Config{
		Scoring:  config.ScoringConfig{DistanceScaleMins: 10.0, NewcomerBoost: 0.15},
		Pricing:  config.PricingConfig{LambdaPrice: 1.0, LiquidityK: 5.0, TauHours: 12.0},
		Fairness: config.FairnessConfig{LambdaFair: 0.5},
		Feed:     config.FeedConfig{DefaultLimit: 20, ColdStartShownThreshold: 3, ColdStartShare: 0.2},
	}
	logger := zerolog.Nop()
	st := store.New(cfg, logger)
	engine := match.NewEngine(cfg, match.DefaultModel(), solver.New(logger), st, logger)
	return NewRunner(st, engine, cfg, logger)
}

func TestStepBeforeSetup(t *testing.T) {
	r := newTestRunner(t)
	if _, err := r.Step(context.Background()); !errors.Is(err, ErrNotSetup) {
		t.Errorf("Step before Setup = %v, want ErrNotSetup", err)
	}
	if _, err := r.Simulate(context.Background(), SimulateRequest{}); !errors.Is(err, ErrNotSetup) {
		t.Errorf("Simulate before Setup = %v, want ErrNotSetup", err)
	}
}

func TestSetupSeedsMarketplace(t *testing.T) {
	r := newTestRunner(t)

	res, err := r.Setup(context.Background(), SetupRequest{Seed: 7, NumUsers: 25, NumOpps: 9})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if res.Users != 25 || res.Events != 9 {
		t.Errorf("seeded %d users, %d events, want 25 and 9", res.Users, res.Events)
	}
	if res.HotEventID == "" {
		t.Error("no hot event designated")
	}

	// The hot event is the tightest one.
	snap := r.store.Snapshot()
	hotCap := -1
	minCap := -1
	for _, o := range snap.Opportunities {
		if o.ID == res.HotEventID {
			hotCap = o.Capacity
		}
		if minCap == -1 || o.Capacity < minCap {
			minCap = o.Capacity
		}
	}
	if hotCap != minCap {
		t.Errorf("hot event capacity = %d, min capacity = %d", hotCap, minCap)
	}
}

func TestStepRaisesPulseWithinCapacity(t *testing.T) {
	r := newTestRunner(t)
	setup, err := r.Setup(context.Background(), SetupRequest{Seed: 11})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}

	lastRSVPs := 0
	for i := 0; i < 6; i++ {
		res, err := r.Step(context.Background())
		if err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
		if res.Step != i+1 {
			t.Errorf("step counter = %d, want %d", res.Step, i+1)
		}
		if res.HotEventID != setup.HotEventID {
			t.Errorf("hot event changed to %s", res.HotEventID)
		}
		if res.RSVPCount > res.Capacity {
			t.Errorf("rsvp_count %d exceeds capacity %d", res.RSVPCount, res.Capacity)
		}
		if res.RSVPCount < lastRSVPs {
			t.Errorf("rsvp_count decreased: %d -> %d", lastRSVPs, res.RSVPCount)
		}
		lastRSVPs = res.RSVPCount
	}

	// Sustained demand must have pushed the pulse above neutral.
	detail, err := r.store.GetEvent(setup.HotEventID, false)
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if detail.Pulse <= 50.0 {
		t.Errorf("hot pulse = %v, want > 50 after demand bursts", detail.Pulse)
	}
}

func TestSimulateOversubscribeScenario(t *testing.T) {
	r := newTestRunner(t)
	setup, err := r.Setup(context.Background(), SetupRequest{Seed: 5})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}

	res, err := r.Simulate(context.Background(), SimulateRequest{Steps: 4})
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if res.Scenario != ScenarioOversubscribe {
		t.Errorf("scenario = %q", res.Scenario)
	}
	if res.HotEventID != setup.HotEventID {
		t.Errorf("hot event = %s, want %s", res.HotEventID, setup.HotEventID)
	}
	if len(res.PulseSeries) != 4 {
		t.Errorf("pulse series length = %d, want 4", len(res.PulseSeries))
	}
	if last := res.PulseSeries[len(res.PulseSeries)-1]; last <= 50.0 {
		t.Errorf("final hot pulse = %v, want > 50", last)
	}
	if res.Assigned == 0 {
		t.Error("rebalance assigned nobody")
	}

	// The hot event's capacity bounds its share of the assignment.
	detail, _ := r.store.GetEvent(setup.HotEventID, false)
	if res.AssignedToHot > detail.Opportunity.Capacity {
		t.Errorf("assigned_to_hot %d exceeds capacity %d", res.AssignedToHot, detail.Opportunity.Capacity)
	}

	if _, err := r.Simulate(context.Background(), SimulateRequest{Scenario: "mystery"}); err == nil {
		t.Error("unknown scenario accepted")
	}
}
