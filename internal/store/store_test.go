// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

package store

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/matchpulse/matchpulse/internal/config"
	"github.com/matchpulse/matchpulse/internal/match"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	cfg := &config.Config{
		Pricing: config.PricingConfig{LambdaPrice: 1.0, LiquidityK: 5.0, TauHours: 12.0},
		// Empty log paths disable training logs in tests.
	}
	return New(cfg, zerolog.Nop())
}

func testParams() match.PulseParams {
	return match.PulseParams{LambdaPrice: 1.0, LiquidityK: 5.0, TauHours: 12.0}
}

func TestUpsertUserAssignsSequentialIDs(t *testing.T) {
	s := testStore(t)

	u1 := s.UpsertUser(match.User{})
	u2 := s.UpsertUser(match.User{})
	if u1.ID != "u1" || u2.ID != "u2" {
		t.Errorf("assigned ids = %q, %q, want u1, u2", u1.ID, u2.ID)
	}

	// Explicit ids are preserved; re-upserting replaces in place.
	named := s.UpsertUser(match.User{ID: "alice", Cohort: "newcomer"})
	if named.ID != "alice" {
		t.Errorf("explicit id = %q, want alice", named.ID)
	}
	s.UpsertUser(match.User{ID: "alice", Cohort: "regular"})

	snap := s.Snapshot()
	if len(snap.Users) != 3 {
		t.Fatalf("users = %d, want 3", len(snap.Users))
	}
	if snap.Users[2].Cohort != "regular" {
		t.Errorf("upsert did not replace: cohort = %q", snap.Users[2].Cohort)
	}
}

func TestSnapshotPreservesInsertionOrder(t *testing.T) {
	s := testStore(t)
	for _, id := range []string{"zeta", "alpha", "mid"} {
		s.CreateOpportunity(match.Opportunity{ID: id, Capacity: 5})
	}

	snap := s.Snapshot()
	got := []string{snap.Opportunities[0].ID, snap.Opportunities[1].ID, snap.Opportunities[2].ID}
	want := []string{"zeta", "alpha", "mid"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := testStore(t)
	s.UpsertUser(match.User{ID: "u1", InterestTags: []string{"music"}, Availability: []string{"sat_morning"}})
	s.CreateOpportunity(match.Opportunity{ID: "o1", Capacity: 5, Tags: []string{"music"}})

	snap := s.Snapshot()
	snap.Users[0].InterestTags[0] = "mutated"
	snap.Users[0].Availability[0] = "mutated"
	snap.Opportunities[0].Tags[0] = "mutated"
	snap.Pulses["o1"] = -1.0

	again := s.Snapshot()
	if again.Users[0].InterestTags[0] == "mutated" {
		t.Error("snapshot shares user interest slices with the store")
	}
	if again.Users[0].Availability[0] == "mutated" {
		t.Error("snapshot shares user availability slices with the store")
	}
	if again.Opportunities[0].Tags[0] == "mutated" {
		t.Error("snapshot shares opportunity tag slices with the store")
	}
	if again.Pulses["o1"] == -1.0 {
		t.Error("snapshot shares pulse map with the store")
	}
}

func TestSnapshotRSVPOrderDeterministic(t *testing.T) {
	s := testStore(t)
	for _, id := range []string{"zed", "ann", "mia"} {
		s.UpsertUser(match.User{ID: id})
	}
	s.CreateOpportunity(match.Opportunity{ID: "o1", Capacity: 5})
	for _, id := range []string{"zed", "ann", "mia"} {
		if _, err := s.RSVP(id, "o1"); err != nil {
			t.Fatalf("RSVP(%s): %v", id, err)
		}
	}

	snap := s.Snapshot()
	want := []string{"ann", "mia", "zed"}
	got := snap.RSVPs["o1"]
	if len(got) != len(want) {
		t.Fatalf("rsvps = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rsvps = %v, want sorted %v", got, want)
		}
	}
}

func TestSeedReplacesState(t *testing.T) {
	s := testStore(t)
	s.UpsertUser(match.User{ID: "old"})

	users, opps := s.Seed(
		[]match.User{{ID: "u1"}},
		[]match.Opportunity{{ID: "o1", Capacity: 3}},
		[]match.Interaction{{UserID: "u1", OppID: "o1", Event: match.EventClicked}},
	)
	if users != 1 || opps != 1 {
		t.Errorf("seed counts = (%d, %d), want (1, 1)", users, opps)
	}

	snap := s.Snapshot()
	if len(snap.Users) != 1 || snap.Users[0].ID != "u1" {
		t.Errorf("old state survived seed: %v", snap.Users)
	}
	// Replayed click contributes +0.2 demand.
	if snap.NetDemand["o1"] <= 0 {
		t.Errorf("net demand = %v, want > 0 after replayed click", snap.NetDemand["o1"])
	}
	if snap.ShownWindow["o1"] != 1 {
		t.Errorf("shown window = %d, want 1", snap.ShownWindow["o1"])
	}
}

func TestRecordFeedbackDemandDeltas(t *testing.T) {
	s := testStore(t)
	s.UpsertUser(match.User{ID: "u1"})
	s.CreateOpportunity(match.Opportunity{ID: "o1", Capacity: 5})

	if err := s.RecordFeedback("u1", "o1", match.EventAccepted); err != nil {
		t.Fatalf("RecordFeedback: %v", err)
	}
	if err := s.RecordFeedback("u1", "o1", match.EventDeclined); err != nil {
		t.Fatalf("RecordFeedback: %v", err)
	}

	snap := s.Snapshot()
	// +1.0 accepted - 0.5 declined, with negligible decay in between.
	if snap.NetDemand["o1"] < 0.49 || snap.NetDemand["o1"] > 0.51 {
		t.Errorf("net demand = %v, want ~0.5", snap.NetDemand["o1"])
	}
	if len(snap.Interactions) != 2 {
		t.Errorf("interactions = %d, want 2", len(snap.Interactions))
	}

	if err := s.RecordFeedback("u1", "ghost", match.EventClicked); !errors.Is(err, match.ErrEventNotFound) {
		t.Errorf("unknown event error = %v, want ErrEventNotFound", err)
	}
	if err := s.RecordFeedback("u1", "o1", "exploded"); err == nil {
		t.Error("unknown event type accepted")
	}
}

func TestDemandDecaysOverTime(t *testing.T) {
	s := testStore(t)
	s.UpsertUser(match.User{ID: "u1"})
	s.CreateOpportunity(match.Opportunity{ID: "o1", Capacity: 5})

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	current := base
	s.now = func() time.Time { return current }

	if err := s.RecordFeedback("u1", "o1", match.EventAccepted); err != nil {
		t.Fatalf("RecordFeedback: %v", err)
	}

	// One tau later the accumulator should have decayed to ~1/e.
	current = base.Add(12 * time.Hour)
	s.ComputePulses(testParams(), false)

	snap := s.Snapshot()
	if snap.NetDemand["o1"] < 0.36 || snap.NetDemand["o1"] > 0.38 {
		t.Errorf("decayed demand = %v, want ~0.368", snap.NetDemand["o1"])
	}
}

func TestComputePulses(t *testing.T) {
	s := testStore(t)
	s.UpsertUser(match.User{ID: "u1"})
	s.CreateOpportunity(match.Opportunity{ID: "hot", Capacity: 2})
	s.CreateOpportunity(match.Opportunity{ID: "quiet", Capacity: 2})

	for i := 0; i < 10; i++ {
		if err := s.RecordFeedback("u1", "hot", match.EventAccepted); err != nil {
			t.Fatalf("RecordFeedback: %v", err)
		}
	}

	pulses := s.ComputePulses(testParams(), false)
	if pulses["hot"] <= 50.0 {
		t.Errorf("hot pulse = %v, want > 50", pulses["hot"])
	}
	if !floatNear(pulses["quiet"], 50.0) {
		t.Errorf("quiet pulse = %v, want 50", pulses["quiet"])
	}

	// Published into subsequent snapshots.
	snap := s.Snapshot()
	if snap.Pulses["hot"] != pulses["hot"] {
		t.Errorf("snapshot pulse = %v, want %v", snap.Pulses["hot"], pulses["hot"])
	}
}

func TestComputePulsesHistoryBounded(t *testing.T) {
	s := testStore(t)
	s.CreateOpportunity(match.Opportunity{ID: "o1", Capacity: 2})

	for i := 0; i < match.PulseHistoryCap+10; i++ {
		s.ComputePulses(testParams(), true)
	}

	snap := s.Snapshot()
	if got := len(snap.PulseHistory["o1"]); got != match.PulseHistoryCap {
		t.Errorf("history length = %d, want %d", got, match.PulseHistoryCap)
	}

	// Plain pulse refreshes leave history untouched.
	s.ComputePulses(testParams(), false)
	snap = s.Snapshot()
	if got := len(snap.PulseHistory["o1"]); got != match.PulseHistoryCap {
		t.Errorf("history grew on non-recording refresh: %d", got)
	}
}

func TestRSVPLifecycle(t *testing.T) {
	s := testStore(t)
	s.UpsertUser(match.User{ID: "u1"})
	s.UpsertUser(match.User{ID: "u2"})
	s.UpsertUser(match.User{ID: "u3"})
	s.CreateOpportunity(match.Opportunity{ID: "o1", Capacity: 2})

	out, err := s.RSVP("u1", "o1")
	if err != nil || out.Status != RSVPConfirmed || out.RSVPCount != 1 || out.SpotsLeft != 1 {
		t.Fatalf("first RSVP = (%+v, %v), want CONFIRMED with 1 rsvp and 1 spot", out, err)
	}

	// Idempotent re-RSVP.
	out, _ = s.RSVP("u1", "o1")
	if out.Status != RSVPConfirmed || out.RSVPCount != 1 {
		t.Errorf("repeat RSVP = %+v, want CONFIRMED with 1 rsvp", out)
	}

	s.RSVP("u2", "o1")
	out, _ = s.RSVP("u3", "o1")
	if out.Status != RSVPFull || out.RSVPCount != 2 || out.SpotsLeft != 0 {
		t.Errorf("over-capacity RSVP = %+v, want FULL with 0 spots", out)
	}

	// Cancelling frees the spot for the next user.
	out, err = s.CancelRSVP("u1", "o1")
	if err != nil || out.Status != RSVPCancelled || out.RSVPCount != 1 || out.SpotsLeft != 1 {
		t.Fatalf("cancel = (%+v, %v), want CANCELLED with 1 rsvp and 1 spot", out, err)
	}
	out, _ = s.RSVP("u3", "o1")
	if out.Status != RSVPConfirmed {
		t.Errorf("post-cancel RSVP = %v, want CONFIRMED", out.Status)
	}

	// Confirmed RSVPs raise demand; each accepted adds +1.
	snap := s.Snapshot()
	if snap.NetDemand["o1"] <= 0 {
		t.Errorf("net demand = %v, want > 0 after confirmed RSVPs", snap.NetDemand["o1"])
	}

	if _, err := s.RSVP("ghost", "o1"); !errors.Is(err, match.ErrUserNotFound) {
		t.Errorf("unknown user RSVP error = %v, want ErrUserNotFound", err)
	}
	if _, err := s.RSVP("u1", "ghost"); !errors.Is(err, match.ErrEventNotFound) {
		t.Errorf("unknown event RSVP error = %v, want ErrEventNotFound", err)
	}
}

func TestUpdateOpportunityPatch(t *testing.T) {
	s := testStore(t)
	s.CreateOpportunity(match.Opportunity{ID: "o1", Title: "before", Capacity: 5})

	title := "after"
	capacity := 10
	updated, err := s.UpdateOpportunity("o1", OpportunityPatch{Title: &title, Capacity: &capacity})
	if err != nil {
		t.Fatalf("UpdateOpportunity: %v", err)
	}
	if updated.Title != "after" || updated.Capacity != 10 {
		t.Errorf("patched = %+v", updated)
	}

	// Unset fields stay put.
	if updated.ID != "o1" {
		t.Errorf("id changed to %q", updated.ID)
	}

	if _, err := s.UpdateOpportunity("ghost", OpportunityPatch{}); !errors.Is(err, match.ErrEventNotFound) {
		t.Errorf("unknown event patch error = %v, want ErrEventNotFound", err)
	}
}

func TestGetEvent(t *testing.T) {
	s := testStore(t)
	s.UpsertUser(match.User{ID: "u1"})
	s.CreateOpportunity(match.Opportunity{ID: "o1", Title: "Jam", Capacity: 3})
	s.RSVP("u1", "o1")
	s.ComputePulses(testParams(), true)

	detail, err := s.GetEvent("o1", false)
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if detail.RSVPCount != 1 || detail.SpotsLeft != 2 {
		t.Errorf("rsvp_count=%d spots_left=%d, want 1 and 2", detail.RSVPCount, detail.SpotsLeft)
	}
	if detail.PulseHistory != nil {
		t.Error("history included without include_history")
	}

	detail, _ = s.GetEvent("o1", true)
	if len(detail.PulseHistory) != 1 {
		t.Errorf("history length = %d, want 1", len(detail.PulseHistory))
	}

	if _, err := s.GetEvent("ghost", false); !errors.Is(err, match.ErrEventNotFound) {
		t.Errorf("unknown event error = %v, want ErrEventNotFound", err)
	}
}

func TestGetEventRecomputesPulse(t *testing.T) {
	s := testStore(t)
	s.UpsertUser(match.User{ID: "u1"})
	s.CreateOpportunity(match.Opportunity{ID: "o1", Capacity: 3})

	// Demand recorded without an intervening pulse refresh must still
	// show up on the detail read.
	for i := 0; i < 5; i++ {
		if err := s.RecordFeedback("u1", "o1", match.EventAccepted); err != nil {
			t.Fatalf("RecordFeedback: %v", err)
		}
	}

	detail, err := s.GetEvent("o1", false)
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if detail.Pulse <= 50.0 {
		t.Errorf("pulse = %v, want > 50 after accepted feedback", detail.Pulse)
	}

	// The read also applies decay to the accumulator.
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	current := base
	s.now = func() time.Time { return current }
	before, _ := s.GetEvent("o1", false)

	current = base.Add(12 * time.Hour)
	after, _ := s.GetEvent("o1", false)
	if after.NetDemand >= before.NetDemand {
		t.Errorf("net demand = %v, want decayed below %v", after.NetDemand, before.NetDemand)
	}
	if after.Pulse >= before.Pulse {
		t.Errorf("pulse = %v, want below %v after decay", after.Pulse, before.Pulse)
	}
}

func TestReset(t *testing.T) {
	s := testStore(t)
	s.UpsertUser(match.User{ID: "u1"})
	s.CreateOpportunity(match.Opportunity{ID: "o1", Capacity: 5})
	s.SetLastAssignment([]match.Assignment{{UserID: "u1", OppID: "o1"}})

	s.Reset()

	snap := s.Snapshot()
	if len(snap.Users) != 0 || len(snap.Opportunities) != 0 || len(snap.LastAssignment) != 0 {
		t.Errorf("state survived reset: %+v", snap)
	}

	// Sequences restart after reset.
	u := s.UpsertUser(match.User{})
	if u.ID != "u1" {
		t.Errorf("post-reset id = %q, want u1", u.ID)
	}
}

func floatNear(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
