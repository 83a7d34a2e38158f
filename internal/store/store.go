// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/matchpulse/matchpulse/internal/config"
	"github.com/matchpulse/matchpulse/internal/match"
	"github.com/matchpulse/matchpulse/internal/metrics"
)

// RSVPStatus is the outcome of an RSVP attempt.
type RSVPStatus string

// RSVP outcomes.
const (
	RSVPConfirmed RSVPStatus = "CONFIRMED"
	RSVPFull      RSVPStatus = "FULL"
	RSVPCancelled RSVPStatus = "CANCELLED"
)

// oppState is the mutable per-opportunity market state.
type oppState struct {
	pulse        float64
	netDemand    float64
	lastDemandTS time.Time
	shownWindow  int
	rsvps        map[string]struct{}
	pulseHistory []match.PulsePoint
}

// Store holds all mutable application state behind one mutex.
// It implements match.StateProvider.
type Store struct {
	mu sync.Mutex

	users     map[string]match.User
	userOrder []string
	opps      map[string]match.Opportunity
	oppState  map[string]*oppState
	oppOrder  []string

	interactions   []match.Interaction
	lastAssignment []match.Assignment

	userSeq int
	oppSeq  int

	tauHours   float64
	liquidityK float64
	now        func() time.Time
	logger     zerolog.Logger

	impressionsLog *trainLog
	rsvpLog        *trainLog
}

// New creates an empty store. TauHours from the pricing config governs
// demand decay applied at feedback time; LiquidityK governs the pulse
// recomputed on event reads.
func New(cfg *config.Config, logger zerolog.Logger) *Store {
	storeLogger := logger.With().Str("component", "store").Logger()
	return &Store{
		users:          make(map[string]match.User),
		opps:           make(map[string]match.Opportunity),
		oppState:       make(map[string]*oppState),
		tauHours:       cfg.Pricing.TauHours,
		liquidityK:     cfg.Pricing.LiquidityK,
		now:            time.Now,
		logger:         storeLogger,
		impressionsLog: newTrainLog(cfg.Model.ImpressionsLogPath, "impressions", storeLogger),
		rsvpLog:        newTrainLog(cfg.Model.EventsLogPath, "rsvps", storeLogger),
	}
}

// Reset drops all state, returning the store to its initial condition.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	s.publishGaugesLocked()
}

func (s *Store) resetLocked() {
	s.users = make(map[string]match.User)
	s.userOrder = nil
	s.opps = make(map[string]match.Opportunity)
	s.oppState = make(map[string]*oppState)
	s.oppOrder = nil
	s.interactions = nil
	s.lastAssignment = nil
	s.userSeq = 0
	s.oppSeq = 0
}

func (s *Store) publishGaugesLocked() {
	metrics.StoreUsers.Set(float64(len(s.users)))
	metrics.StoreOpportunities.Set(float64(len(s.opps)))
}

// Seed replaces all state with the given dataset and returns the loaded
// counts. Interactions are replayed into the demand accumulators so a
// seeded marketplace starts with realistic pulses.
func (s *Store) Seed(users []match.User, opps []match.Opportunity, interactions []match.Interaction) (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()
	for _, u := range users {
		s.upsertUserLocked(u)
	}
	for _, o := range opps {
		s.createOppLocked(o)
	}
	for _, in := range interactions {
		if _, ok := s.opps[in.OppID]; !ok {
			continue
		}
		if in.TS.IsZero() {
			in.TS = s.now()
		}
		s.appendInteractionLocked(in)
	}
	s.publishGaugesLocked()

	s.logger.Info().
		Int("users", len(s.users)).
		Int("opportunities", len(s.opps)).
		Int("interactions", len(s.interactions)).
		Msg("seeded store")
	return len(s.users), len(s.opps)
}

// UpsertUser inserts or replaces a user. An empty id gets the next
// sequential one assigned.
func (s *Store) UpsertUser(u match.User) match.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u = s.upsertUserLocked(u)
	s.publishGaugesLocked()
	return u
}

func (s *Store) upsertUserLocked(u match.User) match.User {
	if u.ID == "" {
		s.userSeq++
		u.ID = fmt.Sprintf("u%d", s.userSeq)
	}
	if _, exists := s.users[u.ID]; !exists {
		s.userOrder = append(s.userOrder, u.ID)
	}
	s.users[u.ID] = u
	return u
}

// CreateOpportunity inserts a new opportunity. An empty id gets the
// next sequential one assigned.
func (s *Store) CreateOpportunity(o match.Opportunity) match.Opportunity {
	s.mu.Lock()
	defer s.mu.Unlock()
	o = s.createOppLocked(o)
	s.publishGaugesLocked()
	return o
}

func (s *Store) createOppLocked(o match.Opportunity) match.Opportunity {
	if o.ID == "" {
		s.oppSeq++
		o.ID = fmt.Sprintf("o%d", s.oppSeq)
	}
	if _, exists := s.opps[o.ID]; !exists {
		s.oppOrder = append(s.oppOrder, o.ID)
		s.oppState[o.ID] = &oppState{
			pulse: 50.0,
			rsvps: make(map[string]struct{}),
		}
	}
	s.opps[o.ID] = o
	return o
}

// OpportunityPatch carries partial updates for an opportunity. Nil
// fields are left unchanged.
type OpportunityPatch struct {
	Title            *string          `json:"title,omitempty"`
	Description      *string          `json:"description,omitempty"`
	Tags             []string         `json:"tags,omitempty"`
	Category         *string          `json:"category,omitempty"`
	TimeBucket       *string          `json:"time_bucket,omitempty"`
	Time             *string          `json:"time,omitempty"`
	Lat              *float64         `json:"lat,omitempty"`
	Lng              *float64         `json:"lng,omitempty"`
	Capacity         *int             `json:"capacity,omitempty"`
	GroupSize        *match.GroupSize `json:"group_size,omitempty"`
	Intensity        *match.Intensity `json:"intensity,omitempty"`
	BeginnerFriendly *bool            `json:"beginner_friendly,omitempty"`
	ImageURL         *string          `json:"image_url,omitempty"`
}

// UpdateOpportunity applies a partial update and returns the result.
func (s *Store) UpdateOpportunity(id string, patch OpportunityPatch) (match.Opportunity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.opps[id]
	if !ok {
		return match.Opportunity{}, match.ErrEventNotFound
	}

	if patch.Title != nil {
		o.Title = *patch.Title
	}
	if patch.Description != nil {
		o.Description = *patch.Description
	}
	if patch.Tags != nil {
		o.Tags = append([]string(nil), patch.Tags...)
	}
	if patch.Category != nil {
		o.Category = *patch.Category
	}
	if patch.TimeBucket != nil {
		o.TimeBucket = *patch.TimeBucket
	}
	if patch.Time != nil {
		o.Time = *patch.Time
	}
	if patch.Lat != nil {
		o.Lat = *patch.Lat
	}
	if patch.Lng != nil {
		o.Lng = *patch.Lng
	}
	if patch.Capacity != nil && *patch.Capacity >= 0 {
		o.Capacity = *patch.Capacity
	}
	if patch.GroupSize != nil {
		o.GroupSize = *patch.GroupSize
	}
	if patch.Intensity != nil {
		o.Intensity = *patch.Intensity
	}
	if patch.BeginnerFriendly != nil {
		o.BeginnerFriendly = *patch.BeginnerFriendly
	}
	if patch.ImageURL != nil {
		o.ImageURL = *patch.ImageURL
	}

	s.opps[id] = o
	return o, nil
}

// GetUser returns one user by id.
func (s *Store) GetUser(id string) (match.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return match.User{}, match.ErrUserNotFound
	}
	return u, nil
}

// EventDetail is one opportunity with its live market state.
type EventDetail struct {
	Opportunity  match.Opportunity  `json:"event"`
	Pulse        float64            `json:"pulse"`
	NetDemand    float64            `json:"net_demand"`
	RSVPCount    int                `json:"rsvp_count"`
	SpotsLeft    int                `json:"spots_left"`
	ShownWindow  int                `json:"shown_window"`
	PulseHistory []match.PulsePoint `json:"pulse_history,omitempty"`
}

// GetEvent returns one opportunity with its market state, optionally
// including the sampled pulse history. The pulse is recomputed from the
// decayed net demand on every read so detail views never serve a stale
// value.
func (s *Store) GetEvent(id string, includeHistory bool) (EventDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.opps[id]
	if !ok {
		return EventDetail{}, match.ErrEventNotFound
	}
	st := s.oppState[id]

	now := s.now()
	if !st.lastDemandTS.IsZero() {
		st.netDemand = match.DecayDemand(st.netDemand, now.Sub(st.lastDemandTS), s.tauHours)
		st.lastDemandTS = now
	}
	st.pulse = match.PulseFromDemand(st.netDemand, o.Capacity, s.liquidityK)

	spots := o.Capacity - len(st.rsvps)
	if spots < 0 {
		spots = 0
	}
	detail := EventDetail{
		Opportunity: o,
		Pulse:       st.pulse,
		NetDemand:   st.netDemand,
		RSVPCount:   len(st.rsvps),
		SpotsLeft:   spots,
		ShownWindow: st.shownWindow,
	}
	if includeHistory {
		detail.PulseHistory = append([]match.PulsePoint(nil), st.pulseHistory...)
	}
	return detail, nil
}

// RSVPOutcome is the result of an RSVP or cancellation attempt.
type RSVPOutcome struct {
	Status    RSVPStatus
	RSVPCount int
	SpotsLeft int
}

// RSVP reserves a spot for the user. Re-RSVPing an already confirmed
// user is idempotent. A confirmed reservation records accepted
// feedback; a full event records nothing.
func (s *Store) RSVP(userID, oppID string) (RSVPOutcome, error) {
	out, err := s.rsvpLocked(userID, oppID)
	if err != nil {
		return out, err
	}
	metrics.RSVPAttempts.WithLabelValues(string(out.Status)).Inc()
	s.rsvpLog.append(map[string]any{
		"ts":      s.now().UTC().Format(time.RFC3339),
		"user_id": userID,
		"opp_id":  oppID,
		"status":  string(out.Status),
	})
	if out.Status == RSVPConfirmed {
		// Demand accounting happens outside the reservation critical
		// section; errors cannot occur for an event that just confirmed.
		_ = s.RecordFeedback(userID, oppID, match.EventAccepted)
	}
	return out, nil
}

func (s *Store) rsvpLocked(userID, oppID string) (RSVPOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return RSVPOutcome{}, match.ErrUserNotFound
	}
	o, ok := s.opps[oppID]
	if !ok {
		return RSVPOutcome{}, match.ErrEventNotFound
	}
	st := s.oppState[oppID]

	if _, already := st.rsvps[userID]; already {
		return rsvpOutcome(RSVPConfirmed, o.Capacity, len(st.rsvps)), nil
	}
	if len(st.rsvps) >= o.Capacity {
		return rsvpOutcome(RSVPFull, o.Capacity, len(st.rsvps)), nil
	}
	st.rsvps[userID] = struct{}{}
	return rsvpOutcome(RSVPConfirmed, o.Capacity, len(st.rsvps)), nil
}

// CancelRSVP releases the user's spot. Cancelling a reservation that
// does not exist is a no-op with the same CANCELLED outcome. A real
// cancellation records declined feedback.
func (s *Store) CancelRSVP(userID, oppID string) (RSVPOutcome, error) {
	released, out, err := s.cancelLocked(userID, oppID)
	if err != nil {
		return out, err
	}
	metrics.RSVPAttempts.WithLabelValues(string(RSVPCancelled)).Inc()
	s.rsvpLog.append(map[string]any{
		"ts":      s.now().UTC().Format(time.RFC3339),
		"user_id": userID,
		"opp_id":  oppID,
		"status":  string(RSVPCancelled),
	})
	if released {
		_ = s.RecordFeedback(userID, oppID, match.EventDeclined)
	}
	return out, nil
}

func (s *Store) cancelLocked(userID, oppID string) (bool, RSVPOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return false, RSVPOutcome{}, match.ErrUserNotFound
	}
	o, ok := s.opps[oppID]
	if !ok {
		return false, RSVPOutcome{}, match.ErrEventNotFound
	}
	st := s.oppState[oppID]

	if _, held := st.rsvps[userID]; !held {
		return false, rsvpOutcome(RSVPCancelled, o.Capacity, len(st.rsvps)), nil
	}
	delete(st.rsvps, userID)
	return true, rsvpOutcome(RSVPCancelled, o.Capacity, len(st.rsvps)), nil
}

func rsvpOutcome(status RSVPStatus, capacity, count int) RSVPOutcome {
	spots := capacity - count
	if spots < 0 {
		spots = 0
	}
	return RSVPOutcome{Status: status, RSVPCount: count, SpotsLeft: spots}
}

// RecordFeedback appends an interaction and folds its demand delta into
// the opportunity's decayed net-demand accumulator.
func (s *Store) RecordFeedback(userID, oppID string, event match.EventType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !event.Valid() {
		return fmt.Errorf("unknown event type %q", event)
	}
	if _, ok := s.opps[oppID]; !ok {
		return match.ErrEventNotFound
	}

	s.appendInteractionLocked(match.Interaction{
		UserID: userID,
		OppID:  oppID,
		Event:  event,
		TS:     s.now(),
	})
	metrics.FeedbackEvents.WithLabelValues(string(event)).Inc()
	return nil
}

func (s *Store) appendInteractionLocked(in match.Interaction) {
	s.interactions = append(s.interactions, in)

	st := s.oppState[in.OppID]
	if in.Event.CountsAsShown() {
		st.shownWindow++
	}

	delta := in.Event.DemandDelta()
	if delta == 0 {
		return
	}
	now := s.now()
	if !st.lastDemandTS.IsZero() {
		st.netDemand = match.DecayDemand(st.netDemand, now.Sub(st.lastDemandTS), s.tauHours)
	}
	st.netDemand += delta
	st.lastDemandTS = now
}

// ComputePulses recomputes every opportunity's pulse from its decayed
// net demand, publishes the values, and optionally samples them into
// the bounded pulse history.
func (s *Store) ComputePulses(params match.PulseParams, recordHistory bool) map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	pulses := make(map[string]float64, len(s.oppOrder))
	for _, oppID := range s.oppOrder {
		o := s.opps[oppID]
		st := s.oppState[oppID]

		if !st.lastDemandTS.IsZero() {
			st.netDemand = match.DecayDemand(st.netDemand, now.Sub(st.lastDemandTS), params.TauHours)
			st.lastDemandTS = now
		}
		st.pulse = match.PulseFromDemand(st.netDemand, o.Capacity, params.LiquidityK)
		pulses[oppID] = st.pulse

		if recordHistory {
			st.pulseHistory = append(st.pulseHistory, match.PulsePoint{TS: now, Pulse: st.pulse})
			if len(st.pulseHistory) > match.PulseHistoryCap {
				st.pulseHistory = st.pulseHistory[len(st.pulseHistory)-match.PulseHistoryCap:]
			}
		}
	}
	return pulses
}

// Snapshot returns a deep copy of the current state, with users and
// opportunities in insertion order.
func (s *Store) Snapshot() match.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := match.Snapshot{
		Users:          make([]match.User, 0, len(s.userOrder)),
		Opportunities:  make([]match.Opportunity, 0, len(s.oppOrder)),
		Interactions:   append([]match.Interaction(nil), s.interactions...),
		LastAssignment: append([]match.Assignment(nil), s.lastAssignment...),
		Pulses:         make(map[string]float64, len(s.oppOrder)),
		NetDemand:      make(map[string]float64, len(s.oppOrder)),
		ShownWindow:    make(map[string]int, len(s.oppOrder)),
		RSVPs:          make(map[string][]string, len(s.oppOrder)),
		PulseHistory:   make(map[string][]match.PulsePoint, len(s.oppOrder)),
	}

	for _, id := range s.userOrder {
		u := s.users[id]
		u.InterestTags = append([]string(nil), u.InterestTags...)
		u.Availability = append([]string(nil), u.Availability...)
		snap.Users = append(snap.Users, u)
	}
	for _, id := range s.oppOrder {
		o := s.opps[id]
		o.Tags = append([]string(nil), o.Tags...)
		snap.Opportunities = append(snap.Opportunities, o)
		st := s.oppState[id]
		snap.Pulses[id] = st.pulse
		snap.NetDemand[id] = st.netDemand
		snap.ShownWindow[id] = st.shownWindow
		rsvps := make([]string, 0, len(st.rsvps))
		for userID := range st.rsvps {
			rsvps = append(rsvps, userID)
		}
		sort.Strings(rsvps)
		snap.RSVPs[id] = rsvps
		snap.PulseHistory[id] = append([]match.PulsePoint(nil), st.pulseHistory...)
	}
	return snap
}

// SetLastAssignment atomically replaces the published assignment.
func (s *Store) SetLastAssignment(assignments []match.Assignment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAssignment = append([]match.Assignment(nil), assignments...)
}

// LogImpression appends one served feed item to the impressions
// training log. Best effort.
func (s *Store) LogImpression(userID, oppID string, features map[string]float64, pulse float64) {
	s.impressionsLog.append(map[string]any{
		"ts":       s.now().UTC().Format(time.RFC3339),
		"user_id":  userID,
		"opp_id":   oppID,
		"features": features,
		"pulse":    pulse,
	})
}
