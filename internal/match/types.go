// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

package match

import (
	"time"
)

// GroupSize is a user's preferred or an event's actual gathering size.
type GroupSize string

// Group sizes, ordered small to large.
const (
	GroupSmall  GroupSize = "small"
	GroupMedium GroupSize = "medium"
	GroupLarge  GroupSize = "large"
)

// Num encodes the group size on [0, 1] for distance computation.
// Unknown values map to the midpoint.
func (g GroupSize) Num() float64 {
	switch g {
	case GroupSmall:
		return 0.0
	case GroupMedium:
		return 0.5
	case GroupLarge:
		return 1.0
	default:
		return 0.5
	}
}

// Intensity is a user's preferred or an event's actual activity intensity.
type Intensity string

// Intensities, ordered low to high.
const (
	IntensityLow  Intensity = "low"
	IntensityMed  Intensity = "med"
	IntensityHigh Intensity = "high"
)

// Num encodes the intensity on [0, 1] for distance computation.
// Unknown values map to the midpoint.
func (i Intensity) Num() float64 {
	switch i {
	case IntensityLow:
		return 0.0
	case IntensityMed:
		return 0.5
	case IntensityHigh:
		return 1.0
	default:
		return 0.5
	}
}

// Goal is what a user wants out of attending events.
type Goal string

// Goals a user can declare. The empty goal means no stated goal.
const (
	GoalFriends   Goal = "friends"
	GoalActive    Goal = "active"
	GoalVolunteer Goal = "volunteer"
	GoalLearn     Goal = "learn"
)

// goalHints maps each goal to the keywords that signal an aligned event.
var goalHints = map[Goal][]string{
	GoalFriends:   {"social", "community", "hangout", "meetup"},
	GoalActive:    {"fitness", "sports", "outdoor", "active"},
	GoalVolunteer: {"volunteer", "service", "community"},
	GoalLearn:     {"learn", "education", "workshop", "class", "training"},
}

// EventType classifies a user interaction with an opportunity.
type EventType string

// Interaction event types.
const (
	EventShown    EventType = "shown"
	EventClicked  EventType = "clicked"
	EventAccepted EventType = "accepted"
	EventDeclined EventType = "declined"
	EventAttended EventType = "attended"
)

// Valid reports whether the event type is one of the known values.
func (e EventType) Valid() bool {
	switch e {
	case EventShown, EventClicked, EventAccepted, EventDeclined, EventAttended:
		return true
	default:
		return false
	}
}

// DemandDelta returns the signed contribution of this event to an
// opportunity's net demand.
func (e EventType) DemandDelta() float64 {
	switch e {
	case EventAccepted:
		return 1.0
	case EventClicked:
		return 0.2
	case EventDeclined:
		return -0.5
	default:
		return 0.0
	}
}

// CountsAsShown reports whether the event bumps the shown_window counter.
func (e EventType) CountsAsShown() bool {
	switch e {
	case EventShown, EventClicked, EventAccepted, EventDeclined:
		return true
	default:
		return false
	}
}

// User is a participant with preferences, constraints, and an optional
// cohort tag used for fairness accounting.
type User struct {
	ID            string    `json:"id" validate:"required"`
	InterestTags  []string  `json:"interest_tags"`
	Lat           float64   `json:"lat"`
	Lng           float64   `json:"lng"`
	MaxTravelMins int       `json:"max_travel_mins"`
	Availability  []string  `json:"availability"`
	GroupPref     GroupSize `json:"group_pref" validate:"oneof=small medium large"`
	IntensityPref Intensity `json:"intensity_pref" validate:"oneof=low med high"`
	Goal          Goal      `json:"goal,omitempty" validate:"omitempty,oneof=friends active volunteer learn"`
	Cohort        string    `json:"cohort,omitempty"`
}

// Opportunity is an event users can be matched to.
type Opportunity struct {
	ID               string    `json:"id" validate:"required"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	Tags             []string  `json:"tags"`
	Category         string    `json:"category"`
	TimeBucket       string    `json:"time_bucket"`
	Time             string    `json:"time,omitempty"`
	Lat              float64   `json:"lat"`
	Lng              float64   `json:"lng"`
	Capacity         int       `json:"capacity" validate:"min=0"`
	GroupSize        GroupSize `json:"group_size" validate:"oneof=small medium large"`
	Intensity        Intensity `json:"intensity" validate:"oneof=low med high"`
	BeginnerFriendly bool      `json:"beginner_friendly"`
	ImageURL         string    `json:"image_url,omitempty"`
}

// Interaction is one recorded user-opportunity event.
type Interaction struct {
	UserID string    `json:"user_id"`
	OppID  string    `json:"opp_id"`
	Event  EventType `json:"event"`
	TS     time.Time `json:"ts"`
}

// Assignment pairs one user with one opportunity.
type Assignment struct {
	UserID string `json:"user_id"`
	OppID  string `json:"opp_id"`
}

// Recommendation is the primary pick plus ranked alternatives for a user.
type Recommendation struct {
	Primary      string   `json:"primary,omitempty"`
	Alternatives []string `json:"alternatives"`
}

// Explanation carries the full numeric breakdown behind one score.
type Explanation struct {
	Score       float64            `json:"score"`
	Breakdown   map[string]float64 `json:"breakdown"`
	ReasonChips []string           `json:"reason_chips"`
}

// ExplanationKey builds the map key for one (user, opportunity) pair.
func ExplanationKey(userID, oppID string) string {
	return userID + "|" + oppID
}

// PulsePoint is one sampled pulse value.
type PulsePoint struct {
	TS    time.Time `json:"ts"`
	Pulse float64   `json:"pulse"`
}

// Snapshot is a point-in-time copy of the store handed to the engine.
// All slices and maps are owned by the receiver; mutating them does not
// touch the store.
type Snapshot struct {
	Users          []User
	Opportunities  []Opportunity
	Interactions   []Interaction
	LastAssignment []Assignment
	Pulses         map[string]float64
	NetDemand      map[string]float64
	ShownWindow    map[string]int
	RSVPs          map[string][]string
	PulseHistory   map[string][]PulsePoint
}

// Capacities extracts the capacity map from the snapshot.
func (s *Snapshot) Capacities() map[string]int {
	caps := make(map[string]int, len(s.Opportunities))
	for _, opp := range s.Opportunities {
		caps[opp.ID] = opp.Capacity
	}
	return caps
}

// StateProvider is the store surface the engine depends on. Implemented
// by the store package; kept as an interface so the matching core stays
// free of storage concerns.
type StateProvider interface {
	// Snapshot returns a deep copy of the current state.
	Snapshot() Snapshot

	// ComputePulses recomputes every opportunity's pulse from decayed
	// net demand, publishes the values into the shared pulse map, and
	// optionally samples them into the bounded history.
	ComputePulses(params PulseParams, recordHistory bool) map[string]float64

	// SetLastAssignment atomically replaces the published assignment.
	SetLastAssignment(assignments []Assignment)

	// RecordFeedback appends an interaction and updates demand state.
	RecordFeedback(userID, oppID string, event EventType) error

	// LogImpression appends a training-log line (best effort).
	LogImpression(userID, oppID string, features map[string]float64, pulse float64)
}
