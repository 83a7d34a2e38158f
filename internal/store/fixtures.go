// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

package store

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/go-playground/validator/v10"

	"github.com/matchpulse/matchpulse/internal/match"
)

var validate = validator.New()

// Fixture is a seed dataset: users, opportunities, and an optional
// interaction history to replay.
type Fixture struct {
	Users         []match.User        `json:"users"`
	Opportunities []match.Opportunity `json:"opportunities"`
	Interactions  []match.Interaction `json:"interactions,omitempty"`
}

// ParseFixture decodes and validates a seed payload. "user" is accepted
// as an alias for the user list, and "opps" for the event list.
func ParseFixture(data []byte) (*Fixture, error) {
	var raw struct {
		Users         []match.User        `json:"users"`
		User          []match.User        `json:"user"`
		Opps          []match.Opportunity `json:"opps"`
		Opportunities []match.Opportunity `json:"opportunities"`
		Interactions  []match.Interaction `json:"interactions"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}

	f := &Fixture{
		Users:         raw.Users,
		Opportunities: raw.Opportunities,
		Interactions:  raw.Interactions,
	}
	if len(f.Users) == 0 {
		f.Users = raw.User
	}
	if len(f.Opportunities) == 0 {
		f.Opportunities = raw.Opps
	}

	for i := range f.Users {
		if err := validate.Struct(&f.Users[i]); err != nil {
			return nil, fmt.Errorf("user %d (%s): %w", i, f.Users[i].ID, err)
		}
	}
	for i := range f.Opportunities {
		if err := validate.Struct(&f.Opportunities[i]); err != nil {
			return nil, fmt.Errorf("opportunity %d (%s): %w", i, f.Opportunities[i].ID, err)
		}
	}
	for i := range f.Interactions {
		if !f.Interactions[i].Event.Valid() {
			return nil, fmt.Errorf("interaction %d: unknown event type %q", i, f.Interactions[i].Event)
		}
	}
	return f, nil
}

// LoadFixtureFile reads and parses a fixture from disk.
func LoadFixtureFile(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture %s: %w", path, err)
	}
	return ParseFixture(data)
}
