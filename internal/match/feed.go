// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

package match

import (
	"context"
	"sort"
)

// FeedItem is one ranked event in a user's personalized feed.
type FeedItem struct {
	EventID     string   `json:"event_id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category"`
	ImageURL    string   `json:"image_url,omitempty"`
	Score       float64  `json:"score"`
	Pulse       float64  `json:"pulse"`
	ReasonChips []string `json:"reason_chips"`
}

// Feed builds the personalized ranked feed for one user. Cold-start
// users (few shown impressions in the window) get a share of their feed
// reserved for under-exposed events so new inventory gets seen. Every
// item returned is recorded as a shown impression and logged for
// training.
func (e *Engine) Feed(_ context.Context, userID string, limit int) ([]FeedItem, error) {
	snap := e.state.Snapshot()

	user, ok := findUser(snap.Users, userID)
	if !ok {
		return nil, ErrUserNotFound
	}
	if len(snap.Opportunities) == 0 {
		return []FeedItem{}, nil
	}
	if limit <= 0 {
		limit = e.feed.DefaultLimit
	}

	params := e.pulseParams(nil)
	pulses := e.state.ComputePulses(params, false)

	opts := e.scoreOptions(&SolveRequest{}, params)
	matrix, explanations := e.scorer.ScoreMatrix([]User{user}, snap.Opportunities, snap.Interactions, pulses, snap.LastAssignment, opts)

	row := matrix[userID]
	ranked := make([]string, 0, len(row))
	for i := range snap.Opportunities {
		oppID := snap.Opportunities[i].ID
		if _, feasible := row[oppID]; feasible {
			ranked = append(ranked, oppID)
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		si, sj := row[ranked[i]], row[ranked[j]]
		if si != sj {
			return si > sj
		}
		return ranked[i] < ranked[j]
	})

	selected := ranked
	if len(selected) > limit {
		selected = selected[:limit]
	}

	freshSet := map[string]struct{}{}
	if e.isColdStart(userID, snap.Interactions) {
		selected, freshSet = e.blendFresh(selected, ranked, snap.ShownWindow, limit)
	}

	oppByID := make(map[string]*Opportunity, len(snap.Opportunities))
	for i := range snap.Opportunities {
		oppByID[snap.Opportunities[i].ID] = &snap.Opportunities[i]
	}

	items := make([]FeedItem, 0, len(selected))
	for _, oppID := range selected {
		opp := oppByID[oppID]
		expl := explanations[ExplanationKey(userID, oppID)]

		chips := append([]string(nil), expl.ReasonChips...)
		if _, fresh := freshSet[oppID]; fresh {
			chips = append(chips, chipNewEvent)
		}

		items = append(items, FeedItem{
			EventID:     opp.ID,
			Title:       opp.Title,
			Description: opp.Description,
			Category:    opp.Category,
			ImageURL:    opp.ImageURL,
			Score:       expl.Score,
			Pulse:       expl.Breakdown["pulse"],
			ReasonChips: chips,
		})

		if err := e.state.RecordFeedback(userID, oppID, EventShown); err != nil {
			e.logger.Warn().Err(err).Str("opp_id", oppID).Msg("recording feed impression")
			continue
		}
		e.state.LogImpression(userID, oppID, predictorFeatures(expl.Breakdown), expl.Breakdown["pulse"])
	}

	return items, nil
}

// isColdStart reports whether the user has fewer shown-type impressions
// than the configured threshold.
func (e *Engine) isColdStart(userID string, interactions []Interaction) bool {
	shown := 0
	for i := range interactions {
		if interactions[i].UserID == userID && interactions[i].Event.CountsAsShown() {
			shown++
			if shown >= e.feed.ColdStartShownThreshold {
				return false
			}
		}
	}
	return true
}

// blendFresh swaps the tail of a cold-start user's feed for the least
// exposed feasible events not already selected.
func (e *Engine) blendFresh(selected, ranked []string, shownWindow map[string]int, limit int) ([]string, map[string]struct{}) {
	freshSlots := int(float64(limit) * e.feed.ColdStartShare)
	if freshSlots < 1 {
		freshSlots = 1
	}

	inFeed := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		inFeed[id] = struct{}{}
	}

	pool := make([]string, 0, len(ranked))
	for _, id := range ranked {
		if _, ok := inFeed[id]; !ok {
			pool = append(pool, id)
		}
	}
	sort.Slice(pool, func(i, j int) bool {
		si, sj := shownWindow[pool[i]], shownWindow[pool[j]]
		if si != sj {
			return si < sj
		}
		return pool[i] < pool[j]
	})
	if len(pool) > freshSlots {
		pool = pool[:freshSlots]
	}

	freshSet := make(map[string]struct{}, len(pool))
	for _, id := range pool {
		freshSet[id] = struct{}{}
	}
	if len(pool) == 0 {
		return selected, freshSet
	}

	keep := len(selected) - len(pool)
	if keep < 0 {
		keep = 0
	}
	blended := append(append([]string{}, selected[:keep]...), pool...)
	return blended, freshSet
}

// predictorFeatures extracts the model's input features from a score
// breakdown for the training log.
func predictorFeatures(breakdown map[string]float64) map[string]float64 {
	features := make(map[string]float64, len(FeatureOrder))
	for _, name := range FeatureOrder {
		features[name] = breakdown[name]
	}
	return features
}

// Trending ranks opportunities by recent pulse movement. Every call
// refreshes pulses and samples them into the bounded history, so the
// delta is the movement between the two most recent samples and the
// ranking stays live without a rebalance.
func (e *Engine) Trending(_ context.Context, limit int) []TrendingItem {
	pulses := e.state.ComputePulses(e.pulseParams(nil), true)
	snap := e.state.Snapshot()
	if limit <= 0 {
		limit = 10
	}

	items := make([]TrendingItem, 0, len(snap.Opportunities))
	for i := range snap.Opportunities {
		opp := &snap.Opportunities[i]

		delta := 0.0
		if history := snap.PulseHistory[opp.ID]; len(history) >= 2 {
			delta = history[len(history)-1].Pulse - history[len(history)-2].Pulse
		}

		items = append(items, TrendingItem{
			EventID:    opp.ID,
			Title:      opp.Title,
			Pulse:      pulses[opp.ID],
			PulseDelta: delta,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].PulseDelta != items[j].PulseDelta {
			return items[i].PulseDelta > items[j].PulseDelta
		}
		if items[i].Pulse != items[j].Pulse {
			return items[i].Pulse > items[j].Pulse
		}
		return items[i].EventID < items[j].EventID
	})

	if len(items) > limit {
		items = items[:limit]
	}
	return items
}
