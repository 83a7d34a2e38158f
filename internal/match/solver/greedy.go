// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

package solver

import "sort"

// Greedy assigns users in input order to their best-scoring opportunity
// with remaining capacity. It is the degradation path when min-cost
// flow is unavailable; it makes no optimality claim.
type Greedy struct{}

// Name identifies the solver.
func (g *Greedy) Name() string { return "greedy" }

// Solve implements Solver.
func (g *Greedy) Solve(p Problem) ([]Pair, []string) {
	remaining := make(map[string]int, len(p.Capacities))
	for oppID, cap := range p.Capacities {
		if cap > 0 {
			remaining[oppID] = cap
		}
	}

	assignments := make([]Pair, 0, len(p.Users))
	assignedUsers := make(map[string]struct{}, len(p.Users))

	for _, userID := range p.Users {
		row := p.Scores[userID]
		if len(row) == 0 {
			continue
		}

		choices := make([]scoredChoice, 0, len(row))
		for oppID, score := range row {
			choices = append(choices, scoredChoice{oppID: oppID, score: score})
		}
		sort.Slice(choices, func(i, j int) bool {
			if choices[i].score != choices[j].score {
				return choices[i].score > choices[j].score
			}
			return choices[i].oppID < choices[j].oppID
		})

		for _, choice := range choices {
			if remaining[choice.oppID] <= 0 {
				continue
			}
			remaining[choice.oppID]--
			assignments = append(assignments, Pair{UserID: userID, OppID: choice.oppID})
			assignedUsers[userID] = struct{}{}
			break
		}
	}

	unassigned := make([]string, 0)
	for _, userID := range p.Users {
		if _, ok := assignedUsers[userID]; !ok {
			unassigned = append(unassigned, userID)
		}
	}
	return assignments, unassigned
}

// scoredChoice is one candidate opportunity for a user.
type scoredChoice struct {
	oppID string
	score float64
}
