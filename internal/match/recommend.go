// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

package match

import "sort"

// scoredOpp is one opportunity with its score for ranking.
type scoredOpp struct {
	oppID string
	score float64
}

// rankedOpps returns a user's feasible opportunities sorted by
// descending score, with opportunity id as the deterministic tie-break.
func rankedOpps(scores map[string]float64) []scoredOpp {
	ranked := make([]scoredOpp, 0, len(scores))
	for oppID, score := range scores {
		ranked = append(ranked, scoredOpp{oppID: oppID, score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].oppID < ranked[j].oppID
	})
	return ranked
}

// BuildRecommendations derives each user's primary pick and top-k
// alternatives from the score matrix and the final assignment. Assigned
// users get their assignment as primary; everyone else gets their
// highest-scoring feasible opportunity, or none when nothing is feasible.
func BuildRecommendations(
	users []User,
	matrix map[string]map[string]float64,
	assignments []Assignment,
	topK int,
) map[string]Recommendation {
	assignedOpp := make(map[string]string, len(assignments))
	for _, a := range assignments {
		assignedOpp[a.UserID] = a.OppID
	}

	recs := make(map[string]Recommendation, len(users))
	for i := range users {
		user := &users[i]
		ranked := rankedOpps(matrix[user.ID])

		primary := assignedOpp[user.ID]
		if primary == "" && len(ranked) > 0 {
			primary = ranked[0].oppID
		}

		alternatives := make([]string, 0, topK)
		for _, cand := range ranked {
			if len(alternatives) >= topK {
				break
			}
			if cand.oppID == primary {
				continue
			}
			alternatives = append(alternatives, cand.oppID)
		}

		recs[user.ID] = Recommendation{Primary: primary, Alternatives: alternatives}
	}
	return recs
}
