// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

package match

import "sort"

// OppFill summarizes demand pressure on one opportunity.
type OppFill struct {
	OppID string  `json:"opp_id"`
	Fill  float64 `json:"fill"`
	Pulse float64 `json:"pulse"`
}

// MarketMetrics aggregates marketplace health for dashboards.
type MarketMetrics struct {
	Utilization     float64   `json:"utilization"`
	AvgFillRatio    float64   `json:"avg_fill_ratio"`
	FairnessGap     float64   `json:"fairness_gap"`
	TopOverdemanded []OppFill `json:"top_overdemanded"`
	TopUnderfilled  []OppFill `json:"top_underfilled"`
	GiniExposure    float64   `json:"gini_exposure"`
	AvgDiversity    float64   `json:"avg_diversity"`
}

// ComputeMarketMetrics derives aggregate metrics from a solve result:
// seat utilization, fill ratios, cohort fairness gap, exposure Gini,
// demand hotspots, and per-user category diversity.
func ComputeMarketMetrics(
	users []User,
	opps []Opportunity,
	assignments []Assignment,
	pulses map[string]float64,
	interactions []Interaction,
	recommendations map[string]Recommendation,
) MarketMetrics {
	oppsByID := make(map[string]*Opportunity, len(opps))
	totalCapacity := 0
	for i := range opps {
		oppsByID[opps[i].ID] = &opps[i]
		if opps[i].Capacity > 0 {
			totalCapacity += opps[i].Capacity
		}
	}

	utilization := 0.0
	if totalCapacity > 0 {
		utilization = float64(len(assignments)) / float64(totalCapacity)
	}

	assignedCounts := make(map[string]int)
	for _, a := range assignments {
		assignedCounts[a.OppID]++
	}

	avgFill := 0.0
	if len(opps) > 0 {
		sum := 0.0
		for i := range opps {
			if opps[i].Capacity > 0 {
				sum += float64(assignedCounts[opps[i].ID]) / float64(opps[i].Capacity)
			}
		}
		avgFill = sum / float64(len(opps))
	}

	rates := ExposureRates(users, assignments)

	fills := make([]OppFill, 0, len(opps))
	for i := range opps {
		pulse, ok := pulses[opps[i].ID]
		if !ok {
			pulse = 50.0
		}
		fills = append(fills, OppFill{OppID: opps[i].ID, Fill: pulse / 100.0, Pulse: pulse})
	}

	over := append([]OppFill(nil), fills...)
	sort.Slice(over, func(i, j int) bool {
		if over[i].Fill != over[j].Fill {
			return over[i].Fill > over[j].Fill
		}
		return over[i].OppID < over[j].OppID
	})
	under := append([]OppFill(nil), fills...)
	sort.Slice(under, func(i, j int) bool {
		if under[i].Fill != under[j].Fill {
			return under[i].Fill < under[j].Fill
		}
		return under[i].OppID < under[j].OppID
	})

	exposure := make([]float64, 0, len(assignedCounts))
	for _, count := range assignedCounts {
		exposure = append(exposure, float64(count))
	}

	return MarketMetrics{
		Utilization:     utilization,
		AvgFillRatio:    avgFill,
		FairnessGap:     FairnessGap(rates),
		TopOverdemanded: topN(over, 3),
		TopUnderfilled:  topN(under, 3),
		GiniExposure:    gini(exposure),
		AvgDiversity:    avgDiversity(users, oppsByID, recommendations, interactions),
	}
}

// topN returns at most n leading entries of an already-sorted slice.
func topN(fills []OppFill, n int) []OppFill {
	if len(fills) > n {
		fills = fills[:n]
	}
	return fills
}

// gini computes the Gini coefficient of non-negative values. An empty
// or all-zero input scores 0 (perfect equality).
func gini(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	n := float64(len(sorted))
	cumulative := 0.0
	total := 0.0
	for i, v := range sorted {
		cumulative += float64(i+1) * v
		total += v
	}
	if total == 0 {
		return 0.0
	}
	return (2.0*cumulative)/(n*total) - (n+1.0)/n
}

// avgDiversity is the mean number of distinct categories recommended
// per user, falling back to interaction history when no recommendations
// exist.
func avgDiversity(
	users []User,
	oppsByID map[string]*Opportunity,
	recommendations map[string]Recommendation,
	interactions []Interaction,
) float64 {
	perUser := make(map[string]int)

	if len(recommendations) > 0 {
		for userID, rec := range recommendations {
			categories := make(map[string]struct{})
			ids := append([]string{rec.Primary}, rec.Alternatives...)
			for _, oppID := range ids {
				if oppID == "" {
					continue
				}
				if opp, ok := oppsByID[oppID]; ok {
					categories[opp.Category] = struct{}{}
				}
			}
			perUser[userID] = len(categories)
		}
	} else {
		for i := range users {
			categories := make(map[string]struct{})
			for j := range interactions {
				if interactions[j].UserID != users[i].ID {
					continue
				}
				if opp, ok := oppsByID[interactions[j].OppID]; ok {
					categories[opp.Category] = struct{}{}
				}
			}
			perUser[users[i].ID] = len(categories)
		}
	}

	if len(perUser) == 0 {
		return 0.0
	}
	sum := 0
	for _, count := range perUser {
		sum += count
	}
	return float64(sum) / float64(len(perUser))
}
