// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

package match

// ExposureRates computes per-cohort assigned rates from the last
// published assignment: assigned users in the cohort divided by the
// cohort's population. Users without a cohort are ignored.
func ExposureRates(users []User, assignments []Assignment) map[string]float64 {
	totals := make(map[string]int)
	assigned := make(map[string]int)
	cohortByUser := make(map[string]string, len(users))

	for i := range users {
		u := &users[i]
		if u.Cohort == "" {
			continue
		}
		totals[u.Cohort]++
		cohortByUser[u.ID] = u.Cohort
	}

	for _, a := range assignments {
		if cohort, ok := cohortByUser[a.UserID]; ok {
			assigned[cohort]++
		}
	}

	rates := make(map[string]float64, len(totals))
	for cohort, total := range totals {
		rates[cohort] = float64(assigned[cohort]) / float64(total)
	}
	return rates
}

// FairnessGap is the spread between the best- and worst-exposed cohorts.
func FairnessGap(rates map[string]float64) float64 {
	if len(rates) == 0 {
		return 0.0
	}
	first := true
	var minRate, maxRate float64
	for _, rate := range rates {
		if first {
			minRate, maxRate = rate, rate
			first = false
			continue
		}
		if rate < minRate {
			minRate = rate
		}
		if rate > maxRate {
			maxRate = rate
		}
	}
	return maxRate - minRate
}

// FairnessBoost returns how far the user's cohort trails the
// best-exposed cohort, floored at zero. Users without a cohort get no
// boost.
func FairnessBoost(user *User, rates map[string]float64) float64 {
	if user.Cohort == "" || len(rates) == 0 {
		return 0.0
	}
	var maxRate float64
	first := true
	for _, rate := range rates {
		if first || rate > maxRate {
			maxRate = rate
			first = false
		}
	}
	gap := maxRate - rates[user.Cohort]
	if gap < 0 {
		return 0.0
	}
	return gap
}
