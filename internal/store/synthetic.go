// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

package store

import (
	"fmt"
	"math/rand"

	"github.com/matchpulse/matchpulse/internal/match"
)

// interestCluster groups users and events around a shared theme so
// synthetic marketplaces have realistic structure instead of noise.
type interestCluster struct {
	tags      []string
	category  string
	goal      match.Goal
	lat, lng  float64
	intensity match.Intensity
}

var clusters = []interestCluster{
	{
		tags:      []string{"music", "art", "social"},
		category:  "social",
		goal:      match.GoalFriends,
		lat:       40.74, lng: -73.99,
		intensity: match.IntensityLow,
	},
	{
		tags:      []string{"fitness", "sports", "outdoor"},
		category:  "fitness",
		goal:      match.GoalActive,
		lat:       40.70, lng: -73.95,
		intensity: match.IntensityHigh,
	},
	{
		tags:      []string{"volunteer", "community", "service"},
		category:  "volunteer",
		goal:      match.GoalVolunteer,
		lat:       40.68, lng: -73.97,
		intensity: match.IntensityMed,
	},
	{
		tags:      []string{"workshop", "learning", "tech"},
		category:  "education",
		goal:      match.GoalLearn,
		lat:       40.76, lng: -73.98,
		intensity: match.IntensityMed,
	},
}

var timeBuckets = []string{
	"sat_morning", "sat_afternoon", "sat_evening",
	"sun_morning", "sun_afternoon", "sun_evening",
	"weekday_evening",
}

var groupSizes = []match.GroupSize{match.GroupSmall, match.GroupMedium, match.GroupLarge}

// GenerateSynthetic builds a seeded synthetic marketplace. The same
// seed always produces the same dataset.
func GenerateSynthetic(seed int64, numUsers, numOpps int) ([]match.User, []match.Opportunity) {
	rng := rand.New(rand.NewSource(seed))

	users := make([]match.User, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		c := clusters[rng.Intn(len(clusters))]

		// Two tags from the home cluster, occasionally one from another.
		tags := sampleTags(rng, c.tags, 2)
		if rng.Float64() < 0.3 {
			other := clusters[rng.Intn(len(clusters))]
			tags = append(tags, other.tags[rng.Intn(len(other.tags))])
		}

		cohort := ""
		if rng.Float64() < 0.25 {
			cohort = "newcomer"
		}

		users = append(users, match.User{
			ID:            fmt.Sprintf("u%d", i+1),
			InterestTags:  tags,
			Lat:           c.lat + rng.Float64()*0.1 - 0.05,
			Lng:           c.lng + rng.Float64()*0.1 - 0.05,
			MaxTravelMins: 20 + rng.Intn(41),
			Availability:  sampleBuckets(rng, 2+rng.Intn(3)),
			GroupPref:     groupSizes[rng.Intn(len(groupSizes))],
			IntensityPref: c.intensity,
			Goal:          c.goal,
			Cohort:        cohort,
		})
	}

	opps := make([]match.Opportunity, 0, numOpps)
	for i := 0; i < numOpps; i++ {
		c := clusters[rng.Intn(len(clusters))]
		opps = append(opps, match.Opportunity{
			ID:               fmt.Sprintf("o%d", i+1),
			Title:            fmt.Sprintf("%s event %d", c.category, i+1),
			Tags:             sampleTags(rng, c.tags, 2),
			Category:         c.category,
			TimeBucket:       timeBuckets[rng.Intn(len(timeBuckets))],
			Lat:              c.lat + rng.Float64()*0.1 - 0.05,
			Lng:              c.lng + rng.Float64()*0.1 - 0.05,
			Capacity:         3 + rng.Intn(18),
			GroupSize:        groupSizes[rng.Intn(len(groupSizes))],
			Intensity:        c.intensity,
			BeginnerFriendly: rng.Float64() < 0.4,
		})
	}

	return users, opps
}

func sampleTags(rng *rand.Rand, pool []string, n int) []string {
	perm := rng.Perm(len(pool))
	if n > len(pool) {
		n = len(pool)
	}
	tags := make([]string, 0, n)
	for _, idx := range perm[:n] {
		tags = append(tags, pool[idx])
	}
	return tags
}

func sampleBuckets(rng *rand.Rand, n int) []string {
	perm := rng.Perm(len(timeBuckets))
	if n > len(timeBuckets) {
		n = len(timeBuckets)
	}
	buckets := make([]string, 0, n)
	for _, idx := range perm[:n] {
		buckets = append(buckets, timeBuckets[idx])
	}
	return buckets
}
