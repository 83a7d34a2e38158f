// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

package match

import (
	"math"
	"strings"
)

// Features is the named feature vector for one (user, opportunity) pair.
// All values are bounded to [0, 1] except TravelMinutes, which is raw.
type Features struct {
	Interest          float64
	TravelMinutes     float64
	TravelPenalty     float64
	AvailabilityOK    float64
	GroupMatch        float64
	IntensityMismatch float64
	NoveltyBonus      float64
}

// Reason chip texts emitted when a feature crosses its threshold.
const (
	chipInterests    = "Matches interests"
	chipCloseBy      = "Close by"
	chipAvailability = "Fits availability"
	chipGroupSize    = "Good group size"
	chipIntensity    = "Comfortable intensity"
	chipFresh        = "Fresh option"
	chipNewcomer     = "Beginner-friendly for newcomers"
	chipNewEvent     = "New event"
)

// ExtractFeatures computes the feature vector and reason chips for a
// (user, opportunity) pair. distanceScaleMins converts coordinate
// distance to travel minutes. The function is pure: it reads nothing
// but its arguments and has no side effects.
func ExtractFeatures(user *User, opp *Opportunity, interactions []Interaction, distanceScaleMins float64) (Features, []string) {
	f := Features{
		Interest:          jaccard(user.InterestTags, opp.Tags),
		TravelMinutes:     travelMinutes(user, opp, distanceScaleMins),
		GroupMatch:        1.0 - math.Abs(user.GroupPref.Num()-opp.GroupSize.Num()),
		IntensityMismatch: math.Abs(user.IntensityPref.Num() - opp.Intensity.Num()),
		NoveltyBonus:      noveltyBonus(user.ID, opp.ID, interactions),
	}

	f.TravelPenalty = 1.0
	if user.MaxTravelMins > 0 {
		f.TravelPenalty = math.Min(1.0, f.TravelMinutes/float64(user.MaxTravelMins))
	}

	if availabilityOK(user, opp) {
		f.AvailabilityOK = 1.0
	}

	var chips []string
	if f.Interest >= 0.5 {
		chips = append(chips, chipInterests)
	}
	if f.TravelPenalty <= 0.3 {
		chips = append(chips, chipCloseBy)
	}
	if f.AvailabilityOK > 0.5 {
		chips = append(chips, chipAvailability)
	}
	if f.GroupMatch >= 0.7 {
		chips = append(chips, chipGroupSize)
	}
	if f.IntensityMismatch <= 0.2 {
		chips = append(chips, chipIntensity)
	}
	if f.NoveltyBonus >= 0.7 {
		chips = append(chips, chipFresh)
	}

	return f, chips
}

// jaccard returns the Jaccard similarity of two tag sets, compared
// case-insensitively. Two empty sets score 0.
func jaccard(a, b []string) float64 {
	setA := lowerSet(a)
	setB := lowerSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 0.0
	}

	intersection := 0
	for tag := range setA {
		if _, ok := setB[tag]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

// lowerSet builds a lowercased set, dropping empty tags.
func lowerSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		set[strings.ToLower(tag)] = struct{}{}
	}
	return set
}

// travelMinutes converts Euclidean lat/lng distance to minutes.
func travelMinutes(user *User, opp *Opportunity, distanceScaleMins float64) float64 {
	dLat := user.Lat - opp.Lat
	dLng := user.Lng - opp.Lng
	return math.Sqrt(dLat*dLat+dLng*dLng) * distanceScaleMins
}

// availabilityOK reports whether the event's time bucket fits the user.
// An empty availability set means the user is flexible.
func availabilityOK(user *User, opp *Opportunity) bool {
	if len(user.Availability) == 0 {
		return true
	}
	for _, bucket := range user.Availability {
		if bucket == opp.TimeBucket {
			return true
		}
	}
	return false
}

// noveltyBonus is 1 when the pair has no prior interaction, 0 when one
// exists, and 0.5 when the log is empty (no signal either way).
func noveltyBonus(userID, oppID string, interactions []Interaction) float64 {
	if len(interactions) == 0 {
		return 0.5
	}
	for i := range interactions {
		if interactions[i].UserID == userID && interactions[i].OppID == oppID {
			return 0.0
		}
	}
	return 1.0
}

// GoalMatch is 1.0 when any of the user's goal hint keywords appears as
// a substring of the event's category or tags, 0.0 otherwise.
func GoalMatch(user *User, opp *Opportunity) float64 {
	if user.Goal == "" {
		return 0.0
	}
	hints, ok := goalHints[user.Goal]
	if !ok {
		return 0.0
	}

	parts := make([]string, 0, len(opp.Tags)+1)
	parts = append(parts, opp.Category)
	parts = append(parts, opp.Tags...)
	haystack := strings.ToLower(strings.Join(parts, " "))

	for _, hint := range hints {
		if strings.Contains(haystack, hint) {
			return 1.0
		}
	}
	return 0.0
}
