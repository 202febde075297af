package itinerary

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tripwalk/tripwalk-api/internal/types"
)

// scheduledStop is a routed candidate with its resolved arrival clock-time and
// justification.
type scheduledStop struct {
	candidate Candidate
	arrival   string
	reason    string
}

// scheduleRoute walks the committed route in order, assigning arrival times
// and per-stop reasons. It never reorders: timing is layered on top of the
// route builder's commit order. Returns the scheduled stops and the total
// travel+stay minutes.
func scheduleRoute(route []Candidate, start types.Coordinates, startTime time.Time) ([]scheduledStop, float64) {
	scheduled := make([]scheduledStop, 0, len(route))
	currentTime := startTime
	current := start
	totalMinutes := 0.0

	for _, candidate := range route {
		distance := haversineKm(current, candidate.Place.Coordinates())
		travel := walkingMinutes(distance)
		arrival := currentTime.Add(time.Duration(travel * float64(time.Minute)))
		stay := candidate.Place.EstimatedVisitMinutes

		scheduled = append(scheduled, scheduledStop{
			candidate: candidate,
			arrival:   arrival.Format("15:04"),
			reason:    buildReason(candidate, distance),
		})

		currentTime = arrival.Add(time.Duration(stay) * time.Minute)
		current = candidate.Place.Coordinates()
		totalMinutes += travel + float64(stay)
	}

	return scheduled, totalMinutes
}

// buildReason produces the human-readable justification for a stop. Rules are
// tried in priority order: interest-tag matches win over semantic similarity,
// which wins over the place's own leading tag, with a generic sentence as the
// last resort.
func buildReason(candidate Candidate, legDistanceKm float64) string {
	walkMinutes := int(math.Round(walkingMinutes(legDistanceKm)))

	if len(candidate.MatchedTags) > 0 {
		tagsText := strings.Join(candidate.MatchedTags, ", ")
		return fmt.Sprintf(
			"Matches your interests (%s), about %.1f km away (roughly %d min on foot).",
			tagsText, legDistanceKm, walkMinutes,
		)
	}
	if candidate.SemanticScore >= semanticReasonThreshold {
		similarity := int(math.Round(candidate.SemanticScore * 100))
		return fmt.Sprintf(
			"Close in spirit to your request (~%d%% similarity), %.1f km away (roughly %d min on foot).",
			similarity, legDistanceKm, walkMinutes,
		)
	}
	if len(candidate.Place.Tags) > 0 {
		return fmt.Sprintf(
			"Rounds out the walk with its focus on %s, about %.1f km away (roughly %d min on foot).",
			candidate.Place.Tags[0], legDistanceKm, walkMinutes,
		)
	}
	return "A popular spot nearby, worth visiting for variety."
}
