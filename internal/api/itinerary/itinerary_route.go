package itinerary

import (
	"github.com/tripwalk/tripwalk-api/internal/types"
)

// buildRoute consumes the best-first candidate list in a single greedy pass.
// The walking position advances with every accepted stop, so travel cost is
// always measured from the previous stop, not from the start. A candidate is
// accepted when its travel+visit cost fits the remaining budget; the very
// first stop is accepted even when it alone exceeds the whole budget, so the
// route is never empty for a non-empty candidate list. A rejected candidate
// does not end the scan: a cheaper one further down may still fit.
//
// Stop order is exactly acceptance order. There is no nearest-neighbor or
// TSP pass on top.
func buildRoute(candidates []Candidate, start types.Coordinates, availableHours float64) []Candidate {
	remaining := availableHours * 60
	route := make([]Candidate, 0, maxStops)
	current := start

	for _, candidate := range candidates {
		if len(route) >= maxStops {
			break
		}
		travel := walkingMinutes(haversineKm(current, candidate.Place.Coordinates()))
		cost := travel + float64(candidate.Place.EstimatedVisitMinutes)

		fits := cost <= remaining
		if !fits && len(route) > 0 {
			continue
		}

		route = append(route, candidate)
		current = candidate.Place.Coordinates()
		if fits {
			remaining -= cost
			if remaining < 0 {
				remaining = 0
			}
		}
	}

	return route
}
