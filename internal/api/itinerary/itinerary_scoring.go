package itinerary

import (
	"sort"

	"github.com/tripwalk/tripwalk-api/internal/types"
)

const fallbackCandidateLimit = 20

// fallbackVisitCapMinutes caps the visit duration used to rank fallback
// candidates so a single marathon attraction does not dominate the list.
const fallbackVisitCapMinutes = 120

// Candidate pairs a catalog place with its per-request scoring context.
// Candidates are built fresh for every request and never persisted.
type Candidate struct {
	Place         types.Place
	MatchScore    float64
	MatchedTags   []string
	DistanceKm    float64
	SemanticScore float64
}

// semanticSimilarityFunc reports how close a place is to the user's request
// in embedding space, in [-1, 1]. Implementations must return 0 when the
// semantic signal is unavailable.
type semanticSimilarityFunc func(place types.Place) float64

// scoreCandidates ranks every place in the catalog against the normalized
// interest set and the user's position. The result is ordered best-first:
// score descending, ties broken by larger distance first. The tie-break is
// deliberate and kept for reproducibility of existing itineraries.
func scoreCandidates(places []types.Place, interests interestSet, reference types.Coordinates, semSim semanticSimilarityFunc) []Candidate {
	scored := make([]Candidate, 0, len(places))
	for _, place := range places {
		matched := interests.intersect(place.Tags)

		baseScore := 0.4
		if len(matched) > 0 {
			baseScore = 1.0
		}

		interestBoost := float64(len(matched)) * 1.5

		distance := haversineKm(reference, place.Coordinates())
		distancePenalty := distance * 0.1

		diversityBoost := 0.0
		if place.CategoryID != nil {
			diversityBoost = 0.2
		}

		semanticScore := semSim(place)
		semanticBoost := semanticScore * semanticWeight

		score := baseScore + interestBoost - distancePenalty + diversityBoost + semanticBoost

		scored = append(scored, Candidate{
			Place:         place,
			MatchScore:    score,
			MatchedTags:   matched,
			DistanceKm:    distance,
			SemanticScore: semanticScore,
		})
	}

	sortCandidates(scored)
	return scored
}

// sortCandidates orders candidates best-first: score descending, ties broken
// by larger distance first.
func sortCandidates(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].MatchScore != candidates[j].MatchScore {
			return candidates[i].MatchScore > candidates[j].MatchScore
		}
		return candidates[i].DistanceKm > candidates[j].DistanceKm
	})
}

// fallbackCandidates ranks the whole catalog by estimated visit duration
// (capped) and distance, both descending, and keeps the top entries. Used when
// nothing in the catalog matched the user's interests. Fallback candidates
// report the place's own tags as matched and carry no semantic signal.
func fallbackCandidates(places []types.Place, reference types.Coordinates) []Candidate {
	type ranked struct {
		place    types.Place
		capped   int
		distance float64
	}

	popular := make([]ranked, 0, len(places))
	for _, place := range places {
		capped := place.EstimatedVisitMinutes
		if capped > fallbackVisitCapMinutes {
			capped = fallbackVisitCapMinutes
		}
		popular = append(popular, ranked{
			place:    place,
			capped:   capped,
			distance: haversineKm(reference, place.Coordinates()),
		})
	}

	sort.SliceStable(popular, func(i, j int) bool {
		if popular[i].capped != popular[j].capped {
			return popular[i].capped > popular[j].capped
		}
		return popular[i].distance > popular[j].distance
	})

	if len(popular) > fallbackCandidateLimit {
		popular = popular[:fallbackCandidateLimit]
	}

	out := make([]Candidate, 0, len(popular))
	for _, r := range popular {
		out = append(out, Candidate{
			Place:         r.place,
			MatchScore:    1.0,
			MatchedTags:   r.place.Tags,
			DistanceKm:    r.distance,
			SemanticScore: 0.0,
		})
	}
	return out
}

// hasInterestMatches reports whether any candidate actually matched an
// interest tag. When none did, the caller switches to the fallback ranking.
func hasInterestMatches(candidates []Candidate) bool {
	for _, c := range candidates {
		if len(c.MatchedTags) > 0 {
			return true
		}
	}
	return false
}
