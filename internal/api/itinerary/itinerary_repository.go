package itinerary

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/tripwalk/tripwalk-api/internal/types"
)

//go:embed data/places.json
var embeddedPlaces []byte

var _ Repository = (*RepositoryImpl)(nil)

// Repository provides read access to the place catalog.
type Repository interface {
	Places() []types.Place
}

// RepositoryImpl holds the catalog loaded once at startup. The slice is
// shared read-only across requests; nothing mutates it after construction.
type RepositoryImpl struct {
	places []types.Place
}

// NewRepository loads the catalog from the given path, falling back to the
// embedded dataset when the file is missing. Tags are normalized at load so
// interest matching is a plain set intersection, and missing visit durations
// default to an hour.
func NewRepository(path string, logger *slog.Logger) (*RepositoryImpl, error) {
	raw := embeddedPlaces
	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			raw = data
		} else {
			logger.Warn("Catalog file not readable, using embedded dataset",
				slog.String("path", path), slog.Any("error", err))
		}
	}

	var places []types.Place
	if err := json.Unmarshal(raw, &places); err != nil {
		return nil, fmt.Errorf("failed to decode place catalog: %w", err)
	}

	for i := range places {
		if places[i].EstimatedVisitMinutes <= 0 {
			places[i].EstimatedVisitMinutes = 60
		}
		places[i].Tags = normalizeTags(places[i].Tags)
	}

	logger.Info("Place catalog loaded", slog.Int("places", len(places)))
	return &RepositoryImpl{places: places}, nil
}

func (r *RepositoryImpl) Places() []types.Place {
	return r.places
}

// normalizeTags lowercases, trims and dedupes catalog tags, preserving the
// original order of first occurrence.
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		normalized := normalizeInterest(tag)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}
