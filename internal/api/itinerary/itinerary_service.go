package itinerary

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tripwalk/tripwalk-api/app/observability/metrics"
	"github.com/tripwalk/tripwalk-api/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service defines the business logic contract for itinerary planning.
type Service interface {
	Plan(ctx context.Context, interests []string, availableHours float64, location string) (*types.ItineraryResponse, []string, error)
}

// LocationResolver turns free-text locations into coordinates. It must not
// fail: unresolvable input degrades to a default point plus a warning.
type LocationResolver interface {
	ResolveLocation(ctx context.Context, query string) (types.Coordinates, string)
}

// InterestEmbedder provides the semantic signal. EmbedInterests reports
// ok=false when the signal is unavailable (no credentials, remote failure);
// callers must handle the absent-signal branch explicitly.
type InterestEmbedder interface {
	EmbedInterests(ctx context.Context, interests []string) (vector []float64, ok bool)
	SemanticSimilarity(ctx context.Context, vector []float64, place types.Place) float64
}

// SummaryGenerator produces an optional narrative summary. An empty string
// means no narrative is available; the planner always has a deterministic
// summary of its own.
type SummaryGenerator interface {
	GenerateSummary(ctx context.Context, stops []types.ItineraryStop, interests []string, availableHours float64, location string) string
}

type ServiceImpl struct {
	logger    *slog.Logger
	catalog   Repository
	geocoder  LocationResolver
	embedder  InterestEmbedder
	narrative SummaryGenerator
	now       func() time.Time
}

func NewServiceImpl(catalog Repository, geocoder LocationResolver, embedder InterestEmbedder, narrative SummaryGenerator, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger,
		catalog:   catalog,
		geocoder:  geocoder,
		embedder:  embedder,
		narrative: narrative,
		now:       func() time.Time { return time.Now().Truncate(time.Minute) },
	}
}

// Plan builds a walking itinerary for the given interests, time budget and
// starting location. It never hard-fails under normal catalog conditions:
// degraded external signals become advisory warnings and the best-effort
// itinerary is still returned.
func (s *ServiceImpl) Plan(ctx context.Context, interests []string, availableHours float64, location string) (*types.ItineraryResponse, []string, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "Plan", trace.WithAttributes(
		attribute.Int("interests.count", len(interests)),
		attribute.Float64("available_hours", availableHours),
	))
	defer span.End()

	l := s.logger.With(slog.String("service", "itinerary"))

	userCoords, geoWarning := s.geocoder.ResolveLocation(ctx, location)
	var warnings []string
	if geoWarning != "" {
		warnings = append(warnings, geoWarning)
	}

	interestSet := parseInterests(interests)
	interestList := interestSet.sorted()

	vector, vectorOK := s.embedder.EmbedInterests(ctx, interestList)
	if !vectorOK {
		l.DebugContext(ctx, "Semantic signal unavailable, scoring without embeddings")
	}

	candidates := scoreCandidates(s.catalog.Places(), interestSet, userCoords, func(place types.Place) float64 {
		if !vectorOK {
			return 0.0
		}
		return s.embedder.SemanticSimilarity(ctx, vector, place)
	})

	if !hasInterestMatches(candidates) {
		warnings = append(warnings, "No places matched your interests; showing popular spots around the city centre instead.")
		candidates = fallbackCandidates(s.catalog.Places(), userCoords)
		span.AddEvent("fallback ranking used")
		metrics.Get().FallbackRankingsTotal.Add(ctx, 1)
	}

	route := buildRoute(candidates, userCoords, availableHours)
	scheduled, totalMinutes := scheduleRoute(route, userCoords, s.now())

	stops := make([]types.ItineraryStop, 0, len(scheduled))
	for _, stop := range scheduled {
		stops = append(stops, stop.candidate.Place.ToStop(stop.reason, stop.arrival))
	}

	if totalMinutes > availableHours*60 {
		warnings = append(warnings, "Fitting every interesting place into the given limit is tight; the walk may take a little longer.")
	}

	summary := s.composeSummary(ctx, stops, interestList, availableHours, location)

	span.SetAttributes(
		attribute.Int("stops.count", len(stops)),
		attribute.Float64("total_minutes", totalMinutes),
	)
	span.SetStatus(codes.Ok, "Itinerary planned")
	l.InfoContext(ctx, "Itinerary planned",
		slog.Int("stops", len(stops)),
		slog.Float64("total_minutes", totalMinutes),
		slog.Int("warnings", len(warnings)),
	)

	response := &types.ItineraryResponse{
		Summary:              summary,
		TotalDurationMinutes: int(math.Round(totalMinutes)),
		Stops:                stops,
		Notes:                warnings,
	}
	return response, warnings, nil
}

// composeSummary prepends the narrative text, when any, to the deterministic
// computed summary sentence.
func (s *ServiceImpl) composeSummary(ctx context.Context, stops []types.ItineraryStop, interestList []string, availableHours float64, location string) string {
	defaultSummary := defaultSummary(len(stops), availableHours, interestList)
	narrative := s.narrative.GenerateSummary(ctx, stops, interestList, availableHours, location)
	if narrative == "" {
		return defaultSummary
	}
	return strings.TrimSpace(narrative + " " + defaultSummary)
}

func defaultSummary(stopCount int, availableHours float64, interestList []string) string {
	parts := []string{
		fmt.Sprintf("The route includes %d stops", stopCount),
		fmt.Sprintf("available time: %.1f h.", availableHours),
	}
	if len(interestList) > 0 {
		parts = append(parts, "interests considered: "+strings.Join(interestList, ", "))
	}
	return strings.Join(parts, ". ")
}
