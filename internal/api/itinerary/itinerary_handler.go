package itinerary

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/tripwalk/tripwalk-api/app/observability/metrics"
	"github.com/tripwalk/tripwalk-api/internal/api"
	"github.com/tripwalk/tripwalk-api/internal/types"
)

type Handler struct {
	itineraryService Service
	logger           *slog.Logger
}

func NewHandler(itineraryService Service, logger *slog.Logger) *Handler {
	return &Handler{
		itineraryService: itineraryService,
		logger:           logger,
	}
}

// GenerateItinerary handles POST /api/v1/itinerary. Input is validated at
// this boundary; the planner itself never sees invalid requests.
func (h *Handler) GenerateItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "GenerateItinerary", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/itinerary"),
	))
	defer span.End()
	start := time.Now()

	l := h.logger.With(slog.String("handler", "GenerateItinerary"))
	l.DebugContext(ctx, "Generate itinerary handler invoked")

	var req types.ItineraryRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if msg, ok := validateItineraryRequest(&req); !ok {
		l.WarnContext(ctx, "Invalid itinerary request", slog.String("reason", msg))
		api.ErrorResponse(w, r, http.StatusBadRequest, msg)
		return
	}

	response, _, err := h.itineraryService.Plan(ctx, req.Interests, req.AvailableHours, req.Location)
	if err != nil {
		l.ErrorContext(ctx, "Failed to plan itinerary", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to plan itinerary")
		return
	}

	m := metrics.Get()
	m.ItineraryRequestsTotal.Add(ctx, 1)
	m.ItineraryDurationSeconds.Record(ctx, time.Since(start).Seconds())

	l.InfoContext(ctx, "Itinerary generated", slog.Int("stops", len(response.Stops)))
	api.WriteJSONResponse(w, r, http.StatusOK, response)
}

// validateItineraryRequest enforces the request contract: at least one
// non-blank interest, a positive hour budget and a minimally useful location
// string. It also trims the interests in place.
func validateItineraryRequest(req *types.ItineraryRequest) (string, bool) {
	cleaned := make([]string, 0, len(req.Interests))
	for _, interest := range req.Interests {
		if trimmed := strings.TrimSpace(interest); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	req.Interests = cleaned

	if len(cleaned) == 0 {
		return "At least one interest is required", false
	}
	if req.AvailableHours <= 0 {
		return "available_hours must be greater than zero", false
	}
	if len(strings.TrimSpace(req.Location)) < 3 {
		return "location must be at least 3 characters", false
	}
	return "", true
}
