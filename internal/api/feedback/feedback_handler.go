package feedback

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/tripwalk/tripwalk-api/internal/api"
	"github.com/tripwalk/tripwalk-api/internal/types"
)

const maxCommentLength = 600

type Handler struct {
	feedbackService Service
	logger          *slog.Logger
}

func NewHandler(feedbackService Service, logger *slog.Logger) *Handler {
	return &Handler{
		feedbackService: feedbackService,
		logger:          logger,
	}
}

// SubmitFeedback handles POST /api/v1/feedback. The record is written off the
// request path; the client gets an immediate acknowledgement.
func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("FeedbackHandler").Start(r.Context(), "SubmitFeedback", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/feedback"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "SubmitFeedback"))

	var req types.FeedbackRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if msg, ok := validateFeedbackRequest(req); !ok {
		l.WarnContext(ctx, "Invalid feedback request", slog.String("reason", msg))
		api.ErrorResponse(w, r, http.StatusBadRequest, msg)
		return
	}

	// Persist outside the request lifecycle, detached from its cancellation.
	go func() {
		ctx := context.WithoutCancel(ctx)
		if err := h.feedbackService.Record(ctx, req); err != nil {
			l.ErrorContext(ctx, "Failed to record feedback", slog.Any("error", err))
		}
	}()

	api.WriteJSONResponse(w, r, http.StatusCreated, map[string]string{"status": "received"})
}

func validateFeedbackRequest(req types.FeedbackRequest) (string, bool) {
	if req.Rating < 1 || req.Rating > 5 {
		return "rating must be between 1 and 5", false
	}
	if req.Comment != nil && len(*req.Comment) > maxCommentLength {
		return "comment must be at most 600 characters", false
	}
	if len(strings.TrimSpace(req.Location)) < 3 {
		return "location must be at least 3 characters", false
	}
	if req.AvailableHours <= 0 {
		return "available_hours must be greater than zero", false
	}
	return "", true
}
