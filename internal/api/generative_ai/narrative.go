package generativeAI

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"

	"github.com/tripwalk/tripwalk-api/internal/types"
)

// NarrativeService produces natural-language itinerary summaries with the
// Gemini API. Any failure, including missing credentials, yields an empty
// string; the planner keeps its own deterministic summary.
type NarrativeService struct {
	client *genai.Client // nil when no credentials are configured
	model  string
	logger *slog.Logger
}

func NewNarrativeService(ctx context.Context, model string, logger *slog.Logger) (*NarrativeService, error) {
	s := &NarrativeService{model: model, logger: logger}

	apiKey := os.Getenv("GOOGLE_GEMINI_API_KEY")
	if apiKey == "" {
		logger.Warn("GOOGLE_GEMINI_API_KEY is not set; narrative summaries disabled")
		return s, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	s.client = client
	return s, nil
}

// GenerateSummary asks the model for a short, warm route description. Returns
// "" when no narrative is available.
func (s *NarrativeService) GenerateSummary(ctx context.Context, stops []types.ItineraryStop, interests []string, availableHours float64, location string) string {
	if s.client == nil {
		return ""
	}

	ctx, span := otel.Tracer("NarrativeService").Start(ctx, "GenerateSummary")
	defer span.End()
	span.SetAttributes(attribute.Int("stops.count", len(stops)))

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.6),
		MaxOutputTokens: 220,
	}

	result, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(s.buildPrompt(stops, interests, availableHours, location)), config)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Narrative generation failed")
		s.logger.WarnContext(ctx, "Narrative generation failed", slog.Any("error", err))
		return ""
	}

	text := strings.TrimSpace(result.Text())
	span.SetAttributes(attribute.Int("response.length", len(text)))
	span.SetStatus(codes.Ok, "Narrative generated")
	return text
}

func (s *NarrativeService) buildPrompt(stops []types.ItineraryStop, interests []string, availableHours float64, location string) string {
	stopLines := make([]string, 0, len(stops))
	for i, stop := range stops {
		stopLines = append(stopLines, fmt.Sprintf("%d. %s — %s", i+1, stop.Name, stop.Reason))
	}

	interestsText := "general impressions"
	if len(interests) > 0 {
		interestsText = strings.Join(interests, ", ")
	}

	var b strings.Builder
	b.WriteString("You are a friendly local guide. ")
	b.WriteString("Write a short, warm description of a walking route, 2-3 sentences. ")
	b.WriteString("Mention why the route suits the visitor and highlight the variety of the stops.\n")
	fmt.Fprintf(&b, "Starting location: %s. Available time: %.1f h. ", location, availableHours)
	fmt.Fprintf(&b, "Visitor interests: %s.\n", interestsText)
	b.WriteString("Stops with reasons:\n")
	b.WriteString(strings.Join(stopLines, "\n"))
	return b.String()
}
