package generativeAI

import (
	"context"
	"log/slog"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"
	"google.golang.org/genai"

	"github.com/tripwalk/tripwalk-api/internal/types"
)

// EmbeddingService turns text into L2-normalized embedding vectors via the
// Gemini API. Without an API key the service stays up but reports the
// semantic signal as unavailable; it never errors into the planner.
type EmbeddingService struct {
	client *genai.Client // nil when no credentials are configured
	model  string
	logger *slog.Logger
	cache  *cache.Cache
	group  singleflight.Group
}

func NewEmbeddingService(ctx context.Context, model string, logger *slog.Logger) (*EmbeddingService, error) {
	s := &EmbeddingService{
		model:  model,
		logger: logger,
		cache:  cache.New(24*time.Hour, 1*time.Hour),
	}

	apiKey := os.Getenv("GOOGLE_GEMINI_API_KEY")
	if apiKey == "" {
		logger.Warn("GOOGLE_GEMINI_API_KEY is not set; semantic scoring disabled")
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

// EmbedInterests embeds the joined, sorted interest set. ok is false when the
// signal is unavailable (no credentials, empty input, remote failure).
func (s *EmbeddingService) EmbedInterests(ctx context.Context, interests []string) ([]float64, bool) {
	deduped := make(map[string]struct{}, len(interests))
	for _, interest := range interests {
		if interest != "" {
			deduped[interest] = struct{}{}
		}
	}
	joinedList := make([]string, 0, len(deduped))
	for interest := range deduped {
		joinedList = append(joinedList, interest)
	}
	sort.Strings(joinedList)

	joined := strings.TrimSpace(strings.Join(joinedList, ", "))
	if joined == "" {
		return nil, false
	}
	return s.embedText(ctx, joined)
}

// SemanticSimilarity is the dot product of the interest vector and the
// place's embedding. Both sides are unit vectors, so the result is a cosine
// similarity in [-1, 1]; 0 when either side is unavailable.
func (s *EmbeddingService) SemanticSimilarity(ctx context.Context, vector []float64, place types.Place) float64 {
	if len(vector) == 0 {
		return 0.0
	}
	placeVector, ok := s.embedText(ctx, placeText(place))
	if !ok || len(placeVector) != len(vector) {
		return 0.0
	}
	dot := 0.0
	for i, component := range vector {
		dot += component * placeVector[i]
	}
	return dot
}

// placeText flattens the place's display fields into one embedding input.
func placeText(place types.Place) string {
	parts := []string{place.Title, place.Description, place.Address, strings.Join(place.Tags, ", ")}
	nonEmpty := parts[:0]
	for _, part := range parts {
		if part != "" {
			nonEmpty = append(nonEmpty, part)
		}
	}
	return strings.TrimSpace(strings.Join(nonEmpty, " | "))
}

// embedText fetches (or reuses) the normalized embedding for a text.
// Embeddings for a fixed text do not change, so cache entries live for the
// process lifetime; singleflight collapses concurrent identical requests.
func (s *EmbeddingService) embedText(ctx context.Context, text string) ([]float64, bool) {
	if s.client == nil || text == "" {
		return nil, false
	}
	if cached, ok := s.cache.Get(text); ok {
		return cached.([]float64), true
	}

	result, err, _ := s.group.Do(text, func() (interface{}, error) {
		ctx, span := otel.Tracer("EmbeddingService").Start(ctx, "EmbedContent")
		defer span.End()
		span.SetAttributes(attribute.Int("text.length", len(text)))

		response, err := s.client.Models.EmbedContent(ctx, s.model, genai.Text(text), nil)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Embedding request failed")
			return nil, err
		}
		if len(response.Embeddings) == 0 || len(response.Embeddings[0].Values) == 0 {
			span.SetStatus(codes.Error, "Empty embedding response")
			return nil, errEmptyEmbedding
		}
		span.SetStatus(codes.Ok, "Embedding generated")
		return normalize(response.Embeddings[0].Values), nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Embedding unavailable", slog.Any("error", err))
		return nil, false
	}

	vector, ok := result.([]float64)
	if !ok || vector == nil {
		return nil, false
	}
	s.cache.Set(text, vector, cache.NoExpiration)
	return vector, true
}

var errEmptyEmbedding = errEmpty("empty embedding response")

type errEmpty string

func (e errEmpty) Error() string { return string(e) }

// normalize scales the raw vector to unit length. A zero vector has no
// direction and is reported as absent.
func normalize(raw []float32) []float64 {
	norm := 0.0
	for _, component := range raw {
		norm += float64(component) * float64(component)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return nil
	}
	out := make([]float64, len(raw))
	for i, component := range raw {
		out[i] = float64(component) / norm
	}
	return out
}
