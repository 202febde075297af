package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tripwalk/tripwalk-api/app/observability/metrics"
	"github.com/tripwalk/tripwalk-api/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service resolves free-text locations into coordinates. ResolveLocation
// never fails: when the geocoder cannot answer, it returns the configured
// city-centre default plus a warning for the user.
type Service interface {
	ResolveLocation(ctx context.Context, query string) (types.Coordinates, string)
}

// Options configures the Nominatim client.
type Options struct {
	BaseURL       string
	UserAgent     string
	Timeout       time.Duration
	City          string
	DefaultCoords types.Coordinates
}

type ServiceImpl struct {
	logger        *slog.Logger
	client        *http.Client
	baseURL       string
	userAgent     string
	city          string
	cityHints     []string
	defaultCoords types.Coordinates
	cache         *cache.Cache
}

// Raw "lat, lon" input is forwarded to the geocoder untouched apart from
// separator normalization.
var coordinateRe = regexp.MustCompile(`^\s*[+-]?\d{1,3}(\.\d+)?\s*[,;\s]\s*[+-]?\d{1,3}(\.\d+)?\s*$`)

func NewServiceImpl(opts Options, logger *slog.Logger) *ServiceImpl {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	city := opts.City
	if city == "" {
		city = "Nizhny Novgorod"
	}
	return &ServiceImpl{
		logger:        logger,
		client:        &http.Client{Timeout: timeout},
		baseURL:       strings.TrimRight(opts.BaseURL, "/"),
		userAgent:     opts.UserAgent,
		city:          city,
		cityHints:     []string{"нижний", "nizhny", "nn"},
		defaultCoords: opts.DefaultCoords,
		cache:         cache.New(24*time.Hour, 1*time.Hour),
	}
}

// ResolveLocation resolves the query and reports an advisory warning when the
// result is degraded (geocoder down, nothing found) or when the query was
// reinterpreted before lookup.
func (s *ServiceImpl) ResolveLocation(ctx context.Context, query string) (types.Coordinates, string) {
	ctx, span := otel.Tracer("GeocodeService").Start(ctx, "ResolveLocation", trace.WithAttributes(
		attribute.String("query", query),
	))
	defer span.End()

	normalized := s.normalizeQuery(query)
	coords, err := s.geocode(ctx, normalized)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Geocoding failed")
		s.logger.WarnContext(ctx, "Geocoding failed, using city centre",
			slog.String("query", query), slog.Any("error", err))
		metrics.Get().GeocodeFallbacksTotal.Add(ctx, 1)
		warning := fmt.Sprintf("Could not resolve coordinates for %q. Starting from the centre of %s instead.", query, s.city)
		return s.defaultCoords, warning
	}

	span.SetStatus(codes.Ok, "Location resolved")
	if normalized != strings.TrimSpace(query) {
		return coords, fmt.Sprintf("Interpreting the location as %q.", normalized)
	}
	return coords, ""
}

// normalizeQuery anchors ambiguous queries to the configured city. Raw
// coordinates and queries that already mention the city pass through.
func (s *ServiceImpl) normalizeQuery(query string) string {
	raw := strings.TrimSpace(query)
	if raw == "" {
		return s.city
	}

	if coordinateRe.MatchString(raw) {
		parts := regexp.MustCompile(`[,;\s]+`).Split(raw, -1)
		if len(parts) >= 2 {
			return parts[0] + "," + parts[1]
		}
		return raw
	}

	lowered := strings.ToLower(raw)
	for _, hint := range s.cityHints {
		if strings.Contains(lowered, hint) {
			return raw
		}
	}
	return raw + ", " + s.city
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// geocode queries the Nominatim search endpoint for the normalized text,
// memoizing successful lookups. Geocoding results for a fixed query do not
// change, so entries are never invalidated within the process lifetime.
func (s *ServiceImpl) geocode(ctx context.Context, normalized string) (types.Coordinates, error) {
	if cached, ok := s.cache.Get(normalized); ok {
		return cached.(types.Coordinates), nil
	}

	endpoint := fmt.Sprintf("%s/search?%s", s.baseURL, url.Values{
		"q":      {normalized},
		"format": {"jsonv2"},
		"limit":  {"1"},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return types.Coordinates{}, fmt.Errorf("build geocode request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return types.Coordinates{}, fmt.Errorf("execute geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.Coordinates{}, fmt.Errorf("unexpected geocoder status: %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return types.Coordinates{}, fmt.Errorf("decode geocode response: %w", err)
	}
	if len(results) == 0 {
		return types.Coordinates{}, fmt.Errorf("no geocode results for %q", normalized)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return types.Coordinates{}, fmt.Errorf("parse latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return types.Coordinates{}, fmt.Errorf("parse longitude: %w", err)
	}

	coords := types.Coordinates{Latitude: lat, Longitude: lon}
	s.cache.Set(normalized, coords, cache.DefaultExpiration)
	return coords, nil
}
