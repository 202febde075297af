package itinerary

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tripwalk/tripwalk-api/app/observability/metrics"
	"github.com/tripwalk/tripwalk-api/internal/types"
)

func TestMain(m *testing.M) {
	metrics.InitAppMetrics()
	os.Exit(m.Run())
}

type MockLocationResolver struct {
	mock.Mock
}

func (m *MockLocationResolver) ResolveLocation(ctx context.Context, query string) (types.Coordinates, string) {
	args := m.Called(ctx, query)
	return args.Get(0).(types.Coordinates), args.String(1)
}

type MockInterestEmbedder struct {
	mock.Mock
}

func (m *MockInterestEmbedder) EmbedInterests(ctx context.Context, interests []string) ([]float64, bool) {
	args := m.Called(ctx, interests)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).([]float64), args.Bool(1)
}

func (m *MockInterestEmbedder) SemanticSimilarity(ctx context.Context, vector []float64, place types.Place) float64 {
	args := m.Called(ctx, vector, place)
	return args.Get(0).(float64)
}

type MockSummaryGenerator struct {
	mock.Mock
}

func (m *MockSummaryGenerator) GenerateSummary(ctx context.Context, stops []types.ItineraryStop, interests []string, availableHours float64, location string) string {
	args := m.Called(ctx, stops, interests, availableHours, location)
	return args.String(0)
}

type stubCatalog struct {
	places []types.Place
}

func (s *stubCatalog) Places() []types.Place { return s.places }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestService(places []types.Place, geocoder *MockLocationResolver, embedder *MockInterestEmbedder, narrative *MockSummaryGenerator) *ServiceImpl {
	svc := NewServiceImpl(&stubCatalog{places: places}, geocoder, embedder, narrative, testLogger())
	svc.now = func() time.Time { return time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC) }
	return svc
}

func twoPlaceCatalog() []types.Place {
	return []types.Place{
		{
			ID:                    1,
			Title:                 "City Museum",
			Address:               "Main Street 1",
			Latitude:              0.009, // about 1 km north of the start
			Longitude:             0,
			Tags:                  []string{"museum"},
			EstimatedVisitMinutes: 60,
		},
		{
			ID:                    2,
			Title:                 "Central Park",
			Address:               "Park Lane 2",
			Latitude:              0.018, // about 2 km north of the start
			Longitude:             0,
			Tags:                  []string{"park"},
			EstimatedVisitMinutes: 30,
		},
	}
}

func TestPlanEndToEnd(t *testing.T) {
	geocoder := new(MockLocationResolver)
	embedder := new(MockInterestEmbedder)
	narrative := new(MockSummaryGenerator)

	start := types.Coordinates{Latitude: 0, Longitude: 0}
	geocoder.On("ResolveLocation", mock.Anything, "city centre").Return(start, "")
	embedder.On("EmbedInterests", mock.Anything, []string{"museum"}).Return(nil, false)
	narrative.On("GenerateSummary", mock.Anything, mock.Anything, []string{"museum"}, 2.0, "city centre").Return("")

	svc := newTestService(twoPlaceCatalog(), geocoder, embedder, narrative)

	response, warnings, err := svc.Plan(context.Background(), []string{"museum"}, 2, "city centre")
	require.NoError(t, err)
	require.NotNil(t, response)
	assert.Empty(t, warnings)

	require.Len(t, response.Stops, 2)
	// The interest match outranks the closer-but-unmatched park.
	assert.Equal(t, "City Museum", response.Stops[0].Name)
	assert.Equal(t, "Central Park", response.Stops[1].Name)

	places := twoPlaceCatalog()
	firstLeg := walkingMinutes(haversineKm(start, places[0].Coordinates()))
	secondLeg := walkingMinutes(haversineKm(places[0].Coordinates(), places[1].Coordinates()))

	startTime := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	wantFirst := startTime.Add(time.Duration(firstLeg * float64(time.Minute)))
	wantSecond := wantFirst.Add(60 * time.Minute).Add(time.Duration(secondLeg * float64(time.Minute)))

	assert.Equal(t, wantFirst.Format("15:04"), response.Stops[0].ArrivalTime)
	assert.Equal(t, wantSecond.Format("15:04"), response.Stops[1].ArrivalTime)
	assert.Equal(t, 60, response.Stops[0].StayDurationMinutes)

	assert.Contains(t, response.Stops[0].Reason, "museum")
	assert.Contains(t, response.Summary, "The route includes 2 stops")
	assert.Contains(t, response.Summary, "interests considered: museum")
}

func TestPlanIdempotent(t *testing.T) {
	geocoder := new(MockLocationResolver)
	embedder := new(MockInterestEmbedder)
	narrative := new(MockSummaryGenerator)

	geocoder.On("ResolveLocation", mock.Anything, mock.Anything).Return(types.Coordinates{}, "")
	embedder.On("EmbedInterests", mock.Anything, mock.Anything).Return(nil, false)
	narrative.On("GenerateSummary", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("")

	svc := newTestService(twoPlaceCatalog(), geocoder, embedder, narrative)

	first, _, err := svc.Plan(context.Background(), []string{"museum", "park"}, 3, "city centre")
	require.NoError(t, err)
	second, _, err := svc.Plan(context.Background(), []string{"museum", "park"}, 3, "city centre")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPlanFallbackWhenNothingMatches(t *testing.T) {
	geocoder := new(MockLocationResolver)
	embedder := new(MockInterestEmbedder)
	narrative := new(MockSummaryGenerator)

	geocoder.On("ResolveLocation", mock.Anything, mock.Anything).Return(types.Coordinates{}, "")
	embedder.On("EmbedInterests", mock.Anything, mock.Anything).Return(nil, false)
	narrative.On("GenerateSummary", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("")

	svc := newTestService(twoPlaceCatalog(), geocoder, embedder, narrative)

	response, warnings, err := svc.Plan(context.Background(), []string{"opera"}, 2, "city centre")
	require.NoError(t, err)

	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0], "No places matched your interests")
	assert.NotEmpty(t, response.Stops)
	// Fallback stops cite the place's own tags.
	assert.Contains(t, response.Stops[0].Reason, "Matches your interests")
}

func TestPlanTimeOverrunWarning(t *testing.T) {
	geocoder := new(MockLocationResolver)
	embedder := new(MockInterestEmbedder)
	narrative := new(MockSummaryGenerator)

	geocoder.On("ResolveLocation", mock.Anything, mock.Anything).Return(types.Coordinates{}, "")
	embedder.On("EmbedInterests", mock.Anything, mock.Anything).Return(nil, false)
	narrative.On("GenerateSummary", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("")

	svc := newTestService(twoPlaceCatalog(), geocoder, embedder, narrative)

	// Ten minutes cannot cover the forced first stop.
	response, warnings, err := svc.Plan(context.Background(), []string{"museum"}, 10.0/60.0, "city centre")
	require.NoError(t, err)

	require.NotEmpty(t, response.Stops)
	assert.Contains(t, warnings, "Fitting every interesting place into the given limit is tight; the walk may take a little longer.")
}

func TestPlanGeocodeWarningPropagates(t *testing.T) {
	geocoder := new(MockLocationResolver)
	embedder := new(MockInterestEmbedder)
	narrative := new(MockSummaryGenerator)

	geocoder.On("ResolveLocation", mock.Anything, mock.Anything).
		Return(types.Coordinates{Latitude: 56.326887, Longitude: 44.005986}, "Could not resolve coordinates; starting from the city centre.")
	embedder.On("EmbedInterests", mock.Anything, mock.Anything).Return(nil, false)
	narrative.On("GenerateSummary", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("")

	svc := newTestService(twoPlaceCatalog(), geocoder, embedder, narrative)

	response, warnings, err := svc.Plan(context.Background(), []string{"museum"}, 2, "nowhere")
	require.NoError(t, err)

	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0], "Could not resolve coordinates")
	assert.Equal(t, warnings, response.Notes)
}

func TestPlanNarrativePrepended(t *testing.T) {
	geocoder := new(MockLocationResolver)
	embedder := new(MockInterestEmbedder)
	narrative := new(MockSummaryGenerator)

	geocoder.On("ResolveLocation", mock.Anything, mock.Anything).Return(types.Coordinates{}, "")
	embedder.On("EmbedInterests", mock.Anything, mock.Anything).Return(nil, false)
	narrative.On("GenerateSummary", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("A lovely stroll through the old town.")

	svc := newTestService(twoPlaceCatalog(), geocoder, embedder, narrative)

	response, _, err := svc.Plan(context.Background(), []string{"museum"}, 2, "city centre")
	require.NoError(t, err)

	assert.Equal(t, "A lovely stroll through the old town. The route includes 2 stops. available time: 2.0 h.. interests considered: museum", response.Summary)
}

func TestPlanSemanticScoringUsed(t *testing.T) {
	geocoder := new(MockLocationResolver)
	embedder := new(MockInterestEmbedder)
	narrative := new(MockSummaryGenerator)

	vector := []float64{0.6, 0.8}
	geocoder.On("ResolveLocation", mock.Anything, mock.Anything).Return(types.Coordinates{}, "")
	embedder.On("EmbedInterests", mock.Anything, []string{"museum"}).Return(vector, true)
	embedder.On("SemanticSimilarity", mock.Anything, vector, mock.Anything).Return(0.9)
	narrative.On("GenerateSummary", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("")

	svc := newTestService(twoPlaceCatalog(), geocoder, embedder, narrative)

	_, _, err := svc.Plan(context.Background(), []string{"museum"}, 2, "city centre")
	require.NoError(t, err)

	embedder.AssertCalled(t, "SemanticSimilarity", mock.Anything, vector, mock.Anything)
}
