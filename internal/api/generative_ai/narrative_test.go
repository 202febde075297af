package generativeAI

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripwalk/tripwalk-api/internal/types"
)

func sampleStops() []types.ItineraryStop {
	return []types.ItineraryStop{
		{Name: "City Museum", Reason: "Matches your interests (museum), about 1.0 km away (roughly 14 min on foot)."},
		{Name: "Central Park", Reason: "A popular spot nearby, worth visiting for variety."},
	}
}

func TestGenerateSummaryWithoutCredentials(t *testing.T) {
	t.Setenv("GOOGLE_GEMINI_API_KEY", "")
	svc, err := NewNarrativeService(context.Background(), "gemini-2.0-flash", testLogger())
	require.NoError(t, err)
	require.Nil(t, svc.client)

	summary := svc.GenerateSummary(context.Background(), sampleStops(), []string{"museum"}, 2, "city centre")
	assert.Equal(t, "", summary)
}

func TestBuildPrompt(t *testing.T) {
	svc := &NarrativeService{model: "gemini-2.0-flash", logger: testLogger()}

	prompt := svc.buildPrompt(sampleStops(), []string{"museum", "park"}, 2.5, "city centre")

	assert.Contains(t, prompt, "friendly local guide")
	assert.Contains(t, prompt, "Starting location: city centre.")
	assert.Contains(t, prompt, "Available time: 2.5 h.")
	assert.Contains(t, prompt, "Visitor interests: museum, park.")
	assert.Contains(t, prompt, "1. City Museum —")
	assert.Contains(t, prompt, "2. Central Park —")
}

func TestBuildPromptDefaultInterests(t *testing.T) {
	svc := &NarrativeService{model: "gemini-2.0-flash", logger: testLogger()}

	prompt := svc.buildPrompt(sampleStops(), nil, 1, "city centre")
	assert.Contains(t, prompt, "Visitor interests: general impressions.")
}
