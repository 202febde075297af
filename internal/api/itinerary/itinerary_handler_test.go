package itinerary

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tripwalk/tripwalk-api/internal/types"
)

type MockItineraryService struct {
	mock.Mock
}

func (m *MockItineraryService) Plan(ctx context.Context, interests []string, availableHours float64, location string) (*types.ItineraryResponse, []string, error) {
	args := m.Called(ctx, interests, availableHours, location)
	var response *types.ItineraryResponse
	if args.Get(0) != nil {
		response = args.Get(0).(*types.ItineraryResponse)
	}
	var warnings []string
	if args.Get(1) != nil {
		warnings = args.Get(1).([]string)
	}
	return response, warnings, args.Error(2)
}

func postItinerary(t *testing.T, handler *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/itinerary", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.GenerateItinerary(rr, req)
	return rr
}

func TestGenerateItineraryHappyPath(t *testing.T) {
	service := new(MockItineraryService)
	service.On("Plan", mock.Anything, []string{"museum"}, 2.0, "city centre").
		Return(&types.ItineraryResponse{
			Summary:              "The route includes 1 stops. available time: 2.0 h.",
			TotalDurationMinutes: 75,
			Stops: []types.ItineraryStop{{
				Name:                "City Museum",
				Address:             "Main Street 1",
				Reason:              "Matches your interests (museum), about 1.0 km away (roughly 14 min on foot).",
				ArrivalTime:         "10:14",
				StayDurationMinutes: 60,
			}},
		}, nil, nil)

	handler := NewHandler(service, testLogger())
	rr := postItinerary(t, handler, `{"interests":["museum"],"available_hours":2,"location":"city centre"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var response types.ItineraryResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	require.Len(t, response.Stops, 1)
	assert.Equal(t, "City Museum", response.Stops[0].Name)
	assert.Equal(t, 75, response.TotalDurationMinutes)

	service.AssertExpectations(t)
}

func TestGenerateItineraryTrimsInterests(t *testing.T) {
	service := new(MockItineraryService)
	service.On("Plan", mock.Anything, []string{"museum", "street art"}, 2.0, "city centre").
		Return(&types.ItineraryResponse{}, nil, nil)

	handler := NewHandler(service, testLogger())
	rr := postItinerary(t, handler, `{"interests":["  museum ","","street art"],"available_hours":2,"location":"city centre"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	service.AssertExpectations(t)
}

func TestGenerateItineraryValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{
			name:    "no interests",
			body:    `{"interests":[],"available_hours":2,"location":"city centre"}`,
			wantMsg: "At least one interest is required",
		},
		{
			name:    "blank interests only",
			body:    `{"interests":["   ",""],"available_hours":2,"location":"city centre"}`,
			wantMsg: "At least one interest is required",
		},
		{
			name:    "zero hours",
			body:    `{"interests":["museum"],"available_hours":0,"location":"city centre"}`,
			wantMsg: "available_hours must be greater than zero",
		},
		{
			name:    "negative hours",
			body:    `{"interests":["museum"],"available_hours":-1,"location":"city centre"}`,
			wantMsg: "available_hours must be greater than zero",
		},
		{
			name:    "short location",
			body:    `{"interests":["museum"],"available_hours":2,"location":" ab "}`,
			wantMsg: "location must be at least 3 characters",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			service := new(MockItineraryService)
			handler := NewHandler(service, testLogger())

			rr := postItinerary(t, handler, tc.body)

			require.Equal(t, http.StatusBadRequest, rr.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tc.wantMsg, body["error"])

			service.AssertNotCalled(t, "Plan", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestGenerateItineraryMalformedBody(t *testing.T) {
	service := new(MockItineraryService)
	handler := NewHandler(service, testLogger())

	rr := postItinerary(t, handler, `{"interests":`)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	service.AssertNotCalled(t, "Plan", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateItineraryServiceError(t *testing.T) {
	service := new(MockItineraryService)
	service.On("Plan", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, nil, errors.New("catalog unavailable"))

	handler := NewHandler(service, testLogger())
	rr := postItinerary(t, handler, `{"interests":["museum"],"available_hours":2,"location":"city centre"}`)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "Failed to plan itinerary", body["error"])
}
