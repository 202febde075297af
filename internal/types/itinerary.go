package types

// Coordinates is a WGS84 point.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Place is an immutable catalog entry. The catalog is loaded once at startup
// and shared read-only between requests.
type Place struct {
	ID                    int      `json:"id"`
	Title                 string   `json:"title"`
	Description           string   `json:"description"`
	Address               string   `json:"address"`
	Latitude              float64  `json:"latitude"`
	Longitude             float64  `json:"longitude"`
	CategoryID            *int     `json:"category_id,omitempty"`
	Tags                  []string `json:"tags"`
	EstimatedVisitMinutes int      `json:"estimated_visit_minutes"`
	SourceURL             *string  `json:"source_url,omitempty"`
}

// Coordinates returns the place position as a point.
func (p Place) Coordinates() Coordinates {
	return Coordinates{Latitude: p.Latitude, Longitude: p.Longitude}
}

// ToStop converts the place into a response stop with the resolved arrival
// time and justification attached.
func (p Place) ToStop(reason, arrivalTime string) ItineraryStop {
	return ItineraryStop{
		Name:                p.Title,
		Address:             p.Address,
		Reason:              reason,
		ArrivalTime:         arrivalTime,
		StayDurationMinutes: p.EstimatedVisitMinutes,
		Latitude:            p.Latitude,
		Longitude:           p.Longitude,
	}
}

type ItineraryRequest struct {
	Interests      []string `json:"interests"`
	AvailableHours float64  `json:"available_hours"`
	Location       string   `json:"location"`
}

type ItineraryStop struct {
	Name                string  `json:"name"`
	Address             string  `json:"address"`
	Reason              string  `json:"reason"`
	ArrivalTime         string  `json:"arrival_time"`
	StayDurationMinutes int     `json:"stay_duration_minutes"`
	Latitude            float64 `json:"latitude"`
	Longitude           float64 `json:"longitude"`
}

type ItineraryResponse struct {
	Summary              string          `json:"summary"`
	TotalDurationMinutes int             `json:"total_duration_minutes"`
	Stops                []ItineraryStop `json:"stops"`
	Notes                []string        `json:"notes,omitempty"`
}
