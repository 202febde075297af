package types

type FeedbackStop struct {
	Name        string  `json:"name"`
	ArrivalTime *string `json:"arrival_time,omitempty"`
}

type FeedbackRequest struct {
	Rating         int            `json:"rating"`
	Comment        *string        `json:"comment,omitempty"`
	Interests      []string       `json:"interests"`
	Location       string         `json:"location"`
	AvailableHours float64        `json:"available_hours"`
	Stops          []FeedbackStop `json:"stops"`
}

// FeedbackRecord is the persisted form of a feedback submission.
type FeedbackRecord struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	FeedbackRequest
}
