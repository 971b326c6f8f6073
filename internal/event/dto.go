package event

import "time"

// CreateEventRequest represents the request to create an event
type CreateEventRequest struct {
	Title       string    `json:"title" validate:"required,min=1,max=255"`
	Description *string   `json:"description,omitempty"`
	StartDate   time.Time `json:"startDate" validate:"required"`
	EndDate     time.Time `json:"endDate" validate:"required"`
	AllDay      bool      `json:"allDay"`
}

// UpdateEventRequest represents a partial event update; only provided
// fields are modified.
type UpdateEventRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string    `json:"description,omitempty"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	AllDay      *bool      `json:"allDay,omitempty"`
}

// Field is a single column assignment in a partial update.
type Field struct {
	Column string
	Value  interface{}
}

// Fields enumerates the assignments for the provided fields, keeping the
// set of updatable columns in one place.
func (req *UpdateEventRequest) Fields() []Field {
	var fields []Field
	if req.Title != nil {
		fields = append(fields, Field{Column: "title", Value: *req.Title})
	}
	if req.Description != nil {
		fields = append(fields, Field{Column: "description", Value: *req.Description})
	}
	if req.StartDate != nil {
		fields = append(fields, Field{Column: "start_datetime", Value: *req.StartDate})
	}
	if req.EndDate != nil {
		fields = append(fields, Field{Column: "end_datetime", Value: *req.EndDate})
	}
	if req.AllDay != nil {
		fields = append(fields, Field{Column: "all_day", Value: *req.AllDay})
	}
	return fields
}

// Filter restricts listings by event start time; both bounds are optional
// and both compare against the event start, not its end.
type Filter struct {
	Start *time.Time
	End   *time.Time
}

// EventResponse is the external event shape. The type, status and color
// fields are constant display defaults the storage layer does not track.
type EventResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	StartDate   string  `json:"startDate"`
	EndDate     string  `json:"endDate"`
	AllDay      bool    `json:"allDay"`
	Type        string  `json:"type"`
	Status      string  `json:"status"`
	Color       string  `json:"color"`
}

// Display defaults injected into every projection.
const (
	defaultType   = "GeneralActivity"
	defaultStatus = "Scheduled"
	defaultColor  = "#3b82f6"
)

// ToResponse converts an Event model to an EventResponse DTO
func (e *Event) ToResponse() *EventResponse {
	return &EventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		StartDate:   e.StartDatetime.Format(time.RFC3339),
		EndDate:     e.EndDatetime.Format(time.RFC3339),
		AllDay:      e.AllDay,
		Type:        defaultType,
		Status:      defaultStatus,
		Color:       defaultColor,
	}
}

// ToResponseList converts a slice of Event models to response DTOs
func ToResponseList(events []*Event) []*EventResponse {
	responses := make([]*EventResponse, len(events))
	for i, e := range events {
		responses[i] = e.ToResponse()
	}
	return responses
}
