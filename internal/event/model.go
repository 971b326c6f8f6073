package event

import "time"

// Event represents an entry on a class calendar. An event always belongs to
// exactly one calendar; every access is keyed by (event, calendar).
type Event struct {
	ID            string    `json:"event_id"`
	CalendarID    string    `json:"calendar_id"`
	CreatorUserID string    `json:"creator_user_id"`
	Title         string    `json:"title"`
	Description   *string   `json:"description,omitempty"`
	StartDatetime time.Time `json:"start_datetime"`
	EndDatetime   time.Time `json:"end_datetime"`
	AllDay        bool      `json:"all_day"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
