package calendar

import "time"

// Calendar is the tenant boundary: events and memberships belong to exactly
// one calendar, and the join code is the public token that grants access.
type Calendar struct {
	ID            string    `json:"calendar_id"`
	Name          string    `json:"calendar_name"`
	CreatorUserID string    `json:"creator_user_id"`
	JoinCode      string    `json:"join_code"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Membership grants a user access to a calendar. The (user, calendar) pair
// is unique.
type Membership struct {
	ID         string    `json:"membership_id"`
	UserID     string    `json:"user_id"`
	CalendarID string    `json:"calendar_id"`
	JoinedAt   time.Time `json:"joined_at"`
}
