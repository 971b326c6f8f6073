package calendar

// CreateCalendarRequest represents the request to create a new calendar
type CreateCalendarRequest struct {
	CalendarName string `json:"calendar_name" validate:"required,min=1,max=255"`
}

// JoinCalendarRequest represents the request to join a calendar by code
type JoinCalendarRequest struct {
	JoinCode string `json:"join_code" validate:"required,len=6,alphanum"`
}

// CalendarResponse is the external calendar shape; internal timestamps are
// not exposed.
type CalendarResponse struct {
	CalendarID    string `json:"calendar_id"`
	CalendarName  string `json:"calendar_name"`
	CreatorUserID string `json:"creator_user_id"`
	JoinCode      string `json:"join_code"`
}

// MembersResponse lists the user IDs belonging to a calendar
type MembersResponse struct {
	CalendarID string   `json:"calendar_id"`
	Members    []string `json:"members"`
}

// ToResponse converts a Calendar model to a CalendarResponse DTO
func (c *Calendar) ToResponse() *CalendarResponse {
	return &CalendarResponse{
		CalendarID:    c.ID,
		CalendarName:  c.Name,
		CreatorUserID: c.CreatorUserID,
		JoinCode:      c.JoinCode,
	}
}
