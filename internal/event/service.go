package event

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/classcal/server/internal/calendar"
)

// Common errors
var (
	ErrEventNotFound    = errors.New("event not found")
	ErrNoCalendar       = errors.New("no calendar found for user")
	ErrNoFieldsToUpdate = errors.New("no fields to update")
)

// Store is the persistence surface the service needs.
type Store interface {
	GetByID(ctx context.Context, eventID, calendarID string) (*Event, error)
	ListByCalendar(ctx context.Context, calendarID string) ([]*Event, error)
	ListByFilter(ctx context.Context, calendarID string, filter Filter) ([]*Event, error)
	Create(ctx context.Context, calendarID, creatorID string, req *CreateEventRequest) (*Event, error)
	BulkCreate(ctx context.Context, calendarID, creatorID string, reqs []*CreateEventRequest) ([]*Event, error)
	Update(ctx context.Context, eventID, calendarID string, fields []Field) (*Event, error)
	Delete(ctx context.Context, eventID, calendarID string) (bool, error)
	DeleteAll(ctx context.Context, calendarID string) (int64, error)
}

// CalendarResolver resolves the calendar a user belongs to. Absence is
// reported as (nil, nil).
type CalendarResolver interface {
	ResolveForUser(ctx context.Context, userID string) (*calendar.Calendar, error)
}

// Service handles calendar-scoped event business logic. Every operation
// resolves the caller's calendar first: reads without a calendar degrade to
// empty results, writes fail with ErrNoCalendar.
type Service struct {
	repo      Store
	calendars CalendarResolver
	logger    zerolog.Logger
}

// NewService creates a new event service with dependencies injected
func NewService(repo Store, calendars CalendarResolver, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		calendars: calendars,
		logger:    logger.With().Str("component", "event").Logger(),
	}
}

// canMutate decides whether a user may modify an event in their calendar.
// Currently any member of the owning calendar may mutate any of its events;
// keeping the check explicit lets the policy tighten without touching CRUD.
func canMutate(e *Event, userID string, cal *calendar.Calendar) bool {
	return e.CalendarID == cal.ID
}

// Get retrieves a single event in the caller's calendar. An event that
// exists in a different calendar is indistinguishable from one that does
// not exist.
func (s *Service) Get(ctx context.Context, userID, eventID string) (*Event, error) {
	cal, err := s.calendars.ResolveForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cal == nil {
		return nil, ErrEventNotFound
	}

	e, err := s.repo.GetByID(ctx, eventID, cal.ID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrEventNotFound
	}
	return e, nil
}

// List retrieves all events in the caller's calendar ordered by start time.
// A caller without a calendar sees no events rather than an error.
func (s *Service) List(ctx context.Context, userID string) ([]*Event, error) {
	cal, err := s.calendars.ResolveForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cal == nil {
		return []*Event{}, nil
	}

	return s.repo.ListByCalendar(ctx, cal.ID)
}

// ListByFilter retrieves events within the given start-time bounds
func (s *Service) ListByFilter(ctx context.Context, userID string, filter Filter) ([]*Event, error) {
	cal, err := s.calendars.ResolveForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cal == nil {
		return []*Event{}, nil
	}

	return s.repo.ListByFilter(ctx, cal.ID, filter)
}

// Create adds an event to the caller's calendar
func (s *Service) Create(ctx context.Context, userID string, req *CreateEventRequest) (*Event, error) {
	cal, err := s.calendars.ResolveForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cal == nil {
		return nil, ErrNoCalendar
	}

	return s.repo.Create(ctx, cal.ID, userID, req)
}

// BulkCreate adds a batch of events to the caller's calendar in one
// transaction
func (s *Service) BulkCreate(ctx context.Context, userID string, reqs []*CreateEventRequest) ([]*Event, error) {
	cal, err := s.calendars.ResolveForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cal == nil {
		return nil, ErrNoCalendar
	}

	events, err := s.repo.BulkCreate(ctx, cal.ID, userID, reqs)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("calendar_id", cal.ID).Int("count", len(events)).Msg("bulk created events")
	return events, nil
}

// Update applies the provided fields to an event in the caller's calendar
func (s *Service) Update(ctx context.Context, userID, eventID string, req *UpdateEventRequest) (*Event, error) {
	fields := req.Fields()
	if len(fields) == 0 {
		return nil, ErrNoFieldsToUpdate
	}

	cal, err := s.calendars.ResolveForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cal == nil {
		return nil, ErrNoCalendar
	}

	existing, err := s.repo.GetByID(ctx, eventID, cal.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil || !canMutate(existing, userID, cal) {
		return nil, ErrEventNotFound
	}

	updated, err := s.repo.Update(ctx, eventID, cal.ID, fields)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrEventNotFound
	}
	return updated, nil
}

// Delete removes an event from the caller's calendar, reporting whether a
// row was removed
func (s *Service) Delete(ctx context.Context, userID, eventID string) (bool, error) {
	cal, err := s.calendars.ResolveForUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if cal == nil {
		return false, ErrNoCalendar
	}

	existing, err := s.repo.GetByID(ctx, eventID, cal.ID)
	if err != nil {
		return false, err
	}
	if existing == nil || !canMutate(existing, userID, cal) {
		return false, nil
	}

	return s.repo.Delete(ctx, eventID, cal.ID)
}

// DeleteAll removes every event in the caller's calendar and returns the
// count removed
func (s *Service) DeleteAll(ctx context.Context, userID string) (int64, error) {
	cal, err := s.calendars.ResolveForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if cal == nil {
		return 0, ErrNoCalendar
	}

	count, err := s.repo.DeleteAll(ctx, cal.ID)
	if err != nil {
		return 0, err
	}

	s.logger.Info().Str("calendar_id", cal.ID).Int64("count", count).Msg("deleted all events")
	return count, nil
}

// Sync returns the current event list for the caller's calendar. Reserved
// for future external-calendar integration; it performs no remote I/O.
func (s *Service) Sync(ctx context.Context, userID string) ([]*Event, error) {
	return s.List(ctx, userID)
}
