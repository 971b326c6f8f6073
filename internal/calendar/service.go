package calendar

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/classcal/server/internal/database"
)

// Common errors
var (
	ErrCalendarNotFound = errors.New("calendar not found")
	ErrInvalidJoinCode  = errors.New("invalid join code")
	ErrAlreadyMember    = errors.New("user is already a member of this calendar")
	ErrCalendarCreation = errors.New("failed to create calendar")
)

// maxJoinCodeAttempts bounds regeneration when a generated code collides
// with an existing one.
const maxJoinCodeAttempts = 5

// Store is the persistence surface the service needs.
type Store interface {
	CreateWithOwner(ctx context.Context, name, creatorID, joinCode string) (*Calendar, error)
	GetByID(ctx context.Context, id string) (*Calendar, error)
	GetByJoinCode(ctx context.Context, code string) (*Calendar, error)
	GetByUserID(ctx context.Context, userID string) (*Calendar, error)
	ListByUserID(ctx context.Context, userID string) ([]*Calendar, error)
	AddMember(ctx context.Context, calendarID, userID string) (*Membership, error)
	GetMembership(ctx context.Context, userID, calendarID string) (*Membership, error)
	ListMemberIDs(ctx context.Context, calendarID string) ([]string, error)
}

// Service owns calendar creation, join-code lookup and membership
type Service struct {
	repo   Store
	logger zerolog.Logger
}

// NewService creates a new calendar service
func NewService(repo Store, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "calendar").Logger(),
	}
}

// Create generates a join code, persists the calendar and adds the creator
// as its first member. A join-code collision is resolved by regenerating,
// bounded by maxJoinCodeAttempts.
func (s *Service) Create(ctx context.Context, creatorID string, req *CreateCalendarRequest) (*Calendar, error) {
	for attempt := 0; attempt < maxJoinCodeAttempts; attempt++ {
		code, err := generateJoinCode()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCalendarCreation, err)
		}

		cal, err := s.repo.CreateWithOwner(ctx, req.CalendarName, creatorID, code)
		if err != nil {
			if database.IsUniqueViolation(err) {
				s.logger.Warn().Int("attempt", attempt+1).Msg("join code collision, regenerating")
				continue
			}
			return nil, fmt.Errorf("%w: %v", ErrCalendarCreation, err)
		}

		s.logger.Info().Str("calendar_id", cal.ID).Str("creator_user_id", creatorID).Msg("calendar created")
		return cal, nil
	}

	return nil, fmt.Errorf("%w: join code attempts exhausted", ErrCalendarCreation)
}

// GetByID retrieves a calendar by its ID
func (s *Service) GetByID(ctx context.Context, id string) (*Calendar, error) {
	cal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cal == nil {
		return nil, ErrCalendarNotFound
	}
	return cal, nil
}

// GetForUser resolves the calendar the user belongs to, failing when there
// is none.
func (s *Service) GetForUser(ctx context.Context, userID string) (*Calendar, error) {
	cal, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cal == nil {
		return nil, ErrCalendarNotFound
	}
	return cal, nil
}

// ResolveForUser resolves the calendar the user belongs to; absence is not
// an error here, callers that need a hard failure use GetForUser.
func (s *Service) ResolveForUser(ctx context.Context, userID string) (*Calendar, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// ListForUser retrieves all calendars the user belongs to
func (s *Service) ListForUser(ctx context.Context, userID string) ([]*Calendar, error) {
	return s.repo.ListByUserID(ctx, userID)
}

// AddMember adds a user to a calendar directly. Unlike Join, a pre-existing
// membership is an error here.
func (s *Service) AddMember(ctx context.Context, calendarID, userID string) (*Membership, error) {
	cal, err := s.repo.GetByID(ctx, calendarID)
	if err != nil {
		return nil, err
	}
	if cal == nil {
		return nil, ErrCalendarNotFound
	}

	existing, err := s.repo.GetMembership(ctx, userID, calendarID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyMember
	}

	m, err := s.repo.AddMember(ctx, calendarID, userID)
	if err != nil {
		// The (user, calendar) uniqueness constraint is the authoritative
		// guard; the existence check above can lose a race.
		if database.IsUniqueViolation(err) {
			return nil, ErrAlreadyMember
		}
		return nil, err
	}

	return m, nil
}

// Join adds the user to the calendar identified by the join code. Joining a
// calendar the user already belongs to is success, not an error; the
// returned flag reports that case.
func (s *Service) Join(ctx context.Context, userID, code string) (*Calendar, bool, error) {
	cal, err := s.repo.GetByJoinCode(ctx, code)
	if err != nil {
		return nil, false, err
	}
	if cal == nil {
		return nil, false, ErrInvalidJoinCode
	}

	existing, err := s.repo.GetMembership(ctx, userID, cal.ID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return cal, true, nil
	}

	if _, err := s.repo.AddMember(ctx, cal.ID, userID); err != nil {
		if database.IsUniqueViolation(err) {
			return cal, true, nil
		}
		return nil, false, err
	}

	s.logger.Info().Str("calendar_id", cal.ID).Str("user_id", userID).Msg("user joined calendar")
	return cal, false, nil
}

// ListMembers retrieves the user IDs of all members of a calendar
func (s *Service) ListMembers(ctx context.Context, calendarID string) ([]string, error) {
	cal, err := s.repo.GetByID(ctx, calendarID)
	if err != nil {
		return nil, err
	}
	if cal == nil {
		return nil, ErrCalendarNotFound
	}

	return s.repo.ListMemberIDs(ctx, calendarID)
}
