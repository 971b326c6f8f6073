package calendar

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Repository handles calendar and membership data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new calendar repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateWithOwner inserts a calendar and its creator's membership in one
// transaction, so a calendar is never observable without its first member.
func (r *Repository) CreateWithOwner(ctx context.Context, name, creatorID, joinCode string) (*Calendar, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	cal := &Calendar{}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO calendars (calendar_id, calendar_name, creator_user_id, join_code)
		VALUES ($1, $2, $3, $4)
		RETURNING calendar_id, calendar_name, creator_user_id, join_code, created_at, updated_at
	`, uuid.New().String(), name, creatorID, joinCode).Scan(
		&cal.ID,
		&cal.Name,
		&cal.CreatorUserID,
		&cal.JoinCode,
		&cal.CreatedAt,
		&cal.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO calendar_memberships (membership_id, user_id, calendar_id)
		VALUES ($1, $2, $3)
	`, uuid.New().String(), creatorID, cal.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to add creator membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit calendar creation: %w", err)
	}

	return cal, nil
}

// GetByID retrieves a calendar by its ID
func (r *Repository) GetByID(ctx context.Context, id string) (*Calendar, error) {
	return r.getOne(ctx, `
		SELECT calendar_id, calendar_name, creator_user_id, join_code, created_at, updated_at
		FROM calendars
		WHERE calendar_id = $1
	`, id)
}

// GetByJoinCode retrieves a calendar by its join code
func (r *Repository) GetByJoinCode(ctx context.Context, code string) (*Calendar, error) {
	return r.getOne(ctx, `
		SELECT calendar_id, calendar_name, creator_user_id, join_code, created_at, updated_at
		FROM calendars
		WHERE join_code = $1
	`, code)
}

// GetByUserID resolves the calendar a user belongs to via the membership
// relation. If the user were ever in more than one, the earliest joined wins.
func (r *Repository) GetByUserID(ctx context.Context, userID string) (*Calendar, error) {
	return r.getOne(ctx, `
		SELECT c.calendar_id, c.calendar_name, c.creator_user_id, c.join_code, c.created_at, c.updated_at
		FROM calendars c
		JOIN calendar_memberships cm ON c.calendar_id = cm.calendar_id
		WHERE cm.user_id = $1
		ORDER BY cm.joined_at
		LIMIT 1
	`, userID)
}

func (r *Repository) getOne(ctx context.Context, query string, arg interface{}) (*Calendar, error) {
	cal := &Calendar{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&cal.ID,
		&cal.Name,
		&cal.CreatorUserID,
		&cal.JoinCode,
		&cal.CreatedAt,
		&cal.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get calendar: %w", err)
	}
	return cal, nil
}

// ListByUserID retrieves all calendars a user belongs to
func (r *Repository) ListByUserID(ctx context.Context, userID string) ([]*Calendar, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.calendar_id, c.calendar_name, c.creator_user_id, c.join_code, c.created_at, c.updated_at
		FROM calendars c
		JOIN calendar_memberships cm ON c.calendar_id = cm.calendar_id
		WHERE cm.user_id = $1
		ORDER BY cm.joined_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}
	defer rows.Close()

	var calendars []*Calendar
	for rows.Next() {
		cal := &Calendar{}
		if err := rows.Scan(
			&cal.ID,
			&cal.Name,
			&cal.CreatorUserID,
			&cal.JoinCode,
			&cal.CreatedAt,
			&cal.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan calendar: %w", err)
		}
		calendars = append(calendars, cal)
	}

	return calendars, rows.Err()
}

// AddMember adds a user to a calendar
func (r *Repository) AddMember(ctx context.Context, calendarID, userID string) (*Membership, error) {
	query := `
		INSERT INTO calendar_memberships (membership_id, user_id, calendar_id)
		VALUES ($1, $2, $3)
		RETURNING membership_id, user_id, calendar_id, joined_at
	`

	m := &Membership{}
	err := r.db.QueryRowContext(ctx, query, uuid.New().String(), userID, calendarID).Scan(
		&m.ID,
		&m.UserID,
		&m.CalendarID,
		&m.JoinedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return m, nil
}

// GetMembership retrieves a specific user's membership in a calendar
func (r *Repository) GetMembership(ctx context.Context, userID, calendarID string) (*Membership, error) {
	query := `
		SELECT membership_id, user_id, calendar_id, joined_at
		FROM calendar_memberships
		WHERE user_id = $1 AND calendar_id = $2
	`

	m := &Membership{}
	err := r.db.QueryRowContext(ctx, query, userID, calendarID).Scan(
		&m.ID,
		&m.UserID,
		&m.CalendarID,
		&m.JoinedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	return m, nil
}

// ListMemberIDs retrieves the user IDs of all members of a calendar
func (r *Repository) ListMemberIDs(ctx context.Context, calendarID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id
		FROM calendar_memberships
		WHERE calendar_id = $1
		ORDER BY joined_at
	`, calendarID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, userID)
	}

	return members, rows.Err()
}
