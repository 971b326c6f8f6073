package event

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Repository handles event data persistence. Every row access is keyed by
// (event_id, calendar_id) so an ID from another calendar never resolves.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new event repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const eventColumns = "event_id, calendar_id, creator_user_id, title, description, start_datetime, end_datetime, all_day, created_at, updated_at"

func scanEvent(row interface{ Scan(...interface{}) error }) (*Event, error) {
	e := &Event{}
	err := row.Scan(
		&e.ID,
		&e.CalendarID,
		&e.CreatorUserID,
		&e.Title,
		&e.Description,
		&e.StartDatetime,
		&e.EndDatetime,
		&e.AllDay,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetByID retrieves an event scoped to a calendar
func (r *Repository) GetByID(ctx context.Context, eventID, calendarID string) (*Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE event_id = $1 AND calendar_id = $2`, eventColumns)

	e, err := scanEvent(r.db.QueryRowContext(ctx, query, eventID, calendarID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return e, nil
}

// ListByCalendar retrieves all events in a calendar ordered by start time
func (r *Repository) ListByCalendar(ctx context.Context, calendarID string) ([]*Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE calendar_id = $1 ORDER BY start_datetime ASC`, eventColumns)
	return r.list(ctx, query, calendarID)
}

// ListByFilter retrieves events in a calendar within the given start-time
// bounds, ordered by start time. Both bounds compare against the event
// start; the upper bound deliberately ignores the event end.
func (r *Repository) ListByFilter(ctx context.Context, calendarID string, filter Filter) ([]*Event, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, `SELECT %s FROM events WHERE calendar_id = $1`, eventColumns)
	args := []interface{}{calendarID}

	if filter.Start != nil {
		args = append(args, *filter.Start)
		fmt.Fprintf(&sb, " AND start_datetime >= $%d", len(args))
	}
	if filter.End != nil {
		args = append(args, *filter.End)
		fmt.Fprintf(&sb, " AND start_datetime <= $%d", len(args))
	}
	sb.WriteString(" ORDER BY start_datetime ASC")

	return r.list(ctx, sb.String(), args...)
}

func (r *Repository) list(ctx context.Context, query string, args ...interface{}) ([]*Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

// Create inserts a new event into a calendar
func (r *Repository) Create(ctx context.Context, calendarID, creatorID string, req *CreateEventRequest) (*Event, error) {
	query := fmt.Sprintf(`
		INSERT INTO events (event_id, calendar_id, creator_user_id, title, description, start_datetime, end_datetime, all_day)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s
	`, eventColumns)

	e, err := scanEvent(r.db.QueryRowContext(ctx, query,
		uuid.New().String(),
		calendarID,
		creatorID,
		req.Title,
		req.Description,
		req.StartDate,
		req.EndDate,
		req.AllDay,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return e, nil
}

// BulkCreate inserts a batch of events in one transaction; either every
// event is created or none are.
func (r *Repository) BulkCreate(ctx context.Context, calendarID, creatorID string, reqs []*CreateEventRequest) ([]*Event, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO events (event_id, calendar_id, creator_user_id, title, description, start_datetime, end_datetime, all_day)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s
	`, eventColumns)

	events := make([]*Event, 0, len(reqs))
	for _, req := range reqs {
		e, err := scanEvent(tx.QueryRowContext(ctx, query,
			uuid.New().String(),
			calendarID,
			creatorID,
			req.Title,
			req.Description,
			req.StartDate,
			req.EndDate,
			req.AllDay,
		))
		if err != nil {
			return nil, fmt.Errorf("failed to create event in batch: %w", err)
		}
		events = append(events, e)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit batch: %w", err)
	}

	return events, nil
}

// Update applies the given field assignments to an event scoped to a
// calendar. Returns nil when no row matches, which also covers "exists in a
// different calendar".
func (r *Repository) Update(ctx context.Context, eventID, calendarID string, fields []Field) (*Event, error) {
	var sb strings.Builder
	sb.WriteString("UPDATE events SET ")
	args := make([]interface{}, 0, len(fields)+2)

	for i, f := range fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		args = append(args, f.Value)
		fmt.Fprintf(&sb, "%s = $%d", f.Column, len(args))
	}
	sb.WriteString(", updated_at = NOW()")

	args = append(args, eventID)
	fmt.Fprintf(&sb, " WHERE event_id = $%d", len(args))
	args = append(args, calendarID)
	fmt.Fprintf(&sb, " AND calendar_id = $%d", len(args))
	fmt.Fprintf(&sb, " RETURNING %s", eventColumns)

	e, err := scanEvent(r.db.QueryRowContext(ctx, sb.String(), args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	return e, nil
}

// Delete removes an event scoped to a calendar, reporting whether a row
// was removed
func (r *Repository) Delete(ctx context.Context, eventID, calendarID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE event_id = $1 AND calendar_id = $2`, eventID, calendarID)
	if err != nil {
		return false, fmt.Errorf("failed to delete event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// DeleteAll removes every event in a calendar and returns the count removed
func (r *Repository) DeleteAll(ctx context.Context, calendarID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE calendar_id = $1`, calendarID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete events: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
