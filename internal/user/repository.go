package user

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Repository handles user data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new user repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user into the database
func (r *Repository) Create(ctx context.Context, fullName, email, passwordHash string, isClassPresident bool) (*User, error) {
	query := `
		INSERT INTO users (user_id, full_name, email, password_hash, is_class_president)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING user_id, full_name, email, password_hash, is_class_president, created_at, updated_at
	`

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, uuid.New().String(), fullName, email, passwordHash, isClassPresident).Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.PasswordHash,
		&user.IsClassPresident,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by their ID
func (r *Repository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT user_id, full_name, email, password_hash, is_class_president, created_at, updated_at
		FROM users
		WHERE user_id = $1
	`

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.PasswordHash,
		&user.IsClassPresident,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by their email
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT user_id, full_name, email, password_hash, is_class_president, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.PasswordHash,
		&user.IsClassPresident,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// UpdateName changes a user's display name
func (r *Repository) UpdateName(ctx context.Context, id, fullName string) (*User, error) {
	query := `
		UPDATE users
		SET full_name = $2, updated_at = NOW()
		WHERE user_id = $1
		RETURNING user_id, full_name, email, password_hash, is_class_president, created_at, updated_at
	`

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, id, fullName).Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.PasswordHash,
		&user.IsClassPresident,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update user name: %w", err)
	}

	return user, nil
}

// UpdatePassword verifies the current credential and writes the new hash
// inside one transaction. The row is locked for the duration so a concurrent
// change cannot slip between the read and the write.
func (r *Repository) UpdatePassword(ctx context.Context, id string, verify func(currentHash string) error, newHash string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var currentHash string
	err = tx.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE user_id = $1 FOR UPDATE`, id).Scan(&currentHash)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get current password: %w", err)
	}

	if err := verify(currentHash); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE user_id = $1`, id, newHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit password update: %w", err)
	}

	return nil
}
