package user

import "time"

// User represents a registered account
type User struct {
	ID               string    `json:"user_id"`
	FullName         string    `json:"full_name"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	IsClassPresident bool      `json:"is_class_president"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
