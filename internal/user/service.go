package user

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/classcal/server/internal/auth"
	"github.com/classcal/server/internal/database"
)

// Common errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyInUse  = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

// bcryptCost is the work factor for password hashing
const bcryptCost = 10

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, fullName, email, passwordHash string, isClassPresident bool) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateName(ctx context.Context, id, fullName string) (*User, error)
	UpdatePassword(ctx context.Context, id string, verify func(currentHash string) error, newHash string) error
}

// Service handles registration, login and profile business logic
type Service struct {
	repo        Store
	tokens      *auth.JWTManager
	revocations auth.RevocationStore
	logger      zerolog.Logger
}

// NewService creates a new user service with dependencies injected
func NewService(repo Store, tokens *auth.JWTManager, revocations auth.RevocationStore, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		tokens:      tokens,
		revocations: revocations,
		logger:      logger.With().Str("component", "user").Logger(),
	}
}

// Register creates a new account and issues a session token
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (string, *User, error) {
	existing, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return "", nil, err
	}
	if existing != nil {
		return "", nil, ErrEmailAlreadyInUse
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return "", nil, err
	}

	created, err := s.repo.Create(ctx, req.FullName, req.Email, string(hash), req.IsClassPresident)
	if err != nil {
		// The email uniqueness constraint is the authoritative guard; the
		// existence check above can lose a race.
		if database.IsUniqueViolation(err) {
			return "", nil, ErrEmailAlreadyInUse
		}
		return "", nil, err
	}

	token, err := s.tokens.Generate(created.ID)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info().Str("user_id", created.ID).Msg("user registered")
	return token, created, nil
}

// Login verifies credentials and issues a session token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (string, *User, error) {
	found, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return "", nil, err
	}
	if found == nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(found.ID)
	if err != nil {
		return "", nil, err
	}

	return token, found, nil
}

// Logout revokes a session token for the remainder of its lifetime. Tokens
// that fail validation are already unusable, so revoking them is a no-op.
func (s *Service) Logout(ctx context.Context, token string) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return
	}

	if claims.ExpiresAt != nil {
		s.revocations.Revoke(token, time.Until(claims.ExpiresAt.Time))
	}
}

// GetByID retrieves a user by their ID
func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrUserNotFound
	}
	return found, nil
}

// UpdateProfile changes the display name when one is provided and returns
// the resulting user.
func (s *Service) UpdateProfile(ctx context.Context, id string, req *UpdateProfileRequest) (*User, error) {
	if req.Name == nil {
		return s.GetByID(ctx, id)
	}

	updated, err := s.repo.UpdateName(ctx, id, *req.Name)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrUserNotFound
	}
	return updated, nil
}

// ChangePassword verifies the current password and stores a new hash
func (s *Service) ChangePassword(ctx context.Context, id string, req *ChangePasswordRequest) error {
	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return err
	}

	return s.repo.UpdatePassword(ctx, id, func(currentHash string) error {
		if err := bcrypt.CompareHashAndPassword([]byte(currentHash), []byte(req.CurrentPassword)); err != nil {
			return ErrWrongPassword
		}
		return nil
	}, string(newHash))
}
