package user

// RegisterRequest represents the request body for creating an account
type RegisterRequest struct {
	FullName         string `json:"full_name" validate:"required,min=1,max=255"`
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=8"`
	IsClassPresident bool   `json:"is_class_president"`
}

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest represents the request body for updating profile fields
type UpdateProfileRequest struct {
	Name *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
}

// ChangePasswordRequest represents the request body for changing the password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

// UserResponse represents the response for a single user
type UserResponse struct {
	UserID           string `json:"user_id"`
	FullName         string `json:"full_name"`
	Email            string `json:"email"`
	IsClassPresident bool   `json:"is_class_president"`
}

// AuthResponse bundles a session token with the user it belongs to
type AuthResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

// ProfileResponse represents the display profile for the current user
type ProfileResponse struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
	Role     string `json:"role"`
	JoinDate string `json:"joinDate"`
}

// Display profile constants; the storage layer does not track these.
const (
	defaultAvatar  = "/api/placeholder/150/150"
	rolePresident  = "Class President"
	roleStudent    = "Student"
	joinDateFormat = "January 2006"
)

// ToResponse converts a User model to a UserResponse DTO
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		UserID:           u.ID,
		FullName:         u.FullName,
		Email:            u.Email,
		IsClassPresident: u.IsClassPresident,
	}
}

// ToProfileResponse converts a User model to its display profile
func (u *User) ToProfileResponse() *ProfileResponse {
	role := roleStudent
	if u.IsClassPresident {
		role = rolePresident
	}

	return &ProfileResponse{
		Name:     u.FullName,
		Email:    u.Email,
		Avatar:   defaultAvatar,
		Role:     role,
		JoinDate: u.CreatedAt.Format(joinDateFormat),
	}
}
