package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/classcal/server/internal/auth"
	"github.com/classcal/server/pkg/middleware"
	"github.com/classcal/server/pkg/response"
	"github.com/classcal/server/pkg/validate"
)

// Handler handles HTTP requests for auth and profile operations
type Handler struct {
	service *Service
}

// NewHandler creates a new user handler with service dependency injected
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// AuthRoutes returns the router for authentication endpoints
func (h *Handler) AuthRoutes(authware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.With(authware).Post("/logout", h.Logout)

	return r
}

// ProfileRoutes returns the router for profile endpoints
func (h *Handler) ProfileRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.GetProfile)
	r.Patch("/", h.UpdateProfile)
	r.Post("/password", h.ChangePassword)

	return r
}

// Register handles POST /auth/register
// @Summary      Register a new user
// @Description  Create an account and return a session token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration request"
// @Success      201 {object} response.APIResponse{data=AuthResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		response.BadRequest(w, "Invalid registration fields")
		return
	}

	token, created, err := h.service.Register(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrEmailAlreadyInUse) {
			response.Conflict(w, err.Error())
			return
		}
		response.InternalError(w, "Registration failed")
		return
	}

	response.JSON(w, http.StatusCreated, &AuthResponse{
		Token: token,
		User:  created.ToResponse(),
	})
}

// Login handles POST /auth/login
// @Summary      Log in
// @Description  Verify credentials and return a session token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login request"
// @Success      200 {object} response.APIResponse{data=AuthResponse}
// @Failure      401 {object} response.APIResponse
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		response.BadRequest(w, "Invalid login fields")
		return
	}

	token, found, err := h.service.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Unauthorized(w, err.Error())
			return
		}
		response.InternalError(w, "Login failed")
		return
	}

	response.JSON(w, http.StatusOK, &AuthResponse{
		Token: token,
		User:  found.ToResponse(),
	})
}

// Logout handles POST /auth/logout
// @Summary      Log out
// @Description  Revoke the presented token until its natural expiry
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse
// @Router       /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
	if err == nil {
		h.service.Logout(r.Context(), token)
	}

	response.JSONWithMessage(w, http.StatusOK, nil, "Logged out successfully")
}

// GetProfile handles GET /profile
// @Summary      Get my profile
// @Description  Get the display profile for the current user
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=ProfileResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /profile [get]
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	found, err := h.service.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to fetch profile")
		return
	}

	response.JSON(w, http.StatusOK, found.ToProfileResponse())
}

// UpdateProfile handles PATCH /profile
// @Summary      Update my profile
// @Description  Update display fields for the current user
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UpdateProfileRequest true "Profile update request"
// @Success      200 {object} response.APIResponse{data=ProfileResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /profile [patch]
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		response.BadRequest(w, "Invalid profile fields")
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to update profile")
		return
	}

	response.JSON(w, http.StatusOK, updated.ToProfileResponse())
}

// ChangePassword handles POST /profile/password
// @Summary      Change my password
// @Description  Verify the current password and store a new one
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ChangePasswordRequest true "Password change request"
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Router       /profile/password [post]
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		response.BadRequest(w, "Invalid password fields")
		return
	}

	if err := h.service.ChangePassword(r.Context(), userID, &req); err != nil {
		switch {
		case errors.Is(err, ErrWrongPassword):
			response.Unauthorized(w, err.Error())
		case errors.Is(err, ErrUserNotFound):
			response.NotFound(w, err.Error())
		default:
			response.InternalError(w, "Failed to update password")
		}
		return
	}

	response.JSONWithMessage(w, http.StatusOK, nil, "Password updated successfully")
}
