package calendar

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/classcal/server/pkg/middleware"
	"github.com/classcal/server/pkg/response"
	"github.com/classcal/server/pkg/validate"
)

// Handler handles HTTP requests for calendar operations
type Handler struct {
	service *Service
}

// NewHandler creates a new calendar handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for calendar endpoints. Fetching a calendar by
// ID is public; everything else requires authentication.
func (h *Handler) Routes(authware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/{id}", h.GetByID)

	r.Group(func(r chi.Router) {
		r.Use(authware)
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Post("/join", h.Join)
		r.Get("/user/{userID}", h.GetForUser)
		r.Get("/{id}/members", h.ListMembers)
	})

	return r
}

// Create handles POST /calendars
// @Summary      Create a calendar
// @Description  Create a calendar with a fresh join code and add the caller as first member
// @Tags         calendars
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateCalendarRequest true "Calendar creation request"
// @Success      201 {object} response.APIResponse{data=CalendarResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /calendars [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req CreateCalendarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		response.BadRequest(w, "Invalid calendar fields")
		return
	}

	cal, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		response.InternalError(w, "Failed to create calendar")
		return
	}

	response.JSON(w, http.StatusCreated, cal.ToResponse())
}

// GetByID handles GET /calendars/{id}
// @Summary      Get calendar by ID
// @Tags         calendars
// @Produce      json
// @Param        id path string true "Calendar ID"
// @Success      200 {object} response.APIResponse{data=CalendarResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /calendars/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	cal, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrCalendarNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to fetch calendar")
		return
	}

	response.JSON(w, http.StatusOK, cal.ToResponse())
}

// GetForUser handles GET /calendars/user/{userID}
// @Summary      Get a user's calendar
// @Description  Resolve the calendar the user belongs to; callers may only fetch their own
// @Tags         calendars
// @Produce      json
// @Security     BearerAuth
// @Param        userID path string true "User ID"
// @Success      200 {object} response.APIResponse{data=CalendarResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /calendars/user/{userID} [get]
func (h *Handler) GetForUser(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	if chi.URLParam(r, "userID") != callerID {
		response.Forbidden(w, "Not authorized to access this calendar")
		return
	}

	cal, err := h.service.GetForUser(r.Context(), callerID)
	if err != nil {
		if errors.Is(err, ErrCalendarNotFound) {
			response.NotFound(w, "No calendar found for user")
			return
		}
		response.InternalError(w, "Failed to fetch user calendar")
		return
	}

	response.JSON(w, http.StatusOK, cal.ToResponse())
}

// Join handles POST /calendars/join
// @Summary      Join a calendar by code
// @Description  Join the calendar identified by the join code; joining twice is success
// @Tags         calendars
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body JoinCalendarRequest true "Join request"
// @Success      200 {object} response.APIResponse{data=CalendarResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /calendars/join [post]
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req JoinCalendarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		response.BadRequest(w, "Invalid join code")
		return
	}

	cal, alreadyMember, err := h.service.Join(r.Context(), userID, req.JoinCode)
	if err != nil {
		if errors.Is(err, ErrInvalidJoinCode) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to join calendar")
		return
	}

	if alreadyMember {
		response.JSONWithMessage(w, http.StatusOK, cal.ToResponse(), "Already a member of this calendar")
		return
	}

	response.JSON(w, http.StatusOK, cal.ToResponse())
}

// List handles GET /calendars
// @Summary      List my calendars
// @Tags         calendars
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=[]CalendarResponse}
// @Router       /calendars [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	calendars, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to list calendars")
		return
	}

	responses := make([]*CalendarResponse, len(calendars))
	for i, cal := range calendars {
		responses[i] = cal.ToResponse()
	}

	response.JSON(w, http.StatusOK, responses)
}

// ListMembers handles GET /calendars/{id}/members
// @Summary      List calendar members
// @Tags         calendars
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Calendar ID"
// @Success      200 {object} response.APIResponse{data=MembersResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /calendars/{id}/members [get]
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	calendarID := chi.URLParam(r, "id")

	members, err := h.service.ListMembers(r.Context(), calendarID)
	if err != nil {
		if errors.Is(err, ErrCalendarNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to list members")
		return
	}

	response.JSON(w, http.StatusOK, &MembersResponse{
		CalendarID: calendarID,
		Members:    members,
	})
}
