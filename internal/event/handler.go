package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/classcal/server/pkg/middleware"
	"github.com/classcal/server/pkg/response"
	"github.com/classcal/server/pkg/validate"
)

// Handler handles HTTP requests for event operations
type Handler struct {
	service *Service
}

// NewHandler creates a new event handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for event endpoints; all require authentication
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Delete("/", h.DeleteAll)
	r.Get("/filter", h.ListByFilter)
	r.Post("/sync", h.Sync)
	r.Post("/bulk", h.BulkCreate)
	r.Get("/{id}", h.GetByID)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	return r
}

// List handles GET /events
// @Summary      List my events
// @Description  List all events in the caller's calendar ordered by start time
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=[]EventResponse}
// @Router       /events [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	events, err := h.service.List(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to fetch events")
		return
	}

	response.JSON(w, http.StatusOK, ToResponseList(events))
}

// GetByID handles GET /events/{id}
// @Summary      Get event by ID
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Event ID"
// @Success      200 {object} response.APIResponse{data=EventResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /events/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	e, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to fetch event")
		return
	}

	response.JSON(w, http.StatusOK, e.ToResponse())
}

// Create handles POST /events
// @Summary      Create an event
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateEventRequest true "Event creation request"
// @Success      201 {object} response.APIResponse{data=EventResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /events [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		response.BadRequest(w, "Invalid event fields")
		return
	}

	e, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, ErrNoCalendar) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to create event")
		return
	}

	response.JSON(w, http.StatusCreated, e.ToResponse())
}

// Update handles PUT /events/{id}
// @Summary      Update an event
// @Description  Apply the provided fields to an event in the caller's calendar
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Event ID"
// @Param        request body UpdateEventRequest true "Partial event update"
// @Success      200 {object} response.APIResponse{data=EventResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /events/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		response.BadRequest(w, "Invalid event fields")
		return
	}

	e, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEventNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrNoFieldsToUpdate), errors.Is(err, ErrNoCalendar):
			response.BadRequest(w, err.Error())
		default:
			response.InternalError(w, "Failed to update event")
		}
		return
	}

	response.JSON(w, http.StatusOK, e.ToResponse())
}

// Delete handles DELETE /events/{id}
// @Summary      Delete an event
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Event ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /events/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	deleted, err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrNoCalendar) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to delete event")
		return
	}
	if !deleted {
		response.NotFound(w, ErrEventNotFound.Error())
		return
	}

	response.JSONWithMessage(w, http.StatusOK, nil, "Event deleted successfully")
}

// DeleteAll handles DELETE /events
// @Summary      Delete all my events
// @Description  Remove every event in the caller's calendar
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Router       /events [delete]
func (h *Handler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	count, err := h.service.DeleteAll(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNoCalendar) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to delete events")
		return
	}

	response.JSONWithMessage(w, http.StatusOK, nil, fmt.Sprintf("%d events deleted successfully", count))
}

// ListByFilter handles GET /events/filter
// @Summary      List events by date range
// @Description  List events whose start time falls within the given bounds
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        startDate query string false "Lower bound (RFC3339 or YYYY-MM-DD)"
// @Param        endDate query string false "Upper bound (RFC3339 or YYYY-MM-DD), compared against event start"
// @Success      200 {object} response.APIResponse{data=[]EventResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /events/filter [get]
func (h *Handler) ListByFilter(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var filter Filter
	if raw := r.URL.Query().Get("startDate"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			response.BadRequest(w, "Invalid startDate")
			return
		}
		filter.Start = &t
	}
	if raw := r.URL.Query().Get("endDate"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			response.BadRequest(w, "Invalid endDate")
			return
		}
		filter.End = &t
	}

	events, err := h.service.ListByFilter(r.Context(), userID, filter)
	if err != nil {
		response.InternalError(w, "Failed to fetch filtered events")
		return
	}

	response.JSON(w, http.StatusOK, ToResponseList(events))
}

// Sync handles POST /events/sync
// @Summary      Sync events
// @Description  Stub for external-calendar sync; returns the current event list
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=[]EventResponse}
// @Router       /events/sync [post]
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	events, err := h.service.Sync(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to sync events")
		return
	}

	response.JSONWithMessage(w, http.StatusOK, ToResponseList(events), "Events synced successfully")
}

// BulkCreate handles POST /events/bulk
// @Summary      Create events in bulk
// @Description  Create a batch of events in one transaction
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body []CreateEventRequest true "Events to create"
// @Success      201 {object} response.APIResponse{data=[]EventResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /events/bulk [post]
func (h *Handler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var reqs []*CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if len(reqs) == 0 {
		response.BadRequest(w, "No events to create")
		return
	}

	for _, req := range reqs {
		if err := validate.Struct(req); err != nil {
			response.BadRequest(w, "Invalid event fields")
			return
		}
	}

	events, err := h.service.BulkCreate(r.Context(), userID, reqs)
	if err != nil {
		if errors.Is(err, ErrNoCalendar) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to create events")
		return
	}

	response.JSONWithMessage(w, http.StatusCreated, ToResponseList(events), fmt.Sprintf("%d events created successfully", len(events)))
}

// parseDate accepts RFC3339 timestamps or bare dates
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
