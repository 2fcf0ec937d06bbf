package controllers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"eventinvitations/internal/delivery/http/helpers"
	"eventinvitations/internal/domain"
)

// CreateEventRequest is the request body for POST /events
type CreateEventRequest struct {
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	TemplateID  *string   `json:"template_id"`
	Background  *string   `json:"background"`
	Logo        *string   `json:"logo"`
}

// Validate implements Validator.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "title is required")
	}
	if c.Category != "" && !domain.ValidCategory(c.Category) {
		errs = append(errs, "invalid category")
	}
	return errs
}

// UpdateEventRequest is the request body for PATCH /events/{id}.
// Absent fields are left unchanged.
type UpdateEventRequest struct {
	Title       *string    `json:"title"`
	Category    *string    `json:"category"`
	Date        *time.Time `json:"date"`
	Location    *string    `json:"location"`
	Description *string    `json:"description"`
	TemplateID  *string    `json:"template_id"`
	Background  *string    `json:"background"`
	Logo        *string    `json:"logo"`
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	var errs []string
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		errs = append(errs, "title cannot be empty")
	}
	if u.Category != nil && !domain.ValidCategory(*u.Category) {
		errs = append(errs, "invalid category")
	}
	return errs
}

// EventController handles organizer-facing event operations, including
// the confirmation views scoped to an event.
type EventController struct {
	Logger        *slog.Logger
	Service       domain.EventService
	Confirmations domain.ConfirmationService
}

func NewEventController(logger *slog.Logger, svc domain.EventService, confirmations domain.ConfirmationService) *EventController {
	return &EventController{
		Logger:        logger,
		Service:       svc,
		Confirmations: confirmations,
	}
}

// Create godoc
// @Summary Create an event
// @Description Creates an event owned by the caller. New events start as drafts.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateEventRequest true "Event data"
// @Success 201 {object} helpers.APIResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_error"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /events [post]
func (c *EventController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event := domain.NewEvent(req.Title, req.Category, req.Location, req.Description, userID, req.Date, time.Now().UTC())
	event.TemplateID = req.TemplateID
	event.Background = req.Background
	event.Logo = req.Logo
	if err := c.Service.CreateEvent(r.Context(), event); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// List godoc
// @Summary List the caller's events
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the event list"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /events [get]
func (c *EventController) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	events, err := c.Service.ListEvents(r.Context(), userID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// Get godoc
// @Summary Get an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the event"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id} [get]
func (c *EventController) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	event, err := c.Service.GetEvent(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// Update godoc
// @Summary Update an event
// @Description Partially updates an event. Absent fields are left unchanged; ownership never changes.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param body body UpdateEventRequest true "Fields to update"
// @Success 200 {object} helpers.APIResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_error"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id} [patch]
func (c *EventController) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	upd := domain.EventUpdate{
		Title:       req.Title,
		Category:    req.Category,
		Date:        req.Date,
		Location:    req.Location,
		Description: req.Description,
		TemplateID:  req.TemplateID,
		Background:  req.Background,
		Logo:        req.Logo,
	}
	event, err := c.Service.UpdateEvent(r.Context(), r.PathValue("id"), userID, upd)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// Delete godoc
// @Summary Delete an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id} [delete]
func (c *EventController) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), r.PathValue("id"), userID); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Publish godoc
// @Summary Publish an event
// @Description Clears the draft flag so the event is live.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id}/publish [post]
func (c *EventController) Publish(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	if err := c.Service.Publish(r.Context(), r.PathValue("id"), userID); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "published"})
}

// SaveAsDraft godoc
// @Summary Move an event back to draft
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id}/draft [post]
func (c *EventController) SaveAsDraft(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	if err := c.Service.SaveAsDraft(r.Context(), r.PathValue("id"), userID); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "draft"})
}

// SaveProgress godoc
// @Summary Record editing progress
// @Description Touches the event's last-saved timestamp and returns it.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains last_saved_at"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id}/progress [post]
func (c *EventController) SaveProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	savedAt, err := c.Service.SaveProgress(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]time.Time{"last_saved_at": savedAt})
}

// Preview godoc
// @Summary Download a rendered preview
// @Description Renders the event's template design as a PDF or PNG and returns it as a file download. Format defaults to pdf.
// @Tags events
// @Produce application/pdf
// @Produce image/png
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param format query string false "pdf or png" default(pdf)
// @Success 200 {file} binary
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id}/preview [get]
func (c *EventController) Preview(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	eventID := r.PathValue("id")
	format := domain.FormatPDF
	contentType := "application/pdf"
	switch r.URL.Query().Get("format") {
	case "", "pdf":
	case "png":
		format = domain.FormatPNG
		contentType = "image/png"
	default:
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "format must be \"pdf\" or \"png\"")
		return
	}
	artifact, err := c.Service.RenderPreview(r.Context(), eventID, userID, format)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=preview_%s.%s", eventID, format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact)
}

// ListConfirmations godoc
// @Summary List an event's confirmations
// @Tags confirmations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the confirmation list"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id}/confirmations [get]
func (c *EventController) ListConfirmations(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	confirmations, err := c.Confirmations.ListByEvent(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, confirmations)
}

// ExportConfirmations godoc
// @Summary Export an event's confirmations as CSV
// @Tags confirmations
// @Produce text/csv
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {file} binary
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id}/confirmations/export [get]
func (c *EventController) ExportConfirmations(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	eventID := r.PathValue("id")
	payload, err := c.Confirmations.ExportCSV(r.Context(), eventID, userID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=confirmations_%s.csv", eventID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}
