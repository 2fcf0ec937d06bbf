package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"eventinvitations/internal/delivery/http/helpers"
	"eventinvitations/internal/domain"
)

// CreateInvitationRequest is the request body for POST /events/{id}/invitations
type CreateInvitationRequest struct {
	Channel        string  `json:"channel"`
	RecipientName  string  `json:"recipient_name"`
	RecipientEmail *string `json:"recipient_email"`
	RecipientPhone *string `json:"recipient_phone"`
	MaxCompanions  int     `json:"max_companions"`
}

// Validate implements Validator.
func (c CreateInvitationRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.RecipientName) == "" {
		errs = append(errs, "recipient_name is required")
	}
	if !domain.ValidChannel(c.Channel) {
		errs = append(errs, "channel must be \"email\" or \"whatsapp\"")
	}
	if c.MaxCompanions < 0 {
		errs = append(errs, "max_companions cannot be negative")
	}
	return errs
}

// BulkDispatchRequest is the request body for POST /events/{id}/invitations/bulk
type BulkDispatchRequest struct {
	Channel    string             `json:"channel"` // default channel for recipients that omit one
	Recipients []domain.Recipient `json:"recipients"`
}

// Validate implements Validator.
func (b BulkDispatchRequest) Validate() []string {
	var errs []string
	if len(b.Recipients) == 0 {
		errs = append(errs, "recipients must not be empty")
	}
	if b.Channel != "" && !domain.ValidChannel(b.Channel) {
		errs = append(errs, "channel must be \"email\" or \"whatsapp\"")
	}
	return errs
}

// ListInvitationsResponse is the response body for GET /events/{id}/invitations
type ListInvitationsResponse struct {
	Invitations []*domain.Invitation   `json:"invitations"`
	Pagination  helpers.PaginationMeta `json:"pagination"`
}

// InvitationController handles invitation creation and dispatch.
type InvitationController struct {
	Logger  *slog.Logger
	Service domain.InvitationService
}

func NewInvitationController(logger *slog.Logger, svc domain.InvitationService) *InvitationController {
	return &InvitationController{
		Logger:  logger,
		Service: svc,
	}
}

// Create godoc
// @Summary Create an invitation
// @Description Creates a pending invitation for the event. The access token is generated server-side and never regenerated.
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param body body CreateInvitationRequest true "Recipient data"
// @Success 201 {object} helpers.APIResponse "data contains the created invitation"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_error"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id}/invitations [post]
func (c *InvitationController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req CreateInvitationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	inv := &domain.Invitation{
		Channel:        req.Channel,
		RecipientName:  req.RecipientName,
		RecipientEmail: req.RecipientEmail,
		RecipientPhone: req.RecipientPhone,
		MaxCompanions:  req.MaxCompanions,
	}
	if err := c.Service.CreateInvitation(r.Context(), r.PathValue("id"), userID, inv); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, inv)
}

// List godoc
// @Summary List an event's invitations
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} helpers.APIResponse "data contains invitations and pagination metadata"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id}/invitations [get]
func (c *InvitationController) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	params := helpers.ParsePagination(r)
	invitations, total, err := c.Service.ListInvitations(r.Context(), r.PathValue("id"), userID, params)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListInvitationsResponse{
		Invitations: invitations,
		Pagination:  helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// Send godoc
// @Summary Send an invitation
// @Description Delivers the invitation over its channel and marks it sent. Calling it again resends and refreshes the sent timestamp.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invitation ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: validation_error"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 502 {object} helpers.APIResponse "error.code: transport_failure"
// @Router /invitations/{id}/send [post]
func (c *InvitationController) Send(w http.ResponseWriter, r *http.Request) {
	c.dispatch(w, r)
}

// Resend godoc
// @Summary Resend an invitation
// @Description Same delivery path as send; kept as a separate route for client clarity.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invitation ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 502 {object} helpers.APIResponse "error.code: transport_failure"
// @Router /invitations/{id}/resend [post]
func (c *InvitationController) Resend(w http.ResponseWriter, r *http.Request) {
	c.dispatch(w, r)
}

func (c *InvitationController) dispatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	if err := c.Service.Dispatch(r.Context(), r.PathValue("id"), userID); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": domain.StatusSent})
}

// Reminder godoc
// @Summary Send a reminder
// @Description Sends a reminder message over the invitation's channel. Does not change the invitation status.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invitation ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 502 {object} helpers.APIResponse "error.code: transport_failure"
// @Router /invitations/{id}/reminder [post]
func (c *InvitationController) Reminder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	if err := c.Service.SendReminder(r.Context(), r.PathValue("id"), userID); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "reminder_sent"})
}

// Bulk godoc
// @Summary Create and dispatch invitations in bulk
// @Description Processes every recipient; one recipient's failure never aborts the batch. Always responds 200 with a per-recipient summary when the event resolves.
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param body body BulkDispatchRequest true "Recipients"
// @Success 200 {object} helpers.APIResponse "data contains the bulk result summary"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_error"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id}/invitations/bulk [post]
func (c *InvitationController) Bulk(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req BulkDispatchRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	result, err := c.Service.DispatchBulk(r.Context(), r.PathValue("id"), userID, req.Channel, req.Recipients)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}
