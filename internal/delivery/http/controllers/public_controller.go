package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"eventinvitations/internal/delivery/http/helpers"
	"eventinvitations/internal/domain"
)

// PublicInvitationResponse is the invitee-visible view of an invitation,
// returned to whoever holds the access token. It deliberately omits
// organizer-only fields like recipient contact details.
type PublicInvitationResponse struct {
	Status        string    `json:"status"`
	RecipientName string    `json:"recipient_name"`
	MaxCompanions int       `json:"max_companions"`
	EventTitle    string    `json:"event_title"`
	EventDate     time.Time `json:"event_date"`
	EventLocation string    `json:"event_location"`
	EventDetails  string    `json:"event_details"`
}

// PublicConfirmRequest is the request body for the RSVP submission.
type PublicConfirmRequest struct {
	GuestName  string `json:"guest_name"`
	Companions int    `json:"companions"`
	MenuChoice string `json:"menu_choice"`
	Comments   string `json:"comments"`
}

// Validate implements Validator.
func (p PublicConfirmRequest) Validate() []string {
	var errs []string
	if p.Companions < 0 {
		errs = append(errs, "companions cannot be negative")
	}
	return errs
}

// PublicController serves the unauthenticated invitee surface. The access
// token in the URL is the sole authority; there is no session.
type PublicController struct {
	Logger  *slog.Logger
	Service domain.ConfirmationService
}

func NewPublicController(logger *slog.Logger, svc domain.ConfirmationService) *PublicController {
	return &PublicController{
		Logger:  logger,
		Service: svc,
	}
}

// Get godoc
// @Summary View an invitation
// @Description Returns the invitee-visible invitation and event details for the RSVP page.
// @Tags public
// @Produce json
// @Param token path string true "Invitation access token"
// @Success 200 {object} helpers.APIResponse "data contains the invitation view"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /public/invitations/{token} [get]
func (c *PublicController) Get(w http.ResponseWriter, r *http.Request) {
	inv, event, err := c.Service.PublicInvitation(r.Context(), r.PathValue("token"))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, PublicInvitationResponse{
		Status:        inv.Status,
		RecipientName: inv.RecipientName,
		MaxCompanions: inv.MaxCompanions,
		EventTitle:    event.Title,
		EventDate:     event.Date,
		EventLocation: event.Location,
		EventDetails:  event.Description,
	})
}

// Confirm godoc
// @Summary Confirm attendance
// @Description Records the RSVP. Each invitation accepts exactly one confirmation; companions may not exceed the invitation's allowance.
// @Tags public
// @Accept json
// @Produce json
// @Param token path string true "Invitation access token"
// @Param body body PublicConfirmRequest true "RSVP data"
// @Success 201 {object} helpers.APIResponse "data contains the recorded confirmation"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_error"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /public/invitations/{token}/confirm [post]
func (c *PublicController) Confirm(w http.ResponseWriter, r *http.Request) {
	var req PublicConfirmRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	confirmation, err := c.Service.Confirm(r.Context(), r.PathValue("token"), domain.ConfirmRequest{
		GuestName:  req.GuestName,
		Companions: req.Companions,
		MenuChoice: req.MenuChoice,
		Comments:   req.Comments,
	})
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, confirmation)
}

// Decline godoc
// @Summary Decline an invitation
// @Description Marks the invitation declined. No confirmation record is created, and a confirmed invitation cannot be declined.
// @Tags public
// @Produce json
// @Param token path string true "Invitation access token"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: validation_error"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /public/invitations/{token}/decline [post]
func (c *PublicController) Decline(w http.ResponseWriter, r *http.Request) {
	if err := c.Service.Decline(r.Context(), r.PathValue("token")); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": domain.StatusDeclined})
}
