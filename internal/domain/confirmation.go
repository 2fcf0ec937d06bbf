package domain

import (
	"context"
	"time"
)

// ErrDuplicateConfirmation is returned by repositories when the one
// confirmation per invitation constraint is violated.
var ErrDuplicateConfirmation = NewValidationError("invitation already confirmed")

// Confirmation is an invitee's RSVP. One per invitation, created once,
// never updated or deleted.
// swagger:model Confirmation
type Confirmation struct {
	ID           string    `json:"id"`
	InvitationID string    `json:"invitation_id"`
	GuestName    string    `json:"guest_name"`
	Companions   int       `json:"companions"`
	MenuChoice   string    `json:"menu_choice"`
	Comments     string    `json:"comments"`
	RespondedAt  time.Time `json:"responded_at"`
}

// ConfirmationRepository defines storage operations for confirmations.
// Create must map the invitation_id unique violation to
// ErrDuplicateConfirmation; the database constraint, not the service
// fast path, is the authoritative guard.
type ConfirmationRepository interface {
	Create(ctx context.Context, c *Confirmation) error
	GetByInvitationID(ctx context.Context, invitationID string) (*Confirmation, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Confirmation, error)
}

// ConfirmRequest is the public RSVP submission.
type ConfirmRequest struct {
	GuestName  string
	Companions int
	MenuChoice string
	Comments   string
}

// ConfirmationService defines the public RSVP intake reachable through an
// invitation's access token, plus organizer-facing confirmation views.
type ConfirmationService interface {
	// PublicInvitation returns the invitee-visible fields for the RSVP form.
	PublicInvitation(ctx context.Context, token string) (*Invitation, *Event, error)
	Confirm(ctx context.Context, token string, req ConfirmRequest) (*Confirmation, error)
	Decline(ctx context.Context, token string) error
	ListByEvent(ctx context.Context, eventID, callerID string) ([]*Confirmation, error)
	// ExportCSV writes the event's confirmations as CSV (header row
	// included) and returns the byte payload.
	ExportCSV(ctx context.Context, eventID, callerID string) ([]byte, error)
}
