package domain

import (
	"context"
	"time"
)

// Invitation statuses. Lifecycle: pending → sent → confirmed, with
// declined as an independent terminal reachable from sent.
const (
	StatusPending   = "pending"
	StatusSent      = "sent"
	StatusConfirmed = "confirmed"
	StatusDeclined  = "declined"
)

// Delivery channels.
const (
	ChannelEmail    = "email"
	ChannelWhatsApp = "whatsapp"
)

// ValidChannel reports whether c is a known delivery channel.
func ValidChannel(c string) bool {
	return c == ChannelEmail || c == ChannelWhatsApp
}

// Invitation is a single recipient's invite to an event. AccessToken is
// generated once at creation and never regenerated; knowing it grants
// RSVP authority for this invitation only.
// swagger:model Invitation
type Invitation struct {
	ID             string     `json:"id"`
	EventID        string     `json:"event_id"`
	Status         string     `json:"status"`
	AccessToken    string     `json:"access_token"`
	Channel        string     `json:"channel"`
	RecipientName  string     `json:"recipient_name"`
	RecipientEmail *string    `json:"recipient_email"`
	RecipientPhone *string    `json:"recipient_phone"`
	MaxCompanions  int        `json:"max_companions"`
	SentAt         *time.Time `json:"sent_at"`
}

// Validate checks the channel/contact pairing invariant.
func (i *Invitation) Validate() error {
	if i.RecipientName == "" {
		return NewValidationError("recipient name is required")
	}
	switch i.Channel {
	case ChannelEmail:
		if i.RecipientEmail == nil || *i.RecipientEmail == "" {
			return NewValidationError("recipient email is required for email delivery")
		}
	case ChannelWhatsApp:
		if i.RecipientPhone == nil || *i.RecipientPhone == "" {
			return NewValidationError("recipient phone is required for WhatsApp delivery")
		}
	default:
		return NewValidationError("channel must be \"email\" or \"whatsapp\"")
	}
	if i.MaxCompanions < 0 {
		return NewValidationError("max_companions cannot be negative")
	}
	return nil
}

// Recipient is one entry of a bulk dispatch request.
type Recipient struct {
	Name          string  `json:"name"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	Channel       string  `json:"channel"`        // optional, falls back to the batch default
	MaxCompanions *int    `json:"max_companions"` // optional, defaults to 0
}

// BulkSuccess records one successfully dispatched recipient.
type BulkSuccess struct {
	Index        int    `json:"index"`
	InvitationID string `json:"invitation_id"`
	Recipient    string `json:"recipient"`
	Link         string `json:"link"`
}

// BulkFailure records one recipient that failed validation or delivery.
type BulkFailure struct {
	Index     int    `json:"index"`
	Recipient string `json:"recipient"`
	Error     string `json:"error"`
}

// BulkResult summarizes a bulk dispatch run. Total always equals the
// number of submitted recipients; one recipient's failure never aborts
// the batch.
type BulkResult struct {
	Status    string        `json:"status"`
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Successes []BulkSuccess `json:"successes"`
	Failures  []BulkFailure `json:"failures"`
}

// InvitationRepository defines storage operations for invitations.
// Create must surface the access-token uniqueness constraint as an error.
type InvitationRepository interface {
	Create(ctx context.Context, inv *Invitation) error
	GetByID(ctx context.Context, id string) (*Invitation, error)
	GetByToken(ctx context.Context, token string) (*Invitation, error)
	ListByEventID(ctx context.Context, eventID string, params PaginationParams) ([]*Invitation, int, error)
	SetStatus(ctx context.Context, id, status string) error
	MarkSent(ctx context.Context, id string, sentAt time.Time) error
}

// InvitationService defines dispatch operations.
type InvitationService interface {
	CreateInvitation(ctx context.Context, eventID, callerID string, inv *Invitation) error
	ListInvitations(ctx context.Context, eventID, callerID string, params PaginationParams) ([]*Invitation, int, error)
	// Dispatch delivers one invitation over its declared channel and, on
	// success, marks it sent. Re-running it on an already sent invitation
	// is the resend path and just refreshes the sent timestamp.
	Dispatch(ctx context.Context, invitationID, callerID string) error
	SendReminder(ctx context.Context, invitationID, callerID string) error
	DispatchBulk(ctx context.Context, eventID, callerID, defaultChannel string, recipients []Recipient) (*BulkResult, error)
}
