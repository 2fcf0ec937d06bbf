package domain

import (
	"context"
	"time"
)

// Event categories.
const (
	CategoryWedding    = "wedding"
	CategoryBirthday   = "birthday"
	CategoryBabyShower = "baby_shower"
	CategoryGraduation = "graduation"
	CategoryOther      = "other"
)

// ValidCategory reports whether c is a known event category.
func ValidCategory(c string) bool {
	switch c {
	case CategoryWedding, CategoryBirthday, CategoryBabyShower, CategoryGraduation, CategoryOther:
		return true
	}
	return false
}

// Event represents an occasion invitations are sent for. OwnerID is
// immutable after creation.
// swagger:model Event
type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Category    string     `json:"category"`
	Date        time.Time  `json:"date"`
	Location    string     `json:"location"`
	Description string     `json:"description"`
	OwnerID     string     `json:"owner_id"`
	TemplateID  *string    `json:"template_id"`
	Background  *string    `json:"background"`
	Logo        *string    `json:"logo"`
	IsDraft     bool       `json:"is_draft"`
	LastSavedAt *time.Time `json:"last_saved_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewEvent returns a new draft Event. ID is typically set by the repository on create.
func NewEvent(title, category, location, description, ownerID string, date, createdAt time.Time) *Event {
	return &Event{
		Title:       title,
		Category:    category,
		Date:        date,
		Location:    location,
		Description: description,
		OwnerID:     ownerID,
		IsDraft:     true,
		CreatedAt:   createdAt,
	}
}

// EventUpdate carries the mutable event fields for a partial update.
// Nil fields are left unchanged.
type EventUpdate struct {
	Title       *string
	Category    *string
	Date        *time.Time
	Location    *string
	Description *string
	TemplateID  *string
	Background  *string
	Logo        *string
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// GetByIDForOwner resolves an event only when owned by ownerID,
	// returning ErrNotFound otherwise. Public-facing flows use this so a
	// foreign event is indistinguishable from a missing one.
	GetByIDForOwner(ctx context.Context, id, ownerID string) (*Event, error)
	ListByOwnerID(ctx context.Context, ownerID string) ([]*Event, error)
	Update(ctx context.Context, id string, upd EventUpdate) (*Event, error)
	SetDraft(ctx context.Context, id string, draft bool) error
	SetLastSavedAt(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// EventService defines organizer-facing event operations.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, eventID, callerID string) (*Event, error)
	ListEvents(ctx context.Context, ownerID string) ([]*Event, error)
	UpdateEvent(ctx context.Context, eventID, callerID string, upd EventUpdate) (*Event, error)
	DeleteEvent(ctx context.Context, eventID, callerID string) error
	Publish(ctx context.Context, eventID, callerID string) error
	SaveAsDraft(ctx context.Context, eventID, callerID string) error
	SaveProgress(ctx context.Context, eventID, callerID string) (time.Time, error)
	// RenderPreview renders the event's template design into a PDF or PNG
	// artifact for the organizer to inspect before sending.
	RenderPreview(ctx context.Context, eventID, callerID string, format RenderFormat) ([]byte, error)
}
