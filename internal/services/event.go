package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventinvitations/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	templateRepo   domain.TemplateRepository
	renderer       domain.Renderer
	contextTimeout time.Duration
}

// NewEventService returns the organizer-facing event operations.
func NewEventService(eventRepo domain.EventRepository, templateRepo domain.TemplateRepository, renderer domain.Renderer, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		templateRepo:   templateRepo,
		renderer:       renderer,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if event.OwnerID == "" {
		return fmt.Errorf("event owner is required")
	}
	if event.Title == "" {
		return domain.NewValidationError("title is required")
	}
	if !domain.ValidCategory(event.Category) {
		return domain.NewValidationError("unknown event category")
	}
	event.IsDraft = true
	event.CreatedAt = time.Now()
	return s.eventRepo.Create(ctx, event)
}

func (s *eventService) GetEvent(ctx context.Context, eventID, callerID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.owned(ctx, eventID, callerID)
}

func (s *eventService) ListEvents(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID, callerID string, upd domain.EventUpdate) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.owned(ctx, eventID, callerID); err != nil {
		return nil, err
	}
	if upd.Category != nil && !domain.ValidCategory(*upd.Category) {
		return nil, domain.NewValidationError("unknown event category")
	}
	updated, err := s.eventRepo.Update(ctx, eventID, upd)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.owned(ctx, eventID, callerID); err != nil {
		return err
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) Publish(ctx context.Context, eventID, callerID string) error {
	return s.setDraft(ctx, eventID, callerID, false)
}

func (s *eventService) SaveAsDraft(ctx context.Context, eventID, callerID string) error {
	return s.setDraft(ctx, eventID, callerID, true)
}

func (s *eventService) setDraft(ctx context.Context, eventID, callerID string, draft bool) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.owned(ctx, eventID, callerID); err != nil {
		return err
	}
	if err := s.eventRepo.SetDraft(ctx, eventID, draft); err != nil {
		return fmt.Errorf("set draft flag: %w", err)
	}
	return nil
}

func (s *eventService) SaveProgress(ctx context.Context, eventID, callerID string) (time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.owned(ctx, eventID, callerID); err != nil {
		return time.Time{}, err
	}
	now := time.Now()
	if err := s.eventRepo.SetLastSavedAt(ctx, eventID, now); err != nil {
		return time.Time{}, fmt.Errorf("set last saved: %w", err)
	}
	return now, nil
}

// RenderPreview renders the event's template design into an artifact. An
// event without a template renders the details-only document.
func (s *eventService) RenderPreview(ctx context.Context, eventID, callerID string, format domain.RenderFormat) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.owned(ctx, eventID, callerID)
	if err != nil {
		return nil, err
	}
	var design *domain.DesignDocument
	if event.TemplateID != nil {
		t, err := s.templateRepo.GetByID(ctx, *event.TemplateID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("get template: %w", err)
		}
		if t != nil {
			design = t.Design
		}
	}
	facts := domain.EventFacts{
		Title:       event.Title,
		Date:        event.Date,
		Location:    event.Location,
		Description: event.Description,
	}
	artifact, err := s.renderer.Render(design, facts, format)
	if err != nil {
		return nil, fmt.Errorf("render preview: %w", err)
	}
	return artifact, nil
}

// owned resolves the event with an owner filter, so callers cannot tell a
// foreign event from a missing one.
func (s *eventService) owned(ctx context.Context, eventID, callerID string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByIDForOwner(ctx, eventID, callerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}
