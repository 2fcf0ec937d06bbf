package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"eventinvitations/internal/domain"
)

type invitationService struct {
	invitationRepo domain.InvitationRepository
	eventRepo      domain.EventRepository
	templateRepo   domain.TemplateRepository
	mailer         domain.Mailer
	messenger      domain.Messenger
	composer       *MessageComposer
	contextTimeout time.Duration
}

// NewInvitationService wires the dispatch pipeline: invitation storage,
// event/template lookups, the message composer, and both transports.
func NewInvitationService(
	invitationRepo domain.InvitationRepository,
	eventRepo domain.EventRepository,
	templateRepo domain.TemplateRepository,
	mailer domain.Mailer,
	messenger domain.Messenger,
	composer *MessageComposer,
	timeout time.Duration,
) domain.InvitationService {
	return &invitationService{
		invitationRepo: invitationRepo,
		eventRepo:      eventRepo,
		templateRepo:   templateRepo,
		mailer:         mailer,
		messenger:      messenger,
		composer:       composer,
		contextTimeout: timeout,
	}
}

func (s *invitationService) CreateInvitation(ctx context.Context, eventID, callerID string, inv *domain.Invitation) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByIDForOwner(ctx, eventID, callerID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	inv.EventID = eventID
	inv.Status = domain.StatusPending
	inv.AccessToken = uuid.NewString()
	if err := inv.Validate(); err != nil {
		return err
	}
	if err := s.invitationRepo.Create(ctx, inv); err != nil {
		return fmt.Errorf("create invitation: %w", err)
	}
	return nil
}

func (s *invitationService) ListInvitations(ctx context.Context, eventID, callerID string, params domain.PaginationParams) ([]*domain.Invitation, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByIDForOwner(ctx, eventID, callerID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, 0, domain.ErrNotFound
		}
		return nil, 0, fmt.Errorf("get event: %w", err)
	}
	invs, total, err := s.invitationRepo.ListByEventID(ctx, eventID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list invitations: %w", err)
	}
	if invs == nil {
		invs = []*domain.Invitation{}
	}
	return invs, total, nil
}

// Dispatch delivers one invitation over its declared channel. Re-running
// it on an already sent invitation is the resend path: same delivery,
// fresh sent timestamp.
func (s *invitationService) Dispatch(ctx context.Context, invitationID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, event, err := s.ownedInvitation(ctx, invitationID, callerID)
	if err != nil {
		return err
	}
	return s.deliver(ctx, inv, event)
}

// deliver composes and sends the invitation body, then marks the
// invitation sent. On any failure the invitation state is left untouched.
func (s *invitationService) deliver(ctx context.Context, inv *domain.Invitation, event *domain.Event) error {
	switch {
	case inv.Channel == domain.ChannelEmail && inv.RecipientEmail != nil && *inv.RecipientEmail != "":
		design := s.designFor(ctx, event)
		html, err := s.composer.EmailHTML(inv, event, design)
		if err != nil {
			return err
		}
		subject := "Invitation to " + event.Title
		if err := s.mailer.Send(*inv.RecipientEmail, subject, html, s.composer.EmailText(inv, event)); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrTransport, err)
		}
	case inv.Channel == domain.ChannelWhatsApp && inv.RecipientPhone != nil && *inv.RecipientPhone != "":
		if _, err := s.messenger.Send(*inv.RecipientPhone, s.composer.WhatsAppText(inv, event)); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrTransport, err)
		}
	default:
		return domain.NewValidationError("invitation has no recipient contact for its channel")
	}

	now := time.Now()
	if err := s.invitationRepo.MarkSent(ctx, inv.ID, now); err != nil {
		return fmt.Errorf("mark invitation sent: %w", err)
	}
	inv.Status = domain.StatusSent
	inv.SentAt = &now
	return nil
}

func (s *invitationService) SendReminder(ctx context.Context, invitationID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, event, err := s.ownedInvitation(ctx, invitationID, callerID)
	if err != nil {
		return err
	}
	switch {
	case inv.Channel == domain.ChannelEmail && inv.RecipientEmail != nil && *inv.RecipientEmail != "":
		subject := "Reminder: " + event.Title
		html := s.composer.ReminderHTML(inv, event)
		if err := s.mailer.Send(*inv.RecipientEmail, subject, html, s.composer.ReminderText(inv, event)); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrTransport, err)
		}
	case inv.Channel == domain.ChannelWhatsApp && inv.RecipientPhone != nil && *inv.RecipientPhone != "":
		if _, err := s.messenger.Send(*inv.RecipientPhone, s.composer.ReminderText(inv, event)); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrTransport, err)
		}
	default:
		return domain.NewValidationError("invitation has no recipient contact for its channel")
	}
	return nil
}

// DispatchBulk creates and sends one invitation per recipient. Recipients
// are processed sequentially in input order; each failure is recorded and
// the loop continues. No service timeout is applied here: overall latency
// is bounded only by recipient count and transport latency.
func (s *invitationService) DispatchBulk(ctx context.Context, eventID, callerID, defaultChannel string, recipients []domain.Recipient) (*domain.BulkResult, error) {
	event, err := s.eventRepo.GetByIDForOwner(ctx, eventID, callerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if defaultChannel == "" {
		defaultChannel = domain.ChannelEmail
	}

	result := &domain.BulkResult{
		Status:    "completed",
		Total:     len(recipients),
		Successes: []domain.BulkSuccess{},
		Failures:  []domain.BulkFailure{},
	}
	for i, rec := range recipients {
		name := rec.Name
		if name == "" {
			name = "unnamed"
		}
		inv, err := s.dispatchRecipient(ctx, event, defaultChannel, rec)
		if err != nil {
			result.Failures = append(result.Failures, domain.BulkFailure{
				Index:     i,
				Recipient: name,
				Error:     err.Error(),
			})
			continue
		}
		result.Successes = append(result.Successes, domain.BulkSuccess{
			Index:        i,
			InvitationID: inv.ID,
			Recipient:    name,
			Link:         s.composer.ConfirmationLink(inv.AccessToken),
		})
	}
	result.Succeeded = len(result.Successes)
	result.Failed = len(result.Failures)
	return result, nil
}

// dispatchRecipient is one isolated unit of the bulk loop: validate,
// create, deliver. An invitation whose delivery fails is retained in
// pending status, not rolled back.
func (s *invitationService) dispatchRecipient(ctx context.Context, event *domain.Event, defaultChannel string, rec domain.Recipient) (*domain.Invitation, error) {
	channel := rec.Channel
	if channel == "" {
		channel = defaultChannel
	}
	maxCompanions := 0
	if rec.MaxCompanions != nil {
		maxCompanions = *rec.MaxCompanions
	}
	inv := &domain.Invitation{
		EventID:        event.ID,
		Status:         domain.StatusPending,
		AccessToken:    uuid.NewString(),
		Channel:        channel,
		RecipientName:  rec.Name,
		RecipientEmail: rec.Email,
		RecipientPhone: rec.Phone,
		MaxCompanions:  maxCompanions,
	}
	if err := inv.Validate(); err != nil {
		return nil, err
	}
	if err := s.invitationRepo.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("create invitation: %w", err)
	}
	if err := s.deliver(ctx, inv, event); err != nil {
		return nil, err
	}
	return inv, nil
}

// ownedInvitation loads an invitation and its event, requiring the caller
// to own the event. A foreign invitation resolves to ErrNotFound.
func (s *invitationService) ownedInvitation(ctx context.Context, invitationID, callerID string) (*domain.Invitation, *domain.Event, error) {
	inv, err := s.invitationRepo.GetByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get invitation: %w", err)
	}
	event, err := s.eventRepo.GetByIDForOwner(ctx, inv.EventID, callerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get event: %w", err)
	}
	return inv, event, nil
}

// designFor resolves the event's template design. Missing or broken
// template references degrade to no design rather than failing the send.
func (s *invitationService) designFor(ctx context.Context, event *domain.Event) *domain.DesignDocument {
	if event.TemplateID == nil {
		return nil
	}
	t, err := s.templateRepo.GetByID(ctx, *event.TemplateID)
	if err != nil {
		return nil
	}
	return t.Design
}
