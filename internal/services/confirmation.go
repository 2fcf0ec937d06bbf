package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"eventinvitations/internal/domain"
)

type confirmationService struct {
	confirmationRepo domain.ConfirmationRepository
	invitationRepo   domain.InvitationRepository
	eventRepo        domain.EventRepository
	userRepo         domain.UserRepository
	mailer           domain.Mailer
	logger           *slog.Logger
	contextTimeout   time.Duration
}

// NewConfirmationService returns the public RSVP intake plus the
// organizer-facing confirmation views.
func NewConfirmationService(
	confirmationRepo domain.ConfirmationRepository,
	invitationRepo domain.InvitationRepository,
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	mailer domain.Mailer,
	logger *slog.Logger,
	timeout time.Duration,
) domain.ConfirmationService {
	return &confirmationService{
		confirmationRepo: confirmationRepo,
		invitationRepo:   invitationRepo,
		eventRepo:        eventRepo,
		userRepo:         userRepo,
		mailer:           mailer,
		logger:           logger,
		contextTimeout:   timeout,
	}
}

func (s *confirmationService) PublicInvitation(ctx context.Context, token string) (*domain.Invitation, *domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, err := s.invitationRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get invitation by token: %w", err)
	}
	event, err := s.eventRepo.GetByID(ctx, inv.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get event: %w", err)
	}
	return inv, event, nil
}

// Confirm records an RSVP against an access token. The check on an
// existing confirmation is a fast path; the store's unique constraint on
// invitation_id is the authoritative guard under concurrent submissions.
func (s *confirmationService) Confirm(ctx context.Context, token string, req domain.ConfirmRequest) (*domain.Confirmation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, err := s.invitationRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invitation by token: %w", err)
	}
	if req.Companions < 0 {
		return nil, domain.NewValidationError("companions cannot be negative")
	}
	if req.Companions > inv.MaxCompanions {
		return nil, domain.NewValidationError(fmt.Sprintf("maximum companions allowed: %d", inv.MaxCompanions))
	}
	if _, err := s.confirmationRepo.GetByInvitationID(ctx, inv.ID); err == nil {
		return nil, domain.ErrDuplicateConfirmation
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check existing confirmation: %w", err)
	}

	guestName := req.GuestName
	if guestName == "" {
		guestName = inv.RecipientName
	}
	conf := &domain.Confirmation{
		InvitationID: inv.ID,
		GuestName:    guestName,
		Companions:   req.Companions,
		MenuChoice:   req.MenuChoice,
		Comments:     req.Comments,
		RespondedAt:  time.Now(),
	}
	if err := s.confirmationRepo.Create(ctx, conf); err != nil {
		return nil, err
	}
	if err := s.invitationRepo.SetStatus(ctx, inv.ID, domain.StatusConfirmed); err != nil {
		return nil, fmt.Errorf("set invitation status: %w", err)
	}

	s.notifyOrganizer(ctx, inv, conf)
	return conf, nil
}

// notifyOrganizer emails the event owner about a new confirmation.
// Best effort: a notification failure never fails the RSVP.
func (s *confirmationService) notifyOrganizer(ctx context.Context, inv *domain.Invitation, conf *domain.Confirmation) {
	event, err := s.eventRepo.GetByID(ctx, inv.EventID)
	if err != nil {
		s.logger.Warn("confirmation notification skipped", "invitation_id", inv.ID, "err", err)
		return
	}
	owner, err := s.userRepo.GetByID(ctx, event.OwnerID)
	if err != nil || owner.Email == "" {
		s.logger.Warn("confirmation notification skipped", "invitation_id", inv.ID, "err", err)
		return
	}
	comments := conf.Comments
	if comments == "" {
		comments = "none"
	}
	subject := "New confirmation for " + event.Title
	text := fmt.Sprintf("%s has confirmed attendance.\nCompanions: %d\nComments: %s",
		conf.GuestName, conf.Companions, comments)
	if err := s.mailer.Send(owner.Email, subject, "", text); err != nil {
		s.logger.Warn("confirmation notification failed", "invitation_id", inv.ID, "err", err)
	}
}

func (s *confirmationService) Decline(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, err := s.invitationRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get invitation by token: %w", err)
	}
	if inv.Status == domain.StatusConfirmed {
		return domain.NewValidationError("invitation already confirmed")
	}
	if err := s.invitationRepo.SetStatus(ctx, inv.ID, domain.StatusDeclined); err != nil {
		return fmt.Errorf("set invitation status: %w", err)
	}
	return nil
}

func (s *confirmationService) ListByEvent(ctx context.Context, eventID, callerID string) ([]*domain.Confirmation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByIDForOwner(ctx, eventID, callerID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	confs, err := s.confirmationRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list confirmations: %w", err)
	}
	if confs == nil {
		confs = []*domain.Confirmation{}
	}
	return confs, nil
}

// ExportCSV renders the event's confirmations as UTF-8 CSV with a header
// row, one row per confirmation.
func (s *confirmationService) ExportCSV(ctx context.Context, eventID, callerID string) ([]byte, error) {
	confs, err := s.ListByEvent(ctx, eventID, callerID)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Name", "Companions", "Menu", "Response Date", "Comments"}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, c := range confs {
		row := []string{
			c.GuestName,
			strconv.Itoa(c.Companions),
			c.MenuChoice,
			c.RespondedAt.Format("2006-01-02 15:04"),
			c.Comments,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
