package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventinvitations/internal/domain"
)

type fakeConfirmationRepo struct {
	byInvitation map[string]*domain.Confirmation
	createErr    error
	nextID       int
}

func newFakeConfirmationRepo() *fakeConfirmationRepo {
	return &fakeConfirmationRepo{byInvitation: map[string]*domain.Confirmation{}}
}

func (f *fakeConfirmationRepo) Create(ctx context.Context, c *domain.Confirmation) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byInvitation[c.InvitationID]; ok {
		return domain.ErrDuplicateConfirmation
	}
	f.nextID++
	c.ID = "conf-" + strconv.Itoa(f.nextID)
	f.byInvitation[c.InvitationID] = c
	return nil
}

func (f *fakeConfirmationRepo) GetByInvitationID(ctx context.Context, invitationID string) (*domain.Confirmation, error) {
	c, ok := f.byInvitation[invitationID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeConfirmationRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Confirmation, error) {
	var confs []*domain.Confirmation
	for _, c := range f.byInvitation {
		confs = append(confs, c)
	}
	return confs, nil
}

type fakeUserRepo struct {
	byID map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]*domain.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User, passwordHash, salt string) error {
	user.ID = "user-" + strconv.Itoa(len(f.byID)+1)
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.UserCredentials, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return &domain.UserCredentials{User: u}, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

type confirmationFixture struct {
	confirmationRepo *fakeConfirmationRepo
	invitationRepo   *fakeInvitationRepo
	eventRepo        *fakeEventRepo
	userRepo         *fakeUserRepo
	mailer           *fakeMailer
	svc              domain.ConfirmationService
}

func newConfirmationFixture() *confirmationFixture {
	f := &confirmationFixture{
		confirmationRepo: newFakeConfirmationRepo(),
		invitationRepo:   newFakeInvitationRepo(),
		eventRepo:        newFakeEventRepo(),
		userRepo:         newFakeUserRepo(),
		mailer:           &fakeMailer{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = NewConfirmationService(
		f.confirmationRepo, f.invitationRepo, f.eventRepo, f.userRepo,
		f.mailer, logger, 2*time.Second,
	)
	return f
}

func (f *confirmationFixture) seed() *domain.Invitation {
	f.eventRepo.byID["ev-1"] = &domain.Event{
		ID:      "ev-1",
		Title:   "Garden Party",
		OwnerID: "user-1",
	}
	f.userRepo.byID["user-1"] = &domain.User{ID: "user-1", Email: "owner@example.com"}
	inv := &domain.Invitation{
		ID:            "inv-1",
		EventID:       "ev-1",
		Status:        domain.StatusSent,
		AccessToken:   "tok-1",
		Channel:       domain.ChannelEmail,
		RecipientName: "Ana",
		MaxCompanions: 2,
	}
	f.invitationRepo.add(inv)
	return inv
}

func TestConfirmationService_PublicInvitation(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := newConfirmationFixture()
		f.seed()

		inv, event, err := f.svc.PublicInvitation(ctx, "tok-1")

		require.NoError(t, err)
		assert.Equal(t, "Ana", inv.RecipientName)
		assert.Equal(t, "Garden Party", event.Title)
	})

	t.Run("unknown token", func(t *testing.T) {
		f := newConfirmationFixture()
		f.seed()

		_, _, err := f.svc.PublicInvitation(ctx, "bogus")

		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestConfirmationService_Confirm(t *testing.T) {
	ctx := context.Background()

	t.Run("success sets invitation confirmed", func(t *testing.T) {
		f := newConfirmationFixture()
		f.seed()

		conf, err := f.svc.Confirm(ctx, "tok-1", domain.ConfirmRequest{
			GuestName:  "Ana García",
			Companions: 2,
			MenuChoice: "vegetarian",
			Comments:   "arriving late",
		})

		require.NoError(t, err)
		assert.Equal(t, "Ana García", conf.GuestName)
		assert.Equal(t, 2, conf.Companions)
		assert.False(t, conf.RespondedAt.IsZero())
		stored, _ := f.invitationRepo.GetByID(ctx, "inv-1")
		assert.Equal(t, domain.StatusConfirmed, stored.Status)
	})

	t.Run("guest name defaults to recipient name", func(t *testing.T) {
		f := newConfirmationFixture()
		f.seed()

		conf, err := f.svc.Confirm(ctx, "tok-1", domain.ConfirmRequest{})

		require.NoError(t, err)
		assert.Equal(t, "Ana", conf.GuestName)
	})

	t.Run("unknown token records nothing", func(t *testing.T) {
		f := newConfirmationFixture()
		f.seed()

		_, err := f.svc.Confirm(ctx, "bogus", domain.ConfirmRequest{})

		require.ErrorIs(t, err, domain.ErrNotFound)
		assert.Empty(t, f.confirmationRepo.byInvitation)
	})

	t.Run("companions over allowance", func(t *testing.T) {
		f := newConfirmationFixture()
		f.seed()

		_, err := f.svc.Confirm(ctx, "tok-1", domain.ConfirmRequest{Companions: 3})

		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
		assert.Contains(t, err.Error(), "maximum companions allowed: 2")
		assert.Empty(t, f.confirmationRepo.byInvitation)
	})

	t.Run("negative companions", func(t *testing.T) {
		f := newConfirmationFixture()
		f.seed()

		_, err := f.svc.Confirm(ctx, "tok-1", domain.ConfirmRequest{Companions: -1})

		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("second confirmation rejected, first untouched", func(t *testing.T) {
		f := newConfirmationFixture()
		f.seed()

		first, err := f.svc.Confirm(ctx, "tok-1", domain.ConfirmRequest{GuestName: "Ana", Companions: 1})
		require.NoError(t, err)

		_, err = f.svc.Confirm(ctx, "tok-1", domain.ConfirmRequest{GuestName: "Impostor"})

		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
		stored, _ := f.confirmationRepo.GetByInvitationID(ctx, "inv-1")
		assert.Equal(t, first.ID, stored.ID)
		assert.Equal(t, "Ana", stored.GuestName)
	})

	t.Run("organizer is notified", func(t *testing.T) {
		f := newConfirmationFixture()
		f.seed()

		_, err := f.svc.Confirm(ctx, "tok-1", domain.ConfirmRequest{Companions: 1})

		require.NoError(t, err)
		require.Len(t, f.mailer.sent, 1)
		assert.Equal(t, "owner@example.com", f.mailer.sent[0].to)
		assert.Equal(t, "New confirmation for Garden Party", f.mailer.sent[0].subject)
	})

	t.Run("notification failure does not fail the RSVP", func(t *testing.T) {
		f := newConfirmationFixture()
		f.seed()
		f.mailer.err = errors.New("ses down")

		conf, err := f.svc.Confirm(ctx, "tok-1", domain.ConfirmRequest{})

		require.NoError(t, err)
		require.NotNil(t, conf)
		stored, _ := f.invitationRepo.GetByID(ctx, "inv-1")
		assert.Equal(t, domain.StatusConfirmed, stored.Status)
	})
}

func TestConfirmationService_Decline(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := newConfirmationFixture()
		f.seed()

		err := f.svc.Decline(ctx, "tok-1")

		require.NoError(t, err)
		stored, _ := f.invitationRepo.GetByID(ctx, "inv-1")
		assert.Equal(t, domain.StatusDeclined, stored.Status)
		assert.Empty(t, f.confirmationRepo.byInvitation, "decline must not create a confirmation")
	})

	t.Run("confirmed invitation cannot be declined", func(t *testing.T) {
		f := newConfirmationFixture()
		inv := f.seed()
		inv.Status = domain.StatusConfirmed

		err := f.svc.Decline(ctx, "tok-1")

		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
		stored, _ := f.invitationRepo.GetByID(ctx, "inv-1")
		assert.Equal(t, domain.StatusConfirmed, stored.Status)
	})

	t.Run("unknown token", func(t *testing.T) {
		f := newConfirmationFixture()
		f.seed()

		err := f.svc.Decline(ctx, "bogus")

		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestConfirmationService_ListByEvent(t *testing.T) {
	ctx := context.Background()

	f := newConfirmationFixture()
	f.seed()
	_, err := f.svc.Confirm(ctx, "tok-1", domain.ConfirmRequest{Companions: 1})
	require.NoError(t, err)

	confs, err := f.svc.ListByEvent(ctx, "ev-1", "user-1")
	require.NoError(t, err)
	assert.Len(t, confs, 1)

	_, err = f.svc.ListByEvent(ctx, "ev-1", "intruder")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConfirmationService_ExportCSV(t *testing.T) {
	ctx := context.Background()

	f := newConfirmationFixture()
	f.seed()
	conf := &domain.Confirmation{
		InvitationID: "inv-1",
		GuestName:    "Ana, García",
		Companions:   2,
		MenuChoice:   "vegetarian",
		Comments:     "arriving late",
		RespondedAt:  time.Date(2026, 6, 1, 14, 30, 0, 0, time.UTC),
	}
	require.NoError(t, f.confirmationRepo.Create(ctx, conf))

	payload, err := f.svc.ExportCSV(ctx, "ev-1", "user-1")

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Name,Companions,Menu,Response Date,Comments", lines[0])
	assert.Equal(t, `"Ana, García",2,vegetarian,2026-06-01 14:30,arriving late`, lines[1])
}
