package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventinvitations/internal/domain"
)

type fakeInvitationRepo struct {
	byID      map[string]*domain.Invitation
	byToken   map[string]*domain.Invitation
	createErr error
	nextID    int
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{
		byID:    map[string]*domain.Invitation{},
		byToken: map[string]*domain.Invitation{},
	}
}

func (f *fakeInvitationRepo) add(inv *domain.Invitation) {
	f.byID[inv.ID] = inv
	f.byToken[inv.AccessToken] = inv
}

func (f *fakeInvitationRepo) Create(ctx context.Context, inv *domain.Invitation) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	inv.ID = "inv-" + strconv.Itoa(f.nextID)
	f.add(inv)
	return nil
}

func (f *fakeInvitationRepo) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	inv, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (f *fakeInvitationRepo) GetByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	inv, ok := f.byToken[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (f *fakeInvitationRepo) ListByEventID(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.Invitation, int, error) {
	var invs []*domain.Invitation
	for _, inv := range f.byID {
		if inv.EventID == eventID {
			invs = append(invs, inv)
		}
	}
	return invs, len(invs), nil
}

func (f *fakeInvitationRepo) SetStatus(ctx context.Context, id, status string) error {
	inv, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	inv.Status = status
	return nil
}

func (f *fakeInvitationRepo) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	inv, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	inv.Status = domain.StatusSent
	inv.SentAt = &sentAt
	return nil
}

type fakeEventRepo struct {
	byID map[string]*domain.Event
	err  error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: map[string]*domain.Event{}}
}

func (f *fakeEventRepo) Create(ctx context.Context, event *domain.Event) error {
	f.byID[event.ID] = event
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	ev, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *ev
	return &cp, nil
}

func (f *fakeEventRepo) GetByIDForOwner(ctx context.Context, id, ownerID string) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	ev, ok := f.byID[id]
	if !ok || ev.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	cp := *ev
	return &cp, nil
}

func (f *fakeEventRepo) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	var events []*domain.Event
	for _, ev := range f.byID {
		if ev.OwnerID == ownerID {
			events = append(events, ev)
		}
	}
	return events, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, id string, upd domain.EventUpdate) (*domain.Event, error) {
	ev, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if upd.Title != nil {
		ev.Title = *upd.Title
	}
	if upd.Category != nil {
		ev.Category = *upd.Category
	}
	if upd.Date != nil {
		ev.Date = *upd.Date
	}
	if upd.Location != nil {
		ev.Location = *upd.Location
	}
	if upd.Description != nil {
		ev.Description = *upd.Description
	}
	if upd.TemplateID != nil {
		ev.TemplateID = upd.TemplateID
	}
	cp := *ev
	return &cp, nil
}

func (f *fakeEventRepo) SetDraft(ctx context.Context, id string, draft bool) error {
	ev, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	ev.IsDraft = draft
	return nil
}

func (f *fakeEventRepo) SetLastSavedAt(ctx context.Context, id string, at time.Time) error {
	ev, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	ev.LastSavedAt = &at
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeTemplateRepo struct {
	byID map[string]*domain.Template
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{byID: map[string]*domain.Template{}}
}

func (f *fakeTemplateRepo) Create(ctx context.Context, t *domain.Template) error {
	if t.ID == "" {
		t.ID = "tmpl-" + strconv.Itoa(len(f.byID)+1)
	}
	f.byID[t.ID] = t
	return nil
}

func (f *fakeTemplateRepo) GetByID(ctx context.Context, id string) (*domain.Template, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTemplateRepo) ListVisible(ctx context.Context, userID string) ([]*domain.Template, error) {
	var templates []*domain.Template
	for _, t := range f.byID {
		if t.IsPublic || (t.IsTemporary && t.CreatedBy != nil && *t.CreatedBy == userID) {
			templates = append(templates, t)
		}
	}
	return templates, nil
}

func (f *fakeTemplateRepo) ListAll(ctx context.Context) ([]*domain.Template, error) {
	var templates []*domain.Template
	for _, t := range f.byID {
		templates = append(templates, t)
	}
	return templates, nil
}

func (f *fakeTemplateRepo) Update(ctx context.Context, t *domain.Template) error {
	if _, ok := f.byID[t.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[t.ID] = t
	return nil
}

func (f *fakeTemplateRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type sentEmail struct {
	to      string
	subject string
	html    string
	text    string
}

type fakeMailer struct {
	sent []sentEmail
	err  error
}

func (f *fakeMailer) Send(to, subject, html, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentEmail{to: to, subject: subject, html: html, text: text})
	return nil
}

type sentMessage struct {
	to   string
	text string
}

type fakeMessenger struct {
	sent []sentMessage
	err  error
}

func (f *fakeMessenger) Send(toPhone, text string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, sentMessage{to: toPhone, text: text})
	return "msg-" + strconv.Itoa(len(f.sent)), nil
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

type invitationFixture struct {
	invitationRepo *fakeInvitationRepo
	eventRepo      *fakeEventRepo
	templateRepo   *fakeTemplateRepo
	mailer         *fakeMailer
	messenger      *fakeMessenger
	svc            domain.InvitationService
}

func newInvitationFixture() *invitationFixture {
	f := &invitationFixture{
		invitationRepo: newFakeInvitationRepo(),
		eventRepo:      newFakeEventRepo(),
		templateRepo:   newFakeTemplateRepo(),
		mailer:         &fakeMailer{},
		messenger:      &fakeMessenger{},
	}
	f.svc = NewInvitationService(
		f.invitationRepo, f.eventRepo, f.templateRepo,
		f.mailer, f.messenger, NewMessageComposer("https://invites.example.com"),
		2*time.Second,
	)
	return f
}

func (f *invitationFixture) addEvent(id, ownerID string) *domain.Event {
	ev := &domain.Event{
		ID:       id,
		Title:    "Garden Party",
		Category: domain.CategoryBirthday,
		Date:     time.Date(2026, 6, 15, 18, 0, 0, 0, time.UTC),
		Location: "Riverside Hall",
		OwnerID:  ownerID,
	}
	f.eventRepo.byID[id] = ev
	return ev
}

func TestInvitationService_CreateInvitation(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := newInvitationFixture()
		f.addEvent("ev-1", "user-1")

		inv := &domain.Invitation{
			Channel:        domain.ChannelEmail,
			RecipientName:  "Ana",
			RecipientEmail: strPtr("ana@example.com"),
			MaxCompanions:  2,
		}
		err := f.svc.CreateInvitation(ctx, "ev-1", "user-1", inv)

		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, inv.Status)
		assert.Equal(t, "ev-1", inv.EventID)
		assert.NotEmpty(t, inv.AccessToken)
		assert.NotEmpty(t, inv.ID)
		stored, err := f.invitationRepo.GetByID(ctx, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, inv.AccessToken, stored.AccessToken)
	})

	t.Run("event owned by someone else", func(t *testing.T) {
		f := newInvitationFixture()
		f.addEvent("ev-1", "user-1")

		inv := &domain.Invitation{
			Channel:        domain.ChannelEmail,
			RecipientName:  "Ana",
			RecipientEmail: strPtr("ana@example.com"),
		}
		err := f.svc.CreateInvitation(ctx, "ev-1", "intruder", inv)

		require.ErrorIs(t, err, domain.ErrNotFound)
		assert.Empty(t, f.invitationRepo.byID)
	})

	t.Run("missing contact for channel", func(t *testing.T) {
		f := newInvitationFixture()
		f.addEvent("ev-1", "user-1")

		inv := &domain.Invitation{
			Channel:       domain.ChannelEmail,
			RecipientName: "Ana",
		}
		err := f.svc.CreateInvitation(ctx, "ev-1", "user-1", inv)

		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
		assert.Empty(t, f.invitationRepo.byID)
	})
}

func TestInvitationService_Dispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("email delivery marks sent", func(t *testing.T) {
		f := newInvitationFixture()
		f.addEvent("ev-1", "user-1")
		inv := &domain.Invitation{
			ID:             "inv-1",
			EventID:        "ev-1",
			Status:         domain.StatusPending,
			AccessToken:    "tok-1",
			Channel:        domain.ChannelEmail,
			RecipientName:  "Ana",
			RecipientEmail: strPtr("ana@example.com"),
		}
		f.invitationRepo.add(inv)

		err := f.svc.Dispatch(ctx, "inv-1", "user-1")

		require.NoError(t, err)
		require.Len(t, f.mailer.sent, 1)
		assert.Equal(t, "ana@example.com", f.mailer.sent[0].to)
		assert.Equal(t, "Invitation to Garden Party", f.mailer.sent[0].subject)
		assert.Contains(t, f.mailer.sent[0].html, "https://invites.example.com/confirmar/tok-1")
		stored, _ := f.invitationRepo.GetByID(ctx, "inv-1")
		assert.Equal(t, domain.StatusSent, stored.Status)
		require.NotNil(t, stored.SentAt)
	})

	t.Run("whatsapp delivery", func(t *testing.T) {
		f := newInvitationFixture()
		f.addEvent("ev-1", "user-1")
		inv := &domain.Invitation{
			ID:             "inv-1",
			EventID:        "ev-1",
			Status:         domain.StatusPending,
			AccessToken:    "tok-1",
			Channel:        domain.ChannelWhatsApp,
			RecipientName:  "Cas",
			RecipientPhone: strPtr("+5491122334455"),
		}
		f.invitationRepo.add(inv)

		err := f.svc.Dispatch(ctx, "inv-1", "user-1")

		require.NoError(t, err)
		require.Len(t, f.messenger.sent, 1)
		assert.Equal(t, "+5491122334455", f.messenger.sent[0].to)
		assert.Contains(t, f.messenger.sent[0].text, "*Garden Party*")
		stored, _ := f.invitationRepo.GetByID(ctx, "inv-1")
		assert.Equal(t, domain.StatusSent, stored.Status)
	})

	t.Run("transport failure leaves invitation pending", func(t *testing.T) {
		f := newInvitationFixture()
		f.addEvent("ev-1", "user-1")
		f.mailer.err = errors.New("ses throttled")
		inv := &domain.Invitation{
			ID:             "inv-1",
			EventID:        "ev-1",
			Status:         domain.StatusPending,
			AccessToken:    "tok-1",
			Channel:        domain.ChannelEmail,
			RecipientName:  "Ana",
			RecipientEmail: strPtr("ana@example.com"),
		}
		f.invitationRepo.add(inv)

		err := f.svc.Dispatch(ctx, "inv-1", "user-1")

		require.ErrorIs(t, err, domain.ErrTransport)
		stored, _ := f.invitationRepo.GetByID(ctx, "inv-1")
		assert.Equal(t, domain.StatusPending, stored.Status)
		assert.Nil(t, stored.SentAt)
	})

	t.Run("missing contact skips transport", func(t *testing.T) {
		f := newInvitationFixture()
		f.addEvent("ev-1", "user-1")
		inv := &domain.Invitation{
			ID:            "inv-1",
			EventID:       "ev-1",
			Status:        domain.StatusPending,
			AccessToken:   "tok-1",
			Channel:       domain.ChannelEmail,
			RecipientName: "Ana",
		}
		f.invitationRepo.add(inv)

		err := f.svc.Dispatch(ctx, "inv-1", "user-1")

		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
		assert.Empty(t, f.mailer.sent)
		assert.Empty(t, f.messenger.sent)
	})

	t.Run("resend refreshes sent timestamp", func(t *testing.T) {
		f := newInvitationFixture()
		f.addEvent("ev-1", "user-1")
		old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		inv := &domain.Invitation{
			ID:             "inv-1",
			EventID:        "ev-1",
			Status:         domain.StatusSent,
			AccessToken:    "tok-1",
			Channel:        domain.ChannelEmail,
			RecipientName:  "Ana",
			RecipientEmail: strPtr("ana@example.com"),
			SentAt:         &old,
		}
		f.invitationRepo.add(inv)

		err := f.svc.Dispatch(ctx, "inv-1", "user-1")

		require.NoError(t, err)
		stored, _ := f.invitationRepo.GetByID(ctx, "inv-1")
		require.NotNil(t, stored.SentAt)
		assert.True(t, stored.SentAt.After(old))
	})

	t.Run("foreign invitation resolves to not found", func(t *testing.T) {
		f := newInvitationFixture()
		f.addEvent("ev-1", "user-1")
		inv := &domain.Invitation{
			ID:             "inv-1",
			EventID:        "ev-1",
			Status:         domain.StatusPending,
			AccessToken:    "tok-1",
			Channel:        domain.ChannelEmail,
			RecipientName:  "Ana",
			RecipientEmail: strPtr("ana@example.com"),
		}
		f.invitationRepo.add(inv)

		err := f.svc.Dispatch(ctx, "inv-1", "intruder")

		require.ErrorIs(t, err, domain.ErrNotFound)
		assert.Empty(t, f.mailer.sent)
	})
}

func TestInvitationService_SendReminder(t *testing.T) {
	ctx := context.Background()

	f := newInvitationFixture()
	f.addEvent("ev-1", "user-1")
	inv := &domain.Invitation{
		ID:             "inv-1",
		EventID:        "ev-1",
		Status:         domain.StatusSent,
		AccessToken:    "tok-1",
		Channel:        domain.ChannelEmail,
		RecipientName:  "Ana",
		RecipientEmail: strPtr("ana@example.com"),
	}
	f.invitationRepo.add(inv)

	err := f.svc.SendReminder(ctx, "inv-1", "user-1")

	require.NoError(t, err)
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "Reminder: Garden Party", f.mailer.sent[0].subject)
	stored, _ := f.invitationRepo.GetByID(ctx, "inv-1")
	assert.Equal(t, domain.StatusSent, stored.Status, "reminder must not change status")
}

func TestInvitationService_DispatchBulk(t *testing.T) {
	ctx := context.Background()

	t.Run("mixed batch records per-recipient outcomes", func(t *testing.T) {
		f := newInvitationFixture()
		f.addEvent("ev-1", "user-1")

		recipients := []domain.Recipient{
			{Name: "Ana", Email: strPtr("ana@example.com"), MaxCompanions: intPtr(2)},
			{Name: "Bob"},
			{Name: "Cas", Phone: strPtr("+5491122334455"), Channel: domain.ChannelWhatsApp},
		}
		result, err := f.svc.DispatchBulk(ctx, "ev-1", "user-1", "", recipients)

		require.NoError(t, err)
		assert.Equal(t, "completed", result.Status)
		assert.Equal(t, 3, result.Total)
		assert.Equal(t, 2, result.Succeeded)
		assert.Equal(t, 1, result.Failed)

		require.Len(t, result.Successes, 2)
		assert.Equal(t, 0, result.Successes[0].Index)
		assert.Equal(t, "Ana", result.Successes[0].Recipient)
		assert.Contains(t, result.Successes[0].Link, "https://invites.example.com/confirmar/")
		assert.Equal(t, 2, result.Successes[1].Index)
		assert.Equal(t, "Cas", result.Successes[1].Recipient)

		require.Len(t, result.Failures, 1)
		assert.Equal(t, 1, result.Failures[0].Index)
		assert.Equal(t, "Bob", result.Failures[0].Recipient)
		assert.NotEmpty(t, result.Failures[0].Error)

		assert.Len(t, f.mailer.sent, 1)
		assert.Len(t, f.messenger.sent, 1)
	})

	t.Run("phone-only recipient fails under default email channel", func(t *testing.T) {
		f := newInvitationFixture()
		f.addEvent("ev-1", "user-1")

		recipients := []domain.Recipient{
			{Name: "Cas", Phone: strPtr("+5491122334455")},
		}
		result, err := f.svc.DispatchBulk(ctx, "ev-1", "user-1", "", recipients)

		require.NoError(t, err)
		assert.Equal(t, 0, result.Succeeded)
		require.Len(t, result.Failures, 1)
		assert.Contains(t, result.Failures[0].Error, "recipient email is required")
	})

	t.Run("default channel applies to recipients without one", func(t *testing.T) {
		f := newInvitationFixture()
		f.addEvent("ev-1", "user-1")

		recipients := []domain.Recipient{
			{Name: "Cas", Phone: strPtr("+5491122334455")},
		}
		result, err := f.svc.DispatchBulk(ctx, "ev-1", "user-1", domain.ChannelWhatsApp, recipients)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Succeeded)
		assert.Len(t, f.messenger.sent, 1)
	})

	t.Run("delivery failure retains pending invitation", func(t *testing.T) {
		f := newInvitationFixture()
		f.addEvent("ev-1", "user-1")
		f.mailer.err = errors.New("smtp down")

		recipients := []domain.Recipient{
			{Name: "Ana", Email: strPtr("ana@example.com")},
		}
		result, err := f.svc.DispatchBulk(ctx, "ev-1", "user-1", "", recipients)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Failed)
		require.Len(t, f.invitationRepo.byID, 1)
		for _, inv := range f.invitationRepo.byID {
			assert.Equal(t, domain.StatusPending, inv.Status)
		}
	})

	t.Run("unnamed recipient is reported as unnamed", func(t *testing.T) {
		f := newInvitationFixture()
		f.addEvent("ev-1", "user-1")

		result, err := f.svc.DispatchBulk(ctx, "ev-1", "user-1", "", []domain.Recipient{{}})

		require.NoError(t, err)
		require.Len(t, result.Failures, 1)
		assert.Equal(t, "unnamed", result.Failures[0].Recipient)
	})

	t.Run("event owned by someone else", func(t *testing.T) {
		f := newInvitationFixture()
		f.addEvent("ev-1", "user-1")

		result, err := f.svc.DispatchBulk(ctx, "ev-1", "intruder", "", []domain.Recipient{
			{Name: "Ana", Email: strPtr("ana@example.com")},
		})

		require.ErrorIs(t, err, domain.ErrNotFound)
		assert.Nil(t, result)
		assert.Empty(t, f.invitationRepo.byID)
	})

	t.Run("repo error surfaces wrapped", func(t *testing.T) {
		f := newInvitationFixture()
		f.eventRepo.err = sql.ErrConnDone
		f.eventRepo.byID["ev-1"] = &domain.Event{ID: "ev-1", OwnerID: "user-1"}

		_, err := f.svc.DispatchBulk(ctx, "ev-1", "user-1", "", []domain.Recipient{{Name: "Ana"}})

		require.Error(t, err)
		assert.False(t, errors.Is(err, domain.ErrNotFound))
		assert.Contains(t, fmt.Sprint(err), "get event")
	})
}
