package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventinvitations/internal/delivery/http/helpers"
	"eventinvitations/internal/domain"
)

// fakeConfirmationService implements domain.ConfirmationService for handler tests.
type fakeConfirmationService struct {
	inv        *domain.Invitation
	event      *domain.Event
	publicErr  error
	conf       *domain.Confirmation
	confirmErr error
	lastReq    domain.ConfirmRequest
	declineErr error
}

func (f *fakeConfirmationService) PublicInvitation(ctx context.Context, token string) (*domain.Invitation, *domain.Event, error) {
	if f.publicErr != nil {
		return nil, nil, f.publicErr
	}
	return f.inv, f.event, nil
}

func (f *fakeConfirmationService) Confirm(ctx context.Context, token string, req domain.ConfirmRequest) (*domain.Confirmation, error) {
	f.lastReq = req
	if f.confirmErr != nil {
		return nil, f.confirmErr
	}
	return f.conf, nil
}

func (f *fakeConfirmationService) Decline(ctx context.Context, token string) error {
	return f.declineErr
}

func (f *fakeConfirmationService) ListByEvent(ctx context.Context, eventID, callerID string) ([]*domain.Confirmation, error) {
	return nil, nil
}

func (f *fakeConfirmationService) ExportCSV(ctx context.Context, eventID, callerID string) ([]byte, error) {
	return nil, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func decodeEnvelope(t *testing.T, body *bytes.Buffer) helpers.APIResponse {
	t.Helper()
	var resp helpers.APIResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp
}

func TestPublicController_Get(t *testing.T) {
	tests := []struct {
		name         string
		svc          *fakeConfirmationService
		wantStatus   int
		wantBodyCode string
	}{
		{
			name: "success",
			svc: &fakeConfirmationService{
				inv: &domain.Invitation{
					Status:        domain.StatusSent,
					RecipientName: "Ana",
					MaxCompanions: 2,
				},
				event: &domain.Event{
					Title:    "Garden Party",
					Date:     time.Date(2026, 6, 15, 18, 0, 0, 0, time.UTC),
					Location: "Riverside Hall",
				},
			},
			wantStatus: http.StatusOK,
		},
		{
			name:         "unknown token",
			svc:          &fakeConfirmationService{publicErr: domain.ErrNotFound},
			wantStatus:   http.StatusNotFound,
			wantBodyCode: helpers.ErrCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewPublicController(testLogger(), tt.svc)
			req := httptest.NewRequest(http.MethodGet, "/public/invitations/tok-1", nil)
			req.SetPathValue("token", "tok-1")
			rec := httptest.NewRecorder()

			c.Get(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeEnvelope(t, rec.Body)
			if tt.wantBodyCode != "" {
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.wantBodyCode, resp.Error.Code)
				return
			}
			require.Nil(t, resp.Error)
			data, ok := resp.Data.(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "Garden Party", data["event_title"])
			assert.Equal(t, "Ana", data["recipient_name"])
			_, hasEmail := data["recipient_email"]
			assert.False(t, hasEmail, "contact details stay organizer-only")
		})
	}
}

func TestPublicController_Confirm(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		svc          *fakeConfirmationService
		wantStatus   int
		wantBodyCode string
	}{
		{
			name: "success",
			body: `{"guest_name":"Ana","companions":2,"menu_choice":"vegetarian"}`,
			svc: &fakeConfirmationService{
				conf: &domain.Confirmation{ID: "conf-1", GuestName: "Ana", Companions: 2},
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:         "negative companions rejected before the service",
			body:         `{"companions":-1}`,
			svc:          &fakeConfirmationService{},
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeValidation,
		},
		{
			name:         "malformed body",
			body:         `{`,
			svc:          &fakeConfirmationService{},
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "over allowance",
			body:         `{"companions":5}`,
			svc:          &fakeConfirmationService{confirmErr: domain.NewValidationError("maximum companions allowed: 2")},
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeValidation,
		},
		{
			name:         "already confirmed",
			body:         `{}`,
			svc:          &fakeConfirmationService{confirmErr: domain.ErrDuplicateConfirmation},
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeValidation,
		},
		{
			name:         "unknown token",
			body:         `{}`,
			svc:          &fakeConfirmationService{confirmErr: domain.ErrNotFound},
			wantStatus:   http.StatusNotFound,
			wantBodyCode: helpers.ErrCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewPublicController(testLogger(), tt.svc)
			req := httptest.NewRequest(http.MethodPost, "/public/invitations/tok-1/confirm", bytes.NewBufferString(tt.body))
			req.SetPathValue("token", "tok-1")
			rec := httptest.NewRecorder()

			c.Confirm(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeEnvelope(t, rec.Body)
			if tt.wantBodyCode != "" {
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.wantBodyCode, resp.Error.Code)
				return
			}
			require.Nil(t, resp.Error)
			assert.Equal(t, "Ana", tt.svc.lastReq.GuestName)
			assert.Equal(t, 2, tt.svc.lastReq.Companions)
		})
	}
}

func TestPublicController_Decline(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		c := NewPublicController(testLogger(), &fakeConfirmationService{})
		req := httptest.NewRequest(http.MethodPost, "/public/invitations/tok-1/decline", nil)
		req.SetPathValue("token", "tok-1")
		rec := httptest.NewRecorder()

		c.Decline(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("already confirmed", func(t *testing.T) {
		c := NewPublicController(testLogger(), &fakeConfirmationService{
			declineErr: domain.NewValidationError("invitation already confirmed"),
		})
		req := httptest.NewRequest(http.MethodPost, "/public/invitations/tok-1/decline", nil)
		req.SetPathValue("token", "tok-1")
		rec := httptest.NewRecorder()

		c.Decline(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeEnvelope(t, rec.Body)
		require.NotNil(t, resp.Error)
		assert.Equal(t, helpers.ErrCodeValidation, resp.Error.Code)
	})
}
