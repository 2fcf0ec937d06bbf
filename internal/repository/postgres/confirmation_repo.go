package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventinvitations/internal/domain"
)

type confirmationRepository struct {
	DB *sql.DB
}

func NewConfirmationRepository(db *sql.DB) domain.ConfirmationRepository {
	return &confirmationRepository{
		DB: db,
	}
}

func (r *confirmationRepository) Create(ctx context.Context, c *domain.Confirmation) error {
	query := `
		INSERT INTO confirmations (invitation_id, guest_name, companions, menu_choice, comments, responded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		c.InvitationID, c.GuestName, c.Companions, c.MenuChoice, c.Comments, c.RespondedAt,
	).Scan(&c.ID)
	if err != nil {
		if isUniqueViolation(err, "confirmations_invitation_id_key") {
			return domain.ErrDuplicateConfirmation
		}
		return err
	}
	return nil
}

func (r *confirmationRepository) GetByInvitationID(ctx context.Context, invitationID string) (*domain.Confirmation, error) {
	query := `
		SELECT id, invitation_id, guest_name, companions, menu_choice, comments, responded_at
		FROM confirmations
		WHERE invitation_id = $1
	`
	c := &domain.Confirmation{}
	err := r.DB.QueryRowContext(ctx, query, invitationID).Scan(
		&c.ID, &c.InvitationID, &c.GuestName, &c.Companions, &c.MenuChoice, &c.Comments, &c.RespondedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *confirmationRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Confirmation, error) {
	query := `
		SELECT c.id, c.invitation_id, c.guest_name, c.companions, c.menu_choice, c.comments, c.responded_at
		FROM confirmations c
		JOIN invitations i ON i.id = c.invitation_id
		WHERE i.event_id = $1
		ORDER BY c.responded_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	confs := make([]*domain.Confirmation, 0)
	for rows.Next() {
		c := &domain.Confirmation{}
		if err := rows.Scan(&c.ID, &c.InvitationID, &c.GuestName, &c.Companions, &c.MenuChoice, &c.Comments, &c.RespondedAt); err != nil {
			return nil, err
		}
		confs = append(confs, c)
	}
	return confs, rows.Err()
}
