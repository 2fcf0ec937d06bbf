package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eventinvitations/internal/domain"
)

type invitationRepository struct {
	DB *sql.DB
}

func NewInvitationRepository(db *sql.DB) domain.InvitationRepository {
	return &invitationRepository{
		DB: db,
	}
}

const invitationColumns = `id, event_id, status, access_token, channel,
	recipient_name, recipient_email, recipient_phone, max_companions, sent_at`

func scanInvitation(row interface{ Scan(...any) error }) (*domain.Invitation, error) {
	inv := &domain.Invitation{}
	var email, phone sql.NullString
	var sentAt sql.NullTime
	err := row.Scan(
		&inv.ID, &inv.EventID, &inv.Status, &inv.AccessToken, &inv.Channel,
		&inv.RecipientName, &email, &phone, &inv.MaxCompanions, &sentAt,
	)
	if err != nil {
		return nil, err
	}
	if email.Valid {
		inv.RecipientEmail = &email.String
	}
	if phone.Valid {
		inv.RecipientPhone = &phone.String
	}
	if sentAt.Valid {
		inv.SentAt = &sentAt.Time
	}
	return inv, nil
}

func (r *invitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	query := `
		INSERT INTO invitations (event_id, status, access_token, channel, recipient_name, recipient_email, recipient_phone, max_companions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		inv.EventID, inv.Status, inv.AccessToken, inv.Channel,
		inv.RecipientName, inv.RecipientEmail, inv.RecipientPhone, inv.MaxCompanions,
	).Scan(&inv.ID)
	if err != nil {
		if isUniqueViolation(err, "invitations_access_token_key") {
			return fmt.Errorf("access token collision: %w", err)
		}
		return err
	}
	return nil
}

func (r *invitationRepository) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	query := fmt.Sprintf(`SELECT %s FROM invitations WHERE id = $1`, invitationColumns)
	inv, err := scanInvitation(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (r *invitationRepository) GetByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	query := fmt.Sprintf(`SELECT %s FROM invitations WHERE access_token = $1`, invitationColumns)
	inv, err := scanInvitation(r.DB.QueryRowContext(ctx, query, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (r *invitationRepository) ListByEventID(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.Invitation, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM invitations WHERE event_id = $1`, eventID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM invitations
		WHERE event_id = $1
		ORDER BY id
		LIMIT $2 OFFSET $3
	`, invitationColumns)
	rows, err := r.DB.QueryContext(ctx, query, eventID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	invs := make([]*domain.Invitation, 0)
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, 0, err
		}
		invs = append(invs, inv)
	}
	return invs, total, rows.Err()
}

func (r *invitationRepository) SetStatus(ctx context.Context, id, status string) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE invitations SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *invitationRepository) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE invitations SET status = $1, sent_at = $2 WHERE id = $3`,
		domain.StatusSent, sentAt, id,
	)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
