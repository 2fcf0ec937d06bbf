package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventinvitations/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

const eventColumns = `id, title, category, event_date, location, description, owner_id,
	template_id, background, logo, is_draft, last_saved_at, created_at`

func scanEvent(row interface{ Scan(...any) error }) (*domain.Event, error) {
	e := &domain.Event{}
	var templateID, background, logo sql.NullString
	var lastSaved sql.NullTime
	err := row.Scan(
		&e.ID, &e.Title, &e.Category, &e.Date, &e.Location, &e.Description, &e.OwnerID,
		&templateID, &background, &logo, &e.IsDraft, &lastSaved, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if templateID.Valid {
		e.TemplateID = &templateID.String
	}
	if background.Valid {
		e.Background = &background.String
	}
	if logo.Valid {
		e.Logo = &logo.String
	}
	if lastSaved.Valid {
		e.LastSavedAt = &lastSaved.Time
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, category, event_date, location, description, owner_id, template_id, background, logo, is_draft, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Title, e.Category, e.Date, e.Location, e.Description, e.OwnerID,
		e.TemplateID, e.Background, e.Logo, e.IsDraft, e.CreatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE id = $1`, eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) GetByIDForOwner(ctx context.Context, id, ownerID string) (*domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE id = $1 AND owner_id = $2`, eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM events
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`, eventColumns)
	rows, err := r.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, id string, upd domain.EventUpdate) (*domain.Event, error) {
	setClauses := []string{}
	args := []interface{}{}
	n := 1
	set := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, value)
		n++
	}
	if upd.Title != nil {
		set("title", *upd.Title)
	}
	if upd.Category != nil {
		set("category", *upd.Category)
	}
	if upd.Date != nil {
		set("event_date", *upd.Date)
	}
	if upd.Location != nil {
		set("location", *upd.Location)
	}
	if upd.Description != nil {
		set("description", *upd.Description)
	}
	if upd.TemplateID != nil {
		set("template_id", *upd.TemplateID)
	}
	if upd.Background != nil {
		set("background", *upd.Background)
	}
	if upd.Logo != nil {
		set("logo", *upd.Logo)
	}
	if n == 1 {
		// No fields to update; just fetch current row
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), n, eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) SetDraft(ctx context.Context, id string, draft bool) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE events SET is_draft = $1 WHERE id = $2`, draft, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) SetLastSavedAt(ctx context.Context, id string, at time.Time) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE events SET last_saved_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
