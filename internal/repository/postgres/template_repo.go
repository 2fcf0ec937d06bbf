package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"eventinvitations/internal/domain"
)

type templateRepository struct {
	DB *sql.DB
}

func NewTemplateRepository(db *sql.DB) domain.TemplateRepository {
	return &templateRepository{
		DB: db,
	}
}

const templateColumns = `id, name, design, is_public, is_temporary, created_by, expires_at`

func scanTemplate(row interface{ Scan(...any) error }) (*domain.Template, error) {
	t := &domain.Template{}
	var design []byte
	var createdBy sql.NullString
	var expiresAt sql.NullTime
	err := row.Scan(&t.ID, &t.Name, &design, &t.IsPublic, &t.IsTemporary, &createdBy, &expiresAt)
	if err != nil {
		return nil, err
	}
	if len(design) > 0 {
		t.Design = &domain.DesignDocument{}
		if err := json.Unmarshal(design, t.Design); err != nil {
			return nil, fmt.Errorf("unmarshal design document: %w", err)
		}
	}
	if createdBy.Valid {
		t.CreatedBy = &createdBy.String
	}
	if expiresAt.Valid {
		t.ExpiresAt = &expiresAt.Time
	}
	return t, nil
}

func marshalDesign(t *domain.Template) ([]byte, error) {
	if t.Design == nil {
		return []byte("{}"), nil
	}
	design, err := json.Marshal(t.Design)
	if err != nil {
		return nil, fmt.Errorf("marshal design document: %w", err)
	}
	return design, nil
}

func (r *templateRepository) Create(ctx context.Context, t *domain.Template) error {
	design, err := marshalDesign(t)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO templates (name, design, is_public, is_temporary, created_by, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		t.Name, design, t.IsPublic, t.IsTemporary, t.CreatedBy, t.ExpiresAt,
	).Scan(&t.ID)
}

func (r *templateRepository) GetByID(ctx context.Context, id string) (*domain.Template, error) {
	query := fmt.Sprintf(`SELECT %s FROM templates WHERE id = $1`, templateColumns)
	t, err := scanTemplate(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *templateRepository) ListVisible(ctx context.Context, userID string) ([]*domain.Template, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM templates
		WHERE is_public = TRUE OR (is_temporary = TRUE AND created_by = $1)
		ORDER BY name
	`, templateColumns)
	return r.list(ctx, query, userID)
}

func (r *templateRepository) ListAll(ctx context.Context) ([]*domain.Template, error) {
	query := fmt.Sprintf(`SELECT %s FROM templates ORDER BY name`, templateColumns)
	return r.list(ctx, query)
}

func (r *templateRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Template, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := make([]*domain.Template, 0)
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (r *templateRepository) Update(ctx context.Context, t *domain.Template) error {
	design, err := marshalDesign(t)
	if err != nil {
		return err
	}
	result, err := r.DB.ExecContext(ctx,
		`UPDATE templates SET name = $1, design = $2 WHERE id = $3`,
		t.Name, design, t.ID,
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

func (r *templateRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
