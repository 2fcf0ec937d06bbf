package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventinvitations/internal/domain"
)

// temporaryTemplateTTL is how long a non-admin's template lives before it
// is eligible for cleanup.
const temporaryTemplateTTL = 48 * time.Hour

type templateService struct {
	templateRepo   domain.TemplateRepository
	contextTimeout time.Duration
}

// NewTemplateService returns the template catalog operations.
func NewTemplateService(templateRepo domain.TemplateRepository, timeout time.Duration) domain.TemplateService {
	return &templateService{
		templateRepo:   templateRepo,
		contextTimeout: timeout,
	}
}

// Create stores a template. Admins may publish to the shared catalog;
// everyone else gets a private temporary template expiring 48h out.
// Data-URI image payloads are normalized before storage.
func (s *templateService) Create(ctx context.Context, caller *domain.User, t *domain.Template) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if caller == nil {
		return domain.ErrForbidden
	}
	t.CreatedBy = &caller.ID
	if !caller.IsAdmin() {
		expires := time.Now().Add(temporaryTemplateTTL)
		t.IsTemporary = true
		t.IsPublic = false
		t.ExpiresAt = &expires
	}
	NormalizeDesign(t.Design)
	if err := t.Validate(); err != nil {
		return err
	}
	if err := s.templateRepo.Create(ctx, t); err != nil {
		return fmt.Errorf("create template: %w", err)
	}
	return nil
}

func (s *templateService) Get(ctx context.Context, callerID, id string) (*domain.Template, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	t, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get template: %w", err)
	}
	if !t.IsPublic && (t.CreatedBy == nil || *t.CreatedBy != callerID) {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

func (s *templateService) List(ctx context.Context, caller *domain.User) ([]*domain.Template, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var (
		templates []*domain.Template
		err       error
	)
	if caller != nil && caller.IsAdmin() {
		templates, err = s.templateRepo.ListAll(ctx)
	} else {
		callerID := ""
		if caller != nil {
			callerID = caller.ID
		}
		templates, err = s.templateRepo.ListVisible(ctx, callerID)
	}
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	if templates == nil {
		templates = []*domain.Template{}
	}
	return templates, nil
}

func (s *templateService) Update(ctx context.Context, caller *domain.User, t *domain.Template) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	existing, err := s.templateRepo.GetByID(ctx, t.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get template: %w", err)
	}
	if err := s.requireOwnership(caller, existing); err != nil {
		return err
	}
	// Visibility and lifetime flags are not client-mutable.
	t.IsPublic = existing.IsPublic
	t.IsTemporary = existing.IsTemporary
	t.ExpiresAt = existing.ExpiresAt
	t.CreatedBy = existing.CreatedBy
	NormalizeDesign(t.Design)
	if err := t.Validate(); err != nil {
		return err
	}
	if err := s.templateRepo.Update(ctx, t); err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	return nil
}

func (s *templateService) Delete(ctx context.Context, caller *domain.User, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	existing, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get template: %w", err)
	}
	if err := s.requireOwnership(caller, existing); err != nil {
		return err
	}
	if err := s.templateRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}

func (s *templateService) requireOwnership(caller *domain.User, t *domain.Template) error {
	if caller == nil {
		return domain.ErrForbidden
	}
	if caller.IsAdmin() {
		return nil
	}
	if t.CreatedBy == nil || *t.CreatedBy != caller.ID {
		return domain.ErrForbidden
	}
	return nil
}

// NormalizeDesign rewrites image elements whose content is a raw data-URI
// string into the {data, type, extension} object form, so the stored
// document carries only the base64 payload plus metadata.
func NormalizeDesign(design *domain.DesignDocument) {
	if design == nil {
		return
	}
	for i, el := range design.Elements {
		if el.Type != domain.ElementImage {
			continue
		}
		var uri string
		if err := json.Unmarshal(el.Content, &uri); err != nil {
			continue // already object form
		}
		if !strings.HasPrefix(uri, "data:image") {
			continue
		}
		head, payload, ok := strings.Cut(uri, ";base64,")
		if !ok {
			continue
		}
		mediaType := strings.TrimPrefix(head, "data:")
		img := domain.ImageContent{
			Data:      payload,
			Type:      mediaType,
			Extension: strings.TrimPrefix(mediaType, "image/"),
		}
		raw, err := json.Marshal(img)
		if err != nil {
			continue
		}
		design.Elements[i].Content = raw
	}
}
