package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Design element types.
const (
	ElementHeader = "header"
	ElementText   = "text"
	ElementImage  = "image"
)

// ImageContent is the normalized content of an image element: the raw
// base64 payload plus its media type, without the data-URI prefix.
type ImageContent struct {
	Data      string `json:"data"`
	Type      string `json:"type"`      // e.g. "image/png"
	Extension string `json:"extension"` // e.g. "png"
}

// Element is a single visual element of a design document. Content is a
// string for header/text elements and an ImageContent object for images.
type Element struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
}

// Text returns the element content as a plain string. Returns "" if the
// content is not a JSON string.
func (e Element) Text() string {
	var s string
	if err := json.Unmarshal(e.Content, &s); err != nil {
		return ""
	}
	return s
}

// Image returns the element content as ImageContent. ok is false if the
// content is not an image object.
func (e Element) Image() (ImageContent, bool) {
	var img ImageContent
	if err := json.Unmarshal(e.Content, &img); err != nil {
		return ImageContent{}, false
	}
	return img, img.Data != ""
}

// DesignDocument describes a template's visual layout: an ordered list of
// elements plus font and color maps.
type DesignDocument struct {
	Elements []Element         `json:"elements"`
	Fonts    map[string]string `json:"fonts"`
	Colors   map[string]string `json:"colors"`
}

// FirstImage returns the first image element of the document, if any.
func (d *DesignDocument) FirstImage() (ImageContent, bool) {
	if d == nil {
		return ImageContent{}, false
	}
	for _, el := range d.Elements {
		if el.Type == ElementImage {
			if img, ok := el.Image(); ok {
				return img, true
			}
		}
	}
	return ImageContent{}, false
}

// Template is a reusable invitation design.
// swagger:model Template
type Template struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Design      *DesignDocument `json:"design"`
	IsPublic    bool            `json:"is_public"`
	IsTemporary bool            `json:"is_temporary"`
	CreatedBy   *string         `json:"created_by"`
	ExpiresAt   *time.Time      `json:"expires_at"`
}

// Validate checks the template invariants: a temporary template must carry
// an expiration timestamp, and a public template cannot be temporary.
func (t *Template) Validate() error {
	if t.Name == "" {
		return NewValidationError("template name is required")
	}
	if t.IsTemporary && t.ExpiresAt == nil {
		return NewValidationError("temporary template requires an expiration")
	}
	if t.IsPublic && t.IsTemporary {
		return NewValidationError("public template cannot be temporary")
	}
	return nil
}

// TemplateRepository defines storage operations for templates.
type TemplateRepository interface {
	Create(ctx context.Context, t *Template) error
	GetByID(ctx context.Context, id string) (*Template, error)
	// ListVisible returns public templates plus temporary templates owned
	// by userID. ListAll is the unfiltered admin view.
	ListVisible(ctx context.Context, userID string) ([]*Template, error)
	ListAll(ctx context.Context) ([]*Template, error)
	Update(ctx context.Context, t *Template) error
	Delete(ctx context.Context, id string) error
}

// TemplateService defines template catalog operations.
type TemplateService interface {
	Create(ctx context.Context, caller *User, t *Template) error
	Get(ctx context.Context, callerID, id string) (*Template, error)
	List(ctx context.Context, caller *User) ([]*Template, error)
	Update(ctx context.Context, caller *User, t *Template) error
	Delete(ctx context.Context, caller *User, id string) error
}
