// Package render implements the design-document renderer: it turns a
// template's element list plus event facts into a PDF or PNG artifact.
// Broken embedded images degrade to a visible in-place error marker so a
// single bad asset never sinks the whole document.
package render

import (
	"encoding/base64"
	"fmt"
	"strings"

	"eventinvitations/internal/domain"
)

type renderer struct{}

// NewRenderer returns the default PDF/PNG renderer.
func NewRenderer() domain.Renderer {
	return &renderer{}
}

func (r *renderer) Render(design *domain.DesignDocument, facts domain.EventFacts, format domain.RenderFormat) ([]byte, error) {
	if design == nil {
		design = &domain.DesignDocument{}
	}
	switch format {
	case domain.FormatPDF:
		return renderPDF(design, facts)
	case domain.FormatPNG:
		return renderPNG(design, facts)
	default:
		return nil, fmt.Errorf("unsupported render format %q", format)
	}
}

// decodeImage decodes the base64 payload of an image element. A stray
// data-URI prefix is tolerated.
func decodeImage(img domain.ImageContent) ([]byte, error) {
	data := strings.TrimSpace(img.Data)
	if data == "" {
		return nil, fmt.Errorf("empty image data")
	}
	if idx := strings.Index(data, "base64,"); idx >= 0 {
		data = data[idx+len("base64,"):]
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decode image base64: %w", err)
	}
	return raw, nil
}

// eventDetails returns the label/value rows appended after the design
// elements. Empty values are skipped; a zero date renders no date rows.
func eventDetails(facts domain.EventFacts) [][2]string {
	var rows [][2]string
	add := func(label, value string) {
		if value != "" {
			rows = append(rows, [2]string{label, value})
		}
	}
	add("Event", facts.Title)
	if !facts.Date.IsZero() {
		add("Date", facts.Date.Format("2 January 2006"))
		add("Time", facts.Date.Format("3:04 PM"))
	}
	add("Location", facts.Location)
	add("Description", facts.Description)
	return rows
}
