package domain

import "time"

// RenderFormat selects the renderer output artifact.
type RenderFormat string

const (
	FormatPDF RenderFormat = "pdf"
	FormatPNG RenderFormat = "png"
)

// EventFacts is the event data interpolated into a rendered artifact.
type EventFacts struct {
	Title       string
	Date        time.Time
	Location    string
	Description string
}

// Renderer converts a design document plus event facts into a PDF or PNG
// byte artifact. Implementations must degrade gracefully on broken
// embedded images (emit a visible in-place error marker) rather than
// abort the document.
type Renderer interface {
	Render(design *DesignDocument, facts EventFacts, format RenderFormat) ([]byte, error)
}
