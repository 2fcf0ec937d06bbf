package render

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"

	"eventinvitations/internal/domain"
)

// Core PDF fonts that need no registration. Unknown design fonts fall
// back onto these.
var pdfFontFallbacks = map[string]string{
	"georgia":         "Times",
	"times new roman": "Times",
	"times-roman":     "Times",
	"arial":           "Helvetica",
	"verdana":         "Helvetica",
	"helvetica":       "Helvetica",
	"courier":         "Courier",
}

func safeFont(name, fallback string) string {
	if f, ok := pdfFontFallbacks[strings.ToLower(strings.TrimSpace(name))]; ok {
		return f
	}
	return fallback
}

// hexColor parses "#RRGGBB" into RGB components, returning black on any
// malformed value.
func hexColor(s string) (int, int, int) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}

func renderPDF(design *domain.DesignDocument, facts domain.EventFacts) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	titleFont := safeFont(design.Fonts["title"], "Helvetica")
	bodyFont := safeFont(design.Fonts["body"], "Helvetica")
	pr, pg, pb := hexColor(design.Colors["primary"])
	tr, tg, tb := hexColor(design.Colors["text"])
	if design.Colors["text"] == "" {
		tr, tg, tb = 51, 51, 51
	}

	writeBody := func(text string) {
		pdf.SetFont(bodyFont, "", 12)
		pdf.SetTextColor(tr, tg, tb)
		pdf.MultiCell(0, 6, text, "", "L", false)
		pdf.Ln(2)
	}

	for i, el := range design.Elements {
		switch el.Type {
		case domain.ElementHeader:
			pdf.SetFont(titleFont, "B", 20)
			pdf.SetTextColor(pr, pg, pb)
			pdf.MultiCell(0, 10, el.Text(), "", "C", false)
			pdf.Ln(3)
		case domain.ElementText:
			writeBody(el.Text())
		case domain.ElementImage:
			img, ok := el.Image()
			if !ok {
				continue
			}
			if err := placePDFImage(pdf, img, i); err != nil {
				writeBody(fmt.Sprintf("[image error: %v]", err))
			}
		}
	}

	pdf.Ln(8)
	pdf.SetFont(bodyFont, "", 12)
	pdf.SetTextColor(tr, tg, tb)
	for _, row := range eventDetails(facts) {
		pdf.SetFont(bodyFont, "B", 12)
		pdf.CellFormat(35, 6, row[0]+":", "", 0, "L", false, 0, "")
		pdf.SetFont(bodyFont, "", 12)
		pdf.MultiCell(0, 6, row[1], "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("build pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func placePDFImage(pdf *fpdf.Fpdf, img domain.ImageContent, idx int) error {
	raw, err := decodeImage(img)
	if err != nil {
		return err
	}
	imageType := strings.ToUpper(img.Extension)
	if imageType == "" {
		imageType = "PNG"
	}
	if imageType == "JPEG" {
		imageType = "JPG"
	}
	name := fmt.Sprintf("element-%d", idx)
	opts := fpdf.ImageOptions{ImageType: imageType, ReadDpi: true}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(raw))
	if pdf.Err() {
		err := pdf.Error()
		pdf.ClearError()
		return err
	}
	// 100mm wide, centered on an A4 page, placed in flow.
	const w = 100.0
	x := (210.0 - w) / 2
	pdf.ImageOptions(name, x, pdf.GetY(), w, 0, true, opts, 0, "")
	if pdf.Err() {
		err := pdf.Error()
		pdf.ClearError()
		return err
	}
	pdf.Ln(4)
	return nil
}
