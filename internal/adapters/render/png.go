package render

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font/basicfont"

	"eventinvitations/internal/domain"
)

const (
	pngWidth  = 800
	pngHeight = 1000
	pngMargin = 50
)

func renderPNG(design *domain.DesignDocument, facts domain.EventFacts) ([]byte, error) {
	dc := gg.NewContext(pngWidth, pngHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	// Embedded bitmap face: no font files to ship, same fallback the
	// original renderer used when TrueType loading failed.
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetRGB(0, 0, 0)

	y := 40.0
	for _, el := range design.Elements {
		switch el.Type {
		case domain.ElementHeader:
			dc.DrawStringAnchored(el.Text(), pngWidth/2, y, 0.5, 0.5)
			y += 60
		case domain.ElementText:
			dc.DrawString(el.Text(), pngMargin, y)
			y += 40
		case domain.ElementImage:
			img, ok := el.Image()
			if !ok {
				continue
			}
			newY, err := placePNGImage(dc, img, y)
			if err != nil {
				dc.DrawString(fmt.Sprintf("[image error: %v]", err), pngMargin, y)
				y += 50
				continue
			}
			y = newY
		}
	}

	y += 20
	dc.DrawString("Event details:", pngMargin, y)
	y += 50
	for _, row := range eventDetails(facts) {
		dc.DrawString(row[0]+": "+row[1], pngMargin, y)
		y += 40
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// placePNGImage decodes, scales, and centers an embedded image; the
// canvas allots it at most a third of the page height.
func placePNGImage(dc *gg.Context, img domain.ImageContent, y float64) (float64, error) {
	raw, err := decodeImage(img)
	if err != nil {
		return y, err
	}
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return y, fmt.Errorf("decode image: %w", err)
	}

	maxW := pngWidth - 2*pngMargin
	maxH := pngHeight / 3
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > maxW || h > maxH {
		scale := float64(maxW) / float64(w)
		if s := float64(maxH) / float64(h); s < scale {
			scale = s
		}
		w = int(float64(w) * scale)
		h = int(float64(h) * scale)
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
		src = dst
	}

	x := (pngWidth - w) / 2
	dc.DrawImage(src, x, int(y))
	return y + float64(h) + 30, nil
}
