package form

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Overlay is a positional text draw for a mapping entry whose target
// field doesn't exist in the template's form. Page is 0-based, X/Y are
// PDF points from the lower-left page corner.
type Overlay struct {
	Page     int
	X        float64
	Y        float64
	FontSize float64
	MaxWidth float64
	Text     string
}

// approximate Helvetica advance per glyph, in fractions of the font size
const helveticaAvgGlyphWidth = 0.5

// fitText truncates text to roughly maxWidth points. The stamping layer
// has no wrapping for free-positioned text, so values longer than the
// mapped slot are cut rather than drawn over neighbouring content.
func fitText(text string, fontSize, maxWidth float64) string {
	if maxWidth <= 0 || fontSize <= 0 {
		return text
	}
	limit := int(maxWidth / (fontSize * helveticaAvgGlyphWidth))
	if limit < 1 {
		limit = 1
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

func overlayDesc(o Overlay) string {
	return fmt.Sprintf(
		"fontname:Helvetica, points:%g, scale:1 abs, pos:bl, off:%g %g, rot:0, fillcolor:#000000, opacity:1",
		o.FontSize, o.X, o.Y,
	)
}

// ApplyOverlays stamps the fallback texts onto the serialized document
// and returns the final bytes. With no overlays the input is returned
// unchanged.
func ApplyOverlays(pdf []byte, overlays []Overlay) ([]byte, error) {
	if len(overlays) == 0 {
		return pdf, nil
	}

	stamps := make(map[int][]*model.Watermark)
	for _, o := range overlays {
		wm, err := api.TextWatermark(fitText(o.Text, o.FontSize, o.MaxWidth), overlayDesc(o), true, false, types.POINTS)
		if err != nil {
			return nil, fmt.Errorf("build overlay for page %d: %w", o.Page, err)
		}
		stamps[o.Page+1] = append(stamps[o.Page+1], wm)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	var buf bytes.Buffer
	if err := api.AddWatermarksSliceMap(bytes.NewReader(pdf), &buf, stamps, conf); err != nil {
		return nil, fmt.Errorf("stamp overlays: %w", err)
	}
	return buf.Bytes(), nil
}
