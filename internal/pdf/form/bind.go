package form

import (
	"strings"

	"github.com/vetport/ahc-service/internal/intake"
	"github.com/vetport/ahc-service/internal/model"
)

const (
	defaultOverlayFontSize = 10
	defaultOverlayMaxWidth = 200
)

// WriteKind tags the outcome of binding one mapping entry: a typed field
// write, the positional overlay fallback, or a silent drop.
type WriteKind int

const (
	WriteNone WriteKind = iota
	WriteText
	WriteCheckbox
	WriteGeneric
	WriteOverlay
)

// Write is the planned effect of one mapping entry on the document.
type Write struct {
	Kind    WriteKind
	Field   *Field
	Text    string
	Checked bool
	Overlay Overlay
}

// Truthy interprets an intake value as a checkbox state: true and the
// strings "yes"/"true" (any case) check the box, everything else clears it.
func Truthy(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	s := strings.ToLower(intake.Stringify(v))
	return s == "yes" || s == "true"
}

// PlanWrite decides how a resolved intake value lands on the document.
// field is nil when the template exposes no field with the mapped name;
// the entry then falls back to a text overlay if it carries coordinates
// within the document's page range, and is dropped otherwise.
func PlanWrite(field *Field, m model.FieldMapping, value any, pageCount int) Write {
	if value == nil {
		return Write{Kind: WriteNone}
	}

	if field != nil {
		switch field.Kind {
		case KindCheckBox:
			return Write{Kind: WriteCheckbox, Field: field, Checked: Truthy(value)}
		case KindText:
			return Write{Kind: WriteText, Field: field, Text: intake.Stringify(value)}
		default:
			return Write{Kind: WriteGeneric, Field: field, Text: intake.Stringify(value)}
		}
	}

	if m.HasCoordinates() && *m.Page >= 0 && *m.Page < pageCount {
		o := Overlay{
			Page:     *m.Page,
			X:        *m.X,
			Y:        *m.Y,
			FontSize: m.FontSize,
			MaxWidth: m.MaxWidth,
			Text:     intake.Stringify(value),
		}
		if o.FontSize == 0 {
			o.FontSize = defaultOverlayFontSize
		}
		if o.MaxWidth == 0 {
			o.MaxWidth = defaultOverlayMaxWidth
		}
		return Write{Kind: WriteOverlay, Overlay: o}
	}

	return Write{Kind: WriteNone}
}

// ApplyMapping resolves every mapping entry against the intake data and
// applies the resulting writes to the form. Entries are applied in stable
// path order so repeated generations fill identically. Returned overlays
// must be drawn after serialization (see ApplyOverlays).
func (f *Form) ApplyMapping(schema model.MappingSchema, data map[string]any) []Overlay {
	var overlays []Overlay
	for _, path := range schema.SortedPaths() {
		m := schema[path]
		value, ok := intake.Resolve(data, path)
		if !ok || value == nil {
			continue
		}

		field, _ := f.Field(m.TargetField(path))
		switch w := PlanWrite(field, m, value, f.PageCount()); w.Kind {
		case WriteText, WriteGeneric:
			f.setText(w.Field, w.Text)
		case WriteCheckbox:
			f.setCheckBox(w.Field, w.Checked)
		case WriteOverlay:
			overlays = append(overlays, w.Overlay)
		}
	}
	return overlays
}

// SetCheckBoxByName checks or unchecks a named checkbox, ignoring names
// the template doesn't have. Used for rule-derived checkbox states.
func (f *Form) SetCheckBoxByName(name string, checked bool) {
	field, ok := f.Field(name)
	if !ok || field.Kind != KindCheckBox {
		return
	}
	f.setCheckBox(field, checked)
}
