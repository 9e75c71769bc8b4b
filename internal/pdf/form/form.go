// Package form fills AcroForm fields of externally supplied certificate
// templates. Templates are heterogeneous third-party PDFs, so lookups are
// lenient: a missing field is routed to a positional fallback or dropped,
// never treated as an error.
package form

import (
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// FieldKind classifies a form field for write dispatch.
type FieldKind int

const (
	KindUnknown FieldKind = iota
	KindText
	KindCheckBox
	KindOther // radio, pushbutton, choice, signature
)

func (k FieldKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindCheckBox:
		return "checkbox"
	case KindOther:
		return "other"
	default:
		return "unknown"
	}
}

// Field is one named AcroForm field together with its dictionary.
type Field struct {
	Name string
	Kind FieldKind

	dict types.Dict
}

// Form wraps a parsed PDF and its form field index.
type Form struct {
	ctx    *model.Context
	fields map[string]*Field
	order  []string
}

// Load parses a PDF and indexes its AcroForm fields. A document without
// an AcroForm yields an empty form, not an error.
func Load(rs io.ReadSeeker) (*Form, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(rs, conf)
	if err != nil {
		return nil, fmt.Errorf("read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("ensure page count: %w", err)
	}

	f := &Form{
		ctx:    ctx,
		fields: make(map[string]*Field),
	}
	if err := f.indexFields(); err != nil {
		return nil, err
	}
	return f, nil
}

// indexFields walks catalog -> AcroForm -> Fields and records every named
// field. Unnamed or unreadable entries are skipped.
func (f *Form) indexFields() error {
	rootDict, err := f.ctx.Catalog()
	if err != nil {
		return fmt.Errorf("get catalog: %w", err)
	}

	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		return nil
	}
	acroFormDict, err := f.ctx.DereferenceDict(acroFormObj)
	if err != nil {
		return fmt.Errorf("dereference AcroForm: %w", err)
	}
	if acroFormDict == nil {
		return nil
	}

	fieldsObj, found := acroFormDict.Find("Fields")
	if !found {
		return nil
	}
	fieldsArray, err := f.ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return fmt.Errorf("dereference Fields array: %w", err)
	}

	for _, fieldRef := range fieldsArray {
		fieldDict, err := f.ctx.DereferenceDict(fieldRef)
		if err != nil || fieldDict == nil {
			continue
		}
		name := ""
		if nameObj, ok := fieldDict.Find("T"); ok {
			if n, err := f.ctx.DereferenceStringOrHexLiteral(nameObj, model.V10, nil); err == nil {
				name = n
			}
		}
		if name == "" {
			continue
		}
		field := &Field{
			Name: name,
			Kind: f.fieldKind(fieldDict),
			dict: fieldDict,
		}
		if _, dup := f.fields[name]; !dup {
			f.order = append(f.order, name)
		}
		f.fields[name] = field
	}
	return nil
}

// fieldKind determines the field type from the FT entry, following
// inherited types through Parent.
func (f *Form) fieldKind(fieldDict types.Dict) FieldKind {
	ftObj, found := fieldDict.Find("FT")
	if !found {
		if parentObj, ok := fieldDict.Find("Parent"); ok {
			if parentDict, err := f.ctx.DereferenceDict(parentObj); err == nil && parentDict != nil {
				return f.fieldKind(parentDict)
			}
		}
		return KindUnknown
	}

	ftName, err := f.ctx.DereferenceName(ftObj, model.V10, nil)
	if err != nil {
		return KindUnknown
	}

	switch ftName {
	case "Btn":
		if flagsObj, ok := fieldDict.Find("Ff"); ok {
			if flags, err := f.ctx.DereferenceInteger(flagsObj); err == nil && flags != nil {
				v := *flags
				if (v&(1<<15)) != 0 || (v&(1<<16)) != 0 { // radio / pushbutton
					return KindOther
				}
			}
		}
		return KindCheckBox
	case "Tx":
		return KindText
	default:
		return KindOther
	}
}

// Field looks up a form field by its fully qualified name.
func (f *Form) Field(name string) (*Field, bool) {
	field, ok := f.fields[name]
	return field, ok
}

// Fields returns all indexed fields in document order.
func (f *Form) Fields() []*Field {
	out := make([]*Field, 0, len(f.order))
	for _, name := range f.order {
		out = append(out, f.fields[name])
	}
	return out
}

// PageCount returns the number of pages in the document.
func (f *Form) PageCount() int {
	return f.ctx.PageCount
}

// TextValue returns the current value of the named text field. The second
// result is false when the field is missing or carries no value.
func (f *Form) TextValue(name string) (string, bool) {
	field, ok := f.fields[name]
	if !ok {
		return "", false
	}
	valObj, found := field.dict.Find("V")
	if !found {
		return "", false
	}
	s, err := f.ctx.DereferenceStringOrHexLiteral(valObj, model.V10, nil)
	if err != nil {
		return "", false
	}
	return s, true
}

// CheckBoxState returns the named checkbox's value state, "Off" when the
// box is missing, not a checkbox, or unset.
func (f *Form) CheckBoxState(name string) string {
	field, ok := f.fields[name]
	if !ok || field.Kind != KindCheckBox {
		return "Off"
	}
	valObj, found := field.dict.Find("V")
	if !found {
		return "Off"
	}
	state, err := f.ctx.DereferenceName(valObj, model.V10, nil)
	if err != nil || state == "" {
		return "Off"
	}
	return string(state)
}

// WidgetFlags returns the annotation flag word of each widget of the
// named field, nil when the field is missing. Absent F entries read as 0.
func (f *Form) WidgetFlags(name string) []int {
	field, ok := f.fields[name]
	if !ok {
		return nil
	}
	var flags []int
	for _, widget := range f.widgets(field) {
		v := 0
		if flagsObj, found := widget.Find("F"); found {
			if n, err := f.ctx.DereferenceInteger(flagsObj); err == nil && n != nil {
				v = int(*n)
			}
		}
		flags = append(flags, v)
	}
	return flags
}

// widgets returns the widget annotation dictionaries of a field: the Kids
// entries when present, otherwise the field dictionary itself (merged
// field/widget).
func (f *Form) widgets(field *Field) []types.Dict {
	kidsObj, found := field.dict.Find("Kids")
	if !found {
		return []types.Dict{field.dict}
	}
	kidsArray, err := f.ctx.DereferenceArray(kidsObj)
	if err != nil || len(kidsArray) == 0 {
		return []types.Dict{field.dict}
	}
	var widgets []types.Dict
	for _, kid := range kidsArray {
		if kidDict, err := f.ctx.DereferenceDict(kid); err == nil && kidDict != nil {
			widgets = append(widgets, kidDict)
		}
	}
	if len(widgets) == 0 {
		return []types.Dict{field.dict}
	}
	return widgets
}

// setText writes a text value into a field's V entry. Appearance streams
// are left to the viewer via NeedAppearances.
func (f *Form) setText(field *Field, value string) {
	field.dict.Update("V", types.StringLiteral(value))
}

// setCheckBox checks or unchecks a checkbox, updating both the field
// value and every widget's appearance state.
func (f *Form) setCheckBox(field *Field, checked bool) {
	state := "Off"
	if checked {
		state = f.onState(field)
	}
	field.dict.Update("V", types.Name(state))
	for _, widget := range f.widgets(field) {
		widget.Update("AS", types.Name(state))
	}
}

// onState returns the checkbox's "on" appearance state name, read from
// the normal appearance dictionary. Defaults to Yes when the template
// doesn't declare one.
func (f *Form) onState(field *Field) string {
	for _, widget := range f.widgets(field) {
		apObj, found := widget.Find("AP")
		if !found {
			continue
		}
		apDict, err := f.ctx.DereferenceDict(apObj)
		if err != nil || apDict == nil {
			continue
		}
		nObj, found := apDict.Find("N")
		if !found {
			continue
		}
		nDict, err := f.ctx.DereferenceDict(nObj)
		if err != nil || nDict == nil {
			continue
		}
		for state := range nDict {
			if state != "Off" {
				return state
			}
		}
	}
	return "Yes"
}

// isChecked reports whether a checkbox field's value is an "on" state.
func (f *Form) isChecked(field *Field) bool {
	valObj, found := field.dict.Find("V")
	if !found {
		return false
	}
	name, err := f.ctx.DereferenceName(valObj, model.V10, nil)
	if err != nil {
		return false
	}
	return name != "" && name != "Off"
}

// Write serializes the filled document. NeedAppearances is set so viewers
// regenerate appearance streams for the values written here.
func (f *Form) Write(w io.Writer) error {
	if err := f.setNeedAppearances(); err != nil {
		return err
	}
	if err := api.WriteContext(f.ctx, w); err != nil {
		return fmt.Errorf("write PDF context: %w", err)
	}
	return nil
}

func (f *Form) setNeedAppearances() error {
	rootDict, err := f.ctx.Catalog()
	if err != nil {
		return fmt.Errorf("get catalog: %w", err)
	}
	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		return nil
	}
	acroFormDict, err := f.ctx.DereferenceDict(acroFormObj)
	if err != nil || acroFormDict == nil {
		return nil
	}
	acroFormDict.Update("NeedAppearances", types.Boolean(true))
	return nil
}
