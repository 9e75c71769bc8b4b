package form

import (
	"regexp"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Template authors pair cross-out checkboxes with pre-rendered
// strike-through text fields by numeric index: checking "Check 9" makes
// "Strike 9" visible. The strike glyphs are baked into the template; only
// the widget hidden flag is switched.
var (
	checkPattern  = regexp.MustCompile(`(?i)^Check\s*(\d+)$`)
	strikePattern = regexp.MustCompile(`(?i)^Strike\s*(\d+)$`)
)

// annotation flag bit 2 (value 2) is Hidden; bit 3 (value 4) is Print.
const (
	flagHidden = 2
	flagPrint  = 4
)

type strikePair struct {
	check  *Field
	strike *Field
}

// pairStrikes groups Check/Strike fields by index. Only checkboxes count
// as checks and only text fields count as strikes; anything else with a
// matching name is ignored, as are incomplete pairs (handled by caller).
func pairStrikes(fields []*Field) map[int]*strikePair {
	pairs := make(map[int]*strikePair)
	get := func(n int) *strikePair {
		if p, ok := pairs[n]; ok {
			return p
		}
		p := &strikePair{}
		pairs[n] = p
		return p
	}

	for _, field := range fields {
		if m := checkPattern.FindStringSubmatch(field.Name); m != nil && field.Kind == KindCheckBox {
			n, _ := strconv.Atoi(m[1])
			get(n).check = field
		}
		if m := strikePattern.FindStringSubmatch(field.Name); m != nil && field.Kind == KindText {
			n, _ := strconv.Atoi(m[1])
			get(n).strike = field
		}
	}
	return pairs
}

// toggleHidden returns the annotation flags with the hidden bit cleared
// (visible) or set. Missing flags default to print-only.
func toggleHidden(flags int, visible bool) int {
	if visible {
		return flags &^ flagHidden
	}
	return flags | flagHidden
}

// SyncStrikes reconciles strike-through visibility with the final
// checkbox states. Must run after all explicit and derived checkbox
// writes. Incomplete pairs are skipped. The operation is idempotent.
func (f *Form) SyncStrikes() {
	for _, pair := range pairStrikes(f.Fields()) {
		if pair.check == nil || pair.strike == nil {
			continue
		}
		visible := f.isChecked(pair.check)
		for _, widget := range f.widgets(pair.strike) {
			flags := flagPrint
			if flagsObj, found := widget.Find("F"); found {
				if v, err := f.ctx.DereferenceInteger(flagsObj); err == nil && v != nil {
					flags = int(*v)
				}
			}
			widget.Update("F", types.Integer(toggleHidden(flags, visible)))
		}
	}
}
