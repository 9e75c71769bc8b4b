// Package pdf assembles the two document generation paths: filling a
// certificate template and rendering the templateless intake summary
// (see the summary subpackage).
package pdf

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/vetport/ahc-service/internal/ahc"
	"github.com/vetport/ahc-service/internal/model"
	"github.com/vetport/ahc-service/internal/pdf/form"
)

// FillCertificate maps intake data onto a template PDF and returns the
// filled document. The steps run in a fixed order: explicit mapping
// entries first, then rule-derived checkboxes (which may override mapped
// values), then strike-through synchronization, then positional overlays
// on the serialized bytes.
func FillCertificate(templatePDF []byte, data map[string]any, schema model.MappingSchema) ([]byte, error) {
	frm, err := form.Load(bytes.NewReader(templatePDF))
	if err != nil {
		return nil, fmt.Errorf("load template: %w", err)
	}

	overlays := frm.ApplyMapping(schema, data)

	checks := ahc.DeriveCheckboxes(data)
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		frm.SetCheckBoxByName(name, checks[name])
	}

	frm.SyncStrikes()

	var buf bytes.Buffer
	if err := frm.Write(&buf); err != nil {
		return nil, fmt.Errorf("serialize certificate: %w", err)
	}

	out, err := form.ApplyOverlays(buf.Bytes(), overlays)
	if err != nil {
		return nil, fmt.Errorf("apply overlays: %w", err)
	}
	return out, nil
}
