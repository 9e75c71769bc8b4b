package model

import "sort"

// MappingSchema maps dotted intake paths to PDF target descriptors.
// Each entry names either a form field or a draw position; when both are
// present the field name is tried first and the coordinates serve as the
// fallback for templates that don't expose the field as a widget.
type MappingSchema map[string]FieldMapping

// FieldMapping is one entry of a template's mapping schema.
type FieldMapping struct {
	FieldName string   `json:"fieldName,omitempty"`
	Page      *int     `json:"page,omitempty"` // 0-based
	X         *float64 `json:"x,omitempty"`
	Y         *float64 `json:"y,omitempty"`
	FontSize  float64  `json:"fontSize,omitempty"`
	MaxWidth  float64  `json:"maxWidth,omitempty"`
}

// TargetField returns the form field name to try for this entry. Entries
// without an explicit fieldName target a field named after the intake path.
func (m FieldMapping) TargetField(path string) string {
	if m.FieldName != "" {
		return m.FieldName
	}
	return path
}

// HasCoordinates reports whether the entry carries a usable draw position.
func (m FieldMapping) HasCoordinates() bool {
	return m.Page != nil && m.X != nil && m.Y != nil
}

// SortedPaths returns the schema's intake paths in lexical order so that
// repeated fills of the same template apply entries in a stable order.
func (s MappingSchema) SortedPaths() []string {
	paths := make([]string, 0, len(s))
	for p := range s {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
