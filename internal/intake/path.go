// Package intake works with the free-form nested JSON payload collected by
// the owner-facing wizard. The payload is the single source of truth for a
// submission; everything else is derived from it.
package intake

import (
	"strconv"
	"strings"
)

// Resolve walks a dotted path into a nested data object and returns the
// leaf value. Absent is a first-class result: a missing key or a
// non-object intermediate yields ok=false, never an error.
func Resolve(data map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	var cur any = data
	for _, key := range strings.Split(path, ".") {
		m, isMap := cur.(map[string]any)
		if !isMap {
			return nil, false
		}
		v, found := m[key]
		if !found {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// ResolveString resolves path and renders the value as a string, or ""
// when the path is absent or the value is nil.
func ResolveString(data map[string]any, path string) string {
	v, ok := Resolve(data, path)
	if !ok || v == nil {
		return ""
	}
	return Stringify(v)
}

// Stringify renders a decoded JSON value the way it should appear on a
// certificate: numbers without a float suffix, booleans as true/false.
func Stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case nil:
		return ""
	default:
		return ""
	}
}
