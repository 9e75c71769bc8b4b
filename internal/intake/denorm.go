package intake

import "strings"

// Denorm holds the denormalized columns kept in sync with the intake
// payload on every write. They exist only for fast dashboard listing and
// filtering; the payload remains authoritative.
type Denorm struct {
	OwnerName        *string
	OwnerEmail       *string
	EntryDate        *string
	FirstCountry     *string
	FinalDestination *string
}

// Denormalize extracts the dashboard columns from an intake payload.
// A field comes back nil when the payload doesn't carry it, so existing
// column values are cleared rather than left stale.
func Denormalize(data map[string]any) Denorm {
	var d Denorm

	if first := ResolveString(data, "owner.firstName"); first != "" {
		name := strings.TrimSpace(first + " " + ResolveString(data, "owner.lastName"))
		d.OwnerName = &name
	}
	if email := ResolveString(data, "owner.email"); email != "" {
		d.OwnerEmail = &email
	}
	if entry := ResolveString(data, "travel.dateOfEntry"); entry != "" {
		d.EntryDate = &entry
	}
	if first := ResolveString(data, "travel.firstCountry"); first != "" {
		d.FirstCountry = &first
	}
	if final := ResolveString(data, "travel.finalCountry"); final != "" {
		d.FinalDestination = &final
	}
	return d
}
