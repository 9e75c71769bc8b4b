// Package ahc holds the Animal Health Certificate business rules that
// derive checkbox states from intake answers, independent of the
// template's explicit field mapping.
package ahc

import (
	"strings"

	"github.com/vetport/ahc-service/internal/intake"
)

// Rule derives a partial checkbox map from intake data. Rules are pure;
// a rule that doesn't apply returns an empty map.
type Rule func(data map[string]any) map[string]bool

// rules are folded left to right, so a later rule wins when two rules
// name the same checkbox.
var rules = []Rule{
	tapewormCrossOut,
}

// tapewormEntryCountries require tapeworm treatment on entry with a dog.
// For every other destination the tapeworm section of the certificate is
// struck out.
var tapewormEntryCountries = []string{
	"Finland",
	"Ireland",
	"Northern Ireland",
	"Malta",
	"Norway",
}

// Checkbox N crosses out clause N of the certificate; 9 and 10 cover the
// tapeworm treatment section.
func tapewormCrossOut(data map[string]any) map[string]bool {
	isDog := strings.EqualFold(intake.ResolveString(data, "pet.species"), "dog")
	firstCountry := intake.ResolveString(data, "travel.firstCountry")

	required := isDog && containsCountry(tapewormEntryCountries, firstCountry)
	if required {
		return nil
	}
	return map[string]bool{
		"Check 9":  true,
		"Check 10": true,
	}
}

func containsCountry(countries []string, c string) bool {
	for _, country := range countries {
		if country == c {
			return true
		}
	}
	return false
}

// DeriveCheckboxes runs every rule over the intake data and merges the
// results. The result is applied after the template's explicit mapping,
// so derived states override mapped ones for the same checkbox.
func DeriveCheckboxes(data map[string]any) map[string]bool {
	checks := make(map[string]bool)
	for _, rule := range rules {
		for name, checked := range rule(data) {
			checks[name] = checked
		}
	}
	return checks
}
