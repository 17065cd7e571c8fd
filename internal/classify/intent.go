// Package classify maps claim descriptions onto the verification strategy
// axes: what the claim asserts (intent) and which imagery metric applies
// (mode). Both classifiers are pure keyword matchers with no failure modes.
package classify

import "strings"

// Intent is whether a claim asserts creation of a new condition or
// maintenance of an existing one.
type Intent string

const (
	IntentEstablishment Intent = "establishment"
	IntentPreservation  Intent = "preservation"
	IntentUnknown       Intent = "unknown"
)

// Keyword lists are static configuration data. Establishment is checked first
// and wins when both sets match.
var (
	establishmentKeywords = []string{
		"planted", "restored", "established", "new", "built", "created",
		"increased", "grew", "generated", "installation", "deployed",
	}
	preservationKeywords = []string{
		"protected", "preserved", "maintained", "conserved", "saved",
		"prevented", "avoided", "kept",
	}
)

// ClaimIntent classifies a claim description by case-insensitive substring
// match. Unmatched descriptions are IntentUnknown.
func ClaimIntent(description string) Intent {
	lower := strings.ToLower(description)

	for _, kw := range establishmentKeywords {
		if strings.Contains(lower, kw) {
			return IntentEstablishment
		}
	}
	for _, kw := range preservationKeywords {
		if strings.Contains(lower, kw) {
			return IntentPreservation
		}
	}
	return IntentUnknown
}
