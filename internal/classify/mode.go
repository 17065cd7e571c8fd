package classify

import "strings"

// Mode is the verification strategy category driving which imagery metric
// and thresholds apply.
type Mode string

const (
	ModeVegetation Mode = "vegetation"
	ModeSolar      Mode = "solar"
	ModeWater      Mode = "water"
)

// Solar is checked before water; anything else defaults to vegetation.
var (
	solarKeywords = []string{"solar", "panel", "energy", "photovoltaic", "sun"}
	waterKeywords = []string{"water", "coastal", "mangrove", "erosion", "river", "flood"}
)

// ClaimMode selects the verification mode for a claim description by
// case-insensitive substring match.
func ClaimMode(description string) Mode {
	lower := strings.ToLower(description)

	for _, kw := range solarKeywords {
		if strings.Contains(lower, kw) {
			return ModeSolar
		}
	}
	for _, kw := range waterKeywords {
		if strings.Contains(lower, kw) {
			return ModeWater
		}
	}
	return ModeVegetation
}
