// Package verify holds the decision core of the audit workflow: the claim
// router and the threshold-based verification engine.
package verify

import "github.com/greenaudit/greenaudit/internal/model"

// Path is the verification strategy chosen for a claim.
type Path int

const (
	// TextualPath sends the claim to the web fact-check collaborator.
	TextualPath Path = iota
	// SpatialPath sends the claim's location to imagery analysis.
	SpatialPath
)

func (p Path) String() string {
	if p == SpatialPath {
		return "spatial"
	}
	return "textual"
}

// Router decides, per claim, between spatial imagery analysis and textual
// fact-checking. This is the single branch point of the workflow.
type Router struct {
	// NullIslandIsMissing treats an exact (0,0) location as absent, because
	// extractors use it as an "unresolved location" marker. Coordinates with
	// only one zero component are real and route spatially.
	NullIslandIsMissing bool
}

// Route returns SpatialPath when the claim carries a usable location.
func (r Router) Route(claim model.EnvironmentalClaim) Path {
	if claim.Location == nil {
		return TextualPath
	}
	if r.NullIslandIsMissing && claim.Location.IsNullIsland() {
		return TextualPath
	}
	return SpatialPath
}
