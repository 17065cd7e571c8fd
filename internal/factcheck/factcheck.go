// Package factcheck is the textual verification collaborator: claims with no
// usable location are checked against public web evidence instead of imagery.
package factcheck

import (
	"context"

	"github.com/greenaudit/greenaudit/internal/model"
)

// Verdict is the collaborator's answer for one claim. The verification
// engine copies these fields verbatim into the claim's result.
type Verdict struct {
	Verified   bool     `json:"verified"`
	Confidence float64  `json:"confidence"`
	Evidence   string   `json:"evidence"`
	Sources    []string `json:"sources"`
}

// Service fact-checks a single claim. Failures are per-claim soft failures.
type Service interface {
	VerifyClaim(ctx context.Context, claim model.EnvironmentalClaim) (*Verdict, error)
}
