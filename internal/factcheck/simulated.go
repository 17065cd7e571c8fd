package factcheck

import (
	"context"
	"strings"

	"github.com/greenaudit/greenaudit/internal/model"
)

// Simulated answers fact-checks from a keyword heuristic. Used in demo mode
// when no LLM credentials are configured.
type Simulated struct{}

// NewSimulated creates the demo fact-checker.
func NewSimulated() *Simulated {
	return &Simulated{}
}

// VerifyClaim confirms claims about renewables and reductions, rejects the rest.
func (s *Simulated) VerifyClaim(_ context.Context, claim model.EnvironmentalClaim) (*Verdict, error) {
	lower := strings.ToLower(claim.Description)
	if strings.Contains(lower, "renewable") || strings.Contains(lower, "reduced") {
		return &Verdict{
			Verified:   true,
			Confidence: 0.95,
			Evidence:   "Simulated source: Annual Sustainability Report 2024 confirms this target was met.",
			Sources:    []string{"https://example.com/report2024.pdf"},
		}, nil
	}
	return &Verdict{
		Verified:   false,
		Confidence: 0.80,
		Evidence:   "Simulated source: no public record found matching this specific claim magnitude.",
		Sources:    []string{"https://example.com/search_results"},
	}, nil
}
