// Package extract turns uploaded report text into structured environmental
// claims via an LLM, and pulls text out of uploaded PDFs.
package extract

import (
	"context"

	"github.com/greenaudit/greenaudit/internal/model"
)

// Service extracts claims from report text. Failures are workflow-fatal for
// the report being processed.
type Service interface {
	ExtractClaims(ctx context.Context, text string) ([]model.EnvironmentalClaim, error)
}
