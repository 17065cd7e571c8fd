// Package satellite is the imagery analysis collaborator. The actual band
// math and segmentation live behind an external statistics API; this package
// only fetches metric values and shapes them into SatelliteAnalysis.
package satellite

import (
	"context"

	"github.com/greenaudit/greenaudit/internal/classify"
	"github.com/greenaudit/greenaudit/internal/model"
)

// Service analyzes one location for one claim. Failures are per-claim soft
// failures; the workflow records them and moves on.
type Service interface {
	AnalyzeLocation(ctx context.Context, coords model.GeoCoordinates, mode classify.Mode) (*model.SatelliteAnalysis, error)
}

// metricFor maps a verification mode to the spectral index the statistics
// API understands.
func metricFor(mode classify.Mode) string {
	switch mode {
	case classify.ModeWater:
		return "ndwi"
	case classify.ModeSolar:
		return "ndbi"
	default:
		return "ndvi"
	}
}

// featureThreshold is the minimum current score at which the metric's
// feature counts as detected (NDVI > 0.4 indicates dense vegetation, etc).
func featureThreshold(mode classify.Mode) float64 {
	switch mode {
	case classify.ModeWater:
		return 0.3
	case classify.ModeSolar:
		return 0.2
	default:
		return 0.4
	}
}
