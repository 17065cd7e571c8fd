package satellite

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/greenaudit/greenaudit/internal/classify"
	"github.com/greenaudit/greenaudit/internal/model"
)

// Simulated produces deterministic analyses derived from the coordinates, so
// demo runs and repeated audits of the same report agree with each other.
// Used when no statistics API credentials are configured.
type Simulated struct {
	now func() time.Time
}

// NewSimulated creates the simulated analyzer.
func NewSimulated() *Simulated {
	return &Simulated{now: time.Now}
}

// AnalyzeLocation fabricates a plausible current/historical metric pair.
func (s *Simulated) AnalyzeLocation(_ context.Context, coords model.GeoCoordinates, mode classify.Mode) (*model.SatelliteAnalysis, error) {
	metric := metricFor(mode)

	// Hash the location and metric into [0,1) fractions.
	current := 0.1 + 0.8*fraction(coords, metric, "current")
	historical := 0.1 + 0.8*fraction(coords, metric, "historical")
	change := (current - historical) * 100

	analysisDate := s.now().UTC()
	comparisonDate := analysisDate.AddDate(-1, 0, 0)

	return &model.SatelliteAnalysis{
		Score:           current,
		MetricName:      metric,
		HistoricalScore: &historical,
		FeatureDetected: current > featureThreshold(mode),
		ChangePct:       &change,
		AnalysisDate:    analysisDate,
		ComparisonDate:  &comparisonDate,
	}, nil
}

func fraction(coords model.GeoCoordinates, metric, window string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(metric))
	_, _ = h.Write([]byte(window))
	_, _ = h.Write([]byte{byte(int(coords.Latitude*1e4) & 0xff), byte(int(coords.Longitude*1e4) & 0xff)})
	return float64(h.Sum32()%1000) / 1000.0
}
