package model

import "time"

// ReportStatus is the lifecycle state of a verification report.
// Transitions are strictly forward: pending -> processing -> completed|failed.
type ReportStatus string

const (
	StatusPending    ReportStatus = "pending"
	StatusProcessing ReportStatus = "processing"
	StatusCompleted  ReportStatus = "completed"
	StatusFailed     ReportStatus = "failed"
)

// SatelliteAnalysis is the outcome of one imagery analysis call for a claim's
// location. Produced once per call, never mutated.
type SatelliteAnalysis struct {
	Score           float64    `json:"score"`                      // current metric value
	MetricName      string     `json:"metric_name"`                // e.g. "ndvi", "ndwi"
	HistoricalScore *float64   `json:"historical_score,omitempty"`
	FeatureDetected bool       `json:"feature_detected"`
	ChangePct       *float64   `json:"change_pct,omitempty"` // percentage-point delta vs historical
	AnalysisDate    time.Time  `json:"analysis_date"`
	ComparisonDate  *time.Time `json:"comparison_date,omitempty"`
}

// Change returns the change percentage, treating an absent delta as 0.
func (a *SatelliteAnalysis) Change() float64 {
	if a == nil || a.ChangePct == nil {
		return 0.0
	}
	return *a.ChangePct
}

// VerificationResult is the verdict for a single claim. Created once and
// appended to the report's result list; never mutated after creation.
type VerificationResult struct {
	Claim           EnvironmentalClaim `json:"claim"`
	SatelliteData   *SatelliteAnalysis `json:"satellite_data,omitempty"`
	EvidenceText    string             `json:"evidence_text,omitempty"`
	SourceURLs      []string           `json:"source_urls,omitempty"`
	IsVerified      bool               `json:"is_verified"`
	ConfidenceScore float64            `json:"confidence_score"` // in [0,1]
}

// VerificationReport tracks one uploaded document through the audit workflow.
// Invariants: len(Results) == len(Claims) once completed; a completed report
// never carries an error message.
type VerificationReport struct {
	ID         string               `json:"id"`
	Status     ReportStatus         `json:"status"`
	Filename   string               `json:"filename"`
	UploadedAt time.Time            `json:"uploaded_at"`
	Claims     []EnvironmentalClaim `json:"claims"`
	Results    []VerificationResult `json:"results"`
	Error      string               `json:"error,omitempty"`
}

// NewReport creates a pending report for a freshly uploaded file.
func NewReport(id, filename string) *VerificationReport {
	return &VerificationReport{
		ID:         id,
		Status:     StatusPending,
		Filename:   filename,
		UploadedAt: time.Now().UTC(),
	}
}
