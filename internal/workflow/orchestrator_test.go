package workflow

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/greenaudit/greenaudit/internal/classify"
	"github.com/greenaudit/greenaudit/internal/extract"
	"github.com/greenaudit/greenaudit/internal/factcheck"
	"github.com/greenaudit/greenaudit/internal/model"
	"github.com/greenaudit/greenaudit/internal/store"
)

type stubExtractor struct {
	claims []model.EnvironmentalClaim
	err    error
}

func (s *stubExtractor) ExtractClaims(context.Context, string) ([]model.EnvironmentalClaim, error) {
	return s.claims, s.err
}

type stubSatellite struct {
	analyze func(model.GeoCoordinates, classify.Mode) (*model.SatelliteAnalysis, error)
}

func (s *stubSatellite) AnalyzeLocation(_ context.Context, coords model.GeoCoordinates, mode classify.Mode) (*model.SatelliteAnalysis, error) {
	return s.analyze(coords, mode)
}

type stubFactCheck struct {
	verdict *factcheck.Verdict
	err     error
}

func (s *stubFactCheck) VerifyClaim(context.Context, model.EnvironmentalClaim) (*factcheck.Verdict, error) {
	return s.verdict, s.err
}

// recordingRepo tracks the status written at every Update.
type recordingRepo struct {
	*store.MemoryRepository
	statuses []model.ReportStatus
}

func (r *recordingRepo) Update(ctx context.Context, id string, report *model.VerificationReport) error {
	r.statuses = append(r.statuses, report.Status)
	return r.MemoryRepository.Update(ctx, id, report)
}

func analysisStub(change float64) *model.SatelliteAnalysis {
	return &model.SatelliteAnalysis{
		Score:           0.6,
		MetricName:      "ndvi",
		FeatureDetected: true,
		ChangePct:       &change,
	}
}

func defaultWorkflowConfig() model.WorkflowConfig {
	return model.WorkflowConfig{ClaimWorkers: 4, NullIslandIsMissing: true}
}

func newTestOrchestrator(repo store.ReportRepository, ex extract.Service, sat *stubSatellite, fc *stubFactCheck) *Orchestrator {
	return NewOrchestrator(repo, ex, sat, fc, defaultWorkflowConfig(), zerolog.Nop())
}

func TestRun_EndToEnd(t *testing.T) {
	ctx := context.Background()
	repo := &recordingRepo{MemoryRepository: store.NewMemoryRepository()}

	// One spatial claim (vegetation establishment, +15pp) and one textual claim.
	claims := []model.EnvironmentalClaim{
		{
			Description: "Planted 5000 trees in the Amazon Rainforest",
			Location:    &model.GeoCoordinates{Latitude: -3.4653, Longitude: -62.2159},
		},
		{
			Description: "Reduced fleet emissions by 30%",
		},
	}

	orch := newTestOrchestrator(repo,
		&stubExtractor{claims: claims},
		&stubSatellite{analyze: func(model.GeoCoordinates, classify.Mode) (*model.SatelliteAnalysis, error) {
			return analysisStub(15.0), nil
		}},
		&stubFactCheck{verdict: &factcheck.Verdict{
			Verified:   true,
			Confidence: 0.95,
			Evidence:   "Annual report confirms the reduction.",
			Sources:    []string{"https://example.com/report.pdf"},
		}},
	)

	if err := repo.Save(ctx, model.NewReport("r1", "report.pdf")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := orch.Run(ctx, "r1", "report text"); err != nil {
		t.Fatalf("Run: %v", err)
	}

	report, err := repo.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if report.Status != model.StatusCompleted {
		t.Fatalf("Status = %q, want completed", report.Status)
	}
	if report.Error != "" {
		t.Errorf("completed report carries error %q", report.Error)
	}
	if len(report.Results) != len(report.Claims) {
		t.Fatalf("len(Results) = %d, want %d", len(report.Results), len(report.Claims))
	}

	spatial := report.Results[0]
	if !spatial.IsVerified {
		t.Error("spatial claim should verify at +15pp growth")
	}
	if math.Abs(spatial.ConfidenceScore-0.95) > 1e-9 {
		t.Errorf("spatial confidence = %v, want 0.95", spatial.ConfidenceScore)
	}
	if spatial.SatelliteData == nil {
		t.Error("spatial result missing satellite data")
	}

	textual := report.Results[1]
	if !textual.IsVerified || textual.ConfidenceScore != 0.95 {
		t.Errorf("textual result = %+v", textual)
	}
	if textual.EvidenceText != "Annual report confirms the reduction." {
		t.Errorf("textual evidence not copied verbatim: %q", textual.EvidenceText)
	}
	if len(textual.SourceURLs) != 1 {
		t.Errorf("textual sources not copied: %v", textual.SourceURLs)
	}

	// Transitions are persisted in order and strictly forward.
	want := []model.ReportStatus{model.StatusProcessing, model.StatusCompleted}
	if len(repo.statuses) != len(want) {
		t.Fatalf("persisted statuses = %v, want %v", repo.statuses, want)
	}
	for i := range want {
		if repo.statuses[i] != want[i] {
			t.Errorf("statuses[%d] = %q, want %q", i, repo.statuses[i], want[i])
		}
	}
}

func TestRun_RoutesByLocation(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemoryRepository()

	var spatialCalls, textualCalls int
	claims := []model.EnvironmentalClaim{
		{Description: "Planted trees", Location: &model.GeoCoordinates{Latitude: 1, Longitude: 2}},
		{Description: "Planted trees, location unknown", Location: &model.GeoCoordinates{}},
		{Description: "Reduced emissions"},
	}

	orch := NewOrchestrator(repo,
		&stubExtractor{claims: claims},
		&stubSatellite{analyze: func(model.GeoCoordinates, classify.Mode) (*model.SatelliteAnalysis, error) {
			spatialCalls++
			return analysisStub(10), nil
		}},
		&stubFactCheck{verdict: &factcheck.Verdict{Verified: false, Confidence: 0.1, Evidence: "inconclusive"}},
		model.WorkflowConfig{ClaimWorkers: 1, NullIslandIsMissing: true},
		zerolog.Nop(),
	)
	// Sequential workers so the counters need no locking.
	orch.factCheck = countingFactCheck(&textualCalls)

	if err := repo.Save(ctx, model.NewReport("r1", "r.pdf")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := orch.Run(ctx, "r1", "text"); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if spatialCalls != 1 {
		t.Errorf("spatial calls = %d, want 1", spatialCalls)
	}
	if textualCalls != 2 {
		t.Errorf("textual calls = %d, want 2", textualCalls)
	}
}

type factCheckFunc func(context.Context, model.EnvironmentalClaim) (*factcheck.Verdict, error)

func (f factCheckFunc) VerifyClaim(ctx context.Context, c model.EnvironmentalClaim) (*factcheck.Verdict, error) {
	return f(ctx, c)
}

func countingFactCheck(calls *int) factcheck.Service {
	return factCheckFunc(func(context.Context, model.EnvironmentalClaim) (*factcheck.Verdict, error) {
		*calls++
		return &factcheck.Verdict{Verified: false, Confidence: 0.1, Evidence: "inconclusive"}, nil
	})
}

func TestRun_PerClaimFailureDoesNotAbortOthers(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemoryRepository()

	claims := []model.EnvironmentalClaim{
		{Description: "Planted trees A", Location: &model.GeoCoordinates{Latitude: 1, Longitude: 1}},
		{Description: "Planted trees B", Location: &model.GeoCoordinates{Latitude: 2, Longitude: 2}},
		{Description: "Planted trees C", Location: &model.GeoCoordinates{Latitude: 3, Longitude: 3}},
	}

	orch := newTestOrchestrator(repo,
		&stubExtractor{claims: claims},
		&stubSatellite{analyze: func(coords model.GeoCoordinates, _ classify.Mode) (*model.SatelliteAnalysis, error) {
			if coords.Latitude == 2 {
				return nil, errors.New("imagery provider timeout")
			}
			return analysisStub(10), nil
		}},
		&stubFactCheck{},
	)

	if err := repo.Save(ctx, model.NewReport("r1", "r.pdf")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := orch.Run(ctx, "r1", "text"); err != nil {
		t.Fatalf("Run: %v", err)
	}

	report, err := repo.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if report.Status != model.StatusCompleted {
		t.Fatalf("Status = %q, want completed despite per-claim failure", report.Status)
	}
	if len(report.Results) != 3 {
		t.Fatalf("len(Results) = %d, want 3", len(report.Results))
	}

	failed := report.Results[1]
	if failed.IsVerified || failed.ConfidenceScore != 0.0 {
		t.Errorf("failed claim result = %+v", failed)
	}
	if failed.SatelliteData != nil {
		t.Error("failed claim should carry no satellite data")
	}
	if !strings.Contains(failed.EvidenceText, "imagery provider timeout") {
		t.Errorf("evidence does not explain the failure: %q", failed.EvidenceText)
	}

	for _, idx := range []int{0, 2} {
		if !report.Results[idx].IsVerified {
			t.Errorf("claim %d should still verify normally", idx)
		}
	}
}

func TestRun_ExtractionFailureMarksFailed(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemoryRepository()

	orch := newTestOrchestrator(repo,
		&stubExtractor{err: errors.New("LLM quota exceeded")},
		&stubSatellite{analyze: func(model.GeoCoordinates, classify.Mode) (*model.SatelliteAnalysis, error) {
			return analysisStub(0), nil
		}},
		&stubFactCheck{},
	)

	if err := repo.Save(ctx, model.NewReport("r1", "r.pdf")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := orch.Run(ctx, "r1", "text"); err == nil {
		t.Fatal("expected Run to report the extraction failure")
	}

	report, err := repo.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if report.Status != model.StatusFailed {
		t.Errorf("Status = %q, want failed", report.Status)
	}
	if !strings.Contains(report.Error, "LLM quota exceeded") {
		t.Errorf("Error = %q, want cause message", report.Error)
	}
}

func TestRun_MissingReportIsNoOp(t *testing.T) {
	repo := store.NewMemoryRepository()
	orch := newTestOrchestrator(repo, &stubExtractor{}, &stubSatellite{analyze: func(model.GeoCoordinates, classify.Mode) (*model.SatelliteAnalysis, error) {
		return nil, errors.New("unused")
	}}, &stubFactCheck{})

	if err := orch.Run(context.Background(), "ghost", "text"); err != nil {
		t.Errorf("Run on missing report = %v, want nil", err)
	}
}

func TestRun_ResultOrderMatchesClaimOrder(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemoryRepository()

	var claims []model.EnvironmentalClaim
	for i := 0; i < 20; i++ {
		claims = append(claims, model.EnvironmentalClaim{
			Description: fmt.Sprintf("Planted grove %02d", i),
			Location:    &model.GeoCoordinates{Latitude: float64(i + 1), Longitude: 10},
		})
	}

	orch := newTestOrchestrator(repo,
		&stubExtractor{claims: claims},
		&stubSatellite{analyze: func(coords model.GeoCoordinates, _ classify.Mode) (*model.SatelliteAnalysis, error) {
			return analysisStub(coords.Latitude), nil
		}},
		&stubFactCheck{},
	)

	if err := repo.Save(ctx, model.NewReport("r1", "r.pdf")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := orch.Run(ctx, "r1", "text"); err != nil {
		t.Fatalf("Run: %v", err)
	}

	report, err := repo.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	for i, result := range report.Results {
		if result.Claim.Description != claims[i].Description {
			t.Fatalf("results[%d] holds claim %q, want %q", i, result.Claim.Description, claims[i].Description)
		}
	}
}

func TestRunAuditWorkflow_Entrypoint(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemoryRepository()
	if err := repo.Save(ctx, model.NewReport("r1", "r.txt")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	RunAuditWorkflow(ctx, "r1", "text", repo,
		&stubExtractor{claims: []model.EnvironmentalClaim{{Description: "Reduced emissions"}}},
		&stubSatellite{analyze: func(model.GeoCoordinates, classify.Mode) (*model.SatelliteAnalysis, error) {
			return analysisStub(0), nil
		}},
		&stubFactCheck{verdict: &factcheck.Verdict{Verified: true, Confidence: 0.9, Evidence: "ok"}},
	)

	report, err := repo.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if report.Status != model.StatusCompleted {
		t.Errorf("Status = %q, want completed", report.Status)
	}
}
