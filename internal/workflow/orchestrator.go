// Package workflow sequences the audit for one report: claim extraction,
// per-claim routing and verification, and report status transitions.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/greenaudit/greenaudit/internal/classify"
	"github.com/greenaudit/greenaudit/internal/extract"
	"github.com/greenaudit/greenaudit/internal/factcheck"
	"github.com/greenaudit/greenaudit/internal/model"
	"github.com/greenaudit/greenaudit/internal/satellite"
	"github.com/greenaudit/greenaudit/internal/store"
	"github.com/greenaudit/greenaudit/internal/verify"
)

// Orchestrator runs the audit workflow. Collaborators are injected once at
// construction; the orchestrator itself holds no report state.
type Orchestrator struct {
	repo      store.ReportRepository
	extractor extract.Service
	satellite satellite.Service
	factCheck factcheck.Service
	engine    *verify.Engine
	router    verify.Router
	workers   int
	logger    zerolog.Logger
}

// NewOrchestrator wires the workflow with its collaborators.
func NewOrchestrator(
	repo store.ReportRepository,
	extractor extract.Service,
	satelliteSvc satellite.Service,
	factCheck factcheck.Service,
	cfg model.WorkflowConfig,
	logger zerolog.Logger,
) *Orchestrator {
	workers := cfg.ClaimWorkers
	if workers <= 0 {
		workers = 1
	}
	return &Orchestrator{
		repo:      repo,
		extractor: extractor,
		satellite: satelliteSvc,
		factCheck: factCheck,
		engine:    verify.NewEngine(),
		router:    verify.Router{NullIslandIsMissing: cfg.NullIslandIsMissing},
		workers:   workers,
		logger:    logger,
	}
}

// Run processes one report to completion or failure:
// pending -> processing -> completed, or processing -> failed on a fatal
// extraction error. The report is persisted after every transition so a
// concurrent status reader always observes a committed state. A failure
// verifying one claim never aborts the others.
func (o *Orchestrator) Run(ctx context.Context, reportID, text string) error {
	logger := o.logger.With().Str("report_id", reportID).Logger()
	logger.Info().Msg("starting audit workflow")

	report, err := o.repo.Get(ctx, reportID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.Warn().Msg("report not found, nothing to process")
			return nil
		}
		return fmt.Errorf("load report: %w", err)
	}

	report.Status = model.StatusProcessing
	if err := o.repo.Update(ctx, reportID, report); err != nil {
		return fmt.Errorf("persist processing state: %w", err)
	}

	claims, err := o.extractor.ExtractClaims(ctx, text)
	if err != nil {
		logger.Error().Err(err).Msg("claim extraction failed")
		return o.fail(ctx, report, err)
	}
	logger.Info().Int("claims", len(claims)).Msg("claims extracted")

	report.Claims = claims
	report.Results = o.verifyAll(ctx, claims, logger)
	report.Status = model.StatusCompleted
	report.Error = ""

	if err := o.repo.Update(ctx, reportID, report); err != nil {
		return fmt.Errorf("persist completed state: %w", err)
	}
	logger.Info().Int("results", len(report.Results)).Msg("audit completed")
	return nil
}

// fail marks the report failed, capturing the error message.
func (o *Orchestrator) fail(ctx context.Context, report *model.VerificationReport, cause error) error {
	report.Status = model.StatusFailed
	report.Error = cause.Error()
	if err := o.repo.Update(ctx, report.ID, report); err != nil {
		return fmt.Errorf("persist failed state: %w", err)
	}
	return cause
}

// verifyAll verifies claims on a bounded worker fan-out; results[i] always
// corresponds to claims[i].
func (o *Orchestrator) verifyAll(ctx context.Context, claims []model.EnvironmentalClaim, logger zerolog.Logger) []model.VerificationResult {
	results := make([]model.VerificationResult, len(claims))
	semaphore := make(chan struct{}, o.workers)
	var wg sync.WaitGroup

	for i, claim := range claims {
		wg.Add(1)
		go func(idx int, c model.EnvironmentalClaim) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()
			results[idx] = o.verifyClaim(ctx, c, logger)
		}(i, claim)
	}

	wg.Wait()
	return results
}

// verifyClaim routes one claim and produces its result. Collaborator errors
// become low-confidence unverified results; the claim is never dropped.
func (o *Orchestrator) verifyClaim(ctx context.Context, claim model.EnvironmentalClaim, logger zerolog.Logger) model.VerificationResult {
	if o.router.Route(claim) == verify.SpatialPath {
		return o.verifySpatial(ctx, claim, logger)
	}
	return o.verifyTextual(ctx, claim, logger)
}

func (o *Orchestrator) verifySpatial(ctx context.Context, claim model.EnvironmentalClaim, logger zerolog.Logger) model.VerificationResult {
	mode := classify.ClaimMode(claim.Description)
	intent := classify.ClaimIntent(claim.Description)

	analysis, err := o.satellite.AnalyzeLocation(ctx, *claim.Location, mode)
	if err != nil || analysis == nil {
		if err == nil {
			err = errors.New("no analysis returned")
		}
		logger.Warn().Err(err).Str("claim", claim.Description).Msg("satellite analysis failed")
		return failedResult(claim, fmt.Sprintf("satellite analysis failed: %v", err))
	}

	assessment := o.engine.VerifySpatial(claim, mode, intent, analysis)
	logger.Debug().
		Str("claim", claim.Description).
		Str("mode", string(mode)).
		Str("intent", string(intent)).
		Bool("verified", assessment.Verified).
		Msg("spatial verification done")

	return model.VerificationResult{
		Claim:           claim,
		SatelliteData:   analysis,
		EvidenceText:    assessment.Evidence,
		IsVerified:      assessment.Verified,
		ConfidenceScore: assessment.Confidence,
	}
}

func (o *Orchestrator) verifyTextual(ctx context.Context, claim model.EnvironmentalClaim, logger zerolog.Logger) model.VerificationResult {
	verdict, err := o.factCheck.VerifyClaim(ctx, claim)
	if err != nil || verdict == nil {
		if err == nil {
			err = errors.New("no verdict returned")
		}
		logger.Warn().Err(err).Str("claim", claim.Description).Msg("fact-check failed")
		return failedResult(claim, fmt.Sprintf("fact-check unavailable: %v", err))
	}

	return model.VerificationResult{
		Claim:           claim,
		EvidenceText:    verdict.Evidence,
		SourceURLs:      verdict.Sources,
		IsVerified:      verdict.Verified,
		ConfidenceScore: verdict.Confidence,
	}
}

// failedResult is the single constructor for per-claim soft failures.
func failedResult(claim model.EnvironmentalClaim, evidence string) model.VerificationResult {
	return model.VerificationResult{
		Claim:           claim,
		EvidenceText:    evidence,
		IsVerified:      false,
		ConfidenceScore: 0.0,
	}
}

// RunAuditWorkflow is the fire-and-dispatch entrypoint used by the upload
// handler: it builds a one-shot orchestrator over the given collaborators
// and processes the report.
func RunAuditWorkflow(
	ctx context.Context,
	reportID, text string,
	repo store.ReportRepository,
	extractor extract.Service,
	satelliteSvc satellite.Service,
	factCheck factcheck.Service,
) {
	o := NewOrchestrator(repo, extractor, satelliteSvc, factCheck, model.DefaultConfig().Workflow, zerolog.Nop())
	_ = o.Run(ctx, reportID, text)
}
