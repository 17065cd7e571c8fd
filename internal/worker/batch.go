package worker

import (
	"context"

	"github.com/greenaudit/greenaudit/internal/model"
)

// Auditor runs the full audit workflow for one local report file.
type Auditor interface {
	AuditFile(ctx context.Context, path string) (*model.VerificationReport, error)
}

// AuditJob audits a single file.
type AuditJob struct {
	Path    string
	Auditor Auditor
}

// Execute runs the audit and wraps the outcome.
func (j *AuditJob) Execute(ctx context.Context) Result {
	report, err := j.Auditor.AuditFile(ctx, j.Path)
	return &AuditResult{Path: j.Path, Report: report, Error: err}
}

// AuditResult is the outcome of one file audit.
type AuditResult struct {
	Path   string
	Report *model.VerificationReport
	Error  error
}

// GetError returns the audit error, if any.
func (r *AuditResult) GetError() error {
	return r.Error
}

// BatchProcessor audits many files over a bounded pool.
type BatchProcessor struct {
	auditor     Auditor
	concurrency int
}

// NewBatchProcessor creates a batch processor.
func NewBatchProcessor(auditor Auditor, concurrency int) *BatchProcessor {
	return &BatchProcessor{auditor: auditor, concurrency: concurrency}
}

// ProcessFiles audits all paths and returns one result per file.
func (b *BatchProcessor) ProcessFiles(ctx context.Context, paths []string) []*AuditResult {
	if len(paths) == 0 {
		return []*AuditResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, path := range paths {
		pool.Submit(&AuditJob{Path: path, Auditor: b.auditor})
	}

	results := pool.Wait()
	auditResults := make([]*AuditResult, len(results))
	for i, result := range results {
		auditResults[i] = result.(*AuditResult)
	}
	return auditResults
}
