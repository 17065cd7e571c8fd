package store

import (
	"context"
	"sync"

	"github.com/greenaudit/greenaudit/internal/model"
)

// MemoryRepository is an in-memory ReportRepository backed by a map.
// Reports are copied on every write and read, so a concurrent status reader
// always sees a complete snapshot of some committed state.
type MemoryRepository struct {
	mu      sync.RWMutex
	reports map[string]*model.VerificationReport
}

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		reports: make(map[string]*model.VerificationReport),
	}
}

// Save stores a snapshot of the report under its own id.
func (r *MemoryRepository) Save(_ context.Context, report *model.VerificationReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports[report.ID] = snapshot(report)
	return nil
}

// Get returns a snapshot of the report, or ErrNotFound.
func (r *MemoryRepository) Get(_ context.Context, id string) (*model.VerificationReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, ok := r.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	return snapshot(report), nil
}

// Update replaces the stored report. Last write wins.
func (r *MemoryRepository) Update(_ context.Context, id string, report *model.VerificationReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reports[id]; !ok {
		return ErrNotFound
	}
	r.reports[id] = snapshot(report)
	return nil
}

// snapshot copies the report and its slice headers. Claims and results are
// immutable after creation, so element sharing is safe.
func snapshot(report *model.VerificationReport) *model.VerificationReport {
	cp := *report
	if report.Claims != nil {
		cp.Claims = make([]model.EnvironmentalClaim, len(report.Claims))
		copy(cp.Claims, report.Claims)
	}
	if report.Results != nil {
		cp.Results = make([]model.VerificationResult, len(report.Results))
		copy(cp.Results, report.Results)
	}
	return &cp
}
