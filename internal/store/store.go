// Package store holds the report repository. The orchestrator is the sole
// writer per report; status readers may observe any committed intermediate
// state but never a torn write.
package store

import (
	"context"
	"errors"

	"github.com/greenaudit/greenaudit/internal/model"
)

// ErrNotFound is returned when a report id is unknown.
var ErrNotFound = errors.New("report not found")

// ReportRepository persists verification reports. Last-write-wins semantics
// are acceptable: the workflow is the only writer for a given report.
type ReportRepository interface {
	Save(ctx context.Context, report *model.VerificationReport) error
	Get(ctx context.Context, id string) (*model.VerificationReport, error)
	Update(ctx context.Context, id string, report *model.VerificationReport) error
}
