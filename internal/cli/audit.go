package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/greenaudit/greenaudit/internal/extract"
	"github.com/greenaudit/greenaudit/internal/model"
	"github.com/greenaudit/greenaudit/internal/store"
	"github.com/greenaudit/greenaudit/internal/worker"
	"github.com/greenaudit/greenaudit/internal/workflow"
)

var (
	auditOutputDir   string
	auditConcurrency int
	auditTimeout     time.Duration
)

// auditCmd represents the audit command
var auditCmd = &cobra.Command{
	Use:   "audit <file...>",
	Short: "Audit one or more report files without starting the server",
	Long: `Audit runs the full verification workflow on local files (PDF or
plain text) and writes one JSON report per file.

Files are processed in parallel with a bounded worker pool; claims within
each report are verified concurrently as well.

Example:
  greenaudit audit report.pdf
  greenaudit audit reports/*.pdf --output-dir ./audits --concurrency 8`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)

	auditCmd.Flags().StringVar(&auditOutputDir, "output-dir", "", "write JSON reports here instead of stdout")
	auditCmd.Flags().IntVar(&auditConcurrency, "concurrency", runtime.NumCPU(), "number of files audited in parallel")
	auditCmd.Flags().DurationVar(&auditTimeout, "timeout", 10*time.Minute, "total timeout for the batch")
}

// localAuditor adapts the server workflow to one-shot file audits backed by
// a throwaway in-memory repository.
type localAuditor struct {
	repo         store.ReportRepository
	orchestrator *workflow.Orchestrator
}

func (a *localAuditor) AuditFile(ctx context.Context, path string) (*model.VerificationReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	text, err := extract.TextFromUpload(filepath.Base(path), data)
	if err != nil {
		return nil, fmt.Errorf("extract text from %s: %w", path, err)
	}

	report := model.NewReport(uuid.NewString(), filepath.Base(path))
	if err := a.repo.Save(ctx, report); err != nil {
		return nil, fmt.Errorf("persist report: %w", err)
	}

	runErr := a.orchestrator.Run(ctx, report.ID, text)

	// The workflow persists its outcome even when extraction fails, so the
	// stored report is authoritative either way.
	final, err := a.repo.Get(ctx, report.ID)
	if err != nil {
		return nil, fmt.Errorf("load report: %w", err)
	}
	if runErr != nil {
		return final, fmt.Errorf("audit %s: %w", path, runErr)
	}
	return final, nil
}

func runAudit(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()

	ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
	defer cancel()

	repo := store.NewMemoryRepository()
	orchestrator, err := buildOrchestrator(cfg, repo, logger)
	if err != nil {
		return err
	}

	if auditOutputDir != "" {
		if err := os.MkdirAll(auditOutputDir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	auditor := &localAuditor{repo: repo, orchestrator: orchestrator}
	batch := worker.NewBatchProcessor(auditor, auditConcurrency)
	results := batch.ProcessFiles(ctx, args)

	var failures int
	for _, result := range results {
		if result.Error != nil {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, result.Error)
			if result.Report == nil {
				continue
			}
		}

		if err := writeReport(result.Report, result.Path); err != nil {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, err)
			continue
		}

		if result.Error == nil {
			verified := 0
			for _, r := range result.Report.Results {
				if r.IsVerified {
					verified++
				}
			}
			fmt.Fprintf(os.Stderr, "✓ %s: %d/%d claims verified\n", result.Path, verified, len(result.Report.Results))
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d files failed", failures, len(results))
	}
	return nil
}

func writeReport(report *model.VerificationReport, sourcePath string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if auditOutputDir == "" {
		fmt.Println(string(data))
		return nil
	}

	base := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	outPath := filepath.Join(auditOutputDir, base+".audit.json")
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	return nil
}
