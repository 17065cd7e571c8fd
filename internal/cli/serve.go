package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/greenaudit/greenaudit/internal/cache"
	"github.com/greenaudit/greenaudit/internal/extract"
	"github.com/greenaudit/greenaudit/internal/factcheck"
	"github.com/greenaudit/greenaudit/internal/model"
	"github.com/greenaudit/greenaudit/internal/satellite"
	"github.com/greenaudit/greenaudit/internal/server"
	"github.com/greenaudit/greenaudit/internal/store"
	"github.com/greenaudit/greenaudit/internal/workflow"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the GreenAudit API server",
	Long: `Serve runs the HTTP API:

  POST /api/v1/reports       upload a sustainability report (PDF or text)
  GET  /api/v1/reports/{id}  poll verification status and results
  GET  /healthz              liveness probe

Without an LLM API key the server falls back to the built-in demo
extractor and simulated fact-checking, which is useful for local
development but verifies only the bundled sample claims.

Example:
  greenaudit serve
  greenaudit serve --addr :9090
  GREENAUDIT_SATELLITE_SIMULATE=false greenaudit serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// .env is optional; real deployments set environment variables directly.
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.HTTP.Addr = serveAddr
	}

	logger := newLogger()
	repo := store.NewMemoryRepository()

	orchestrator, err := buildOrchestrator(cfg, repo, logger)
	if err != nil {
		return err
	}

	api := server.NewWebAPI(logger, server.Config{
		Addr:           cfg.HTTP.Addr,
		MaxUploadBytes: cfg.HTTP.MaxUploadBytes,
	}, repo, orchestrator)

	return api.Start()
}

// buildOrchestrator assembles the workflow collaborators from configuration.
// Collaborators degrade gracefully: no LLM key selects the demo extractor and
// simulated fact-check, and satellite simulate mode needs no credentials.
func buildOrchestrator(cfg *model.Config, repo store.ReportRepository, logger zerolog.Logger) (*workflow.Orchestrator, error) {
	var respCache cache.Cache
	if cfg.Cache.Enabled {
		if err := os.MkdirAll(cfg.Cache.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
		respCache = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}

	var extractor extract.Service
	var factCheck factcheck.Service
	if cfg.LLM.APIKey != "" {
		openaiExtractor, err := extract.NewOpenAIExtractor(cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("build claim extractor: %w", err)
		}
		webChecker, err := factcheck.NewWebChecker(cfg.LLM, cfg.FactCheck, cfg.HTTP.UserAgent, respCache)
		if err != nil {
			return nil, fmt.Errorf("build fact checker: %w", err)
		}
		extractor = openaiExtractor
		factCheck = webChecker
		logger.Info().Str("model", cfg.LLM.Model).Msg("using LLM extraction and web fact-check")
	} else {
		extractor = extract.NewStaticExtractor()
		factCheck = factcheck.NewSimulated()
		logger.Warn().Msg("no LLM API key configured, using demo extractor and simulated fact-check")
	}

	var satelliteSvc satellite.Service
	if cfg.Satellite.Simulate || cfg.Satellite.Token == "" {
		satelliteSvc = satellite.NewSimulated()
		logger.Info().Msg("using simulated satellite analysis")
	} else {
		satelliteSvc = satellite.NewClient(cfg.Satellite, respCache)
		logger.Info().Str("base_url", cfg.Satellite.BaseURL).Msg("using satellite statistics API")
	}

	return workflow.NewOrchestrator(repo, extractor, satelliteSvc, factCheck, cfg.Workflow, logger), nil
}
