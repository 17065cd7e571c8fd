// Package server exposes the audit workflow over HTTP: report upload and
// status polling.
package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	gamiddleware "github.com/greenaudit/greenaudit/internal/server/middleware"
	"github.com/greenaudit/greenaudit/internal/store"
)

// Config configures the web API.
type Config struct {
	Addr            string
	MaxUploadBytes  int64
	ShutdownTimeout time.Duration
}

// WebAPI is the HTTP front of the audit service.
type WebAPI struct {
	router *chi.Mux
	logger *zerolog.Logger
	server *http.Server
}

// NewWebAPI builds the router and server.
func NewWebAPI(logger zerolog.Logger, cfg Config, repo store.ReportRepository, workflow Workflow) *WebAPI {
	handler := NewHandler(repo, workflow, cfg.MaxUploadBytes)

	router := chi.NewRouter()
	router.Use(gamiddleware.Logger(&logger))
	router.Use(chimiddleware.Recoverer)

	router.Get("/healthz", handler.Health)
	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/reports", handler.UploadReport)
		r.Get("/reports/{id}", handler.GetReport)
	})

	return &WebAPI{
		router: router,
		logger: &logger,
		server: &http.Server{
			Addr:    cfg.Addr,
			Handler: router,
		},
	}
}

// Router exposes the handler tree, mainly for tests.
func (w *WebAPI) Router() http.Handler {
	return w.router
}

// Start serves until the listener fails or a shutdown signal arrives.
func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}
		if err != nil {
			return err
		}
	}
	return nil
}
