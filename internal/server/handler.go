package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/greenaudit/greenaudit/internal/extract"
	"github.com/greenaudit/greenaudit/internal/model"
	"github.com/greenaudit/greenaudit/internal/store"
)

// Workflow dispatches the audit for an uploaded report.
type Workflow interface {
	Run(ctx context.Context, reportID, text string) error
}

// Handler serves the report upload and status endpoints.
type Handler struct {
	repo           store.ReportRepository
	workflow       Workflow
	maxUploadBytes int64
}

// NewHandler creates the API handler.
func NewHandler(repo store.ReportRepository, workflow Workflow, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 20 << 20
	}
	return &Handler{repo: repo, workflow: workflow, maxUploadBytes: maxUploadBytes}
}

// UploadReport accepts a sustainability report (PDF or plain text), creates
// a pending verification report, and dispatches the workflow fire-and-forget.
func (h *Handler) UploadReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable upload")
		return
	}

	text, err := extract.TextFromUpload(header.Filename, data)
	if err != nil {
		logger.Warn().Err(err).Str("filename", header.Filename).Msg("text extraction failed")
		writeError(w, http.StatusUnprocessableEntity, "could not extract text from upload")
		return
	}

	report := model.NewReport(uuid.NewString(), header.Filename)
	if err := h.repo.Save(ctx, report); err != nil {
		logger.Error().Err(err).Msg("failed to persist report")
		writeError(w, http.StatusInternalServerError, "failed to persist report")
		return
	}

	// The request context dies with the response; the workflow gets its own.
	go func() { _ = h.workflow.Run(context.Background(), report.ID, text) }()

	logger.Info().Str("report_id", report.ID).Str("filename", header.Filename).Msg("report accepted")
	writeJSON(w, http.StatusAccepted, report)
}

// GetReport returns the current snapshot of a report.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	id := chi.URLParam(r, "id")

	report, err := h.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "report not found")
			return
		}
		logger.Error().Err(err).Str("report_id", id).Msg("failed to load report")
		writeError(w, http.StatusInternalServerError, "failed to load report")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Health is the liveness endpoint.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
