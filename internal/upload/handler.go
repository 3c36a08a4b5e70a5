package upload

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sitewise/internal/platform/middleware"
	dErrors "sitewise/pkg/domain-errors"
	"sitewise/pkg/platform/httputil"
)

// Analyzer enriches a stored evidence file. Implementations never fail the
// upload: they return a fallback payload instead of an error.
type Analyzer interface {
	Analyze(ctx context.Context, filePath string) json.RawMessage
}

const maxUploadBytes = 16 << 20

// Handler serves POST /api/upload and the static evidence files.
//
// The upload route is deliberately outside the auth gate for parity with
// the existing clients; it shares the /api middleware chain, so gating it
// later is a one-line change in the router.
type Handler struct {
	store    *DiskStore
	analyzer Analyzer
	logger   *slog.Logger
}

func NewHandler(store *DiskStore, analyzer Analyzer, logger *slog.Logger) *Handler {
	return &Handler{store: store, analyzer: analyzer, logger: logger}
}

// Register mounts the upload route and the static file server.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/upload", h.handleUpload)
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(h.store.Dir()))))
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("evidence")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "no file uploaded"))
		return
	}
	defer file.Close()

	stored, err := h.store.Save(header.Filename, file)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to store evidence file",
			"request_id", requestID,
			"filename", header.Filename,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to store file"))
		return
	}

	// Enrichment is best-effort: Analyze degrades internally and the upload
	// succeeds either way.
	analysis := h.analyzer.Analyze(ctx, stored.LocalPath)

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"url":         stored.URL,
		"ai_analysis": analysis,
	})
}
