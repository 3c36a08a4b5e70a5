package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"sitewise/internal/platform/middleware"
	"sitewise/internal/report/models"
	dErrors "sitewise/pkg/domain-errors"
	"sitewise/pkg/platform/httputil"
)

// Service defines the report operations this handler exposes.
type Service interface {
	Submit(ctx context.Context, inspectorID int64, req models.SubmitReportRequest) (int64, error)
	List(ctx context.Context) ([]models.ReportSummary, error)
	Get(ctx context.Context, id int64) (*models.ReportDetail, error)
}

// Handler serves the report endpoints. Submission is behind the auth gate;
// the dashboard reads are public.
type Handler struct {
	service  Service
	logger   *slog.Logger
	verifier middleware.TokenVerifier
}

func New(service Service, logger *slog.Logger, verifier middleware.TokenVerifier) *Handler {
	return &Handler{service: service, logger: logger, verifier: verifier}
}

// Register mounts the report routes.
func (h *Handler) Register(r chi.Router) {
	r.With(middleware.RequireAuth(h.verifier, h.logger)).Post("/api/reports", h.handleSubmit)
	r.Get("/api/reports", h.handleList)
	r.Get("/api/reports/{id}", h.handleGet)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	ident, ok := middleware.GetIdentity(ctx)
	if !ok {
		// Should never happen when RequireAuth is mounted in front of us.
		h.logger.ErrorContext(ctx, "identity missing from context despite auth middleware",
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[models.SubmitReportRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	// The inspector id always comes from the verified token, never the body.
	reportID, err := h.service.Submit(ctx, ident.UserID, req)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeBadRequest) {
			h.logger.WarnContext(ctx, "invalid report submission",
				"request_id", requestID,
				"error", err.Error(),
			)
			httputil.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "report submission failed",
			"request_id", requestID,
			"inspector_id", ident.UserID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to submit report"))
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"message":  "Report submitted successfully",
		"reportId": reportID,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reports, err := h.service.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list reports",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	if reports == nil {
		reports = []models.ReportSummary{}
	}
	httputil.WriteJSON(w, http.StatusOK, reports)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid report id"))
		return
	}

	detail, svcErr := h.service.Get(ctx, id)
	if svcErr != nil {
		if !dErrors.Is(svcErr, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "failed to load report",
				"request_id", middleware.GetRequestID(ctx),
				"report_id", id,
				"error", svcErr.Error(),
			)
		}
		httputil.WriteError(w, svcErr)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, detail)
}
