package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"sitewise/internal/capa/models"
	"sitewise/internal/platform/middleware"
	dErrors "sitewise/pkg/domain-errors"
	"sitewise/pkg/platform/httputil"
)

// Service defines the CAPA operations this handler exposes.
type Service interface {
	Create(ctx context.Context, ident middleware.Identity, req models.CreateRequest) (*models.Action, error)
	Close(ctx context.Context, id int64) (*models.Action, error)
}

// Handler serves the CAPA endpoints. Both are behind the auth gate.
type Handler struct {
	service  Service
	logger   *slog.Logger
	verifier middleware.TokenVerifier
}

func New(service Service, logger *slog.Logger, verifier middleware.TokenVerifier) *Handler {
	return &Handler{service: service, logger: logger, verifier: verifier}
}

// Register mounts the CAPA routes.
func (h *Handler) Register(r chi.Router) {
	auth := middleware.RequireAuth(h.verifier, h.logger)
	r.With(auth).Post("/api/capa", h.handleCreate)
	r.With(auth).Patch("/api/capa/{id}/close", h.handleClose)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	ident, ok := middleware.GetIdentity(ctx)
	if !ok {
		h.logger.ErrorContext(ctx, "identity missing from context despite auth middleware",
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[models.CreateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	action, err := h.service.Create(ctx, ident, req)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeBadRequest) || dErrors.Is(err, dErrors.CodeForbidden) {
			h.logger.WarnContext(ctx, "CAPA creation rejected",
				"request_id", requestID,
				"error", err.Error(),
			)
			httputil.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "failed to create CAPA",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to create CAPA"))
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, action)
}

func (h *Handler) handleClose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid CAPA id"))
		return
	}

	action, svcErr := h.service.Close(ctx, id)
	if svcErr != nil {
		if dErrors.Is(svcErr, dErrors.CodeNotFound) {
			httputil.WriteError(w, svcErr)
			return
		}
		h.logger.ErrorContext(ctx, "failed to close CAPA",
			"request_id", requestID,
			"capa_id", id,
			"error", svcErr.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to close CAPA"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, action)
}
