package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"sitewise/internal/catalog/models"
	"sitewise/internal/platform/middleware"
	dErrors "sitewise/pkg/domain-errors"
	"sitewise/pkg/platform/httputil"
)

// Service defines the catalog reads this handler exposes.
type Service interface {
	ListTemplates(ctx context.Context) ([]models.ChecklistTemplate, error)
	ListItems(ctx context.Context, templateID int64) ([]models.ChecklistItem, error)
}

type Handler struct {
	service  Service
	logger   *slog.Logger
	verifier middleware.TokenVerifier
}

func New(service Service, logger *slog.Logger, verifier middleware.TokenVerifier) *Handler {
	return &Handler{service: service, logger: logger, verifier: verifier}
}

// Register mounts catalog routes. The template list is behind the auth gate;
// the item list is public so the mobile checklist form can prefetch it.
func (h *Handler) Register(r chi.Router) {
	r.With(middleware.RequireAuth(h.verifier, h.logger)).Get("/api/templates", h.handleListTemplates)
	r.Get("/api/templates/{id}/items", h.handleListItems)
}

func (h *Handler) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	templates, err := h.service.ListTemplates(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list templates",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	if templates == nil {
		templates = []models.ChecklistTemplate{}
	}
	httputil.WriteJSON(w, http.StatusOK, templates)
}

func (h *Handler) handleListItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	templateID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid template id"))
		return
	}

	items, svcErr := h.service.ListItems(ctx, templateID)
	if svcErr != nil {
		h.logger.ErrorContext(ctx, "failed to list checklist items",
			"request_id", middleware.GetRequestID(ctx),
			"template_id", templateID,
			"error", svcErr.Error(),
		)
		httputil.WriteError(w, svcErr)
		return
	}
	if items == nil {
		items = []models.ChecklistItem{}
	}
	httputil.WriteJSON(w, http.StatusOK, items)
}
