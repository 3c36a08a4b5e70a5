package enrichment

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sitewise/internal/platform/middleware"
	"sitewise/pkg/platform/httputil"
)

type chatRequest struct {
	Query string `json:"query"`
}

// Handler serves the assistant chat proxy.
type Handler struct {
	client   *Client
	logger   *slog.Logger
	verifier middleware.TokenVerifier
}

func NewHandler(client *Client, logger *slog.Logger, verifier middleware.TokenVerifier) *Handler {
	return &Handler{client: client, logger: logger, verifier: verifier}
}

// Register mounts the chat route behind the auth gate.
func (h *Handler) Register(r chi.Router) {
	r.With(middleware.RequireAuth(h.verifier, h.logger)).Post("/api/chat", h.handleChat)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[chatRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	// Chat degrades internally; the response is always 200.
	resp := h.client.Chat(ctx, req.Query)
	httputil.WriteJSON(w, http.StatusOK, resp)
}
