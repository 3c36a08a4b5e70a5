package feedback

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"sitewise/internal/platform/middleware"
	dErrors "sitewise/pkg/domain-errors"
	"sitewise/pkg/platform/httputil"
)

type feedbackRequest struct {
	ImagePath       string `json:"image_path"`
	AIResult        string `json:"ai_result"`
	UserFinalResult string `json:"user_final_result"`
	UserObservation string `json:"user_observation"`
}

// Handler serves POST /api/feedback.
type Handler struct {
	recorder *Recorder
	logger   *slog.Logger
	verifier middleware.TokenVerifier
}

func NewHandler(recorder *Recorder, logger *slog.Logger, verifier middleware.TokenVerifier) *Handler {
	return &Handler{recorder: recorder, logger: logger, verifier: verifier}
}

// Register mounts the feedback route behind the auth gate.
func (h *Handler) Register(r chi.Router) {
	r.With(middleware.RequireAuth(h.verifier, h.logger)).Post("/api/feedback", h.handleFeedback)
}

func (h *Handler) handleFeedback(w http.ResponseWriter, r *http.Request) {
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

	req, ok := httputil.DecodeAndPrepare[feedbackRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if req.ImagePath == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "image_path is required"))
		return
	}

	// Fire-and-forget: the ack does not wait for the durable append.
	h.recorder.Record(Event{
		Username:        ident.Username,
		ImagePath:       req.ImagePath,
		AIResult:        req.AIResult,
		UserFinalResult: req.UserFinalResult,
		UserObservation: req.UserObservation,
		SubmittedAt:     time.Now(),
	})

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Feedback logged successfully",
	})
}
