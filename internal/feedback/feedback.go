// Package feedback records human corrections of AI analysis results for
// later model retraining. The write path is fire-and-forget: handlers
// enqueue events and a background worker makes them durable.
package feedback

import (
	"context"
	"log/slog"
	"time"
)

// Event is one active-learning correction.
type Event struct {
	Username        string
	ImagePath       string
	AIResult        string
	UserFinalResult string
	UserObservation string
	SubmittedAt     time.Time
}

// Store appends feedback events durably.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Recorder accepts events without blocking the request path. A full buffer
// drops the event with a warning; feedback is advisory data and must never
// stall an upload or a handler.
type Recorder struct {
	inbox  chan Event
	logger *slog.Logger
}

func NewRecorder(buffer int, logger *slog.Logger) *Recorder {
	if buffer <= 0 {
		buffer = 256
	}
	return &Recorder{
		inbox:  make(chan Event, buffer),
		logger: logger,
	}
}

// Record enqueues an event. It reports whether the event was accepted.
func (r *Recorder) Record(event Event) bool {
	select {
	case r.inbox <- event:
		return true
	default:
		r.logger.Warn("feedback buffer full, dropping event",
			"username", event.Username,
			"image_path", event.ImagePath,
		)
		return false
	}
}

// Worker drains the recorder's inbox into the store. It keeps background
// persistence testable without wiring queue infrastructure.
type Worker struct {
	store  Store
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, recorder *Recorder, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: recorder.inbox, logger: logger}
}

// Run consumes events until ctx is cancelled. Store failures are logged and
// the worker keeps going; one bad row must not wedge the pipeline.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "failed to persist feedback event",
					"username", event.Username,
					"image_path", event.ImagePath,
					"error", err.Error(),
				)
			}
		}
	}
}
