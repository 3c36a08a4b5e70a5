package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"sitewise/internal/capa/models"
	"sitewise/internal/platform/metrics"
	"sitewise/internal/platform/middleware"
	dErrors "sitewise/pkg/domain-errors"
	"sitewise/pkg/platform/sentinel"
)

const targetDateLayout = "2006-01-02"

// Store persists corrective actions.
type Store interface {
	Create(ctx context.Context, action *models.Action) (int64, error)
	Close(ctx context.Context, id int64) (*models.Action, error)
}

// Policy decides whether an identity may create corrective actions. It is
// injected so the restriction can change without touching the write path.
type Policy func(ident middleware.Identity) error

// AllowAll permits every authenticated identity.
func AllowAll(middleware.Identity) error { return nil }

// ManagerOnly restricts CAPA creation to managers.
func ManagerOnly(ident middleware.Identity) error {
	if ident.Role != "manager" {
		return dErrors.New(dErrors.CodeForbidden, "only managers can assign CAPA")
	}
	return nil
}

// Service creates and closes corrective actions.
type Service struct {
	store   Store
	policy  Policy
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewService(store Store, policy Policy, logger *slog.Logger, m *metrics.Metrics) *Service {
	if policy == nil {
		policy = AllowAll
	}
	return &Service{store: store, policy: policy, logger: logger, metrics: m}
}

// Create inserts an OPEN action against an existing finding. The finding
// reference is enforced by the store; an unknown finding is a validation
// error, not a persistence error.
func (s *Service) Create(ctx context.Context, ident middleware.Identity, req models.CreateRequest) (*models.Action, error) {
	if err := s.policy(ident); err != nil {
		return nil, err
	}
	if req.FindingID <= 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "finding_id is required")
	}
	if strings.TrimSpace(req.ActionDescription) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "action_description is required")
	}
	if req.AssignedTo <= 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "assigned_to is required")
	}
	targetDate, err := time.Parse(targetDateLayout, req.TargetDate)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "target_date must be YYYY-MM-DD")
	}

	action := &models.Action{
		FindingID:         req.FindingID,
		ActionDescription: strings.TrimSpace(req.ActionDescription),
		AssignedTo:        req.AssignedTo,
		Status:            models.StatusOpen,
		TargetDate:        targetDate,
	}
	id, err := s.store.Create(ctx, action)
	if err != nil {
		if errors.Is(err, sentinel.ErrForeignKey) {
			return nil, dErrors.New(dErrors.CodeBadRequest, "finding does not exist")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create CAPA")
	}
	action.ID = id

	if s.metrics != nil {
		s.metrics.CapaCreated.Inc()
	}
	return action, nil
}

// Close sets the action's status to CLOSED and returns the updated row.
// Closing an id that does not exist is a not-found error. Closing an
// already-closed action succeeds again and re-affirms CLOSED, keeping the
// operation retry-safe.
func (s *Service) Close(ctx context.Context, id int64) (*models.Action, error) {
	action, err := s.store.Close(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "CAPA not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to close CAPA")
	}

	if s.metrics != nil {
		s.metrics.CapaClosed.Inc()
	}
	return action, nil
}
