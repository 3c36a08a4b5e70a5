package service

import (
	"context"

	"sitewise/internal/catalog/models"
	dErrors "sitewise/pkg/domain-errors"
)

// Store reads the checklist catalog.
type Store interface {
	ListTemplates(ctx context.Context) ([]models.ChecklistTemplate, error)
	ListItems(ctx context.Context, templateID int64) ([]models.ChecklistItem, error)
}

// Service is the read-only accessor for templates and their items.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) ListTemplates(ctx context.Context) ([]models.ChecklistTemplate, error) {
	templates, err := s.store.ListTemplates(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list templates")
	}
	return templates, nil
}

func (s *Service) ListItems(ctx context.Context, templateID int64) ([]models.ChecklistItem, error) {
	items, err := s.store.ListItems(ctx, templateID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list checklist items")
	}
	return items, nil
}
