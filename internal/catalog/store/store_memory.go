package store

import (
	"context"
	"sort"
	"sync"

	"sitewise/internal/catalog/models"
)

// Memory is an in-memory catalog for unit tests.
type Memory struct {
	mu        sync.RWMutex
	templates []models.ChecklistTemplate
	items     []models.ChecklistItem
}

func NewMemory() *Memory {
	return &Memory{}
}

// Seed loads catalog rows. Intended for test setup only.
func (s *Memory) Seed(templates []models.ChecklistTemplate, items []models.ChecklistItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates = append(s.templates, templates...)
	s.items = append(s.items, items...)
}

func (s *Memory) ListTemplates(_ context.Context) ([]models.ChecklistTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]models.ChecklistTemplate{}, s.templates...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Memory) ListItems(_ context.Context, templateID int64) ([]models.ChecklistItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ChecklistItem
	for _, item := range s.items {
		if item.TemplateID == templateID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
