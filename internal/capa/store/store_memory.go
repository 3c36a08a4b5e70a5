package store

import (
	"context"
	"sync"

	"sitewise/internal/capa/models"
	"sitewise/pkg/platform/sentinel"
)

// Memory is an in-memory CAPA store for unit tests. Finding references are
// checked against a seeded set, mirroring the foreign key.
type Memory struct {
	mu       sync.Mutex
	nextID   int64
	actions  map[int64]models.Action
	findings map[int64]bool
}

func NewMemory() *Memory {
	return &Memory{
		actions:  make(map[int64]models.Action),
		findings: make(map[int64]bool),
	}
}

// SeedFinding registers a finding id that actions may reference.
func (s *Memory) SeedFinding(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findings[id] = true
}

func (s *Memory) Create(_ context.Context, action *models.Action) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.findings[action.FindingID] {
		return 0, sentinel.ErrForeignKey
	}
	s.nextID++
	stored := *action
	stored.ID = s.nextID
	s.actions[stored.ID] = stored
	return stored.ID, nil
}

func (s *Memory) Close(_ context.Context, id int64) (*models.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	action, ok := s.actions[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	action.Status = models.StatusClosed
	s.actions[id] = action
	copied := action
	return &copied, nil
}

// Count reports how many actions exist.
func (s *Memory) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.actions)
}
