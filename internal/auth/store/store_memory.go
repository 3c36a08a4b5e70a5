package store

import (
	"context"
	"sync"
	"time"

	"sitewise/internal/auth/models"
	"sitewise/pkg/platform/sentinel"
)

// Memory is an in-memory user store for unit tests and local runs.
type Memory struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]*models.User
}

func NewMemory() *Memory {
	return &Memory{users: make(map[int64]*models.User)}
}

func (s *Memory) CreateUser(_ context.Context, user *models.User) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return 0, sentinel.ErrConflict
		}
	}
	s.nextID++
	stored := *user
	stored.ID = s.nextID
	stored.CreatedAt = time.Now()
	s.users[stored.ID] = &stored
	return stored.ID, nil
}

func (s *Memory) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, sentinel.ErrNotFound
}
