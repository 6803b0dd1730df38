package database

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/storefront/internal/models"
)

// MemoryUserStore keeps users in process memory. It enforces the same email
// uniqueness as the postgres schema and is used for local runs and tests.
type MemoryUserStore struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*models.User
	byEmail map[string]uuid.UUID
}

// NewMemoryUserStore returns an empty MemoryUserStore.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		byID:    make(map[uuid.UUID]*models.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

// Create inserts a copy of user, assigning an ID and timestamps.
func (s *MemoryUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[user.Email]; taken {
		return ErrEmailTaken
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	s.byID[user.ID] = &stored
	s.byEmail[user.Email] = user.ID
	return nil
}

// FindByID returns a copy of the user with the given id.
func (s *MemoryUserStore) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	found := *user
	return &found, nil
}

// FindByEmail returns a copy of the user with the given email.
func (s *MemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	found := *s.byID[id]
	return &found, nil
}

// Update applies upd to the stored user.
func (s *MemoryUserStore) Update(_ context.Context, id uuid.UUID, upd models.UserUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[id]
	if !ok {
		return ErrUserNotFound
	}
	if upd.IsEmpty() {
		return nil
	}

	if upd.Email != nil && *upd.Email != user.Email {
		if _, taken := s.byEmail[*upd.Email]; taken {
			return ErrEmailTaken
		}
		delete(s.byEmail, user.Email)
		s.byEmail[*upd.Email] = id
	}

	upd.Apply(user)
	user.UpdatedAt = time.Now()
	return nil
}

// Len reports the number of stored users.
func (s *MemoryUserStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
