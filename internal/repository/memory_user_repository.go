package repository

import (
	"academy-service/internal/model"
	"context"
	"sync"

	"github.com/google/uuid"
)

type memoryUserRepository struct {
	mu    sync.RWMutex
	users []model.User
}

// NewMemoryUserRepository seeds an in-process actor directory.
func NewMemoryUserRepository(users []model.User) UserRepository {
	return &memoryUserRepository{users: users}
}

func (r *memoryUserRepository) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.users {
		if r.users[i].ID == id {
			copied := r.users[i]
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepository) ListAll(_ context.Context) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]model.User{}, r.users...), nil
}

func (r *memoryUserRepository) ListByRole(_ context.Context, role string) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []model.User{}
	for _, u := range r.users {
		if u.Role == role {
			matched = append(matched, u)
		}
	}
	return matched, nil
}

func (r *memoryUserRepository) ListChildIDs(_ context.Context, parentID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []uuid.UUID
	for _, u := range r.users {
		if u.ParentID != nil && *u.ParentID == parentID {
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}
