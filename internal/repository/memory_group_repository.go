package repository

import (
	"academy-service/internal/model"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryGroupRepository struct {
	mu     sync.RWMutex
	groups map[uuid.UUID]*model.Group
	order  []uuid.UUID
}

func NewMemoryGroupRepository() GroupRepository {
	return &memoryGroupRepository{groups: make(map[uuid.UUID]*model.Group)}
}

func containsID(ids []uuid.UUID, want uuid.UUID) bool {
	for _, id := range ids {
		if id == want {
			return true
		}
	}
	return false
}

func (r *memoryGroupRepository) Insert(_ context.Context, group *model.Group) (*model.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	group.ID = uuid.New()
	group.CreatedAt = time.Now()
	if group.StudentIDs == nil {
		group.StudentIDs = []uuid.UUID{}
	}

	stored := *group
	stored.StudentIDs = append([]uuid.UUID{}, group.StudentIDs...)
	r.groups[group.ID] = &stored
	r.order = append(r.order, group.ID)

	return group, nil
}

func (r *memoryGroupRepository) FindByID(_ context.Context, id uuid.UUID) (*model.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.groups[id]
	if !ok {
		return nil, nil
	}
	copied := *stored
	copied.StudentIDs = append([]uuid.UUID{}, stored.StudentIDs...)
	return &copied, nil
}

func (r *memoryGroupRepository) List(_ context.Context, filter GroupFilter) ([]model.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []model.Group{}
	for _, id := range r.order {
		g := r.groups[id]
		if filter.InstructorID != nil && g.InstructorID != *filter.InstructorID {
			continue
		}
		if filter.StudentID != nil && !containsID(g.StudentIDs, *filter.StudentID) {
			continue
		}
		if filter.Type != "" && g.Type != filter.Type {
			continue
		}
		if filter.Status != "" && g.Status != filter.Status {
			continue
		}
		copied := *g
		copied.StudentIDs = append([]uuid.UUID{}, g.StudentIDs...)
		matched = append(matched, copied)
	}
	return matched, nil
}

func (r *memoryGroupRepository) Update(_ context.Context, group *model.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.groups[group.ID]
	if !ok {
		return nil
	}
	stored.Name = group.Name
	stored.MaxStudents = group.MaxStudents
	stored.Schedule = group.Schedule
	stored.MonthlyFee = group.MonthlyFee
	stored.Status = group.Status
	return nil
}

func (r *memoryGroupRepository) CountByType(_ context.Context, groupType string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, g := range r.groups {
		if g.Type == groupType {
			count++
		}
	}
	return count, nil
}

func (r *memoryGroupRepository) AddStudent(_ context.Context, groupID, studentID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.groups[groupID]
	if !ok {
		return nil
	}
	for _, id := range stored.StudentIDs {
		if id == studentID {
			return ErrDuplicate
		}
	}
	if len(stored.StudentIDs) >= stored.MaxStudents {
		return ErrGroupCapacity
	}
	stored.StudentIDs = append(stored.StudentIDs, studentID)
	return nil
}

func (r *memoryGroupRepository) RemoveStudent(_ context.Context, groupID, studentID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.groups[groupID]
	if !ok {
		return nil
	}
	kept := stored.StudentIDs[:0]
	for _, id := range stored.StudentIDs {
		if id != studentID {
			kept = append(kept, id)
		}
	}
	stored.StudentIDs = kept
	return nil
}
