package repository

import (
	"academy-service/internal/model"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memorySessionRepository is an in-process SessionRepository used by tests
// and by the dev mode that runs without Postgres. Same contract as the
// Postgres implementation, including the CAS semantics of Complete/Cancel.
type memorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*model.Session
	byKey    map[string]uuid.UUID
	order    []uuid.UUID
}

func NewMemorySessionRepository() SessionRepository {
	return &memorySessionRepository{
		sessions: make(map[uuid.UUID]*model.Session),
		byKey:    make(map[string]uuid.UUID),
	}
}

func (r *memorySessionRepository) Insert(_ context.Context, session *model.Session) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session.IdempotencyKey != nil {
		if _, exists := r.byKey[*session.IdempotencyKey]; exists {
			return nil, ErrDuplicate
		}
	}

	session.ID = uuid.New()
	session.CreatedAt = time.Now()

	stored := *session
	r.sessions[session.ID] = &stored
	r.order = append(r.order, session.ID)
	if session.IdempotencyKey != nil {
		r.byKey[*session.IdempotencyKey] = session.ID
	}

	return session, nil
}

func (r *memorySessionRepository) FindByID(_ context.Context, id uuid.UUID) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	copied := *stored
	return &copied, nil
}

func (r *memorySessionRepository) FindByIdempotencyKey(_ context.Context, key string) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byKey[key]
	if !ok {
		return nil, nil
	}
	copied := *r.sessions[id]
	return &copied, nil
}

func (r *memorySessionRepository) ListAll(ctx context.Context) ([]model.Session, error) {
	return r.filter(func(*model.Session) bool { return true }), nil
}

func (r *memorySessionRepository) ListByInstructor(_ context.Context, instructorID uuid.UUID) ([]model.Session, error) {
	return r.filter(func(s *model.Session) bool { return s.InstructorID == instructorID }), nil
}

func (r *memorySessionRepository) ListByStudentOrOpen(_ context.Context, studentID uuid.UUID) ([]model.Session, error) {
	return r.filter(func(s *model.Session) bool {
		return s.StudentID == nil || *s.StudentID == studentID
	}), nil
}

func (r *memorySessionRepository) ListByStudents(_ context.Context, studentIDs []uuid.UUID) ([]model.Session, error) {
	wanted := make(map[uuid.UUID]bool, len(studentIDs))
	for _, id := range studentIDs {
		wanted[id] = true
	}
	return r.filter(func(s *model.Session) bool {
		return s.StudentID != nil && wanted[*s.StudentID]
	}), nil
}

func (r *memorySessionRepository) ListCompletedByInstructor(_ context.Context, instructorID uuid.UUID) ([]model.Session, error) {
	return r.filter(func(s *model.Session) bool {
		return s.InstructorID == instructorID && s.Status == model.StatusCompleted
	}), nil
}

func (r *memorySessionRepository) Complete(_ context.Context, id uuid.UUID, attendance string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.sessions[id]
	if !ok || stored.Status != model.StatusScheduled {
		return nil, nil
	}
	stored.Status = model.StatusCompleted
	stored.Attendance = &attendance

	copied := *stored
	return &copied, nil
}

func (r *memorySessionRepository) Cancel(_ context.Context, id uuid.UUID) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.sessions[id]
	if !ok || stored.Status != model.StatusScheduled {
		return nil, nil
	}
	stored.Status = model.StatusCancelled

	copied := *stored
	return &copied, nil
}

func (r *memorySessionRepository) AttachMeetLink(_ context.Context, id uuid.UUID, link string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stored, ok := r.sessions[id]; ok {
		stored.MeetLink = &link
	}
	return nil
}

func (r *memorySessionRepository) filter(keep func(*model.Session) bool) []model.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []model.Session{}
	for _, id := range r.order {
		if s := r.sessions[id]; keep(s) {
			matched = append(matched, *s)
		}
	}
	// Ascending by start time; insertion order breaks ties.
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].StartTime.Before(matched[j].StartTime)
	})
	return matched
}
