package repository

import (
	"academy-service/internal/model"
	"context"
	"sync"

	"github.com/google/uuid"
)

type memoryCourseRepository struct {
	mu      sync.RWMutex
	courses []model.Course
}

func NewMemoryCourseRepository(courses []model.Course) CourseRepository {
	return &memoryCourseRepository{courses: courses}
}

func (r *memoryCourseRepository) FindByID(_ context.Context, id uuid.UUID) (*model.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.courses {
		if r.courses[i].ID == id {
			copied := r.courses[i]
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memoryCourseRepository) ListAll(_ context.Context) ([]model.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]model.Course{}, r.courses...), nil
}

func (r *memoryCourseRepository) ListByInstructor(_ context.Context, instructorID uuid.UUID) ([]model.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []model.Course{}
	for _, course := range r.courses {
		if course.InstructorID == instructorID {
			matched = append(matched, course)
		}
	}
	return matched, nil
}
