package repository

import (
	"academy-service/internal/model"
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type CourseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Course, error)
	ListAll(ctx context.Context) ([]model.Course, error)
	ListByInstructor(ctx context.Context, instructorID uuid.UUID) ([]model.Course, error)
}

type postgresCourseRepository struct {
	db *sqlx.DB
}

func NewPostgresCourseRepository(db *sqlx.DB) CourseRepository {
	return &postgresCourseRepository{db: db}
}

const courseColumns = `id, name, description, level, instructor_id, price, created_at`

func (r *postgresCourseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	var course model.Course
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	err := r.db.GetContext(ctx, &course, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &course, nil
}

func (r *postgresCourseRepository) ListAll(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.SelectContext(ctx, &courses, `SELECT `+courseColumns+` FROM courses ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []model.Course{}
	}
	return courses, nil
}

func (r *postgresCourseRepository) ListByInstructor(ctx context.Context, instructorID uuid.UUID) ([]model.Course, error) {
	var courses []model.Course
	query := `SELECT ` + courseColumns + ` FROM courses WHERE instructor_id = $1 ORDER BY name ASC`
	err := r.db.SelectContext(ctx, &courses, query, instructorID)
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []model.Course{}
	}
	return courses, nil
}
