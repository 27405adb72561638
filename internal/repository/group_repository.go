package repository

import (
	"academy-service/internal/model"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type GroupFilter struct {
	InstructorID *uuid.UUID
	StudentID    *uuid.UUID
	Type         string
	Status       string
}

type GroupRepository interface {
	Insert(ctx context.Context, group *model.Group) (*model.Group, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Group, error)
	List(ctx context.Context, filter GroupFilter) ([]model.Group, error)
	Update(ctx context.Context, group *model.Group) error
	CountByType(ctx context.Context, groupType string) (int, error)
	AddStudent(ctx context.Context, groupID, studentID uuid.UUID) error
	RemoveStudent(ctx context.Context, groupID, studentID uuid.UUID) error
}

type postgresGroupRepository struct {
	db *sqlx.DB
}

func NewPostgresGroupRepository(db *sqlx.DB) GroupRepository {
	return &postgresGroupRepository{db: db}
}

const groupColumns = `id, code, name, type, instructor_id, course_id, max_students, schedule, monthly_fee, status, created_at`

func (r *postgresGroupRepository) Insert(ctx context.Context, group *model.Group) (*model.Group, error) {
	query := `
		INSERT INTO groups (code, name, type, instructor_id, course_id, max_students, schedule, monthly_fee, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	row := r.db.QueryRowxContext(ctx, query,
		group.Code, group.Name, group.Type, group.InstructorID, group.CourseID,
		group.MaxStudents, group.Schedule, group.MonthlyFee, group.Status,
	)
	if err := row.Scan(&group.ID, &group.CreatedAt); err != nil {
		return nil, err
	}

	group.StudentIDs = []uuid.UUID{}
	return group, nil
}

func (r *postgresGroupRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Group, error) {
	var group model.Group
	query := `SELECT ` + groupColumns + ` FROM groups WHERE id = $1`
	err := r.db.GetContext(ctx, &group, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if err := r.loadStudents(ctx, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *postgresGroupRepository) List(ctx context.Context, filter GroupFilter) ([]model.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE 1=1`
	args := []interface{}{}
	argID := 1

	if filter.InstructorID != nil {
		query += fmt.Sprintf(" AND instructor_id = $%d", argID)
		args = append(args, *filter.InstructorID)
		argID++
	}
	if filter.StudentID != nil {
		query += fmt.Sprintf(" AND EXISTS (SELECT 1 FROM group_students gs WHERE gs.group_id = groups.id AND gs.student_id = $%d)", argID)
		args = append(args, *filter.StudentID)
		argID++
	}
	if filter.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", argID)
		args = append(args, filter.Type)
		argID++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, filter.Status)
		argID++
	}
	query += ` ORDER BY created_at ASC`

	var groups []model.Group
	if err := r.db.SelectContext(ctx, &groups, query, args...); err != nil {
		return nil, err
	}
	if groups == nil {
		groups = []model.Group{}
	}

	for i := range groups {
		if err := r.loadStudents(ctx, &groups[i]); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

func (r *postgresGroupRepository) Update(ctx context.Context, group *model.Group) error {
	query := `
		UPDATE groups SET name = $1, max_students = $2, schedule = $3, monthly_fee = $4, status = $5
		WHERE id = $6
	`
	_, err := r.db.ExecContext(ctx, query,
		group.Name, group.MaxStudents, group.Schedule, group.MonthlyFee, group.Status, group.ID,
	)
	return err
}

func (r *postgresGroupRepository) CountByType(ctx context.Context, groupType string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM groups WHERE type = $1`, groupType)
	return count, err
}

// AddStudent inserts a membership row while holding a lock on the group
// row, so concurrent adds cannot push a group past max_students.
func (r *postgresGroupRepository) AddStudent(ctx context.Context, groupID, studentID uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var maxStudents int
	if err := tx.GetContext(ctx, &maxStudents, `SELECT max_students FROM groups WHERE id = $1 FOR UPDATE`, groupID); err != nil {
		return err
	}

	var members int
	if err := tx.GetContext(ctx, &members, `SELECT COUNT(*) FROM group_students WHERE group_id = $1`, groupID); err != nil {
		return err
	}
	if members >= maxStudents {
		return ErrGroupCapacity
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO group_students (group_id, student_id) VALUES ($1, $2)`, groupID, studentID); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}

	return tx.Commit()
}

func (r *postgresGroupRepository) RemoveStudent(ctx context.Context, groupID, studentID uuid.UUID) error {
	query := `DELETE FROM group_students WHERE group_id = $1 AND student_id = $2`
	_, err := r.db.ExecContext(ctx, query, groupID, studentID)
	return err
}

func (r *postgresGroupRepository) loadStudents(ctx context.Context, group *model.Group) error {
	var ids []uuid.UUID
	query := `SELECT student_id FROM group_students WHERE group_id = $1 ORDER BY joined_at ASC`
	if err := r.db.SelectContext(ctx, &ids, query, group.ID); err != nil {
		return err
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	group.StudentIDs = ids
	return nil
}
