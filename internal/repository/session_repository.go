package repository

import (
	"academy-service/internal/model"
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SessionRepository is the session store contract. Lookup methods return
// (nil, nil) when no row matches; terminal transitions are compare-and-swap
// on status and return (nil, nil) when the guard does not hold.
type SessionRepository interface {
	Insert(ctx context.Context, session *model.Session) (*model.Session, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Session, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*model.Session, error)
	ListAll(ctx context.Context) ([]model.Session, error)
	ListByInstructor(ctx context.Context, instructorID uuid.UUID) ([]model.Session, error)
	ListByStudentOrOpen(ctx context.Context, studentID uuid.UUID) ([]model.Session, error)
	ListByStudents(ctx context.Context, studentIDs []uuid.UUID) ([]model.Session, error)
	ListCompletedByInstructor(ctx context.Context, instructorID uuid.UUID) ([]model.Session, error)
	Complete(ctx context.Context, id uuid.UUID, attendance string) (*model.Session, error)
	Cancel(ctx context.Context, id uuid.UUID) (*model.Session, error)
	AttachMeetLink(ctx context.Context, id uuid.UUID, link string) error
}

type postgresSessionRepository struct {
	db *sqlx.DB
}

func NewPostgresSessionRepository(db *sqlx.DB) SessionRepository {
	return &postgresSessionRepository{db: db}
}

const sessionColumns = `id, title, course_name, course_id, instructor_id, student_id, start_time, end_time, meet_link, status, attendance, created_at`

func (r *postgresSessionRepository) Insert(ctx context.Context, session *model.Session) (*model.Session, error) {
	query := `
		INSERT INTO sessions (title, course_name, course_id, instructor_id, student_id, start_time, end_time, meet_link, status, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`

	row := r.db.QueryRowxContext(ctx, query,
		session.Title, session.CourseName, session.CourseID, session.InstructorID,
		session.StudentID, session.StartTime, session.EndTime, session.MeetLink,
		session.Status, session.IdempotencyKey,
	)
	if err := row.Scan(&session.ID, &session.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}

	return session, nil
}

func (r *postgresSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	var session model.Session
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	err := r.db.GetContext(ctx, &session, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &session, nil
}

func (r *postgresSessionRepository) FindByIdempotencyKey(ctx context.Context, key string) (*model.Session, error) {
	var session model.Session
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE idempotency_key = $1`
	err := r.db.GetContext(ctx, &session, query, key)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &session, nil
}

func (r *postgresSessionRepository) ListAll(ctx context.Context) ([]model.Session, error) {
	return r.list(ctx, `SELECT `+sessionColumns+` FROM sessions ORDER BY start_time ASC, id ASC`)
}

func (r *postgresSessionRepository) ListByInstructor(ctx context.Context, instructorID uuid.UUID) ([]model.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE instructor_id = $1 ORDER BY start_time ASC, id ASC`
	return r.list(ctx, query, instructorID)
}

func (r *postgresSessionRepository) ListByStudentOrOpen(ctx context.Context, studentID uuid.UUID) ([]model.Session, error) {
	// Sessions with no student reference are open group sessions and are
	// visible to every student.
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE student_id = $1 OR student_id IS NULL ORDER BY start_time ASC, id ASC`
	return r.list(ctx, query, studentID)
}

func (r *postgresSessionRepository) ListByStudents(ctx context.Context, studentIDs []uuid.UUID) ([]model.Session, error) {
	if len(studentIDs) == 0 {
		return []model.Session{}, nil
	}

	query, args, err := sqlx.In(`SELECT `+sessionColumns+` FROM sessions WHERE student_id IN (?) ORDER BY start_time ASC, id ASC`, studentIDs)
	if err != nil {
		return nil, err
	}
	return r.list(ctx, r.db.Rebind(query), args...)
}

func (r *postgresSessionRepository) ListCompletedByInstructor(ctx context.Context, instructorID uuid.UUID) ([]model.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE instructor_id = $1 AND status = $2 ORDER BY start_time ASC, id ASC`
	return r.list(ctx, query, instructorID, model.StatusCompleted)
}

func (r *postgresSessionRepository) Complete(ctx context.Context, id uuid.UUID, attendance string) (*model.Session, error) {
	query := `
		UPDATE sessions SET status = $1, attendance = $2
		WHERE id = $3 AND status = $4
		RETURNING ` + sessionColumns + `
	`

	var session model.Session
	err := r.db.GetContext(ctx, &session, query, model.StatusCompleted, attendance, id, model.StatusScheduled)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &session, nil
}

func (r *postgresSessionRepository) Cancel(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	query := `
		UPDATE sessions SET status = $1
		WHERE id = $2 AND status = $3
		RETURNING ` + sessionColumns + `
	`

	var session model.Session
	err := r.db.GetContext(ctx, &session, query, model.StatusCancelled, id, model.StatusScheduled)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &session, nil
}

func (r *postgresSessionRepository) AttachMeetLink(ctx context.Context, id uuid.UUID, link string) error {
	query := `UPDATE sessions SET meet_link = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, link, id)
	return err
}

func (r *postgresSessionRepository) list(ctx context.Context, query string, args ...interface{}) ([]model.Session, error) {
	var sessions []model.Session
	err := r.db.SelectContext(ctx, &sessions, query, args...)
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []model.Session{}
	}
	return sessions, nil
}
