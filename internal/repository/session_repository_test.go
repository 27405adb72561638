package repository_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"academy-service/internal/model"
	repo "academy-service/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func TestPostgresSessionRepository_Insert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	r := repo.NewPostgresSessionRepository(sqlxDB)

	// expect insert returning id and created_at
	id := uuid.New()
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO sessions (title, course_name, course_id, instructor_id, student_id, start_time, end_time, meet_link, status, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`)).WithArgs("T", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), model.StatusScheduled, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(id, now))

	sess := &model.Session{
		Title:        "T",
		InstructorID: uuid.New(),
		StartTime:    time.Now().Add(time.Hour),
		EndTime:      time.Now().Add(2 * time.Hour),
		Status:       model.StatusScheduled,
	}
	created, err := r.Insert(context.Background(), sess)
	require.NoError(t, err)
	require.Equal(t, id, created.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSessionRepository_FindByID_NoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	r := repo.NewPostgresSessionRepository(sqlxDB)

	mock.ExpectQuery("SELECT (.+) FROM sessions WHERE id =").WithArgs(sqlmock.AnyArg()).WillReturnError(sql.ErrNoRows)

	s, err := r.FindByID(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Nil(t, s)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSessionRepository_Complete_GuardsOnStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	r := repo.NewPostgresSessionRepository(sqlxDB)

	// Conditional update matches no row when the session left scheduled.
	mock.ExpectQuery("UPDATE sessions SET status =").
		WithArgs(model.StatusCompleted, model.AttendancePresent, sqlmock.AnyArg(), model.StatusScheduled).
		WillReturnError(sql.ErrNoRows)

	s, err := r.Complete(context.Background(), uuid.New(), model.AttendancePresent)
	require.NoError(t, err)
	require.Nil(t, s)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSessionRepository_ListByStudentOrOpen(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	r := repo.NewPostgresSessionRepository(sqlxDB)

	studentID := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "title", "course_name", "course_id", "instructor_id", "student_id", "start_time", "end_time", "meet_link", "status", "attendance", "created_at"}).
		AddRow(uuid.New(), "Own", "", nil, uuid.New(), studentID, time.Now(), time.Now().Add(time.Hour), nil, model.StatusScheduled, nil, time.Now()).
		AddRow(uuid.New(), "Open", "", nil, uuid.New(), nil, time.Now(), time.Now().Add(time.Hour), nil, model.StatusScheduled, nil, time.Now())

	mock.ExpectQuery("SELECT (.+) FROM sessions WHERE student_id = (.+) OR student_id IS NULL").
		WithArgs(studentID).
		WillReturnRows(rows)

	sessions, err := r.ListByStudentOrOpen(context.Background(), studentID)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}
