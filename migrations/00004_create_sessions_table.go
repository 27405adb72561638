package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateSessionsTable, downCreateSessionsTable)
}

func upCreateSessionsTable(ctx context.Context, tx *sql.Tx) error {
	query := `
		CREATE TABLE sessions (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			title TEXT NOT NULL,
			course_name TEXT NOT NULL DEFAULT '',
			course_id UUID REFERENCES courses(id) ON DELETE SET NULL,
			instructor_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			student_id UUID REFERENCES users(id) ON DELETE SET NULL,
			start_time TIMESTAMP WITH TIME ZONE NOT NULL,
			end_time TIMESTAMP WITH TIME ZONE NOT NULL,
			meet_link TEXT,
			status TEXT NOT NULL DEFAULT 'scheduled' CHECK (status IN ('scheduled', 'completed', 'cancelled')),
			attendance TEXT CHECK (attendance IN ('present', 'absent')),
			idempotency_key TEXT UNIQUE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
			CHECK (end_time > start_time),
			CHECK ((attendance IS NOT NULL) = (status = 'completed'))
		);

		CREATE INDEX idx_sessions_instructor ON sessions(instructor_id, start_time);
		CREATE INDEX idx_sessions_student ON sessions(student_id, start_time);
	`

	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}

func downCreateSessionsTable(ctx context.Context, tx *sql.Tx) error {
	query := `DROP TABLE IF EXISTS sessions;`
	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}
