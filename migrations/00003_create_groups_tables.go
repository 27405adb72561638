package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateGroupsTables, downCreateGroupsTables)
}

func upCreateGroupsTables(ctx context.Context, tx *sql.Tx) error {
	query := `
		CREATE TABLE groups (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			code TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			type TEXT NOT NULL CHECK (type IN ('group', 'individual')),
			instructor_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			course_id UUID REFERENCES courses(id) ON DELETE SET NULL,
			max_students INT NOT NULL DEFAULT 4,
			schedule TEXT NOT NULL DEFAULT 'TBD',
			monthly_fee INT NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'active')),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
		);

		CREATE TABLE group_students (
			group_id UUID NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
			student_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			joined_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
			PRIMARY KEY (group_id, student_id)
		);
	`

	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}

func downCreateGroupsTables(ctx context.Context, tx *sql.Tx) error {
	query := `
		DROP TABLE IF EXISTS group_students;
		DROP TABLE IF EXISTS groups;
	`
	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}
