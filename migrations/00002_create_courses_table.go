package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateCoursesTable, downCreateCoursesTable)
}

func upCreateCoursesTable(ctx context.Context, tx *sql.Tx) error {
	query := `
		CREATE TABLE courses (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			level TEXT NOT NULL DEFAULT 'Beginner',
			instructor_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			price INT NOT NULL DEFAULT 0,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
		);
	`

	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}

func downCreateCoursesTable(ctx context.Context, tx *sql.Tx) error {
	query := `DROP TABLE IF EXISTS courses;`
	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}
