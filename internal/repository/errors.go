package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrDuplicate reports an insert rejected by a unique constraint.
	ErrDuplicate = errors.New("row already exists")
	// ErrGroupCapacity reports a membership insert rejected because the
	// group already holds max_students members.
	ErrGroupCapacity = errors.New("group capacity reached")
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
