package repository

import (
	"academy-service/internal/model"
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// UserRepository is the actor directory: role lookups and the
// parent-to-children mapping used for schedule visibility.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	ListAll(ctx context.Context) ([]model.User, error)
	ListByRole(ctx context.Context, role string) ([]model.User, error)
	ListChildIDs(ctx context.Context, parentID uuid.UUID) ([]uuid.UUID, error)
}

type postgresUserRepository struct {
	db *sqlx.DB
}

func NewPostgresUserRepository(db *sqlx.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

const userColumns = `id, email, name, avatar_url, role, specialization, parent_id, created_at, updated_at`

func (r *postgresUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	err := r.db.GetContext(ctx, &user, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

func (r *postgresUserRepository) ListAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

func (r *postgresUserRepository) ListByRole(ctx context.Context, role string) ([]model.User, error) {
	var users []model.User
	query := `SELECT ` + userColumns + ` FROM users WHERE role = $1 ORDER BY created_at ASC`
	err := r.db.SelectContext(ctx, &users, query, role)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

func (r *postgresUserRepository) ListChildIDs(ctx context.Context, parentID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	query := `SELECT id FROM users WHERE parent_id = $1`
	err := r.db.SelectContext(ctx, &ids, query, parentID)
	if err != nil {
		return nil, err
	}
	return ids, nil
}
