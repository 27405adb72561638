package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleInstructor = "instructor"
	RoleStudent    = "student"
	RoleParent     = "parent"
	RoleAdmin      = "admin"
)

type User struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Email          string    `db:"email" json:"email"`
	Name           string    `db:"name" json:"name"`
	AvatarURL      *string   `db:"avatar_url" json:"avatar_url,omitempty"`
	Role           string    `db:"role" json:"role"`
	Specialization *string   `db:"specialization" json:"specialization,omitempty"`
	ParentID       *uuid.UUID `db:"parent_id" json:"parent_id,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
