package model

import (
	"time"

	"github.com/google/uuid"
)

type Course struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Description  string    `db:"description" json:"description"`
	Level        string    `db:"level" json:"level"`
	InstructorID uuid.UUID `db:"instructor_id" json:"instructor_id"`
	Price        int       `db:"price" json:"price"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
