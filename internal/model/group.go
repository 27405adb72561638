package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	GroupTypeGroup      = "group"
	GroupTypeIndividual = "individual"
)

const (
	GroupStatusPending = "pending"
	GroupStatusActive  = "active"
)

// Group binds a cohort of students to an instructor and a course,
// with a monthly fee. Individual groups hold exactly one student.
type Group struct {
	ID           uuid.UUID   `db:"id" json:"id"`
	Code         string      `db:"code" json:"code"`
	Name         string      `db:"name" json:"name"`
	Type         string      `db:"type" json:"type"`
	InstructorID uuid.UUID   `db:"instructor_id" json:"instructor_id"`
	CourseID     *uuid.UUID  `db:"course_id" json:"course_id,omitempty"`
	MaxStudents  int         `db:"max_students" json:"max_students"`
	StudentIDs   []uuid.UUID `db:"-" json:"student_ids"`
	Schedule     string      `db:"schedule" json:"schedule"`
	MonthlyFee   int         `db:"monthly_fee" json:"monthly_fee"`
	Status       string      `db:"status" json:"status"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
}

// GroupDetails is a Group enriched with directory lookups for display.
type GroupDetails struct {
	Group
	InstructorName string `json:"instructor_name"`
	CourseDisplay  string `json:"course_name"`
	Occupancy      string `json:"occupancy"`
}
