package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
)

// JoinWindow is how long before start a participant may already join.
const JoinWindow = 60 * time.Minute

type Session struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Title        string     `db:"title" json:"title"`
	CourseName   string     `db:"course_name" json:"course_name"`
	CourseID     *uuid.UUID `db:"course_id" json:"course_id,omitempty"`
	InstructorID uuid.UUID  `db:"instructor_id" json:"instructor_id"`
	StudentID    *uuid.UUID `db:"student_id" json:"student_id,omitempty"`
	StartTime    time.Time  `db:"start_time" json:"start_time"`
	EndTime      time.Time  `db:"end_time" json:"end_time"`
	MeetLink     *string    `db:"meet_link" json:"meet_link,omitempty"`
	Status       string     `db:"status" json:"status"`
	Attendance   *string    `db:"attendance" json:"attendance,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`

	// IdempotencyKey dedupes retried scheduling requests. Write-only;
	// never returned to callers.
	IdempotencyKey *string `db:"idempotency_key" json:"-"`
}

// Phase is the derived temporal state of a session. It is never persisted;
// it is recomputed from (status, start, end, now) on every query.
type Phase string

const (
	PhaseUpcoming Phase = "upcoming"
	PhaseJoinable Phase = "joinable"
	PhaseLive     Phase = "live"
	PhasePast     Phase = "past"
)

// ComputePhase classifies a session relative to now. Completed and cancelled
// sessions are always past, whatever their time window says.
func (s *Session) ComputePhase(now time.Time) Phase {
	if s.Status == StatusCompleted || s.Status == StatusCancelled {
		return PhasePast
	}
	if now.After(s.EndTime) {
		return PhasePast
	}
	if !now.Before(s.StartTime) {
		return PhaseLive
	}
	if !now.Before(s.StartTime.Add(-JoinWindow)) {
		return PhaseJoinable
	}
	return PhaseUpcoming
}

// IsJoinable reports whether a join affordance should be offered: from
// JoinWindow before start until end, for scheduled sessions only.
func (s *Session) IsJoinable(now time.Time) bool {
	p := s.ComputePhase(now)
	return p == PhaseLive || p == PhaseJoinable
}

// TimeToStart returns the remaining duration until start. ok is false once
// the session has started or passed; formatting is left to callers.
func (s *Session) TimeToStart(now time.Time) (d time.Duration, ok bool) {
	if !now.Before(s.StartTime) {
		return 0, false
	}
	return s.StartTime.Sub(now), true
}
