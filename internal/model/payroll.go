package model

import "github.com/google/uuid"

// PayrollSummary is a read-side aggregate over an instructor's completed
// sessions. The rate is flat per session; duration is not weighted.
type PayrollSummary struct {
	InstructorID  uuid.UUID `json:"instructor_id"`
	HourlyRate    int       `json:"hourly_rate"`
	TotalSessions int       `json:"total_sessions"`
	TotalAmount   int       `json:"total_amount"`
	History       []Session `json:"history"`
}
