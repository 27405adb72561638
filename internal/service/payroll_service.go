package service

import (
	"academy-service/internal/model"
	"academy-service/internal/repository"
	"context"

	"github.com/google/uuid"
)

type PayrollService interface {
	ComputePayroll(ctx context.Context, instructorID uuid.UUID, hourlyRate int) (*model.PayrollSummary, error)
}

type payrollService struct {
	sessionRepo repository.SessionRepository
}

func NewPayrollService(sessionRepo repository.SessionRepository) PayrollService {
	return &payrollService{sessionRepo: sessionRepo}
}

// ComputePayroll bills a flat rate per completed session; session duration
// is not weighted. Pure read-side aggregation, no mutation.
func (s *payrollService) ComputePayroll(ctx context.Context, instructorID uuid.UUID, hourlyRate int) (*model.PayrollSummary, error) {
	completed, err := s.sessionRepo.ListCompletedByInstructor(ctx, instructorID)
	if err != nil {
		return nil, err
	}

	return &model.PayrollSummary{
		InstructorID:  instructorID,
		HourlyRate:    hourlyRate,
		TotalSessions: len(completed),
		TotalAmount:   len(completed) * hourlyRate,
		History:       completed,
	}, nil
}
