package service

import (
	"academy-service/internal/model"
	"academy-service/internal/repository"
	"context"
)

type AcademyStats struct {
	TotalUsers        int `json:"total_users"`
	TotalStudents     int `json:"total_students"`
	TotalInstructors  int `json:"total_instructors"`
	TotalParents      int `json:"total_parents"`
	TotalSessions     int `json:"total_sessions"`
	CompletedSessions int `json:"completed_sessions"`
	ScheduledSessions int `json:"scheduled_sessions"`
	CancelledSessions int `json:"cancelled_sessions"`
	TotalCourses      int `json:"total_courses"`
	MonthlyRevenue    int `json:"monthly_revenue"`
}

type StatsService interface {
	ComputeStats(ctx context.Context) (*AcademyStats, error)
}

type statsService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	courseRepo  repository.CourseRepository
	groupRepo   repository.GroupRepository
}

func NewStatsService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, courseRepo repository.CourseRepository, groupRepo repository.GroupRepository) StatsService {
	return &statsService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		courseRepo:  courseRepo,
		groupRepo:   groupRepo,
	}
}

func (s *statsService) ComputeStats(ctx context.Context) (*AcademyStats, error) {
	stats := &AcademyStats{}

	users, err := s.userRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalUsers = len(users)
	for _, u := range users {
		switch u.Role {
		case model.RoleStudent:
			stats.TotalStudents++
		case model.RoleInstructor:
			stats.TotalInstructors++
		case model.RoleParent:
			stats.TotalParents++
		}
	}

	sessions, err := s.sessionRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalSessions = len(sessions)
	for _, session := range sessions {
		switch session.Status {
		case model.StatusCompleted:
			stats.CompletedSessions++
		case model.StatusScheduled:
			stats.ScheduledSessions++
		case model.StatusCancelled:
			stats.CancelledSessions++
		}
	}

	courses, err := s.courseRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalCourses = len(courses)

	// Recurring revenue from active group memberships.
	groups, err := s.groupRepo.List(ctx, repository.GroupFilter{Status: model.GroupStatusActive})
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		stats.MonthlyRevenue += g.MonthlyFee * len(g.StudentIDs)
	}

	return stats, nil
}
