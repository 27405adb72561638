package service

import (
	"academy-service/internal/model"
	"academy-service/internal/repository"
	"context"
	"time"

	"github.com/google/uuid"
)

// ScheduleService projects the session store through role-based visibility.
// An actor with no matching sessions gets an empty slice, never an error.
type ScheduleService interface {
	ListForActor(ctx context.Context, role string, actorID uuid.UUID) ([]model.Session, error)
}

type scheduleService struct {
	sessionRepo repository.SessionRepository
	userRepo    repository.UserRepository
}

func NewScheduleService(sessionRepo repository.SessionRepository, userRepo repository.UserRepository) ScheduleService {
	return &scheduleService{sessionRepo: sessionRepo, userRepo: userRepo}
}

func (s *scheduleService) ListForActor(ctx context.Context, role string, actorID uuid.UUID) ([]model.Session, error) {
	switch role {
	case model.RoleInstructor:
		return s.sessionRepo.ListByInstructor(ctx, actorID)
	case model.RoleStudent:
		// Students also see unassigned sessions: those are open group
		// sessions without a single student reference.
		return s.sessionRepo.ListByStudentOrOpen(ctx, actorID)
	case model.RoleParent:
		childIDs, err := s.userRepo.ListChildIDs(ctx, actorID)
		if err != nil {
			return nil, err
		}
		return s.sessionRepo.ListByStudents(ctx, childIDs)
	case model.RoleAdmin:
		return s.sessionRepo.ListAll(ctx)
	default:
		return []model.Session{}, nil
	}
}

type SchedulePartition struct {
	Live     []model.Session `json:"live"`
	Upcoming []model.Session `json:"upcoming"`
	Past     []model.Session `json:"past"`
}

// Partition splits sessions into live/upcoming/past relative to one sampled
// now. Every session lands in exactly one bucket: completed, cancelled and
// elapsed sessions go to past, the strict start/end bracket is live, and
// everything else (including the joinable pre-window) is upcoming.
func Partition(sessions []model.Session, now time.Time) SchedulePartition {
	p := SchedulePartition{
		Live:     []model.Session{},
		Upcoming: []model.Session{},
		Past:     []model.Session{},
	}
	for _, session := range sessions {
		switch session.ComputePhase(now) {
		case model.PhaseLive:
			p.Live = append(p.Live, session)
		case model.PhasePast:
			p.Past = append(p.Past, session)
		default:
			p.Upcoming = append(p.Upcoming, session)
		}
	}
	return p
}

// ByDay buckets a month's sessions by day of month for calendar rendering.
// Every day of the month is present, empty days included; days are bucketed
// in UTC and input order is preserved within a day.
func ByDay(sessions []model.Session, year int, month time.Month) map[int][]model.Session {
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()

	buckets := make(map[int][]model.Session, lastDay)
	for day := 1; day <= lastDay; day++ {
		buckets[day] = []model.Session{}
	}

	for _, session := range sessions {
		start := session.StartTime.UTC()
		if start.Year() != year || start.Month() != month {
			continue
		}
		day := start.Day()
		buckets[day] = append(buckets[day], session)
	}

	return buckets
}
