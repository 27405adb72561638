package service

import (
	"academy-service/internal/events"
	"academy-service/internal/meet"
	"academy-service/internal/model"
	"academy-service/internal/repository"
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInterval   = errors.New("session end time must be after start time")
	ErrSessionNotFound   = errors.New("session not found")
	ErrIllegalTransition = errors.New("session is already completed or cancelled")
	ErrInvalidAttendance = errors.New("attendance must be present or absent")
)

type ScheduleInput struct {
	Title          string
	CourseName     string
	CourseID       *uuid.UUID
	InstructorID   uuid.UUID
	StudentID      *uuid.UUID
	StartTime      time.Time
	EndTime        time.Time
	IdempotencyKey *string
}

type SessionService interface {
	Schedule(ctx context.Context, input ScheduleInput) (*model.Session, error)
	MarkAttendance(ctx context.Context, sessionID uuid.UUID, outcome string) (*model.Session, error)
	Cancel(ctx context.Context, sessionID uuid.UUID) (*model.Session, error)
	Get(ctx context.Context, sessionID uuid.UUID) (*model.Session, error)
}

type sessionService struct {
	sessionRepo repository.SessionRepository
	provisioner meet.Provisioner
	publisher   events.EventPublisher

	// Serializes the terminal transitions per session id so a late
	// mark-attendance cannot race a concurrent cancel.
	locks sync.Map
}

func NewSessionService(repo repository.SessionRepository, provisioner meet.Provisioner, pub events.EventPublisher) SessionService {
	return &sessionService{
		sessionRepo: repo,
		provisioner: provisioner,
		publisher:   pub,
	}
}

func (s *sessionService) lock(id uuid.UUID) func() {
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *sessionService) Schedule(ctx context.Context, input ScheduleInput) (*model.Session, error) {
	if !input.EndTime.After(input.StartTime) {
		return nil, ErrInvalidInterval
	}

	if input.IdempotencyKey != nil {
		existing, err := s.sessionRepo.FindByIdempotencyKey(ctx, *input.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	// Provisioning is best effort: a flaky meeting system must not block
	// scheduling. No store lock is held while this call is in flight.
	var meetLink *string
	link, provErr := s.provisioner.CreateMeeting(ctx, input.Title, input.StartTime, input.EndTime)
	if provErr != nil {
		slog.WarnContext(ctx, "Meeting link provisioning failed, scheduling with placeholder",
			slog.String("title", input.Title), slog.String("error", provErr.Error()))
	} else {
		meetLink = &link
	}

	session := &model.Session{
		Title:          input.Title,
		CourseName:     input.CourseName,
		CourseID:       input.CourseID,
		InstructorID:   input.InstructorID,
		StudentID:      input.StudentID,
		StartTime:      input.StartTime,
		EndTime:        input.EndTime,
		MeetLink:       meetLink,
		Status:         model.StatusScheduled,
		IdempotencyKey: input.IdempotencyKey,
	}

	created, err := s.sessionRepo.Insert(ctx, session)
	if err != nil {
		// A concurrent request with the same key can win the insert after
		// our lookup missed; replay its session instead of failing.
		if input.IdempotencyKey != nil && errors.Is(err, repository.ErrDuplicate) {
			existing, findErr := s.sessionRepo.FindByIdempotencyKey(ctx, *input.IdempotencyKey)
			if findErr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}

	if provErr != nil {
		placeholder := meet.Placeholder(created.ID.String())
		if err := s.sessionRepo.AttachMeetLink(ctx, created.ID, placeholder); err != nil {
			slog.ErrorContext(ctx, "Failed to store placeholder link", slog.String("session_id", created.ID.String()), slog.String("error", err.Error()))
		}
		created.MeetLink = &placeholder
		go s.publisher.PublishLinkPending(created)
	}

	go s.publisher.PublishSessionScheduled(created)

	return created, nil
}

func (s *sessionService) MarkAttendance(ctx context.Context, sessionID uuid.UUID, outcome string) (*model.Session, error) {
	if outcome != model.AttendancePresent && outcome != model.AttendanceAbsent {
		return nil, ErrInvalidAttendance
	}

	unlock := s.lock(sessionID)
	defer unlock()

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.Status != model.StatusScheduled {
		return nil, ErrIllegalTransition
	}

	updated, err := s.sessionRepo.Complete(ctx, sessionID, outcome)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// Status changed between the read and the conditional update.
		return nil, ErrIllegalTransition
	}

	// Terminal state reached; late callers are rejected by the store guard,
	// so the lock entry is no longer needed.
	s.locks.Delete(sessionID)

	go s.publisher.PublishSessionCompleted(updated)

	return updated, nil
}

func (s *sessionService) Cancel(ctx context.Context, sessionID uuid.UUID) (*model.Session, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.Status != model.StatusScheduled {
		return nil, ErrIllegalTransition
	}

	updated, err := s.sessionRepo.Cancel(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrIllegalTransition
	}

	s.locks.Delete(sessionID)

	go s.publisher.PublishSessionCancelled(updated)

	return updated, nil
}

func (s *sessionService) Get(ctx context.Context, sessionID uuid.UUID) (*model.Session, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}
