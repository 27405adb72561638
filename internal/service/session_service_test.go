package service_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"academy-service/internal/events"
	"academy-service/internal/meet"
	"academy-service/internal/model"
	"academy-service/internal/repository"
	"academy-service/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fixedProvisioner struct {
	link string
}

func (p fixedProvisioner) CreateMeeting(context.Context, string, time.Time, time.Time) (string, error) {
	return p.link, nil
}

type failingProvisioner struct{}

func (failingProvisioner) CreateMeeting(context.Context, string, time.Time, time.Time) (string, error) {
	return "", meet.ErrProvisioningUnavailable
}

type recordingPublisher struct {
	mu        sync.Mutex
	scheduled int
	completed int
	cancelled int
	pending   int
}

func (p *recordingPublisher) PublishSessionScheduled(*model.Session) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scheduled++
	return nil
}

func (p *recordingPublisher) PublishSessionCompleted(*model.Session) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completed++
	return nil
}

func (p *recordingPublisher) PublishSessionCancelled(*model.Session) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelled++
	return nil
}

func (p *recordingPublisher) PublishLinkPending(*model.Session) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending++
	return nil
}

func newTestService(provisioner meet.Provisioner) (service.SessionService, repository.SessionRepository) {
	repo := repository.NewMemorySessionRepository()
	svc := service.NewSessionService(repo, provisioner, events.NoopPublisher{})
	return svc, repo
}

func validInput() service.ScheduleInput {
	now := time.Now()
	return service.ScheduleInput{
		Title:        "Tactical Patterns Workshop",
		CourseName:   "Intermediate Tactics",
		InstructorID: uuid.New(),
		StartTime:    now.Add(time.Hour),
		EndTime:      now.Add(2 * time.Hour),
	}
}

func TestSchedule_Success(t *testing.T) {
	svc, _ := newTestService(fixedProvisioner{link: "https://meet.example.com/abc"})

	session, err := svc.Schedule(context.Background(), validInput())
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, session.ID)
	require.Equal(t, model.StatusScheduled, session.Status)
	require.Nil(t, session.Attendance)
	require.NotNil(t, session.MeetLink)
	require.Equal(t, "https://meet.example.com/abc", *session.MeetLink)
}

func TestSchedule_InvalidIntervalNotPersisted(t *testing.T) {
	svc, repo := newTestService(fixedProvisioner{link: "x"})

	input := validInput()
	input.EndTime = input.StartTime
	_, err := svc.Schedule(context.Background(), input)
	require.ErrorIs(t, err, service.ErrInvalidInterval)

	input.EndTime = input.StartTime.Add(-time.Minute)
	_, err = svc.Schedule(context.Background(), input)
	require.ErrorIs(t, err, service.ErrInvalidInterval)

	all, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestSchedule_ProvisionerFailureFallsBackToPlaceholder(t *testing.T) {
	repo := repository.NewMemorySessionRepository()
	pub := &recordingPublisher{}
	svc := service.NewSessionService(repo, failingProvisioner{}, pub)

	session, err := svc.Schedule(context.Background(), validInput())
	require.NoError(t, err)
	require.Equal(t, model.StatusScheduled, session.Status)
	require.NotNil(t, session.MeetLink)
	require.True(t, meet.IsPlaceholder(*session.MeetLink))

	stored, err := repo.FindByID(context.Background(), session.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.MeetLink)
	require.True(t, meet.IsPlaceholder(*stored.MeetLink))
}

func TestSchedule_IdempotencyKeyReplay(t *testing.T) {
	svc, repo := newTestService(fixedProvisioner{link: "x"})

	key := "retry-token-1"
	input := validInput()
	input.IdempotencyKey = &key

	first, err := svc.Schedule(context.Background(), input)
	require.NoError(t, err)

	second, err := svc.Schedule(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	all, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
}

// staleLookupRepo misses the first idempotency-key lookup, as happens when
// the lookup lands before a competing insert with the same key commits.
type staleLookupRepo struct {
	repository.SessionRepository
	missed atomic.Bool
}

func (r *staleLookupRepo) FindByIdempotencyKey(ctx context.Context, key string) (*model.Session, error) {
	if r.missed.CompareAndSwap(false, true) {
		return nil, nil
	}
	return r.SessionRepository.FindByIdempotencyKey(ctx, key)
}

func TestSchedule_DuplicateKeyInsertReplaysWinner(t *testing.T) {
	mem := repository.NewMemorySessionRepository()
	key := "retry-token-2"
	input := validInput()
	input.IdempotencyKey = &key

	winner, err := mem.Insert(context.Background(), &model.Session{
		Title:          input.Title,
		InstructorID:   input.InstructorID,
		StartTime:      input.StartTime,
		EndTime:        input.EndTime,
		Status:         model.StatusScheduled,
		IdempotencyKey: &key,
	})
	require.NoError(t, err)

	svc := service.NewSessionService(&staleLookupRepo{SessionRepository: mem}, fixedProvisioner{link: "x"}, events.NoopPublisher{})

	replayed, err := svc.Schedule(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, winner.ID, replayed.ID)

	all, err := mem.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestSchedule_NoDedupWithoutKey(t *testing.T) {
	svc, repo := newTestService(fixedProvisioner{link: "x"})

	input := validInput()
	_, err := svc.Schedule(context.Background(), input)
	require.NoError(t, err)
	_, err = svc.Schedule(context.Background(), input)
	require.NoError(t, err)

	all, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestMarkAttendance_CompletesSession(t *testing.T) {
	svc, _ := newTestService(fixedProvisioner{link: "x"})

	session, err := svc.Schedule(context.Background(), validInput())
	require.NoError(t, err)

	updated, err := svc.MarkAttendance(context.Background(), session.ID, model.AttendanceAbsent)
	require.NoError(t, err)
	require.Equal(t, model.StatusCompleted, updated.Status)
	require.NotNil(t, updated.Attendance)
	require.Equal(t, model.AttendanceAbsent, *updated.Attendance)

	// The completed session is always past, whatever the clock says.
	require.Equal(t, model.PhasePast, updated.ComputePhase(time.Now()))
}

func TestMarkAttendance_RejectsRemark(t *testing.T) {
	svc, _ := newTestService(fixedProvisioner{link: "x"})

	session, err := svc.Schedule(context.Background(), validInput())
	require.NoError(t, err)

	_, err = svc.MarkAttendance(context.Background(), session.ID, model.AttendancePresent)
	require.NoError(t, err)

	_, err = svc.MarkAttendance(context.Background(), session.ID, model.AttendanceAbsent)
	require.ErrorIs(t, err, service.ErrIllegalTransition)

	// The first outcome sticks.
	stored, err := svc.Get(context.Background(), session.ID)
	require.NoError(t, err)
	require.Equal(t, model.AttendancePresent, *stored.Attendance)
}

func TestMarkAttendance_UnknownSession(t *testing.T) {
	svc, _ := newTestService(fixedProvisioner{link: "x"})

	_, err := svc.MarkAttendance(context.Background(), uuid.New(), model.AttendancePresent)
	require.ErrorIs(t, err, service.ErrSessionNotFound)
}

func TestMarkAttendance_InvalidOutcome(t *testing.T) {
	svc, _ := newTestService(fixedProvisioner{link: "x"})

	_, err := svc.MarkAttendance(context.Background(), uuid.New(), "late")
	require.ErrorIs(t, err, service.ErrInvalidAttendance)
}

func TestCancel_TerminalAndNoAttendanceAfter(t *testing.T) {
	svc, _ := newTestService(fixedProvisioner{link: "x"})

	session, err := svc.Schedule(context.Background(), validInput())
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), session.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusCancelled, cancelled.Status)
	require.Nil(t, cancelled.Attendance)
	require.Equal(t, model.PhasePast, cancelled.ComputePhase(time.Now()))

	_, err = svc.MarkAttendance(context.Background(), session.ID, model.AttendancePresent)
	require.ErrorIs(t, err, service.ErrIllegalTransition)

	_, err = svc.Cancel(context.Background(), session.ID)
	require.ErrorIs(t, err, service.ErrIllegalTransition)
}

func TestCancel_UnknownSession(t *testing.T) {
	svc, _ := newTestService(fixedProvisioner{link: "x"})

	_, err := svc.Cancel(context.Background(), uuid.New())
	require.ErrorIs(t, err, service.ErrSessionNotFound)
}

func TestMarkAttendance_ConcurrentWithCancel(t *testing.T) {
	svc, _ := newTestService(fixedProvisioner{link: "x"})

	session, err := svc.Schedule(context.Background(), validInput())
	require.NoError(t, err)

	var wg sync.WaitGroup
	var markErr, cancelErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, markErr = svc.MarkAttendance(context.Background(), session.ID, model.AttendancePresent)
	}()
	go func() {
		defer wg.Done()
		_, cancelErr = svc.Cancel(context.Background(), session.ID)
	}()
	wg.Wait()

	// Exactly one transition wins; the loser sees an illegal transition.
	if markErr == nil {
		require.ErrorIs(t, cancelErr, service.ErrIllegalTransition)
	} else {
		require.NoError(t, cancelErr)
		require.ErrorIs(t, markErr, service.ErrIllegalTransition)
	}

	stored, err := svc.Get(context.Background(), session.ID)
	require.NoError(t, err)
	require.Contains(t, []string{model.StatusCompleted, model.StatusCancelled}, stored.Status)
}
