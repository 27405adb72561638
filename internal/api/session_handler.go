package api

import (
	"academy-service/internal/model"
	"academy-service/internal/service"
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SessionHandler struct {
	sessionService  service.SessionService
	scheduleService service.ScheduleService
	payrollService  service.PayrollService
	validate        *validator.Validate
}

func NewSessionHandler(sessionService service.SessionService, scheduleService service.ScheduleService, payrollService service.PayrollService) *SessionHandler {
	return &SessionHandler{
		sessionService:  sessionService,
		scheduleService: scheduleService,
		payrollService:  payrollService,
		validate:        validator.New(),
	}
}

type ScheduleSessionRequest struct {
	Title          string     `json:"title" validate:"required,min=3,max=100"`
	CourseName     string     `json:"course_name" validate:"max=100"`
	CourseID       *uuid.UUID `json:"course_id,omitempty"`
	StudentID      *uuid.UUID `json:"student_id,omitempty"`
	StartTime      time.Time  `json:"start_time" validate:"required"`
	EndTime        time.Time  `json:"end_time" validate:"required"`
	IdempotencyKey *string    `json:"idempotency_key,omitempty" validate:"omitempty,max=64"`
}

type MarkAttendanceRequest struct {
	SessionID uuid.UUID `json:"session_id" validate:"required"`
	Status    string    `json:"status" validate:"required,oneof=present absent"`
}

// SessionView decorates a stored session with its derived temporal state.
// starts_in_seconds is only set while the session has not started.
type SessionView struct {
	model.Session
	Phase           model.Phase `json:"phase"`
	Joinable        bool        `json:"joinable"`
	StartsInSeconds *int64      `json:"starts_in_seconds,omitempty"`
}

func newSessionView(session model.Session, now time.Time) SessionView {
	view := SessionView{
		Session:  session,
		Phase:    session.ComputePhase(now),
		Joinable: session.IsJoinable(now),
	}
	if d, ok := session.TimeToStart(now); ok {
		seconds := int64(d.Seconds())
		view.StartsInSeconds = &seconds
	}
	return view
}

func newSessionViews(sessions []model.Session, now time.Time) []SessionView {
	views := make([]SessionView, 0, len(sessions))
	for _, session := range sessions {
		views = append(views, newSessionView(session, now))
	}
	return views
}

func (h *SessionHandler) ScheduleSession(c *fiber.Ctx) error {
	role := GetRoleFromClaims(c)
	if role != model.RoleInstructor && role != model.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "Forbidden",
			"message": "Only instructors can schedule sessions",
		})
	}

	userID, err := GetUserIDFromClaims(c)
	if err != nil {
		slog.ErrorContext(c.UserContext(), "Error getting user ID from claims", slog.String("error", err.Error()))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user claims"})
	}

	var request ScheduleSessionRequest

	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})
	}

	session, err := h.sessionService.Schedule(c.Context(), service.ScheduleInput{
		Title:          request.Title,
		CourseName:     request.CourseName,
		CourseID:       request.CourseID,
		InstructorID:   userID,
		StudentID:      request.StudentID,
		StartTime:      request.StartTime,
		EndTime:        request.EndTime,
		IdempotencyKey: request.IdempotencyKey,
	})

	if err != nil {
		if errors.Is(err, service.ErrInvalidInterval) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		slog.ErrorContext(c.UserContext(), "Error scheduling session", slog.String("error", err.Error()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not schedule session"})
	}

	return c.Status(fiber.StatusCreated).JSON(session)
}

func (h *SessionHandler) ListSessions(c *fiber.Ctx) error {
	userID, err := GetUserIDFromClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user claims"})
	}
	role := GetRoleFromClaims(c)

	sessions, err := h.scheduleService.ListForActor(c.Context(), role, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch sessions"})
	}

	// One now per request so no session flips phase mid-response.
	now := time.Now()

	if c.Query("view") == "partition" {
		p := service.Partition(sessions, now)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"live":     newSessionViews(p.Live, now),
			"upcoming": newSessionViews(p.Upcoming, now),
			"past":     newSessionViews(p.Past, now),
		})
	}

	return c.Status(fiber.StatusOK).JSON(newSessionViews(sessions, now))
}

func (h *SessionHandler) GetCalendar(c *fiber.Ctx) error {
	userID, err := GetUserIDFromClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user claims"})
	}
	role := GetRoleFromClaims(c)

	now := time.Now()
	year := c.QueryInt("year", now.UTC().Year())
	month := c.QueryInt("month", int(now.UTC().Month()))
	if month < 1 || month > 12 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "month must be between 1 and 12"})
	}

	sessions, err := h.scheduleService.ListForActor(c.Context(), role, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch sessions"})
	}

	byDay := service.ByDay(sessions, year, time.Month(month))
	days := make(map[int][]SessionView, len(byDay))
	for day, daySessions := range byDay {
		days[day] = newSessionViews(daySessions, now)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"year":  year,
		"month": month,
		"days":  days,
	})
}

func (h *SessionHandler) MarkAttendance(c *fiber.Ctx) error {
	role := GetRoleFromClaims(c)
	if role != model.RoleInstructor && role != model.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "Forbidden",
			"message": "Only instructors can mark attendance",
		})
	}

	var request MarkAttendanceRequest

	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})
	}

	session, err := h.sessionService.MarkAttendance(c.Context(), request.SessionID, request.Status)

	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrIllegalTransition):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrInvalidAttendance):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not mark attendance"})
		}
	}

	return c.Status(fiber.StatusOK).JSON(session)
}

func (h *SessionHandler) CancelSession(c *fiber.Ctx) error {
	role := GetRoleFromClaims(c)
	if role != model.RoleInstructor && role != model.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "Forbidden",
			"message": "Only instructors can cancel sessions",
		})
	}

	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session ID format"})
	}

	session, err := h.sessionService.Cancel(c.Context(), sessionID)

	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrIllegalTransition):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not cancel session"})
		}
	}

	return c.Status(fiber.StatusOK).JSON(session)
}

func (h *SessionHandler) GetSessionDetails(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session ID format"})
	}

	session, err := h.sessionService.Get(c.Context(), sessionID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found"})
		}
		slog.ErrorContext(c.UserContext(), "Error getting session details", slog.String("error", err.Error()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch session details"})
	}

	return c.Status(fiber.StatusOK).JSON(newSessionView(*session, time.Now()))
}

func (h *SessionHandler) GetPayroll(c *fiber.Ctx) error {
	userID, err := GetUserIDFromClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user claims"})
	}
	role := GetRoleFromClaims(c)

	instructorID := userID
	if role == model.RoleAdmin {
		if raw := c.Query("instructor_id"); raw != "" {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid instructor ID format"})
			}
			instructorID = parsed
		}
	} else if role != model.RoleInstructor {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	hourlyRate := c.QueryInt("hourly_rate", 25)

	summary, err := h.payrollService.ComputePayroll(c.Context(), instructorID, hourlyRate)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not compute payroll"})
	}

	return c.Status(fiber.StatusOK).JSON(summary)
}
