package api

import (
	"academy-service/internal/model"
	"academy-service/internal/repository"
	"academy-service/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// DirectoryHandler serves the read-only reference surfaces: users, courses
// and academy-wide stats.
type DirectoryHandler struct {
	userRepo     repository.UserRepository
	courseRepo   repository.CourseRepository
	groupService service.GroupService
	statsService service.StatsService
}

func NewDirectoryHandler(userRepo repository.UserRepository, courseRepo repository.CourseRepository, groupService service.GroupService, statsService service.StatsService) *DirectoryHandler {
	return &DirectoryHandler{
		userRepo:     userRepo,
		courseRepo:   courseRepo,
		groupService: groupService,
		statsService: statsService,
	}
}

func (h *DirectoryHandler) ListUsers(c *fiber.Ctx) error {
	role := c.Query("role")

	var (
		users []model.User
		err   error
	)
	if role != "" {
		users, err = h.userRepo.ListByRole(c.Context(), role)
	} else {
		users, err = h.userRepo.ListAll(c.Context())
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch users"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"users": users})
}

func (h *DirectoryHandler) ListCourses(c *fiber.Ctx) error {
	var (
		courses []model.Course
		err     error
	)
	if raw := c.Query("instructor_id"); raw != "" {
		instructorID, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid instructor ID format"})
		}
		courses, err = h.courseRepo.ListByInstructor(c.Context(), instructorID)
	} else if raw := c.Query("student_id"); raw != "" {
		studentID, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student ID format"})
		}
		// Students reach courses through group enrollment.
		courses, err = h.groupService.CoursesForStudent(c.Context(), studentID)
	} else {
		courses, err = h.courseRepo.ListAll(c.Context())
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch courses"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"courses": courses})
}

func (h *DirectoryHandler) GetStats(c *fiber.Ctx) error {
	if GetRoleFromClaims(c) != model.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	stats, err := h.statsService.ComputeStats(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not compute stats"})
	}

	return c.Status(fiber.StatusOK).JSON(stats)
}
