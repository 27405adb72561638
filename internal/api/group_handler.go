package api

import (
	"academy-service/internal/model"
	"academy-service/internal/repository"
	"academy-service/internal/service"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type GroupHandler struct {
	groupService service.GroupService
	validate     *validator.Validate
}

func NewGroupHandler(groupService service.GroupService) *GroupHandler {
	return &GroupHandler{
		groupService: groupService,
		validate:     validator.New(),
	}
}

type CreateGroupRequest struct {
	Name         string     `json:"name" validate:"required,min=3,max=100"`
	Type         string     `json:"type" validate:"required,oneof=group individual"`
	InstructorID uuid.UUID  `json:"instructor_id" validate:"required"`
	CourseID     *uuid.UUID `json:"course_id,omitempty"`
	MaxStudents  int        `json:"max_students" validate:"omitempty,min=1,max=20"`
	Schedule     string     `json:"schedule" validate:"max=100"`
	MonthlyFee   int        `json:"monthly_fee" validate:"omitempty,min=0"`
}

type UpdateGroupRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=3,max=100"`
	MaxStudents *int    `json:"max_students,omitempty" validate:"omitempty,min=1,max=20"`
	Schedule    *string `json:"schedule,omitempty" validate:"omitempty,max=100"`
	MonthlyFee  *int    `json:"monthly_fee,omitempty" validate:"omitempty,min=0"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=pending active"`
}

type AddStudentRequest struct {
	StudentID uuid.UUID `json:"student_id" validate:"required"`
}

func (h *GroupHandler) ListGroups(c *fiber.Ctx) error {
	filter := repository.GroupFilter{
		Type:   c.Query("type"),
		Status: c.Query("status"),
	}
	if raw := c.Query("instructor_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid instructor ID format"})
		}
		filter.InstructorID = &parsed
	}

	groups, err := h.groupService.ListGroups(c.Context(), filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch groups"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"groups": groups})
}

func (h *GroupHandler) CreateGroup(c *fiber.Ctx) error {
	role := GetRoleFromClaims(c)
	if role != model.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	var request CreateGroupRequest

	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})
	}

	group, err := h.groupService.CreateGroup(c.Context(), service.CreateGroupInput{
		Name:         request.Name,
		Type:         request.Type,
		InstructorID: request.InstructorID,
		CourseID:     request.CourseID,
		MaxStudents:  request.MaxStudents,
		Schedule:     request.Schedule,
		MonthlyFee:   request.MonthlyFee,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not create group"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Group created", "group": group})
}

func (h *GroupHandler) UpdateGroup(c *fiber.Ctx) error {
	role := GetRoleFromClaims(c)
	if role != model.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	groupID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid group ID format"})
	}

	var request UpdateGroupRequest

	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})
	}

	group, err := h.groupService.UpdateGroup(c.Context(), groupID, service.UpdateGroupInput{
		Name:        request.Name,
		MaxStudents: request.MaxStudents,
		Schedule:    request.Schedule,
		MonthlyFee:  request.MonthlyFee,
		Status:      request.Status,
	})

	if err != nil {
		if errors.Is(err, service.ErrGroupNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not update group"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Group updated", "group": group})
}

func (h *GroupHandler) AddStudent(c *fiber.Ctx) error {
	role := GetRoleFromClaims(c)
	if role != model.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	groupID, err := uuid.Parse(c.Params("groupId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid group ID format"})
	}

	var request AddStudentRequest

	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})
	}

	group, err := h.groupService.AddStudent(c.Context(), groupID, request.StudentID)

	if err != nil {
		switch {
		case errors.Is(err, service.ErrGroupNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrGroupFull), errors.Is(err, service.ErrAlreadyInGroup):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not add student to group"})
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Student added to group", "group": group})
}

func (h *GroupHandler) RemoveStudent(c *fiber.Ctx) error {
	role := GetRoleFromClaims(c)
	if role != model.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	groupID, err := uuid.Parse(c.Params("groupId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid group ID format"})
	}
	studentID, err := uuid.Parse(c.Params("studentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student ID format"})
	}

	group, err := h.groupService.RemoveStudent(c.Context(), groupID, studentID)

	if err != nil {
		if errors.Is(err, service.ErrGroupNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not remove student from group"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Student removed from group", "group": group})
}
