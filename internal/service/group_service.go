package service

import (
	"academy-service/internal/model"
	"academy-service/internal/repository"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrGroupNotFound  = errors.New("group not found")
	ErrGroupFull      = errors.New("group is full")
	ErrAlreadyInGroup = errors.New("student is already in this group")
)

type CreateGroupInput struct {
	Name         string
	Type         string
	InstructorID uuid.UUID
	CourseID     *uuid.UUID
	MaxStudents  int
	Schedule     string
	MonthlyFee   int
}

type UpdateGroupInput struct {
	Name        *string
	MaxStudents *int
	Schedule    *string
	MonthlyFee  *int
	Status      *string
}

type GroupService interface {
	CreateGroup(ctx context.Context, input CreateGroupInput) (*model.Group, error)
	UpdateGroup(ctx context.Context, groupID uuid.UUID, input UpdateGroupInput) (*model.Group, error)
	ListGroups(ctx context.Context, filter repository.GroupFilter) ([]model.GroupDetails, error)
	AddStudent(ctx context.Context, groupID, studentID uuid.UUID) (*model.Group, error)
	RemoveStudent(ctx context.Context, groupID, studentID uuid.UUID) (*model.Group, error)
	CoursesForStudent(ctx context.Context, studentID uuid.UUID) ([]model.Course, error)
}

type groupService struct {
	groupRepo  repository.GroupRepository
	userRepo   repository.UserRepository
	courseRepo repository.CourseRepository
}

func NewGroupService(groupRepo repository.GroupRepository, userRepo repository.UserRepository, courseRepo repository.CourseRepository) GroupService {
	return &groupService{
		groupRepo:  groupRepo,
		userRepo:   userRepo,
		courseRepo: courseRepo,
	}
}

func (s *groupService) CreateGroup(ctx context.Context, input CreateGroupInput) (*model.Group, error) {
	count, err := s.groupRepo.CountByType(ctx, input.Type)
	if err != nil {
		return nil, err
	}

	prefix := "GRP"
	if input.Type == model.GroupTypeIndividual {
		prefix = "IND"
	}
	code := fmt.Sprintf("%s-%03d", prefix, count+1)

	maxStudents := input.MaxStudents
	if input.Type == model.GroupTypeIndividual {
		maxStudents = 1
	} else if maxStudents == 0 {
		maxStudents = 4
	}

	schedule := input.Schedule
	if schedule == "" {
		schedule = "TBD"
	}

	group := &model.Group{
		Code:         code,
		Name:         input.Name,
		Type:         input.Type,
		InstructorID: input.InstructorID,
		CourseID:     input.CourseID,
		MaxStudents:  maxStudents,
		Schedule:     schedule,
		MonthlyFee:   input.MonthlyFee,
		Status:       model.GroupStatusPending,
	}

	return s.groupRepo.Insert(ctx, group)
}

func (s *groupService) UpdateGroup(ctx context.Context, groupID uuid.UUID, input UpdateGroupInput) (*model.Group, error) {
	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	if input.Name != nil {
		group.Name = *input.Name
	}
	if input.MaxStudents != nil && group.Type != model.GroupTypeIndividual {
		group.MaxStudents = *input.MaxStudents
	}
	if input.Schedule != nil {
		group.Schedule = *input.Schedule
	}
	if input.MonthlyFee != nil {
		group.MonthlyFee = *input.MonthlyFee
	}
	if input.Status != nil {
		group.Status = *input.Status
	}

	if err := s.groupRepo.Update(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *groupService) ListGroups(ctx context.Context, filter repository.GroupFilter) ([]model.GroupDetails, error) {
	groups, err := s.groupRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	details := make([]model.GroupDetails, 0, len(groups))
	for _, group := range groups {
		d := model.GroupDetails{
			Group:          group,
			InstructorName: "Unassigned",
			CourseDisplay:  "No Course",
			Occupancy:      fmt.Sprintf("%d/%d", len(group.StudentIDs), group.MaxStudents),
		}

		if instructor, err := s.userRepo.FindByID(ctx, group.InstructorID); err == nil && instructor != nil {
			d.InstructorName = instructor.Name
		}
		if group.CourseID != nil {
			if course, err := s.courseRepo.FindByID(ctx, *group.CourseID); err == nil && course != nil {
				d.CourseDisplay = course.Name
			}
		}

		details = append(details, d)
	}
	return details, nil
}

func (s *groupService) AddStudent(ctx context.Context, groupID, studentID uuid.UUID) (*model.Group, error) {
	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	// Capacity and duplicate membership are enforced by the store under a
	// group-level lock, so concurrent adds cannot overfill the group.
	if err := s.groupRepo.AddStudent(ctx, groupID, studentID); err != nil {
		switch {
		case errors.Is(err, repository.ErrGroupCapacity):
			return nil, ErrGroupFull
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrAlreadyInGroup
		}
		return nil, err
	}
	return s.groupRepo.FindByID(ctx, groupID)
}

func (s *groupService) RemoveStudent(ctx context.Context, groupID, studentID uuid.UUID) (*model.Group, error) {
	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	if err := s.groupRepo.RemoveStudent(ctx, groupID, studentID); err != nil {
		return nil, err
	}
	return s.groupRepo.FindByID(ctx, groupID)
}

// CoursesForStudent resolves the courses a student is enrolled in through
// group membership.
func (s *groupService) CoursesForStudent(ctx context.Context, studentID uuid.UUID) ([]model.Course, error) {
	groups, err := s.groupRepo.List(ctx, repository.GroupFilter{StudentID: &studentID})
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool)
	courses := []model.Course{}
	for _, group := range groups {
		if group.CourseID == nil || seen[*group.CourseID] {
			continue
		}
		seen[*group.CourseID] = true

		course, err := s.courseRepo.FindByID(ctx, *group.CourseID)
		if err != nil {
			return nil, err
		}
		if course != nil {
			courses = append(courses, *course)
		}
	}
	return courses, nil
}
