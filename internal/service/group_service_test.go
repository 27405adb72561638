package service_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"academy-service/internal/model"
	"academy-service/internal/repository"
	"academy-service/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newGroupService(users []model.User, courses []model.Course) service.GroupService {
	return service.NewGroupService(
		repository.NewMemoryGroupRepository(),
		repository.NewMemoryUserRepository(users),
		repository.NewMemoryCourseRepository(courses),
	)
}

func TestCreateGroup_CodeGeneration(t *testing.T) {
	svc := newGroupService(nil, nil)
	ctx := context.Background()
	instructorID := uuid.New()

	first, err := svc.CreateGroup(ctx, service.CreateGroupInput{
		Name: "Opening Mastery - Group A", Type: model.GroupTypeGroup, InstructorID: instructorID,
	})
	require.NoError(t, err)
	require.Equal(t, "GRP-001", first.Code)
	require.Equal(t, 4, first.MaxStudents)
	require.Equal(t, model.GroupStatusPending, first.Status)
	require.Equal(t, "TBD", first.Schedule)

	second, err := svc.CreateGroup(ctx, service.CreateGroupInput{
		Name: "Beginner Tactics - Group B", Type: model.GroupTypeGroup, InstructorID: instructorID, MaxStudents: 6,
	})
	require.NoError(t, err)
	require.Equal(t, "GRP-002", second.Code)
	require.Equal(t, 6, second.MaxStudents)

	individual, err := svc.CreateGroup(ctx, service.CreateGroupInput{
		Name: "Endgame Mastery - 1:1", Type: model.GroupTypeIndividual, InstructorID: instructorID, MaxStudents: 5,
	})
	require.NoError(t, err)
	require.Equal(t, "IND-001", individual.Code)
	// Individual groups always hold exactly one student.
	require.Equal(t, 1, individual.MaxStudents)
}

func TestAddStudent_CapacityAndDuplicates(t *testing.T) {
	svc := newGroupService(nil, nil)
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, service.CreateGroupInput{
		Name: "Small Group", Type: model.GroupTypeGroup, InstructorID: uuid.New(), MaxStudents: 2,
	})
	require.NoError(t, err)

	s1, s2, s3 := uuid.New(), uuid.New(), uuid.New()

	updated, err := svc.AddStudent(ctx, group.ID, s1)
	require.NoError(t, err)
	require.Len(t, updated.StudentIDs, 1)

	_, err = svc.AddStudent(ctx, group.ID, s1)
	require.ErrorIs(t, err, service.ErrAlreadyInGroup)

	_, err = svc.AddStudent(ctx, group.ID, s2)
	require.NoError(t, err)

	_, err = svc.AddStudent(ctx, group.ID, s3)
	require.ErrorIs(t, err, service.ErrGroupFull)

	_, err = svc.AddStudent(ctx, uuid.New(), s3)
	require.ErrorIs(t, err, service.ErrGroupNotFound)
}

func TestAddStudent_ConcurrentAddsHonorCapacity(t *testing.T) {
	svc := newGroupService(nil, nil)
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, service.CreateGroupInput{
		Name: "Solo Seat", Type: model.GroupTypeIndividual, InstructorID: uuid.New(),
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var admitted atomic.Int32
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.AddStudent(ctx, group.ID, uuid.New()); err == nil {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	// Exactly one add wins the only seat.
	require.EqualValues(t, 1, admitted.Load())

	details, err := svc.ListGroups(ctx, repository.GroupFilter{})
	require.NoError(t, err)
	require.Len(t, details, 1)
	require.Equal(t, "1/1", details[0].Occupancy)
}

func TestRemoveStudent(t *testing.T) {
	svc := newGroupService(nil, nil)
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, service.CreateGroupInput{
		Name: "Small Group", Type: model.GroupTypeGroup, InstructorID: uuid.New(),
	})
	require.NoError(t, err)

	studentID := uuid.New()
	_, err = svc.AddStudent(ctx, group.ID, studentID)
	require.NoError(t, err)

	updated, err := svc.RemoveStudent(ctx, group.ID, studentID)
	require.NoError(t, err)
	require.Empty(t, updated.StudentIDs)

	// Freed seat can be refilled.
	_, err = svc.AddStudent(ctx, group.ID, studentID)
	require.NoError(t, err)
}

func TestListGroups_Enrichment(t *testing.T) {
	instructorID := uuid.New()
	courseID := uuid.New()
	users := []model.User{{ID: instructorID, Name: "Youssef", Role: model.RoleInstructor}}
	courses := []model.Course{{ID: courseID, Name: "Endgame Mastery", InstructorID: instructorID}}

	svc := newGroupService(users, courses)
	ctx := context.Background()

	_, err := svc.CreateGroup(ctx, service.CreateGroupInput{
		Name: "Endgame Group", Type: model.GroupTypeGroup, InstructorID: instructorID, CourseID: &courseID, MaxStudents: 4,
	})
	require.NoError(t, err)

	details, err := svc.ListGroups(ctx, repository.GroupFilter{})
	require.NoError(t, err)
	require.Len(t, details, 1)
	require.Equal(t, "Youssef", details[0].InstructorName)
	require.Equal(t, "Endgame Mastery", details[0].CourseDisplay)
	require.Equal(t, "0/4", details[0].Occupancy)
}

func TestCoursesForStudent(t *testing.T) {
	instructorID := uuid.New()
	tactics := model.Course{ID: uuid.New(), Name: "Beginner Tactics", InstructorID: instructorID}
	endgames := model.Course{ID: uuid.New(), Name: "Endgame Mastery", InstructorID: instructorID}

	svc := newGroupService(nil, []model.Course{tactics, endgames})
	ctx := context.Background()
	studentID := uuid.New()

	enrolled, err := svc.CreateGroup(ctx, service.CreateGroupInput{
		Name: "Tactics A", Type: model.GroupTypeGroup, InstructorID: instructorID, CourseID: &tactics.ID,
	})
	require.NoError(t, err)
	_, err = svc.AddStudent(ctx, enrolled.ID, studentID)
	require.NoError(t, err)

	// A second group on the same course must not duplicate the course.
	alsoTactics, err := svc.CreateGroup(ctx, service.CreateGroupInput{
		Name: "Tactics B", Type: model.GroupTypeGroup, InstructorID: instructorID, CourseID: &tactics.ID,
	})
	require.NoError(t, err)
	_, err = svc.AddStudent(ctx, alsoTactics.ID, studentID)
	require.NoError(t, err)

	other, err := svc.CreateGroup(ctx, service.CreateGroupInput{
		Name: "Endgames", Type: model.GroupTypeGroup, InstructorID: instructorID, CourseID: &endgames.ID,
	})
	require.NoError(t, err)
	_, err = svc.AddStudent(ctx, other.ID, uuid.New())
	require.NoError(t, err)

	courses, err := svc.CoursesForStudent(ctx, studentID)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	require.Equal(t, "Beginner Tactics", courses[0].Name)

	none, err := svc.CoursesForStudent(ctx, uuid.New())
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestListGroups_Filters(t *testing.T) {
	svc := newGroupService(nil, nil)
	ctx := context.Background()
	i1, i2 := uuid.New(), uuid.New()

	_, err := svc.CreateGroup(ctx, service.CreateGroupInput{Name: "Group One", Type: model.GroupTypeGroup, InstructorID: i1})
	require.NoError(t, err)
	_, err = svc.CreateGroup(ctx, service.CreateGroupInput{Name: "Solo One", Type: model.GroupTypeIndividual, InstructorID: i2})
	require.NoError(t, err)

	byInstructor, err := svc.ListGroups(ctx, repository.GroupFilter{InstructorID: &i1})
	require.NoError(t, err)
	require.Len(t, byInstructor, 1)

	byType, err := svc.ListGroups(ctx, repository.GroupFilter{Type: model.GroupTypeIndividual})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	require.Equal(t, "Solo One", byType[0].Name)
}
