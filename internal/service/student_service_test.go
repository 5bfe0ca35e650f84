package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ednc-edu/course-roster-api/internal/models"
	appErrors "github.com/ednc-edu/course-roster-api/pkg/errors"
)

type mockStudentRepo struct {
	byID      map[int64]*models.Student
	byCourse  map[int64][]models.Student
	byEmail   []models.RegistrationDetail
	created   *models.Student
	updated   *models.Student
	deletedID int64
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	student.ID = 21
	student.CreatedAt = time.Now()
	student.UpdatedAt = student.CreatedAt
	m.created = student
	return nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	s, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return s, nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	if _, ok := m.byID[student.ID]; !ok {
		return sql.ErrNoRows
	}
	m.updated = student
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.byID[id]; !ok {
		return sql.ErrNoRows
	}
	m.deletedID = id
	return nil
}

func (m *mockStudentRepo) FindByEmailAndCourse(ctx context.Context, email string, courseID int64) (*models.Student, error) {
	for _, s := range m.byID {
		if s.Email == email && s.CourseID == courseID {
			return s, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) ExistsByEmailAndCourse(ctx context.Context, email string, courseID int64) (bool, error) {
	for _, s := range m.byID {
		if s.Email == email && s.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStudentRepo) ListByCourse(ctx context.Context, courseID int64) ([]models.Student, error) {
	return m.byCourse[courseID], nil
}

func (m *mockStudentRepo) ListByEmail(ctx context.Context, email string) ([]models.RegistrationDetail, error) {
	return m.byEmail, nil
}

type mockCourseFinder struct {
	courses map[int64]*models.Course
}

func (m *mockCourseFinder) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	c, ok := m.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return c, nil
}

func newTestStudentService(repo *mockStudentRepo, courses *mockCourseFinder) *StudentService {
	if repo.byID == nil {
		repo.byID = make(map[int64]*models.Student)
	}
	if courses == nil {
		courses = &mockCourseFinder{courses: map[int64]*models.Course{}}
	}
	return NewStudentService(repo, courses, validator.New(), zap.NewNop())
}

func validRegistration(courseID int64) RegisterStudentRequest {
	return RegisterStudentRequest{
		Name:        "김철수",
		EnglishName: "Chulsoo Kim",
		Email:       "chulsoo@example.com",
		Affiliation: "EDNC",
		Phone:       "010-1234-5678",
		BirthDate:   "1995-04-12",
		CourseID:    courseID,
	}
}

func TestStudentServiceRegisterSuccess(t *testing.T) {
	repo := &mockStudentRepo{}
	courses := &mockCourseFinder{courses: map[int64]*models.Course{
		3: {ID: 3, Name: "Pottery", InstructorID: 5},
	}}
	svc := newTestStudentService(repo, courses)

	student, err := svc.Register(context.Background(), validRegistration(3))
	require.NoError(t, err)
	assert.Equal(t, int64(21), student.ID)
	assert.Equal(t, int64(3), student.CourseID)
	assert.Equal(t, "chulsoo@example.com", repo.created.Email)
}

func TestStudentServiceRegisterUnknownCourse(t *testing.T) {
	svc := newTestStudentService(&mockStudentRepo{}, nil)

	_, err := svc.Register(context.Background(), validRegistration(404))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Equal(t, "course not found", appErr.Message)
}

func TestStudentServiceRegisterDuplicate(t *testing.T) {
	repo := &mockStudentRepo{byID: map[int64]*models.Student{
		1: {ID: 1, Email: "chulsoo@example.com", CourseID: 3},
	}}
	courses := &mockCourseFinder{courses: map[int64]*models.Course{3: {ID: 3}}}
	svc := newTestStudentService(repo, courses)

	_, err := svc.Register(context.Background(), validRegistration(3))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceRegisterMissingFields(t *testing.T) {
	svc := newTestStudentService(&mockStudentRepo{}, nil)

	req := validRegistration(3)
	req.Phone = ""
	_, err := svc.Register(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceUpdateEmailMismatch(t *testing.T) {
	repo := &mockStudentRepo{byID: map[int64]*models.Student{
		1: {ID: 1, Email: "chulsoo@example.com", CourseID: 3},
	}}
	svc := newTestStudentService(repo, nil)

	_, err := svc.Update(context.Background(), 1, UpdateStudentRequest{
		Name:        "Mallory",
		EnglishName: "Mallory",
		Email:       "mallory@example.com",
		Affiliation: "Elsewhere",
		Phone:       "010-0000-0000",
		BirthDate:   "1990-01-01",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
	assert.Nil(t, repo.updated)
}

func TestStudentServiceUpdateSuccess(t *testing.T) {
	repo := &mockStudentRepo{byID: map[int64]*models.Student{
		1: {ID: 1, Email: "chulsoo@example.com", CourseID: 3},
	}}
	svc := newTestStudentService(repo, nil)

	student, err := svc.Update(context.Background(), 1, UpdateStudentRequest{
		Name:        "김철수",
		EnglishName: "Chulsoo Kim",
		Email:       "chulsoo@example.com",
		Affiliation: "EDNC Labs",
		Phone:       "010-1234-5678",
		BirthDate:   "1995-04-12",
	})
	require.NoError(t, err)
	assert.Equal(t, "EDNC Labs", student.Affiliation)
	// Course binding survives updates.
	assert.Equal(t, int64(3), repo.updated.CourseID)
}

func TestStudentServiceUpdateNotFound(t *testing.T) {
	svc := newTestStudentService(&mockStudentRepo{}, nil)

	_, err := svc.Update(context.Background(), 404, UpdateStudentRequest{
		Name:        "A",
		EnglishName: "A",
		Email:       "a@example.com",
		Affiliation: "A",
		Phone:       "1",
		BirthDate:   "1990-01-01",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceDeleteEmailMismatch(t *testing.T) {
	repo := &mockStudentRepo{byID: map[int64]*models.Student{
		1: {ID: 1, Email: "chulsoo@example.com", CourseID: 3},
	}}
	svc := newTestStudentService(repo, nil)

	err := svc.Delete(context.Background(), 1, "mallory@example.com")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Zero(t, repo.deletedID)
}

func TestStudentServiceDeleteSuccess(t *testing.T) {
	repo := &mockStudentRepo{byID: map[int64]*models.Student{
		1: {ID: 1, Email: "chulsoo@example.com", CourseID: 3},
	}}
	svc := newTestStudentService(repo, nil)

	require.NoError(t, svc.Delete(context.Background(), 1, "chulsoo@example.com"))
	assert.Equal(t, int64(1), repo.deletedID)
}

func TestStudentServiceLookup(t *testing.T) {
	repo := &mockStudentRepo{byID: map[int64]*models.Student{
		1: {ID: 1, Email: "chulsoo@example.com", CourseID: 3},
	}}
	svc := newTestStudentService(repo, nil)

	student, err := svc.Lookup(context.Background(), "chulsoo@example.com", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), student.ID)

	_, err = svc.Lookup(context.Background(), "chulsoo@example.com", 4)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceListByCourseOwner(t *testing.T) {
	repo := &mockStudentRepo{byCourse: map[int64][]models.Student{
		3: {{ID: 1, Name: "김철수"}, {ID: 2, Name: "이영희"}},
	}}
	courses := &mockCourseFinder{courses: map[int64]*models.Course{
		3: {ID: 3, InstructorID: 5},
	}}
	svc := newTestStudentService(repo, courses)

	students, err := svc.ListByCourse(context.Background(), ownerClaims(), 3)
	require.NoError(t, err)
	assert.Len(t, students, 2)
}

func TestStudentServiceListByCourseForeignOwner(t *testing.T) {
	courses := &mockCourseFinder{courses: map[int64]*models.Course{
		3: {ID: 3, InstructorID: 77},
	}}
	svc := newTestStudentService(&mockStudentRepo{}, courses)

	_, err := svc.ListByCourse(context.Background(), ownerClaims(), 3)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
	assert.Equal(t, "no access to this course", appErr.Message)
}

func TestStudentServiceListByCourseMissingCourse(t *testing.T) {
	svc := newTestStudentService(&mockStudentRepo{}, nil)

	_, err := svc.ListByCourse(context.Background(), ownerClaims(), 404)
	require.Error(t, err)
	// Missing and foreign-owned courses are indistinguishable here.
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceListByCourseAdminOverride(t *testing.T) {
	repo := &mockStudentRepo{byCourse: map[int64][]models.Student{
		3: {{ID: 1}},
	}}
	courses := &mockCourseFinder{courses: map[int64]*models.Course{
		3: {ID: 3, InstructorID: 77},
	}}
	svc := newTestStudentService(repo, courses)

	students, err := svc.ListByCourse(context.Background(), adminClaims(), 3)
	require.NoError(t, err)
	assert.Len(t, students, 1)
}

func TestStudentServiceListByEmail(t *testing.T) {
	repo := &mockStudentRepo{byEmail: []models.RegistrationDetail{
		{StudentID: 2, CourseID: 4, CourseName: "Sculpture"},
		{StudentID: 1, CourseID: 3, CourseName: "Pottery"},
	}}
	svc := newTestStudentService(repo, nil)

	details, err := svc.ListByEmail(context.Background(), "chulsoo@example.com")
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, "Sculpture", details[0].CourseName)
}

func TestStudentServiceListByEmailNoRegistrations(t *testing.T) {
	svc := newTestStudentService(&mockStudentRepo{}, nil)

	_, err := svc.ListByEmail(context.Background(), "nobody@example.com")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
