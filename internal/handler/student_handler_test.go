package handler

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ednc-edu/course-roster-api/internal/middleware"
	"github.com/ednc-edu/course-roster-api/internal/models"
	"github.com/ednc-edu/course-roster-api/internal/service"
)

type fakeStudentRepo struct {
	byID      map[int64]*models.Student
	byCourse  map[int64][]models.Student
	deletedID int64
}

func (f *fakeStudentRepo) Create(ctx context.Context, student *models.Student) error {
	student.ID = 21
	student.CreatedAt = time.Now()
	student.UpdatedAt = student.CreatedAt
	return nil
}

func (f *fakeStudentRepo) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return s, nil
}

func (f *fakeStudentRepo) Update(ctx context.Context, student *models.Student) error {
	if _, ok := f.byID[student.ID]; !ok {
		return sql.ErrNoRows
	}
	return nil
}

func (f *fakeStudentRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return sql.ErrNoRows
	}
	f.deletedID = id
	return nil
}

func (f *fakeStudentRepo) FindByEmailAndCourse(ctx context.Context, email string, courseID int64) (*models.Student, error) {
	for _, s := range f.byID {
		if s.Email == email && s.CourseID == courseID {
			return s, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStudentRepo) ExistsByEmailAndCourse(ctx context.Context, email string, courseID int64) (bool, error) {
	_, err := f.FindByEmailAndCourse(ctx, email, courseID)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (f *fakeStudentRepo) ListByCourse(ctx context.Context, courseID int64) ([]models.Student, error) {
	return f.byCourse[courseID], nil
}

func (f *fakeStudentRepo) ListByEmail(ctx context.Context, email string) ([]models.RegistrationDetail, error) {
	return nil, nil
}

type fakeCourseFinder struct {
	courses map[int64]*models.Course
}

func (f *fakeCourseFinder) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return c, nil
}

func newStudentHandlerForTest(repo *fakeStudentRepo, courses *fakeCourseFinder) *StudentHandler {
	if repo.byID == nil {
		repo.byID = make(map[int64]*models.Student)
	}
	if courses == nil {
		courses = &fakeCourseFinder{courses: map[int64]*models.Course{}}
	}
	students := service.NewStudentService(repo, courses, nil, nil)
	exports := service.NewExportService(students, courses, nil, nil, nil)
	return NewStudentHandler(students, exports)
}

func TestStudentHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newStudentHandlerForTest(&fakeStudentRepo{}, &fakeCourseFinder{
		courses: map[int64]*models.Course{3: {ID: 3, Name: "Pottery"}},
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := `{"name":"김철수","english_name":"Chulsoo Kim","email":"chulsoo@example.com","affiliation":"EDNC","phone":"010-1234-5678","birth_date":"1995-04-12","course_id":3}`
	req, _ := http.NewRequest(http.MethodPost, "/students", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestStudentHandlerCreateUnknownCourse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newStudentHandlerForTest(&fakeStudentRepo{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := `{"name":"김철수","english_name":"Chulsoo Kim","email":"chulsoo@example.com","affiliation":"EDNC","phone":"010-1234-5678","birth_date":"1995-04-12","course_id":404}`
	req, _ := http.NewRequest(http.MethodPost, "/students", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStudentHandlerDeleteRequiresEmail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeStudentRepo{byID: map[int64]*models.Student{
		21: {ID: 21, Email: "chulsoo@example.com", CourseID: 3},
	}}
	handler := newStudentHandlerForTest(repo, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/students/21", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "21"}}

	handler.Delete(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, repo.deletedID)
}

func TestStudentHandlerDeleteEmailMismatch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeStudentRepo{byID: map[int64]*models.Student{
		21: {ID: 21, Email: "chulsoo@example.com", CourseID: 3},
	}}
	handler := newStudentHandlerForTest(repo, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/students/21?email=mallory@example.com", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "21"}}

	handler.Delete(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Zero(t, repo.deletedID)
}

func TestStudentHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeStudentRepo{byID: map[int64]*models.Student{
		21: {ID: 21, Email: "chulsoo@example.com", CourseID: 3},
	}}
	handler := newStudentHandlerForTest(repo, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/students/21?email=chulsoo@example.com", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "21"}}

	handler.Delete(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(21), repo.deletedID)
}

func TestStudentHandlerListByCourseForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newStudentHandlerForTest(&fakeStudentRepo{}, &fakeCourseFinder{
		courses: map[int64]*models.Course{3: {ID: 3, InstructorID: 77}},
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/students/course/3", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "courseId", Value: "3"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{InstructorID: 5})

	handler.ListByCourse(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestStudentHandlerExportCSV(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeStudentRepo{byCourse: map[int64][]models.Student{
		3: {{ID: 21, Name: "김철수", Email: "chulsoo@example.com", CourseID: 3}},
	}}
	handler := newStudentHandlerForTest(repo, &fakeCourseFinder{
		courses: map[int64]*models.Course{3: {ID: 3, Name: "Pottery", InstructorID: 5}},
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/students/course/3/export?format=csv", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "courseId", Value: "3"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{InstructorID: 5})

	handler.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Body.String(), "chulsoo@example.com")
}
