package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ednc-edu/course-roster-api/internal/models"
	"github.com/ednc-edu/course-roster-api/internal/service"
	"github.com/ednc-edu/course-roster-api/pkg/response"
)

type fakePublicCourseRepo struct {
	courses    []models.CourseWithInstructor
	count      int
	lastSearch string
	lastLimit  int
}

func (f *fakePublicCourseRepo) ListPublic(ctx context.Context, search string, limit int) ([]models.CourseWithInstructor, error) {
	f.lastSearch = search
	f.lastLimit = limit
	return f.courses, nil
}

func (f *fakePublicCourseRepo) CountPublic(ctx context.Context, search string) (int, error) {
	f.lastSearch = search
	return f.count, nil
}

func TestCatalogHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakePublicCourseRepo{courses: []models.CourseWithInstructor{
		{Course: models.Course{ID: 1, Name: "Pottery"}, InstructorName: "Jane Doe"},
	}}
	handler := NewCatalogHandler(service.NewCatalogService(repo, nil))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/courses/public?search=pot&limit=5", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pot", repo.lastSearch)
	assert.Equal(t, 5, repo.lastLimit)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.NotNil(t, envelope.Data)
	assert.Nil(t, envelope.Error)
}

func TestCatalogHandlerListIgnoresBadLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakePublicCourseRepo{}
	handler := NewCatalogHandler(service.NewCatalogService(repo, nil))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/courses/public?limit=banana", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, repo.lastLimit)
}

func TestCatalogHandlerCount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakePublicCourseRepo{count: 12}
	handler := NewCatalogHandler(service.NewCatalogService(repo, nil))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/courses/public/count", nil)
	c.Request = req

	handler.Count(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data struct {
			Total int `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 12, envelope.Data.Total)
}
