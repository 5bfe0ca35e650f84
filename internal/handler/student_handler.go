package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ednc-edu/course-roster-api/internal/service"
	appErrors "github.com/ednc-edu/course-roster-api/pkg/errors"
	"github.com/ednc-edu/course-roster-api/pkg/response"
)

// StudentHandler exposes roster registration endpoints. Registration
// create/update/delete and the lookups are anonymous; the per-course
// roster listing and export require the course owner or an admin.
type StudentHandler struct {
	students *service.StudentService
	exports  *service.ExportService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students *service.StudentService, exports *service.ExportService) *StudentHandler {
	return &StudentHandler{students: students, exports: exports}
}

// Create godoc
// @Summary Register for a course
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.RegisterStudentRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req service.RegisterStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}

	student, err := h.students.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student, "registration created")
}

// Update godoc
// @Summary Update a registration
// @Description The submitted email must match the stored registration
// @Tags Students
// @Accept json
// @Produce json
// @Param id path int true "Registration ID"
// @Param payload body service.UpdateStudentRequest true "Registration payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid registration id"))
		return
	}

	var req service.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}

	student, err := h.students.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, "registration updated")
}

// Delete godoc
// @Summary Delete a registration
// @Description The email query parameter must match the stored registration
// @Tags Students
// @Produce json
// @Param id path int true "Registration ID"
// @Param email query string true "Registered email"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid registration id"))
		return
	}

	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "email is required"))
		return
	}

	if err := h.students.Delete(c.Request.Context(), id, email); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, nil, "registration deleted")
}

// Lookup godoc
// @Summary Find a registration by email within a course
// @Tags Students
// @Produce json
// @Param email path string true "Registered email"
// @Param courseId path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/lookup/{email}/{courseId} [get]
func (h *StudentHandler) Lookup(c *gin.Context) {
	email := c.Param("email")
	courseID, err := strconv.ParseInt(c.Param("courseId"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid course id"))
		return
	}

	student, err := h.students.Lookup(c.Request.Context(), email, courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, "")
}

// CoursesByEmail godoc
// @Summary List all registrations under an email
// @Tags Students
// @Produce json
// @Param email path string true "Registered email"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/courses/{email} [get]
func (h *StudentHandler) CoursesByEmail(c *gin.Context) {
	email := c.Param("email")

	details, err := h.students.ListByEmail(c.Request.Context(), email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, details, "")
}

// ListByCourse godoc
// @Summary List the roster of a course
// @Tags Students
// @Produce json
// @Param courseId path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /students/course/{courseId} [get]
func (h *StudentHandler) ListByCourse(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	courseID, err := strconv.ParseInt(c.Param("courseId"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid course id"))
		return
	}

	students, err := h.students.ListByCourse(c.Request.Context(), claims, courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, "")
}

// Export godoc
// @Summary Export the roster of a course
// @Tags Students
// @Produce text/csv
// @Produce application/pdf
// @Param courseId path int true "Course ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /students/course/{courseId}/export [get]
func (h *StudentHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	courseID, err := strconv.ParseInt(c.Param("courseId"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid course id"))
		return
	}

	format := service.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(service.FormatCSV))))
	file, err := h.exports.Export(c.Request.Context(), claims, courseID, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Payload)
}
