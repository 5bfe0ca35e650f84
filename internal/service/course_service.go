package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ednc-edu/course-roster-api/internal/models"
	appErrors "github.com/ednc-edu/course-roster-api/pkg/errors"
)

type courseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course, actorID int64, isAdmin bool) error
	DeleteCascade(ctx context.Context, courseID, actorID int64, isAdmin bool) error
	ListByInstructor(ctx context.Context, instructorID int64) ([]models.Course, error)
	ListAll(ctx context.Context) ([]models.CourseWithInstructor, error)
}

// CourseRequest holds the course create/update payload. The schedule is
// either free text or a start/end date pair.
type CourseRequest struct {
	Name      string       `json:"name" validate:"required"`
	Schedule  *string      `json:"schedule"`
	StartDate *models.Date `json:"start_date"`
	EndDate   *models.Date `json:"end_date"`
}

// CourseItem is a course response enriched with derived status and, for
// admin listings, the owner's name.
type CourseItem struct {
	models.Course
	InstructorName string              `json:"instructor_name,omitempty"`
	Status         models.CourseStatus `json:"status"`
}

// CourseService handles course registry use-cases.
type CourseService struct {
	repo      courseRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewCourseService constructs the course service.
func NewCourseService(repo courseRepository, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, validator: validate, logger: logger, now: time.Now}
}

// Create registers a new course owned by the acting instructor.
func (s *CourseService) Create(ctx context.Context, claims *models.JWTClaims, req CourseRequest) (*CourseItem, error) {
	if err := s.validateShape(req); err != nil {
		return nil, err
	}

	course := &models.Course{
		Name:         req.Name,
		Schedule:     req.Schedule,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		InstructorID: claims.InstructorID,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}

	s.logger.Info("course created", zap.Int64("course_id", course.ID), zap.Int64("instructor_id", claims.InstructorID))
	return s.item(course, ""), nil
}

// Update replaces the mutable fields of a course. Owners and admins may
// update; absent and foreign-owned courses are indistinguishable to the
// caller.
func (s *CourseService) Update(ctx context.Context, claims *models.JWTClaims, courseID int64, req CourseRequest) error {
	if err := s.validateShape(req); err != nil {
		return err
	}

	course := &models.Course{
		ID:        courseID,
		Name:      req.Name,
		Schedule:  req.Schedule,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	if err := s.repo.Update(ctx, course, claims.InstructorID, claims.IsAdmin); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	return nil
}

// Delete removes a course and every registration on its roster. The
// ownership check happens before any row is deleted, inside the same
// transaction as the cascade.
func (s *CourseService) Delete(ctx context.Context, claims *models.JWTClaims, courseID int64) error {
	if err := s.repo.DeleteCascade(ctx, courseID, claims.InstructorID, claims.IsAdmin); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}

	s.logger.Info("course deleted", zap.Int64("course_id", courseID), zap.Int64("instructor_id", claims.InstructorID))
	return nil
}

// List returns the acting principal's course view: admins see every
// course with the owner's name, instructors see only their own.
func (s *CourseService) List(ctx context.Context, claims *models.JWTClaims) ([]CourseItem, error) {
	if claims.IsAdmin {
		courses, err := s.repo.ListAll(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
		}
		items := make([]CourseItem, 0, len(courses))
		for i := range courses {
			items = append(items, *s.item(&courses[i].Course, courses[i].InstructorName))
		}
		return items, nil
	}

	courses, err := s.repo.ListByInstructor(ctx, claims.InstructorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	items := make([]CourseItem, 0, len(courses))
	for i := range courses {
		items = append(items, *s.item(&courses[i], ""))
	}
	return items, nil
}

func (s *CourseService) validateShape(req CourseRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "course name is required")
	}
	if !models.ValidSchedule(req.Schedule, req.StartDate, req.EndDate) {
		return appErrors.Clone(appErrors.ErrValidation, "schedule text or both start and end dates are required")
	}
	return nil
}

func (s *CourseService) item(course *models.Course, instructorName string) *CourseItem {
	return &CourseItem{
		Course:         *course,
		InstructorName: instructorName,
		Status:         course.StatusOn(s.now()),
	}
}
