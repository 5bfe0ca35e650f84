package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ednc-edu/course-roster-api/internal/models"
	appErrors "github.com/ednc-edu/course-roster-api/pkg/errors"
)

type studentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	FindByID(ctx context.Context, id int64) (*models.Student, error)
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id int64) error
	FindByEmailAndCourse(ctx context.Context, email string, courseID int64) (*models.Student, error)
	ExistsByEmailAndCourse(ctx context.Context, email string, courseID int64) (bool, error)
	ListByCourse(ctx context.Context, courseID int64) ([]models.Student, error)
	ListByEmail(ctx context.Context, email string) ([]models.RegistrationDetail, error)
}

type courseFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Course, error)
}

// RegisterStudentRequest holds the anonymous registration payload.
type RegisterStudentRequest struct {
	Name        string `json:"name" validate:"required"`
	EnglishName string `json:"english_name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Affiliation string `json:"affiliation" validate:"required"`
	Phone       string `json:"phone" validate:"required"`
	BirthDate   string `json:"birth_date" validate:"required"`
	CourseID    int64  `json:"course_id" validate:"required"`
}

// UpdateStudentRequest holds the anonymous update payload. The email must
// match the stored registration; it doubles as the proof of identity.
type UpdateStudentRequest struct {
	Name        string `json:"name" validate:"required"`
	EnglishName string `json:"english_name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Affiliation string `json:"affiliation" validate:"required"`
	Phone       string `json:"phone" validate:"required"`
	BirthDate   string `json:"birth_date" validate:"required"`
}

// StudentService handles roster registration use-cases.
type StudentService struct {
	repo      studentRepository
	courses   courseFinder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, courses courseFinder, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, courses: courses, validator: validate, logger: logger}
}

// Register creates a roster entry for an existing course. One
// registration per email per course.
func (s *StudentService) Register(ctx context.Context, req RegisterStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "all registration fields are required")
	}

	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	exists, err := s.repo.ExistsByEmailAndCourse(ctx, req.Email, req.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check registration")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "this email is already registered for the course")
	}

	student := &models.Student{
		Name:        req.Name,
		EnglishName: req.EnglishName,
		Email:       req.Email,
		Affiliation: req.Affiliation,
		Phone:       req.Phone,
		BirthDate:   req.BirthDate,
		CourseID:    req.CourseID,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create registration")
	}

	s.logger.Info("student registered", zap.Int64("student_id", student.ID), zap.Int64("course_id", student.CourseID))
	return student, nil
}

// Update replaces the mutable fields of a registration. The submitted
// email must match the stored one; knowing the id alone is not enough.
func (s *StudentService) Update(ctx context.Context, id int64, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "all registration fields are required")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}
	if existing.Email != req.Email {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "email does not match the registration")
	}

	student := &models.Student{
		ID:          id,
		Name:        req.Name,
		EnglishName: req.EnglishName,
		Email:       req.Email,
		Affiliation: req.Affiliation,
		Phone:       req.Phone,
		BirthDate:   req.BirthDate,
		CourseID:    existing.CourseID,
	}
	if err := s.repo.Update(ctx, student); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update registration")
	}
	return student, nil
}

// Delete removes a registration after the same email-match check as
// Update.
func (s *StudentService) Delete(ctx context.Context, id int64, email string) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}
	if existing.Email != email {
		return appErrors.Clone(appErrors.ErrForbidden, "email does not match the registration")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete registration")
	}
	return nil
}

// Lookup returns the registration for one email within one course.
func (s *StudentService) Lookup(ctx context.Context, email string, courseID int64) (*models.Student, error) {
	student, err := s.repo.FindByEmailAndCourse(ctx, email, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}
	return student, nil
}

// ListByCourse returns the roster of a course for its owner or an admin.
// A missing course is reported as forbidden so roster paths do not leak
// course existence.
func (s *StudentService) ListByCourse(ctx context.Context, claims *models.JWTClaims, courseID int64) ([]models.Student, error) {
	if err := s.authorizeRoster(ctx, claims, courseID); err != nil {
		return nil, err
	}

	students, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list roster")
	}
	return students, nil
}

// ListByEmail returns every registration under an email across courses,
// newest first.
func (s *StudentService) ListByEmail(ctx context.Context, email string) ([]models.RegistrationDetail, error) {
	details, err := s.repo.ListByEmail(ctx, email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registrations")
	}
	if len(details) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no registrations found")
	}
	return details, nil
}

func (s *StudentService) authorizeRoster(ctx context.Context, claims *models.JWTClaims, courseID int64) error {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrForbidden, "no access to this course")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if !claims.IsAdmin && course.InstructorID != claims.InstructorID {
		return appErrors.Clone(appErrors.ErrForbidden, "no access to this course")
	}
	return nil
}
