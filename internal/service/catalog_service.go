package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ednc-edu/course-roster-api/internal/models"
	appErrors "github.com/ednc-edu/course-roster-api/pkg/errors"
)

type publicCourseRepository interface {
	ListPublic(ctx context.Context, search string, limit int) ([]models.CourseWithInstructor, error)
	CountPublic(ctx context.Context, search string) (int, error)
}

// PublicCourse is the anonymous catalog projection of a course.
type PublicCourse struct {
	models.CourseWithInstructor
	Status models.CourseStatus `json:"status"`
}

// CatalogService serves the unauthenticated course catalog. It is kept
// separate from CourseService so no authorization code is reachable from
// public read paths.
type CatalogService struct {
	repo   publicCourseRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewCatalogService constructs the catalog service.
func NewCatalogService(repo publicCourseRepository, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{repo: repo, logger: logger, now: time.Now}
}

// List returns catalog entries, optionally filtered by a case-insensitive
// substring of the course or instructor name and capped at limit rows.
func (s *CatalogService) List(ctx context.Context, search string, limit int) ([]PublicCourse, error) {
	courses, err := s.repo.ListPublic(ctx, search, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list catalog")
	}

	today := s.now()
	items := make([]PublicCourse, 0, len(courses))
	for i := range courses {
		items = append(items, PublicCourse{
			CourseWithInstructor: courses[i],
			Status:               courses[i].StatusOn(today),
		})
	}
	return items, nil
}

// Count returns the catalog row count for the same filter as List.
func (s *CatalogService) Count(ctx context.Context, search string) (int, error) {
	total, err := s.repo.CountPublic(ctx, search)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count catalog")
	}
	return total, nil
}
