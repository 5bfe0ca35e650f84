package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ednc-edu/course-roster-api/internal/models"
)

// Course listings bucket rows by temporal phase before sorting by start
// date. The instructor dashboard floats undated courses to the top; the
// public catalog floats upcoming courses and sinks finished ones.
const (
	ownerOrderClause = ` ORDER BY
		CASE
			WHEN start_date IS NULL THEN 0
			WHEN start_date >= CURRENT_DATE THEN 1
			ELSE 2
		END,
		start_date ASC,
		created_at DESC`

	adminOrderClause = ` ORDER BY
		CASE
			WHEN c.start_date IS NULL THEN 0
			WHEN c.start_date >= CURRENT_DATE THEN 1
			ELSE 2
		END,
		c.start_date ASC,
		c.created_at DESC`

	publicOrderClause = ` ORDER BY
		CASE
			WHEN c.start_date IS NULL THEN 1
			WHEN c.start_date > CURRENT_DATE THEN 0
			WHEN c.end_date IS NULL OR c.end_date >= CURRENT_DATE THEN 1
			ELSE 2
		END,
		c.start_date ASC,
		c.created_at DESC`
)

// CourseRepository provides database access for course records.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new instance of CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// Create inserts a new course and fills in the generated id and creation
// timestamp.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	const query = `INSERT INTO courses (name, schedule, start_date, end_date, instructor_id) VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query, course.Name, course.Schedule, course.StartDate, course.EndDate, course.InstructorID)
	if err := row.Scan(&course.ID, &course.CreatedAt); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// FindByID returns a course by identifier.
func (r *CourseRepository) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	const query = `SELECT id, name, schedule, start_date, end_date, instructor_id, created_at FROM courses WHERE id = $1 LIMIT 1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find course by id: %w", err)
	}
	return &course, nil
}

// Update replaces the mutable fields of a course. Non-admin actors only
// match rows they own; zero matched rows is reported as sql.ErrNoRows so
// callers cannot distinguish absent from foreign-owned.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course, actorID int64, isAdmin bool) error {
	query := `UPDATE courses SET name = $1, schedule = $2, start_date = $3, end_date = $4 WHERE id = $5`
	args := []interface{}{course.Name, course.Schedule, course.StartDate, course.EndDate, course.ID}
	if !isAdmin {
		query += ` AND instructor_id = $6`
		args = append(args, actorID)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update course rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteCascade removes a course and its registrations in one
// transaction. Ownership is checked first, while the course row is
// locked, so registrations of a course the actor may not delete are
// never touched.
func (r *CourseRepository) DeleteCascade(ctx context.Context, courseID, actorID int64, isAdmin bool) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete course: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	authQuery := `SELECT instructor_id FROM courses WHERE id = $1 FOR UPDATE`
	var ownerID int64
	if err := tx.GetContext(ctx, &ownerID, authQuery, courseID); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("lock course for delete: %w", err)
	}
	if !isAdmin && ownerID != actorID {
		return sql.ErrNoRows
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM students WHERE course_id = $1`, courseID); err != nil {
		return fmt.Errorf("delete course registrations: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, courseID); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete course: %w", err)
	}
	return nil
}

// ListByInstructor returns the courses owned by one instructor in
// dashboard order.
func (r *CourseRepository) ListByInstructor(ctx context.Context, instructorID int64) ([]models.Course, error) {
	query := `SELECT id, name, schedule, start_date, end_date, instructor_id, created_at FROM courses WHERE instructor_id = $1` + ownerOrderClause
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, instructorID); err != nil {
		return nil, fmt.Errorf("list courses by instructor: %w", err)
	}
	return courses, nil
}

// ListAll returns every course joined with its owner's name, in dashboard
// order. Used by admin listings.
func (r *CourseRepository) ListAll(ctx context.Context) ([]models.CourseWithInstructor, error) {
	query := `SELECT c.id, c.name, c.schedule, c.start_date, c.end_date, c.instructor_id, c.created_at, i.name AS instructor_name
		FROM courses c
		JOIN instructors i ON c.instructor_id = i.id` + adminOrderClause
	var courses []models.CourseWithInstructor
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list all courses: %w", err)
	}
	return courses, nil
}

// ListPublic returns the anonymous catalog projection. The optional
// search matches course or instructor names case-insensitively; limit
// caps the result count when positive.
func (r *CourseRepository) ListPublic(ctx context.Context, search string, limit int) ([]models.CourseWithInstructor, error) {
	query := `SELECT c.id, c.name, c.schedule, c.start_date, c.end_date, c.instructor_id, c.created_at, i.name AS instructor_name
		FROM courses c
		JOIN instructors i ON c.instructor_id = i.id`

	var args []interface{}
	if search != "" {
		query += ` WHERE c.name ILIKE $1 OR i.name ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += publicOrderClause
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
		args = append(args, limit)
	}

	var courses []models.CourseWithInstructor
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("list public courses: %w", err)
	}
	return courses, nil
}

// CountPublic returns the catalog row count for the same filter as
// ListPublic.
func (r *CourseRepository) CountPublic(ctx context.Context, search string) (int, error) {
	query := `SELECT COUNT(*) FROM courses c JOIN instructors i ON c.instructor_id = i.id`
	var args []interface{}
	if search != "" {
		query += ` WHERE c.name ILIKE $1 OR i.name ILIKE $1`
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("count public courses: %w", err)
	}
	return total, nil
}
