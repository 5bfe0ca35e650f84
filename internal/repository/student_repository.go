package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ednc-edu/course-roster-api/internal/models"
)

// StudentRepository provides database access for roster registrations.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository creates a new instance of StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// Create inserts a new registration and fills in the generated id and
// timestamps.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	const query = `INSERT INTO students (name, english_name, email, affiliation, phone, birth_date, course_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`
	row := r.db.QueryRowxContext(ctx, query,
		student.Name, student.EnglishName, student.Email, student.Affiliation, student.Phone, student.BirthDate, student.CourseID)
	if err := row.Scan(&student.ID, &student.CreatedAt, &student.UpdatedAt); err != nil {
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

// FindByID returns a registration by identifier.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	const query = `SELECT id, name, english_name, email, affiliation, phone, birth_date, course_id, created_at, updated_at FROM students WHERE id = $1 LIMIT 1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find registration by id: %w", err)
	}
	return &student, nil
}

// Update replaces the mutable fields of a registration and touches
// updated_at. Zero matched rows is reported as sql.ErrNoRows.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	const query = `UPDATE students
		SET name = $1, english_name = $2, email = $3, affiliation = $4, phone = $5, birth_date = $6, updated_at = now()
		WHERE id = $7`
	res, err := r.db.ExecContext(ctx, query,
		student.Name, student.EnglishName, student.Email, student.Affiliation, student.Phone, student.BirthDate, student.ID)
	if err != nil {
		return fmt.Errorf("update registration: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update registration rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a registration. Zero matched rows is reported as
// sql.ErrNoRows.
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete registration rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FindByEmailAndCourse returns the registration matching the email within
// one course. The unique index on (email, course_id) guarantees at most
// one row.
func (r *StudentRepository) FindByEmailAndCourse(ctx context.Context, email string, courseID int64) (*models.Student, error) {
	const query = `SELECT id, name, english_name, email, affiliation, phone, birth_date, course_id, created_at, updated_at FROM students WHERE email = $1 AND course_id = $2 LIMIT 1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, email, courseID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find registration by email and course: %w", err)
	}
	return &student, nil
}

// ExistsByEmailAndCourse reports whether the email is already registered
// in the course.
func (r *StudentRepository) ExistsByEmailAndCourse(ctx context.Context, email string, courseID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM students WHERE email = $1 AND course_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email, courseID); err != nil {
		return false, fmt.Errorf("check registration email: %w", err)
	}
	return exists, nil
}

// ListByCourse returns the roster of one course, newest first.
func (r *StudentRepository) ListByCourse(ctx context.Context, courseID int64) ([]models.Student, error) {
	const query = `SELECT id, name, english_name, email, affiliation, phone, birth_date, course_id, created_at, updated_at FROM students WHERE course_id = $1 ORDER BY created_at DESC`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, courseID); err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	return students, nil
}

// ListByEmail returns every registration under the email joined with its
// course and the course owner's name, newest first.
func (r *StudentRepository) ListByEmail(ctx context.Context, email string) ([]models.RegistrationDetail, error) {
	const query = `SELECT
			s.id AS student_id,
			s.name,
			s.english_name,
			s.email,
			s.affiliation,
			s.phone,
			s.birth_date,
			s.created_at,
			s.updated_at,
			c.id AS course_id,
			c.name AS course_name,
			c.schedule,
			c.start_date,
			c.end_date,
			i.name AS instructor_name
		FROM students s
		JOIN courses c ON s.course_id = c.id
		LEFT JOIN instructors i ON c.instructor_id = i.id
		WHERE s.email = $1
		ORDER BY s.created_at DESC`
	var details []models.RegistrationDetail
	if err := r.db.SelectContext(ctx, &details, query, email); err != nil {
		return nil, fmt.Errorf("list registrations by email: %w", err)
	}
	return details, nil
}
