package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ednc-edu/course-roster-api/internal/models"
)

// InstructorRepository provides database access for instructor accounts.
type InstructorRepository struct {
	db *sqlx.DB
}

// NewInstructorRepository creates a new instance of InstructorRepository.
func NewInstructorRepository(db *sqlx.DB) *InstructorRepository {
	return &InstructorRepository{db: db}
}

// Create inserts a new instructor and fills in the generated id and
// creation timestamp.
func (r *InstructorRepository) Create(ctx context.Context, instructor *models.Instructor) error {
	const query = `INSERT INTO instructors (name, email, password_hash, is_admin) VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query, instructor.Name, instructor.Email, instructor.PasswordHash, instructor.IsAdmin)
	if err := row.Scan(&instructor.ID, &instructor.CreatedAt); err != nil {
		return fmt.Errorf("create instructor: %w", err)
	}
	return nil
}

// FindByEmail returns an instructor by email address.
func (r *InstructorRepository) FindByEmail(ctx context.Context, email string) (*models.Instructor, error) {
	const query = `SELECT id, name, email, password_hash, is_admin, created_at FROM instructors WHERE email = $1 LIMIT 1`
	var instructor models.Instructor
	if err := r.db.GetContext(ctx, &instructor, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find instructor by email: %w", err)
	}
	return &instructor, nil
}

// ExistsByEmail reports whether the email is already registered.
func (r *InstructorRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM instructors WHERE email = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		return false, fmt.Errorf("check instructor email: %w", err)
	}
	return exists, nil
}
