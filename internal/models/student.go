package models

import "time"

// Student represents a self-registered roster entry tied to one course.
// Birth dates are stored as submitted text; the registration form does
// not constrain the format.
type Student struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	EnglishName string    `db:"english_name" json:"english_name"`
	Email       string    `db:"email" json:"email"`
	Affiliation string    `db:"affiliation" json:"affiliation"`
	Phone       string    `db:"phone" json:"phone"`
	BirthDate   string    `db:"birth_date" json:"birth_date"`
	CourseID    int64     `db:"course_id" json:"course_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// RegistrationDetail joins a roster entry with its course and the course
// owner's name, as returned by the cross-course email lookup.
type RegistrationDetail struct {
	StudentID   int64     `db:"student_id" json:"student_id"`
	Name        string    `db:"name" json:"name"`
	EnglishName string    `db:"english_name" json:"english_name"`
	Email       string    `db:"email" json:"email"`
	Affiliation string    `db:"affiliation" json:"affiliation"`
	Phone       string    `db:"phone" json:"phone"`
	BirthDate   string    `db:"birth_date" json:"birth_date"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`

	CourseID       int64   `db:"course_id" json:"course_id"`
	CourseName     string  `db:"course_name" json:"course_name"`
	Schedule       *string `db:"schedule" json:"schedule"`
	StartDate      *Date   `db:"start_date" json:"start_date"`
	EndDate        *Date   `db:"end_date" json:"end_date"`
	InstructorName *string `db:"instructor_name" json:"instructor_name"`
}
