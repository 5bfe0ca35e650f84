package models

import (
	"strings"
	"time"
)

// CourseStatus classifies a course relative to a reference day.
type CourseStatus string

const (
	// StatusOpen means the course has no complete date range, so
	// registration is considered available indefinitely.
	StatusOpen CourseStatus = "open"
	// StatusUpcoming means the course starts after the reference day.
	StatusUpcoming CourseStatus = "upcoming"
	// StatusOngoing means the reference day falls inside the date range.
	StatusOngoing CourseStatus = "ongoing"
	// StatusClosed means the course ended before the reference day.
	StatusClosed CourseStatus = "closed"
)

// Course represents an offering stored in the courses table. Exactly one
// schedule representation holds: a non-blank free-text Schedule, or both
// StartDate and EndDate.
type Course struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Schedule     *string   `db:"schedule" json:"schedule"`
	StartDate    *Date     `db:"start_date" json:"start_date"`
	EndDate      *Date     `db:"end_date" json:"end_date"`
	InstructorID int64     `db:"instructor_id" json:"instructor_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// CourseWithInstructor joins a course with its owner's display name, as
// returned by the admin listing and the public catalog.
type CourseWithInstructor struct {
	Course
	InstructorName string `db:"instructor_name" json:"instructor_name"`
}

// StatusOn derives the lifecycle status of the course as of the given day.
func (c *Course) StatusOn(today time.Time) CourseStatus {
	return StatusOn(c.StartDate, c.EndDate, today)
}

// StatusOn classifies a date range against a reference day. A missing
// start or end date means the course has no bounded lifetime.
func StatusOn(start, end *Date, today time.Time) CourseStatus {
	if start == nil || end == nil {
		return StatusOpen
	}
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if day.Before(start.Time) {
		return StatusUpcoming
	}
	if day.After(end.Time) {
		return StatusClosed
	}
	return StatusOngoing
}

// ValidSchedule reports whether the schedule representation invariant
// holds: non-blank free text, or a complete start/end pair.
func ValidSchedule(schedule *string, start, end *Date) bool {
	if schedule != nil && strings.TrimSpace(*schedule) != "" {
		return true
	}
	return start != nil && end != nil
}
