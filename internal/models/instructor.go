package models

import "time"

// Instructor represents an account stored in the instructors table.
// Accounts are created through registration and never deleted; the
// is_admin flag is only ever set by seeding or manual promotion.
type Instructor struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsAdmin      bool      `db:"is_admin" json:"is_admin"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// InstructorInfo is the public projection returned by auth endpoints.
type InstructorInfo struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

// Info strips credential material from an instructor record.
func (i *Instructor) Info() InstructorInfo {
	return InstructorInfo{ID: i.ID, Name: i.Name, Email: i.Email, IsAdmin: i.IsAdmin}
}
