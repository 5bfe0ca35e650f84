package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ednc-edu/course-roster-api/internal/models"
)

func TestCourseRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	schedule := "Every Monday 19:00"
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO courses (name, schedule, start_date, end_date, instructor_id) VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at")).
		WithArgs("Pottery", &schedule, nil, nil, int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(9), time.Now()))

	course := &models.Course{Name: "Pottery", Schedule: &schedule, InstructorID: 5}
	require.NoError(t, repo.Create(context.Background(), course))
	assert.Equal(t, int64(9), course.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryUpdateScopesNonAdmin(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	schedule := "TBD"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE courses SET name = $1, schedule = $2, start_date = $3, end_date = $4 WHERE id = $5 AND instructor_id = $6")).
		WithArgs("Pottery", &schedule, nil, nil, int64(9), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	course := &models.Course{ID: 9, Name: "Pottery", Schedule: &schedule}
	require.NoError(t, repo.Update(context.Background(), course, 5, false))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryUpdateAdminSkipsOwnerFilter(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	schedule := "TBD"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE courses SET name = $1, schedule = $2, start_date = $3, end_date = $4 WHERE id = $5")).
		WithArgs("Pottery", &schedule, nil, nil, int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	course := &models.Course{ID: 9, Name: "Pottery", Schedule: &schedule}
	require.NoError(t, repo.Update(context.Background(), course, 99, true))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryUpdateNoMatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	schedule := "TBD"
	mock.ExpectExec("UPDATE courses SET").
		WithArgs("Pottery", &schedule, nil, nil, int64(9), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	course := &models.Course{ID: 9, Name: "Pottery", Schedule: &schedule}
	err := repo.Update(context.Background(), course, 5, false)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryDeleteCascadeOwner(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT instructor_id FROM courses WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"instructor_id"}).AddRow(int64(5)))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM students WHERE course_id = $1")).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM courses WHERE id = $1")).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteCascade(context.Background(), 9, 5, false))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryDeleteCascadeForeignOwner(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	// The ownership check fails inside the transaction, so no DELETE
	// statement ever runs.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT instructor_id FROM courses WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"instructor_id"}).AddRow(int64(77)))
	mock.ExpectRollback()

	err := repo.DeleteCascade(context.Background(), 9, 5, false)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryDeleteCascadeMissingCourse(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT instructor_id FROM courses").
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.DeleteCascade(context.Background(), 404, 5, false)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryDeleteCascadeAdmin(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT instructor_id FROM courses").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"instructor_id"}).AddRow(int64(77)))
	mock.ExpectExec("DELETE FROM students WHERE course_id").
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM courses WHERE id").
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteCascade(context.Background(), 9, 99, true))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryListByInstructorOrder(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "schedule", "start_date", "end_date", "instructor_id", "created_at"}).
		AddRow(int64(1), "Undated", "Mondays", nil, nil, int64(5), time.Now()).
		AddRow(int64(2), "Upcoming", nil, time.Now().AddDate(0, 1, 0), time.Now().AddDate(0, 2, 0), int64(5), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHEN start_date IS NULL THEN 0")).
		WithArgs(int64(5)).
		WillReturnRows(rows)

	courses, err := repo.ListByInstructor(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, courses, 2)
	assert.Equal(t, "Undated", courses[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryListPublicWithSearchAndLimit(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "schedule", "start_date", "end_date", "instructor_id", "created_at", "instructor_name"}).
		AddRow(int64(1), "Pottery", "Tuesdays", nil, nil, int64(5), time.Now(), "Jane Doe")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE c.name ILIKE $1 OR i.name ILIKE $1")).
		WithArgs("%pot%", 10).
		WillReturnRows(rows)

	courses, err := repo.ListPublic(context.Background(), "pot", 10)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "Jane Doe", courses[0].InstructorName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryListPublicUnfiltered(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "schedule", "start_date", "end_date", "instructor_id", "created_at", "instructor_name"})
	mock.ExpectQuery(regexp.QuoteMeta("WHEN c.start_date > CURRENT_DATE THEN 0")).
		WillReturnRows(rows)

	courses, err := repo.ListPublic(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Empty(t, courses)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryCountPublic(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM courses c JOIN instructors i ON c.instructor_id = i.id")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	total, err := repo.CountPublic(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
