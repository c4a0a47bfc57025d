package models

import "time"

// A row of the academy catalog, as maintained by the registrar.
type CatalogCourse struct {
	ID          string     `db:"id"`
	Title       string     `db:"title"`
	Instructor  string     `db:"instructor"`
	Level       string     `db:"level"`
	Status      string     `db:"status"`
	Description string     `db:"description"`
	StartDate   *time.Time `db:"start_date"`
	LessonCount *int       `db:"lesson_count"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

/*
A course placed on a student's dashboard. CourseID may point at a catalog
course that doesn't exist (yet); the override columns fill in or replace the
catalog's values when set.
*/
type CourseAssignment struct {
	ID        int     `db:"id"`
	StudentID int     `db:"student_id"`
	CourseID  *string `db:"course_id"`

	Title       *string    `db:"title"`
	Instructor  *string    `db:"instructor"`
	Level       *string    `db:"level"`
	Status      *string    `db:"status"`
	Description *string    `db:"description"`
	StartDate   *time.Time `db:"start_date"`
	LessonCount *int       `db:"lesson_count"`
	Progress    *float64   `db:"progress"`

	CreatedAt time.Time `db:"created_at"`
}

type LessonCompletion struct {
	StudentID   int       `db:"student_id"`
	CourseID    string    `db:"course_id"`
	LessonKey   string    `db:"lesson_key"`
	CompletedAt time.Time `db:"completed_at"`
}
