package academydata

import (
	"context"
	"errors"
	"strings"
	"time"

	"git.nurpath.academy/nurpath/portal/src/assignments"
	"git.nurpath.academy/nurpath/portal/src/db"
	"git.nurpath.academy/nurpath/portal/src/models"
	"git.nurpath.academy/nurpath/portal/src/oops"
	"git.nurpath.academy/nurpath/portal/src/perf"
)

// Assignments in the order the registrar created them.
func FetchAssignmentsForStudent(ctx context.Context, conn db.ConnOrTx, studentID int) ([]assignments.Assignment, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Fetch assignments")
	defer perf.EndBlock()

	rows, err := db.Query[models.CourseAssignment](ctx, conn,
		`
		---- Fetch assignments for student
		SELECT $columns
		FROM course_assignment
		WHERE student_id = $1
		ORDER BY created_at, id
		`,
		studentID,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch assignments for student %d", studentID)
	}

	result := make([]assignments.Assignment, 0, len(rows))
	for _, row := range rows {
		result = append(result, AssignmentFromRow(row))
	}
	return result, nil
}

// Optional per-student replacements for catalog fields. Nil leaves the
// catalog's value in place.
type AssignmentOverrides struct {
	Title       *string
	Instructor  *string
	Level       *string
	Status      *assignments.CourseStatus
	Description *string
	StartDate   *time.Time
	LessonCount *int
	Progress    *float64
}

// Assigns a course to a student. courseID doesn't need to exist in the
// catalog yet. Returns the new assignment's id.
func AssignCourse(ctx context.Context, conn db.ConnOrTx, studentID int, courseID *string, o AssignmentOverrides) (int, error) {
	var status *string
	if o.Status != nil {
		s := string(*o.Status)
		status = &s
	}

	id, err := db.QueryOneScalar[int](ctx, conn,
		`
		INSERT INTO course_assignment (
			student_id, course_id,
			title, instructor, level, status, description, start_date, lesson_count, progress,
			created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING id
		`,
		studentID, courseID,
		o.Title, o.Instructor, o.Level, status, o.Description, o.StartDate, o.LessonCount, o.Progress,
	)
	if err != nil {
		return 0, oops.New(err, "failed to assign course")
	}
	return id, nil
}

var ErrNoSuchAssignment = errors.New("no such assignment")

func DeleteAssignment(ctx context.Context, conn db.ConnOrTx, assignmentID int) error {
	tag, err := conn.Exec(ctx, "DELETE FROM course_assignment WHERE id = $1", assignmentID)
	if err != nil {
		return oops.New(err, "failed to delete assignment")
	}
	if tag.RowsAffected() == 0 {
		return ErrNoSuchAssignment
	}
	return nil
}

func FetchUserByUsername(ctx context.Context, conn db.ConnOrTx, username string) (*models.User, error) {
	user, err := db.QueryOne[models.User](ctx, conn,
		`
		---- Fetch user by username
		SELECT $columns
		FROM portal_user
		WHERE LOWER(username) = $1
		`,
		strings.ToLower(username),
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, db.NotFound
		}
		return nil, oops.New(err, "failed to fetch user %s", username)
	}
	return user, nil
}

func CreateUser(ctx context.Context, conn db.ConnOrTx, username, email, name string, role models.UserRole, password string) (*models.User, error) {
	user, err := db.QueryOne[models.User](ctx, conn,
		`
		INSERT INTO portal_user (username, email, name, role, password, date_joined)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING $columns
		`,
		username, email, name, string(role), password,
	)
	if err != nil {
		return nil, oops.New(err, "failed to create user %s", username)
	}
	return user, nil
}
