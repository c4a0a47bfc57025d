package academydata

import (
	"context"
	"time"

	"git.nurpath.academy/nurpath/portal/src/assignments"
	"git.nurpath.academy/nurpath/portal/src/db"
	"git.nurpath.academy/nurpath/portal/src/models"
	"git.nurpath.academy/nurpath/portal/src/oops"
	"git.nurpath.academy/nurpath/portal/src/perf"
)

/*
Fetches the whole catalog, most recently updated first. When viewerID is
given, each course's CompletedLessons is the number of lessons that viewer
has completed in it; otherwise CompletedLessons is left unset.
*/
func FetchCatalog(ctx context.Context, conn db.ConnOrTx, viewerID *int) ([]assignments.CatalogCourse, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Fetch catalog")
	defer perf.EndBlock()

	if viewerID == nil {
		rows, err := db.Query[models.CatalogCourse](ctx, conn,
			`
			---- Fetch catalog
			SELECT $columns
			FROM catalog_course
			ORDER BY updated_at DESC, id
			`,
		)
		if err != nil {
			return nil, oops.New(err, "failed to fetch catalog")
		}

		result := make([]assignments.CatalogCourse, 0, len(rows))
		for _, row := range rows {
			result = append(result, CatalogCourseFromRow(row, nil))
		}
		return result, nil
	}

	type catalogRow struct {
		Course models.CatalogCourse `db:"course"`
		Done   struct {
			Completed int `db:"completed"`
		} `db:"done"`
	}
	rows, err := db.Query[catalogRow](ctx, conn,
		`
		---- Fetch catalog with completions
		SELECT $columns
		FROM
			catalog_course AS course
			LEFT JOIN LATERAL (
				SELECT COUNT(*)::int AS completed
				FROM lesson_completion AS lc
				WHERE lc.course_id = course.id AND lc.student_id = $1
			) AS done ON TRUE
		ORDER BY course.updated_at DESC, course.id
		`,
		*viewerID,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch catalog for viewer")
	}

	result := make([]assignments.CatalogCourse, 0, len(rows))
	for _, row := range rows {
		completed := row.Done.Completed
		result = append(result, CatalogCourseFromRow(&row.Course, &completed))
	}
	return result, nil
}

type CatalogCourseInput struct {
	ID          string
	Title       string
	Instructor  string
	Level       string
	Status      assignments.CourseStatus
	Description string
	StartDate   *time.Time
	LessonCount *int
}

// Inserts a catalog course, or replaces every field of an existing one.
func UpsertCatalogCourse(ctx context.Context, conn db.ConnOrTx, in CatalogCourseInput) error {
	_, err := conn.Exec(ctx,
		`
		INSERT INTO catalog_course (id, title, instructor, level, status, description, start_date, lesson_count, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			instructor = EXCLUDED.instructor,
			level = EXCLUDED.level,
			status = EXCLUDED.status,
			description = EXCLUDED.description,
			start_date = EXCLUDED.start_date,
			lesson_count = EXCLUDED.lesson_count,
			updated_at = NOW()
		`,
		in.ID, in.Title, in.Instructor, in.Level, string(in.Status), in.Description, in.StartDate, in.LessonCount,
	)
	if err != nil {
		return oops.New(err, "failed to upsert catalog course %s", in.ID)
	}
	return nil
}

// Records that a student finished a lesson. Recording the same lesson twice
// is not an error.
func RecordLessonCompletion(ctx context.Context, conn db.ConnOrTx, studentID int, courseID, lessonKey string) error {
	_, err := conn.Exec(ctx,
		`
		INSERT INTO lesson_completion (student_id, course_id, lesson_key, completed_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (student_id, course_id, lesson_key) DO NOTHING
		`,
		studentID, courseID, lessonKey,
	)
	if err != nil {
		return oops.New(err, "failed to record lesson completion")
	}
	return nil
}
