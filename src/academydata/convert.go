package academydata

import (
	"strconv"

	"git.nurpath.academy/nurpath/portal/src/assignments"
	"git.nurpath.academy/nurpath/portal/src/models"
)

// An unrecognized status in the database reads as empty, which the
// reconciler treats as missing.
func CatalogCourseFromRow(row *models.CatalogCourse, completed *int) assignments.CatalogCourse {
	status, _ := assignments.ParseCourseStatus(row.Status)
	return assignments.CatalogCourse{
		ID:               row.ID,
		Title:            row.Title,
		Instructor:       row.Instructor,
		Level:            row.Level,
		Status:           status,
		Description:      row.Description,
		StartDate:        row.StartDate,
		LessonCount:      row.LessonCount,
		CompletedLessons: completed,
	}
}

func AssignmentFromRow(row *models.CourseAssignment) assignments.Assignment {
	a := assignments.Assignment{
		ID:          strconv.Itoa(row.ID),
		CourseID:    row.CourseID,
		Title:       row.Title,
		Instructor:  row.Instructor,
		Level:       row.Level,
		Description: row.Description,
		StartDate:   row.StartDate,
		LessonCount: row.LessonCount,
		Progress:    row.Progress,
	}
	if row.Status != nil {
		if status, ok := assignments.ParseCourseStatus(*row.Status); ok {
			a.Status = &status
		}
	}
	return a
}
