package assignments

import (
	"strings"
	"time"
)

type CourseStatus string

const (
	CourseStatusUpcoming  CourseStatus = "upcoming"
	CourseStatusActive    CourseStatus = "active"
	CourseStatusCompleted CourseStatus = "completed"
)

var AllCourseStatuses = []CourseStatus{CourseStatusUpcoming, CourseStatusActive, CourseStatusCompleted}

// Matches case-insensitively. Unknown values report false.
func ParseCourseStatus(s string) (CourseStatus, bool) {
	for _, st := range AllCourseStatuses {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, true
		}
	}
	return "", false
}

// Shown in place of catalog data that hasn't arrived yet.
const (
	FallbackTitle       = "Course details syncing"
	FallbackInstructor  = "Instructor TBA"
	FallbackLevel       = "All levels"
	FallbackStatus      = CourseStatusUpcoming
	FallbackDescription = "Course details are being synced from the academy catalog. Check back soon for the full syllabus."
)

// A CatalogCourse is shared course metadata, independent of any one learner.
// CompletedLessons is the number of lessons the current viewer has finished,
// if known.
type CatalogCourse struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	Instructor       string       `json:"instructor"`
	Level            string       `json:"level"`
	Status           CourseStatus `json:"status"`
	Description      string       `json:"description"`
	StartDate        *time.Time   `json:"startDate,omitempty"`
	LessonCount      *int         `json:"lessonCount,omitempty"`
	CompletedLessons *int         `json:"completedLessons,omitempty"`
}

// An Assignment is a registrar's decision to enroll one learner in one course.
// Every non-nil field shadows the matching catalog field.
type Assignment struct {
	ID       string  `json:"id"`
	CourseID *string `json:"courseId,omitempty"`

	Title       *string       `json:"title,omitempty"`
	Instructor  *string       `json:"instructor,omitempty"`
	Level       *string       `json:"level,omitempty"`
	Status      *CourseStatus `json:"status,omitempty"`
	Description *string       `json:"description,omitempty"`
	StartDate   *time.Time    `json:"startDate,omitempty"`
	LessonCount *int          `json:"lessonCount,omitempty"`

	Progress *float64 `json:"progress,omitempty"`
}

type ResolvedAssignment struct {
	ID       string `json:"id"`
	CourseID string `json:"courseId,omitempty"`
	Matched  bool   `json:"matched"`

	Title            string       `json:"title"`
	Instructor       string       `json:"instructor"`
	Level            string       `json:"level"`
	Status           CourseStatus `json:"status"`
	Description      string       `json:"description"`
	StartDate        *time.Time   `json:"startDate,omitempty"`
	LessonCount      *int         `json:"lessonCount,omitempty"`
	CompletedLessons *int         `json:"completedLessons,omitempty"`

	Progress int `json:"progress"`
}
