package authoring

import (
	"fmt"
	"strings"
)

type Phase string

const (
	PhaseDrafting   Phase = "Drafting"
	PhaseEnrollment Phase = "Enrollment"
	PhaseActive     Phase = "Active"
	PhaseRevision   Phase = "Revision"
	PhaseArchived   Phase = "Archived"
)

var AllPhases = []Phase{
	PhaseDrafting,
	PhaseEnrollment,
	PhaseActive,
	PhaseRevision,
	PhaseArchived,
}

// Case-insensitive.
func ParsePhase(s string) (Phase, error) {
	for _, p := range AllPhases {
		if strings.EqualFold(string(p), strings.TrimSpace(s)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown course phase: %q", s)
}

type LessonStatus string

const (
	LessonStatusDraft     LessonStatus = "draft"
	LessonStatusReady     LessonStatus = "ready"
	LessonStatusPublished LessonStatus = "published"
)

func ParseLessonStatus(s string) (LessonStatus, error) {
	switch LessonStatus(strings.ToLower(strings.TrimSpace(s))) {
	case LessonStatusDraft:
		return LessonStatusDraft, nil
	case LessonStatusReady:
		return LessonStatusReady, nil
	case LessonStatusPublished:
		return LessonStatusPublished, nil
	}
	return "", fmt.Errorf("unknown lesson status: %q", s)
}

// An instructor-facing course. CompletedLessonIDs tracks class-wide completion,
// not any single student's, and never holds duplicates.
type Course struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Cohort     string `json:"cohort"`
	Instructor string `json:"instructor"`
	Phase      Phase  `json:"phase"`
	StartDate  string `json:"startDate"`
	Visible    bool   `json:"visible"`

	Lessons            []Lesson   `json:"lessons"`
	Sessions           []Session  `json:"sessions"`
	Resources          []Resource `json:"resources"`
	CompletedLessonIDs []string   `json:"completedLessonIds"`
}

type Lesson struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Status      LessonStatus `json:"status"`
	ReleaseDate *string      `json:"releaseDate,omitempty"`
	Order       int          `json:"order"`
}

type Session struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Format string `json:"format"`
	Date   string `json:"date"`
	Time   string `json:"time"`
}

type Resource struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
	Size  string `json:"size"`
}

type State struct {
	Courses []Course `json:"courses"`
}

func (s State) FindCourse(id string) (Course, bool) {
	for _, c := range s.Courses {
		if c.ID == id {
			return c, true
		}
	}
	return Course{}, false
}

// Returns a copy that shares no slices with s.
func (s State) Clone() State {
	if s.Courses == nil {
		return State{}
	}
	courses := make([]Course, len(s.Courses))
	for i, c := range s.Courses {
		courses[i] = c.clone()
	}
	return State{Courses: courses}
}

func (c Course) clone() Course {
	result := c
	result.Lessons = cloneSlice(c.Lessons)
	for i, l := range result.Lessons {
		if l.ReleaseDate != nil {
			d := *l.ReleaseDate
			result.Lessons[i].ReleaseDate = &d
		}
	}
	result.Sessions = cloneSlice(c.Sessions)
	result.Resources = cloneSlice(c.Resources)
	result.CompletedLessonIDs = cloneSlice(c.CompletedLessonIDs)
	return result
}

// Keeps the empty/nil distinction so snapshots compare equal after a round trip.
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	result := make([]T, len(s))
	copy(result, s)
	return result
}
