package authoring

import (
	"math"
	"sort"
)

func PublishedLessons(c Course) []Lesson {
	var result []Lesson
	for _, l := range c.Lessons {
		if l.Status == LessonStatusPublished {
			result = append(result, l)
		}
	}
	return result
}

// The first published lesson, by order, that the class hasn't completed. Once
// everything is complete this is the last published lesson. Returns false if
// nothing is published.
func NextLesson(c Course) (Lesson, bool) {
	published := PublishedLessons(c)
	if len(published) == 0 {
		return Lesson{}, false
	}
	sort.SliceStable(published, func(i, j int) bool {
		return published[i].Order < published[j].Order
	})

	for _, l := range published {
		if !c.isCompleted(l.ID) {
			return l, true
		}
	}
	return published[len(published)-1], true
}

// Percentage of published lessons marked complete. Completions of lessons that
// aren't published don't count.
func CourseProgress(c Course) int {
	published := PublishedLessons(c)
	if len(published) == 0 {
		return 0
	}

	completed := 0
	for _, l := range published {
		if c.isCompleted(l.ID) {
			completed++
		}
	}
	return int(math.Floor(100*float64(completed)/float64(len(published)) + 0.5))
}

type TaggedSession struct {
	Session
	CourseID    string `json:"courseId"`
	CourseTitle string `json:"courseTitle"`
}

type TaggedResource struct {
	Resource
	CourseID    string `json:"courseId"`
	CourseTitle string `json:"courseTitle"`
}

func UpcomingSessions(courses []Course) []TaggedSession {
	var result []TaggedSession
	for _, c := range courses {
		for _, s := range c.Sessions {
			result = append(result, TaggedSession{
				Session:     s,
				CourseID:    c.ID,
				CourseTitle: c.Title,
			})
		}
	}
	return result
}

func ResourceLibrary(courses []Course) []TaggedResource {
	var result []TaggedResource
	for _, c := range courses {
		for _, r := range c.Resources {
			result = append(result, TaggedResource{
				Resource:    r,
				CourseID:    c.ID,
				CourseTitle: c.Title,
			})
		}
	}
	return result
}
