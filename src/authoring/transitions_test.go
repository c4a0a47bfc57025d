package authoring

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCourse(t *testing.T, ids IDGenerator) (State, string) {
	t.Helper()
	return CreateCourse(State{}, ids, NewCourse{
		Title:      "Seerah",
		Instructor: "Ustadha Maryam",
		Cohort:     "Fall",
		StartDate:  "2024-09-09",
	})
}

func mustFind(t *testing.T, s State, id string) Course {
	t.Helper()
	c, ok := s.FindCourse(id)
	require.True(t, ok, "course %s not found", id)
	return c
}

func TestCreateCourse(t *testing.T) {
	ids := NewSequenceGenerator("id")
	s, id := newCourse(t, ids)

	assert.Equal(t, "id-1", id)
	c := mustFind(t, s, id)
	assert.Equal(t, "Seerah", c.Title)
	assert.Equal(t, "Ustadha Maryam", c.Instructor)
	assert.Equal(t, "Fall", c.Cohort)
	assert.Equal(t, "2024-09-09", c.StartDate)
	assert.Equal(t, PhaseDrafting, c.Phase)
	assert.False(t, c.Visible)
	assert.Empty(t, c.Lessons)
	assert.Empty(t, c.Sessions)
	assert.Empty(t, c.Resources)
	assert.Empty(t, c.CompletedLessonIDs)

	t.Run("appends", func(t *testing.T) {
		s2, id2 := CreateCourse(s, ids, NewCourse{Title: "Tajweed"})
		if assert.Len(t, s2.Courses, 2) {
			assert.Equal(t, id, s2.Courses[0].ID)
			assert.Equal(t, id2, s2.Courses[1].ID)
		}
		assert.Len(t, s.Courses, 1, "input state must not change")
	})
}

func TestCreateThenDelete(t *testing.T) {
	ids := NewSequenceGenerator("id")

	for _, start := range []State{{Courses: []Course{}}, SeedState(ids)} {
		created, id := CreateCourse(start, ids, NewCourse{Title: "X", Instructor: "Y", Cohort: "Z", StartDate: "2024"})
		assert.Len(t, created.Courses, len(start.Courses)+1)
		deleted := DeleteCourse(created, id)
		assert.Equal(t, start, deleted)
	}

	t.Run("deleting the last course leaves an empty list", func(t *testing.T) {
		created, id := CreateCourse(State{}, ids, NewCourse{Title: "X"})
		deleted := DeleteCourse(created, id)
		assert.NotNil(t, deleted.Courses)
		assert.Empty(t, deleted.Courses)

		raw, err := json.Marshal(deleted)
		require.Nil(t, err)
		assert.JSONEq(t, `{"courses": []}`, string(raw))
	})
	t.Run("does not modify the input", func(t *testing.T) {
		s := SeedState(NewSequenceGenerator("seed"))
		before := s.Clone()
		_ = DeleteCourse(s, s.Courses[0].ID)
		assert.Equal(t, before, s)
	})
}

func TestDeleteCourse(t *testing.T) {
	ids := NewSequenceGenerator("id")
	s := SeedState(ids)

	t.Run("unknown id", func(t *testing.T) {
		before := s.Clone()
		after := DeleteCourse(s, "nope")
		assert.Equal(t, before, after)
	})
	t.Run("removes only the target", func(t *testing.T) {
		target := s.Courses[1].ID
		after := DeleteCourse(s, target)
		assert.Len(t, after.Courses, len(s.Courses)-1)
		_, found := after.FindCourse(target)
		assert.False(t, found)
		assert.Equal(t, s.Courses[0], after.Courses[0])
		assert.Equal(t, s.Courses[2], after.Courses[1])
	})
}

func TestPublishLesson(t *testing.T) {
	t.Run("orders start at one", func(t *testing.T) {
		ids := NewSequenceGenerator("id")
		s, id := newCourse(t, ids)
		s = PublishLesson(s, ids, id, NewLesson{Title: "anything"}, nil)
		s = PublishLesson(s, ids, id, NewLesson{Title: ""}, nil)

		c := mustFind(t, s, id)
		if assert.Len(t, c.Lessons, 2) {
			assert.Equal(t, 1, c.Lessons[0].Order)
			assert.Equal(t, 2, c.Lessons[1].Order)
			assert.NotEqual(t, c.Lessons[0].ID, c.Lessons[1].ID)
		}
	})
	t.Run("order follows the max, not the count", func(t *testing.T) {
		ids := NewSequenceGenerator("id")
		s, id := newCourse(t, ids)
		s.Courses[0].Lessons = []Lesson{{ID: "old", Order: 7, Status: LessonStatusPublished}}
		s = PublishLesson(s, ids, id, NewLesson{Title: "next"}, nil)
		c := mustFind(t, s, id)
		assert.Equal(t, 8, c.Lessons[1].Order)
	})
	t.Run("status defaults to published", func(t *testing.T) {
		ids := NewSequenceGenerator("id")
		s, id := newCourse(t, ids)
		date := "2024-10-01"
		s = PublishLesson(s, ids, id, NewLesson{Title: "a"}, nil)
		s = PublishLesson(s, ids, id, NewLesson{Title: "b", Status: LessonStatusDraft, ReleaseDate: &date}, nil)
		c := mustFind(t, s, id)
		assert.Equal(t, LessonStatusPublished, c.Lessons[0].Status)
		assert.Nil(t, c.Lessons[0].ReleaseDate)
		assert.Equal(t, LessonStatusDraft, c.Lessons[1].Status)
		if assert.NotNil(t, c.Lessons[1].ReleaseDate) {
			assert.Equal(t, "2024-10-01", *c.Lessons[1].ReleaseDate)
		}
	})
	t.Run("makeCourseVisible true", func(t *testing.T) {
		ids := NewSequenceGenerator("id")
		s, id := newCourse(t, ids)
		s = PublishLesson(s, ids, id, NewLesson{Title: "a"}, boolPtr(true))
		c := mustFind(t, s, id)
		assert.True(t, c.Visible)
		assert.Equal(t, PhaseActive, c.Phase)
	})
	t.Run("makeCourseVisible false only hides", func(t *testing.T) {
		ids := NewSequenceGenerator("id")
		s, id := newCourse(t, ids)
		s = SetCoursePhase(s, id, PhaseRevision)
		s = ToggleVisibility(s, id, true)
		s = PublishLesson(s, ids, id, NewLesson{Title: "a"}, boolPtr(false))
		c := mustFind(t, s, id)
		assert.False(t, c.Visible)
		assert.Equal(t, PhaseRevision, c.Phase)
	})
	t.Run("makeCourseVisible omitted", func(t *testing.T) {
		ids := NewSequenceGenerator("id")
		s, id := newCourse(t, ids)
		s = PublishLesson(s, ids, id, NewLesson{Title: "a"}, nil)
		c := mustFind(t, s, id)
		assert.False(t, c.Visible)
		assert.Equal(t, PhaseDrafting, c.Phase)
	})
	t.Run("unknown course", func(t *testing.T) {
		ids := NewSequenceGenerator("id")
		s, _ := newCourse(t, ids)
		before := s.Clone()
		after := PublishLesson(s, ids, "nope", NewLesson{Title: "a"}, boolPtr(true))
		assert.Equal(t, before, after)
	})
	t.Run("does not modify the input", func(t *testing.T) {
		ids := NewSequenceGenerator("id")
		s, id := newCourse(t, ids)
		before := s.Clone()
		_ = PublishLesson(s, ids, id, NewLesson{Title: "a"}, boolPtr(true))
		assert.Equal(t, before, s)
	})
}

func TestScheduleSessionAndAddResource(t *testing.T) {
	ids := NewSequenceGenerator("id")
	s, id := newCourse(t, ids)

	s = ScheduleSession(s, ids, id, NewSession{Title: "Halaqa", Format: "Live", Date: "2024-09-12", Time: "19:00"})
	s = ScheduleSession(s, ids, id, NewSession{Title: "Review", Format: "In person", Date: "2024-09-19", Time: "19:00"})
	s = AddResource(s, ids, id, NewResource{Title: "Timeline", Type: "PDF", Size: "1 MB"})

	c := mustFind(t, s, id)
	if assert.Len(t, c.Sessions, 2) {
		assert.Equal(t, "Halaqa", c.Sessions[0].Title)
		assert.Equal(t, "Review", c.Sessions[1].Title)
		assert.NotEqual(t, c.Sessions[0].ID, c.Sessions[1].ID)
	}
	if assert.Len(t, c.Resources, 1) {
		assert.Equal(t, Resource{ID: c.Resources[0].ID, Title: "Timeline", Type: "PDF", Size: "1 MB"}, c.Resources[0])
	}

	before := s.Clone()
	assert.Equal(t, before, ScheduleSession(s, ids, "nope", NewSession{Title: "x"}))
	assert.Equal(t, before, AddResource(s, ids, "nope", NewResource{Title: "x"}))
}

func TestToggleVisibility(t *testing.T) {
	t.Run("drafting becomes enrollment", func(t *testing.T) {
		ids := NewSequenceGenerator("id")
		s, id := newCourse(t, ids)
		s = ToggleVisibility(s, id, true)
		c := mustFind(t, s, id)
		assert.True(t, c.Visible)
		assert.Equal(t, PhaseEnrollment, c.Phase)

		s = ToggleVisibility(s, id, false)
		c = mustFind(t, s, id)
		assert.False(t, c.Visible)
		assert.Equal(t, PhaseEnrollment, c.Phase, "hiding must not revert the phase")
	})
	t.Run("other phases are unchanged", func(t *testing.T) {
		for _, phase := range AllPhases {
			if phase == PhaseDrafting {
				continue
			}
			ids := NewSequenceGenerator("id")
			s, id := newCourse(t, ids)
			s = SetCoursePhase(s, id, phase)
			s = ToggleVisibility(s, id, true)
			c := mustFind(t, s, id)
			assert.True(t, c.Visible)
			assert.Equal(t, phase, c.Phase)
		}
	})
	t.Run("hiding a drafting course", func(t *testing.T) {
		ids := NewSequenceGenerator("id")
		s, id := newCourse(t, ids)
		s = ToggleVisibility(s, id, false)
		assert.Equal(t, PhaseDrafting, mustFind(t, s, id).Phase)
	})
}

func TestMarkLessonComplete(t *testing.T) {
	ids := NewSequenceGenerator("id")
	s, id := newCourse(t, ids)
	s = PublishLesson(s, ids, id, NewLesson{Title: "a"}, nil)
	lessonID := mustFind(t, s, id).Lessons[0].ID

	s = MarkLessonComplete(s, id, lessonID)
	s = MarkLessonComplete(s, id, lessonID)
	assert.Equal(t, []string{lessonID}, mustFind(t, s, id).CompletedLessonIDs)

	s = MarkLessonComplete(s, id, "L-other")
	assert.Equal(t, []string{lessonID, "L-other"}, mustFind(t, s, id).CompletedLessonIDs)

	before := s.Clone()
	assert.Equal(t, before, MarkLessonComplete(s, "nope", lessonID))
}

func TestSetCoursePhase(t *testing.T) {
	ids := NewSequenceGenerator("id")
	s, id := newCourse(t, ids)

	// any phase is reachable from any phase
	for _, from := range AllPhases {
		for _, to := range AllPhases {
			s = SetCoursePhase(s, id, from)
			s = SetCoursePhase(s, id, to)
			assert.Equal(t, to, mustFind(t, s, id).Phase)
		}
	}

	before := s.Clone()
	assert.Equal(t, before, SetCoursePhase(s, "nope", PhaseArchived))
}

func TestParsePhase(t *testing.T) {
	p, err := ParsePhase("enrollment")
	assert.Nil(t, err)
	assert.Equal(t, PhaseEnrollment, p)

	_, err = ParsePhase("graduated")
	assert.NotNil(t, err)

	st, err := ParseLessonStatus(" Ready ")
	assert.Nil(t, err)
	assert.Equal(t, LessonStatusReady, st)
}

func TestSeedState(t *testing.T) {
	s := SeedState(NewSequenceGenerator("seed"))
	assert.Len(t, s.Courses, 3)
	assert.Equal(t, SeedState(NewSequenceGenerator("seed")), s, "seed should be deterministic for a deterministic generator")
}
