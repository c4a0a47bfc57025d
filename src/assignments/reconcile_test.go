package assignments

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T {
	return &v
}

func TestReconcile(t *testing.T) {
	seerah := CatalogCourse{
		ID:               "c1",
		Title:            "Seerah",
		Instructor:       "Ustadha Maryam",
		Level:            "Beginner",
		Status:           CourseStatusActive,
		Description:      "The life of the Prophet.",
		LessonCount:      ptr(10),
		CompletedLessons: ptr(4),
	}

	t.Run("catalog match with no overrides", func(t *testing.T) {
		res := Reconcile([]Assignment{{ID: "a1", CourseID: ptr("c1")}}, []CatalogCourse{seerah})
		if assert.Len(t, res, 1) {
			assert.Equal(t, "a1", res[0].ID)
			assert.Equal(t, "c1", res[0].CourseID)
			assert.True(t, res[0].Matched)
			assert.Equal(t, "Seerah", res[0].Title)
			assert.Equal(t, "Ustadha Maryam", res[0].Instructor)
			assert.Equal(t, "Beginner", res[0].Level)
			assert.Equal(t, CourseStatusActive, res[0].Status)
			assert.Equal(t, 40, res[0].Progress)
		}
	})
	t.Run("missing course falls back", func(t *testing.T) {
		res := Reconcile([]Assignment{{ID: "a2", CourseID: ptr("missing")}}, []CatalogCourse{seerah})
		if assert.Len(t, res, 1) {
			assert.False(t, res[0].Matched)
			assert.Equal(t, FallbackTitle, res[0].Title)
			assert.Equal(t, "Course details syncing", res[0].Title)
			assert.Equal(t, "Instructor TBA", res[0].Instructor)
			assert.Equal(t, "All levels", res[0].Level)
			assert.Equal(t, CourseStatusUpcoming, res[0].Status)
			assert.Equal(t, FallbackDescription, res[0].Description)
			assert.Nil(t, res[0].StartDate)
			assert.Nil(t, res[0].LessonCount)
			assert.Equal(t, 0, res[0].Progress)
		}
	})
	t.Run("no course reference", func(t *testing.T) {
		res := Reconcile([]Assignment{{ID: "a3"}}, []CatalogCourse{seerah})
		if assert.Len(t, res, 1) {
			assert.Equal(t, "", res[0].CourseID)
			assert.Equal(t, FallbackTitle, res[0].Title)
			assert.Equal(t, 0, res[0].Progress)
		}
	})
	t.Run("overrides shadow the catalog", func(t *testing.T) {
		start := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
		res := Reconcile([]Assignment{{
			ID:          "a4",
			CourseID:    ptr("c1"),
			Title:       ptr("Seerah (Sisters' cohort)"),
			Instructor:  ptr(""),
			Status:      ptr(CourseStatusCompleted),
			StartDate:   &start,
			LessonCount: ptr(20),
		}}, []CatalogCourse{seerah})
		if assert.Len(t, res, 1) {
			assert.Equal(t, "Seerah (Sisters' cohort)", res[0].Title)
			assert.Equal(t, "Ustadha Maryam", res[0].Instructor, "empty override should not win")
			assert.Equal(t, CourseStatusCompleted, res[0].Status)
			assert.Equal(t, &start, res[0].StartDate)
			assert.Equal(t, 20, *res[0].LessonCount)
			assert.Equal(t, 20, res[0].Progress, "4 of 20 lessons")
		}
	})
	t.Run("explicit progress wins", func(t *testing.T) {
		cases := []struct {
			progress float64
			expected int
		}{
			{progress: 72, expected: 72},
			{progress: 72.5, expected: 73},
			{progress: 250, expected: 100},
			{progress: -10, expected: 0},
		}
		for _, tc := range cases {
			res := Reconcile([]Assignment{{ID: "a", CourseID: ptr("c1"), Progress: ptr(tc.progress)}}, []CatalogCourse{seerah})
			assert.Equal(t, tc.expected, res[0].Progress, "progress %v", tc.progress)

			res = Reconcile([]Assignment{{ID: "a", CourseID: ptr("nope"), Progress: ptr(tc.progress)}}, nil)
			assert.Equal(t, tc.expected, res[0].Progress, "unmatched progress %v", tc.progress)
		}
	})
	t.Run("stale completion counts are clamped", func(t *testing.T) {
		stale := seerah
		stale.CompletedLessons = ptr(14)
		res := Reconcile([]Assignment{{ID: "a", CourseID: ptr("c1")}}, []CatalogCourse{stale})
		assert.Equal(t, 100, res[0].Progress)
	})
	t.Run("zero lesson count", func(t *testing.T) {
		empty := seerah
		empty.LessonCount = ptr(0)
		res := Reconcile([]Assignment{{ID: "a", CourseID: ptr("c1")}}, []CatalogCourse{empty})
		assert.Equal(t, 0, res[0].Progress)
	})
	t.Run("preserves order and length", func(t *testing.T) {
		input := []Assignment{
			{ID: "z", CourseID: ptr("c1")},
			{ID: "a", CourseID: ptr("missing")},
			{ID: "m"},
			{ID: "b", CourseID: ptr("c1")},
		}
		res := Reconcile(input, []CatalogCourse{seerah})
		if assert.Len(t, res, len(input)) {
			for i := range input {
				assert.Equal(t, input[i].ID, res[i].ID)
			}
		}
	})
	t.Run("empty input", func(t *testing.T) {
		res := Reconcile(nil, []CatalogCourse{seerah})
		assert.Len(t, res, 0)
	})
	t.Run("idempotent", func(t *testing.T) {
		input := []Assignment{{ID: "a1", CourseID: ptr("c1")}, {ID: "a2"}}
		catalog := []CatalogCourse{seerah}
		assert.Equal(t, Reconcile(input, catalog), Reconcile(input, catalog))
	})
}

func TestDeriveCatalogProgress(t *testing.T) {
	assert.Equal(t, 0, DeriveCatalogProgress(nil, ptr(3)))
	assert.Equal(t, 0, DeriveCatalogProgress(ptr(0), ptr(3)))
	assert.Equal(t, 0, DeriveCatalogProgress(ptr(8), nil))
	assert.Equal(t, 33, DeriveCatalogProgress(ptr(3), ptr(1)))
	assert.Equal(t, 67, DeriveCatalogProgress(ptr(3), ptr(2)))
	assert.Equal(t, 50, DeriveCatalogProgress(ptr(8), ptr(4)))
	assert.Equal(t, 100, DeriveCatalogProgress(ptr(8), ptr(9)))
	assert.Equal(t, 0, DeriveCatalogProgress(ptr(8), ptr(-2)))
}

func TestAggregateProgress(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, 0, AggregateProgress(nil))
		assert.Equal(t, 0, AggregateProgress([]ResolvedAssignment{}))
	})
	t.Run("identical values", func(t *testing.T) {
		for _, v := range []int{0, 17, 40, 100} {
			resolved := []ResolvedAssignment{{Progress: v}, {Progress: v}, {Progress: v}}
			assert.Equal(t, v, AggregateProgress(resolved))
		}
	})
	t.Run("rounds half up", func(t *testing.T) {
		assert.Equal(t, 51, AggregateProgress([]ResolvedAssignment{{Progress: 40}, {Progress: 61}}))
		assert.Equal(t, 33, AggregateProgress([]ResolvedAssignment{{Progress: 0}, {Progress: 0}, {Progress: 100}}))
	})
}

func TestClampPercent(t *testing.T) {
	assert.Equal(t, 0, ClampPercent(-0.4))
	assert.Equal(t, 1, ClampPercent(0.5))
	assert.Equal(t, 99, ClampPercent(99.49))
	assert.Equal(t, 100, ClampPercent(99.5))
	assert.Equal(t, 100, ClampPercent(1e9))
}

func TestParseCourseStatus(t *testing.T) {
	st, ok := ParseCourseStatus(" Active")
	assert.True(t, ok)
	assert.Equal(t, CourseStatusActive, st)

	_, ok = ParseCourseStatus("paused")
	assert.False(t, ok)
}
