package assignments

import "time"

/*
Merges a learner's assignments with the course catalog.

Every field is resolved independently with the precedence

	assignment override -> catalog match -> fallback

where a nil or empty override counts as unset. Assignments whose course can't
be found are still returned, filled in with fallbacks. The result has exactly
one entry per assignment, in the same order.
*/
func Reconcile(assignments []Assignment, catalog []CatalogCourse) []ResolvedAssignment {
	byID := make(map[string]*CatalogCourse, len(catalog))
	for i := range catalog {
		byID[catalog[i].ID] = &catalog[i]
	}

	result := make([]ResolvedAssignment, 0, len(assignments))
	for _, a := range assignments {
		var match *CatalogCourse
		if a.CourseID != nil {
			match = byID[*a.CourseID]
		}
		result = append(result, resolve(a, match))
	}
	return result
}

func resolve(a Assignment, match *CatalogCourse) ResolvedAssignment {
	// Reading through a zero value keeps the per-field code below free of nil checks.
	var c CatalogCourse
	if match != nil {
		c = *match
	}

	res := ResolvedAssignment{
		ID:      a.ID,
		Matched: match != nil,

		Title:       firstText(a.Title, c.Title, FallbackTitle),
		Instructor:  firstText(a.Instructor, c.Instructor, FallbackInstructor),
		Level:       firstText(a.Level, c.Level, FallbackLevel),
		Description: firstText(a.Description, c.Description, FallbackDescription),
		Status:      resolveStatus(a.Status, c.Status),
		StartDate:   firstTime(a.StartDate, c.StartDate),
		LessonCount: firstInt(a.LessonCount, c.LessonCount),

		CompletedLessons: c.CompletedLessons,
	}
	if a.CourseID != nil {
		res.CourseID = *a.CourseID
	}

	if a.Progress != nil {
		res.Progress = ClampPercent(*a.Progress)
	} else {
		res.Progress = DeriveCatalogProgress(res.LessonCount, c.CompletedLessons)
	}

	return res
}

func firstText(override *string, catalog string, fallback string) string {
	if override != nil && *override != "" {
		return *override
	}
	if catalog != "" {
		return catalog
	}
	return fallback
}

func resolveStatus(override *CourseStatus, catalog CourseStatus) CourseStatus {
	if override != nil && *override != "" {
		return *override
	}
	if catalog != "" {
		return catalog
	}
	return FallbackStatus
}

func firstTime(override *time.Time, catalog *time.Time) *time.Time {
	if override != nil {
		return override
	}
	return catalog
}

func firstInt(override *int, catalog *int) *int {
	if override != nil {
		return override
	}
	return catalog
}
