package authoring

// An illustrative catalog for new installs and local dev.
func SeedState(ids IDGenerator) State {
	var s State

	s, seerah := CreateCourse(s, ids, NewCourse{
		Title:      "Seerah: The Makkan Period",
		Instructor: "Ustadha Maryam Siddiqui",
		Cohort:     "Fall 2024",
		StartDate:  "2024-09-09",
	})
	s = PublishLesson(s, ids, seerah, NewLesson{Title: "Arabia before the revelation"}, nil)
	s = PublishLesson(s, ids, seerah, NewLesson{Title: "The first revelation"}, boolPtr(true))
	s = PublishLesson(s, ids, seerah, NewLesson{Title: "The migration to Abyssinia", Status: LessonStatusReady}, nil)
	s = ScheduleSession(s, ids, seerah, NewSession{Title: "Weekly halaqa", Format: "Live: https://meet.nurpath.academy/seerah", Date: "2024-09-12", Time: "19:00"})
	s = AddResource(s, ids, seerah, NewResource{Title: "Timeline of the Makkan period", Type: "PDF", Size: "1.2 MB"})
	if c, ok := s.FindCourse(seerah); ok && len(c.Lessons) > 0 {
		s = MarkLessonComplete(s, seerah, c.Lessons[0].ID)
	}

	s, tajweed := CreateCourse(s, ids, NewCourse{
		Title:      "Tajweed Foundations",
		Instructor: "Shaykh Idris Rahman",
		Cohort:     "Evening cohort",
		StartDate:  "2024-10-01",
	})
	s = PublishLesson(s, ids, tajweed, NewLesson{Title: "Makharij al-huruf", Status: LessonStatusDraft}, nil)
	s = ToggleVisibility(s, tajweed, true)
	s = ScheduleSession(s, ids, tajweed, NewSession{Title: "Recitation clinic", Format: "In person", Date: "2024-10-03", Time: "18:30"})
	s = AddResource(s, ids, tajweed, NewResource{Title: "Articulation points chart", Type: "Image", Size: "640 KB"})

	s, _ = CreateCourse(s, ids, NewCourse{
		Title:      "Fiqh of Worship",
		Instructor: "Ustadh Yusuf Karimi",
		Cohort:     "Spring 2025",
		StartDate:  "2025-02-03",
	})

	return s
}

func boolPtr(b bool) *bool {
	return &b
}
