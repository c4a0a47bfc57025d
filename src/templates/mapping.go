package templates

import (
	"html/template"
	"strings"

	"git.nurpath.academy/nurpath/portal/src/assignments"
	"git.nurpath.academy/nurpath/portal/src/authoring"
	"git.nurpath.academy/nurpath/portal/src/models"
	"git.nurpath.academy/nurpath/portal/src/parsing"
	"git.nurpath.academy/nurpath/portal/src/portalurl"
)

func UserToTemplate(u *models.User) User {
	return User{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.BestName(),
		Role:     string(u.Role),

		CanAuthorCourses:     u.CanAuthorCourses(),
		CanManageAssignments: u.CanManageAssignments(),
	}
}

func SessionToTemplate(s *models.Session) Session {
	return Session{
		CSRFToken: s.CSRFToken,
	}
}

func ProgramToTemplate(c assignments.CatalogCourse) Program {
	return Program{
		ID:          c.ID,
		Title:       c.Title,
		Instructor:  c.Instructor,
		Level:       c.Level,
		Status:      string(c.Status),
		Description: markdownToHTML(c.Description),
		StartDate:   c.StartDate,
		LessonCount: c.LessonCount,
	}
}

var CourseStatusClasses = map[assignments.CourseStatus]string{
	assignments.CourseStatusUpcoming:  "status-upcoming",
	assignments.CourseStatusActive:    "status-active",
	assignments.CourseStatusCompleted: "status-completed",
}

func DashboardCourseToTemplate(r assignments.ResolvedAssignment) DashboardCourse {
	return DashboardCourse{
		ID:          r.ID,
		Title:       r.Title,
		Instructor:  r.Instructor,
		Level:       r.Level,
		Status:      string(r.Status),
		StatusClass: CourseStatusClasses[r.Status],
		Description: markdownToHTML(r.Description),
		StartDate:   r.StartDate,

		LessonCount:      r.LessonCount,
		CompletedLessons: r.CompletedLessons,
		Progress:         r.Progress,

		Synced: r.Matched,
	}
}

func StudioCourseToTemplate(c authoring.Course) StudioCourse {
	completed := make(map[string]bool, len(c.CompletedLessonIDs))
	for _, id := range c.CompletedLessonIDs {
		completed[id] = true
	}

	lessons := make([]StudioLesson, 0, len(c.Lessons))
	for _, l := range c.Lessons {
		lessons = append(lessons, lessonToTemplate(c.ID, l, completed[l.ID]))
	}

	var next *StudioLesson
	if l, ok := authoring.NextLesson(c); ok {
		nl := lessonToTemplate(c.ID, l, completed[l.ID])
		next = &nl
	}

	return StudioCourse{
		ID:         c.ID,
		Title:      c.Title,
		Cohort:     c.Cohort,
		Instructor: c.Instructor,
		Phase:      string(c.Phase),
		StartDate:  c.StartDate,
		Visible:    c.Visible,

		Progress:   authoring.CourseProgress(c),
		NextLesson: next,
		Lessons:    lessons,

		DeleteUrl:          portalurl.BuildStudioDeleteCourse(c.ID),
		PublishLessonUrl:   portalurl.BuildStudioPublishLesson(c.ID),
		ScheduleSessionUrl: portalurl.BuildStudioScheduleSession(c.ID),
		AddResourceUrl:     portalurl.BuildStudioAddResource(c.ID),
		VisibilityUrl:      portalurl.BuildStudioVisibility(c.ID),
		PhaseUrl:           portalurl.BuildStudioPhase(c.ID),
	}
}

func lessonToTemplate(courseID string, l authoring.Lesson, completed bool) StudioLesson {
	return StudioLesson{
		ID:          l.ID,
		Title:       l.Title,
		Status:      string(l.Status),
		ReleaseDate: maybeString(l.ReleaseDate),
		Order:       l.Order,
		Completed:   completed,

		CompleteUrl: portalurl.BuildStudioCompleteLesson(courseID, l.ID),
	}
}

func StudioSessionToTemplate(s authoring.TaggedSession) StudioSession {
	return StudioSession{
		ID:          s.ID,
		CourseID:    s.CourseID,
		CourseTitle: s.CourseTitle,
		Title:       s.Title,
		Format:      template.HTML(parsing.Linkify(s.Format)),
		Date:        s.Date,
		Time:        s.Time,
	}
}

func StudioResourceToTemplate(r authoring.TaggedResource) StudioResource {
	return StudioResource{
		ID:          r.ID,
		CourseID:    r.CourseID,
		CourseTitle: r.CourseTitle,
		Title:       r.Title,
		Type:        r.Type,
		Size:        r.Size,
	}
}

func markdownToHTML(source string) template.HTML {
	if strings.TrimSpace(source) == "" {
		return ""
	}
	return template.HTML(parsing.ParseMarkdown(source, parsing.CourseMarkdown))
}

func maybeString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
