package templates

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"git.nurpath.academy/nurpath/portal/src/assignments"
	"git.nurpath.academy/nurpath/portal/src/authoring"
	"git.nurpath.academy/nurpath/portal/src/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllTemplatesParse(t *testing.T) {
	templates, errs := getTemplatesFromFS(embeddedTemplateFs)
	for name, err := range errs {
		t.Errorf("%s: %v", name, err)
	}
	for _, name := range []string{"index.html", "about.html", "programs.html", "auth_login.html", "dashboard.html", "studio.html", "404.html", "error.html", "reject.html", "perfmon.html"} {
		assert.Contains(t, templates, name)
	}
}

func testBaseData() BaseData {
	return BaseData{
		Title:   "Test",
		User:    &User{ID: 1, Username: "amina", Name: "Amina", Role: "student"},
		Session: &Session{CSRFToken: "tok<en>"},
		Header:  Header{HomepageUrl: "/", LogoutUrl: "/logout"},
		Footer:  Footer{ContactEmail: "registrar@nurpath.academy"},
	}
}

func TestRenderDashboard(t *testing.T) {
	start := time.Date(2024, 9, 9, 0, 0, 0, 0, time.UTC)
	data := struct {
		BaseData
		Courses         []DashboardCourse
		OverallProgress int
	}{
		BaseData: testBaseData(),
		Courses: []DashboardCourse{
			DashboardCourseToTemplate(assignments.ResolvedAssignment{
				ID:          "1",
				Matched:     true,
				Title:       "Seerah",
				Instructor:  "Ustadha Maryam",
				Level:       "Beginner",
				Status:      assignments.CourseStatusActive,
				Description: "The **Makkan** period.",
				StartDate:   &start,
				Progress:    40,
			}),
		},
		OverallProgress: 40,
	}

	var buf bytes.Buffer
	err := GetTemplate("dashboard.html").Execute(&buf, data)
	require.Nil(t, err)

	html := buf.String()
	assert.Contains(t, html, "Seerah")
	assert.Contains(t, html, "<strong>Makkan</strong>")
	assert.Contains(t, html, "September 9, 2024")
	assert.Contains(t, html, "status-active")
	assert.Contains(t, html, "40%")
	assert.Contains(t, html, `name="csrf_token" value="tok&lt;en&gt;"`)
}

func TestRenderStudio(t *testing.T) {
	state := authoring.SeedState(authoring.NewSequenceGenerator("seed"))

	data := struct {
		BaseData
		LiveUrl         string
		CreateCourseUrl string
		Phases          []string
		Courses         []StudioCourse
		Sessions        []StudioSession
		Resources       []StudioResource
	}{
		BaseData:        testBaseData(),
		LiveUrl:         "/studio/live",
		CreateCourseUrl: "/studio/courses/new",
		Phases:          []string{"Drafting", "Active"},
	}
	for _, c := range state.Courses {
		data.Courses = append(data.Courses, StudioCourseToTemplate(c))
	}
	for _, s := range authoring.UpcomingSessions(state.Courses) {
		data.Sessions = append(data.Sessions, StudioSessionToTemplate(s))
	}
	for _, r := range authoring.ResourceLibrary(state.Courses) {
		data.Resources = append(data.Resources, StudioResourceToTemplate(r))
	}

	var buf bytes.Buffer
	err := GetTemplate("studio.html").Execute(&buf, data)
	require.Nil(t, err)

	html := buf.String()
	assert.Contains(t, html, "Seerah: The Makkan Period")
	assert.Contains(t, html, "Tajweed Foundations")
	assert.Contains(t, html, `href="https://meet.nurpath.academy/seerah"`)
	assert.Contains(t, html, "Articulation points chart")
}

func TestStudioCourseToTemplate(t *testing.T) {
	c := authoring.Course{
		ID:    "c1",
		Title: "Seerah",
		Phase: authoring.PhaseActive,
		Lessons: []authoring.Lesson{
			{ID: "L1", Title: "One", Order: 1, Status: authoring.LessonStatusPublished},
			{ID: "L2", Title: "Two", Order: 2, Status: authoring.LessonStatusPublished},
		},
		CompletedLessonIDs: []string{"L1"},
	}

	tc := StudioCourseToTemplate(c)
	assert.Equal(t, 50, tc.Progress)
	if assert.NotNil(t, tc.NextLesson) {
		assert.Equal(t, "L2", tc.NextLesson.ID)
		assert.False(t, tc.NextLesson.Completed)
	}
	if assert.Len(t, tc.Lessons, 2) {
		assert.True(t, tc.Lessons[0].Completed)
		assert.True(t, strings.HasSuffix(tc.Lessons[0].CompleteUrl, "/studio/courses/c1/lessons/L1/complete"))
	}
	assert.True(t, strings.HasSuffix(tc.PhaseUrl, "/studio/courses/c1/phase"))

	assert.Nil(t, StudioCourseToTemplate(authoring.Course{ID: "empty"}).NextLesson)
}

func TestUserToTemplate(t *testing.T) {
	u := UserToTemplate(&models.User{ID: 3, Username: "yusuf", Role: models.RoleInstructor})
	assert.Equal(t, "yusuf", u.Name)
	assert.True(t, u.CanAuthorCourses)
	assert.False(t, u.CanManageAssignments)

	registrar := UserToTemplate(&models.User{ID: 4, Username: "registrar", Role: models.RoleRegistrar})
	assert.True(t, registrar.CanManageAssignments)
}

func TestPhaseColor(t *testing.T) {
	assert.Equal(t, PhaseColor("Drafting").HTML(), PhaseColor("Graduated").HTML())
	assert.NotEqual(t, PhaseColor("Active").HTML(), PhaseColor("Archived").HTML())
}

func TestRelativeDate(t *testing.T) {
	now := time.Date(2024, 9, 9, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "just now", RelativeDate(now.Add(-10*time.Second), now))
	assert.Equal(t, "5 minutes ago", RelativeDate(now.Add(-5*time.Minute), now))
	assert.Equal(t, "1 hour, 30 minutes ago", RelativeDate(now.Add(-90*time.Minute), now))
	assert.Equal(t, "2 days from now", RelativeDate(now.Add(48*time.Hour), now))
}
