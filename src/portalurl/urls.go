package portalurl

import (
	"net/url"
	"regexp"
)

/*
Every route has a Regex, used by the router, and a Build function, used by
everything that links to the route. Path params are named groups.
*/

var RegexHomepage = regexp.MustCompile("^/$")

func BuildHomepage() string {
	return Url("/", nil)
}

var RegexAbout = regexp.MustCompile("^/about$")

func BuildAbout() string {
	return Url("/about", nil)
}

var RegexPrograms = regexp.MustCompile("^/programs$")

func BuildPrograms() string {
	return Url("/programs", nil)
}

var RegexLogin = regexp.MustCompile("^/login$")

func BuildLogin() string {
	return Url("/login", nil)
}

func BuildLoginWithRedirect(redirectTo string) string {
	return Url("/login", []Q{{Name: "redirect", Value: redirectTo}})
}

var RegexLogout = regexp.MustCompile("^/logout$")

func BuildLogout() string {
	return Url("/logout", nil)
}

/*
* Student dashboard
 */

var RegexDashboard = regexp.MustCompile("^/dashboard$")

func BuildDashboard() string {
	return Url("/dashboard", nil)
}

var RegexAPIDashboard = regexp.MustCompile("^/api/dashboard$")

func BuildAPIDashboard() string {
	return Url("/api/dashboard", nil)
}

/*
* Instructor studio
 */

var RegexStudio = regexp.MustCompile("^/studio$")

func BuildStudio() string {
	return Url("/studio", nil)
}

func BuildStudioCourse(courseID string) string {
	return Url("/studio", nil) + "#course-" + courseID
}

var RegexStudioLive = regexp.MustCompile("^/studio/live$")

func BuildStudioLive() string {
	return Url("/studio/live", nil)
}

var RegexStudioCreateCourse = regexp.MustCompile("^/studio/courses/new$")

func BuildStudioCreateCourse() string {
	return Url("/studio/courses/new", nil)
}

var RegexStudioDeleteCourse = regexp.MustCompile(`^/studio/courses/(?P<courseid>[^/]+)/delete$`)

func BuildStudioDeleteCourse(courseID string) string {
	return Url("/studio/courses/"+url.PathEscape(courseID)+"/delete", nil)
}

var RegexStudioPublishLesson = regexp.MustCompile(`^/studio/courses/(?P<courseid>[^/]+)/lessons$`)

func BuildStudioPublishLesson(courseID string) string {
	return Url("/studio/courses/"+url.PathEscape(courseID)+"/lessons", nil)
}

var RegexStudioScheduleSession = regexp.MustCompile(`^/studio/courses/(?P<courseid>[^/]+)/sessions$`)

func BuildStudioScheduleSession(courseID string) string {
	return Url("/studio/courses/"+url.PathEscape(courseID)+"/sessions", nil)
}

var RegexStudioAddResource = regexp.MustCompile(`^/studio/courses/(?P<courseid>[^/]+)/resources$`)

func BuildStudioAddResource(courseID string) string {
	return Url("/studio/courses/"+url.PathEscape(courseID)+"/resources", nil)
}

var RegexStudioVisibility = regexp.MustCompile(`^/studio/courses/(?P<courseid>[^/]+)/visibility$`)

func BuildStudioVisibility(courseID string) string {
	return Url("/studio/courses/"+url.PathEscape(courseID)+"/visibility", nil)
}

var RegexStudioCompleteLesson = regexp.MustCompile(`^/studio/courses/(?P<courseid>[^/]+)/lessons/(?P<lessonid>[^/]+)/complete$`)

func BuildStudioCompleteLesson(courseID, lessonID string) string {
	return Url("/studio/courses/"+url.PathEscape(courseID)+"/lessons/"+url.PathEscape(lessonID)+"/complete", nil)
}

var RegexStudioPhase = regexp.MustCompile(`^/studio/courses/(?P<courseid>[^/]+)/phase$`)

func BuildStudioPhase(courseID string) string {
	return Url("/studio/courses/"+url.PathEscape(courseID)+"/phase", nil)
}

var RegexAPIStudio = regexp.MustCompile("^/api/studio$")
var RegexAPIStudioActions = regexp.MustCompile("^/api/studio/actions$")

/*
* Admin
 */

var RegexPerfmon = regexp.MustCompile("^/admin/perfmon$")

func BuildPerfmon() string {
	return Url("/admin/perfmon", nil)
}

/*
* Assets
 */

var RegexPublic = regexp.MustCompile("^" + StaticPath + "/.+$")

var RegexCatchAll = regexp.MustCompile("^")
