package portalurl

import (
	"net/url"
	"regexp"
	"testing"

	"git.nurpath.academy/nurpath/portal/src/config"
	"github.com/stretchr/testify/assert"
)

func TestUrl(t *testing.T) {
	defer func() {
		SetGlobalBaseUrl(config.Config.BaseUrl)
	}()
	SetGlobalBaseUrl("http://nurpath.test/")

	t.Run("no query", func(t *testing.T) {
		assert.Equal(t, "http://nurpath.test/studio", Url("/studio", nil))
		assert.Equal(t, "http://nurpath.test/studio", Url("studio", nil))
	})
	t.Run("yes query", func(t *testing.T) {
		result := Url("/login", []Q{{"redirect", "/studio?x=1"}, {"cohort??", "fall & spring"}})
		assert.Equal(t, "http://nurpath.test/login?cohort%3F%3F=fall+%26+spring&redirect=%2Fstudio%3Fx%3D1", result)
	})
	t.Run("static", func(t *testing.T) {
		assert.Equal(t, "http://nurpath.test/public/style.css", StaticUrl("style.css", nil))
		AssertRegexMatch(t, StaticUrl("/style.css", nil), RegexPublic, nil)
	})
}

func TestPages(t *testing.T) {
	AssertRegexMatch(t, BuildHomepage(), RegexHomepage, nil)
	AssertRegexMatch(t, BuildAbout(), RegexAbout, nil)
	AssertRegexMatch(t, BuildPrograms(), RegexPrograms, nil)
	AssertRegexMatch(t, BuildLogin(), RegexLogin, nil)
	AssertRegexMatch(t, BuildLoginWithRedirect("/studio"), RegexLogin, nil)
	AssertRegexMatch(t, BuildLogout(), RegexLogout, nil)
	AssertRegexMatch(t, BuildDashboard(), RegexDashboard, nil)
	AssertRegexMatch(t, BuildAPIDashboard(), RegexAPIDashboard, nil)
	AssertRegexMatch(t, BuildPerfmon(), RegexPerfmon, nil)
}

func TestStudio(t *testing.T) {
	AssertRegexMatch(t, BuildStudio(), RegexStudio, nil)
	AssertRegexMatch(t, BuildStudioCourse("c1"), RegexStudio, nil)
	AssertRegexMatch(t, BuildStudioLive(), RegexStudioLive, nil)
	assert.True(t, RegexAPIStudio.MatchString("/api/studio"))
	assert.True(t, RegexAPIStudioActions.MatchString("/api/studio/actions"))
	assert.False(t, RegexAPIStudio.MatchString("/api/studio/actions"))
	AssertRegexMatch(t, BuildStudioCreateCourse(), RegexStudioCreateCourse, nil)

	id := "8d0b7c55-2f1e-4c1a-9d59-b8c2b8d3f0aa"
	AssertRegexMatch(t, BuildStudioDeleteCourse(id), RegexStudioDeleteCourse, map[string]string{"courseid": id})
	AssertRegexMatch(t, BuildStudioPublishLesson(id), RegexStudioPublishLesson, map[string]string{"courseid": id})
	AssertRegexMatch(t, BuildStudioScheduleSession(id), RegexStudioScheduleSession, map[string]string{"courseid": id})
	AssertRegexMatch(t, BuildStudioAddResource(id), RegexStudioAddResource, map[string]string{"courseid": id})
	AssertRegexMatch(t, BuildStudioVisibility(id), RegexStudioVisibility, map[string]string{"courseid": id})
	AssertRegexMatch(t, BuildStudioPhase(id), RegexStudioPhase, map[string]string{"courseid": id})
	AssertRegexMatch(t, BuildStudioCompleteLesson(id, "lesson-3"), RegexStudioCompleteLesson, map[string]string{"courseid": id, "lessonid": "lesson-3"})

	// "new" is its own route, not a course id
	assert.False(t, RegexStudioDeleteCourse.MatchString("/studio/courses/new"))
}

func AssertRegexMatch(t *testing.T, fullUrl string, regex *regexp.Regexp, paramsToVerify map[string]string) {
	t.Helper()
	parsed, err := url.Parse(fullUrl)
	ok := assert.Nilf(t, err, "Full url could not be parsed: %s", fullUrl)
	if !ok {
		return
	}

	requestPath := parsed.Path
	if len(requestPath) == 0 {
		requestPath = "/"
	}
	match := regex.FindStringSubmatch(requestPath)
	if !assert.NotNilf(t, match, "Url did not match regex: [%s] vs [%s]", requestPath, regex.String()) {
		return
	}

	if paramsToVerify != nil {
		subexpNames := regex.SubexpNames()
		for i, matchedValue := range match {
			paramName := subexpNames[i]
			expectedValue, ok := paramsToVerify[paramName]
			if ok {
				assert.Equalf(t, expectedValue, matchedValue, "Param mismatch for [%s]", paramName)
				delete(paramsToVerify, paramName)
			}
		}
		if len(paramsToVerify) > 0 {
			unmatchedParams := make([]string, 0, len(paramsToVerify))
			for paramName := range paramsToVerify {
				unmatchedParams = append(unmatchedParams, paramName)
			}
			assert.Fail(t, "Expected match groups not found", unmatchedParams)
		}
	}
}
