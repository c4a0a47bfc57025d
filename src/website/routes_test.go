package website

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"testing"

	"git.nurpath.academy/nurpath/portal/src/academydata"
	"git.nurpath.academy/nurpath/portal/src/perf"
	"git.nurpath.academy/nurpath/portal/src/portalurl"
	"git.nurpath.academy/nurpath/portal/src/templates"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLogContextErrors(t *testing.T) {
	err1 := errors.New("test error 1")
	err2 := errors.New("test error 2")

	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	logger.Print("sanity check")

	assert.Contains(t, buf.String(), "sanity check")

	router := &Router{}
	routes := RouteBuilder{
		Router: router,
		Middlewares: []Middleware{
			func(h Handler) Handler {
				return func(c *RequestContext) (res ResponseData) {
					c.Logger = &logger
					defer logContextErrorsMiddleware(h)
					return h(c)
				}
			},
		},
	}

	routes.GET(regexp.MustCompile("^/test$"), func(c *RequestContext) ResponseData {
		return c.ErrorResponse(http.StatusInternalServerError, err1, err2)
	})

	srv := httptest.NewServer(router)
	defer srv.Close()

	res, err := http.Get(srv.URL + "/test")
	if assert.Nil(t, err) {
		defer res.Body.Close()

		t.Logf("Log contents: %s", buf.String())

		assert.Equal(t, http.StatusInternalServerError, res.StatusCode)

		assert.Contains(t, buf.String(), err1.Error())
		assert.Contains(t, buf.String(), err2.Error())
	}
}

func TestPublicFiles(t *testing.T) {
	srv := newTestServer(t, nil, nil, nil)

	res := get(t, srv, "/public/style.css")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("Content-Type"), "text/css")

	res = get(t, srv, "/public/nope.css")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestNotFound(t *testing.T) {
	srv := newTestServer(t, nil, nil, nil)

	res := get(t, srv, "/no/such/page", "Accept", "text/html")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Contains(t, readBody(t, res), "/no/such/page")

	res = get(t, srv, "/no/such/page")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "Not Found", readBody(t, res))
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t, nil, nil, nil)

	t.Run("pages redirect to login", func(t *testing.T) {
		for _, path := range []string{"/dashboard", "/studio", "/admin/perfmon"} {
			res := get(t, srv, path)
			assert.Equal(t, http.StatusSeeOther, res.StatusCode, path)
			loc, err := url.Parse(res.Header.Get("Location"))
			if assert.Nil(t, err) {
				assert.Equal(t, "/login", loc.Path)
				assert.Equal(t, path, loc.Query().Get("redirect"))
			}
		}
	})
	t.Run("APIs return 401", func(t *testing.T) {
		for _, path := range []string{"/api/dashboard", "/api/studio"} {
			res := get(t, srv, path)
			assert.Equal(t, http.StatusUnauthorized, res.StatusCode, path)
			assert.Equal(t, "application/json", res.Header.Get("Content-Type"))
			assert.Contains(t, readBody(t, res), "logged in")
		}
	})
	t.Run("forms without a session go to login", func(t *testing.T) {
		res := postForm(t, srv, "/studio/courses/new", url.Values{"title": {"x"}})
		assert.Equal(t, http.StatusSeeOther, res.StatusCode)
		assert.Equal(t, "/login", locationPath(t, res))
	})
}

func TestLoginWhileLoggedIn(t *testing.T) {
	srv := newTestServer(t, testStudent, nil, nil)

	res := get(t, srv, "/login")
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/dashboard", locationPath(t, res))

	res = postForm(t, srv, "/login", url.Values{"username": {"someone"}, "password": {"hunter2"}})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, readBody(t, res), "already logged in")
}

func TestRolesAreEnforced(t *testing.T) {
	student := newTestServer(t, testStudent, nil, nil)
	assert.Equal(t, http.StatusNotFound, get(t, student, "/studio").StatusCode)
	assert.Equal(t, http.StatusNotFound, get(t, student, "/admin/perfmon").StatusCode)
	assert.Equal(t, http.StatusForbidden, get(t, student, "/api/studio").StatusCode)

	instructor := newTestServer(t, testInstructor, nil, nil)
	res := get(t, instructor, "/studio")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotContains(t, readBody(t, res), portalurl.BuildPerfmon())
	assert.Equal(t, http.StatusNotFound, get(t, instructor, "/admin/perfmon").StatusCode)

	registrar := newTestServer(t, testRegistrar, nil, nil)
	res = get(t, registrar, "/studio")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, readBody(t, res), portalurl.BuildPerfmon())
}

func TestDashboardLinksToJson(t *testing.T) {
	data := dashboardToTemplate(templates.BaseData{}, academydata.Dashboard{})
	assert.Equal(t, portalurl.BuildAPIDashboard(), data.JsonUrl)
	assert.True(t, portalurl.RegexAPIDashboard.MatchString("/api/dashboard"))
	assert.Empty(t, data.Courses)
}

func TestPerfmon(t *testing.T) {
	perfCollector, perfJob := perf.RunPerfCollector()
	defer perfJob.Cancel()

	srv := newTestServer(t, testRegistrar, nil, perfCollector)

	// Give the collector something to report.
	assert.Equal(t, http.StatusOK, get(t, srv, "/studio").StatusCode)

	res := get(t, srv, "/admin/perfmon?format=json")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, readBody(t, res), "^/studio$")

	res = get(t, srv, "/admin/perfmon")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, readBody(t, res), "Request performance")
}

func TestSafeRedirect(t *testing.T) {
	assert.Equal(t, "/studio", safeRedirect("/studio"))
	assert.Equal(t, "/dashboard?x=1", safeRedirect("/dashboard?x=1"))
	assert.Equal(t, "", safeRedirect(""))
	assert.Equal(t, "", safeRedirect("https://evil.example"))
	assert.Equal(t, "", safeRedirect("//evil.example"))
	assert.Equal(t, "", safeRedirect("/\\evil.example"))
}
