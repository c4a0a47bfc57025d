package website

import (
	"net/http"
	"time"

	"git.nurpath.academy/nurpath/portal/src/authoring"
	"git.nurpath.academy/nurpath/portal/src/perf"
	"git.nurpath.academy/nurpath/portal/src/portalurl"
	"git.nurpath.academy/nurpath/portal/src/templates"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewWebsiteRoutes(conn *pgxpool.Pool, studio *authoring.Store, perfCollector *perf.PerfCollector) http.Handler {
	return buildRoutes(conn, studio, perfCollector, loadCommonData)
}

// loadUser fills in CurrentUser and CurrentSession for everything except
// static files.
func buildRoutes(conn *pgxpool.Pool, studio *authoring.Store, perfCollector *perf.PerfCollector, loadUser Middleware) *Router {
	router := &Router{}
	routes := RouteBuilder{
		Router: router,
		Middlewares: []Middleware{
			setDependencies(conn, studio),
			trackRequestPerf(perfCollector),
			logContextErrorsMiddleware,
			panicCatcherMiddleware,
			storeNoticesInCookieMiddleware,
		},
	}

	publicFiles := http.StripPrefix(portalurl.StaticPath+"/", http.FileServer(http.FS(templates.PublicFS())))
	routes.GET(portalurl.RegexPublic, func(c *RequestContext) ResponseData {
		var res ResponseData
		publicFiles.ServeHTTP(&res, c.Req)
		return res
	})

	routes = routes.WithMiddleware(loadUser)

	routes.GET(portalurl.RegexHomepage, Index)
	routes.GET(portalurl.RegexAbout, About)
	routes.GET(portalurl.RegexPrograms, Programs)

	routes.GET(portalurl.RegexLogin, LoginPage)
	routes.POST(portalurl.RegexLogin, func(c *RequestContext) ResponseData {
		return securityTimerMiddleware(loginMinimumDuration, Login)(c)
	})
	routes.POST(portalurl.RegexLogout, csrfMiddleware(Logout))

	authed := routes.WithMiddleware(needsAuth)
	authed.GET(portalurl.RegexDashboard, Dashboard)

	authors := authed.WithMiddleware(authorsOnly)
	authors.GET(portalurl.RegexStudio, Studio)
	authors.GET(portalurl.RegexStudioLive, StudioLive)

	authorForms := authors.WithMiddleware(csrfMiddleware)
	authorForms.POST(portalurl.RegexStudioCreateCourse, StudioCreateCourse)
	authorForms.POST(portalurl.RegexStudioDeleteCourse, StudioDeleteCourse)
	authorForms.POST(portalurl.RegexStudioPublishLesson, StudioPublishLesson)
	authorForms.POST(portalurl.RegexStudioScheduleSession, StudioScheduleSession)
	authorForms.POST(portalurl.RegexStudioAddResource, StudioAddResource)
	authorForms.POST(portalurl.RegexStudioVisibility, StudioToggleVisibility)
	authorForms.POST(portalurl.RegexStudioCompleteLesson, StudioCompleteLesson)
	authorForms.POST(portalurl.RegexStudioPhase, StudioSetPhase)

	registrars := authed.WithMiddleware(registrarsOnly)
	registrars.GET(portalurl.RegexPerfmon, Perfmon)

	api := routes.WithMiddleware(apiNeedsAuth)
	api.GET(portalurl.RegexAPIDashboard, APIDashboard)

	apiAuthors := api.WithMiddleware(apiAuthorsOnly)
	apiAuthors.GET(portalurl.RegexAPIStudio, APIStudio)
	apiAuthors.POST(portalurl.RegexAPIStudioActions, apiCSRFMiddleware(APIStudioAction))

	routes.AnyMethod(portalurl.RegexCatchAll, FourOhFour)

	return router
}

const loginMinimumDuration = 200 * time.Millisecond

func setDependencies(conn *pgxpool.Pool, studio *authoring.Store) Middleware {
	return func(h Handler) Handler {
		return func(c *RequestContext) ResponseData {
			c.Conn = conn
			c.Studio = studio
			return h(c)
		}
	}
}
