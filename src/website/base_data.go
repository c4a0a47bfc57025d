package website

import (
	"git.nurpath.academy/nurpath/portal/src/portalurl"
	"git.nurpath.academy/nurpath/portal/src/templates"
)

const contactEmail = "registrar@nurpath.academy"

func getBaseData(c *RequestContext, title string) templates.BaseData {
	var templateUser *templates.User
	var templateSession *templates.Session
	if c.CurrentUser != nil && c.CurrentSession != nil {
		u := templates.UserToTemplate(c.CurrentUser)
		s := templates.SessionToTemplate(c.CurrentSession)
		templateUser = &u
		templateSession = &s
	}

	return templates.BaseData{
		Title:          title,
		OpenGraphItems: buildDefaultOpenGraphItems(title),
		Notices:        getNoticesFromCookie(c),

		CurrentUrl:   c.FullUrl(),
		LoginPageUrl: portalurl.BuildLoginWithRedirect(c.Req.URL.Path),

		User:    templateUser,
		Session: templateSession,

		Header: templates.Header{
			HomepageUrl:  portalurl.BuildHomepage(),
			AboutUrl:     portalurl.BuildAbout(),
			ProgramsUrl:  portalurl.BuildPrograms(),
			DashboardUrl: portalurl.BuildDashboard(),
			StudioUrl:    portalurl.BuildStudio(),
			PerfmonUrl:   portalurl.BuildPerfmon(),
			LoginUrl:     portalurl.BuildLogin(),
			LogoutUrl:    portalurl.BuildLogout(),
		},
		Footer: templates.Footer{
			HomepageUrl:  portalurl.BuildHomepage(),
			AboutUrl:     portalurl.BuildAbout(),
			ProgramsUrl:  portalurl.BuildPrograms(),
			ContactEmail: contactEmail,
		},
	}
}

func buildDefaultOpenGraphItems(title string) []templates.OpenGraphItem {
	if title == "" {
		title = "Nurpath Academy"
	}

	return []templates.OpenGraphItem{
		{Property: "og:title", Value: title},
		{Property: "og:site_name", Value: "Nurpath Academy"},
		{Property: "og:type", Value: "website"},
	}
}
