package website

import (
	"errors"
	"net/http"
	"strings"

	"git.nurpath.academy/nurpath/portal/src/auth"
	"git.nurpath.academy/nurpath/portal/src/oops"
	"git.nurpath.academy/nurpath/portal/src/portalurl"
	"git.nurpath.academy/nurpath/portal/src/templates"
)

type LoginPageData struct {
	templates.BaseData
	LoginActionUrl string
	RedirectUrl    string
	Username       string
}

func LoginPage(c *RequestContext) ResponseData {
	if c.CurrentUser != nil {
		return c.Redirect(portalurl.BuildDashboard(), http.StatusSeeOther)
	}

	var res ResponseData
	res.MustWriteTemplate("auth_login.html", LoginPageData{
		BaseData:       getBaseData(c, "Log in"),
		LoginActionUrl: portalurl.BuildLogin(),
		RedirectUrl:    safeRedirect(c.Req.URL.Query().Get("redirect")),
	}, c.Perf)
	return res
}

func Login(c *RequestContext) ResponseData {
	if c.CurrentUser != nil {
		return c.RejectRequest("You are already logged in.")
	}

	form, err := c.GetFormValues()
	if err != nil {
		return c.ErrorResponse(http.StatusBadRequest, NewSafeError(err, "request must contain form data"))
	}

	username := strings.TrimSpace(form.Get("username"))
	password := form.Get("password")
	redirect := safeRedirect(form.Get("redirect"))

	showLoginWithFailure := func(msg string) ResponseData {
		res := ResponseData{StatusCode: http.StatusUnauthorized}
		baseData := getBaseData(c, "Log in")
		baseData.AddImmediateNotice("failure", msg)
		res.MustWriteTemplate("auth_login.html", LoginPageData{
			BaseData:       baseData,
			LoginActionUrl: portalurl.BuildLogin(),
			RedirectUrl:    redirect,
			Username:       username,
		}, c.Perf)
		return res
	}

	if username == "" || password == "" {
		return showLoginWithFailure("You must provide both a username and password.")
	}

	c.Perf.StartBlock("AUTH", "Checking password")
	user, err := auth.Authenticate(c, c.Conn, username, password)
	c.Perf.EndBlock()
	if err != nil {
		if errors.Is(err, auth.ErrUserDoesNotExist) || errors.Is(err, auth.ErrWrongPassword) {
			return showLoginWithFailure("Incorrect username or password.")
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to log in"))
	}

	if redirect == "" {
		if user.CanAuthorCourses() {
			redirect = portalurl.BuildStudio()
		} else {
			redirect = portalurl.BuildDashboard()
		}
	}

	res := c.Redirect(redirect, http.StatusSeeOther)
	session, err := auth.CreateSession(c, c.Conn, user.Username)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to create session"))
	}
	res.SetCookie(auth.NewSessionCookie(session))
	c.Logger.Info().Str("username", user.Username).Msg("user logged in")
	return res
}

func Logout(c *RequestContext) ResponseData {
	res := c.Redirect(portalurl.BuildHomepage(), http.StatusSeeOther)
	logoutUser(c, &res)
	return res
}

func logoutUser(c *RequestContext, res *ResponseData) {
	sessionCookie, err := c.Req.Cookie(auth.SessionCookieName)
	if err == nil {
		// clear the session from the db immediately, no expiration
		err := auth.DeleteSession(c, c.Conn, sessionCookie.Value)
		if err != nil {
			c.Logger.Error().Err(err).Msg("failed to delete session on logout")
		}
	}

	res.SetCookie(auth.DeleteSessionCookie())
}

// Only same-site paths are followed after login.
func safeRedirect(dest string) string {
	if !strings.HasPrefix(dest, "/") || strings.HasPrefix(dest, "//") || strings.HasPrefix(dest, "/\\") {
		return ""
	}
	return dest
}
