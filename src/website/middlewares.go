package website

import (
	"crypto/subtle"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"git.nurpath.academy/nurpath/portal/src/auth"
	"git.nurpath.academy/nurpath/portal/src/oops"
	"git.nurpath.academy/nurpath/portal/src/perf"
	"git.nurpath.academy/nurpath/portal/src/portalurl"
)

const CSRFHeaderName = "X-CSRF-Token"

func panicCatcherMiddleware(h Handler) Handler {
	return func(c *RequestContext) (res ResponseData) {
		defer func() {
			if recovered := recover(); recovered != nil {
				err, ok := recovered.(error)
				if ok {
					err = oops.New(err, "Recovered from panic")
				} else {
					err = oops.New(nil, fmt.Sprintf("Recovered from panic with value: %v", recovered))
				}
				res = c.ErrorResponse(http.StatusInternalServerError, err)
			}
		}()

		return h(c)
	}
}

func trackRequestPerf(perfCollector *perf.PerfCollector) Middleware {
	return func(h Handler) Handler {
		return func(c *RequestContext) ResponseData {
			c.Perf = perf.MakeNewRequestPerf(c.Route, c.Req.Method, c.Req.URL.Path)
			c.PerfCollector = perfCollector
			c.ctx = perf.AttachPerf(c.ctx, c.Perf)
			defer func() {
				c.Perf.EndRequest()
				log := c.Logger.Debug()
				blockStack := make([]time.Time, 0)
				for i, block := range c.Perf.Blocks {
					for len(blockStack) > 0 && block.End.After(blockStack[len(blockStack)-1]) {
						blockStack = blockStack[:len(blockStack)-1]
					}
					log.Str(fmt.Sprintf("[%4.d] At %9.2fms", i, c.Perf.MsFromStart(&block)), fmt.Sprintf("%*.s[%s] %s (%.4fms)", len(blockStack)*2, "", block.Category, block.Description, block.DurationMs()))
					blockStack = append(blockStack, block.End)
				}
				log.Msg(fmt.Sprintf("Served [%s] %s in %.4fms", c.Perf.Method, c.Perf.Path, float64(c.Perf.Duration().Nanoseconds())/1000/1000))
				if perfCollector != nil {
					perfCollector.SubmitRun(c, c.Perf)
				}
			}()

			return h(c)
		}
	}
}

func needsAuth(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		if c.CurrentUser == nil {
			return c.Redirect(portalurl.BuildLoginWithRedirect(c.Req.URL.Path), http.StatusSeeOther)
		}

		return h(c)
	}
}

// Instructors and registrars. Everyone else gets a 404.
func authorsOnly(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		if !c.CurrentUser.CanAuthorCourses() {
			return FourOhFour(c)
		}

		return h(c)
	}
}

func registrarsOnly(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		if !c.CurrentUser.CanManageAssignments() {
			return FourOhFour(c)
		}

		return h(c)
	}
}

func csrfMiddleware(h Handler) Handler {
	// CSRF mitigation actions per the OWASP cheat sheet:
	// https://cheatsheetseries.owasp.org/cheatsheets/Cross-Site_Request_Forgery_Prevention_Cheat_Sheet.html
	return func(c *RequestContext) ResponseData {
		if c.CurrentSession == nil {
			return c.Redirect(portalurl.BuildLogin(), http.StatusSeeOther)
		}

		csrfToken := c.Req.Header.Get(CSRFHeaderName)
		if csrfToken == "" {
			c.Req.ParseForm()
			csrfToken = c.Req.PostForm.Get(auth.CSRFFieldName)
		}
		if subtle.ConstantTimeCompare([]byte(csrfToken), []byte(c.CurrentSession.CSRFToken)) != 1 {
			c.Logger.Warn().Msg("user failed CSRF validation - potential attack?")

			res := c.Redirect(portalurl.BuildHomepage(), http.StatusSeeOther)
			logoutUser(c, &res)

			return res
		}

		return h(c)
	}
}

// Makes sure the request takes at least `duration` to finish, plus up to 10%
// more, so response timing doesn't reveal which usernames exist.
func securityTimerMiddleware(duration time.Duration, h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		additionalDuration := time.Duration(rand.Int63n(max(1, int64(duration)/10)))
		timer := time.NewTimer(duration + additionalDuration)
		defer timer.Stop()
		res := h(c)
		select {
		case <-c.Done():
		case <-timer.C:
		}
		return res
	}
}

func logContextErrors(c *RequestContext, errs ...error) {
	for _, err := range errs {
		c.Logger.Error().Timestamp().Stack().Str("Requested", c.FullUrl()).Err(err).Msg("error occurred during request")
	}
}

func logContextErrorsMiddleware(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		res := h(c)
		logContextErrors(c, res.Errors...)
		return res
	}
}

// JSON endpoints get JSON errors instead of redirects.
func apiNeedsAuth(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		if c.CurrentUser == nil {
			return c.JsonErrorResponse(http.StatusUnauthorized, NewSafeError(nil, "you must be logged in"))
		}

		return h(c)
	}
}

func apiAuthorsOnly(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		if !c.CurrentUser.CanAuthorCourses() {
			return c.JsonErrorResponse(http.StatusForbidden, NewSafeError(nil, "only instructors can use the studio"))
		}

		return h(c)
	}
}

// Same check as csrfMiddleware, but the token must come in the header and a
// mismatch doesn't log the user out.
func apiCSRFMiddleware(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		if c.CurrentSession == nil {
			return c.JsonErrorResponse(http.StatusUnauthorized, NewSafeError(nil, "you must be logged in"))
		}

		csrfToken := c.Req.Header.Get(CSRFHeaderName)
		if subtle.ConstantTimeCompare([]byte(csrfToken), []byte(c.CurrentSession.CSRFToken)) != 1 {
			c.Logger.Warn().Msg("API request failed CSRF validation")
			return c.JsonErrorResponse(http.StatusForbidden, NewSafeError(nil, "missing or invalid %s header", CSRFHeaderName))
		}

		return h(c)
	}
}
