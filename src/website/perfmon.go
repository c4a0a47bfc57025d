package website

import (
	"net/http"

	"git.nurpath.academy/nurpath/portal/src/perf"
	"git.nurpath.academy/nurpath/portal/src/templates"
)

type PerfmonData struct {
	templates.BaseData
	Routes []perf.RouteSummary
}

func Perfmon(c *RequestContext) ResponseData {
	if c.PerfCollector == nil {
		return c.ErrorResponse(http.StatusServiceUnavailable, NewSafeError(nil, "perf collection is not running"))
	}

	c.Perf.StartBlock("PERF", "Requesting perf data")
	perfData := c.PerfCollector.GetPerfCopy()
	c.Perf.EndBlock()

	c.Perf.StartBlock("PERF", "Summarizing perf data")
	routes := perfData.Summarize()
	c.Perf.EndBlock()

	var res ResponseData
	if c.Req.URL.Query().Get("format") == "json" {
		res.MustWriteJson(routes, c.Perf)
		return res
	}
	res.MustWriteTemplate("perfmon.html", PerfmonData{
		BaseData: getBaseData(c, "Perfmon"),
		Routes:   routes,
	}, c.Perf)
	return res
}
