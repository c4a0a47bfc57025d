package website

import (
	"net/http"

	"git.nurpath.academy/nurpath/portal/src/academydata"
	"git.nurpath.academy/nurpath/portal/src/oops"
	"git.nurpath.academy/nurpath/portal/src/portalurl"
	"git.nurpath.academy/nurpath/portal/src/templates"
)

type DashboardData struct {
	templates.BaseData
	Courses         []templates.DashboardCourse
	OverallProgress int
	JsonUrl         string
}

func Dashboard(c *RequestContext) ResponseData {
	dashboard, err := academydata.FetchDashboard(c, c.Conn, c.CurrentUser.ID)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch dashboard"))
	}

	var res ResponseData
	res.MustWriteTemplate("dashboard.html", dashboardToTemplate(getBaseData(c, "My courses"), dashboard), c.Perf)
	return res
}

func dashboardToTemplate(baseData templates.BaseData, dashboard academydata.Dashboard) DashboardData {
	courses := make([]templates.DashboardCourse, 0, len(dashboard.Courses))
	for _, course := range dashboard.Courses {
		courses = append(courses, templates.DashboardCourseToTemplate(course))
	}
	return DashboardData{
		BaseData:        baseData,
		Courses:         courses,
		OverallProgress: dashboard.OverallProgress,
		JsonUrl:         portalurl.BuildAPIDashboard(),
	}
}

func APIDashboard(c *RequestContext) ResponseData {
	dashboard, err := academydata.FetchDashboard(c, c.Conn, c.CurrentUser.ID)
	if err != nil {
		return c.JsonErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch dashboard"))
	}

	var res ResponseData
	res.MustWriteJson(dashboard, c.Perf)
	return res
}
