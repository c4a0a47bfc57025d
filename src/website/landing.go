package website

import (
	"net/http"

	"git.nurpath.academy/nurpath/portal/src/academydata"
	"git.nurpath.academy/nurpath/portal/src/assignments"
	"git.nurpath.academy/nurpath/portal/src/oops"
	"git.nurpath.academy/nurpath/portal/src/portalurl"
	"git.nurpath.academy/nurpath/portal/src/templates"
)

const maxFeaturedPrograms = 3

func Index(c *RequestContext) ResponseData {
	type IndexData struct {
		templates.BaseData
		ProgramsUrl string
		Featured    []templates.Program
	}

	catalog, err := academydata.FetchCatalog(c, c.Conn, nil)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch catalog for homepage"))
	}

	var res ResponseData
	res.MustWriteTemplate("index.html", IndexData{
		BaseData:    getBaseData(c, ""),
		ProgramsUrl: portalurl.BuildPrograms(),
		Featured:    featuredPrograms(catalog),
	}, c.Perf)
	return res
}

// Upcoming courses in catalog order, at most maxFeaturedPrograms of them.
func featuredPrograms(catalog []assignments.CatalogCourse) []templates.Program {
	var result []templates.Program
	for _, course := range catalog {
		if len(result) >= maxFeaturedPrograms {
			break
		}
		if course.Status == assignments.CourseStatusUpcoming {
			result = append(result, templates.ProgramToTemplate(course))
		}
	}
	return result
}

func About(c *RequestContext) ResponseData {
	var res ResponseData
	res.MustWriteTemplate("about.html", getBaseData(c, "About"), c.Perf)
	return res
}

func Programs(c *RequestContext) ResponseData {
	type ProgramsData struct {
		templates.BaseData
		Programs []templates.Program
	}

	catalog, err := academydata.FetchCatalog(c, c.Conn, nil)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch catalog"))
	}

	programs := make([]templates.Program, 0, len(catalog))
	for _, course := range catalog {
		if course.Status == assignments.CourseStatusCompleted {
			continue
		}
		programs = append(programs, templates.ProgramToTemplate(course))
	}

	var res ResponseData
	res.MustWriteTemplate("programs.html", ProgramsData{
		BaseData: getBaseData(c, "Programs"),
		Programs: programs,
	}, c.Perf)
	return res
}
