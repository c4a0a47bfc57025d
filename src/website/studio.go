package website

import (
	"errors"
	"io"
	"net/http"

	"git.nurpath.academy/nurpath/portal/src/authoring"
	"git.nurpath.academy/nurpath/portal/src/oops"
	"git.nurpath.academy/nurpath/portal/src/portalurl"
	"git.nurpath.academy/nurpath/portal/src/templates"
)

const maxActionBodySize = 1 << 20

type StudioData struct {
	templates.BaseData
	LiveUrl         string
	CreateCourseUrl string
	Phases          []string
	Courses         []templates.StudioCourse
	Sessions        []templates.StudioSession
	Resources       []templates.StudioResource
}

func Studio(c *RequestContext) ResponseData {
	c.Perf.StartBlock("STUDIO", "Snapshot")
	state := c.Studio.Snapshot()
	c.Perf.EndBlock()

	var res ResponseData
	res.MustWriteTemplate("studio.html", studioToTemplate(getBaseData(c, "Studio"), state), c.Perf)
	return res
}

func studioToTemplate(baseData templates.BaseData, state authoring.State) StudioData {
	data := StudioData{
		BaseData:        baseData,
		LiveUrl:         portalurl.BuildStudioLive(),
		CreateCourseUrl: portalurl.BuildStudioCreateCourse(),
	}
	for _, phase := range authoring.AllPhases {
		data.Phases = append(data.Phases, string(phase))
	}
	for _, course := range state.Courses {
		data.Courses = append(data.Courses, templates.StudioCourseToTemplate(course))
	}
	for _, session := range authoring.UpcomingSessions(state.Courses) {
		data.Sessions = append(data.Sessions, templates.StudioSessionToTemplate(session))
	}
	for _, resource := range authoring.ResourceLibrary(state.Courses) {
		data.Resources = append(data.Resources, templates.StudioResourceToTemplate(resource))
	}
	return data
}

// Applies a form action and sends the instructor back to the studio.
func dispatchStudioForm(c *RequestContext, action authoring.Action, redirectUrl, successMsg string) ResponseData {
	_, err := c.Studio.Dispatch(c, action)

	res := c.Redirect(redirectUrl, http.StatusSeeOther)
	if err != nil {
		res.Errors = append(res.Errors, err)
		res.AddFutureNotice("warn", "Your change was applied, but it couldn't be saved yet. It will be saved with the next change.")
	} else {
		res.AddFutureNotice("success", successMsg)
	}
	return res
}

func rejectStudioForm(c *RequestContext, redirectUrl string, err error) ResponseData {
	var safe *SafeError
	if !errors.As(err, &safe) {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	res := c.Redirect(redirectUrl, http.StatusSeeOther)
	res.AddFutureNotice("failure", safe.Msg)
	return res
}

// Looks up the course named in the path. Transitions ignore unknown ids, but
// forms for a course that is gone get a 404.
func studioCourseFromPath(c *RequestContext) (authoring.Course, bool) {
	return c.Studio.Snapshot().FindCourse(c.PathParams["courseid"])
}

func StudioCreateCourse(c *RequestContext) ResponseData {
	form, err := c.GetFormValues()
	if err != nil {
		return c.ErrorResponse(http.StatusBadRequest, NewSafeError(err, "request must contain form data"))
	}

	in, err := parseCreateCourseForm(form)
	if err != nil {
		return rejectStudioForm(c, portalurl.BuildStudio(), err)
	}

	id, _, err := c.Studio.CreateCourse(c, in)
	res := c.Redirect(portalurl.BuildStudioCourse(id), http.StatusSeeOther)
	if err != nil {
		res.Errors = append(res.Errors, err)
		res.AddFutureNotice("warn", "The course was created, but it couldn't be saved yet. It will be saved with the next change.")
	} else {
		res.AddFutureNotice("success", "Created "+in.Title+".")
	}
	return res
}

func StudioDeleteCourse(c *RequestContext) ResponseData {
	course, ok := studioCourseFromPath(c)
	if !ok {
		return FourOhFour(c)
	}

	return dispatchStudioForm(c, authoring.DeleteCourseAction{CourseID: course.ID}, portalurl.BuildStudio(), "Deleted "+course.Title+".")
}

func StudioPublishLesson(c *RequestContext) ResponseData {
	course, ok := studioCourseFromPath(c)
	if !ok {
		return FourOhFour(c)
	}
	form, err := c.GetFormValues()
	if err != nil {
		return c.ErrorResponse(http.StatusBadRequest, NewSafeError(err, "request must contain form data"))
	}

	lesson, makeVisible, err := parsePublishLessonForm(form)
	if err != nil {
		return rejectStudioForm(c, portalurl.BuildStudioCourse(course.ID), err)
	}

	return dispatchStudioForm(c, authoring.PublishLessonAction{
		CourseID:          course.ID,
		Lesson:            lesson,
		MakeCourseVisible: makeVisible,
	}, portalurl.BuildStudioCourse(course.ID), "Added "+lesson.Title+".")
}

func StudioScheduleSession(c *RequestContext) ResponseData {
	course, ok := studioCourseFromPath(c)
	if !ok {
		return FourOhFour(c)
	}
	form, err := c.GetFormValues()
	if err != nil {
		return c.ErrorResponse(http.StatusBadRequest, NewSafeError(err, "request must contain form data"))
	}

	session, err := parseScheduleSessionForm(form)
	if err != nil {
		return rejectStudioForm(c, portalurl.BuildStudioCourse(course.ID), err)
	}

	return dispatchStudioForm(c, authoring.ScheduleSessionAction{
		CourseID: course.ID,
		Session:  session,
	}, portalurl.BuildStudioCourse(course.ID), "Scheduled "+session.Title+".")
}

func StudioAddResource(c *RequestContext) ResponseData {
	course, ok := studioCourseFromPath(c)
	if !ok {
		return FourOhFour(c)
	}
	form, err := c.GetFormValues()
	if err != nil {
		return c.ErrorResponse(http.StatusBadRequest, NewSafeError(err, "request must contain form data"))
	}

	resource, err := parseAddResourceForm(form)
	if err != nil {
		return rejectStudioForm(c, portalurl.BuildStudioCourse(course.ID), err)
	}

	return dispatchStudioForm(c, authoring.AddResourceAction{
		CourseID: course.ID,
		Resource: resource,
	}, portalurl.BuildStudioCourse(course.ID), "Added "+resource.Title+" to the library.")
}

func StudioToggleVisibility(c *RequestContext) ResponseData {
	course, ok := studioCourseFromPath(c)
	if !ok {
		return FourOhFour(c)
	}
	form, err := c.GetFormValues()
	if err != nil {
		return c.ErrorResponse(http.StatusBadRequest, NewSafeError(err, "request must contain form data"))
	}

	visible, err := parseVisibilityForm(form)
	if err != nil {
		return rejectStudioForm(c, portalurl.BuildStudioCourse(course.ID), err)
	}

	msg := course.Title + " is now hidden."
	if visible {
		msg = course.Title + " is now visible."
	}
	return dispatchStudioForm(c, authoring.ToggleVisibilityAction{
		CourseID:  course.ID,
		IsVisible: visible,
	}, portalurl.BuildStudioCourse(course.ID), msg)
}

func StudioCompleteLesson(c *RequestContext) ResponseData {
	course, ok := studioCourseFromPath(c)
	if !ok {
		return FourOhFour(c)
	}

	return dispatchStudioForm(c, authoring.MarkLessonCompleteAction{
		CourseID: course.ID,
		LessonID: c.PathParams["lessonid"],
	}, portalurl.BuildStudioCourse(course.ID), "Marked the lesson complete.")
}

func StudioSetPhase(c *RequestContext) ResponseData {
	course, ok := studioCourseFromPath(c)
	if !ok {
		return FourOhFour(c)
	}
	form, err := c.GetFormValues()
	if err != nil {
		return c.ErrorResponse(http.StatusBadRequest, NewSafeError(err, "request must contain form data"))
	}

	phase, err := parsePhaseForm(form)
	if err != nil {
		return rejectStudioForm(c, portalurl.BuildStudioCourse(course.ID), err)
	}

	return dispatchStudioForm(c, authoring.SetCoursePhaseAction{
		CourseID: course.ID,
		Phase:    phase,
	}, portalurl.BuildStudioCourse(course.ID), course.Title+" moved to "+string(phase)+".")
}

/*
* JSON API
 */

type StudioAPIResponse struct {
	Courses          []authoring.Course         `json:"courses"`
	Progress         map[string]int             `json:"progress"`
	UpcomingSessions []authoring.TaggedSession  `json:"upcomingSessions"`
	ResourceLibrary  []authoring.TaggedResource `json:"resourceLibrary"`

	// Set by actions.
	CreatedID string `json:"createdId,omitempty"`
	Saved     *bool  `json:"saved,omitempty"`
}

func studioToAPI(state authoring.State) StudioAPIResponse {
	res := StudioAPIResponse{
		Courses:          state.Courses,
		Progress:         make(map[string]int, len(state.Courses)),
		UpcomingSessions: authoring.UpcomingSessions(state.Courses),
		ResourceLibrary:  authoring.ResourceLibrary(state.Courses),
	}
	if res.Courses == nil {
		res.Courses = []authoring.Course{}
	}
	if res.UpcomingSessions == nil {
		res.UpcomingSessions = []authoring.TaggedSession{}
	}
	if res.ResourceLibrary == nil {
		res.ResourceLibrary = []authoring.TaggedResource{}
	}
	for _, course := range state.Courses {
		res.Progress[course.ID] = authoring.CourseProgress(course)
	}
	return res
}

func APIStudio(c *RequestContext) ResponseData {
	var res ResponseData
	res.MustWriteJson(studioToAPI(c.Studio.Snapshot()), c.Perf)
	return res
}

func APIStudioAction(c *RequestContext) ResponseData {
	body, err := io.ReadAll(io.LimitReader(c.Req.Body, maxActionBodySize))
	if err != nil {
		return c.JsonErrorResponse(http.StatusBadRequest, NewSafeError(err, "failed to read request body"))
	}

	action, err := authoring.DecodeAction(body)
	if err != nil {
		return c.JsonErrorResponse(http.StatusBadRequest, NewSafeError(err, "%s", err.Error()))
	}

	var state authoring.State
	var createdID string
	if create, ok := action.(authoring.CreateCourseAction); ok && create.ID == "" {
		createdID, state, err = c.Studio.CreateCourse(c, create.NewCourse)
	} else {
		state, err = c.Studio.Dispatch(c, action)
	}

	saved := err == nil
	result := studioToAPI(state)
	result.CreatedID = createdID
	result.Saved = &saved

	var res ResponseData
	if err != nil {
		res.Errors = append(res.Errors, oops.New(err, "studio action %s was applied but not saved", action.Type()))
	}
	res.MustWriteJson(result, c.Perf)
	return res
}
