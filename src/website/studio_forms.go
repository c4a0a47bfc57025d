package website

import (
	"net/url"
	"strings"

	"git.nurpath.academy/nurpath/portal/src/authoring"
)

type createCourseForm struct {
	Title      string `form:"title" validate:"notblank,max=200"`
	Instructor string `form:"instructor" validate:"notblank,max=200"`
	Cohort     string `form:"cohort" validate:"notblank,max=100"`
	StartDate  string `form:"start_date" validate:"required,datetime=2006-01-02"`
}

func parseCreateCourseForm(form url.Values) (authoring.NewCourse, error) {
	f := createCourseForm{
		Title:      strings.TrimSpace(form.Get("title")),
		Instructor: strings.TrimSpace(form.Get("instructor")),
		Cohort:     strings.TrimSpace(form.Get("cohort")),
		StartDate:  strings.TrimSpace(form.Get("start_date")),
	}
	if err := validateForm(f); err != nil {
		return authoring.NewCourse{}, err
	}
	return authoring.NewCourse{
		Title:      f.Title,
		Instructor: f.Instructor,
		Cohort:     f.Cohort,
		StartDate:  f.StartDate,
	}, nil
}

type publishLessonForm struct {
	Title       string `form:"title" validate:"notblank,max=200"`
	Status      string `form:"status" validate:"omitempty,lessonstatus"`
	ReleaseDate string `form:"release_date" validate:"omitempty,datetime=2006-01-02"`
	MakeVisible string `form:"make_visible" validate:"omitempty,oneof=true false"`
}

// An empty make_visible leaves the course's visibility alone.
func parsePublishLessonForm(form url.Values) (authoring.NewLesson, *bool, error) {
	f := publishLessonForm{
		Title:       strings.TrimSpace(form.Get("title")),
		Status:      strings.TrimSpace(form.Get("status")),
		ReleaseDate: strings.TrimSpace(form.Get("release_date")),
		MakeVisible: strings.TrimSpace(form.Get("make_visible")),
	}
	if err := validateForm(f); err != nil {
		return authoring.NewLesson{}, nil, err
	}

	lesson := authoring.NewLesson{Title: f.Title}
	if f.Status != "" {
		lesson.Status, _ = authoring.ParseLessonStatus(f.Status)
	}
	if f.ReleaseDate != "" {
		d := f.ReleaseDate
		lesson.ReleaseDate = &d
	}

	var makeVisible *bool
	if f.MakeVisible != "" {
		v := f.MakeVisible == "true"
		makeVisible = &v
	}
	return lesson, makeVisible, nil
}

type scheduleSessionForm struct {
	Title  string `form:"title" validate:"notblank,max=200"`
	Format string `form:"format" validate:"notblank,max=300"`
	Date   string `form:"date" validate:"required,datetime=2006-01-02"`
	Time   string `form:"time" validate:"required,datetime=15:04"`
}

func parseScheduleSessionForm(form url.Values) (authoring.NewSession, error) {
	f := scheduleSessionForm{
		Title:  strings.TrimSpace(form.Get("title")),
		Format: strings.TrimSpace(form.Get("format")),
		Date:   strings.TrimSpace(form.Get("date")),
		Time:   strings.TrimSpace(form.Get("time")),
	}
	if err := validateForm(f); err != nil {
		return authoring.NewSession{}, err
	}
	return authoring.NewSession{
		Title:  f.Title,
		Format: f.Format,
		Date:   f.Date,
		Time:   f.Time,
	}, nil
}

type addResourceForm struct {
	Title string `form:"title" validate:"notblank,max=200"`
	Type  string `form:"type" validate:"notblank,max=50"`
	Size  string `form:"size" validate:"notblank,max=50"`
}

func parseAddResourceForm(form url.Values) (authoring.NewResource, error) {
	f := addResourceForm{
		Title: strings.TrimSpace(form.Get("title")),
		Type:  strings.TrimSpace(form.Get("type")),
		Size:  strings.TrimSpace(form.Get("size")),
	}
	if err := validateForm(f); err != nil {
		return authoring.NewResource{}, err
	}
	return authoring.NewResource{
		Title: f.Title,
		Type:  f.Type,
		Size:  f.Size,
	}, nil
}

type visibilityForm struct {
	Visible string `form:"visible" validate:"required,oneof=true false"`
}

func parseVisibilityForm(form url.Values) (bool, error) {
	f := visibilityForm{
		Visible: strings.TrimSpace(form.Get("visible")),
	}
	if err := validateForm(f); err != nil {
		return false, err
	}
	return f.Visible == "true", nil
}

type phaseForm struct {
	Phase string `form:"phase" validate:"required,phase"`
}

func parsePhaseForm(form url.Values) (authoring.Phase, error) {
	f := phaseForm{
		Phase: strings.TrimSpace(form.Get("phase")),
	}
	if err := validateForm(f); err != nil {
		return "", err
	}
	phase, _ := authoring.ParsePhase(f.Phase)
	return phase, nil
}
