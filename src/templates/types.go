package templates

import (
	"html/template"
	"time"
)

type BaseData struct {
	Title          string
	OpenGraphItems []OpenGraphItem
	BodyClasses    []string
	Notices        []Notice

	CurrentUrl   string
	LoginPageUrl string

	User    *User
	Session *Session

	Header Header
	Footer Footer
}

func (bd *BaseData) AddImmediateNotice(class, content string) {
	bd.Notices = append(bd.Notices, Notice{
		Class:   class,
		Content: template.HTML(content),
	})
}

type Header struct {
	HomepageUrl  string
	AboutUrl     string
	ProgramsUrl  string
	DashboardUrl string
	StudioUrl    string
	PerfmonUrl   string
	LoginUrl     string
	LogoutUrl    string
}

type Footer struct {
	HomepageUrl  string
	AboutUrl     string
	ProgramsUrl  string
	ContactEmail string
}

// See public/style.css for the classes.
type Notice struct {
	Content template.HTML
	Class   string
}

type Session struct {
	CSRFToken string
}

type OpenGraphItem struct {
	Property string
	Name     string
	Value    string
}

type User struct {
	ID       int
	Username string
	Name     string
	Role     string

	CanAuthorCourses     bool
	CanManageAssignments bool
}

// A catalog course as shown on the public programs page.
type Program struct {
	ID          string
	Title       string
	Instructor  string
	Level       string
	Status      string
	Description template.HTML
	StartDate   *time.Time
	LessonCount *int
}

// One row of a student's dashboard.
type DashboardCourse struct {
	ID          string
	Title       string
	Instructor  string
	Level       string
	Status      string
	StatusClass string
	Description template.HTML
	StartDate   *time.Time

	LessonCount      *int
	CompletedLessons *int
	Progress         int

	// False when the catalog hasn't caught up with the assignment yet.
	Synced bool
}

type StudioCourse struct {
	ID         string
	Title      string
	Cohort     string
	Instructor string
	Phase      string
	StartDate  string
	Visible    bool

	Progress   int
	NextLesson *StudioLesson
	Lessons    []StudioLesson

	DeleteUrl          string
	PublishLessonUrl   string
	ScheduleSessionUrl string
	AddResourceUrl     string
	VisibilityUrl      string
	PhaseUrl           string
}

type StudioLesson struct {
	ID          string
	Title       string
	Status      string
	ReleaseDate string
	Order       int
	Completed   bool

	CompleteUrl string
}

type StudioSession struct {
	ID          string
	CourseID    string
	CourseTitle string
	Title       string
	Format      template.HTML
	Date        string
	Time        string
}

type StudioResource struct {
	ID          string
	CourseID    string
	CourseTitle string
	Title       string
	Type        string
	Size        string
}
