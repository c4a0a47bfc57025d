package authoring

/*
Pure state transitions for the authoring catalog.

Each function takes the current State and returns the next one. Inputs are
never modified; a transition that applies returns a fresh snapshot that shares
no slices with the old one. Any transition that targets an unknown course id
returns the input state unchanged.
*/

type NewCourse struct {
	Title      string `json:"title"`
	Instructor string `json:"instructor"`
	Cohort     string `json:"cohort"`
	StartDate  string `json:"startDate"`
}

type NewLesson struct {
	Title       string       `json:"title"`
	ReleaseDate *string      `json:"releaseDate,omitempty"`
	Status      LessonStatus `json:"status,omitempty"` // defaults to published
}

type NewSession struct {
	Title  string `json:"title"`
	Format string `json:"format"`
	Date   string `json:"date"`
	Time   string `json:"time"`
}

type NewResource struct {
	Title string `json:"title"`
	Type  string `json:"type"`
	Size  string `json:"size"`
}

// Appends a course in the Drafting phase, hidden from students. Returns the
// new state and the id of the created course.
func CreateCourse(s State, ids IDGenerator, in NewCourse) (State, string) {
	id := ids.NewID()
	return createCourseWithID(s, id, in), id
}

func createCourseWithID(s State, id string, in NewCourse) State {
	next := s.Clone()
	next.Courses = append(next.Courses, Course{
		ID:         id,
		Title:      in.Title,
		Cohort:     in.Cohort,
		Instructor: in.Instructor,
		Phase:      PhaseDrafting,
		StartDate:  in.StartDate,
		Visible:    false,

		Lessons:            []Lesson{},
		Sessions:           []Session{},
		Resources:          []Resource{},
		CompletedLessonIDs: []string{},
	})
	return next
}

func DeleteCourse(s State, courseID string) State {
	idx := s.courseIndex(courseID)
	if idx < 0 {
		return s
	}

	next := s.Clone()
	next.Courses = append(next.Courses[:idx], next.Courses[idx+1:]...)
	return next
}

/*
Adds a lesson to a course. The lesson's order is one past the highest existing
order, so the first lesson of an empty course gets order 1.

makeCourseVisible is deliberately asymmetric:

	true   the course becomes Active and visible
	false  the course becomes hidden; its phase is left alone
	nil    neither visibility nor phase changes
*/
func PublishLesson(s State, ids IDGenerator, courseID string, in NewLesson, makeCourseVisible *bool) State {
	return s.updateCourse(courseID, func(c *Course) {
		maxOrder := 0
		for _, l := range c.Lessons {
			if l.Order > maxOrder {
				maxOrder = l.Order
			}
		}

		status := in.Status
		if status == "" {
			status = LessonStatusPublished
		}

		var releaseDate *string
		if in.ReleaseDate != nil {
			d := *in.ReleaseDate
			releaseDate = &d
		}

		c.Lessons = append(c.Lessons, Lesson{
			ID:          ids.NewID(),
			Title:       in.Title,
			Status:      status,
			ReleaseDate: releaseDate,
			Order:       maxOrder + 1,
		})

		if makeCourseVisible != nil {
			if *makeCourseVisible {
				c.Phase = PhaseActive
				c.Visible = true
			} else {
				c.Visible = false
			}
		}
	})
}

func ScheduleSession(s State, ids IDGenerator, courseID string, in NewSession) State {
	return s.updateCourse(courseID, func(c *Course) {
		c.Sessions = append(c.Sessions, Session{
			ID:     ids.NewID(),
			Title:  in.Title,
			Format: in.Format,
			Date:   in.Date,
			Time:   in.Time,
		})
	})
}

func AddResource(s State, ids IDGenerator, courseID string, in NewResource) State {
	return s.updateCourse(courseID, func(c *Course) {
		c.Resources = append(c.Resources, Resource{
			ID:    ids.NewID(),
			Title: in.Title,
			Type:  in.Type,
			Size:  in.Size,
		})
	})
}

// Showing a Drafting course opens it for enrollment. Hiding a course never
// moves its phase back.
func ToggleVisibility(s State, courseID string, visible bool) State {
	return s.updateCourse(courseID, func(c *Course) {
		c.Visible = visible
		if visible && c.Phase == PhaseDrafting {
			c.Phase = PhaseEnrollment
		}
	})
}

func MarkLessonComplete(s State, courseID string, lessonID string) State {
	if c, ok := s.FindCourse(courseID); ok && c.isCompleted(lessonID) {
		return s
	}
	return s.updateCourse(courseID, func(c *Course) {
		c.CompletedLessonIDs = append(c.CompletedLessonIDs, lessonID)
	})
}

// Any phase may follow any other.
func SetCoursePhase(s State, courseID string, phase Phase) State {
	return s.updateCourse(courseID, func(c *Course) {
		c.Phase = phase
	})
}

func (s State) courseIndex(courseID string) int {
	for i, c := range s.Courses {
		if c.ID == courseID {
			return i
		}
	}
	return -1
}

func (s State) updateCourse(courseID string, f func(c *Course)) State {
	idx := s.courseIndex(courseID)
	if idx < 0 {
		return s
	}

	next := s.Clone()
	f(&next.Courses[idx])
	return next
}

func (c *Course) isCompleted(lessonID string) bool {
	for _, id := range c.CompletedLessonIDs {
		if id == lessonID {
			return true
		}
	}
	return false
}
