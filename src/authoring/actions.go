package authoring

import (
	"encoding/json"
	"fmt"
)

type ActionType string

const (
	ActionCreateCourse       ActionType = "CREATE_COURSE"
	ActionDeleteCourse       ActionType = "DELETE_COURSE"
	ActionPublishLesson      ActionType = "PUBLISH_LESSON"
	ActionScheduleSession    ActionType = "SCHEDULE_SESSION"
	ActionAddResource        ActionType = "ADD_RESOURCE"
	ActionToggleVisibility   ActionType = "TOGGLE_VISIBILITY"
	ActionMarkLessonComplete ActionType = "MARK_LESSON_COMPLETE"
	ActionSetCoursePhase     ActionType = "SET_COURSE_PHASE"
)

// An Action is one of the eight authoring operations along with its payload.
type Action interface {
	Type() ActionType
	Apply(s State, ids IDGenerator) State
}

func Reduce(s State, action Action, ids IDGenerator) State {
	return action.Apply(s, ids)
}

type CreateCourseAction struct {
	NewCourse

	// Set by the Store so callers can learn the new course's id. Left empty,
	// a fresh id is generated.
	ID string `json:"-"`
}

func (a CreateCourseAction) Type() ActionType { return ActionCreateCourse }
func (a CreateCourseAction) Apply(s State, ids IDGenerator) State {
	if a.ID != "" {
		return createCourseWithID(s, a.ID, a.NewCourse)
	}
	next, _ := CreateCourse(s, ids, a.NewCourse)
	return next
}

type DeleteCourseAction struct {
	CourseID string `json:"courseId"`
}

func (a DeleteCourseAction) Type() ActionType { return ActionDeleteCourse }
func (a DeleteCourseAction) Apply(s State, ids IDGenerator) State {
	return DeleteCourse(s, a.CourseID)
}

type PublishLessonAction struct {
	CourseID          string    `json:"courseId"`
	Lesson            NewLesson `json:"lesson"`
	MakeCourseVisible *bool     `json:"makeCourseVisible,omitempty"`
}

func (a PublishLessonAction) Type() ActionType { return ActionPublishLesson }
func (a PublishLessonAction) Apply(s State, ids IDGenerator) State {
	return PublishLesson(s, ids, a.CourseID, a.Lesson, a.MakeCourseVisible)
}

type ScheduleSessionAction struct {
	CourseID string     `json:"courseId"`
	Session  NewSession `json:"session"`
}

func (a ScheduleSessionAction) Type() ActionType { return ActionScheduleSession }
func (a ScheduleSessionAction) Apply(s State, ids IDGenerator) State {
	return ScheduleSession(s, ids, a.CourseID, a.Session)
}

type AddResourceAction struct {
	CourseID string      `json:"courseId"`
	Resource NewResource `json:"resource"`
}

func (a AddResourceAction) Type() ActionType { return ActionAddResource }
func (a AddResourceAction) Apply(s State, ids IDGenerator) State {
	return AddResource(s, ids, a.CourseID, a.Resource)
}

type ToggleVisibilityAction struct {
	CourseID  string `json:"courseId"`
	IsVisible bool   `json:"isVisible"`
}

func (a ToggleVisibilityAction) Type() ActionType { return ActionToggleVisibility }
func (a ToggleVisibilityAction) Apply(s State, ids IDGenerator) State {
	return ToggleVisibility(s, a.CourseID, a.IsVisible)
}

type MarkLessonCompleteAction struct {
	CourseID string `json:"courseId"`
	LessonID string `json:"lessonId"`
}

func (a MarkLessonCompleteAction) Type() ActionType { return ActionMarkLessonComplete }
func (a MarkLessonCompleteAction) Apply(s State, ids IDGenerator) State {
	return MarkLessonComplete(s, a.CourseID, a.LessonID)
}

type SetCoursePhaseAction struct {
	CourseID string `json:"courseId"`
	Phase    Phase  `json:"phase"`
}

func (a SetCoursePhaseAction) Type() ActionType { return ActionSetCoursePhase }
func (a SetCoursePhaseAction) Apply(s State, ids IDGenerator) State {
	return SetCoursePhase(s, a.CourseID, a.Phase)
}

type actionEnvelope struct {
	Type    ActionType      `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

/*
Decodes an action from JSON of the form

	{"type": "PUBLISH_LESSON", "payload": {"courseId": "...", "lesson": {...}}}

Phases and lesson statuses are checked here, since the transitions themselves
accept anything.
*/
func DecodeAction(data []byte) (Action, error) {
	var env actionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("invalid action: %w", err)
	}

	var action Action
	var err error
	switch env.Type {
	case ActionCreateCourse:
		action, err = decodePayload[CreateCourseAction](env.Payload)
	case ActionDeleteCourse:
		action, err = decodePayload[DeleteCourseAction](env.Payload)
	case ActionPublishLesson:
		var a PublishLessonAction
		a, err = decodePayload[PublishLessonAction](env.Payload)
		if err == nil && a.Lesson.Status != "" {
			a.Lesson.Status, err = ParseLessonStatus(string(a.Lesson.Status))
		}
		action = a
	case ActionScheduleSession:
		action, err = decodePayload[ScheduleSessionAction](env.Payload)
	case ActionAddResource:
		action, err = decodePayload[AddResourceAction](env.Payload)
	case ActionToggleVisibility:
		action, err = decodePayload[ToggleVisibilityAction](env.Payload)
	case ActionMarkLessonComplete:
		action, err = decodePayload[MarkLessonCompleteAction](env.Payload)
	case ActionSetCoursePhase:
		var a SetCoursePhaseAction
		a, err = decodePayload[SetCoursePhaseAction](env.Payload)
		if err == nil {
			a.Phase, err = ParsePhase(string(a.Phase))
		}
		action = a
	default:
		return nil, fmt.Errorf("unknown action type: %q", env.Type)
	}
	if err != nil {
		return nil, err
	}
	return action, nil
}

func decodePayload[T any](payload json.RawMessage) (T, error) {
	var result T
	if len(payload) == 0 {
		return result, fmt.Errorf("action is missing its payload")
	}
	if err := json.Unmarshal(payload, &result); err != nil {
		return result, fmt.Errorf("invalid action payload: %w", err)
	}
	return result, nil
}
