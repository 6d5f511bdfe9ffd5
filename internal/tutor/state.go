package tutor

// State is the closed set of orchestrator states. Exactly one is active; it
// tells the UI what to render and gates speech input.
type State string

const (
	StateIdle             State = "IDLE"
	StateSelectingSkill   State = "SELECTING_SKILL"
	StateLoadingLesson    State = "LOADING_LESSON"
	StateExplaining       State = "EXPLAINING"
	StateAwaitingTask     State = "AWAITING_TASK"
	StateAwaitingChoice   State = "AWAITING_CHOICE"
	StateAwaitingContinue State = "AWAITING_CONTINUE"
	StateEvaluating       State = "EVALUATING"
	StateChatting         State = "CHATTING"
	StateClarifyingDoubt  State = "CLARIFYING_DOUBT"
	StateCorrect          State = "CORRECT"
	StateIncorrect        State = "INCORRECT"
	StateCourseCompleted  State = "COURSE_COMPLETED"
	StateError            State = "ERROR"
)

// AcceptsListening reports whether the state alone permits speech input. The
// full gate also requires no fetch in flight, no speech output, and a
// supported recognizer.
func (s State) AcceptsListening() bool {
	switch s {
	case StateAwaitingTask, StateIncorrect, StateAwaitingChoice:
		return true
	default:
		return false
	}
}

// Mode selects the conversation loop flavor.
type Mode string

const (
	ModeLesson    Mode = "lesson"
	ModeDoubt     Mode = "doubt"
	ModeInterview Mode = "interview"
)
