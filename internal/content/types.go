package content

// StepKind discriminates heterogeneous lesson steps.
type StepKind string

const (
	StepExplanation    StepKind = "EXPLANATION"
	StepMultipleChoice StepKind = "MULTIPLE_CHOICE"
	StepCodeTask       StepKind = "CODE_TASK"
)

// LessonStep is one unit of a guided lesson. Which fields are meaningful
// depends on Kind. CorrectChoice is a pointer so a missing index is
// distinguishable from index zero.
type LessonStep struct {
	Kind          StepKind `json:"kind"`
	Content       string   `json:"content,omitempty"`
	Question      string   `json:"question,omitempty"`
	Choices       []string `json:"choices,omitempty"`
	CorrectChoice *int     `json:"correct_choice,omitempty"`
	IntroHindi    string   `json:"intro_hindi,omitempty"`
	Mission       string   `json:"mission,omitempty"`
	StarterCode   string   `json:"starter_code,omitempty"`
}

// Lesson is an ordered sequence of steps for one topic.
type Lesson struct {
	Title string       `json:"title"`
	Steps []LessonStep `json:"steps"`
}

// Hint is the three-level escalating disclosure returned with incorrect
// code verdicts.
type Hint struct {
	Conceptual string `json:"conceptual"`
	Direct     string `json:"direct"`
	Solution   string `json:"solution"`
}

// EvalRequest asks for a verdict on submitted code.
type EvalRequest struct {
	Skill   string `json:"skill"`
	Topic   string `json:"topic"`
	Mission string `json:"mission"`
	Code    string `json:"code"`
}

// EvalResult is the code-evaluation verdict. Hint is mandatory when the
// verdict is incorrect.
type EvalResult struct {
	Correct  bool   `json:"correct"`
	Feedback string `json:"feedback"`
	Hint     *Hint  `json:"hint,omitempty"`
}

// Turn is one prior conversation entry sent as chat context.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// InterviewContext describes the active mock-interview round for chat calls.
type InterviewContext struct {
	Company     string `json:"company"`
	Role        string `json:"role"`
	Experience  string `json:"experience"`
	RoundTitle  string `json:"round_title"`
	Interviewer string `json:"interviewer"`
}

// ChatRequest carries a user message with full session context.
type ChatRequest struct {
	Mode      string            `json:"mode"`
	Skill     string            `json:"skill,omitempty"`
	Topic     string            `json:"topic,omitempty"`
	History   []Turn            `json:"history,omitempty"`
	Message   string            `json:"message"`
	Code      string            `json:"code,omitempty"`
	Interview *InterviewContext `json:"interview,omitempty"`
}

// ChatReply is the provider's conversational follow-up. RoundFinished is only
// meaningful in interview mode.
type ChatReply struct {
	Text          string `json:"text"`
	Code          string `json:"code,omitempty"`
	Diagram       string `json:"diagram,omitempty"`
	RoundFinished bool   `json:"round_finished,omitempty"`
}

// InterviewRequest asks for a full interview plan.
type InterviewRequest struct {
	Company    string `json:"company"`
	Role       string `json:"role"`
	Experience string `json:"experience"`
}

// InterviewRound is one planned phase with its assigned interviewer.
type InterviewRound struct {
	Kind              string `json:"kind"`
	Title             string `json:"title"`
	Interviewer       string `json:"interviewer"`
	InterviewerGender string `json:"interviewer_gender"`
}

// InterviewPlan is the ordered round sequence plus the opening statement.
type InterviewPlan struct {
	Rounds  []InterviewRound `json:"rounds"`
	Opening string           `json:"opening"`
}
