package tutor

import "github.com/guruji-labs/guruji/internal/content"

// Session is the lesson-mode working state, replaced wholesale on every
// lesson fetch and discarded on reset.
type Session struct {
	Skill     string
	Topic     string
	Lesson    content.Lesson
	StepIndex int
	Attempts  int
	Hint      *content.Hint
}

// CurrentStep returns the active step, nil when the index ran past the end.
func (s *Session) CurrentStep() *content.LessonStep {
	if s == nil || s.StepIndex < 0 || s.StepIndex >= len(s.Lesson.Steps) {
		return nil
	}
	return &s.Lesson.Steps[s.StepIndex]
}

// Round is one phase of a mock interview with its assigned interviewer.
type Round struct {
	Kind              string
	Title             string
	Interviewer       string
	InterviewerGender string
	Completed         bool
}

// InterviewSession is the interview-mode working state. Current only moves
// forward, one round at a time; a round's Completed flag is set exactly when
// advancing past it.
type InterviewSession struct {
	Company    string
	Role       string
	Experience string
	Rounds     []Round
	Current    int
}

// CurrentRound returns the active round, nil once every round is done.
func (iv *InterviewSession) CurrentRound() *Round {
	if iv == nil || iv.Current < 0 || iv.Current >= len(iv.Rounds) {
		return nil
	}
	return &iv.Rounds[iv.Current]
}

// Sender tags a chat message's author.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// ChatMessage is one conversation-history entry. Entries are never mutated
// after append; retry rollback truncates the tail instead. System marks
// synthetic turns the transcript view hides.
type ChatMessage struct {
	ID      string   `json:"id"`
	Sender  Sender   `json:"sender"`
	Text    string   `json:"text"`
	Code    string   `json:"code,omitempty"`
	Diagram string   `json:"diagram,omitempty"`
	Choices []string `json:"choices,omitempty"`
	System  bool     `json:"system,omitempty"`
}
