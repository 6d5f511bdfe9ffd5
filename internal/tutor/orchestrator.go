package tutor

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/guruji-labs/guruji/internal/content"
	"github.com/guruji-labs/guruji/internal/listen"
	"github.com/guruji-labs/guruji/internal/observability"
	"github.com/guruji-labs/guruji/internal/profile"
	"github.com/guruji-labs/guruji/internal/reliability"
	"github.com/guruji-labs/guruji/internal/speech"
)

// Sink receives orchestrator-facing UI events. The websocket layer implements
// it; tests use a recorder.
type Sink interface {
	StateChanged(state State)
	ChatAppended(msg ChatMessage)
	CodeUpdated(code string)
	DiagramUpdated(diagram string)
	ProgressUpdated(p profile.Profile)
	RoundTransition(index int, title string)
	ErrorEvent(code, message string)
}

// detach wraps a speech completion so it runs on its own goroutine. A muted
// engine invokes completions synchronously, which would otherwise re-enter
// the orchestrator mutex held by the caller.
func detach(fn func()) func() {
	return func() { go fn() }
}

// pendingMessage retains a failed outgoing chat turn so a retry can resubmit
// it after rolling history back.
type pendingMessage struct {
	text    string
	code    string
	system  bool
	histLen int
}

// Config wires an Orchestrator.
type Config struct {
	Provider content.Provider
	Speech   *speech.Engine
	Listen   *listen.Engine
	Store    profile.Store
	Sink     Sink
	Logger   zerolog.Logger
	Metrics  *observability.Metrics

	// RoundDelay paces the visual transition between interview rounds.
	RoundDelay time.Duration
	// Clock and Delay are injectable for deterministic tests.
	Clock func() time.Time
	Delay func(d time.Duration, fn func())
}

// Orchestrator is the conversational controller: it owns the tutor state
// machine, drives the speech engines, and is their only caller. All
// transitions are serialized behind one mutex; provider calls run in
// goroutines tagged with a fetch generation so superseded completions are
// dropped.
type Orchestrator struct {
	provider content.Provider
	speech   *speech.Engine
	listen   *listen.Engine
	store    profile.Store
	sink     Sink
	log      zerolog.Logger
	metrics  *observability.Metrics

	roundDelay time.Duration
	clock      func() time.Time
	delay      func(d time.Duration, fn func())

	mu             sync.Mutex
	state          State
	mode           Mode
	stateToRestore State
	session        *Session
	interview      *InterviewSession
	history        []ChatMessage
	code           string
	diagram        string
	retry          *pendingMessage
	errMessage     string

	// epoch invalidates speech completions and scheduled callbacks across
	// resets; fetchGen invalidates superseded provider calls.
	epoch    uint64
	fetchGen uint64
	fetching bool
}

func NewOrchestrator(cfg Config) *Orchestrator {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	delay := cfg.Delay
	if delay == nil {
		delay = func(d time.Duration, fn func()) { time.AfterFunc(d, fn) }
	}
	roundDelay := cfg.RoundDelay
	if roundDelay <= 0 {
		roundDelay = 2 * time.Second
	}
	return &Orchestrator{
		provider:   cfg.Provider,
		speech:     cfg.Speech,
		listen:     cfg.Listen,
		store:      cfg.Store,
		sink:       cfg.Sink,
		log:        cfg.Logger.With().Str("component", "tutor").Logger(),
		metrics:    cfg.Metrics,
		roundDelay: roundDelay,
		clock:      clock,
		delay:      delay,
		state:      StateIdle,
		mode:       ModeLesson,
	}
}

// State returns the active state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) Mode() Mode {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.mode
}

// History returns a copy of the conversation history.
func (o *Orchestrator) History() []ChatMessage {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]ChatMessage, len(o.history))
	copy(out, o.history)
	return out
}

// Code returns the editable code buffer.
func (o *Orchestrator) Code() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.code
}

// ErrorMessage returns the message surfaced with the ERROR state.
func (o *Orchestrator) ErrorMessage() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.errMessage
}

// SelectTopic starts a guided lesson for the skill/topic pair.
func (o *Orchestrator) SelectTopic(skill, topic string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.speech.Cancel()
	o.epoch++
	o.mode = ModeLesson
	o.session = &Session{Skill: skill, Topic: topic}
	o.interview = nil
	o.retry = nil
	o.setStateLocked(StateLoadingLesson)
	if o.metrics != nil {
		o.metrics.LessonEvents.WithLabelValues("fetch").Inc()
	}

	gen := o.beginFetchLocked()
	go func() {
		lesson, err := o.provider.FetchLesson(context.Background(), skill, topic)
		o.mu.Lock()
		defer o.mu.Unlock()
		if !o.endFetchLocked(gen) {
			return
		}
		if err != nil {
			o.providerErrLocked("lesson", err)
			o.errMessage = o.failureWording(err)
			o.setStateLocked(StateError)
			o.sink.ErrorEvent("lesson_failed", o.errMessage)
			return
		}
		o.session.Lesson = lesson
		o.session.StepIndex = 0
		o.session.Attempts = 0
		o.session.Hint = nil
		o.processStepLocked()
	}()
}

// Continue advances from a pause point: the next lesson step after an
// explanation or a correct answer, back to the restored state after a doubt
// exchange, or to topic selection from a terminal screen.
func (o *Orchestrator) Continue() {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch o.state {
	case StateAwaitingContinue:
		if o.session == nil {
			o.setStateLocked(StateIdle)
			return
		}
		o.session.StepIndex++
		o.processStepLocked()
	case StateClarifyingDoubt:
		restore := o.stateToRestore
		if restore == "" || restore == StateChatting {
			restore = StateAwaitingTask
		}
		o.setStateLocked(restore)
	case StateCorrect, StateCourseCompleted:
		o.speech.Cancel()
		o.session = nil
		o.setStateLocked(StateSelectingSkill)
	}
}

// AnswerChoice evaluates a clicked or matched multiple-choice answer.
func (o *Orchestrator) AnswerChoice(index int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.answerChoiceLocked(index)
}

func (o *Orchestrator) answerChoiceLocked(index int) {
	if o.state != StateAwaitingChoice && o.state != StateIncorrect {
		return
	}
	step := o.session.CurrentStep()
	if step == nil || step.Kind != content.StepMultipleChoice || step.CorrectChoice == nil {
		return
	}
	if index < 0 || index >= len(step.Choices) {
		return
	}

	if index == *step.CorrectChoice {
		o.session.Attempts = 0
		o.session.Hint = nil
		o.setStateLocked(StateCorrect)
		epoch := o.epoch
		o.speech.Speak("Bilkul sahi jawab! Shabash!", speech.LangHindi, speech.GenderFemale, detach(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			if epoch != o.epoch || o.state != StateCorrect {
				return
			}
			o.setStateLocked(StateAwaitingContinue)
		}))
		return
	}

	o.session.Attempts++
	o.speech.Speak("Hmm, yeh sahi nahi hai. Ek baar phir se sochiye.", speech.LangHindi, speech.GenderFemale, nil)
	o.setStateLocked(StateIncorrect)
}

// SubmitCode evaluates whiteboard code. In interview mode the submission is
// funneled through the chat path; in lesson mode the evaluation provider is
// called directly.
func (o *Orchestrator) SubmitCode(code string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.code = code
	if o.mode == ModeInterview {
		o.chatLocked("Maine whiteboard par apna solution likh diya hai. Please evaluate my code.", code, false)
		return
	}

	step := o.session.CurrentStep()
	if step == nil || step.Kind != content.StepCodeTask {
		return
	}
	if o.state != StateAwaitingTask && o.state != StateIncorrect {
		return
	}

	o.setStateLocked(StateEvaluating)
	req := content.EvalRequest{
		Skill:   o.session.Skill,
		Topic:   o.session.Topic,
		Mission: step.Mission,
		Code:    code,
	}
	gen := o.beginFetchLocked()
	go func() {
		result, err := o.provider.EvaluateCode(context.Background(), req)
		o.mu.Lock()
		defer o.mu.Unlock()
		if !o.endFetchLocked(gen) {
			return
		}
		if err != nil {
			o.providerErrLocked("evaluate", err)
			o.setStateLocked(StateAwaitingTask)
			o.sink.ErrorEvent("evaluation_failed", o.failureWording(err))
			return
		}

		o.appendMessageLocked(ChatMessage{Sender: SenderAI, Text: result.Feedback})
		if result.Correct {
			o.session.Attempts = 0
			o.session.Hint = nil
			o.setStateLocked(StateCorrect)
			epoch := o.epoch
			o.speech.Speak(result.Feedback, speech.LangHindi, speech.GenderFemale, detach(func() {
				o.mu.Lock()
				defer o.mu.Unlock()
				if epoch != o.epoch || o.state != StateCorrect {
					return
				}
				o.setStateLocked(StateAwaitingContinue)
			}))
			return
		}

		o.session.Attempts++
		o.session.Hint = result.Hint
		o.speech.Speak(result.Feedback, speech.LangHindi, speech.GenderFemale, nil)
		o.setStateLocked(StateIncorrect)
	}()
}

// RequestHint reveals the hint tier matching the attempt count: the first
// incorrect attempt unlocks the conceptual tier, later attempts the direct
// tier.
func (o *Orchestrator) RequestHint() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session == nil || o.session.Hint == nil {
		return
	}
	text := o.session.Hint.Conceptual
	if o.session.Attempts >= 2 {
		text = o.session.Hint.Direct
	}
	if strings.TrimSpace(text) == "" {
		return
	}
	o.appendMessageLocked(ChatMessage{Sender: SenderAI, Text: text})
	o.speech.Speak(text, speech.LangHindi, speech.GenderFemale, nil)
}

// RevealSolution discloses the full solution tier and overwrites the code
// buffer with it.
func (o *Orchestrator) RevealSolution() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session == nil || o.session.Hint == nil || strings.TrimSpace(o.session.Hint.Solution) == "" {
		return
	}
	solution := o.session.Hint.Solution
	o.appendMessageLocked(ChatMessage{Sender: SenderAI, Text: "Chaliye, solution dekhte hain.", Code: solution})
	o.code = solution
	o.sink.CodeUpdated(solution)
	o.speech.Speak("Chaliye, solution dekhte hain.", speech.LangHindi, speech.GenderFemale, nil)
}

// ChatText routes a typed user message.
func (o *Orchestrator) ChatText(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.routeUtteranceLocked(text)
}

// HandleFinalTranscript routes a final recognized utterance, identically to
// typed input.
func (o *Orchestrator) HandleFinalTranscript(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.routeUtteranceLocked(text)
}

// HandleSubmitCommand submits the current code buffer in response to the
// submit voice command.
func (o *Orchestrator) HandleSubmitCommand() {
	o.mu.Lock()
	code := o.code
	o.mu.Unlock()
	o.SubmitCode(code)
}

func (o *Orchestrator) routeUtteranceLocked(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	// An utterance during a multiple-choice question is first tried as an
	// answer; only unmatched utterances reach the chat path.
	if o.state == StateAwaitingChoice {
		if step := o.session.CurrentStep(); step != nil && step.Kind == content.StepMultipleChoice {
			if idx, ok := matchChoice(text, step.Choices); ok {
				o.answerChoiceLocked(idx)
				return
			}
		}
	}

	if o.mode == ModeLesson && o.session == nil && o.interview == nil {
		o.mode = ModeDoubt
	}
	o.chatLocked(text, "", false)
}

// chatLocked runs the shared chat path: snapshot the state to restore, append
// the user turn, call the provider, then speak the reply and settle into the
// mode-dependent follow-up state.
func (o *Orchestrator) chatLocked(text, code string, system bool) {
	if o.state != StateChatting {
		o.stateToRestore = o.state
	}
	histLen := len(o.history)
	o.appendMessageLocked(ChatMessage{Sender: SenderUser, Text: text, Code: code, System: system})
	o.retry = &pendingMessage{text: text, code: code, system: system, histLen: histLen}
	o.setStateLocked(StateChatting)

	req := content.ChatRequest{
		Mode:    string(o.mode),
		Message: text,
		Code:    o.code,
		History: o.historyTurnsLocked(),
	}
	if o.session != nil {
		req.Skill = o.session.Skill
		req.Topic = o.session.Topic
	}
	if o.mode == ModeInterview && o.interview != nil {
		if round := o.interview.CurrentRound(); round != nil {
			req.Interview = &content.InterviewContext{
				Company:     o.interview.Company,
				Role:        o.interview.Role,
				Experience:  o.interview.Experience,
				RoundTitle:  round.Title,
				Interviewer: round.Interviewer,
			}
		}
	}

	gen := o.beginFetchLocked()
	go func() {
		reply, err := o.provider.Chat(context.Background(), req)
		o.mu.Lock()
		defer o.mu.Unlock()
		if !o.endFetchLocked(gen) {
			return
		}
		if err != nil {
			o.providerErrLocked("chat", err)
			// The failed turn stays in o.retry so RetryLastMessage can roll
			// history back and resubmit it.
			o.setStateLocked(o.stateToRestore)
			o.sink.ErrorEvent("chat_failed", o.failureWording(err))
			return
		}
		o.retry = nil
		o.handleChatReplyLocked(reply)
	}()
}

func (o *Orchestrator) handleChatReplyLocked(reply content.ChatReply) {
	msg := ChatMessage{Sender: SenderAI, Text: reply.Text, Code: reply.Code, Diagram: reply.Diagram}
	o.appendMessageLocked(msg)
	if reply.Code != "" {
		o.code = reply.Code
		o.sink.CodeUpdated(reply.Code)
	}
	if reply.Diagram != "" {
		o.diagram = reply.Diagram
		o.sink.DiagramUpdated(reply.Diagram)
	}

	if o.mode == ModeInterview && reply.RoundFinished {
		// The round-advance transition supersedes the normal follow-up; no
		// intermediate state is set.
		o.advanceRoundLocked(reply.Text)
		return
	}

	o.speech.Speak(reply.Text, speech.LangHindi, o.voiceGenderLocked(), nil)
	if o.mode == ModeLesson {
		o.setStateLocked(StateClarifyingDoubt)
	} else {
		o.setStateLocked(StateAwaitingTask)
	}
}

// RetryLastMessage rolls conversation history back to just before the failed
// user turn and resubmits it.
func (o *Orchestrator) RetryLastMessage() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.retry == nil {
		return
	}
	pending := o.retry
	o.retry = nil
	if pending.histLen <= len(o.history) {
		o.history = o.history[:pending.histLen]
	}
	o.chatLocked(pending.text, pending.code, pending.system)
}

// StartInterview plans and opens a mock interview.
func (o *Orchestrator) StartInterview(company, role, experience string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.speech.Cancel()
	o.epoch++
	o.mode = ModeInterview
	o.session = nil
	o.history = nil
	o.retry = nil
	o.setStateLocked(StateLoadingLesson)

	req := content.InterviewRequest{Company: company, Role: role, Experience: experience}
	gen := o.beginFetchLocked()
	go func() {
		plan, err := o.provider.PlanInterview(context.Background(), req)
		o.mu.Lock()
		defer o.mu.Unlock()
		if !o.endFetchLocked(gen) {
			return
		}
		if err != nil {
			o.providerErrLocked("interview", err)
			o.errMessage = o.failureWording(err)
			o.setStateLocked(StateError)
			o.sink.ErrorEvent("interview_failed", o.errMessage)
			return
		}

		rounds := make([]Round, 0, len(plan.Rounds))
		for _, r := range plan.Rounds {
			rounds = append(rounds, Round{
				Kind:              r.Kind,
				Title:             r.Title,
				Interviewer:       r.Interviewer,
				InterviewerGender: r.InterviewerGender,
			})
		}
		o.interview = &InterviewSession{
			Company:    company,
			Role:       role,
			Experience: experience,
			Rounds:     rounds,
		}
		if len(rounds) > 0 {
			o.sink.RoundTransition(0, rounds[0].Title)
		}
		o.appendMessageLocked(ChatMessage{Sender: SenderAI, Text: plan.Opening})
		o.setStateLocked(StateChatting)

		// The first interviewer's introduction is elicited once the opening
		// statement finishes playing.
		epoch := o.epoch
		o.speech.Speak(plan.Opening, speech.LangHindi, o.voiceGenderLocked(), detach(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			if epoch != o.epoch {
				return
			}
			o.chatLocked("I am ready for the first round.", "", true)
		}))
	}()
}

// advanceRoundLocked marks the current round completed and moves on: more
// rounds elicit the next interviewer after a short visual delay, the last
// round speaks a closing statement whose completion resets the session.
func (o *Orchestrator) advanceRoundLocked(replyText string) {
	iv := o.interview
	if iv == nil || iv.Current >= len(iv.Rounds) {
		return
	}
	iv.Rounds[iv.Current].Completed = true
	iv.Current++

	if iv.Current < len(iv.Rounds) {
		next := iv.Rounds[iv.Current]
		o.sink.RoundTransition(iv.Current, next.Title)
		o.speech.Speak(replyText, speech.LangHindi, o.voiceGenderLocked(), nil)
		epoch := o.epoch
		o.delay(o.roundDelay, func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			if epoch != o.epoch {
				return
			}
			o.chatLocked("I am ready for the next round.", "", true)
		})
		return
	}

	o.setStateLocked(StateCourseCompleted)
	epoch := o.epoch
	closing := replyText + " That concludes your mock interview. Best of luck!"
	o.speech.Speak(closing, speech.LangHindi, o.voiceGenderLocked(), detach(func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if epoch != o.epoch {
			return
		}
		o.resetLocked()
	}))
}

// Reset discards all session state and returns to IDLE.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.resetLocked()
}

func (o *Orchestrator) resetLocked() {
	o.speech.Cancel()
	o.epoch++
	o.fetchGen++
	o.fetching = false
	o.mode = ModeLesson
	o.session = nil
	o.interview = nil
	o.history = nil
	o.code = ""
	o.diagram = ""
	o.retry = nil
	o.errMessage = ""
	o.stateToRestore = ""
	o.setStateLocked(StateIdle)
}

// ToggleMute flips speech-output mute.
func (o *Orchestrator) ToggleMute() bool {
	return o.speech.ToggleMute()
}

// SpeakingChanged re-evaluates the listening gate whenever speech output
// starts or stops. Runs asynchronously because the speech engine invokes its
// hooks from inside orchestrator-initiated calls.
func (o *Orchestrator) SpeakingChanged(bool) {
	go func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		o.evaluateGateLocked()
	}()
}

func (o *Orchestrator) processStepLocked() {
	step := o.session.CurrentStep()
	if step == nil {
		o.completeLessonLocked()
		return
	}
	o.session.Attempts = 0
	o.session.Hint = nil
	epoch := o.epoch

	switch step.Kind {
	case content.StepExplanation:
		o.appendMessageLocked(ChatMessage{Sender: SenderAI, Text: step.Content})
		o.setStateLocked(StateExplaining)
		// Continue must stay unavailable until the explanation has been
		// fully spoken.
		o.speech.Speak(step.Content, speech.LangHindi, speech.GenderFemale, detach(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			if epoch != o.epoch || o.state != StateExplaining {
				return
			}
			o.setStateLocked(StateAwaitingContinue)
		}))

	case content.StepMultipleChoice:
		o.appendMessageLocked(ChatMessage{Sender: SenderAI, Text: step.Question, Choices: step.Choices})
		// Choices are answerable while the question is still being read.
		o.speech.Speak(step.Question, speech.LangHindi, speech.GenderFemale, nil)
		o.setStateLocked(StateAwaitingChoice)

	case content.StepCodeTask:
		o.appendMessageLocked(ChatMessage{Sender: SenderAI, Text: step.IntroHindi + " " + step.Mission})
		if step.StarterCode != "" {
			o.code = step.StarterCode
			o.sink.CodeUpdated(step.StarterCode)
		}
		o.speech.SpeakSegments([]speech.Segment{
			{Text: step.IntroHindi, Lang: speech.LangHindi},
			{Text: step.Mission, Lang: speech.LangEnglish},
		}, speech.GenderFemale, nil)
		o.setStateLocked(StateAwaitingTask)

	default:
		o.log.Warn().Str("kind", string(step.Kind)).Msg("skipping unknown step kind")
		o.session.StepIndex++
		o.processStepLocked()
	}
}

// completeLessonLocked records progress for the finished lesson and lands on
// CORRECT, or COURSE_COMPLETED when the skill's last topic is done.
func (o *Orchestrator) completeLessonLocked() {
	sess := o.session
	if sess == nil {
		o.setStateLocked(StateIdle)
		return
	}
	if o.metrics != nil {
		o.metrics.LessonEvents.WithLabelValues("completed").Inc()
	}

	// Leave AWAITING_CONTINUE before the store round trip starts. A repeated
	// Continue arriving while persistence is in flight must not re-enter
	// completion and credit the lesson twice.
	o.session = nil
	o.setStateLocked(StateEvaluating)

	epoch := o.epoch
	now := o.clock()
	go func() {
		snap, active, err := o.loadActiveProfile()
		if err != nil {
			o.log.Error().Err(err).Msg("load profile for lesson completion")
		}

		lastTopic := false
		var updated profile.Profile
		if active != nil {
			applyCompletion(active, now, lessonPoints)
			active.MarkTopicCompleted(sess.Skill, sess.Topic)

			topics := TopicsFor(sess.Skill)
			if len(topics) > 0 {
				lastTopic = true
				for _, t := range topics {
					if !active.TopicCompleted(sess.Skill, t) {
						lastTopic = false
						break
					}
				}
			}
			if lastTopic && !active.HasBadge(BadgeFor(sess.Skill)) {
				active.Badges = append(active.Badges, BadgeFor(sess.Skill))
			}
			updated = *active
			if err := o.store.Save(context.Background(), snap); err != nil {
				o.log.Error().Err(err).Msg("save profile after lesson completion")
			}
		}

		o.mu.Lock()
		defer o.mu.Unlock()
		if epoch != o.epoch {
			return
		}
		if active != nil {
			o.sink.ProgressUpdated(updated)
		}
		if lastTopic {
			o.setStateLocked(StateCourseCompleted)
			o.speech.Speak("Kamaal kar diya! Aapne poora course complete kar liya!", speech.LangHindi, speech.GenderFemale, nil)
			return
		}
		o.setStateLocked(StateCorrect)
		o.speech.Speak("Shabash! Yeh topic complete ho gaya.", speech.LangHindi, speech.GenderFemale, nil)
	}()
}

// loadActiveProfile returns the stored snapshot plus a pointer to the active
// profile inside it, so mutations land back in the snapshot before Save.
func (o *Orchestrator) loadActiveProfile() (profile.Snapshot, *profile.Profile, error) {
	snap, err := o.store.Load(context.Background())
	if err != nil {
		return snap, nil, err
	}
	for i := range snap.Profiles {
		if snap.Profiles[i].ID == snap.ActiveID {
			return snap, &snap.Profiles[i], nil
		}
	}
	if len(snap.Profiles) > 0 {
		return snap, &snap.Profiles[0], nil
	}
	return snap, nil, nil
}

func (o *Orchestrator) setStateLocked(s State) {
	if o.state == s {
		return
	}
	o.state = s
	if o.metrics != nil {
		o.metrics.StateTransitions.WithLabelValues(string(s)).Inc()
	}
	o.sink.StateChanged(s)
	o.evaluateGateLocked()
}

// evaluateGateLocked enforces the listening invariant: the recognizer runs
// iff the state accepts input, no fetch is in flight, speech output is
// silent, and recognition is supported.
func (o *Orchestrator) evaluateGateLocked() {
	want := o.state.AcceptsListening() &&
		!o.fetching &&
		!o.speech.Speaking() &&
		o.listen.Supported()
	if want {
		if err := o.listen.Start(); err != nil {
			o.log.Warn().Err(err).Msg("start listening")
		}
		return
	}
	o.listen.Stop()
}

func (o *Orchestrator) beginFetchLocked() uint64 {
	o.fetchGen++
	o.fetching = true
	o.evaluateGateLocked()
	return o.fetchGen
}

// endFetchLocked reports whether this fetch is still the current one; stale
// completions are dropped.
func (o *Orchestrator) endFetchLocked(gen uint64) bool {
	if gen != o.fetchGen {
		return false
	}
	o.fetching = false
	o.evaluateGateLocked()
	return true
}

func (o *Orchestrator) appendMessageLocked(msg ChatMessage) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	o.history = append(o.history, msg)
	o.sink.ChatAppended(msg)
}

func (o *Orchestrator) historyTurnsLocked() []content.Turn {
	turns := make([]content.Turn, 0, len(o.history))
	for _, m := range o.history {
		turns = append(turns, content.Turn{Role: string(m.Sender), Text: m.Text})
	}
	return turns
}

func (o *Orchestrator) voiceGenderLocked() speech.Gender {
	if o.mode == ModeInterview && o.interview != nil {
		if round := o.interview.CurrentRound(); round != nil {
			return speech.Gender(round.InterviewerGender)
		}
	}
	return speech.GenderFemale
}

func (o *Orchestrator) providerErrLocked(op string, err error) {
	code := "provider_error"
	if reliability.IsQuotaError(err) {
		code = "quota_exceeded"
	}
	if o.metrics != nil {
		o.metrics.ProviderErrors.WithLabelValues(op, code).Inc()
	}
	o.log.Error().Err(err).Str("op", op).Msg("content provider call failed")
}

// failureWording picks the user-facing message; quota exhaustion gets its own
// wording, the control flow is the same either way.
func (o *Orchestrator) failureWording(err error) string {
	if reliability.IsQuotaError(err) {
		return "Guruji abhi thoda busy hai (daily limit). Thodi der baad try kijiye."
	}
	return "Kuch gadbad ho gayi. Please try again."
}
