package speech

import "context"

// Language tags a segment with its spoken language.
type Language string

const (
	LangEnglish Language = "en"
	LangHindi   Language = "hi"
)

// Gender selects a voice slot for a language.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Segment is one language-tagged chunk of text, the unit of queue granularity.
// Segments are immutable once enqueued.
type Segment struct {
	Text string
	Lang Language
}

// Voice describes one synthesizer voice.
type Voice struct {
	ID     string
	Name   string
	Locale string
	Gender Gender
}

// EventType identifies synthesizer playback events.
type EventType string

const (
	// EventWord fires at each word boundary while a unit plays.
	EventWord EventType = "word"
	// EventDone fires when a unit finishes, including after an error.
	EventDone EventType = "done"
	// EventError reports a per-unit synthesis failure. Non-fatal; the queue
	// still waits for EventDone.
	EventError EventType = "error"
)

type Event struct {
	Type      EventType
	WordIndex int
	Code      string
	Detail    string
}

// Utterance is one synthesis unit submitted to the device voice engine.
// Empty VoiceID lets the engine use its own default. Rate and pitch are
// fixed at neutral.
type Utterance struct {
	Text    string
	VoiceID string
	Rate    float64
	Pitch   float64
}

// Synthesizer is the device voice engine. At most one utterance is in flight;
// Speak for a new utterance is only called after the previous one's EventDone.
// VoiceUpdates delivers the available-voice list asynchronously and may
// deliver it multiple times.
type Synthesizer interface {
	Speak(ctx context.Context, u Utterance) (<-chan Event, error)
	Stop()
	VoiceUpdates() <-chan []Voice
	Close() error
}
