package speech

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockSynthesizer is an in-process Synthesizer for tests and the mock speech
// mode. In auto mode every accepted utterance emits a word event per word and
// then a done event. With auto off, tests drive the stream by hand through
// EmitWord, FailUnit and FinishUnit.
type MockSynthesizer struct {
	mu         sync.Mutex
	auto       bool
	voices     chan []Voice
	events     chan Event
	eventsOpen bool
	utterances []Utterance
	stops      int
	closed     bool
}

// DefaultMockVoices mirrors a typical device voice list: gendered English
// voices plus a single Hindi voice.
var DefaultMockVoices = []Voice{
	{ID: "mock-en-f", Name: "Asha", Locale: "en-US", Gender: GenderFemale},
	{ID: "mock-en-m", Name: "Dev", Locale: "en-US", Gender: GenderMale},
	{ID: "mock-hi-f", Name: "Kavya", Locale: "hi-IN", Gender: GenderFemale},
}

func NewMockSynthesizer(auto bool) *MockSynthesizer {
	m := &MockSynthesizer{
		auto:   auto,
		voices: make(chan []Voice, 4),
	}
	m.voices <- DefaultMockVoices
	return m
}

func (m *MockSynthesizer) Speak(_ context.Context, u Utterance) (<-chan Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, fmt.Errorf("mock synthesizer closed")
	}

	m.utterances = append(m.utterances, u)
	ch := make(chan Event, 64)
	m.events = ch
	m.eventsOpen = true

	if m.auto {
		words := strings.Fields(u.Text)
		for i := range words {
			ch <- Event{Type: EventWord, WordIndex: i}
		}
		ch <- Event{Type: EventDone}
		close(ch)
		m.eventsOpen = false
	}
	return ch, nil
}

func (m *MockSynthesizer) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
	m.closeEventsLocked()
}

func (m *MockSynthesizer) VoiceUpdates() <-chan []Voice {
	return m.voices
}

func (m *MockSynthesizer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.closeEventsLocked()
	close(m.voices)
	return nil
}

// PublishVoices delivers a replacement voice list, as a device engine does
// when its catalog loads late or changes.
func (m *MockSynthesizer) PublishVoices(voices []Voice) {
	m.voices <- voices
}

// EmitWord reports a word boundary on the in-flight utterance.
func (m *MockSynthesizer) EmitWord(index int) {
	m.send(Event{Type: EventWord, WordIndex: index})
}

// FailUnit reports a synthesis error without finishing the utterance.
func (m *MockSynthesizer) FailUnit(code, detail string) {
	m.send(Event{Type: EventError, Code: code, Detail: detail})
}

// FinishUnit completes the in-flight utterance.
func (m *MockSynthesizer) FinishUnit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.eventsOpen {
		return
	}
	m.events <- Event{Type: EventDone}
	m.closeEventsLocked()
}

// AbortUnit closes the event stream without a done event.
func (m *MockSynthesizer) AbortUnit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeEventsLocked()
}

// Utterances returns a copy of every accepted utterance, in order.
func (m *MockSynthesizer) Utterances() []Utterance {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Utterance, len(m.utterances))
	copy(out, m.utterances)
	return out
}

// StopCount reports how many times Stop has been called.
func (m *MockSynthesizer) StopCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}

func (m *MockSynthesizer) send(evt Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.eventsOpen {
		return
	}
	m.events <- evt
}

func (m *MockSynthesizer) closeEventsLocked() {
	if m.eventsOpen {
		close(m.events)
		m.eventsOpen = false
	}
}
