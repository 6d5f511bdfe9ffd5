package listen

import (
	"context"
	"fmt"
	"sync"
)

// MockRecognizer is an in-process Recognizer for tests and the mock listen
// mode. Tests drive it with EmitInterim, EmitFinal, EmitError and EndSession.
type MockRecognizer struct {
	supported bool

	mu       sync.Mutex
	events   chan Event
	open     bool
	sessions int
	closed   bool
}

func NewMockRecognizer(supported bool) *MockRecognizer {
	return &MockRecognizer{supported: supported}
}

func (m *MockRecognizer) Listen(ctx context.Context) (<-chan Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, fmt.Errorf("mock recognizer closed")
	}
	if !m.supported {
		return nil, ErrUnsupported
	}

	ch := make(chan Event, 64)
	m.events = ch
	m.open = true
	m.sessions++

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.events == ch && m.open {
			close(ch)
			m.open = false
		}
	}()
	return ch, nil
}

func (m *MockRecognizer) Supported() bool {
	return m.supported
}

func (m *MockRecognizer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	if m.open {
		close(m.events)
		m.open = false
	}
	return nil
}

func (m *MockRecognizer) EmitInterim(text string) {
	m.send(Event{Type: EventInterim, Text: text})
}

func (m *MockRecognizer) EmitFinal(text string) {
	m.send(Event{Type: EventFinal, Text: text})
}

func (m *MockRecognizer) EmitError(code string) {
	m.send(Event{Type: EventError, Code: code})
}

// EndSession closes the event stream, as a mic backend does when it stops on
// its own.
func (m *MockRecognizer) EndSession() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.open {
		close(m.events)
		m.open = false
	}
}

// Sessions reports how many listening sessions have been opened.
func (m *MockRecognizer) Sessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions
}

func (m *MockRecognizer) send(evt Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.open {
		m.events <- evt
	}
}
