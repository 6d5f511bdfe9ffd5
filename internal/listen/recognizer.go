package listen

import (
	"context"
	"errors"
)

// ErrUnsupported means no speech-input backend is available; the session
// falls back to typed input.
var ErrUnsupported = errors.New("speech input unsupported")

// EventType identifies recognizer events.
type EventType string

const (
	// EventInterim carries a partial transcript; each one replaces the last.
	EventInterim EventType = "interim"
	// EventFinal carries the committed transcript for the utterance.
	EventFinal EventType = "final"
	// EventError reports a recognition failure. The session keeps running
	// unless the event stream closes.
	EventError EventType = "error"
)

type Event struct {
	Type EventType
	Text string
	Code string
}

// Recognizer is one speech-input backend. Listen opens a listening session:
// the returned channel carries interim and final transcripts and closes when
// the session ends, whether by cancellation or on its own.
type Recognizer interface {
	Listen(ctx context.Context) (<-chan Event, error)
	Supported() bool
	Close() error
}
