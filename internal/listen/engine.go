package listen

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// isSubmitCommand reports whether a final transcript is the submit voice
// command rather than content. Short utterances containing the phrase count;
// a long answer that merely mentions the word does not.
func isSubmitCommand(text, phrase string) bool {
	norm := strings.ToLower(strings.TrimSpace(text))
	if norm == phrase {
		return true
	}
	return strings.Contains(norm, phrase) && len(strings.Fields(norm)) <= len(strings.Fields(phrase))+2
}

// Engine wraps a Recognizer with the state the rest of the service needs:
// an idempotent start/stop pair, the current interim transcript, and the
// last recognition error. Transcripts and listening-state changes are pushed
// through the registered hooks.
type Engine struct {
	rec          Recognizer
	log          zerolog.Logger
	submitPhrase string

	mu        sync.Mutex
	listening bool
	interim   string
	lastErr   string
	cancel    context.CancelFunc
	gen       uint64

	onInterim   func(string)
	onFinal     func(string)
	onSubmit    func()
	onListening func(bool)
}

// NewEngine wraps rec. submitPhrase, when non-empty, is the voice command
// that triggers the submit hook instead of a normal final transcript.
func NewEngine(rec Recognizer, submitPhrase string, log zerolog.Logger) *Engine {
	return &Engine{
		rec:          rec,
		log:          log.With().Str("component", "listen").Logger(),
		submitPhrase: strings.ToLower(strings.TrimSpace(submitPhrase)),
	}
}

func (e *Engine) SetOnInterim(fn func(string)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onInterim = fn
}

// SetOnFinal registers the committed-transcript hook.
func (e *Engine) SetOnFinal(fn func(string)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onFinal = fn
}

// SetOnSubmit registers the submit voice-command hook.
func (e *Engine) SetOnSubmit(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onSubmit = fn
}

func (e *Engine) SetOnListening(fn func(bool)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onListening = fn
}

// Supported reports whether speech input is available at all.
func (e *Engine) Supported() bool {
	return e.rec.Supported()
}

func (e *Engine) Listening() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.listening
}

// Interim returns the current partial transcript, empty when idle.
func (e *Engine) Interim() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.interim
}

// LastError returns the most recent recognition error code, empty when none.
func (e *Engine) LastError() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Start opens a listening session. Calling Start while already listening is
// a no-op.
func (e *Engine) Start() error {
	e.mu.Lock()
	if e.listening {
		e.mu.Unlock()
		return nil
	}
	if !e.rec.Supported() {
		e.lastErr = "unsupported"
		e.mu.Unlock()
		return ErrUnsupported
	}

	ctx, cancel := context.WithCancel(context.Background())
	events, err := e.rec.Listen(ctx)
	if err != nil {
		cancel()
		e.lastErr = err.Error()
		e.mu.Unlock()
		return err
	}

	e.gen++
	gen := e.gen
	e.cancel = cancel
	e.listening = true
	e.interim = ""
	e.lastErr = ""
	e.mu.Unlock()

	e.notifyListening(true)
	go e.consume(gen, events)
	return nil
}

// Stop ends the listening session and clears the interim transcript. Safe
// when not listening.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.listening {
		e.mu.Unlock()
		return
	}
	e.gen++
	e.listening = false
	e.interim = ""
	cancel := e.cancel
	e.cancel = nil
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	e.notifyListening(false)
}

func (e *Engine) Close() error {
	e.Stop()
	return e.rec.Close()
}

func (e *Engine) consume(gen uint64, events <-chan Event) {
	for evt := range events {
		e.mu.Lock()
		if gen != e.gen {
			e.mu.Unlock()
			return
		}
		switch evt.Type {
		case EventInterim:
			e.interim = evt.Text
			fn := e.onInterim
			e.mu.Unlock()
			if fn != nil {
				fn(evt.Text)
			}
		case EventFinal:
			e.interim = ""
			final := e.onFinal
			submit := e.onSubmit
			phrase := e.submitPhrase
			e.mu.Unlock()
			if phrase != "" && submit != nil && isSubmitCommand(evt.Text, phrase) {
				submit()
			} else if final != nil {
				final(evt.Text)
			}
		case EventError:
			e.lastErr = evt.Code
			e.mu.Unlock()
			e.log.Warn().Str("code", evt.Code).Msg("recognition error")
		default:
			e.mu.Unlock()
		}
	}

	// Session ended on its own (mic backend gave up or the utterance is
	// over). Only the session that is still current flips the flag.
	e.mu.Lock()
	if gen != e.gen {
		e.mu.Unlock()
		return
	}
	e.listening = false
	e.interim = ""
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.mu.Unlock()
	e.notifyListening(false)
}

func (e *Engine) notifyListening(listening bool) {
	e.mu.Lock()
	fn := e.onListening
	e.mu.Unlock()
	if fn != nil {
		fn(listening)
	}
}
