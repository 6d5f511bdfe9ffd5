package listen

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestEngineStartIsIdempotent(t *testing.T) {
	rec := NewMockRecognizer(true)
	e := NewEngine(rec, "", zerolog.Nop())
	t.Cleanup(func() { e.Close() })

	if err := e.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := e.Start(); err != nil {
		t.Fatalf("second Start() error = %v", err)
	}
	if got := rec.Sessions(); got != 1 {
		t.Fatalf("Sessions() = %d, want 1", got)
	}
	if !e.Listening() {
		t.Fatal("Listening() = false after Start")
	}
}

func TestEngineInterimThenFinal(t *testing.T) {
	rec := NewMockRecognizer(true)
	e := NewEngine(rec, "", zerolog.Nop())
	t.Cleanup(func() { e.Close() })

	var mu sync.Mutex
	var finals []string
	e.SetOnFinal(func(text string) {
		mu.Lock()
		finals = append(finals, text)
		mu.Unlock()
	})

	if err := e.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	rec.EmitInterim("mera jawab")
	waitFor(t, "interim transcript", func() bool { return e.Interim() == "mera jawab" })

	rec.EmitInterim("mera jawab B hai")
	waitFor(t, "interim replaced", func() bool { return e.Interim() == "mera jawab B hai" })

	rec.EmitFinal("mera jawab B hai")
	waitFor(t, "final delivered", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(finals) == 1 && finals[0] == "mera jawab B hai"
	})
	waitFor(t, "interim cleared", func() bool { return e.Interim() == "" })
}

func TestEngineStopClearsInterimAndCancelsSession(t *testing.T) {
	rec := NewMockRecognizer(true)
	e := NewEngine(rec, "", zerolog.Nop())
	t.Cleanup(func() { e.Close() })

	var mu sync.Mutex
	var states []bool
	e.SetOnListening(func(l bool) {
		mu.Lock()
		states = append(states, l)
		mu.Unlock()
	})

	if err := e.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	rec.EmitInterim("half an ans")
	waitFor(t, "interim transcript", func() bool { return e.Interim() != "" })

	e.Stop()
	if e.Listening() {
		t.Fatal("Listening() = true after Stop")
	}
	if e.Interim() != "" {
		t.Fatalf("Interim() = %q after Stop, want empty", e.Interim())
	}

	// A final arriving after Stop belongs to a dead session.
	rec.EmitFinal("too late")
	time.Sleep(20 * time.Millisecond)
	if e.Interim() != "" || e.Listening() {
		t.Fatal("stale session leaked state after Stop")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(states) < 2 || states[0] != true || states[len(states)-1] != false {
		t.Fatalf("listening states = %v, want true then false", states)
	}
}

func TestEngineStopWhenIdleIsHarmless(t *testing.T) {
	e := NewEngine(NewMockRecognizer(true), "", zerolog.Nop())
	t.Cleanup(func() { e.Close() })
	e.Stop()
	e.Stop()
	if e.Listening() {
		t.Fatal("Listening() = true without Start")
	}
}

func TestEngineSessionEndingOnItsOwnClearsListening(t *testing.T) {
	rec := NewMockRecognizer(true)
	e := NewEngine(rec, "", zerolog.Nop())
	t.Cleanup(func() { e.Close() })

	if err := e.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	rec.EndSession()
	waitFor(t, "listening cleared", func() bool { return !e.Listening() })
}

func TestEngineUnsupportedRecognizer(t *testing.T) {
	e := NewEngine(NewMockRecognizer(false), "", zerolog.Nop())
	t.Cleanup(func() { e.Close() })

	if e.Supported() {
		t.Fatal("Supported() = true for unsupported recognizer")
	}
	if err := e.Start(); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("Start() error = %v, want ErrUnsupported", err)
	}
	if e.LastError() != "unsupported" {
		t.Fatalf("LastError() = %q, want %q", e.LastError(), "unsupported")
	}
}

func TestEngineRecordsRecognitionErrors(t *testing.T) {
	rec := NewMockRecognizer(true)
	e := NewEngine(rec, "", zerolog.Nop())
	t.Cleanup(func() { e.Close() })

	if err := e.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	rec.EmitError("no-speech")
	waitFor(t, "error recorded", func() bool { return e.LastError() == "no-speech" })
	if !e.Listening() {
		t.Fatal("Listening() = false after a non-fatal error")
	}
}

func TestEngineSubmitVoiceCommand(t *testing.T) {
	rec := NewMockRecognizer(true)
	e := NewEngine(rec, "submit code", zerolog.Nop())
	t.Cleanup(func() { e.Close() })

	var mu sync.Mutex
	submits := 0
	var finals []string
	e.SetOnSubmit(func() {
		mu.Lock()
		submits++
		mu.Unlock()
	})
	e.SetOnFinal(func(text string) {
		mu.Lock()
		finals = append(finals, text)
		mu.Unlock()
	})

	if err := e.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	rec.EmitFinal("Submit code")
	waitFor(t, "submit hook", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return submits == 1
	})

	// A full answer that mentions the phrase is content, not a command.
	rec.EmitFinal("I would submit code only after writing tests for every branch")
	waitFor(t, "final hook", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(finals) == 1
	})

	mu.Lock()
	defer mu.Unlock()
	if submits != 1 {
		t.Fatalf("submit hook fired %d times, want 1", submits)
	}
}
