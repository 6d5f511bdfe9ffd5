package speech

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/guruji-labs/guruji/internal/observability"
)

func newTestEngine(t *testing.T, synth Synthesizer, sample func(int) int) *Engine {
	t.Helper()
	m := observability.NewMetrics(fmt.Sprintf("guruji_test_speech_%d", time.Now().UnixNano()))
	e := NewEngine(Config{
		Synth:       synth,
		Logger:      zerolog.Nop(),
		Metrics:     m,
		SampleShape: sample,
	})
	t.Cleanup(func() { e.Close() })
	return e
}

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

func TestEngineDrainsSegmentsInOrderAndCompletesOnce(t *testing.T) {
	synth := NewMockSynthesizer(false)
	e := newTestEngine(t, synth, nil)

	var completions int32
	e.SpeakSegments([]Segment{
		{Text: "Chalo shuru karte hain", Lang: LangHindi},
		{Text: "arrays hold many values", Lang: LangEnglish},
	}, GenderFemale, func() { atomic.AddInt32(&completions, 1) })

	if !e.Speaking() {
		t.Fatal("Speaking() = false right after SpeakSegments")
	}
	if got := e.Caption(); got != "Chalo shuru karte hain arrays hold many values" {
		t.Fatalf("Caption() = %q", got)
	}

	waitFor(t, "first unit submitted", func() bool { return len(synth.Utterances()) == 1 })
	synth.FinishUnit()
	waitFor(t, "second unit submitted", func() bool { return len(synth.Utterances()) == 2 })
	synth.FinishUnit()
	waitFor(t, "completion", func() bool { return atomic.LoadInt32(&completions) == 1 })
	waitFor(t, "speaking cleared", func() bool { return !e.Speaking() })

	got := synth.Utterances()
	if got[0].Text != "Chalo shuru karte hain" || got[1].Text != "arrays hold many values" {
		t.Fatalf("utterance order = %q, %q", got[0].Text, got[1].Text)
	}
	if e.CurrentShape() != ShapeNeutral {
		t.Fatalf("CurrentShape() after drain = %q, want neutral", e.CurrentShape())
	}

	// The callback must not fire again for any reason.
	time.Sleep(20 * time.Millisecond)
	if n := atomic.LoadInt32(&completions); n != 1 {
		t.Fatalf("completion callback fired %d times, want 1", n)
	}
}

func TestEngineCancelDropsQueueWithoutCompletion(t *testing.T) {
	synth := NewMockSynthesizer(false)
	e := newTestEngine(t, synth, nil)

	var completions int32
	e.SpeakSegments([]Segment{
		{Text: "one", Lang: LangEnglish},
		{Text: "two", Lang: LangEnglish},
	}, GenderMale, func() { atomic.AddInt32(&completions, 1) })
	waitFor(t, "first unit submitted", func() bool { return len(synth.Utterances()) == 1 })

	e.Cancel()

	if e.Speaking() {
		t.Fatal("Speaking() = true after Cancel")
	}
	if e.CurrentShape() != ShapeNeutral {
		t.Fatalf("CurrentShape() = %q after Cancel, want neutral", e.CurrentShape())
	}
	if e.QueueDepth() != 0 {
		t.Fatalf("QueueDepth() = %d after Cancel, want 0", e.QueueDepth())
	}

	time.Sleep(20 * time.Millisecond)
	if len(synth.Utterances()) != 1 {
		t.Fatalf("second unit submitted after Cancel")
	}
	if atomic.LoadInt32(&completions) != 0 {
		t.Fatal("completion callback fired after Cancel")
	}
}

func TestEngineCancelIdleIsHarmless(t *testing.T) {
	synth := NewMockSynthesizer(false)
	e := newTestEngine(t, synth, nil)

	e.Cancel()
	e.Cancel()
	if e.Speaking() {
		t.Fatal("Speaking() = true after idle Cancel")
	}
}

func TestEngineNewSpeakReplacesPending(t *testing.T) {
	synth := NewMockSynthesizer(false)
	e := newTestEngine(t, synth, nil)

	var first, second int32
	e.Speak("old announcement", LangEnglish, GenderMale, func() { atomic.AddInt32(&first, 1) })
	waitFor(t, "first unit submitted", func() bool { return len(synth.Utterances()) == 1 })

	e.Speak("fresh announcement", LangEnglish, GenderMale, func() { atomic.AddInt32(&second, 1) })
	waitFor(t, "replacement submitted", func() bool { return len(synth.Utterances()) == 2 })
	synth.FinishUnit()
	waitFor(t, "second completion", func() bool { return atomic.LoadInt32(&second) == 1 })

	if atomic.LoadInt32(&first) != 0 {
		t.Fatal("superseded callback fired")
	}
}

func TestEngineMutedSpeakCompletesSynchronously(t *testing.T) {
	synth := NewMockSynthesizer(false)
	e := newTestEngine(t, synth, nil)

	if muted := e.ToggleMute(); !muted {
		t.Fatal("ToggleMute() = false, want true")
	}

	ran := false
	e.Speak("kuch bhi", LangHindi, GenderFemale, func() { ran = true })
	if !ran {
		t.Fatal("completion did not run synchronously while muted")
	}
	if e.Speaking() {
		t.Fatal("Speaking() = true while muted")
	}
	if len(synth.Utterances()) != 0 {
		t.Fatal("utterance submitted while muted")
	}
}

func TestEngineMutingCancelsActiveSpeech(t *testing.T) {
	synth := NewMockSynthesizer(false)
	e := newTestEngine(t, synth, nil)

	e.Speak("long explanation", LangEnglish, GenderMale, nil)
	waitFor(t, "unit submitted", func() bool { return len(synth.Utterances()) == 1 })

	e.ToggleMute()
	if e.Speaking() {
		t.Fatal("Speaking() = true after muting")
	}
	if !e.Muted() {
		t.Fatal("Muted() = false after ToggleMute")
	}
}

func TestEngineEmptySegmentsCompleteImmediately(t *testing.T) {
	synth := NewMockSynthesizer(false)
	e := newTestEngine(t, synth, nil)

	ran := false
	e.SpeakSegments([]Segment{{Text: "   ", Lang: LangEnglish}, {Text: "", Lang: LangHindi}}, "", func() { ran = true })
	if !ran {
		t.Fatal("completion did not run for all-empty segments")
	}
	if len(synth.Utterances()) != 0 {
		t.Fatal("utterance submitted for all-empty segments")
	}
}

func TestEngineWordBoundarySamplesShape(t *testing.T) {
	synth := NewMockSynthesizer(false)
	e := newTestEngine(t, synth, func(int) int { return 2 })

	e.Speak("two words", LangEnglish, GenderMale, nil)
	waitFor(t, "unit submitted", func() bool { return len(synth.Utterances()) == 1 })
	if e.CurrentShape() != ShapeOpen {
		t.Fatalf("CurrentShape() at start = %q, want open", e.CurrentShape())
	}

	synth.EmitWord(0)
	waitFor(t, "sampled shape", func() bool { return e.CurrentShape() == ShapeRound })
	synth.FinishUnit()
	waitFor(t, "neutral shape after drain", func() bool { return e.CurrentShape() == ShapeNeutral })
}

func TestEngineUnitErrorDoesNotAbortQueue(t *testing.T) {
	synth := NewMockSynthesizer(false)
	e := newTestEngine(t, synth, nil)

	var completions int32
	e.SpeakSegments([]Segment{
		{Text: "first", Lang: LangEnglish},
		{Text: "second", Lang: LangEnglish},
	}, GenderMale, func() { atomic.AddInt32(&completions, 1) })
	waitFor(t, "first unit submitted", func() bool { return len(synth.Utterances()) == 1 })

	synth.FailUnit("synthesis-failed", "engine hiccup")
	synth.FinishUnit()
	waitFor(t, "second unit submitted", func() bool { return len(synth.Utterances()) == 2 })
	synth.FinishUnit()
	waitFor(t, "completion", func() bool { return atomic.LoadInt32(&completions) == 1 })
}

func TestEngineSynthesizesNormalizedTextKeepsCaptionRaw(t *testing.T) {
	synth := NewMockSynthesizer(false)
	e := newTestEngine(t, synth, nil)

	e.Speak("2.5 use it", LangEnglish, GenderMale, nil)
	waitFor(t, "unit submitted", func() bool { return len(synth.Utterances()) == 1 })

	if got := synth.Utterances()[0].Text; got != "2 point 5 yuuzh it" {
		t.Fatalf("synthesized text = %q, want %q", got, "2 point 5 yuuzh it")
	}
	if got := e.Caption(); got != "2.5 use it" {
		t.Fatalf("Caption() = %q, want raw text", got)
	}
}

func TestEngineSpeakingHookObservesLifecycle(t *testing.T) {
	synth := NewMockSynthesizer(false)
	e := newTestEngine(t, synth, nil)

	var mu sync.Mutex
	var states []bool
	e.SetOnSpeaking(func(s bool) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	})

	e.Speak("hello", LangEnglish, GenderMale, nil)
	waitFor(t, "unit submitted", func() bool { return len(synth.Utterances()) == 1 })
	synth.FinishUnit()
	waitFor(t, "speaking false observed", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(states) >= 2 && !states[len(states)-1]
	})

	mu.Lock()
	defer mu.Unlock()
	if !states[0] {
		t.Fatalf("first speaking hook value = false, want true")
	}
}
