package speech

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/guruji-labs/guruji/internal/observability"
)

// unit is one queued synthesis unit.
type unit struct {
	text    string
	voiceID string
	lang    Language
}

// Config controls Engine construction.
type Config struct {
	Synth   Synthesizer
	Logger  zerolog.Logger
	Metrics *observability.Metrics
	// SampleShape picks a palette index per word boundary. Defaults to a
	// uniform random pick; tests substitute a deterministic sampler.
	SampleShape func(n int) int
}

// Engine owns the utterance queue. At most one unit is in flight, the queue
// drains strictly FIFO, and a new Speak replaces whatever was queued. All
// speaking/shape/caption changes are published through the registered hooks.
type Engine struct {
	synth   Synthesizer
	catalog *Catalog
	log     zerolog.Logger
	metrics *observability.Metrics
	sample  func(n int) int

	mu         sync.Mutex
	queue      []unit
	onComplete func()
	speaking   bool
	muted      bool
	shape      Shape
	caption    string
	gen        uint64

	onSpeaking func(bool)
	onShape    func(Shape)
	onCaption  func(string)
}

func NewEngine(cfg Config) *Engine {
	sample := cfg.SampleShape
	if sample == nil {
		sample = defaultShapeSampler
	}
	e := &Engine{
		synth:   cfg.Synth,
		catalog: NewCatalog(),
		log:     cfg.Logger.With().Str("component", "speech").Logger(),
		metrics: cfg.Metrics,
		sample:  sample,
		shape:   ShapeNeutral,
	}

	// The device engine delivers its voice list asynchronously, possibly
	// several times; the selection table is rebuilt on each delivery.
	go func() {
		for voices := range e.synth.VoiceUpdates() {
			e.catalog.Rebuild(voices)
		}
	}()

	return e
}

// SetOnSpeaking registers the speaking-flag hook.
func (e *Engine) SetOnSpeaking(fn func(bool)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onSpeaking = fn
}

// SetOnShape registers the mouth-shape hook.
func (e *Engine) SetOnShape(fn func(Shape)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onShape = fn
}

// SetOnCaption registers the caption hook, fed with the full concatenated
// original text of each Speak call.
func (e *Engine) SetOnCaption(fn func(string)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onCaption = fn
}

// Speak queues a single implicit segment.
func (e *Engine) Speak(text string, lang Language, gender Gender, onComplete func()) {
	e.SpeakSegments([]Segment{{Text: text, Lang: lang}}, gender, onComplete)
}

// SpeakSegments replaces the queue with the given ordered segments and starts
// playback. The completion callback fires exactly once, after the last
// segment finishes. When the engine is muted or every segment trims to
// nothing, the callback runs synchronously and nothing is queued.
func (e *Engine) SpeakSegments(segments []Segment, gender Gender, onComplete func()) {
	units := make([]unit, 0, len(segments))
	captionParts := make([]string, 0, len(segments))
	for _, seg := range segments {
		trimmed := strings.TrimSpace(seg.Text)
		if trimmed == "" {
			continue
		}
		lang := seg.Lang
		if lang != LangHindi {
			lang = LangEnglish
		}
		captionParts = append(captionParts, trimmed)
		units = append(units, unit{
			text:    normalizeForSynthesis(trimmed),
			voiceID: e.catalog.Resolve(lang, gender),
			lang:    lang,
		})
	}

	e.mu.Lock()
	if e.muted || len(units) == 0 {
		e.mu.Unlock()
		if onComplete != nil {
			onComplete()
		}
		return
	}

	// Replacing the queue implicitly cancels anything in flight; the old
	// completion callback is forgotten, never invoked.
	e.gen++
	gen := e.gen
	e.synth.Stop()
	e.queue = units
	e.onComplete = onComplete
	e.speaking = true
	e.shape = ShapeOpen
	e.caption = strings.Join(captionParts, " ")
	caption := e.caption
	first := e.popLocked()
	e.mu.Unlock()

	e.notifySpeaking(true)
	e.notifyShape(ShapeOpen)
	e.notifyCaption(caption)
	go e.play(gen, first)
}

// Cancel empties the queue, forgets the pending completion callback without
// invoking it, stops the device engine, and resets speaking and mouth shape.
// Safe and idempotent at any time, including when nothing is playing.
func (e *Engine) Cancel() {
	e.mu.Lock()
	e.gen++
	hadWork := e.speaking || len(e.queue) > 0
	e.queue = nil
	e.onComplete = nil
	e.speaking = false
	e.shape = ShapeNeutral
	e.mu.Unlock()

	e.synth.Stop()
	if hadWork {
		e.metrics.SpeechCancellations.Inc()
	}
	e.notifySpeaking(false)
	e.notifyShape(ShapeNeutral)
}

// ToggleMute flips the mute flag; muting cancels any active speech.
func (e *Engine) ToggleMute() bool {
	e.mu.Lock()
	e.muted = !e.muted
	muted := e.muted
	e.mu.Unlock()

	if muted {
		e.Cancel()
	}
	return muted
}

func (e *Engine) Speaking() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speaking
}

func (e *Engine) Muted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.muted
}

func (e *Engine) Caption() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.caption
}

func (e *Engine) CurrentShape() Shape {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.shape
}

// QueueDepth reports pending units, excluding the one in flight.
func (e *Engine) QueueDepth() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

// Close cancels playback and disposes the synthesizer.
func (e *Engine) Close() error {
	e.Cancel()
	return e.synth.Close()
}

func (e *Engine) popLocked() unit {
	first := e.queue[0]
	e.queue = e.queue[1:]
	return first
}

func (e *Engine) play(gen uint64, u unit) {
	e.metrics.SpeechUnits.WithLabelValues(string(u.lang)).Inc()
	events, err := e.synth.Speak(context.Background(), Utterance{
		Text:    u.text,
		VoiceID: u.voiceID,
		Rate:    1.0,
		Pitch:   1.0,
	})
	if err != nil {
		// The unit was never accepted, so no done signal will ever come;
		// advance here instead of wedging the queue.
		e.log.Error().Err(err).Msg("synthesis submit failed")
		e.metrics.SynthErrors.Inc()
		e.advance(gen)
		return
	}

	done := false
	for evt := range events {
		if e.stale(gen) {
			return
		}
		switch evt.Type {
		case EventWord:
			e.sampleShape()
		case EventError:
			// Reported but non-fatal: the queue advances on the engine's own
			// done signal. An engine that errors and then never signals done
			// stalls the queue; accepted.
			e.log.Warn().Str("code", evt.Code).Str("detail", evt.Detail).Msg("synthesis error on unit")
			e.metrics.SynthErrors.Inc()
		case EventDone:
			done = true
		}
		if done {
			break
		}
	}
	if e.stale(gen) {
		return
	}
	if !done {
		e.log.Warn().Msg("synthesizer closed event stream without done signal")
	}
	e.advance(gen)
}

func (e *Engine) advance(gen uint64) {
	e.mu.Lock()
	if gen != e.gen {
		e.mu.Unlock()
		return
	}
	if len(e.queue) > 0 {
		next := e.popLocked()
		e.mu.Unlock()
		go e.play(gen, next)
		return
	}

	e.speaking = false
	e.shape = ShapeNeutral
	cb := e.onComplete
	e.onComplete = nil
	e.mu.Unlock()

	e.notifySpeaking(false)
	e.notifyShape(ShapeNeutral)
	if cb != nil {
		cb()
	}
}

func (e *Engine) sampleShape() {
	shape := shapePalette[e.sample(len(shapePalette))]
	e.mu.Lock()
	if !e.speaking {
		e.mu.Unlock()
		return
	}
	e.shape = shape
	e.mu.Unlock()
	e.notifyShape(shape)
}

func (e *Engine) stale(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen != e.gen
}

func (e *Engine) notifySpeaking(speaking bool) {
	e.mu.Lock()
	fn := e.onSpeaking
	e.mu.Unlock()
	if fn != nil {
		fn(speaking)
	}
}

func (e *Engine) notifyShape(shape Shape) {
	e.mu.Lock()
	fn := e.onShape
	e.mu.Unlock()
	if fn != nil {
		fn(shape)
	}
}

func (e *Engine) notifyCaption(caption string) {
	e.mu.Lock()
	fn := e.onCaption
	e.mu.Unlock()
	if fn != nil {
		fn(caption)
	}
}
