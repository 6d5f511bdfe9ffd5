package httpapi

import (
	"context"

	"github.com/guruji-labs/guruji/internal/observability"
	"github.com/guruji-labs/guruji/internal/profile"
	"github.com/guruji-labs/guruji/internal/protocol"
	"github.com/guruji-labs/guruji/internal/speech"
	"github.com/guruji-labs/guruji/internal/tutor"
)

// wsSink translates orchestrator and engine callbacks into protocol events
// on the connection's outbound queue. Enqueues never block: a saturated
// queue drops the event so speech and state machine callbacks cannot stall
// behind a slow websocket.
type wsSink struct {
	ctx     context.Context
	out     chan any
	metrics *observability.Metrics
}

func newWSSink(ctx context.Context, metrics *observability.Metrics) *wsSink {
	return &wsSink{
		ctx:     ctx,
		out:     make(chan any, 256),
		metrics: metrics,
	}
}

func (s *wsSink) enqueue(msg any) {
	select {
	case <-s.ctx.Done():
	case s.out <- msg:
	default:
		s.metrics.SessionEvents.WithLabelValues("outbound_dropped").Inc()
	}
}

func (s *wsSink) StateChanged(state tutor.State) {
	s.enqueue(protocol.StateChanged{Type: protocol.TypeStateChanged, State: string(state)})
}

func (s *wsSink) ChatAppended(msg tutor.ChatMessage) {
	s.enqueue(protocol.ChatAppended{Type: protocol.TypeChatAppended, Message: msg})
}

func (s *wsSink) CodeUpdated(code string) {
	s.enqueue(protocol.CodeUpdated{Type: protocol.TypeCodeUpdated, Code: code})
}

func (s *wsSink) DiagramUpdated(diagram string) {
	s.enqueue(protocol.DiagramUpdated{Type: protocol.TypeDiagramUpdated, Diagram: diagram})
}

func (s *wsSink) ProgressUpdated(p profile.Profile) {
	s.enqueue(protocol.ProgressUpdated{Type: protocol.TypeProgressUpdated, Profile: p})
}

func (s *wsSink) RoundTransition(index int, title string) {
	s.enqueue(protocol.RoundTransition{Type: protocol.TypeRoundTransition, Index: index, Title: title})
}

func (s *wsSink) ErrorEvent(code, message string) {
	s.enqueue(protocol.ErrorEvent{Type: protocol.TypeErrorEvent, Code: code, Message: message})
}

func (s *wsSink) speaking(on bool) {
	s.enqueue(protocol.Speaking{Type: protocol.TypeSpeaking, Speaking: on})
}

func (s *wsSink) viseme(shape speech.Shape) {
	s.enqueue(protocol.Viseme{Type: protocol.TypeViseme, Shape: string(shape)})
}

func (s *wsSink) caption(text string) {
	s.enqueue(protocol.Caption{Type: protocol.TypeCaption, Text: text})
}

func (s *wsSink) listening(on bool) {
	s.enqueue(protocol.Listening{Type: protocol.TypeListening, Listening: on})
}

func (s *wsSink) interim(text string) {
	s.enqueue(protocol.TranscriptInterim{Type: protocol.TypeTranscriptInterim, Text: text})
}

func (s *wsSink) muted(on bool) {
	s.enqueue(protocol.Muted{Type: protocol.TypeMuted, Muted: on})
}
