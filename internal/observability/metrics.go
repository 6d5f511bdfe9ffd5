package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	ActiveSessions      prometheus.Gauge
	SessionEvents       *prometheus.CounterVec
	WSMessages          *prometheus.CounterVec
	StateTransitions    *prometheus.CounterVec
	SpeechUnits         *prometheus.CounterVec
	SpeechCancellations prometheus.Counter
	SynthErrors         prometheus.Counter
	ProviderErrors      *prometheus.CounterVec
	LessonEvents        *prometheus.CounterVec
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of active tutoring sessions.",
		}),
		SessionEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_events_total",
			Help:      "Session events by type.",
		}, []string{"event"}),
		WSMessages: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_messages_total",
			Help:      "WebSocket messages by direction and type.",
		}, []string{"direction", "type"}),
		StateTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_transitions_total",
			Help:      "Tutor state machine transitions by target state.",
		}, []string{"state"}),
		SpeechUnits: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "speech_units_total",
			Help:      "Synthesized speech units by language.",
		}, []string{"lang"}),
		SpeechCancellations: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "speech_cancellations_total",
			Help:      "Speech queue cancellations.",
		}),
		SynthErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synth_errors_total",
			Help:      "Per-unit synthesis errors (non-fatal to the queue).",
		}),
		ProviderErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_errors_total",
			Help:      "Content provider errors by operation and code.",
		}, []string{"op", "code"}),
		LessonEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lesson_events_total",
			Help:      "Lesson lifecycle events by type.",
		}, []string{"event"}),
	}
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
