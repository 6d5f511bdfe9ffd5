package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/guruji-labs/guruji/internal/config"
	"github.com/guruji-labs/guruji/internal/content"
	"github.com/guruji-labs/guruji/internal/listen"
	"github.com/guruji-labs/guruji/internal/observability"
	"github.com/guruji-labs/guruji/internal/profile"
	"github.com/guruji-labs/guruji/internal/protocol"
	"github.com/guruji-labs/guruji/internal/session"
	"github.com/guruji-labs/guruji/internal/speech"
	"github.com/guruji-labs/guruji/internal/tutor"
)

type Server struct {
	cfg      config.Config
	sessions *session.Manager
	store    profile.Store
	provider content.Provider
	metrics  *observability.Metrics
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

func New(cfg config.Config, sessions *session.Manager, store profile.Store, provider content.Provider, metrics *observability.Metrics, log zerolog.Logger) *Server {
	return &Server{
		cfg:      cfg,
		sessions: sessions,
		store:    store,
		provider: provider,
		metrics:  metrics,
		log:      log.With().Str("component", "httpapi").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Default: only allow browser websocket connections from the
				// same origin, so other websites cannot drive a learner's
				// session if the service is ever exposed beyond localhost.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Get("/v1/profiles", s.handleListProfiles)
	r.Post("/v1/profiles", s.handleCreateProfile)
	r.Post("/v1/profiles/{id}/select", s.handleSelectProfile)

	r.Post("/v1/tutor/session", s.handleCreateSession)
	r.Post("/v1/tutor/session/{id}/end", s.handleEndSession)
	r.Get("/v1/tutor/session/ws", s.handleSessionWS)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.Load(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "store_unavailable", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req session.CreateRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.ProfileID) == "" {
		snap, err := s.store.Load(r.Context())
		if err != nil {
			respondError(w, http.StatusInternalServerError, "store_error", err.Error())
			return
		}
		req.ProfileID = snap.ActiveID
	}

	sess := s.sessions.Create(req.ProfileID)
	s.metrics.ActiveSessions.Set(float64(s.sessions.ActiveCount()))
	s.metrics.SessionEvents.WithLabelValues("created").Inc()

	respondJSON(w, http.StatusCreated, session.CreateResponse{
		SessionID:       sess.ID,
		ProfileID:       sess.ProfileID,
		Status:          sess.Status,
		StartedAt:       sess.StartedAt,
		LastActivityAt:  sess.LastActivityAt,
		InactivityTTLMS: s.cfg.SessionInactivityTimeout.Milliseconds(),
	})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if strings.TrimSpace(id) == "" {
		respondError(w, http.StatusBadRequest, "invalid_session_id", "missing session id")
		return
	}

	sess, err := s.sessions.End(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}
	s.metrics.ActiveSessions.Set(float64(s.sessions.ActiveCount()))
	s.metrics.SessionEvents.WithLabelValues("ended").Inc()
	respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleSessionWS(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session_id", "query parameter session_id is required")
		return
	}

	if _, err := s.sessions.Get(sessionID); err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}

	synth, err := speech.NewSynthesizer(s.cfg.SpeechMode, s.cfg.SpeechSynthCommand, s.log)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "speech_unavailable", err.Error())
		return
	}
	rec, err := listen.NewRecognizer(s.cfg.ListenMode, s.cfg.ListenRecognizerCommand, s.log)
	if err != nil {
		_ = synth.Close()
		respondError(w, http.StatusInternalServerError, "listen_unavailable", err.Error())
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		_ = synth.Close()
		_ = rec.Close()
		return
	}
	defer conn.Close()

	s.metrics.SessionEvents.WithLabelValues("ws_connected").Inc()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sink := newWSSink(ctx, s.metrics)

	spk := speech.NewEngine(speech.Config{
		Synth:   synth,
		Logger:  s.log,
		Metrics: s.metrics,
	})
	lst := listen.NewEngine(rec, s.cfg.ListenSubmitPhrase, s.log)

	orch := tutor.NewOrchestrator(tutor.Config{
		Provider:   s.provider,
		Speech:     spk,
		Listen:     lst,
		Store:      s.store,
		Sink:       sink,
		Logger:     s.log,
		Metrics:    s.metrics,
		RoundDelay: s.cfg.InterviewRoundDelay,
	})

	spk.SetOnSpeaking(func(on bool) {
		sink.speaking(on)
		orch.SpeakingChanged(on)
	})
	spk.SetOnShape(sink.viseme)
	spk.SetOnCaption(sink.caption)
	lst.SetOnListening(sink.listening)
	lst.SetOnInterim(sink.interim)
	lst.SetOnFinal(orch.HandleFinalTranscript)
	lst.SetOnSubmit(orch.HandleSubmitCommand)

	// State snapshot so a reconnecting client can render immediately.
	sink.StateChanged(orch.State())
	sink.muted(false)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-sink.out:
				_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := conn.WriteJSON(msg); err != nil {
					cancel()
					return
				}
				if t, ok := messageTypeOf(msg); ok {
					s.metrics.WSMessages.WithLabelValues("outbound", string(t)).Inc()
				}
			}
		}
	}()

	conn.SetReadLimit(1 << 20)
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}
		parsed, err := protocol.ParseClientMessage(data)
		if err != nil {
			sink.ErrorEvent("invalid_client_message", err.Error())
			continue
		}
		if t, ok := messageTypeOf(parsed); ok {
			s.metrics.WSMessages.WithLabelValues("inbound", string(t)).Inc()
		}
		_ = s.sessions.Touch(sessionID)
		s.dispatch(orch, sink, parsed)
	}

	cancel()
	orch.Reset()
	_ = lst.Close()
	_ = spk.Close()
	<-writerDone
	s.metrics.SessionEvents.WithLabelValues("ws_disconnected").Inc()
}

// dispatch routes one parsed client intent to the orchestrator. Every
// orchestrator entry point returns quickly; provider work continues on its
// own goroutine, so the read loop never stalls behind a slow model.
func (s *Server) dispatch(orch *tutor.Orchestrator, sink *wsSink, parsed any) {
	switch m := parsed.(type) {
	case protocol.SelectTopic:
		orch.SelectTopic(m.Skill, m.Topic)
	case protocol.Continue:
		orch.Continue()
	case protocol.AnswerChoice:
		orch.AnswerChoice(m.Index)
	case protocol.SubmitCode:
		orch.SubmitCode(m.Code)
	case protocol.ChatText:
		orch.ChatText(m.Text)
	case protocol.RequestHint:
		orch.RequestHint()
	case protocol.RevealSolution:
		orch.RevealSolution()
	case protocol.StartInterview:
		orch.StartInterview(m.Company, m.Role, m.Experience)
	case protocol.Reset:
		orch.Reset()
	case protocol.ToggleMute:
		sink.muted(orch.ToggleMute())
	case protocol.RetryMessage:
		orch.RetryLastMessage()
	case protocol.TranscriptFinal:
		orch.HandleFinalTranscript(m.Text)
	default:
		s.log.Warn().Msg("unhandled client message")
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}

func messageTypeOf(v any) (protocol.MessageType, bool) {
	switch m := v.(type) {
	case protocol.SelectTopic:
		return m.Type, true
	case protocol.Continue:
		return m.Type, true
	case protocol.AnswerChoice:
		return m.Type, true
	case protocol.SubmitCode:
		return m.Type, true
	case protocol.ChatText:
		return m.Type, true
	case protocol.RequestHint:
		return m.Type, true
	case protocol.RevealSolution:
		return m.Type, true
	case protocol.StartInterview:
		return m.Type, true
	case protocol.Reset:
		return m.Type, true
	case protocol.ToggleMute:
		return m.Type, true
	case protocol.RetryMessage:
		return m.Type, true
	case protocol.TranscriptFinal:
		return m.Type, true
	case protocol.StateChanged:
		return m.Type, true
	case protocol.ChatAppended:
		return m.Type, true
	case protocol.Caption:
		return m.Type, true
	case protocol.Viseme:
		return m.Type, true
	case protocol.Speaking:
		return m.Type, true
	case protocol.Listening:
		return m.Type, true
	case protocol.TranscriptInterim:
		return m.Type, true
	case protocol.CodeUpdated:
		return m.Type, true
	case protocol.DiagramUpdated:
		return m.Type, true
	case protocol.ProgressUpdated:
		return m.Type, true
	case protocol.RoundTransition:
		return m.Type, true
	case protocol.Muted:
		return m.Type, true
	case protocol.ErrorEvent:
		return m.Type, true
	default:
		return "", false
	}
}
