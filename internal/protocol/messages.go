package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/guruji-labs/guruji/internal/profile"
	"github.com/guruji-labs/guruji/internal/tutor"
)

// MessageType identifies websocket payload variants.
type MessageType string

// Client intents.
const (
	TypeSelectTopic     MessageType = "select_topic"
	TypeContinue        MessageType = "continue"
	TypeAnswerChoice    MessageType = "answer_choice"
	TypeSubmitCode      MessageType = "submit_code"
	TypeChatText        MessageType = "chat_text"
	TypeRequestHint     MessageType = "request_hint"
	TypeRevealSolution  MessageType = "reveal_solution"
	TypeStartInterview  MessageType = "start_interview"
	TypeReset           MessageType = "reset"
	TypeToggleMute      MessageType = "toggle_mute"
	TypeRetryMessage    MessageType = "retry_message"
	TypeTranscriptFinal MessageType = "transcript_final"
)

// Server events.
const (
	TypeStateChanged      MessageType = "state_changed"
	TypeChatAppended      MessageType = "chat_appended"
	TypeCaption           MessageType = "caption"
	TypeViseme            MessageType = "viseme"
	TypeSpeaking          MessageType = "speaking"
	TypeListening         MessageType = "listening"
	TypeTranscriptInterim MessageType = "transcript_interim"
	TypeCodeUpdated       MessageType = "code_updated"
	TypeDiagramUpdated    MessageType = "diagram_updated"
	TypeProgressUpdated   MessageType = "progress_updated"
	TypeRoundTransition   MessageType = "round_transition"
	TypeMuted             MessageType = "muted"
	TypeErrorEvent        MessageType = "error_event"
)

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

type SelectTopic struct {
	Type  MessageType `json:"type"`
	Skill string      `json:"skill"`
	Topic string      `json:"topic"`
}

type Continue struct {
	Type MessageType `json:"type"`
}

type AnswerChoice struct {
	Type  MessageType `json:"type"`
	Index int         `json:"index"`
}

type SubmitCode struct {
	Type MessageType `json:"type"`
	Code string      `json:"code"`
}

type ChatText struct {
	Type MessageType `json:"type"`
	Text string      `json:"text"`
}

type RequestHint struct {
	Type MessageType `json:"type"`
}

type RevealSolution struct {
	Type MessageType `json:"type"`
}

type StartInterview struct {
	Type       MessageType `json:"type"`
	Company    string      `json:"company"`
	Role       string      `json:"role"`
	Experience string      `json:"experience"`
}

type Reset struct {
	Type MessageType `json:"type"`
}

type ToggleMute struct {
	Type MessageType `json:"type"`
}

type RetryMessage struct {
	Type MessageType `json:"type"`
}

// TranscriptFinal is the typed fallback for environments without speech
// recognition: the client submits what it heard or what was typed into the
// transcript box.
type TranscriptFinal struct {
	Type MessageType `json:"type"`
	Text string      `json:"text"`
}

type StateChanged struct {
	Type  MessageType `json:"type"`
	State string      `json:"state"`
}

type ChatAppended struct {
	Type    MessageType       `json:"type"`
	Message tutor.ChatMessage `json:"message"`
}

type ProgressUpdated struct {
	Type    MessageType     `json:"type"`
	Profile profile.Profile `json:"profile"`
}

type Caption struct {
	Type MessageType `json:"type"`
	Text string      `json:"text"`
}

type Viseme struct {
	Type  MessageType `json:"type"`
	Shape string      `json:"shape"`
}

type Speaking struct {
	Type     MessageType `json:"type"`
	Speaking bool        `json:"speaking"`
}

type Listening struct {
	Type      MessageType `json:"type"`
	Listening bool        `json:"listening"`
}

type TranscriptInterim struct {
	Type MessageType `json:"type"`
	Text string      `json:"text"`
}

type CodeUpdated struct {
	Type MessageType `json:"type"`
	Code string      `json:"code"`
}

type DiagramUpdated struct {
	Type    MessageType `json:"type"`
	Diagram string      `json:"diagram"`
}

type RoundTransition struct {
	Type  MessageType `json:"type"`
	Index int         `json:"index"`
	Title string      `json:"title"`
}

type Muted struct {
	Type  MessageType `json:"type"`
	Muted bool        `json:"muted"`
}

type ErrorEvent struct {
	Type    MessageType `json:"type"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
}

// ParseClientMessage decodes and validates one inbound intent.
func ParseClientMessage(raw []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeSelectTopic:
		var msg SelectTopic
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.Skill == "" || msg.Topic == "" {
			return nil, errors.New("invalid select_topic")
		}
		return msg, nil
	case TypeContinue:
		return Continue{Type: env.Type}, nil
	case TypeAnswerChoice:
		var msg AnswerChoice
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.Index < 0 {
			return nil, errors.New("invalid answer_choice")
		}
		return msg, nil
	case TypeSubmitCode:
		var msg SubmitCode
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		return msg, nil
	case TypeChatText:
		var msg ChatText
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.Text == "" {
			return nil, errors.New("invalid chat_text")
		}
		return msg, nil
	case TypeRequestHint:
		return RequestHint{Type: env.Type}, nil
	case TypeRevealSolution:
		return RevealSolution{Type: env.Type}, nil
	case TypeStartInterview:
		var msg StartInterview
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.Company == "" || msg.Role == "" {
			return nil, errors.New("invalid start_interview")
		}
		return msg, nil
	case TypeReset:
		return Reset{Type: env.Type}, nil
	case TypeToggleMute:
		return ToggleMute{Type: env.Type}, nil
	case TypeRetryMessage:
		return RetryMessage{Type: env.Type}, nil
	case TypeTranscriptFinal:
		var msg TranscriptFinal
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.Text == "" {
			return nil, errors.New("invalid transcript_final")
		}
		return msg, nil
	default:
		return nil, ErrUnsupportedType
	}
}
