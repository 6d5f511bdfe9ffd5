package protocol

import (
	"errors"
	"testing"
)

func TestParseSelectTopic(t *testing.T) {
	raw := []byte(`{"type":"select_topic","skill":"python","topic":"Loops"}`)
	msg, err := ParseClientMessage(raw)
	if err != nil {
		t.Fatalf("ParseClientMessage() error = %v", err)
	}
	st, ok := msg.(SelectTopic)
	if !ok {
		t.Fatalf("message type = %T, want SelectTopic", msg)
	}
	if st.Skill != "python" || st.Topic != "Loops" {
		t.Fatalf("parsed = %+v", st)
	}
}

func TestParseSelectTopicRequiresFields(t *testing.T) {
	if _, err := ParseClientMessage([]byte(`{"type":"select_topic","skill":"python"}`)); err == nil {
		t.Fatal("expected error for missing topic")
	}
}

func TestParseAnswerChoice(t *testing.T) {
	msg, err := ParseClientMessage([]byte(`{"type":"answer_choice","index":2}`))
	if err != nil {
		t.Fatalf("ParseClientMessage() error = %v", err)
	}
	if got := msg.(AnswerChoice).Index; got != 2 {
		t.Fatalf("Index = %d, want 2", got)
	}
}

func TestParseAnswerChoiceRejectsNegative(t *testing.T) {
	if _, err := ParseClientMessage([]byte(`{"type":"answer_choice","index":-1}`)); err == nil {
		t.Fatal("expected error for negative index")
	}
}

func TestParseBareIntents(t *testing.T) {
	cases := map[string]any{
		`{"type":"continue"}`:        Continue{Type: TypeContinue},
		`{"type":"reset"}`:           Reset{Type: TypeReset},
		`{"type":"toggle_mute"}`:     ToggleMute{Type: TypeToggleMute},
		`{"type":"request_hint"}`:    RequestHint{Type: TypeRequestHint},
		`{"type":"reveal_solution"}`: RevealSolution{Type: TypeRevealSolution},
		`{"type":"retry_message"}`:   RetryMessage{Type: TypeRetryMessage},
	}
	for raw, want := range cases {
		msg, err := ParseClientMessage([]byte(raw))
		if err != nil {
			t.Fatalf("ParseClientMessage(%s) error = %v", raw, err)
		}
		if msg != want {
			t.Fatalf("ParseClientMessage(%s) = %#v, want %#v", raw, msg, want)
		}
	}
}

func TestParseUnsupportedType(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"type":"launch_rocket"}`))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("error = %v, want ErrUnsupportedType", err)
	}
}

func TestParseEmptyChatTextRejected(t *testing.T) {
	if _, err := ParseClientMessage([]byte(`{"type":"chat_text","text":""}`)); err == nil {
		t.Fatal("expected error for empty chat text")
	}
}

func TestParseTranscriptFinal(t *testing.T) {
	msg, err := ParseClientMessage([]byte(`{"type":"transcript_final","text":"B dog"}`))
	if err != nil {
		t.Fatalf("ParseClientMessage() error = %v", err)
	}
	if got := msg.(TranscriptFinal).Text; got != "B dog" {
		t.Fatalf("Text = %q, want %q", got, "B dog")
	}
}
