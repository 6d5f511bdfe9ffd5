package speech

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestExecSynthesizerPublishVoicesDelivers(t *testing.T) {
	e, err := NewExecSynthesizer("/bin/true", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewExecSynthesizer() error = %v", err)
	}
	defer e.Close()

	e.publishVoices([]Voice{{ID: "v1", Name: "Asha", Locale: "hi-IN", Gender: GenderFemale}})

	got := <-e.VoiceUpdates()
	if len(got) != 1 || got[0].ID != "v1" {
		t.Fatalf("VoiceUpdates() = %+v, want the published catalog", got)
	}
}

func TestExecSynthesizerPublishAfterClose(t *testing.T) {
	e, err := NewExecSynthesizer("/bin/true", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewExecSynthesizer() error = %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// A catalog load that finishes after shutdown must be dropped, not sent
	// on the closed channel.
	e.publishVoices([]Voice{{ID: "v1"}})

	if _, ok := <-e.VoiceUpdates(); ok {
		t.Fatal("received voices after Close")
	}
}
