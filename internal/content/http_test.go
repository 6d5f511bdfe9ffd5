package content

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/guruji-labs/guruji/internal/reliability"
)

func TestHTTPProviderFetchLesson(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/lesson" {
			t.Errorf("path = %q, want /v1/lesson", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"title": "js: loops",
			"steps": [
				{"kind": "EXPLANATION", "content": "Loops repeat work."},
				{"kind": "MULTIPLE_CHOICE", "question": "Pick", "choices": ["A", "B"], "correct_choice": 7}
			]
		}`))
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, 5*time.Second)
	lesson, err := p.FetchLesson(context.Background(), "js", "loops")
	if err != nil {
		t.Fatalf("FetchLesson() error = %v", err)
	}
	if len(lesson.Steps) != 1 {
		t.Fatalf("len(Steps) = %d, want 1 (malformed choice filtered)", len(lesson.Steps))
	}
	if lesson.Steps[0].Kind != StepExplanation {
		t.Fatalf("Steps[0].Kind = %q, want EXPLANATION", lesson.Steps[0].Kind)
	}
}

func TestHTTPProviderSurfacesQuotaStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, 5*time.Second)
	_, err := p.Chat(context.Background(), ChatRequest{Message: "hi"})
	if err == nil {
		t.Fatalf("Chat() error = nil, want quota failure")
	}
	if !reliability.IsQuotaError(err) {
		t.Fatalf("IsQuotaError(%v) = false, want true", err)
	}
}

func TestHTTPProviderRejectsEmptyChatReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text": ""}`))
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, 5*time.Second)
	if _, err := p.Chat(context.Background(), ChatRequest{Message: "hi"}); err == nil {
		t.Fatalf("Chat() accepted empty reply text, want error")
	}
}

func TestHTTPProviderRetriesRetryableStatus(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&attempts, 1) <= 2 {
			http.Error(w, "upstream busy", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text": "theek hai"}`))
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, 5*time.Second)
	reply, err := p.Chat(context.Background(), ChatRequest{Message: "hi"})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if reply.Text != "theek hai" {
		t.Fatalf("reply.Text = %q, want %q", reply.Text, "theek hai")
	}
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Fatalf("attempts = %d, want 3", got)
	}
}

func TestHTTPProviderDoesNotRetryClientError(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&attempts, 1)
		http.Error(w, "bad payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, 5*time.Second)
	if _, err := p.Chat(context.Background(), ChatRequest{Message: "hi"}); err == nil {
		t.Fatalf("Chat() error = nil, want status failure")
	}
	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Fatalf("attempts = %d, want 1 (400 is not retryable)", got)
	}
}
