package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if cfg.BindAddr != ":8080" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":8080")
	}
	if cfg.ContentMode != "auto" {
		t.Fatalf("ContentMode = %q, want %q", cfg.ContentMode, "auto")
	}
	if cfg.SessionInactivityTimeout != 10*time.Minute {
		t.Fatalf("SessionInactivityTimeout = %v, want 10m", cfg.SessionInactivityTimeout)
	}
	if cfg.ListenSubmitPhrase != "submit code" {
		t.Fatalf("ListenSubmitPhrase = %q, want %q", cfg.ListenSubmitPhrase, "submit code")
	}
}

func TestLoadRejectsUnknownContentMode(t *testing.T) {
	t.Setenv("CONTENT_MODE", "grpc")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatalf("LoadFromEnv() accepted CONTENT_MODE=grpc, want error")
	}
}

func TestLoadRequiresURLForHTTPMode(t *testing.T) {
	t.Setenv("CONTENT_MODE", "http")
	t.Setenv("CONTENT_HTTP_URL", "")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatalf("LoadFromEnv() accepted CONTENT_MODE=http without CONTENT_HTTP_URL")
	}
}

func TestLoadRejectsShortInactivityTimeout(t *testing.T) {
	t.Setenv("APP_SESSION_INACTIVITY_TIMEOUT", "1s")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatalf("LoadFromEnv() accepted 1s inactivity timeout, want error")
	}
}
