package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime settings for the tutoring service.
type Config struct {
	BindAddr         string        `envconfig:"APP_BIND_ADDR" default:":8080"`
	ShutdownTimeout  time.Duration `envconfig:"APP_SHUTDOWN_TIMEOUT" default:"15s"`
	MetricsNamespace string        `envconfig:"APP_METRICS_NAMESPACE" default:"guruji"`
	AllowAnyOrigin   bool          `envconfig:"APP_ALLOW_ANY_ORIGIN" default:"false"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty bool   `envconfig:"LOG_PRETTY" default:"false"`

	SessionInactivityTimeout time.Duration `envconfig:"APP_SESSION_INACTIVITY_TIMEOUT" default:"10m"`

	// Content provider selection: auto|http|mock.
	ContentMode    string        `envconfig:"CONTENT_MODE" default:"auto"`
	ContentHTTPURL string        `envconfig:"CONTENT_HTTP_URL" default:""`
	ContentTimeout time.Duration `envconfig:"CONTENT_TIMEOUT" default:"60s"`

	// Speech engine selection: auto|exec|mock.
	SpeechMode string `envconfig:"SPEECH_MODE" default:"auto"`
	// Command reading one JSON utterance on stdin and emitting NDJSON events
	// on stdout (word boundaries, then done). See internal/speech/exec.go.
	SpeechSynthCommand string `envconfig:"SPEECH_SYNTH_COMMAND" default:""`

	// Recognizer selection: auto|exec|mock|off.
	ListenMode string `envconfig:"LISTEN_MODE" default:"auto"`
	// Command emitting NDJSON transcript events on stdout while running.
	ListenRecognizerCommand string `envconfig:"LISTEN_RECOGNIZER_COMMAND" default:""`
	// Spoken phrase recognized as the submit/confirm command.
	ListenSubmitPhrase string `envconfig:"LISTEN_SUBMIT_PHRASE" default:"submit code"`

	// Fixed pause between interview rounds before the next interviewer is
	// introduced.
	InterviewRoundDelay time.Duration `envconfig:"INTERVIEW_ROUND_DELAY" default:"2s"`

	// Empty DATABASE_URL selects the in-memory profile store.
	DatabaseURL string `envconfig:"DATABASE_URL" default:""`
}

// Load reads .env (when present) and the environment, then validates.
func Load() (Config, error) {
	_ = godotenv.Load()
	return LoadFromEnv()
}

// LoadFromEnv skips .env loading; useful for containerized deployments.
func LoadFromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.SessionInactivityTimeout < 5*time.Second {
		return fmt.Errorf("APP_SESSION_INACTIVITY_TIMEOUT must be at least 5s")
	}
	if c.ContentTimeout <= 0 {
		return fmt.Errorf("CONTENT_TIMEOUT must be positive")
	}
	if c.InterviewRoundDelay < 0 {
		return fmt.Errorf("INTERVIEW_ROUND_DELAY must not be negative")
	}
	switch c.ContentMode {
	case "auto", "http", "mock":
	default:
		return fmt.Errorf("invalid CONTENT_MODE %q (expected auto|http|mock)", c.ContentMode)
	}
	switch c.SpeechMode {
	case "auto", "exec", "mock":
	default:
		return fmt.Errorf("invalid SPEECH_MODE %q (expected auto|exec|mock)", c.SpeechMode)
	}
	switch c.ListenMode {
	case "auto", "exec", "mock", "off":
	default:
		return fmt.Errorf("invalid LISTEN_MODE %q (expected auto|exec|mock|off)", c.ListenMode)
	}
	if c.ContentMode == "http" && c.ContentHTTPURL == "" {
		return fmt.Errorf("CONTENT_MODE=http requires CONTENT_HTTP_URL")
	}
	if c.SpeechMode == "exec" && c.SpeechSynthCommand == "" {
		return fmt.Errorf("SPEECH_MODE=exec requires SPEECH_SYNTH_COMMAND")
	}
	if c.ListenMode == "exec" && c.ListenRecognizerCommand == "" {
		return fmt.Errorf("LISTEN_MODE=exec requires LISTEN_RECOGNIZER_COMMAND")
	}
	return nil
}
