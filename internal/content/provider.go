package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Provider generates all tutoring content: lessons, code verdicts,
// conversational follow-ups, and interview plans. Implementations must return
// already-validated payloads; see Validate* helpers.
type Provider interface {
	FetchLesson(ctx context.Context, skill, topic string) (Lesson, error)
	EvaluateCode(ctx context.Context, req EvalRequest) (EvalResult, error)
	Chat(ctx context.Context, req ChatRequest) (ChatReply, error)
	PlanInterview(ctx context.Context, req InterviewRequest) (InterviewPlan, error)
}

var (
	// ErrMalformedResponse marks provider payloads missing required fields.
	ErrMalformedResponse = errors.New("malformed provider response")
	// ErrEmptyLesson marks a lesson whose steps were all filtered out by
	// validation. A non-empty fetch collapsing to nothing is a hard failure.
	ErrEmptyLesson = errors.New("lesson has no usable steps")
)

// Config controls provider construction.
type Config struct {
	Mode    string
	HTTPURL string
	Timeout time.Duration
}

func NewProvider(cfg Config) (Provider, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "auto":
		if strings.TrimSpace(cfg.HTTPURL) != "" {
			return NewHTTPProvider(cfg.HTTPURL, cfg.Timeout), nil
		}
		return NewMockProvider(), nil
	case "http":
		if strings.TrimSpace(cfg.HTTPURL) == "" {
			return nil, errors.New("content HTTP url is required for http mode")
		}
		return NewHTTPProvider(cfg.HTTPURL, cfg.Timeout), nil
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported content provider mode %q", cfg.Mode)
	}
}
