package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/guruji-labs/guruji/internal/reliability"
)

// HTTPProvider forwards requests to a guruji-compatible content endpoint.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

func NewHTTPProvider(baseURL string, timeout time.Duration) *HTTPProvider {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPProvider{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (p *HTTPProvider) FetchLesson(ctx context.Context, skill, topic string) (Lesson, error) {
	var lesson Lesson
	req := map[string]string{"skill": skill, "topic": topic}
	if err := p.post(ctx, "/v1/lesson", req, &lesson); err != nil {
		return Lesson{}, err
	}
	return ValidateLesson(lesson)
}

func (p *HTTPProvider) EvaluateCode(ctx context.Context, req EvalRequest) (EvalResult, error) {
	var res EvalResult
	if err := p.post(ctx, "/v1/evaluate", req, &res); err != nil {
		return EvalResult{}, err
	}
	return ValidateEval(res)
}

func (p *HTTPProvider) Chat(ctx context.Context, req ChatRequest) (ChatReply, error) {
	var reply ChatReply
	if err := p.post(ctx, "/v1/chat", req, &reply); err != nil {
		return ChatReply{}, err
	}
	if strings.TrimSpace(reply.Text) == "" {
		return ChatReply{}, fmt.Errorf("chat reply has no text: %w", ErrMalformedResponse)
	}
	return reply, nil
}

func (p *HTTPProvider) PlanInterview(ctx context.Context, req InterviewRequest) (InterviewPlan, error) {
	var plan InterviewPlan
	if err := p.post(ctx, "/v1/interview", req, &plan); err != nil {
		return InterviewPlan{}, err
	}
	return ValidateInterviewPlan(plan)
}

const (
	postRetries   = 2
	postRetryBase = 100 * time.Millisecond
	postRetryCap  = time.Second
)

func (p *HTTPProvider) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= postRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(reliability.ExponentialBackoff(attempt-1, postRetryBase, postRetryCap)):
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		res, err := p.client.Do(httpReq)
		if err != nil {
			return fmt.Errorf("send request: %w", err)
		}

		if res.StatusCode >= 200 && res.StatusCode < 300 {
			err := json.NewDecoder(res.Body).Decode(out)
			res.Body.Close()
			if err != nil {
				return fmt.Errorf("decode response: %w: %v", ErrMalformedResponse, err)
			}
			return nil
		}

		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		res.Body.Close()
		lastErr = fmt.Errorf("content http status %d: %s", res.StatusCode, string(body))
		if !reliability.IsRetryableHTTPStatus(res.StatusCode) {
			return lastErr
		}
	}
	return lastErr
}
