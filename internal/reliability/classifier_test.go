package reliability

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestIsQuotaError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sentinel", fmt.Errorf("chat: %w", ErrQuotaExceeded), true},
		{"status 429", errors.New("content http status 429: slow down"), true},
		{"resource exhausted", errors.New("rpc error: RESOURCE_EXHAUSTED"), true},
		{"rate limit text", errors.New("Rate limit reached for model"), true},
		{"generic failure", errors.New("connection refused"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsQuotaError(tc.err); got != tc.want {
				t.Fatalf("IsQuotaError(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestIsRetryableHTTPStatus(t *testing.T) {
	for _, code := range []int{429, 500, 502, 503, 504} {
		if !IsRetryableHTTPStatus(code) {
			t.Fatalf("IsRetryableHTTPStatus(%d) = false, want true", code)
		}
	}
	for _, code := range []int{200, 400, 401, 404} {
		if IsRetryableHTTPStatus(code) {
			t.Fatalf("IsRetryableHTTPStatus(%d) = true, want false", code)
		}
	}
}

func TestExponentialBackoffCaps(t *testing.T) {
	base := 100 * time.Millisecond
	cap := 2 * time.Second
	if got := ExponentialBackoff(0, base, cap); got != base {
		t.Fatalf("attempt 0 = %v, want %v", got, base)
	}
	if got := ExponentialBackoff(10, base, cap); got != cap {
		t.Fatalf("attempt 10 = %v, want %v", got, cap)
	}
}
