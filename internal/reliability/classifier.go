package reliability

import (
	"errors"
	"strings"
	"time"
)

// ErrQuotaExceeded marks provider failures caused by rate limiting. Adapters
// wrap upstream errors with it so callers can pick user-facing wording; the
// control flow is the same as for any other provider failure.
var ErrQuotaExceeded = errors.New("provider quota exceeded")

// quotaMarkers are substrings seen in rate-limit error bodies across the
// provider APIs we talk to.
var quotaMarkers = []string{
	"429",
	"quota",
	"rate limit",
	"rate-limit",
	"resource_exhausted",
	"resource exhausted",
	"too many requests",
}

// IsQuotaError reports whether err looks like a provider rate-limit failure.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrQuotaExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range quotaMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// IsRetryableHTTPStatus classifies retryable HTTP status codes.
func IsRetryableHTTPStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

// ExponentialBackoff computes a deterministic capped backoff duration.
func ExponentialBackoff(attempt int, base, cap time.Duration) time.Duration {
	if attempt <= 0 {
		return base
	}
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= cap {
			return cap
		}
	}
	return d
}
