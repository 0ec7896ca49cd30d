package tmdb

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/cinelake/cinelake/pkg/types"
)

// APIError is an HTTP-level failure from the TMDB API. The message carries
// the request path only, never the full URL, so the API key cannot leak into
// logs.
type APIError struct {
	Path       string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.Path, e.StatusCode)
}

// DefaultRetryPolicy mirrors the upstream tolerance the pipeline has always
// run with: three attempts, half-second base delay, doubling.
func DefaultRetryPolicy() types.RetryPolicy {
	return types.RetryPolicy{
		MaxAttempts:       3,
		BackoffSeconds:    0.5,
		BackoffMultiplier: 2.0,
		MaxBackoffSeconds: 30,
	}
}

// Classify maps an error to the failure category driving the retry decision.
// Rate limiting and 5xx gateway churn are transient; other HTTP statuses are
// permanent; deadline expiry is a timeout; anything else (DNS, connection
// resets) is assumed transient.
func Classify(err error) types.FailureCategory {
	if errors.Is(err, context.DeadlineExceeded) {
		return types.FailureTimeout
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 429, 500, 502, 503, 504:
			return types.FailureTransient
		default:
			return types.FailurePermanent
		}
	}
	return types.FailureTransient
}

// IsRetryable reports whether a failure category should be retried.
func IsRetryable(category types.FailureCategory) bool {
	return category != types.FailurePermanent
}

// Backoff returns the jittered wait before the next attempt. The base delay
// grows as backoff * multiplier^(attempt-1), capped by the policy, with up
// to 25% uniform jitter added so synchronized retries spread out.
func Backoff(policy types.RetryPolicy, attempt int) time.Duration {
	base := policy.BackoffSeconds
	if base <= 0 {
		base = 0.5
	}
	multiplier := policy.BackoffMultiplier
	if multiplier <= 0 {
		multiplier = 2.0
	}
	seconds := base * math.Pow(multiplier, float64(attempt-1))
	if maxSeconds := policy.MaxBackoffSeconds; maxSeconds > 0 && seconds > maxSeconds {
		seconds = maxSeconds
	}
	seconds += seconds * 0.25 * rand.Float64()
	return time.Duration(seconds * float64(time.Second))
}
