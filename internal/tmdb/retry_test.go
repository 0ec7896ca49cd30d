package tmdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cinelake/cinelake/pkg/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want types.FailureCategory
	}{
		{"rate limited", &APIError{Path: "/movie/popular", StatusCode: 429}, types.FailureTransient},
		{"bad gateway", &APIError{Path: "/movie/1", StatusCode: 502}, types.FailureTransient},
		{"service unavailable", &APIError{Path: "/movie/1", StatusCode: 503}, types.FailureTransient},
		{"not found", &APIError{Path: "/movie/1", StatusCode: 404}, types.FailurePermanent},
		{"unauthorized", &APIError{Path: "/movie/popular", StatusCode: 401}, types.FailurePermanent},
		{"deadline", context.DeadlineExceeded, types.FailureTimeout},
		{"transport", errors.New("connection reset"), types.FailureTransient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(types.FailureTransient))
	assert.True(t, IsRetryable(types.FailureTimeout))
	assert.False(t, IsRetryable(types.FailurePermanent))
}

func TestBackoff_GrowsAndStaysCapped(t *testing.T) {
	policy := types.RetryPolicy{MaxAttempts: 5, BackoffSeconds: 1, BackoffMultiplier: 2, MaxBackoffSeconds: 3}

	// Jitter adds at most 25%, so each attempt has a known window.
	first := Backoff(policy, 1)
	assert.GreaterOrEqual(t, first, 1*time.Second)
	assert.LessOrEqual(t, first, 1250*time.Millisecond)

	second := Backoff(policy, 2)
	assert.GreaterOrEqual(t, second, 2*time.Second)
	assert.LessOrEqual(t, second, 2500*time.Millisecond)

	capped := Backoff(policy, 10)
	assert.GreaterOrEqual(t, capped, 3*time.Second)
	assert.LessOrEqual(t, capped, 3750*time.Millisecond)
}

func TestBackoff_DefaultsWhenUnset(t *testing.T) {
	d := Backoff(types.RetryPolicy{MaxAttempts: 3}, 1)
	assert.Greater(t, d, time.Duration(0))
	assert.Less(t, d, 2*time.Second)
}

func TestAPIError_MessageCarriesPathOnly(t *testing.T) {
	err := &APIError{Path: "/movie/603", StatusCode: 500}
	assert.Equal(t, "GET /movie/603: unexpected status 500", err.Error())
}
