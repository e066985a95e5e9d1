package notify

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryStrategyDelay(t *testing.T) {
	rs := NewRetryStrategy(5)

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 0},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{10, 30 * time.Second}, // capped at maxDelay
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rs.Delay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestRetryStrategyShouldRetry(t *testing.T) {
	rs := NewRetryStrategy(3)

	tests := []struct {
		name       string
		attempt    int
		statusCode int
		err        error
		want       bool
	}{
		{"network error", 1, 0, errors.New("connection refused"), true},
		{"server error", 1, 500, nil, true},
		{"bad gateway", 2, 502, nil, true},
		{"rate limited", 1, 429, nil, true},
		{"bad request", 1, 400, nil, false},
		{"not found", 1, 404, nil, false},
		{"redirect", 1, 301, nil, true},
		{"success", 1, 200, nil, false},
		{"attempts exhausted", 3, 500, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rs.ShouldRetry(tt.attempt, tt.statusCode, tt.err))
		})
	}
}

func TestRetryStrategyDefaultsAttempts(t *testing.T) {
	assert.Equal(t, 3, NewRetryStrategy(0).MaxAttempts())
	assert.Equal(t, 3, NewRetryStrategy(-1).MaxAttempts())
	assert.Equal(t, 7, NewRetryStrategy(7).MaxAttempts())
}
