package notify

import (
	"math"
	"time"
)

// RetryStrategy handles exponential backoff for webhook deliveries.
type RetryStrategy struct {
	maxAttempts  int
	initialDelay time.Duration
	maxDelay     time.Duration
	multiplier   float64
}

// NewRetryStrategy creates a retry strategy with the given attempt ceiling.
func NewRetryStrategy(maxAttempts int) RetryStrategy {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return RetryStrategy{
		maxAttempts:  maxAttempts,
		initialDelay: time.Second,
		maxDelay:     30 * time.Second,
		multiplier:   2.0,
	}
}

// MaxAttempts returns the maximum number of delivery attempts.
func (rs RetryStrategy) MaxAttempts() int {
	return rs.maxAttempts
}

// Delay calculates the backoff before the attempt following the given one.
// Formula: delay = min(initial_delay * (multiplier ^ (attempt-1)), max_delay)
func (rs RetryStrategy) Delay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	delay := float64(rs.initialDelay) * math.Pow(rs.multiplier, float64(attempt-1))
	if delay > float64(rs.maxDelay) {
		delay = float64(rs.maxDelay)
	}
	return time.Duration(delay)
}

// ShouldRetry determines whether another delivery attempt is worthwhile.
func (rs RetryStrategy) ShouldRetry(attempt int, statusCode int, err error) bool {
	if attempt >= rs.maxAttempts {
		return false
	}

	// Network errors are retryable.
	if err != nil {
		return true
	}

	// Server errors and rate limiting are retryable.
	if statusCode >= 500 || statusCode == 429 {
		return true
	}

	// Other client errors are not.
	if statusCode >= 400 {
		return false
	}

	return statusCode >= 300
}
