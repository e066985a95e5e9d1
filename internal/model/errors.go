package model

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigurationMissing indicates an account has no credentials
	// configured. The account is skipped, never a hard failure.
	ErrConfigurationMissing = errors.New("account credentials are not configured")

	// ErrRateLimitExhausted indicates a token refresh gave up after the
	// retry ceiling was reached.
	ErrRateLimitExhausted = errors.New("token refresh rate limit retries exhausted")

	// ErrAllAccountsBusy indicates no configured account could take the
	// requested slot.
	ErrAllAccountsBusy = errors.New("all available accounts are busy at the selected time")

	// ErrMeetingNotFound indicates the provider does not know the meeting id.
	ErrMeetingNotFound = errors.New("meeting not found")
)

// ProviderError represents a non-2xx response from the remote provider.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("provider returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Message)
}

// ValidationError represents a malformed booking request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}
