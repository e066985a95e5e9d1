package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dfagundes/huddle/internal/model"
)

// Meetings handles operations on a single existing meeting by id. These do
// not need conflict resolution and are routed through the default account's
// token, matching the provider's account-routing policy for id lookups.
type Meetings struct {
	registry      *model.Registry
	tokens        TokenSource
	provider      ProviderClient
	notifier      Notifier
	notifyTimeout time.Duration
}

// NewMeetings creates a new single-meeting service.
func NewMeetings(
	registry *model.Registry,
	tokens TokenSource,
	provider ProviderClient,
	notifier Notifier,
	notifyTimeout time.Duration,
) *Meetings {
	return &Meetings{
		registry:      registry,
		tokens:        tokens,
		provider:      provider,
		notifier:      notifier,
		notifyTimeout: notifyTimeout,
	}
}

// Get retrieves a meeting by id via the default account.
func (s *Meetings) Get(ctx context.Context, meetingID string) (*model.Meeting, error) {
	token, accountKey, err := s.defaultToken(ctx)
	if err != nil {
		return nil, err
	}

	meeting, err := s.provider.GetMeeting(ctx, token, meetingID)
	if err != nil {
		return nil, err
	}

	meeting.Account = accountKey
	return meeting, nil
}

// Update applies a partial update, then re-fetches the meeting and hands it
// to the notifier as an "updated" event.
func (s *Meetings) Update(ctx context.Context, meetingID string, update *model.MeetingUpdate) error {
	token, accountKey, err := s.defaultToken(ctx)
	if err != nil {
		return err
	}

	if err := s.provider.UpdateMeeting(ctx, token, meetingID, update); err != nil {
		return err
	}

	// Re-fetch so the notification carries the updated record. A failed
	// re-fetch only costs the notification, never the update itself.
	meeting, err := s.provider.GetMeeting(ctx, token, meetingID)
	if err != nil {
		slog.Warn("Failed to re-fetch updated meeting for notification",
			"meeting_id", meetingID,
			"error", err,
		)
		return nil
	}

	meeting.Account = accountKey
	dispatchNotification(s.notifier, s.notifyTimeout, meeting, true)
	return nil
}

// Delete removes a meeting by id via the default account.
func (s *Meetings) Delete(ctx context.Context, meetingID string) error {
	token, _, err := s.defaultToken(ctx)
	if err != nil {
		return err
	}
	return s.provider.DeleteMeeting(ctx, token, meetingID)
}

// defaultToken returns a token for the first account in the registry.
func (s *Meetings) defaultToken(ctx context.Context) (string, string, error) {
	account := s.registry.Default()
	if account.Key == "" {
		return "", "", fmt.Errorf("%w: no accounts configured", model.ErrConfigurationMissing)
	}

	token, err := s.tokens.Token(ctx, account.Key)
	if err != nil {
		return "", "", err
	}
	return token, account.Key, nil
}
