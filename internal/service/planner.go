package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/dfagundes/huddle/internal/metrics"
	"github.com/dfagundes/huddle/internal/model"
)

// Planner books new meetings by walking the accounts in registry priority
// order and picking the first one whose calendar has no overlap with the
// requested slot.
type Planner struct {
	registry      *model.Registry
	tokens        TokenSource
	provider      ProviderClient
	notifier      Notifier
	notifyTimeout time.Duration
}

// NewPlanner creates a new conflict-aware booking planner.
func NewPlanner(
	registry *model.Registry,
	tokens TokenSource,
	provider ProviderClient,
	notifier Notifier,
	notifyTimeout time.Duration,
) *Planner {
	return &Planner{
		registry:      registry,
		tokens:        tokens,
		provider:      provider,
		notifier:      notifier,
		notifyTimeout: notifyTimeout,
	}
}

// Book validates the request, then tries each account in priority order:
// an account whose token is unavailable or whose listing fails is skipped,
// an account with an overlapping meeting is rejected, and the first free
// account takes the booking. When every account is exhausted it returns
// ErrAllAccountsBusy.
//
// Known limitation: the conflict check and the create call are not atomic
// with respect to other concurrent callers. Two requests can both pass the
// check on the same account before either books; the provider has no
// compare-and-swap booking primitive. A create rejected by such a race is
// handled like any other create failure and falls through to the next
// account.
func (p *Planner) Book(ctx context.Context, req *model.BookingRequest) (*model.Meeting, error) {
	if err := req.Validate(); err != nil {
		metrics.Bookings.WithLabelValues("invalid").Inc()
		return nil, err
	}

	for _, account := range p.registry.Accounts() {
		token, err := p.tokens.Token(ctx, account.Key)
		if err != nil {
			slog.Warn("Token unavailable, skipping account",
				"account", account.Key,
				"error", err,
			)
			continue
		}

		existing, err := p.provider.ListMeetings(ctx, token)
		if err != nil {
			// Could not verify the calendar, so do not risk a
			// double-booking on this account.
			slog.Warn("Could not fetch meetings, skipping account",
				"account", account.Key,
				"error", err,
			)
			continue
		}

		if conflicting, ok := findConflict(req, existing); ok {
			metrics.BookingConflicts.WithLabelValues(account.Key).Inc()
			slog.Info("Account has a scheduling conflict, trying next",
				"account", account.Key,
				"conflicting_meeting_id", conflicting.ID,
			)
			continue
		}

		meeting, err := p.provider.CreateMeeting(ctx, token, req)
		if err != nil {
			slog.Error("Failed to create meeting despite no conflict",
				"account", account.Key,
				"error", err,
			)
			continue
		}

		meeting.Account = account.Key
		metrics.Bookings.WithLabelValues("booked").Inc()
		slog.Info("Meeting booked",
			"account", account.Key,
			"meeting_id", meeting.ID,
			"start_time", meeting.StartTime,
		)

		dispatchNotification(p.notifier, p.notifyTimeout, meeting, false)
		return meeting, nil
	}

	metrics.Bookings.WithLabelValues("all_busy").Inc()
	slog.Info("All accounts checked, no availability found",
		"start_time", req.StartTime,
		"duration", req.Duration,
	)
	return nil, model.ErrAllAccountsBusy
}

// findConflict returns the first existing meeting that overlaps the request.
func findConflict(req *model.BookingRequest, existing []model.Meeting) (model.Meeting, bool) {
	for _, m := range existing {
		if req.Overlaps(m) {
			return m, true
		}
	}
	return model.Meeting{}, false
}
