package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/dfagundes/huddle/internal/metrics"
	"github.com/dfagundes/huddle/internal/model"
)

// Aggregator lists meetings across every configured account and merges the
// results into one ordered view.
type Aggregator struct {
	registry *model.Registry
	tokens   TokenSource
	provider ProviderClient
}

// NewAggregator creates a new meeting aggregator.
func NewAggregator(registry *model.Registry, tokens TokenSource, provider ProviderClient) *Aggregator {
	return &Aggregator{
		registry: registry,
		tokens:   tokens,
		provider: provider,
	}
}

// ListAll fetches each account's meetings concurrently, stamps every meeting
// with its originating account and returns the union sorted ascending by
// start time. A single failing account contributes nothing and is reported
// as a diagnostic; the call fails only when every account fails.
func (a *Aggregator) ListAll(ctx context.Context) ([]model.Meeting, error) {
	accounts := a.registry.Accounts()
	results := make([][]model.Meeting, len(accounts))
	failures := make([]error, len(accounts))

	var g errgroup.Group
	for i, account := range accounts {
		i, account := i, account
		g.Go(func() error {
			meetings, err := a.listAccount(ctx, account.Key)
			if err != nil {
				failures[i] = err
				metrics.AggregationFailures.WithLabelValues(account.Key).Inc()
				slog.Warn("Account excluded from aggregated listing",
					"account", account.Key,
					"error", err,
				)
				return nil
			}
			results[i] = meetings
			return nil
		})
	}
	g.Wait()

	var all []model.Meeting
	failed := 0
	for i := range accounts {
		if failures[i] != nil {
			failed++
			continue
		}
		all = append(all, results[i]...)
	}

	if len(accounts) > 0 && failed == len(accounts) {
		return nil, fmt.Errorf("failed to list meetings on all %d accounts", failed)
	}

	// Stable sort keeps account (input) order for meetings that share a
	// start time.
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].StartTime.Before(all[j].StartTime)
	})

	return all, nil
}

// listAccount fetches one account's meetings and stamps them with its key.
func (a *Aggregator) listAccount(ctx context.Context, accountKey string) ([]model.Meeting, error) {
	token, err := a.tokens.Token(ctx, accountKey)
	if err != nil {
		return nil, err
	}

	meetings, err := a.provider.ListMeetings(ctx, token)
	if err != nil {
		return nil, err
	}

	for i := range meetings {
		meetings[i].Account = accountKey
	}
	return meetings, nil
}
