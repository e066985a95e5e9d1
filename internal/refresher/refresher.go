package refresher

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// warmTimeout bounds one full pre-warm sweep across all accounts.
const warmTimeout = 2 * time.Minute

// Warmer refreshes tokens for every configured account.
type Warmer interface {
	Warm(ctx context.Context)
}

// Refresher periodically pre-warms the token cache so interactive requests
// rarely pay the refresh round-trip.
type Refresher struct {
	warmer   Warmer
	enabled  bool
	schedule string
	cron     *cron.Cron
}

// New creates a token refresher with the given cron schedule.
func New(warmer Warmer, enabled bool, schedule string) *Refresher {
	return &Refresher{
		warmer:   warmer,
		enabled:  enabled,
		schedule: schedule,
	}
}

// Start warms the cache once and schedules the recurring sweep.
func (r *Refresher) Start(ctx context.Context) error {
	if !r.enabled {
		slog.Info("Token refresher is disabled by configuration")
		return nil
	}

	r.cron = cron.New()
	if _, err := r.cron.AddFunc(r.schedule, r.sweep); err != nil {
		return err
	}

	slog.Info("Starting token refresher", "schedule", r.schedule)

	// Warm once at boot so the first requests hit a populated cache.
	go r.sweep()

	r.cron.Start()
	return nil
}

// Stop halts the schedule and waits for an in-flight sweep, bounded by ctx.
func (r *Refresher) Stop(ctx context.Context) {
	if r.cron == nil {
		return
	}

	slog.Info("Stopping token refresher")

	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		slog.Warn("Timed out waiting for token refresher to stop")
	}
}

// sweep runs one pre-warm pass.
func (r *Refresher) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), warmTimeout)
	defer cancel()

	slog.Debug("Running token pre-warm sweep")
	r.warmer.Warm(ctx)
}
