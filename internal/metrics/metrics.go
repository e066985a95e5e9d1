package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters for the token cache, scheduler, aggregator and notification
// dispatcher. Registered on the default registry and exposed on /metrics.
var (
	TokenRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "huddle_token_refreshes_total",
		Help: "Token refresh attempts against the provider token endpoint.",
	}, []string{"account", "outcome"})

	TokenCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "huddle_token_cache_hits_total",
		Help: "Token requests served from the in-memory cache.",
	}, []string{"account"})

	RateLimitRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "huddle_token_rate_limit_retries_total",
		Help: "Rate-limited token refresh attempts (HTTP 429).",
	}, []string{"account"})

	Bookings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "huddle_bookings_total",
		Help: "Booking outcomes: booked, all_busy or invalid.",
	}, []string{"outcome"})

	BookingConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "huddle_booking_conflicts_total",
		Help: "Accounts rejected during a booking walk due to a calendar overlap.",
	}, []string{"account"})

	AggregationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "huddle_aggregation_failures_total",
		Help: "Accounts that failed to contribute to an aggregated listing.",
	}, []string{"account"})

	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "huddle_notifications_total",
		Help: "Notification delivery outcomes.",
	}, []string{"outcome"})
)
