package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dfagundes/huddle/internal/metrics"
	"github.com/dfagundes/huddle/internal/model"
)

// Event is the payload posted to the notification webhook.
type Event struct {
	Event      string        `json:"event"` // "meeting.created" | "meeting.updated"
	DeliveryID string        `json:"delivery_id"`
	Timestamp  time.Time     `json:"timestamp"`
	Meeting    model.Meeting `json:"meeting"`
}

// Dispatcher delivers meeting events to an outbound webhook. Delivery is
// best-effort: failures are retried within bounds, then logged and dropped.
// It never reports an error back to the booking path.
type Dispatcher struct {
	webhookURL string
	httpClient *http.Client
	retry      RetryStrategy
	breaker    *CircuitBreaker
}

// NewDispatcher creates a webhook notification dispatcher.
func NewDispatcher(webhookURL string, timeout time.Duration, maxAttempts int) *Dispatcher {
	return &Dispatcher{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		retry:   NewRetryStrategy(maxAttempts),
		breaker: NewCircuitBreaker(),
	}
}

// Notify posts a created/updated event for the meeting. All failures are
// swallowed after logging.
func (d *Dispatcher) Notify(ctx context.Context, meeting *model.Meeting, isUpdate bool) {
	event := Event{
		Event:      "meeting.created",
		DeliveryID: uuid.New().String(),
		Timestamp:  time.Now().UTC(),
		Meeting:    *meeting,
	}
	if isUpdate {
		event.Event = "meeting.updated"
	}

	if !d.breaker.CanAttempt() {
		slog.Warn("Circuit breaker is open, dropping notification",
			"delivery_id", event.DeliveryID,
			"event", event.Event,
		)
		metrics.Notifications.WithLabelValues("dropped").Inc()
		return
	}

	for attempt := 1; attempt <= d.retry.MaxAttempts(); attempt++ {
		statusCode, err := d.deliver(ctx, event)

		if err == nil && statusCode >= 200 && statusCode < 300 {
			d.breaker.RecordSuccess()
			metrics.Notifications.WithLabelValues("delivered").Inc()
			slog.Info("Notification delivered",
				"delivery_id", event.DeliveryID,
				"event", event.Event,
				"attempt", attempt,
			)
			return
		}

		if !d.retry.ShouldRetry(attempt, statusCode, err) {
			break
		}

		delay := d.retry.Delay(attempt)
		slog.Warn("Notification delivery failed, retrying",
			"delivery_id", event.DeliveryID,
			"status_code", statusCode,
			"next_retry_ms", delay.Milliseconds(),
			"error", err,
		)

		select {
		case <-time.After(delay):
			// Next attempt
		case <-ctx.Done():
			d.breaker.RecordFailure()
			metrics.Notifications.WithLabelValues("failed").Inc()
			return
		}
	}

	d.breaker.RecordFailure()
	metrics.Notifications.WithLabelValues("failed").Inc()
	slog.Error("Notification delivery failed",
		"delivery_id", event.DeliveryID,
		"event", event.Event,
		"webhook_url", d.webhookURL,
	)
}

// deliver performs a single webhook POST.
func (d *Dispatcher) deliver(ctx context.Context, event Event) (int, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	return resp.StatusCode, nil
}

// NopNotifier discards all notifications. Used when no webhook URL is
// configured.
type NopNotifier struct{}

func (NopNotifier) Notify(ctx context.Context, meeting *model.Meeting, isUpdate bool) {
	slog.Debug("Notification dispatch disabled, dropping event",
		"meeting_id", meeting.ID,
		"is_update", isUpdate,
	)
}
