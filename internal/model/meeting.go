package model

import (
	"time"
)

// Meeting represents a scheduled meeting as reported by the provider.
// The Account field is stamped locally by the aggregator/scheduler and is
// never part of the provider payload.
type Meeting struct {
	ID        int64     `json:"id"`
	Topic     string    `json:"topic"`
	StartTime time.Time `json:"start_time"`
	Duration  int       `json:"duration"` // In minutes
	Timezone  string    `json:"timezone,omitempty"`
	Agenda    string    `json:"agenda,omitempty"`
	JoinURL   string    `json:"join_url,omitempty"`
	Account   string    `json:"account,omitempty"`
}

// End returns the end instant of the meeting.
func (m Meeting) End() time.Time {
	return m.StartTime.Add(time.Duration(m.Duration) * time.Minute)
}

// BookingRequest represents a caller-supplied request to schedule a meeting.
type BookingRequest struct {
	Topic     string    `json:"topic"`
	StartTime time.Time `json:"start_time"`
	Duration  int       `json:"duration"` // In minutes
	Timezone  string    `json:"timezone,omitempty"`
	Agenda    string    `json:"agenda,omitempty"`
}

// Validate validates the booking request before any conflict checking
func (b *BookingRequest) Validate() error {
	if b.StartTime.IsZero() {
		return &ValidationError{Field: "start_time", Reason: "start_time is required to check for conflicts"}
	}
	if b.Duration <= 0 {
		return &ValidationError{Field: "duration", Reason: "duration must be a positive number of minutes"}
	}
	return nil
}

// End returns the end instant of the requested slot.
func (b *BookingRequest) End() time.Time {
	return b.StartTime.Add(time.Duration(b.Duration) * time.Minute)
}

// Overlaps reports whether the requested slot intersects an existing
// meeting. The comparison is half-open: a meeting ending exactly when
// another starts does not overlap.
func (b *BookingRequest) Overlaps(m Meeting) bool {
	return b.StartTime.Before(m.End()) && m.StartTime.Before(b.End())
}

// MeetingUpdate represents a partial update to an existing meeting.
// Only the fields present in the request body are sent to the provider.
type MeetingUpdate struct {
	Topic     *string    `json:"topic,omitempty"`
	StartTime *time.Time `json:"start_time,omitempty"`
	Duration  *int       `json:"duration,omitempty"`
	Timezone  *string    `json:"timezone,omitempty"`
	Agenda    *string    `json:"agenda,omitempty"`
}
