package service

import (
	"context"
	"time"

	"github.com/dfagundes/huddle/internal/model"
)

// TokenSource provides a valid bearer token for an account key.
type TokenSource interface {
	Token(ctx context.Context, accountKey string) (string, error)
}

// ProviderClient issues authenticated calls to the remote meeting provider
// on behalf of whichever account the token belongs to.
type ProviderClient interface {
	ListMeetings(ctx context.Context, token string) ([]model.Meeting, error)
	CreateMeeting(ctx context.Context, token string, req *model.BookingRequest) (*model.Meeting, error)
	GetMeeting(ctx context.Context, token, meetingID string) (*model.Meeting, error)
	UpdateMeeting(ctx context.Context, token, meetingID string, update *model.MeetingUpdate) error
	DeleteMeeting(ctx context.Context, token, meetingID string) error
}

// Notifier consumes created/updated meeting records. Implementations are
// best-effort and must swallow their own errors.
type Notifier interface {
	Notify(ctx context.Context, meeting *model.Meeting, isUpdate bool)
}

// dispatchNotification hands the meeting to the notifier on a detached
// goroutine. The caller's request is never blocked or failed by it.
func dispatchNotification(notifier Notifier, timeout time.Duration, meeting *model.Meeting, isUpdate bool) {
	if notifier == nil {
		return
	}

	copied := *meeting
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		notifier.Notify(ctx, &copied, isUpdate)
	}()
}
