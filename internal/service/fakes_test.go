package service

import (
	"context"
	"sync"
	"time"

	"github.com/dfagundes/huddle/internal/model"
)

// fakeTokens is an in-memory TokenSource recording every lookup.
type fakeTokens struct {
	mu     sync.Mutex
	tokens map[string]string // account key -> token
	errs   map[string]error  // account key -> error
	calls  []string
}

func (f *fakeTokens) Token(ctx context.Context, accountKey string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, accountKey)
	if err, ok := f.errs[accountKey]; ok {
		return "", err
	}
	return f.tokens[accountKey], nil
}

func (f *fakeTokens) tokenCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// fakeProvider is an in-memory ProviderClient keyed by bearer token.
type fakeProvider struct {
	mu         sync.Mutex
	meetings   map[string][]model.Meeting // token -> existing meetings
	listErrs   map[string]error           // token -> list failure
	createErrs map[string]error           // token -> create failure
	nextID     int64

	created []string // tokens create was called with
	updates []recordedUpdate
	deletes []recordedDelete

	getResult *model.Meeting
	getErr    error
}

type recordedUpdate struct {
	token     string
	meetingID string
	update    *model.MeetingUpdate
}

type recordedDelete struct {
	token     string
	meetingID string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		meetings:   make(map[string][]model.Meeting),
		listErrs:   make(map[string]error),
		createErrs: make(map[string]error),
		nextID:     100,
	}
}

func (f *fakeProvider) ListMeetings(ctx context.Context, token string) ([]model.Meeting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.listErrs[token]; ok {
		return nil, err
	}
	return append([]model.Meeting(nil), f.meetings[token]...), nil
}

func (f *fakeProvider) CreateMeeting(ctx context.Context, token string, req *model.BookingRequest) (*model.Meeting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.created = append(f.created, token)
	if err, ok := f.createErrs[token]; ok {
		return nil, err
	}

	f.nextID++
	return &model.Meeting{
		ID:        f.nextID,
		Topic:     req.Topic,
		StartTime: req.StartTime,
		Duration:  req.Duration,
		Timezone:  req.Timezone,
		Agenda:    req.Agenda,
	}, nil
}

func (f *fakeProvider) GetMeeting(ctx context.Context, token, meetingID string) (*model.Meeting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return nil, f.getErr
	}
	meeting := *f.getResult
	return &meeting, nil
}

func (f *fakeProvider) UpdateMeeting(ctx context.Context, token, meetingID string, update *model.MeetingUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.updates = append(f.updates, recordedUpdate{token: token, meetingID: meetingID, update: update})
	return nil
}

func (f *fakeProvider) DeleteMeeting(ctx context.Context, token, meetingID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deletes = append(f.deletes, recordedDelete{token: token, meetingID: meetingID})
	return nil
}

func (f *fakeProvider) createCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.created...)
}

// notified is one captured notification.
type notified struct {
	meeting  model.Meeting
	isUpdate bool
}

// chanNotifier captures notifications on a channel so tests can wait for
// the detached dispatch goroutine.
type chanNotifier struct {
	ch chan notified
}

func newChanNotifier() *chanNotifier {
	return &chanNotifier{ch: make(chan notified, 8)}
}

func (n *chanNotifier) Notify(ctx context.Context, meeting *model.Meeting, isUpdate bool) {
	n.ch <- notified{meeting: *meeting, isUpdate: isUpdate}
}

func (n *chanNotifier) wait(timeout time.Duration) (notified, bool) {
	select {
	case event := <-n.ch:
		return event, true
	case <-time.After(timeout):
		return notified{}, false
	}
}
