package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfagundes/huddle/internal/model"
)

type stubLister struct {
	meetings []model.Meeting
	err      error
}

func (s *stubLister) ListAll(ctx context.Context) ([]model.Meeting, error) {
	return s.meetings, s.err
}

type stubBooker struct {
	meeting *model.Meeting
	err     error
	lastReq *model.BookingRequest
}

func (s *stubBooker) Book(ctx context.Context, req *model.BookingRequest) (*model.Meeting, error) {
	s.lastReq = req
	return s.meeting, s.err
}

type stubStore struct {
	meeting    *model.Meeting
	getErr     error
	updateErr  error
	deleteErr  error
	lastID     string
	lastUpdate *model.MeetingUpdate
}

func (s *stubStore) Get(ctx context.Context, meetingID string) (*model.Meeting, error) {
	s.lastID = meetingID
	return s.meeting, s.getErr
}

func (s *stubStore) Update(ctx context.Context, meetingID string, update *model.MeetingUpdate) error {
	s.lastID = meetingID
	s.lastUpdate = update
	return s.updateErr
}

func (s *stubStore) Delete(ctx context.Context, meetingID string) error {
	s.lastID = meetingID
	return s.deleteErr
}

func newTestHandler(lister *stubLister, booker *stubBooker, store *stubStore) *MeetingHandler {
	if lister == nil {
		lister = &stubLister{}
	}
	if booker == nil {
		booker = &stubBooker{}
	}
	if store == nil {
		store = &stubStore{}
	}
	return NewMeetingHandler(lister, booker, store)
}

func TestListReturnsAggregatedMeetings(t *testing.T) {
	lister := &stubLister{meetings: []model.Meeting{
		{ID: 1, Account: "default"},
		{ID: 2, Account: "weekend"},
	}}
	h := newTestHandler(lister, nil, nil)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/users/me/meetings", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Meetings, 2)
	assert.Equal(t, "default", resp.Meetings[0].Account)
}

func TestListEmptyIsAnArrayNotNull(t *testing.T) {
	h := newTestHandler(&stubLister{}, nil, nil)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/users/me/meetings", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"meetings":[]}`, rec.Body.String())
}

func TestListFailure(t *testing.T) {
	h := newTestHandler(&stubLister{err: model.ErrConfigurationMissing}, nil, nil)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/users/me/meetings", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCreateBooksMeeting(t *testing.T) {
	booker := &stubBooker{meeting: &model.Meeting{ID: 42, Account: "afterHours"}}
	h := newTestHandler(nil, booker, nil)

	body := `{"topic":"standup","start_time":"2026-03-14T10:00:00Z","duration":30}`
	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/users/me/meetings", strings.NewReader(body)))

	assert.Equal(t, http.StatusCreated, rec.Code)

	var meeting model.Meeting
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &meeting))
	assert.Equal(t, int64(42), meeting.ID)
	assert.Equal(t, "afterHours", meeting.Account)

	require.NotNil(t, booker.lastReq)
	assert.Equal(t, "standup", booker.lastReq.Topic)
	assert.Equal(t, time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC), booker.lastReq.StartTime)
}

func TestCreateRejectsMalformedBody(t *testing.T) {
	h := newTestHandler(nil, &stubBooker{}, nil)

	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/users/me/meetings", strings.NewReader("{not json")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateValidationFailure(t *testing.T) {
	booker := &stubBooker{err: &model.ValidationError{Field: "duration", Reason: "duration must be a positive number of minutes"}}
	h := newTestHandler(nil, booker, nil)

	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/users/me/meetings", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "duration")
}

func TestCreateAllAccountsBusy(t *testing.T) {
	h := newTestHandler(nil, &stubBooker{err: model.ErrAllAccountsBusy}, nil)

	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/users/me/meetings", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "All available accounts are busy at the selected time. Please choose a different time.", resp.Message)
}

func TestGetMeeting(t *testing.T) {
	store := &stubStore{meeting: &model.Meeting{ID: 42, Account: "default"}}
	h := newTestHandler(nil, nil, store)

	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/meetings/42", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", store.lastID)
}

func TestGetMeetingNotFound(t *testing.T) {
	store := &stubStore{getErr: model.ErrMeetingNotFound}
	h := newTestHandler(nil, nil, store)

	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/meetings/999", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetMeetingKeepsUpstreamStatus(t *testing.T) {
	store := &stubStore{getErr: &model.ProviderError{StatusCode: http.StatusBadGateway}}
	h := newTestHandler(nil, nil, store)

	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/meetings/42", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestUpdateMeeting(t *testing.T) {
	store := &stubStore{}
	h := newTestHandler(nil, nil, store)

	rec := httptest.NewRecorder()
	h.Update(rec, httptest.NewRequest(http.MethodPatch, "/meetings/42", strings.NewReader(`{"topic":"renamed"}`)))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "42", store.lastID)
	require.NotNil(t, store.lastUpdate)
	require.NotNil(t, store.lastUpdate.Topic)
	assert.Equal(t, "renamed", *store.lastUpdate.Topic)
	assert.Nil(t, store.lastUpdate.Duration)
}

func TestDeleteMeeting(t *testing.T) {
	store := &stubStore{}
	h := newTestHandler(nil, nil, store)

	rec := httptest.NewRecorder()
	h.Delete(rec, httptest.NewRequest(http.MethodDelete, "/meetings/42", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "42", store.lastID)
}

func TestMeetingIDRequired(t *testing.T) {
	h := newTestHandler(nil, nil, &stubStore{})

	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/meetings/", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
