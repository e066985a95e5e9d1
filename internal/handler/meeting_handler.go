package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dfagundes/huddle/internal/model"
)

// Lister aggregates meetings across every configured account.
type Lister interface {
	ListAll(ctx context.Context) ([]model.Meeting, error)
}

// Booker schedules a new meeting on the first conflict-free account.
type Booker interface {
	Book(ctx context.Context, req *model.BookingRequest) (*model.Meeting, error)
}

// MeetingStore operates on a single existing meeting by id.
type MeetingStore interface {
	Get(ctx context.Context, meetingID string) (*model.Meeting, error)
	Update(ctx context.Context, meetingID string, update *model.MeetingUpdate) error
	Delete(ctx context.Context, meetingID string) error
}

// MeetingHandler handles the meeting HTTP endpoints
type MeetingHandler struct {
	lister   Lister
	booker   Booker
	meetings MeetingStore
}

// NewMeetingHandler creates a new meeting handler
func NewMeetingHandler(lister Lister, booker Booker, meetings MeetingStore) *MeetingHandler {
	return &MeetingHandler{
		lister:   lister,
		booker:   booker,
		meetings: meetings,
	}
}

// ListResponse represents the aggregated list response
type ListResponse struct {
	Meetings []model.Meeting `json:"meetings"`
}

// List handles GET /users/me/meetings
func (h *MeetingHandler) List(w http.ResponseWriter, r *http.Request) {
	meetings, err := h.lister.ListAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to retrieve and combine meetings from all accounts")
		return
	}

	if meetings == nil {
		meetings = []model.Meeting{}
	}

	writeJSON(w, http.StatusOK, ListResponse{Meetings: meetings})
}

// Create handles POST /users/me/meetings
func (h *MeetingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	meeting, err := h.booker.Book(r.Context(), &req)
	if err != nil {
		var validationErr *model.ValidationError
		switch {
		case errors.As(err, &validationErr):
			writeError(w, http.StatusBadRequest, validationErr.Reason)
		case errors.Is(err, model.ErrAllAccountsBusy):
			writeError(w, http.StatusConflict, "All available accounts are busy at the selected time. Please choose a different time.")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to book the meeting")
		}
		return
	}

	writeJSON(w, http.StatusCreated, meeting)
}

// Get handles GET /meetings/{id}
func (h *MeetingHandler) Get(w http.ResponseWriter, r *http.Request) {
	meetingID := meetingIDFromPath(r)
	if meetingID == "" {
		writeError(w, http.StatusNotFound, "Meeting id is required")
		return
	}

	meeting, err := h.meetings.Get(r.Context(), meetingID)
	if err != nil {
		writeProviderError(w, err, "Failed to retrieve meeting details")
		return
	}

	writeJSON(w, http.StatusOK, meeting)
}

// Update handles PATCH /meetings/{id}
func (h *MeetingHandler) Update(w http.ResponseWriter, r *http.Request) {
	meetingID := meetingIDFromPath(r)
	if meetingID == "" {
		writeError(w, http.StatusNotFound, "Meeting id is required")
		return
	}

	var update model.MeetingUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := h.meetings.Update(r.Context(), meetingID, &update); err != nil {
		writeProviderError(w, err, "Failed to update meeting")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /meetings/{id}
func (h *MeetingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	meetingID := meetingIDFromPath(r)
	if meetingID == "" {
		writeError(w, http.StatusNotFound, "Meeting id is required")
		return
	}

	if err := h.meetings.Delete(r.Context(), meetingID); err != nil {
		writeProviderError(w, err, "Failed to delete meeting")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// meetingIDFromPath extracts the meeting id from /meetings/{id}
func meetingIDFromPath(r *http.Request) string {
	id := strings.TrimPrefix(r.URL.Path, "/meetings/")
	return strings.Split(id, "/")[0]
}
