package zoom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dfagundes/huddle/internal/model"
)

const (
	// scheduledMeetingType is the provider's meeting type for a one-off
	// scheduled meeting.
	scheduledMeetingType = 2

	// listPageSize is the page size requested from the list endpoint.
	listPageSize = 300

	// maxListPages caps pagination so a provider that never returns an
	// empty next_page_token cannot spin the loop forever.
	maxListPages = 50
)

// Client is a thin wrapper over the provider's meetings API for a single
// bearer token. It performs no retries; retry policy belongs to the token
// cache and the scheduler.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a provider API client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// listMeetingsResponse is one page of the provider's list endpoint.
type listMeetingsResponse struct {
	NextPageToken string          `json:"next_page_token"`
	Meetings      []model.Meeting `json:"meetings"`
}

// createMeetingRequest is the provider's create payload.
type createMeetingRequest struct {
	Topic     string    `json:"topic,omitempty"`
	Type      int       `json:"type"`
	StartTime time.Time `json:"start_time"`
	Duration  int       `json:"duration"`
	Timezone  string    `json:"timezone,omitempty"`
	Agenda    string    `json:"agenda,omitempty"`
}

// ListMeetings returns all scheduled meetings visible to the token,
// following next_page_token until the provider reports no further pages.
func (c *Client) ListMeetings(ctx context.Context, token string) ([]model.Meeting, error) {
	var all []model.Meeting
	pageToken := ""

	for page := 0; page < maxListPages; page++ {
		params := url.Values{}
		params.Set("page_size", fmt.Sprintf("%d", listPageSize))
		if pageToken != "" {
			params.Set("next_page_token", pageToken)
		}

		var resp listMeetingsResponse
		if err := c.do(ctx, token, http.MethodGet, "/users/me/meetings?"+params.Encode(), nil, &resp); err != nil {
			return nil, err
		}

		all = append(all, resp.Meetings...)

		if resp.NextPageToken == "" {
			return all, nil
		}
		pageToken = resp.NextPageToken
	}

	slog.Warn("Meeting listing exceeded page cap, returning truncated results",
		"pages", maxListPages,
		"meetings", len(all),
	)
	return all, nil
}

// CreateMeeting schedules a new meeting and returns the provider's record.
func (c *Client) CreateMeeting(ctx context.Context, token string, req *model.BookingRequest) (*model.Meeting, error) {
	payload := createMeetingRequest{
		Topic:     req.Topic,
		Type:      scheduledMeetingType,
		StartTime: req.StartTime,
		Duration:  req.Duration,
		Timezone:  req.Timezone,
		Agenda:    req.Agenda,
	}

	var meeting model.Meeting
	if err := c.do(ctx, token, http.MethodPost, "/users/me/meetings", payload, &meeting); err != nil {
		return nil, err
	}
	return &meeting, nil
}

// GetMeeting retrieves a single meeting by id.
func (c *Client) GetMeeting(ctx context.Context, token, meetingID string) (*model.Meeting, error) {
	var meeting model.Meeting
	if err := c.do(ctx, token, http.MethodGet, "/meetings/"+meetingID, nil, &meeting); err != nil {
		return nil, err
	}
	return &meeting, nil
}

// UpdateMeeting applies a partial update to an existing meeting.
func (c *Client) UpdateMeeting(ctx context.Context, token, meetingID string, update *model.MeetingUpdate) error {
	return c.do(ctx, token, http.MethodPatch, "/meetings/"+meetingID, update, nil)
}

// DeleteMeeting removes a meeting.
func (c *Client) DeleteMeeting(ctx context.Context, token, meetingID string) error {
	return c.do(ctx, token, http.MethodDelete, "/meetings/"+meetingID, nil, nil)
}

// do performs a single authenticated round-trip and decodes the response
// into out when provided. Non-2xx statuses map to the shared error taxonomy.
func (c *Client) do(ctx context.Context, token, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return fmt.Errorf("failed to read provider response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return model.ErrMeetingNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &model.ProviderError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(respBody)),
		}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse provider response: %w", err)
		}
	}
	return nil
}
