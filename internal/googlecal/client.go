// Package googlecal pushes event changes to the calendar gateway, which
// fronts the Google Calendar API and owns provider credentials.
package googlecal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"meeting_assistant_backend/internal/meetingupdate/ports"
	"meeting_assistant_backend/platform/apperr"

	"github.com/google/uuid"
)

type Config interface {
	GetCalendarAPIBaseURL() string
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		baseURL: cfg.GetCalendarAPIBaseURL(),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type eventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone,omitempty"`
}

type reminderPayload struct {
	UseDefault bool                  `json:"useDefault"`
	Overrides  []reminderOverrideDTO `json:"overrides,omitempty"`
}

type reminderOverrideDTO struct {
	Method  string `json:"method"`
	Minutes int    `json:"minutes"`
}

type eventBody struct {
	ID           string                   `json:"id,omitempty"`
	Summary      string                   `json:"summary,omitempty"`
	Description  string                   `json:"description,omitempty"`
	Start        *eventTime               `json:"start,omitempty"`
	End          *eventTime               `json:"end,omitempty"`
	Location     string                   `json:"location,omitempty"`
	Transparency string                   `json:"transparency,omitempty"`
	Visibility   string                   `json:"visibility,omitempty"`
	Attendees    []ports.CalendarAttendee `json:"attendees,omitempty"`
	Recurrence   []string                 `json:"recurrence,omitempty"`
	Conference   *ports.ConferencePayload `json:"conferenceData,omitempty"`
	Reminders    *reminderPayload         `json:"reminders,omitempty"`
}

func buildBody(localID string, write ports.EventWrite) eventBody {
	body := eventBody{
		ID:           localID,
		Summary:      write.Summary,
		Description:  write.Notes,
		Location:     write.Location,
		Transparency: write.Transparency,
		Visibility:   write.Visibility,
		Attendees:    write.Attendees,
		Recurrence:   write.Recurrence,
		Conference:   write.Conference,
	}
	if !write.Start.IsZero() {
		body.Start = &eventTime{DateTime: write.Start.Format(time.RFC3339), TimeZone: write.Timezone}
	}
	if !write.End.IsZero() {
		body.End = &eventTime{DateTime: write.End.Format(time.RFC3339), TimeZone: write.Timezone}
	}
	if write.Reminders != nil {
		body.Reminders = &reminderPayload{UseDefault: write.Reminders.UseDefault}
		for _, minutes := range write.Reminders.Minutes {
			body.Reminders.Overrides = append(body.Reminders.Overrides, reminderOverrideDTO{Method: "popup", Minutes: minutes})
		}
	}
	return body
}

// PatchEvent pushes all changed fields to the provider in one call.
func (c *Client) PatchEvent(ctx context.Context, userID uuid.UUID, calendarID, providerEventID string, write ports.EventWrite) error {
	url := fmt.Sprintf("%s/users/%s/calendars/%s/events/%s", c.baseURL, userID, calendarID, providerEventID)
	return c.do(ctx, http.MethodPatch, url, buildBody("", write), nil)
}

// CreateEvent creates a provider-side event and returns its identifiers.
func (c *Client) CreateEvent(ctx context.Context, userID uuid.UUID, calendarID, localID string, write ports.EventWrite) (ports.EventRef, error) {
	url := fmt.Sprintf("%s/users/%s/calendars/%s/events", c.baseURL, userID, calendarID)
	var created struct {
		ID              string `json:"id"`
		ProviderEventID string `json:"providerEventId"`
	}
	if err := c.do(ctx, http.MethodPost, url, buildBody(localID, write), &created); err != nil {
		return ports.EventRef{}, err
	}
	return ports.EventRef{ID: created.ID, ProviderEventID: created.ProviderEventID}, nil
}

// DeleteEvent removes a provider-side event.
func (c *Client) DeleteEvent(ctx context.Context, userID uuid.UUID, calendarID, providerEventID string) error {
	url := fmt.Sprintf("%s/users/%s/calendars/%s/events/%s", c.baseURL, userID, calendarID, providerEventID)
	return c.do(ctx, http.MethodDelete, url, nil, nil)
}

func (c *Client) do(ctx context.Context, method, url string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal calendar request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build calendar request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.Unavailable("calendar gateway unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperr.New(apperr.FromHTTPStatus(resp.StatusCode),
			fmt.Sprintf("calendar gateway returned %d", resp.StatusCode)).WithOp(method + " " + url)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode calendar response: %w", err)
		}
	}
	return nil
}

var _ ports.CalendarProvider = (*Client)(nil)
