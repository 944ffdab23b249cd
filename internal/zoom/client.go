// Package zoom hosts third-party conference meetings through the Zoom API,
// using the per-user OAuth credentials stored at link time.
package zoom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"meeting_assistant_backend/internal/meetingupdate/domain"
	"meeting_assistant_backend/internal/meetingupdate/ports"
	"meeting_assistant_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Config interface {
	GetZoomAPIBaseURL() string
	GetZoomTokenURL() string
	GetZoomClientID() string
	GetZoomClientSecret() string
}

type Client struct {
	baseURL      string
	tokenURL     string
	clientID     string
	clientSecret string
	pool         *pgxpool.Pool
	httpClient   *http.Client
}

func NewClient(cfg Config, pool *pgxpool.Pool) *Client {
	return &Client{
		baseURL:      cfg.GetZoomAPIBaseURL(),
		tokenURL:     cfg.GetZoomTokenURL(),
		clientID:     cfg.GetZoomClientID(),
		clientSecret: cfg.GetZoomClientSecret(),
		pool:         pool,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Authorized reports whether the user has linked a Zoom account.
func (c *Client) Authorized(ctx context.Context, userID uuid.UUID) (bool, error) {
	var exists bool
	err := c.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM zoom_credentials WHERE user_id = $1)
	`, userID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// recurrence maps to Zoom's recurrence object: 1=daily, 2=weekly, 3=monthly.
var recurrenceTypes = map[domain.RecurrenceFrequency]int{
	domain.FrequencyDaily:   1,
	domain.FrequencyWeekly:  2,
	domain.FrequencyMonthly: 3,
}

type meetingBody struct {
	Topic      string          `json:"topic,omitempty"`
	Agenda     string          `json:"agenda,omitempty"`
	Type       int             `json:"type"`
	StartTime  string          `json:"start_time,omitempty"`
	Duration   int             `json:"duration,omitempty"`
	Timezone   string          `json:"timezone,omitempty"`
	Recurrence *recurrenceBody `json:"recurrence,omitempty"`
	Settings   meetingSettings `json:"settings"`
}

type recurrenceBody struct {
	Type           int    `json:"type"`
	RepeatInterval int    `json:"repeat_interval,omitempty"`
	EndTimes       int    `json:"end_times,omitempty"`
	EndDateTime    string `json:"end_date_time,omitempty"`
}

type meetingSettings struct {
	ContactName  string `json:"contact_name,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`
	JoinBeforeHost bool `json:"join_before_host"`
}

func buildMeetingBody(req ports.HostedMeetingRequest) meetingBody {
	body := meetingBody{
		Topic:    req.Agenda,
		Agenda:   req.Agenda,
		Type:     2, // scheduled meeting
		Duration: req.Duration,
		Timezone: req.Timezone,
		Settings: meetingSettings{
			ContactName:  req.HostName,
			ContactEmail: req.HostEmail,
		},
	}
	if !req.StartDate.IsZero() {
		body.StartTime = req.StartDate.UTC().Format("2006-01-02T15:04:05Z")
	}
	if req.Recurrence.Present() {
		if recType, ok := recurrenceTypes[req.Recurrence.Frequency]; ok {
			body.Type = 8 // recurring meeting with fixed time
			body.Recurrence = &recurrenceBody{
				Type:           recType,
				RepeatInterval: req.Recurrence.Interval,
				EndTimes:       req.Recurrence.Occurrence,
			}
			if !req.Recurrence.EndDate.IsZero() {
				body.Recurrence.EndDateTime = req.Recurrence.EndDate.UTC().Format("2006-01-02T15:04:05Z")
			}
		}
	}
	return body
}

// CreateMeeting schedules a new Zoom meeting on the user's account.
func (c *Client) CreateMeeting(ctx context.Context, userID uuid.UUID, req ports.HostedMeetingRequest) (*ports.HostedMeeting, error) {
	var created struct {
		ID       int64  `json:"id"`
		Agenda   string `json:"agenda"`
		JoinURL  string `json:"join_url"`
		StartURL string `json:"start_url"`
		Password string `json:"password"`
	}
	endpoint := c.baseURL + "/users/me/meetings"
	if err := c.do(ctx, userID, http.MethodPost, endpoint, buildMeetingBody(req), &created); err != nil {
		return nil, err
	}
	return &ports.HostedMeeting{
		ID:       created.ID,
		Agenda:   created.Agenda,
		JoinURL:  created.JoinURL,
		StartURL: created.StartURL,
		Password: created.Password,
	}, nil
}

// UpdateMeeting patches an existing Zoom meeting in place.
func (c *Client) UpdateMeeting(ctx context.Context, userID uuid.UUID, meetingID int64, req ports.HostedMeetingRequest) error {
	endpoint := fmt.Sprintf("%s/meetings/%d", c.baseURL, meetingID)
	return c.do(ctx, userID, http.MethodPatch, endpoint, buildMeetingBody(req), nil)
}

// DeleteMeeting removes a Zoom meeting from the user's account.
func (c *Client) DeleteMeeting(ctx context.Context, userID uuid.UUID, meetingID int64) error {
	endpoint := fmt.Sprintf("%s/meetings/%d", c.baseURL, meetingID)
	return c.do(ctx, userID, http.MethodDelete, endpoint, nil, nil)
}

func (c *Client) do(ctx context.Context, userID uuid.UUID, method, endpoint string, body, out interface{}) error {
	token, err := c.accessToken(ctx, userID)
	if err != nil {
		return err
	}

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal zoom request: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build zoom request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.Unavailable("zoom unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperr.New(apperr.FromHTTPStatus(resp.StatusCode),
			fmt.Sprintf("zoom returned %d", resp.StatusCode)).WithOp(method + " " + endpoint)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode zoom response: %w", err)
		}
	}
	return nil
}

// accessToken returns a valid token for the user, refreshing through the
// OAuth endpoint when the stored one is expired or about to expire.
func (c *Client) accessToken(ctx context.Context, userID uuid.UUID) (string, error) {
	var (
		accessToken  string
		refreshToken string
		expiresAt    time.Time
	)
	err := c.pool.QueryRow(ctx, `
		SELECT access_token, refresh_token, expires_at
		FROM zoom_credentials
		WHERE user_id = $1
	`, userID).Scan(&accessToken, &refreshToken, &expiresAt)
	if err != nil {
		return "", apperr.Wrap(apperr.KindBadRequest, "zoom account not linked", err)
	}
	if time.Until(expiresAt) > time.Minute {
		return accessToken, nil
	}
	return c.refresh(ctx, userID, refreshToken)
}

func (c *Client) refresh(ctx context.Context, userID uuid.UUID, refreshToken string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build zoom token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.clientID, c.clientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperr.Unavailable("zoom token endpoint unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apperr.New(apperr.FromHTTPStatus(resp.StatusCode),
			fmt.Sprintf("zoom token refresh returned %d", resp.StatusCode))
	}

	var token struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("decode zoom token response: %w", err)
	}

	expiresAt := time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	if _, err := c.pool.Exec(ctx, `
		UPDATE zoom_credentials
		SET access_token = $2, refresh_token = $3, expires_at = $4, updated_at = now()
		WHERE user_id = $1
	`, userID, token.AccessToken, token.RefreshToken, expiresAt); err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

var _ ports.ConferenceHost = (*Client)(nil)
