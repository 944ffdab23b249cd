// Package qdrant provides a REST client for the Qdrant vector database
// holding the meeting-title search index.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"meeting_assistant_backend/platform/apperr"
)

// Client is an HTTP client for Qdrant vector database.
type Client struct {
	baseURL    string
	apiKey     string
	collection string
	httpClient *http.Client
}

// Config configures the Qdrant client.
type Config struct {
	BaseURL    string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// NewClient creates a new Qdrant client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// fieldMatch is an exact-match condition on a payload field.
type fieldMatch struct {
	Key   string `json:"key"`
	Match struct {
		Value interface{} `json:"value"`
	} `json:"match"`
}

// fieldRange is a range condition on a payload field.
type fieldRange struct {
	Key   string `json:"key"`
	Range struct {
		GTE float64 `json:"gte,omitempty"`
		LTE float64 `json:"lte,omitempty"`
	} `json:"range"`
}

// SearchRequest is the request body for a filtered vector search.
type SearchRequest struct {
	Vector      []float32     `json:"vector"`
	Limit       int           `json:"limit"`
	WithPayload bool          `json:"with_payload"`
	Filter      *searchFilter `json:"filter,omitempty"`
}

type searchFilter struct {
	Must []interface{} `json:"must"`
}

// SearchResult is a single search result from Qdrant.
type SearchResult struct {
	ID      interface{}            `json:"id"`
	Score   float64                `json:"score"`
	Payload map[string]interface{} `json:"payload"`
}

// SearchResponse is the response from a search query.
type SearchResponse struct {
	Result []SearchResult `json:"result"`
	Status interface{}    `json:"status"`
	Time   float64        `json:"time"`
}

// SearchWindow performs a vector similarity search scoped to one user and
// a [windowStart, windowEnd] range over the indexed start date (unix seconds).
func (c *Client) SearchWindow(ctx context.Context, vector []float32, userID string, windowStart, windowEnd time.Time, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}

	userCond := fieldMatch{Key: "user_id"}
	userCond.Match.Value = userID

	windowCond := fieldRange{Key: "start_date"}
	windowCond.Range.GTE = float64(windowStart.Unix())
	windowCond.Range.LTE = float64(windowEnd.Unix())

	reqBody := SearchRequest{
		Vector:      vector,
		Limit:       limit,
		WithPayload: true,
		Filter:      &searchFilter{Must: []interface{}{userCond, windowCond}},
	}

	url := fmt.Sprintf("%s/collections/%s/points/search", c.baseURL, c.collection)
	var searchResp SearchResponse
	if err := c.do(ctx, http.MethodPost, url, reqBody, &searchResp); err != nil {
		return nil, err
	}

	return searchResp.Result, nil
}

// UpsertPoint inserts or replaces one point keyed by id.
func (c *Client) UpsertPoint(ctx context.Context, id string, vector []float32, payload map[string]interface{}) error {
	reqBody := map[string]interface{}{
		"points": []map[string]interface{}{
			{
				"id":      id,
				"vector":  vector,
				"payload": payload,
			},
		},
	}

	url := fmt.Sprintf("%s/collections/%s/points?wait=true", c.baseURL, c.collection)
	return c.do(ctx, http.MethodPut, url, reqBody, nil)
}

// DeletePoint removes one point by id.
func (c *Client) DeletePoint(ctx context.Context, id string) error {
	reqBody := map[string]interface{}{
		"points": []string{id},
	}

	url := fmt.Sprintf("%s/collections/%s/points/delete?wait=true", c.baseURL, c.collection)
	return c.do(ctx, http.MethodPost, url, reqBody, nil)
}

func (c *Client) do(ctx context.Context, method, url string, body interface{}, out interface{}) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal qdrant request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create qdrant request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.Unavailable("qdrant unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return apperr.New(apperr.FromHTTPStatus(resp.StatusCode),
			fmt.Sprintf("qdrant returned %d: %s", resp.StatusCode, string(respBody)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode qdrant response: %w", err)
		}
	}

	return nil
}
