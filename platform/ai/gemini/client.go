// Package gemini wraps the Gemini API for the two model-backed concerns in
// this service: structured field extraction and assistant reply generation.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"meeting_assistant_backend/platform/apperr"

	"google.golang.org/genai"
)

type Config struct {
	APIKey string
	Model  string
}

type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{client: client, model: cfg.Model}, nil
}

// GenerateJSON asks the model for a JSON object and returns the raw bytes,
// optionally decoding them into out. The raw form is kept because turn
// extraction round-trips it through the continuation context unchanged.
func (c *Client) GenerateJSON(ctx context.Context, system, prompt string, out interface{}) (json.RawMessage, error) {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr[float32](0.2),
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return nil, apperr.Unavailable("gemini generate failed", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, apperr.New(apperr.KindUnavailable, "gemini returned an empty response")
	}
	raw := json.RawMessage(text)
	if !json.Valid(raw) {
		return nil, apperr.New(apperr.KindUnavailable, "gemini returned invalid JSON")
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return nil, apperr.Wrap(apperr.KindUnavailable, "gemini JSON did not match the expected shape", err)
		}
	}
	return raw, nil
}

// GenerateText asks the model for a plain-text completion.
func (c *Client) GenerateText(ctx context.Context, system, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr[float32](0.7),
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return "", apperr.Unavailable("gemini generate failed", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", apperr.New(apperr.KindUnavailable, "gemini returned an empty response")
	}
	return text, nil
}
