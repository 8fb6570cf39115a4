// Package grok provides the HTTP client for the x.ai chat-completions API.
package grok

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultBaseURL is the x.ai API root.
	DefaultBaseURL = "https://api.x.ai/v1"
	// DefaultModel is the model used when none is configured.
	DefaultModel = "grok-4-0709"
	// EnvAPIKey names the environment variable holding the API credential.
	EnvAPIKey = "XAI_API_KEY"
	// FinishLength is the finish reason signalling a length-truncated reply.
	FinishLength = "length"
)

// Config configures the client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// DefaultConfig returns a configuration with the stock endpoint, model, and
// the original tool's ten-minute timeout.
func DefaultConfig(apiKey string) *Config {
	return &Config{
		APIKey:  apiKey,
		BaseURL: DefaultBaseURL,
		Model:   DefaultModel,
		Timeout: 600 * time.Second,
	}
}

// Client talks to the chat-completions endpoint.
type Client struct {
	cfg    *Config
	client *http.Client
}

// NewClient creates a client from cfg, filling in endpoint and model defaults.
// The config is copied; the caller's struct is never modified.
func NewClient(cfg *Config) *Client {
	c := *cfg
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	return &Client{
		cfg: &c,
		client: &http.Client{
			Timeout: c.Timeout,
		},
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Message is one entry of the outbound conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the wire shape for a completion call.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// Reply is the decoded first choice of a completion response.
type Reply struct {
	Content      string
	FinishReason string
}

// Truncated reports whether the reply was cut off for length.
func (r *Reply) Truncated() bool {
	return r.FinishReason == FinishLength
}

// APIError is a non-success HTTP response from the API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.Status, e.Body)
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Complete sends one completion request and returns the first choice. A
// non-2xx status yields an *APIError; an undecodable body or an empty choice
// list is an error. The client performs no retries of its own.
func (c *Client) Complete(ctx context.Context, messages []Message, temperature float64, maxTokens int) (*Reply, error) {
	if c.cfg.APIKey == "" {
		return nil, fmt.Errorf("%s not set", EnvAPIKey)
	}

	body, err := json.Marshal(Request{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Body: string(respBody)}
	}

	var decoded chatResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	return &Reply{
		Content:      decoded.Choices[0].Message.Content,
		FinishReason: decoded.Choices[0].FinishReason,
	}, nil
}
