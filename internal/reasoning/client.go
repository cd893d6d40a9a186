// Package reasoning wraps an OpenAI-compatible chat completions endpoint
// behind the small set of judgement calls the agent needs: relevance
// filtering, market quality filtering, trade selection, and free-form
// question answering.
package reasoning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to an OpenAI-compatible /chat/completions endpoint.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

// Config holds the reasoning backend settings.
type Config struct {
	BaseURL     string
	ApiKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// New creates a reasoning client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.ApiKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// Model reports the configured model name, for audit records.
func (c *Client) Model() string { return c.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Reply is a raw completion plus the token usage reported by the backend.
type Reply struct {
	Content    string
	TokensUsed int
}

// Complete sends one system+user exchange and returns the assistant reply.
func (c *Client) Complete(ctx context.Context, system, user string) (Reply, error) {
	reqBody := chatRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return Reply{}, fmt.Errorf("reasoning: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return Reply{}, fmt.Errorf("reasoning: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Reply{}, fmt.Errorf("reasoning: http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Reply{}, fmt.Errorf("reasoning: read response: %w", err)
	}

	var decoded chatResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return Reply{}, fmt.Errorf("reasoning: decode response: %w", err)
	}
	if decoded.Error != nil {
		return Reply{}, fmt.Errorf("reasoning: backend error: %s", decoded.Error.Message)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Reply{}, fmt.Errorf("reasoning: HTTP %d", resp.StatusCode)
	}
	if len(decoded.Choices) == 0 {
		return Reply{}, fmt.Errorf("reasoning: empty choices in response")
	}

	return Reply{
		Content:    decoded.Choices[0].Message.Content,
		TokensUsed: decoded.Usage.TotalTokens,
	}, nil
}
