// Package openai implements the completion collaborator against an
// OpenAI-compatible chat-completions endpoint.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"ai-chef-server/internal/core/ai"
	"ai-chef-server/internal/infrastructure/config"
	"ai-chef-server/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client talks to the chat-completions API.
type Client struct {
	config *config.Config
	client *resty.Client
}

// Compile-time interface check.
var _ ai.Completer = (*Client)(nil)

// NewClient creates a chat-completions client.
func NewClient(cfg *config.Config) *Client {
	client := resty.New().
		SetBaseURL(cfg.OpenAI.BaseURL).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.OpenAI.APIKey)).
		SetTimeout(cfg.OpenAI.Timeout)

	return &Client{
		config: cfg,
		client: client,
	}
}

// Complete sends the transcript and returns the single completion text.
func (c *Client) Complete(ctx context.Context, messages []ai.Message) (string, error) {
	req := map[string]interface{}{
		"model":      c.config.OpenAI.Model,
		"messages":   messages,
		"max_tokens": c.config.OpenAI.MaxTokens,
	}

	common.LogDebug("sending completion request",
		zap.String("model", c.config.OpenAI.Model),
		zap.Int("messages", len(messages)),
	)

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/chat/completions")

	if err != nil {
		return "", fmt.Errorf("failed to send completion request: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("completion API returned error: %s", resp.String())
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("failed to parse completion response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in completion response")
	}

	content := result.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("empty content in completion response")
	}

	return content, nil
}
