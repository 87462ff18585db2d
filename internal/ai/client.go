package ai

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
}

// Client wraps the chat-completion API. All public operations absorb
// upstream failures and return static fallback content instead of errors.
type Client struct {
	api   *openai.Client
	model string
	log   zerolog.Logger
}

func NewClient(cfg Config, log zerolog.Logger) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	return &Client{
		api:   openai.NewClientWithConfig(apiCfg),
		model: cfg.Model,
		log:   log.With().Str("component", "ai-client").Logger(),
	}
}

func (c *Client) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	req.Model = c.model

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
