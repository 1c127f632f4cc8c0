// Package narrative talks to an OpenAI-compatible endpoint, typically a
// local ollama server, to produce analyst-style text. Callers treat every
// failure as soft; this client never needs to succeed for the tracker to
// work.
package narrative

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/vedant461/Eurekathon-ChainIQ/internal/config"

	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = "You are a helpful supply chain expert."

type Client struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

func NewClient(cfg config.Config) *Client {
	clientCfg := openai.DefaultConfig(cfg.LLMAPIKey)
	if cfg.LLMBaseURL != "" {
		clientCfg.BaseURL = cfg.LLMBaseURL
	}
	slog.Info("initializing narrative client", "base_url", clientCfg.BaseURL, "model", cfg.LLMModel)
	return &Client{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.LLMModel,
		timeout: cfg.LLMTimeout(),
	}
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: 200,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no completion choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
