package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	sdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Config describes an OpenAI-compatible Chat Completions endpoint. An empty
// BaseURL targets api.openai.com.
type Config struct {
	APIKey          string
	BaseURL         string
	Model           string
	MaxOutputTokens int64
	Temperature     float64
	HTTPClient      *http.Client
}

type Client struct {
	client      sdk.Client
	model       string
	maxTokens   int64
	temperature float64
}

func New(cfg Config) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithMaxRetries(0),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	if baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL+"/"))
	}
	return &Client{
		client:      sdk.NewClient(opts...),
		model:       strings.TrimSpace(cfg.Model),
		maxTokens:   cfg.MaxOutputTokens,
		temperature: cfg.Temperature,
	}
}

func (c *Client) Name() string { return "openai" }

// Check confirms the key is accepted and the configured model is visible.
func (c *Client) Check(ctx context.Context) error {
	if _, err := c.client.Models.Get(ctx, c.model); err != nil {
		return fmt.Errorf("get model %q: %w", c.model, err)
	}
	return nil
}

// Generate sends prompt as a single user message and returns the first
// choice's trimmed content.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	params := sdk.ChatCompletionNewParams{
		Model:       sdk.ChatModel(c.model),
		Temperature: sdk.Float(c.temperature),
		Messages: []sdk.ChatCompletionMessageParamUnion{
			sdk.UserMessage(prompt),
		},
	}
	if c.maxTokens > 0 {
		params.MaxCompletionTokens = sdk.Int(c.maxTokens)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("missing choices")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("missing choices[0].message.content")
	}
	return content, nil
}
