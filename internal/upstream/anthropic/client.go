package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type Config struct {
	APIKey          string
	BaseURL         string
	Model           string
	MaxOutputTokens int64
	Temperature     float64
	HTTPClient      *http.Client
}

// Client generates text with the Claude Messages API.
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
	maxTokens := cfg.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Client{
		client:      sdk.NewClient(opts...),
		model:       strings.TrimSpace(cfg.Model),
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
	}
}

func (c *Client) Name() string { return "anthropic" }

// Check confirms the key is accepted and the configured model is visible.
func (c *Client) Check(ctx context.Context) error {
	if _, err := c.client.Models.Get(ctx, c.model, sdk.ModelGetParams{}); err != nil {
		return fmt.Errorf("get model %q: %w", c.model, err)
	}
	return nil
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:       sdk.Model(c.model),
		MaxTokens:   c.maxTokens,
		Temperature: sdk.Float(c.temperature),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", errors.New("no text in anthropic response")
	}
	return text, nil
}
