package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

type Config struct {
	APIKey          string
	BaseURL         string
	Model           string
	MaxOutputTokens int64
	Temperature     float64
	HTTPClient      *http.Client
}

// Client generates text with the Gemini API.
type Client struct {
	client      *genai.Client
	model       string
	maxTokens   int32
	temperature float32
}

func New(ctx context.Context, cfg Config) (*Client, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:     strings.TrimSpace(cfg.APIKey),
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); baseURL != "" {
		clientCfg.HTTPOptions.BaseURL = baseURL + "/"
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{
		client:      client,
		model:       strings.TrimSpace(cfg.Model),
		maxTokens:   int32(cfg.MaxOutputTokens),
		temperature: float32(cfg.Temperature),
	}, nil
}

func (c *Client) Name() string { return "gemini" }

// Check confirms the key is accepted and the configured model is visible.
func (c *Client) Check(ctx context.Context) error {
	if _, err := c.client.Models.Get(ctx, c.model, nil); err != nil {
		return fmt.Errorf("get model %q: %w", c.model, err)
	}
	return nil
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	genCfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.temperature),
	}
	if c.maxTokens > 0 {
		genCfg.MaxOutputTokens = c.maxTokens
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), genCfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("no text in gemini response")
	}
	return text, nil
}
