package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"strings"
	"time"

	cenv "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

var defaultModels = map[string]string{
	ProviderGemini:    "gemini-2.5-flash",
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderAnthropic: "claude-haiku-4-5",
}

type Config struct {
	ListenAddr         string
	Provider           string
	APIKey             string
	BaseURL            string
	Model              string
	MaxOutputTokens    int64
	Temperature        float64
	RequestTimeout     time.Duration
	CategoryTimeout    time.Duration
	SummaryConcurrency int
	MaxTranscriptWords int
	MaxBodyBytes       int64
	LogLevel           string
}

type envConfig struct {
	ListenAddr             string  `env:"LISTEN_ADDR" envDefault:":8080"`
	Provider               string  `env:"LLM_PROVIDER" envDefault:"gemini"`
	APIKey                 string  `env:"LLM_API_KEY"`
	BaseURL                string  `env:"LLM_BASE_URL"`
	Model                  string  `env:"LLM_MODEL"`
	MaxOutputTokens        int64   `env:"LLM_MAX_OUTPUT_TOKENS" envDefault:"2048"`
	Temperature            float64 `env:"LLM_TEMPERATURE" envDefault:"0.2"`
	RequestTimeoutSeconds  int     `env:"REQUEST_TIMEOUT_SECONDS" envDefault:"90"`
	CategoryTimeoutSeconds int     `env:"CATEGORY_TIMEOUT_SECONDS" envDefault:"60"`
	SummaryConcurrency     int     `env:"SUMMARY_CONCURRENCY" envDefault:"1"`
	MaxTranscriptWords     int     `env:"MAX_TRANSCRIPT_WORDS" envDefault:"20000"`
	MaxBodyBytes           int64   `env:"MAX_BODY_BYTES" envDefault:"8388608"`
	LogLevel               string  `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; variables already set win.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var raw envConfig
	if err := cenv.Parse(&raw); err != nil {
		return Config{}, err
	}

	cfg := Config{
		ListenAddr:         strings.TrimSpace(raw.ListenAddr),
		Provider:           strings.ToLower(strings.TrimSpace(raw.Provider)),
		APIKey:             strings.TrimSpace(raw.APIKey),
		BaseURL:            strings.TrimRight(strings.TrimSpace(raw.BaseURL), "/"),
		Model:              strings.TrimSpace(raw.Model),
		MaxOutputTokens:    raw.MaxOutputTokens,
		Temperature:        raw.Temperature,
		RequestTimeout:     time.Duration(raw.RequestTimeoutSeconds) * time.Second,
		CategoryTimeout:    time.Duration(raw.CategoryTimeoutSeconds) * time.Second,
		SummaryConcurrency: raw.SummaryConcurrency,
		MaxTranscriptWords: raw.MaxTranscriptWords,
		MaxBodyBytes:       raw.MaxBodyBytes,
		LogLevel:           strings.ToLower(strings.TrimSpace(raw.LogLevel)),
	}
	if cfg.Model == "" {
		cfg.Model = defaultModels[cfg.Provider]
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("LISTEN_ADDR must not be empty")
	}
	if _, ok := defaultModels[c.Provider]; !ok {
		return fmt.Errorf("LLM_PROVIDER must be one of gemini, openai, anthropic (got %q)", c.Provider)
	}
	if c.APIKey == "" {
		return errors.New("LLM_API_KEY must not be empty")
	}
	if c.Model == "" {
		return errors.New("LLM_MODEL must not be empty")
	}
	if c.MaxOutputTokens <= 0 || c.MaxOutputTokens > math.MaxInt32 {
		return fmt.Errorf("LLM_MAX_OUTPUT_TOKENS must be between 1 and %d", math.MaxInt32)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return errors.New("LLM_TEMPERATURE must be between 0 and 2")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT_SECONDS must be > 0")
	}
	if c.CategoryTimeout <= 0 {
		return errors.New("CATEGORY_TIMEOUT_SECONDS must be > 0")
	}
	if c.SummaryConcurrency <= 0 {
		return errors.New("SUMMARY_CONCURRENCY must be > 0")
	}
	if c.MaxTranscriptWords <= 0 {
		return errors.New("MAX_TRANSCRIPT_WORDS must be > 0")
	}
	if c.MaxBodyBytes <= 0 {
		return errors.New("MAX_BODY_BYTES must be > 0")
	}
	return nil
}
