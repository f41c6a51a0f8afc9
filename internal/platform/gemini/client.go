package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AtilaMoura/NIA/internal/config"
	"github.com/AtilaMoura/NIA/internal/generation"
	"google.golang.org/genai"
)

// ProviderName identifies this client in errors and generated_by markers.
const ProviderName = "gemini"

// DefaultModel is the fast-tier model used when the configuration does not
// name one.
const DefaultModel = "gemini-2.5-flash"

// defaultTimeout bounds a single Gemini call. The upstream SDK has no
// request timeout of its own, so an unset configuration would leave calls
// effectively unbounded.
const defaultTimeout = 120 * time.Second

// Client implements generation.Provider and generation.JSONProvider using
// Google's Gemini API.
type Client struct {
	logger  *slog.Logger
	client  *genai.Client
	model   string
	timeout time.Duration
}

// Interface guards.
var (
	_ generation.Provider     = (*Client)(nil)
	_ generation.JSONProvider = (*Client)(nil)
)

// NewClient creates a Gemini-backed provider client. A missing API key is a
// fatal configuration error, surfaced here rather than on first call.
func NewClient(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	model := cfg.GeminiModel
	if model == "" {
		model = DefaultModel
	}

	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return &Client{
		logger:  logger.With(slog.String("component", "gemini_client")),
		client:  client,
		model:   model,
		timeout: timeout,
	}, nil
}

// Name implements generation.Provider.
func (c *Client) Name() string {
	return ProviderName
}

// Generate implements generation.Provider. It makes a single attempt; a
// failed call is reported as a ProviderError and retrying is left to the
// caller.
func (c *Client) Generate(ctx context.Context, prompt string, opts generation.GenerateOptions) (string, error) {
	temperature := generation.DefaultTemperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}
	maxTokens := opts.MaxOutputTokens
	if maxTokens == 0 {
		maxTokens = generation.DefaultMaxOutputTokens
	}

	return c.generate(ctx, prompt, &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(temperature),
		MaxOutputTokens: maxTokens,
	})
}

// GenerateJSON implements generation.JSONProvider using Gemini's native
// structured-output mode. The temperature is used as given, including 0.0.
func (c *Client) GenerateJSON(ctx context.Context, prompt string, temperature float32) (json.RawMessage, error) {
	text, err := c.generate(ctx, prompt, &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(temperature),
		MaxOutputTokens:  generation.DefaultMaxOutputTokens,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, err
	}

	var value json.RawMessage
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return nil, fmt.Errorf("%w: JSON mode returned unparseable payload: %v",
			generation.ErrInvalidResponse, err)
	}
	return value, nil
}

func (c *Client) generate(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.logger.DebugContext(ctx, "calling Gemini API",
		slog.String("model", c.model),
		slog.Int("prompt_length", len(prompt)))

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		c.logger.ErrorContext(ctx, "Gemini API call failed", slog.String("error", err.Error()))
		return "", &generation.ProviderError{Provider: ProviderName, Err: err}
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: empty candidate text", generation.ErrInvalidResponse)
	}

	c.logger.DebugContext(ctx, "Gemini API call succeeded",
		slog.Int("response_length", len(text)))
	return text, nil
}
