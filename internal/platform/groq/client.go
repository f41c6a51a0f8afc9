package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/AtilaMoura/NIA/internal/config"
	"github.com/AtilaMoura/NIA/internal/generation"
)

// ProviderName identifies this client in errors and generated_by markers.
const ProviderName = "groq"

// Defaults for the OpenAI-compatible endpoint.
const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "llama-3.3-70b-versatile"

	// requestTimeout bounds a single chat-completion call.
	requestTimeout = 120 * time.Second
)

// Client implements generation.Provider against an OpenAI-compatible
// chat-completions API. It has no native JSON mode; structure responses go
// through the tolerant parser instead.
type Client struct {
	logger     *slog.Logger
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
}

// Interface guard.
var _ generation.Provider = (*Client)(nil)

// chatMessage is one entry of the messages array in the wire format.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the request body for POST {base_url}/chat/completions.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int32         `json:"max_tokens"`
}

// chatResponse is the subset of the response body the client reads.
type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// chatErrorResponse is the error envelope returned on non-2xx statuses.
type chatErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewClient creates a Groq-backed provider client. A missing API key is a
// fatal configuration error, surfaced here rather than on first call.
func NewClient(logger *slog.Logger, cfg config.LLMConfig) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GroqAPIKey == "" {
		return nil, fmt.Errorf("%w: groq API key cannot be empty", generation.ErrInvalidConfig)
	}

	baseURL := cfg.GroqBaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.GroqModel
	if model == "" {
		model = DefaultModel
	}

	timeout := requestTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	return &Client{
		logger:     logger.With(slog.String("component", "groq_client")),
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     cfg.GroqAPIKey,
		baseURL:    baseURL,
		model:      model,
	}, nil
}

// Name implements generation.Provider.
func (c *Client) Name() string {
	return ProviderName
}

// Generate implements generation.Provider. A single attempt is made; any
// network failure or non-2xx status becomes a ProviderError carrying the
// upstream detail.
func (c *Client) Generate(ctx context.Context, prompt string, opts generation.GenerateOptions) (string, error) {
	temperature := generation.DefaultTemperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}
	maxTokens := opts.MaxOutputTokens
	if maxTokens == 0 {
		maxTokens = generation.DefaultMaxOutputTokens
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	c.logger.DebugContext(ctx, "calling chat completions API",
		slog.String("model", c.model),
		slog.Int("prompt_length", len(prompt)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "chat completions call failed", slog.String("error", err.Error()))
		return "", &generation.ProviderError{Provider: ProviderName, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &generation.ProviderError{Provider: ProviderName, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := upstreamMessage(payload)
		c.logger.ErrorContext(ctx, "chat completions returned error status",
			slog.Int("status", resp.StatusCode),
			slog.String("message", message))
		return "", &generation.ProviderError{
			Provider:   ProviderName,
			StatusCode: resp.StatusCode,
			Message:    message,
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", fmt.Errorf("%w: failed to decode chat response: %v",
			generation.ErrInvalidResponse, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in chat response", generation.ErrInvalidResponse)
	}

	content := parsed.Choices[0].Message.Content
	c.logger.DebugContext(ctx, "chat completions call succeeded",
		slog.Int("response_length", len(content)))
	return content, nil
}

// upstreamMessage extracts the error message from a non-2xx response body,
// falling back to the raw body when it is not the expected envelope.
func upstreamMessage(payload []byte) string {
	var envelope chatErrorResponse
	if err := json.Unmarshal(payload, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return string(payload)
}
