package groq_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/AtilaMoura/NIA/internal/config"
	"github.com/AtilaMoura/NIA/internal/generation"
	"github.com/AtilaMoura/NIA/internal/platform/groq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *groq.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := groq.NewClient(testLogger(), config.LLMConfig{
		GroqAPIKey:  "test-key",
		GroqBaseURL: server.URL,
	})
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("rejects missing API key", func(t *testing.T) {
		t.Parallel()

		_, err := groq.NewClient(testLogger(), config.LLMConfig{})
		assert.ErrorIs(t, err, generation.ErrInvalidConfig)
	})

	t.Run("rejects nil logger", func(t *testing.T) {
		t.Parallel()

		_, err := groq.NewClient(nil, config.LLMConfig{GroqAPIKey: "test-key"})
		assert.Error(t, err)
	})

	t.Run("is not a JSON-capable provider", func(t *testing.T) {
		t.Parallel()

		client, err := groq.NewClient(testLogger(), config.LLMConfig{GroqAPIKey: "test-key"})
		require.NoError(t, err)

		_, ok := generation.Provider(client).(generation.JSONProvider)
		assert.False(t, ok)
	})
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	t.Run("sends the chat-completions wire format", func(t *testing.T) {
		t.Parallel()

		var captured struct {
			Model       string `json:"model"`
			Temperature float32
			MaxTokens   int32 `json:"max_tokens"`
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

			_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"texto gerado"}}]}`))
		})

		text, err := client.Generate(context.Background(), "explique vetores", generation.GenerateOptions{})
		require.NoError(t, err)
		assert.Equal(t, "texto gerado", text)

		assert.Equal(t, groq.DefaultModel, captured.Model)
		assert.Equal(t, generation.DefaultTemperature, captured.Temperature)
		assert.Equal(t, generation.DefaultMaxOutputTokens, captured.MaxTokens)
		require.Len(t, captured.Messages, 1)
		assert.Equal(t, "user", captured.Messages[0].Role)
		assert.Equal(t, "explique vetores", captured.Messages[0].Content)
	})

	t.Run("an explicit zero temperature is sent as given", func(t *testing.T) {
		t.Parallel()

		var captured struct {
			Temperature *float32 `json:"temperature"`
		}

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
		})

		_, err := client.Generate(context.Background(), "prompt", generation.GenerateOptions{
			Temperature: generation.Ptr(float32(0)),
		})
		require.NoError(t, err)

		require.NotNil(t, captured.Temperature)
		assert.Equal(t, float32(0), *captured.Temperature)
	})

	t.Run("maps non-2xx status to ProviderError", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"rate limit exceeded"}}`))
		})

		_, err := client.Generate(context.Background(), "prompt", generation.GenerateOptions{})
		require.Error(t, err)
		assert.ErrorIs(t, err, generation.ErrProviderFailure)

		var provErr *generation.ProviderError
		require.ErrorAs(t, err, &provErr)
		assert.Equal(t, http.StatusTooManyRequests, provErr.StatusCode)
		assert.Equal(t, "rate limit exceeded", provErr.Message)
	})

	t.Run("maps empty choices to ErrInvalidResponse", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		})

		_, err := client.Generate(context.Background(), "prompt", generation.GenerateOptions{})
		assert.ErrorIs(t, err, generation.ErrInvalidResponse)
	})

	t.Run("maps connection failure to ProviderError", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.NotFoundHandler())
		serverURL := server.URL
		server.Close() // connections now refused

		client, err := groq.NewClient(testLogger(), config.LLMConfig{
			GroqAPIKey:  "test-key",
			GroqBaseURL: serverURL,
		})
		require.NoError(t, err)

		_, err = client.Generate(context.Background(), "prompt", generation.GenerateOptions{})
		assert.ErrorIs(t, err, generation.ErrProviderFailure)
	})
}
