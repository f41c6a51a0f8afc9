package generation

import (
	"context"
	"encoding/json"
)

// Default sampling parameters, shared by both provider clients.
const (
	DefaultTemperature     float32 = 0.7
	DefaultJSONTemperature float32 = 0.3
	DefaultMaxOutputTokens int32   = 4000
)

// GenerateOptions carries per-call sampling parameters. A nil Temperature
// and a zero MaxOutputTokens are replaced by the defaults above inside the
// provider clients; an explicit 0.0 temperature is passed through as given.
type GenerateOptions struct {
	Temperature     *float32
	MaxOutputTokens int32
}

// Ptr returns a pointer to v, for the optional fields of GenerateOptions.
func Ptr[T any](v T) *T {
	return &v
}

// Provider is the uniform interface to a text-generation backend: one
// prompt in, one generated text out. Implementations make a single attempt
// per call; retry policy, if any, belongs to the caller.
type Provider interface {
	// Generate sends the prompt to the backing model and returns the
	// generated text. It returns an error wrapping ErrProviderFailure on
	// network failure or a non-2xx upstream status.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Name returns the provider identifier (e.g. "gemini", "groq"), used
	// as the generated_by marker on persisted lessons.
	Name() string
}

// JSONProvider is implemented by providers with a native structured-output
// mode. Callers resolve the capability once at construction time with a
// checked type assertion, never per call.
type JSONProvider interface {
	Provider

	// GenerateJSON asks the model for a single JSON object and returns the
	// raw bytes of that object.
	GenerateJSON(ctx context.Context, prompt string, temperature float32) (json.RawMessage, error)
}
