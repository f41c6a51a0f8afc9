package generation

import (
	"errors"
	"fmt"
)

// Common errors returned by the generation pipeline.
var (
	// ErrInvalidConfig is returned when a provider client is constructed
	// with invalid configuration, most notably a missing API credential.
	// This is a fatal startup error, not a retryable one.
	ErrInvalidConfig = errors.New("invalid provider configuration")

	// ErrProviderFailure is returned when a provider call fails: network
	// error, non-2xx upstream status, or a malformed request.
	ErrProviderFailure = errors.New("provider request failed")

	// ErrInvalidResponse is returned when a provider call succeeds but the
	// payload is unusable, e.g. a parsed course structure whose module or
	// lesson counts differ from the request.
	ErrInvalidResponse = errors.New("invalid response from language model")
)

// ProviderError carries the upstream detail of a failed provider call.
// It matches ErrProviderFailure under errors.Is.
type ProviderError struct {
	// Provider is the client identifier ("gemini", "groq").
	Provider string
	// StatusCode is the upstream HTTP status, 0 when the request never
	// reached the provider.
	StatusCode int
	// Message is the upstream error message, when one was returned.
	Message string
	// Err is the underlying transport error, if any.
	Err error
}

// Error implements the error interface for ProviderError.
func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s request failed with status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s request failed: %s", e.Provider, e.Message)
}

// Unwrap supports errors.Is/errors.As on the underlying cause.
func (e *ProviderError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrProviderFailure
}

// Is matches ProviderError against the ErrProviderFailure sentinel.
func (e *ProviderError) Is(target error) bool {
	return target == ErrProviderFailure
}
