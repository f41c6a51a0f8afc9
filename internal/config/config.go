package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// LLMConfig contains the provider selection and per-provider settings for
// the generation pipeline. API keys are explicit values injected into the
// provider client constructors; business logic never reads the environment
// directly. Whether a key is required depends on the selected provider, so
// key presence is validated by the client constructors, not here.
type LLMConfig struct {
	// Provider selects the provider client: "gemini" or "groq" (alias
	// "llama"). Unrecognized values fall back to gemini.
	Provider string `mapstructure:"provider"`

	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	GeminiModel  string `mapstructure:"gemini_model"`

	GroqAPIKey  string `mapstructure:"groq_api_key"`
	GroqModel   string `mapstructure:"groq_model"`
	GroqBaseURL string `mapstructure:"groq_base_url" validate:"omitempty,url"`

	// TimeoutSeconds bounds a single provider call. Zero means the
	// client default (120 s).
	TimeoutSeconds int `mapstructure:"timeout_seconds" validate:"omitempty,gt=0"`
}
