package agent

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"log/slog"
	"text/template"

	"github.com/AtilaMoura/NIA/internal/generation"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

// promptTemplates holds the parsed prompt templates for every agent role.
var promptTemplates = template.Must(template.ParseFS(promptFS, "prompts/*.tmpl"))

// base is the shared core of every agent: one provider, one logger. An
// agent fixes a single responsibility and owns the prompt template for it.
type base struct {
	provider generation.Provider
	logger   *slog.Logger
}

// newBase builds the shared agent core, tagging the logger with the agent role.
func newBase(provider generation.Provider, logger *slog.Logger, role string) base {
	if logger == nil {
		logger = slog.Default()
	}
	return base{
		provider: provider,
		logger:   logger.With(slog.String("agent", role)),
	}
}

// run renders the named prompt template with data and sends it to the provider.
func (a base) run(ctx context.Context, templateName string, data any, opts generation.GenerateOptions) (string, error) {
	prompt, err := renderPrompt(templateName, data)
	if err != nil {
		return "", err
	}

	a.logger.DebugContext(ctx, "sending prompt to provider",
		slog.String("template", templateName),
		slog.Int("prompt_length", len(prompt)))

	return a.provider.Generate(ctx, prompt, opts)
}

// renderPrompt executes the named template into a string.
func renderPrompt(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := promptTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template %s: %w", name, err)
	}
	return buf.String(), nil
}
