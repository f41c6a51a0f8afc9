package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/AtilaMoura/NIA/internal/generation"
)

// briefPromptData feeds the context_brief template.
type briefPromptData struct {
	Info string
}

// briefEnvelope is the small JSON document the context agent asks the
// provider to interpret.
type briefEnvelope struct {
	Course  string `json:"course"`
	Module  string `json:"module"`
	Lessons string `json:"lessons"`
}

// Context rewrites raw identifying strings (course, module, lesson titles)
// into a rich English instructional brief for the specialist. This is a
// prompt-rewriting indirection step, not a content-generation step: the
// brief itself instructs the downstream agent to answer in Brazilian
// Portuguese.
type Context struct {
	base
}

// NewContext creates the brief-writing agent on top of provider.
func NewContext(provider generation.Provider, logger *slog.Logger) *Context {
	return &Context{base: newBase(provider, logger, "context")}
}

// Brief serializes the three identifying strings into a JSON envelope and
// asks the provider to rewrite them into an instructional brief.
func (c *Context) Brief(ctx context.Context, course, module, lessons string) (string, error) {
	info, err := json.MarshalIndent(briefEnvelope{
		Course:  course,
		Module:  module,
		Lessons: lessons,
	}, "", "    ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal brief envelope: %w", err)
	}

	c.logger.DebugContext(ctx, "building lesson brief",
		slog.String("course", course),
		slog.String("module", module))

	return c.run(ctx, "context_brief.tmpl", briefPromptData{Info: string(info)}, generation.GenerateOptions{})
}
