package agent

import (
	"context"
	"log/slog"

	"github.com/AtilaMoura/NIA/internal/generation"
)

// contentPromptData feeds the review and quiz templates.
type contentPromptData struct {
	Content string
}

// Reviewer improves generated course content: a pedagogical rewrite that
// preserves meaning. The response is expected to be the rewritten body
// only, with no commentary.
type Reviewer struct {
	base
}

// NewReviewer creates the reviewing agent on top of provider.
func NewReviewer(provider generation.Provider, logger *slog.Logger) *Reviewer {
	return &Reviewer{base: newBase(provider, logger, "reviewer")}
}

// Review asks the provider for an improved rewrite of content.
func (r *Reviewer) Review(ctx context.Context, content string) (string, error) {
	return r.run(ctx, "review.tmpl", contentPromptData{Content: content}, generation.GenerateOptions{})
}
