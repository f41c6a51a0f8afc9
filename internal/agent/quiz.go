package agent

import (
	"context"
	"log/slog"

	"github.com/AtilaMoura/NIA/internal/generation"
)

// Quiz generates assessment questions from finished course content:
// exactly 10 questions, each with 4 options and exactly one marked correct.
type Quiz struct {
	base
}

// NewQuiz creates the quiz-writing agent on top of provider.
func NewQuiz(provider generation.Provider, logger *slog.Logger) *Quiz {
	return &Quiz{base: newBase(provider, logger, "quiz")}
}

// GenerateQuiz asks the provider for a quiz derived from content.
func (q *Quiz) GenerateQuiz(ctx context.Context, content string) (string, error) {
	return q.run(ctx, "quiz.tmpl", contentPromptData{Content: content}, generation.GenerateOptions{})
}
