package agent

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/AtilaMoura/NIA/internal/domain"
	"github.com/AtilaMoura/NIA/internal/generation"
)

// structurePromptData feeds the course_structure template.
type structurePromptData struct {
	Topic            string
	Goal             string
	Level            domain.Level
	ModuleCount      int
	LessonsPerModule int
}

// lessonPromptData feeds the lesson_content template.
type lessonPromptData struct {
	Brief  string
	Course string
}

// Specialist generates the raw course content: the initial structure and,
// later, full lesson bodies. It is the only agent that benefits from a
// provider with native JSON output, so the capability is resolved here,
// once, at construction.
type Specialist struct {
	base
	jsonProvider generation.JSONProvider // nil when the provider has no JSON mode
}

// NewSpecialist creates the structuring/content agent on top of provider.
func NewSpecialist(provider generation.Provider, logger *slog.Logger) *Specialist {
	jsonProvider, _ := provider.(generation.JSONProvider)
	return &Specialist{
		base:         newBase(provider, logger, "specialist"),
		jsonProvider: jsonProvider,
	}
}

// GenerateCourseStructure asks the provider for a complete course blueprint:
// exactly req.ModuleCount modules of req.LessonsPerModule lessons each, with
// empty lesson content placeholders. When the provider has a native JSON
// mode it is tried first; any JSON-mode failure falls back to plain
// generation plus the tolerant parser. The placeholder branch of the parser
// is reported through the result, never as an error.
func (s *Specialist) GenerateCourseStructure(ctx context.Context, req domain.GenerationRequest) (generation.StructureResult, error) {
	prompt, err := renderPrompt("course_structure.tmpl", structurePromptData{
		Topic:            req.Topic,
		Goal:             req.Goal,
		Level:            req.Level,
		ModuleCount:      req.ModuleCount,
		LessonsPerModule: req.LessonsPerModule,
	})
	if err != nil {
		return generation.StructureResult{}, err
	}

	if s.jsonProvider != nil {
		result, err := s.structureFromJSONMode(ctx, prompt)
		if err == nil {
			return result, nil
		}
		s.logger.WarnContext(ctx, "JSON mode failed, falling back to plain generation",
			slog.String("error", err.Error()))
	}

	text, err := s.provider.Generate(ctx, prompt, generation.GenerateOptions{
		Temperature: generation.Ptr(generation.DefaultJSONTemperature),
	})
	if err != nil {
		return generation.StructureResult{}, err
	}

	return generation.ExtractStructure(text), nil
}

// structureFromJSONMode uses the provider's native structured output.
func (s *Specialist) structureFromJSONMode(ctx context.Context, prompt string) (generation.StructureResult, error) {
	value, err := s.jsonProvider.GenerateJSON(ctx, prompt, generation.DefaultJSONTemperature)
	if err != nil {
		return generation.StructureResult{}, err
	}

	var structure domain.CourseStructure
	if err := json.Unmarshal(value, &structure); err != nil {
		return generation.StructureResult{}, err
	}
	return generation.StructureResult{Structure: structure}, nil
}

// GenerateLessonContent turns a fully-formed natural-language lesson brief
// into a complete Markdown lesson body. The prompt forces Brazilian
// Portuguese output regardless of the brief's language and requires the
// trailing machine-readable read-time line, which the orchestrator parses.
func (s *Specialist) GenerateLessonContent(ctx context.Context, brief, course string) (string, error) {
	return s.run(ctx, "lesson_content.tmpl", lessonPromptData{
		Brief:  brief,
		Course: course,
	}, generation.GenerateOptions{})
}
