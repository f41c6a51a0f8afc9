package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/AtilaMoura/NIA/internal/agent"
	"github.com/AtilaMoura/NIA/internal/config"
	"github.com/AtilaMoura/NIA/internal/domain"
	"github.com/AtilaMoura/NIA/internal/generation"
	"github.com/AtilaMoura/NIA/internal/platform/gemini"
	"github.com/AtilaMoura/NIA/internal/platform/groq"
)

// readTimeRe matches the machine-readable trailer the lesson prompt requires
// on the last line of every generated lesson body.
var readTimeRe = regexp.MustCompile(`(?m)^\s*estimated_read_time_minutes:\s*(\d+)\s*$`)

// wordsPerMinute is the estimation rate used when the provider omits the
// read-time trailer.
const wordsPerMinute = 200

// LessonContent is the parsed outcome of a single lesson generation: the
// Markdown body with the read-time trailer stripped, plus the metadata that
// makes the lesson complete once persisted.
type LessonContent struct {
	Body              string
	EstimatedReadTime int
	GeneratedBy       string
}

// GeneratedLesson is one fully written lesson inside a one-shot course.
type GeneratedLesson struct {
	Title             string
	Content           string
	EstimatedReadTime int
}

// GeneratedModule is one module of a one-shot course, with all lesson bodies
// written and, optionally, a quiz.
type GeneratedModule struct {
	Index       int
	Title       string
	Description string
	Lessons     []GeneratedLesson
	Quiz        string
}

// GeneratedCourse is the result of the one-shot generation path: everything
// the agents produced, nothing persisted.
type GeneratedCourse struct {
	Title       string
	Description string
	Modules     []GeneratedModule
	Fallback    bool
}

// Orchestrator sequences the agents for one generation request. It holds no
// request state of its own and is cheap to construct, so callers build one
// per request and derive all course state from storage.
type Orchestrator struct {
	provider   generation.Provider
	specialist *agent.Specialist
	context    *agent.Context
	reviewer   *agent.Reviewer
	quiz       *agent.Quiz
	logger     *slog.Logger
}

// New builds an orchestrator for the provider selected by cfg.Provider.
// "gemini" and "groq" select their clients directly; "llama" is an alias
// for groq; anything else falls back to gemini.
func New(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (*Orchestrator, error) {
	if logger == nil {
		logger = slog.Default()
	}

	provider, err := selectProvider(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return NewWithProvider(provider, logger), nil
}

// NewWithProvider builds an orchestrator on an already-constructed provider.
func NewWithProvider(provider generation.Provider, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "orchestrator"))

	return &Orchestrator{
		provider:   provider,
		specialist: agent.NewSpecialist(provider, logger),
		context:    agent.NewContext(provider, logger),
		reviewer:   agent.NewReviewer(provider, logger),
		quiz:       agent.NewQuiz(provider, logger),
		logger:     logger,
	}
}

func selectProvider(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (generation.Provider, error) {
	selector := strings.ToLower(strings.TrimSpace(cfg.Provider))
	switch selector {
	case "groq", "llama":
		return groq.NewClient(logger, cfg)
	case "", gemini.ProviderName:
		return gemini.NewClient(ctx, logger, cfg)
	default:
		logger.Warn("unrecognized provider selector, using gemini",
			slog.String("provider", cfg.Provider))
		return gemini.NewClient(ctx, logger, cfg)
	}
}

// ProviderName reports which provider client this orchestrator drives.
func (o *Orchestrator) ProviderName() string {
	return o.provider.Name()
}

// GenerateCourseStructure asks the specialist for a course blueprint and
// enforces the request's size contract. A structure that parsed but has the
// wrong module count, or any module with the wrong lesson count, is an
// ErrInvalidResponse, never silently resized. The parser's degraded
// placeholder (empty module list) passes through so the caller can persist
// a visibly-empty course instead of failing the request.
func (o *Orchestrator) GenerateCourseStructure(ctx context.Context, req domain.GenerationRequest) (*domain.CourseStructure, error) {
	result, err := o.specialist.GenerateCourseStructure(ctx, req)
	if err != nil {
		return nil, err
	}

	if result.Fallback {
		o.logger.WarnContext(ctx, "structure generation degraded to placeholder",
			slog.String("topic", req.Topic))
		return &result.Structure, nil
	}

	if err := result.Structure.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrInvalidResponse, err)
	}
	if got := len(result.Structure.Modules); got != req.ModuleCount {
		return nil, fmt.Errorf("%w: expected %d modules, got %d",
			generation.ErrInvalidResponse, req.ModuleCount, got)
	}
	for _, mod := range result.Structure.Modules {
		if got := len(mod.Lessons); got != req.LessonsPerModule {
			return nil, fmt.Errorf("%w: module %d: expected %d lessons, got %d",
				generation.ErrInvalidResponse, mod.Index, req.LessonsPerModule, got)
		}
	}

	return &result.Structure, nil
}

// GenerateLesson produces the full body for one lesson: the context agent
// rewrites the identifying strings into an instructional brief, the
// specialist writes the lesson from it, and the read-time trailer is parsed
// off the end. GeneratedBy records the provider that wrote the body.
func (o *Orchestrator) GenerateLesson(ctx context.Context, course, module, lesson string) (*LessonContent, error) {
	brief, err := o.context.Brief(ctx, course, module, lesson)
	if err != nil {
		return nil, err
	}

	raw, err := o.specialist.GenerateLessonContent(ctx, brief, course)
	if err != nil {
		return nil, err
	}

	body, minutes, ok := parseReadTime(raw)
	if !ok {
		minutes = estimateReadTime(body)
		o.logger.WarnContext(ctx, "lesson body missing read-time trailer, estimating",
			slog.String("lesson", lesson),
			slog.Int("estimated_minutes", minutes))
	}

	return &LessonContent{
		Body:              body,
		EstimatedReadTime: minutes,
		GeneratedBy:       o.provider.Name(),
	}, nil
}

// GenerateModuleQuiz produces a quiz over a completed module's combined
// lesson bodies.
func (o *Orchestrator) GenerateModuleQuiz(ctx context.Context, content string) (string, error) {
	return o.quiz.GenerateQuiz(ctx, content)
}

// GenerateCourse is the one-shot path: structure, then every lesson body in
// order (brief, body, review), then a quiz per module when withQuizzes is
// set. Strictly sequential, nothing persisted. A degraded structure result
// yields a course with no modules and Fallback set.
func (o *Orchestrator) GenerateCourse(ctx context.Context, req domain.GenerationRequest, withQuizzes bool) (*GeneratedCourse, error) {
	structure, err := o.GenerateCourseStructure(ctx, req)
	if err != nil {
		return nil, err
	}

	course := &GeneratedCourse{
		Title:       structure.Title,
		Description: structure.Description,
		Fallback:    structure.Title == generation.FallbackTitle && len(structure.Modules) == 0,
	}

	for _, mod := range structure.Modules {
		generated := GeneratedModule{
			Index:       mod.Index,
			Title:       mod.Title,
			Description: mod.Description,
		}

		var moduleBody strings.Builder
		for _, stub := range mod.Lessons {
			content, err := o.GenerateLesson(ctx, structure.Title, mod.Title, stub.Title)
			if err != nil {
				return nil, err
			}

			reviewed, err := o.reviewer.Review(ctx, content.Body)
			if err != nil {
				return nil, err
			}

			generated.Lessons = append(generated.Lessons, GeneratedLesson{
				Title:             stub.Title,
				Content:           reviewed,
				EstimatedReadTime: content.EstimatedReadTime,
			})
			moduleBody.WriteString(reviewed)
			moduleBody.WriteString("\n\n")
		}

		if withQuizzes && len(generated.Lessons) > 0 {
			quiz, err := o.quiz.GenerateQuiz(ctx, moduleBody.String())
			if err != nil {
				return nil, err
			}
			generated.Quiz = quiz
		}

		course.Modules = append(course.Modules, generated)
	}

	return course, nil
}

// parseReadTime extracts the trailing read-time line from a lesson body.
// It returns the body with the trailer removed, the parsed minutes, and
// whether a trailer was found. Only the last occurrence counts; anything a
// lesson legitimately quotes earlier in the text stays untouched.
func parseReadTime(raw string) (string, int, bool) {
	matches := readTimeRe.FindAllStringSubmatchIndex(raw, -1)
	if len(matches) == 0 {
		return strings.TrimSpace(raw), 0, false
	}

	last := matches[len(matches)-1]
	minutes, err := strconv.Atoi(raw[last[2]:last[3]])
	if err != nil || minutes <= 0 {
		return strings.TrimSpace(raw), 0, false
	}

	body := strings.TrimSpace(raw[:last[0]] + raw[last[1]:])
	return body, minutes, true
}

// estimateReadTime derives minutes from the body length at the same rate
// the prompt asks the provider to use. Never below one minute.
func estimateReadTime(body string) int {
	words := len(strings.Fields(body))
	minutes := words / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
