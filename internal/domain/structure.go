package domain

import "errors"

// Level classifies the target audience of a course.
type Level string

// Possible course levels.
const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Default shape of a generated course when the request does not say otherwise.
const (
	DefaultModuleCount      = 3
	DefaultLessonsPerModule = 3
)

// Common validation errors for generation requests and structures.
var (
	ErrEmptyTopic            = errors.New("topic cannot be empty")
	ErrEmptyGoal             = errors.New("goal cannot be empty")
	ErrInvalidLevel          = errors.New("invalid course level")
	ErrInvalidModuleCount    = errors.New("module count must be at least 1")
	ErrInvalidLessonCount    = errors.New("lessons per module must be at least 1")
	ErrEmptyStructureTitle   = errors.New("structure title cannot be empty")
	ErrNonEmptyLessonContent = errors.New("lesson content must be empty at structure time")
)

// GenerationRequest is the immutable input to the structure phase.
type GenerationRequest struct {
	Topic            string `json:"topic"`
	Goal             string `json:"goal"`
	Level            Level  `json:"level"`
	ModuleCount      int    `json:"module_count"`
	LessonsPerModule int    `json:"lessons_per_module"`
}

// NewGenerationRequest builds a validated GenerationRequest, filling in the
// default level and course shape for zero values.
func NewGenerationRequest(topic, goal string, level Level, moduleCount, lessonsPerModule int) (GenerationRequest, error) {
	if level == "" {
		level = LevelBeginner
	}
	if moduleCount == 0 {
		moduleCount = DefaultModuleCount
	}
	if lessonsPerModule == 0 {
		lessonsPerModule = DefaultLessonsPerModule
	}

	req := GenerationRequest{
		Topic:            topic,
		Goal:             goal,
		Level:            level,
		ModuleCount:      moduleCount,
		LessonsPerModule: lessonsPerModule,
	}

	if err := req.Validate(); err != nil {
		return GenerationRequest{}, err
	}
	return req, nil
}

// Validate checks that the request is well-formed.
func (r GenerationRequest) Validate() error {
	if r.Topic == "" {
		return ErrEmptyTopic
	}
	if r.Goal == "" {
		return ErrEmptyGoal
	}
	if !isValidLevel(r.Level) {
		return ErrInvalidLevel
	}
	if r.ModuleCount < 1 {
		return ErrInvalidModuleCount
	}
	if r.LessonsPerModule < 1 {
		return ErrInvalidLessonCount
	}
	return nil
}

// isValidLevel checks if the given level is a known Level.
func isValidLevel(level Level) bool {
	switch level {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	default:
		return false
	}
}

// CourseStructure is the blueprint produced once by the structuring agent.
// Module and lesson counts derived from it are authoritative: later phases
// fill in lesson bodies but never change the shape.
type CourseStructure struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Modules     []ModuleStructure `json:"modules"`
}

// ModuleStructure is one module inside a CourseStructure. Index is 1-based
// and defines ordering within the course.
type ModuleStructure struct {
	Index       int          `json:"index"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Lessons     []LessonStub `json:"lessons"`
}

// LessonStub is a lesson placeholder inside a ModuleStructure. Content is
// always empty at structure time; the content phase fills it in on the
// persisted Lesson row, never on the stored structure snapshot.
type LessonStub struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Validate checks that the structure is internally consistent: a non-empty
// title, dense 1-based module indexes and empty lesson placeholders.
func (s CourseStructure) Validate() error {
	if s.Title == "" {
		return ErrEmptyStructureTitle
	}
	for i, mod := range s.Modules {
		if mod.Index != i+1 {
			return errors.New("module indexes must be dense and 1-based")
		}
		for _, lesson := range mod.Lessons {
			if lesson.Content != "" {
				return ErrNonEmptyLessonContent
			}
		}
	}
	return nil
}
