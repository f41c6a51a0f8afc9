package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Lesson.
var (
	ErrEmptyLessonID       = errors.New("lesson ID cannot be empty")
	ErrEmptyLessonModuleID = errors.New("lesson module ID cannot be empty")
	ErrEmptyLessonTitle    = errors.New("lesson title cannot be empty")
	ErrInvalidLessonIndex  = errors.New("lesson index must be at least 1")
	ErrEmptyLessonContent  = errors.New("generated lesson content cannot be empty")
	ErrEmptyGeneratedBy    = errors.New("generated-by marker cannot be empty")
	ErrInvalidReadTime     = errors.New("estimated read time must be at least 1 minute")
)

// Lesson is the unit of content generation. It is created empty at structure
// time and filled in, one lesson per orchestrator invocation, during the
// content phase. LessonIndex is 1-based and dense within the owning module.
//
// A lesson is complete only when Content, IsApproved, GeneratedBy and
// EstimatedReadTime are all set; that conjunction is the sole gate the
// pipeline consults to pick the next unit of work. A complete lesson never
// transitions back to incomplete.
type Lesson struct {
	ID                uuid.UUID `json:"id"`
	ModuleID          uuid.UUID `json:"module_id"`
	LessonIndex       int       `json:"lesson_index"`
	Title             string    `json:"title"`
	Content           *string   `json:"content,omitempty"`
	IsApproved        bool      `json:"is_approved"`
	GeneratedBy       *string   `json:"generated_by,omitempty"`
	EstimatedReadTime *int      `json:"estimated_read_time_minutes,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewLesson creates an empty (incomplete) Lesson from a structure stub.
func NewLesson(moduleID uuid.UUID, lessonIndex int, title string) (*Lesson, error) {
	lesson := &Lesson{
		ID:          uuid.New(),
		ModuleID:    moduleID,
		LessonIndex: lessonIndex,
		Title:       title,
		IsApproved:  false,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := lesson.Validate(); err != nil {
		return nil, err
	}
	return lesson, nil
}

// Validate checks if the Lesson has valid data.
func (l *Lesson) Validate() error {
	if l.ID == uuid.Nil {
		return ErrEmptyLessonID
	}
	if l.ModuleID == uuid.Nil {
		return ErrEmptyLessonModuleID
	}
	if l.Title == "" {
		return ErrEmptyLessonTitle
	}
	if l.LessonIndex < 1 {
		return ErrInvalidLessonIndex
	}
	return nil
}

// IsComplete reports whether the lesson has passed the completeness gate:
// content present, approved, generation marker set and read time estimated.
func (l *Lesson) IsComplete() bool {
	return l.Content != nil && *l.Content != "" &&
		l.IsApproved &&
		l.GeneratedBy != nil && *l.GeneratedBy != "" &&
		l.EstimatedReadTime != nil && *l.EstimatedReadTime > 0
}

// MarkGenerated sets all four completeness fields at once so the lesson
// moves to complete in a single transition.
func (l *Lesson) MarkGenerated(content, generatedBy string, readTimeMinutes int) error {
	if content == "" {
		return ErrEmptyLessonContent
	}
	if generatedBy == "" {
		return ErrEmptyGeneratedBy
	}
	if readTimeMinutes < 1 {
		return ErrInvalidReadTime
	}

	l.Content = &content
	l.IsApproved = true
	l.GeneratedBy = &generatedBy
	l.EstimatedReadTime = &readTimeMinutes
	l.UpdatedAt = time.Now().UTC()
	return nil
}
