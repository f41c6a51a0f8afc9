package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Module.
var (
	ErrEmptyModuleID       = errors.New("module ID cannot be empty")
	ErrEmptyModuleCourseID = errors.New("module course ID cannot be empty")
	ErrEmptyModuleTitle    = errors.New("module title cannot be empty")
	ErrInvalidModuleIndex  = errors.New("module index must be at least 1")
)

// Module is one unit of a course. ModuleIndex is 1-based and dense within
// the owning course. LessonsCount is fixed at structure time.
// ContentGenerated becomes true only after every child Lesson is complete;
// the quiz is attached and the module is published at the same moment.
type Module struct {
	ID               uuid.UUID       `json:"id"`
	CourseID         uuid.UUID       `json:"course_id"`
	ModuleIndex      int             `json:"module_index"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	ContentGenerated bool            `json:"content_generated"`
	LessonsCount     int             `json:"lessons_count"`
	Quiz             json.RawMessage `json:"quiz,omitempty"`
	IsPublished      bool            `json:"is_published"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// NewModule creates a Module from one entry of a course structure.
func NewModule(courseID uuid.UUID, ms ModuleStructure) (*Module, error) {
	module := &Module{
		ID:               uuid.New(),
		CourseID:         courseID,
		ModuleIndex:      ms.Index,
		Title:            ms.Title,
		Description:      ms.Description,
		ContentGenerated: false,
		LessonsCount:     len(ms.Lessons),
		IsPublished:      false,
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}

	if err := module.Validate(); err != nil {
		return nil, err
	}
	return module, nil
}

// Validate checks if the Module has valid data.
func (m *Module) Validate() error {
	if m.ID == uuid.Nil {
		return ErrEmptyModuleID
	}
	if m.CourseID == uuid.Nil {
		return ErrEmptyModuleCourseID
	}
	if m.Title == "" {
		return ErrEmptyModuleTitle
	}
	if m.ModuleIndex < 1 {
		return ErrInvalidModuleIndex
	}
	return nil
}

// MarkGenerated flags the module as fully generated, attaches the quiz and
// publishes the module.
func (m *Module) MarkGenerated(quiz json.RawMessage) {
	m.ContentGenerated = true
	m.IsPublished = true
	m.Quiz = quiz
	m.UpdatedAt = time.Now().UTC()
}
