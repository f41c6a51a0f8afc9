package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// CourseStatus represents the publication state of a course.
type CourseStatus string

// Possible course status values.
const (
	CourseStatusDraft     CourseStatus = "draft"
	CourseStatusPublished CourseStatus = "published"
	CourseStatusArchived  CourseStatus = "archived"
)

// Common validation errors for Course.
var (
	ErrEmptyCourseID        = errors.New("course ID cannot be empty")
	ErrEmptyCourseTitle     = errors.New("course title cannot be empty")
	ErrInvalidCourseStatus  = errors.New("invalid course status")
	ErrEmptyCourseStructure = errors.New("course structure snapshot cannot be empty")
)

// Course is the root of the generated content tree. It owns its Modules
// exclusively (cascade delete). Structure holds the original CourseStructure
// snapshot as produced by the structuring agent; it is written once at
// creation and never mutated afterwards. ModulesCount is fixed at structure
// time and is the contract the content phase must fulfil exactly.
type Course struct {
	ID           uuid.UUID       `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Level        Level           `json:"level"`
	ModulesCount int             `json:"modules_count"`
	Structure    json.RawMessage `json:"structure"`
	Status       CourseStatus    `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewCourse creates a draft Course from a generated structure. The structure
// is serialized and stored as the write-once snapshot.
func NewCourse(structure CourseStructure, level Level) (*Course, error) {
	snapshot, err := json.Marshal(structure)
	if err != nil {
		return nil, err
	}

	course := &Course{
		ID:           uuid.New(),
		Title:        structure.Title,
		Description:  structure.Description,
		Level:        level,
		ModulesCount: len(structure.Modules),
		Structure:    snapshot,
		Status:       CourseStatusDraft,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	if err := course.Validate(); err != nil {
		return nil, err
	}
	return course, nil
}

// Validate checks if the Course has valid data.
func (c *Course) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyCourseID
	}
	if c.Title == "" {
		return ErrEmptyCourseTitle
	}
	if !isValidLevel(c.Level) {
		return ErrInvalidLevel
	}
	if !isValidCourseStatus(c.Status) {
		return ErrInvalidCourseStatus
	}
	if len(c.Structure) == 0 {
		return ErrEmptyCourseStructure
	}
	return nil
}

// isValidCourseStatus checks if the given status is a valid CourseStatus.
func isValidCourseStatus(status CourseStatus) bool {
	switch status {
	case CourseStatusDraft, CourseStatusPublished, CourseStatusArchived:
		return true
	default:
		return false
	}
}
