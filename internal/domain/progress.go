package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ProgressStatus represents a learner's state within one module.
type ProgressStatus string

// Possible progress status values.
const (
	ProgressStatusNotStarted ProgressStatus = "not_started"
	ProgressStatusInProgress ProgressStatus = "in_progress"
	ProgressStatusCompleted  ProgressStatus = "completed"
	ProgressStatusFailed     ProgressStatus = "failed"
)

// Common validation errors for Progress.
var (
	ErrEmptyProgressID        = errors.New("progress ID cannot be empty")
	ErrEmptyProgressUserID    = errors.New("progress user ID cannot be empty")
	ErrEmptyProgressCourseID  = errors.New("progress course ID cannot be empty")
	ErrEmptyProgressModuleID  = errors.New("progress module ID cannot be empty")
	ErrInvalidProgressStatus  = errors.New("invalid progress status")
	ErrInvalidQuizScore       = errors.New("quiz score must be between 0 and 100")
	ErrInvalidTimeSpent       = errors.New("time spent cannot be negative")
)

// Progress records how far a learner has advanced through one module of a
// course, including quiz outcomes.
type Progress struct {
	ID               uuid.UUID      `json:"id"`
	UserID           uuid.UUID      `json:"user_id"`
	CourseID         uuid.UUID      `json:"course_id"`
	ModuleID         uuid.UUID      `json:"module_id"`
	Status           ProgressStatus `json:"status"`
	QuizAttempts     int            `json:"quiz_attempts"`
	QuizScore        *int           `json:"quiz_score,omitempty"`
	QuizPassed       bool           `json:"quiz_passed"`
	TimeSpentMinutes int            `json:"time_spent_minutes"`
	StartedAt        *time.Time     `json:"started_at,omitempty"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// NewProgress creates a not-started Progress record for a learner and module.
func NewProgress(userID, courseID, moduleID uuid.UUID) (*Progress, error) {
	progress := &Progress{
		ID:        uuid.New(),
		UserID:    userID,
		CourseID:  courseID,
		ModuleID:  moduleID,
		Status:    ProgressStatusNotStarted,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := progress.Validate(); err != nil {
		return nil, err
	}
	return progress, nil
}

// Validate checks if the Progress has valid data.
func (p *Progress) Validate() error {
	if p.ID == uuid.Nil {
		return ErrEmptyProgressID
	}
	if p.UserID == uuid.Nil {
		return ErrEmptyProgressUserID
	}
	if p.CourseID == uuid.Nil {
		return ErrEmptyProgressCourseID
	}
	if p.ModuleID == uuid.Nil {
		return ErrEmptyProgressModuleID
	}
	if !isValidProgressStatus(p.Status) {
		return ErrInvalidProgressStatus
	}
	if p.QuizScore != nil && (*p.QuizScore < 0 || *p.QuizScore > 100) {
		return ErrInvalidQuizScore
	}
	if p.TimeSpentMinutes < 0 {
		return ErrInvalidTimeSpent
	}
	return nil
}

// UpdateStatus moves the progress record to a new status, stamping the
// started/completed timestamps on the corresponding transitions.
func (p *Progress) UpdateStatus(status ProgressStatus) error {
	if !isValidProgressStatus(status) {
		return ErrInvalidProgressStatus
	}

	now := time.Now().UTC()
	if status == ProgressStatusInProgress && p.StartedAt == nil {
		p.StartedAt = &now
	}
	if status == ProgressStatusCompleted {
		p.CompletedAt = &now
	}

	p.Status = status
	p.UpdatedAt = now
	return nil
}

// isValidProgressStatus checks if the given status is a valid ProgressStatus.
func isValidProgressStatus(status ProgressStatus) bool {
	switch status {
	case ProgressStatusNotStarted, ProgressStatusInProgress,
		ProgressStatusCompleted, ProgressStatusFailed:
		return true
	default:
		return false
	}
}
