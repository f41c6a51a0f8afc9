package store

import (
	"context"
	"database/sql"

	"github.com/AtilaMoura/NIA/internal/domain"
	"github.com/google/uuid"
)

// CourseStore defines the interface for course data persistence.
type CourseStore interface {
	// Create saves a new course, including its write-once structure
	// snapshot. Returns validation errors from the domain Course if the
	// data is invalid.
	Create(ctx context.Context, course *domain.Course) error

	// GetByID retrieves a course by its unique ID.
	// Returns ErrCourseNotFound if the course does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error)

	// List retrieves courses ordered by creation time, newest first.
	// Returns an empty slice when no courses exist.
	List(ctx context.Context, limit, offset int) ([]*domain.Course, error)

	// UpdateStatus moves the course to a new publication status.
	// Returns ErrCourseNotFound if the course does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.CourseStatus) error

	// Delete removes a course. Modules and lessons below it go with it
	// (cascade). Returns ErrCourseNotFound if the course does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new CourseStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller,
	// typically a service.
	WithTx(tx *sql.Tx) CourseStore
}
