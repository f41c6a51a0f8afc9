package store

import (
	"context"
	"database/sql"

	"github.com/AtilaMoura/NIA/internal/domain"
	"github.com/google/uuid"
)

// LessonStore defines the interface for lesson data persistence.
type LessonStore interface {
	// Create saves a new (typically empty) lesson. Returns ErrInvalidEntity
	// when the owning module does not exist and ErrDuplicate when the
	// (module, index) pair is already taken.
	Create(ctx context.Context, lesson *domain.Lesson) error

	// GetByID retrieves a lesson by its unique ID.
	// Returns ErrLessonNotFound if the lesson does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Lesson, error)

	// ListByModule retrieves all lessons of a module ordered by index.
	ListByModule(ctx context.Context, moduleID uuid.UUID) ([]*domain.Lesson, error)

	// ListIncomplete retrieves the module's incomplete lessons ordered by
	// index, lowest first. The head of the result is the next unit of work
	// for the content phase. Returns an empty slice when the module is
	// fully generated.
	ListIncomplete(ctx context.Context, moduleID uuid.UUID) ([]*domain.Lesson, error)

	// Update saves changes to an existing lesson. A complete lesson never
	// goes back to incomplete; updates that would clear a completeness
	// field return ErrUpdateFailed.
	// Returns ErrLessonNotFound if the lesson does not exist.
	Update(ctx context.Context, lesson *domain.Lesson) error

	// WithTx returns a new LessonStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) LessonStore
}
