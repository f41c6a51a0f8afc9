package store

import (
	"context"
	"database/sql"

	"github.com/AtilaMoura/NIA/internal/domain"
	"github.com/google/uuid"
)

// ModuleStore defines the interface for module data persistence.
type ModuleStore interface {
	// Create saves a new module. Returns ErrInvalidEntity when the owning
	// course does not exist and ErrDuplicate when the (course, index) pair
	// is already taken.
	Create(ctx context.Context, module *domain.Module) error

	// GetByID retrieves a module by its unique ID.
	// Returns ErrModuleNotFound if the module does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Module, error)

	// GetByCourseAndIndex retrieves the module at the given 1-based index
	// within a course. Returns ErrModuleNotFound if no such module exists.
	GetByCourseAndIndex(ctx context.Context, courseID uuid.UUID, moduleIndex int) (*domain.Module, error)

	// ListByCourse retrieves all modules of a course ordered by index.
	ListByCourse(ctx context.Context, courseID uuid.UUID) ([]*domain.Module, error)

	// Update saves changes to an existing module, including the
	// content_generated flag and the attached quiz.
	// Returns ErrModuleNotFound if the module does not exist.
	Update(ctx context.Context, module *domain.Module) error

	// WithTx returns a new ModuleStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) ModuleStore
}
