package store

import (
	"context"
	"database/sql"

	"github.com/AtilaMoura/NIA/internal/domain"
	"github.com/google/uuid"
)

// ProgressStore defines the interface for learner progress persistence.
type ProgressStore interface {
	// Create saves a new progress record. Returns ErrDuplicate when the
	// learner already has a record for the module.
	Create(ctx context.Context, progress *domain.Progress) error

	// GetByUserAndModule retrieves a learner's progress for one module.
	// Returns ErrProgressNotFound if no record exists.
	GetByUserAndModule(ctx context.Context, userID, moduleID uuid.UUID) (*domain.Progress, error)

	// ListByUserAndCourse retrieves a learner's progress records across a
	// course, ordered by module index.
	ListByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) ([]*domain.Progress, error)

	// Update saves changes to an existing progress record.
	// Returns ErrProgressNotFound if the record does not exist.
	Update(ctx context.Context, progress *domain.Progress) error

	// WithTx returns a new ProgressStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) ProgressStore
}
