package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AtilaMoura/NIA/internal/domain"
	"github.com/AtilaMoura/NIA/internal/platform/logger"
	"github.com/AtilaMoura/NIA/internal/store"
	"github.com/google/uuid"
)

// PostgresProgressStore implements the store.ProgressStore interface using
// a PostgreSQL database as the storage backend.
type PostgresProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProgressStore creates a new PostgreSQL implementation of the
// ProgressStore interface. If logger is nil, a default logger will be used.
func NewPostgresProgressStore(db store.DBTX, logger *slog.Logger) *PostgresProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "progress_store")),
	}
}

// Ensure PostgresProgressStore implements store.ProgressStore interface
var _ store.ProgressStore = (*PostgresProgressStore)(nil)

// WithTx implements store.ProgressStore.WithTx
func (s *PostgresProgressStore) WithTx(tx *sql.Tx) store.ProgressStore {
	return &PostgresProgressStore{
		db:     tx,
		logger: s.logger,
	}
}

const progressColumns = `id, user_id, course_id, module_id, status, quiz_attempts, quiz_score, quiz_passed, time_spent_minutes, started_at, completed_at, created_at, updated_at`

func scanProgress(row interface{ Scan(...any) error }) (*domain.Progress, error) {
	var progress domain.Progress
	err := row.Scan(
		&progress.ID,
		&progress.UserID,
		&progress.CourseID,
		&progress.ModuleID,
		&progress.Status,
		&progress.QuizAttempts,
		&progress.QuizScore,
		&progress.QuizPassed,
		&progress.TimeSpentMinutes,
		&progress.StartedAt,
		&progress.CompletedAt,
		&progress.CreatedAt,
		&progress.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// Create implements store.ProgressStore.Create
func (s *PostgresProgressStore) Create(ctx context.Context, progress *domain.Progress) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := progress.Validate(); err != nil {
		log.Warn("progress validation failed during create",
			slog.String("error", err.Error()),
			slog.String("progress_id", progress.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO progress (id, user_id, course_id, module_id, status, quiz_attempts, quiz_score, quiz_passed, time_spent_minutes, started_at, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		progress.ID,
		progress.UserID,
		progress.CourseID,
		progress.ModuleID,
		progress.Status,
		progress.QuizAttempts,
		progress.QuizScore,
		progress.QuizPassed,
		progress.TimeSpentMinutes,
		progress.StartedAt,
		progress.CompletedAt,
		progress.CreatedAt,
		progress.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create progress record",
			slog.String("error", err.Error()),
			slog.String("progress_id", progress.ID.String()))
		return MapError(err)
	}

	log.Debug("progress record created",
		slog.String("progress_id", progress.ID.String()),
		slog.String("module_id", progress.ModuleID.String()))
	return nil
}

// GetByUserAndModule implements store.ProgressStore.GetByUserAndModule
func (s *PostgresProgressStore) GetByUserAndModule(ctx context.Context, userID, moduleID uuid.UUID) (*domain.Progress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + progressColumns + ` FROM progress WHERE user_id = $1 AND module_id = $2`

	progress, err := scanProgress(s.db.QueryRowContext(ctx, query, userID, moduleID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProgressNotFound
		}
		log.Error("failed to get progress",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("module_id", moduleID.String()))
		return nil, MapError(err)
	}
	return progress, nil
}

// ListByUserAndCourse implements store.ProgressStore.ListByUserAndCourse
// Records come back in module index order.
func (s *PostgresProgressStore) ListByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) ([]*domain.Progress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT p.id, p.user_id, p.course_id, p.module_id, p.status, p.quiz_attempts, p.quiz_score, p.quiz_passed, p.time_spent_minutes, p.started_at, p.completed_at, p.created_at, p.updated_at
		FROM progress p
		JOIN modules m ON m.id = p.module_id
		WHERE p.user_id = $1 AND p.course_id = $2
		ORDER BY m.module_index
	`

	rows, err := s.db.QueryContext(ctx, query, userID, courseID)
	if err != nil {
		log.Error("failed to list progress",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("course_id", courseID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]*domain.Progress, 0)
	for rows.Next() {
		progress, err := scanProgress(rows)
		if err != nil {
			log.Error("failed to scan progress row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		records = append(records, progress)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return records, nil
}

// Update implements store.ProgressStore.Update
func (s *PostgresProgressStore) Update(ctx context.Context, progress *domain.Progress) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := progress.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE progress
		SET status = $1, quiz_attempts = $2, quiz_score = $3, quiz_passed = $4, time_spent_minutes = $5, started_at = $6, completed_at = $7, updated_at = $8
		WHERE id = $9
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		progress.Status,
		progress.QuizAttempts,
		progress.QuizScore,
		progress.QuizPassed,
		progress.TimeSpentMinutes,
		progress.StartedAt,
		progress.CompletedAt,
		progress.UpdatedAt,
		progress.ID,
	)
	if err != nil {
		log.Error("failed to update progress",
			slog.String("error", err.Error()),
			slog.String("progress_id", progress.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "progress"); err != nil {
		return store.ErrProgressNotFound
	}

	log.Debug("progress updated",
		slog.String("progress_id", progress.ID.String()),
		slog.String("status", string(progress.Status)))
	return nil
}
