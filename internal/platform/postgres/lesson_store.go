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

// PostgresLessonStore implements the store.LessonStore interface using a
// PostgreSQL database as the storage backend.
type PostgresLessonStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresLessonStore creates a new PostgreSQL implementation of the
// LessonStore interface. If logger is nil, a default logger will be used.
func NewPostgresLessonStore(db store.DBTX, logger *slog.Logger) *PostgresLessonStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresLessonStore{
		db:     db,
		logger: logger.With(slog.String("component", "lesson_store")),
	}
}

// Ensure PostgresLessonStore implements store.LessonStore interface
var _ store.LessonStore = (*PostgresLessonStore)(nil)

// WithTx implements store.LessonStore.WithTx
func (s *PostgresLessonStore) WithTx(tx *sql.Tx) store.LessonStore {
	return &PostgresLessonStore{
		db:     tx,
		logger: s.logger,
	}
}

const lessonColumns = `id, module_id, lesson_index, title, content, is_approved, generated_by, estimated_read_time_minutes, created_at, updated_at`

func scanLesson(row interface{ Scan(...any) error }) (*domain.Lesson, error) {
	var lesson domain.Lesson
	err := row.Scan(
		&lesson.ID,
		&lesson.ModuleID,
		&lesson.LessonIndex,
		&lesson.Title,
		&lesson.Content,
		&lesson.IsApproved,
		&lesson.GeneratedBy,
		&lesson.EstimatedReadTime,
		&lesson.CreatedAt,
		&lesson.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

// Create implements store.LessonStore.Create
// Returns store.ErrInvalidEntity when the owning module does not exist and
// store.ErrDuplicate when the (module, index) pair is taken.
func (s *PostgresLessonStore) Create(ctx context.Context, lesson *domain.Lesson) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := lesson.Validate(); err != nil {
		log.Warn("lesson validation failed during create",
			slog.String("error", err.Error()),
			slog.String("lesson_id", lesson.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO lessons (id, module_id, lesson_index, title, content, is_approved, generated_by, estimated_read_time_minutes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		lesson.ID,
		lesson.ModuleID,
		lesson.LessonIndex,
		lesson.Title,
		lesson.Content,
		lesson.IsApproved,
		lesson.GeneratedBy,
		lesson.EstimatedReadTime,
		lesson.CreatedAt,
		lesson.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during lesson creation",
				slog.String("lesson_id", lesson.ID.String()),
				slog.String("module_id", lesson.ModuleID.String()))
			return fmt.Errorf("%w: module with ID %s not found",
				store.ErrInvalidEntity, lesson.ModuleID)
		}
		log.Error("failed to create lesson",
			slog.String("error", err.Error()),
			slog.String("lesson_id", lesson.ID.String()))
		return MapError(err)
	}

	log.Debug("lesson created",
		slog.String("lesson_id", lesson.ID.String()),
		slog.String("module_id", lesson.ModuleID.String()),
		slog.Int("lesson_index", lesson.LessonIndex))
	return nil
}

// GetByID implements store.LessonStore.GetByID
func (s *PostgresLessonStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lesson, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE id = $1`

	lesson, err := scanLesson(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrLessonNotFound
		}
		log.Error("failed to get lesson",
			slog.String("error", err.Error()),
			slog.String("lesson_id", id.String()))
		return nil, MapError(err)
	}
	return lesson, nil
}

// ListByModule implements store.LessonStore.ListByModule
// Lessons come back in index order.
func (s *PostgresLessonStore) ListByModule(ctx context.Context, moduleID uuid.UUID) ([]*domain.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE module_id = $1 ORDER BY lesson_index`
	return s.queryLessons(ctx, query, moduleID)
}

// ListIncomplete implements store.LessonStore.ListIncomplete
// The WHERE clause is the completeness predicate negated: a lesson is
// incomplete when any of the four fields is missing. Index order makes the
// head of the result the next unit of work.
func (s *PostgresLessonStore) ListIncomplete(ctx context.Context, moduleID uuid.UUID) ([]*domain.Lesson, error) {
	query := `SELECT ` + lessonColumns + `
		FROM lessons
		WHERE module_id = $1
		  AND (content IS NULL OR content = ''
		       OR is_approved = FALSE
		       OR generated_by IS NULL OR generated_by = ''
		       OR estimated_read_time_minutes IS NULL OR estimated_read_time_minutes <= 0)
		ORDER BY lesson_index`
	return s.queryLessons(ctx, query, moduleID)
}

func (s *PostgresLessonStore) queryLessons(ctx context.Context, query string, args ...any) ([]*domain.Lesson, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query lessons", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	lessons := make([]*domain.Lesson, 0)
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			log.Error("failed to scan lesson row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		lessons = append(lessons, lesson)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return lessons, nil
}

// Update implements store.LessonStore.Update
// A guard in the WHERE clause refuses to take a complete lesson back to
// incomplete; such an update affects zero rows and returns ErrUpdateFailed.
func (s *PostgresLessonStore) Update(ctx context.Context, lesson *domain.Lesson) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := lesson.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE lessons
		SET title = $1, content = $2, is_approved = $3, generated_by = $4, estimated_read_time_minutes = $5, updated_at = $6
		WHERE id = $7
		  AND NOT (
		      content IS NOT NULL AND content <> ''
		      AND is_approved = TRUE
		      AND generated_by IS NOT NULL AND generated_by <> ''
		      AND estimated_read_time_minutes IS NOT NULL AND estimated_read_time_minutes > 0
		      AND ($2::text IS NULL OR $2 = '' OR $3 = FALSE
		           OR $4::text IS NULL OR $4 = ''
		           OR $5::int IS NULL OR $5 <= 0)
		  )
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		lesson.Title,
		lesson.Content,
		lesson.IsApproved,
		lesson.GeneratedBy,
		lesson.EstimatedReadTime,
		lesson.UpdatedAt,
		lesson.ID,
	)
	if err != nil {
		log.Error("failed to update lesson",
			slog.String("error", err.Error()),
			slog.String("lesson_id", lesson.ID.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// Either the lesson does not exist or the update would undo
		// completeness. Distinguish the two for the caller.
		if _, getErr := s.GetByID(ctx, lesson.ID); getErr != nil {
			return store.ErrLessonNotFound
		}
		log.Warn("refused update that would make a complete lesson incomplete",
			slog.String("lesson_id", lesson.ID.String()))
		return fmt.Errorf("%w: complete lessons cannot become incomplete", store.ErrUpdateFailed)
	}

	log.Debug("lesson updated",
		slog.String("lesson_id", lesson.ID.String()),
		slog.Bool("complete", lesson.IsComplete()))
	return nil
}
