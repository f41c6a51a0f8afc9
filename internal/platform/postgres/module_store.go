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

// PostgresModuleStore implements the store.ModuleStore interface using a
// PostgreSQL database as the storage backend.
type PostgresModuleStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresModuleStore creates a new PostgreSQL implementation of the
// ModuleStore interface. If logger is nil, a default logger will be used.
func NewPostgresModuleStore(db store.DBTX, logger *slog.Logger) *PostgresModuleStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresModuleStore{
		db:     db,
		logger: logger.With(slog.String("component", "module_store")),
	}
}

// Ensure PostgresModuleStore implements store.ModuleStore interface
var _ store.ModuleStore = (*PostgresModuleStore)(nil)

// WithTx implements store.ModuleStore.WithTx
func (s *PostgresModuleStore) WithTx(tx *sql.Tx) store.ModuleStore {
	return &PostgresModuleStore{
		db:     tx,
		logger: s.logger,
	}
}

const moduleColumns = `id, course_id, module_index, title, description, content_generated, lessons_count, quiz, is_published, created_at, updated_at`

func scanModule(row interface{ Scan(...any) error }) (*domain.Module, error) {
	var module domain.Module
	// quiz is NULL until the module is generated; a NULL cannot be scanned
	// into json.RawMessage directly.
	var quiz []byte
	err := row.Scan(
		&module.ID,
		&module.CourseID,
		&module.ModuleIndex,
		&module.Title,
		&module.Description,
		&module.ContentGenerated,
		&module.LessonsCount,
		&quiz,
		&module.IsPublished,
		&module.CreatedAt,
		&module.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	module.Quiz = quiz
	return &module, nil
}

// Create implements store.ModuleStore.Create
// Returns store.ErrInvalidEntity when the owning course does not exist and
// store.ErrDuplicate when the (course, index) pair is taken.
func (s *PostgresModuleStore) Create(ctx context.Context, module *domain.Module) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := module.Validate(); err != nil {
		log.Warn("module validation failed during create",
			slog.String("error", err.Error()),
			slog.String("module_id", module.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO modules (id, course_id, module_index, title, description, content_generated, lessons_count, quiz, is_published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		module.ID,
		module.CourseID,
		module.ModuleIndex,
		module.Title,
		module.Description,
		module.ContentGenerated,
		module.LessonsCount,
		module.Quiz,
		module.IsPublished,
		module.CreatedAt,
		module.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during module creation",
				slog.String("module_id", module.ID.String()),
				slog.String("course_id", module.CourseID.String()))
			return fmt.Errorf("%w: course with ID %s not found",
				store.ErrInvalidEntity, module.CourseID)
		}
		log.Error("failed to create module",
			slog.String("error", err.Error()),
			slog.String("module_id", module.ID.String()))
		return MapError(err)
	}

	log.Debug("module created",
		slog.String("module_id", module.ID.String()),
		slog.String("course_id", module.CourseID.String()),
		slog.Int("module_index", module.ModuleIndex))
	return nil
}

// GetByID implements store.ModuleStore.GetByID
func (s *PostgresModuleStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Module, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + moduleColumns + ` FROM modules WHERE id = $1`

	module, err := scanModule(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrModuleNotFound
		}
		log.Error("failed to get module",
			slog.String("error", err.Error()),
			slog.String("module_id", id.String()))
		return nil, MapError(err)
	}
	return module, nil
}

// GetByCourseAndIndex implements store.ModuleStore.GetByCourseAndIndex
func (s *PostgresModuleStore) GetByCourseAndIndex(ctx context.Context, courseID uuid.UUID, moduleIndex int) (*domain.Module, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + moduleColumns + ` FROM modules WHERE course_id = $1 AND module_index = $2`

	module, err := scanModule(s.db.QueryRowContext(ctx, query, courseID, moduleIndex))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("module not found",
				slog.String("course_id", courseID.String()),
				slog.Int("module_index", moduleIndex))
			return nil, store.ErrModuleNotFound
		}
		log.Error("failed to get module by course and index",
			slog.String("error", err.Error()),
			slog.String("course_id", courseID.String()))
		return nil, MapError(err)
	}
	return module, nil
}

// ListByCourse implements store.ModuleStore.ListByCourse
// Modules come back in index order.
func (s *PostgresModuleStore) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]*domain.Module, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + moduleColumns + ` FROM modules WHERE course_id = $1 ORDER BY module_index`

	rows, err := s.db.QueryContext(ctx, query, courseID)
	if err != nil {
		log.Error("failed to list modules",
			slog.String("error", err.Error()),
			slog.String("course_id", courseID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	modules := make([]*domain.Module, 0)
	for rows.Next() {
		module, err := scanModule(rows)
		if err != nil {
			log.Error("failed to scan module row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		modules = append(modules, module)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return modules, nil
}

// Update implements store.ModuleStore.Update
// ModuleIndex, LessonsCount and CourseID are frozen at structure time and
// deliberately excluded from the update.
func (s *PostgresModuleStore) Update(ctx context.Context, module *domain.Module) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := module.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE modules
		SET title = $1, description = $2, content_generated = $3, quiz = $4, is_published = $5, updated_at = $6
		WHERE id = $7
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		module.Title,
		module.Description,
		module.ContentGenerated,
		module.Quiz,
		module.IsPublished,
		module.UpdatedAt,
		module.ID,
	)
	if err != nil {
		log.Error("failed to update module",
			slog.String("error", err.Error()),
			slog.String("module_id", module.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "module"); err != nil {
		return store.ErrModuleNotFound
	}

	log.Debug("module updated",
		slog.String("module_id", module.ID.String()),
		slog.Bool("content_generated", module.ContentGenerated))
	return nil
}
