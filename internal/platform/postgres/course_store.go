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

// PostgresCourseStore implements the store.CourseStore interface using a
// PostgreSQL database as the storage backend.
type PostgresCourseStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCourseStore creates a new PostgreSQL implementation of the
// CourseStore interface. The database connection or transaction is managed
// by the caller. If logger is nil, a default logger will be used.
func NewPostgresCourseStore(db store.DBTX, logger *slog.Logger) *PostgresCourseStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCourseStore{
		db:     db,
		logger: logger.With(slog.String("component", "course_store")),
	}
}

// Ensure PostgresCourseStore implements store.CourseStore interface
var _ store.CourseStore = (*PostgresCourseStore)(nil)

// WithTx implements store.CourseStore.WithTx
func (s *PostgresCourseStore) WithTx(tx *sql.Tx) store.CourseStore {
	return &PostgresCourseStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.CourseStore.Create
// It saves a new course, including the write-once structure snapshot.
func (s *PostgresCourseStore) Create(ctx context.Context, course *domain.Course) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := course.Validate(); err != nil {
		log.Warn("course validation failed during create",
			slog.String("error", err.Error()),
			slog.String("course_id", course.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO courses (id, title, description, level, modules_count, structure, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		course.ID,
		course.Title,
		course.Description,
		course.Level,
		course.ModulesCount,
		course.Structure,
		course.Status,
		course.CreatedAt,
		course.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create course",
			slog.String("error", err.Error()),
			slog.String("course_id", course.ID.String()))
		return MapError(err)
	}

	log.Info("course created",
		slog.String("course_id", course.ID.String()),
		slog.String("title", course.Title),
		slog.Int("modules_count", course.ModulesCount))
	return nil
}

// GetByID implements store.CourseStore.GetByID
// Returns store.ErrCourseNotFound if the course does not exist.
func (s *PostgresCourseStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, title, description, level, modules_count, structure, status, created_at, updated_at
		FROM courses
		WHERE id = $1
	`

	var course domain.Course
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&course.ID,
		&course.Title,
		&course.Description,
		&course.Level,
		&course.ModulesCount,
		&course.Structure,
		&course.Status,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("course not found", slog.String("course_id", id.String()))
			return nil, store.ErrCourseNotFound
		}
		log.Error("failed to get course",
			slog.String("error", err.Error()),
			slog.String("course_id", id.String()))
		return nil, MapError(err)
	}

	return &course, nil
}

// List implements store.CourseStore.List
// Courses come back newest first.
func (s *PostgresCourseStore) List(ctx context.Context, limit, offset int) ([]*domain.Course, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, title, description, level, modules_count, structure, status, created_at, updated_at
		FROM courses
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		log.Error("failed to list courses", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	courses := make([]*domain.Course, 0)
	for rows.Next() {
		var course domain.Course
		if err := rows.Scan(
			&course.ID,
			&course.Title,
			&course.Description,
			&course.Level,
			&course.ModulesCount,
			&course.Structure,
			&course.Status,
			&course.CreatedAt,
			&course.UpdatedAt,
		); err != nil {
			log.Error("failed to scan course row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		courses = append(courses, &course)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return courses, nil
}

// UpdateStatus implements store.CourseStore.UpdateStatus
func (s *PostgresCourseStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.CourseStatus) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE courses
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := s.db.ExecContext(ctx, query, status, id)
	if err != nil {
		log.Error("failed to update course status",
			slog.String("error", err.Error()),
			slog.String("course_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "course"); err != nil {
		return store.ErrCourseNotFound
	}

	log.Info("course status updated",
		slog.String("course_id", id.String()),
		slog.String("status", string(status)))
	return nil
}

// Delete implements store.CourseStore.Delete
// The ON DELETE CASCADE constraints take the course's modules and lessons
// down with it.
func (s *PostgresCourseStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete course",
			slog.String("error", err.Error()),
			slog.String("course_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "course"); err != nil {
		return store.ErrCourseNotFound
	}

	log.Info("course deleted", slog.String("course_id", id.String()))
	return nil
}
