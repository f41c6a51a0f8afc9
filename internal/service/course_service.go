package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AtilaMoura/NIA/internal/domain"
	"github.com/AtilaMoura/NIA/internal/orchestrator"
	"github.com/AtilaMoura/NIA/internal/store"
	"github.com/google/uuid"
)

// Generator is the slice of the orchestrator the course service drives.
// The orchestrator is stateless, so a fresh one is built per request
// through GeneratorFactory.
type Generator interface {
	GenerateCourseStructure(ctx context.Context, req domain.GenerationRequest) (*domain.CourseStructure, error)
	GenerateLesson(ctx context.Context, course, module, lesson string) (*orchestrator.LessonContent, error)
	GenerateModuleQuiz(ctx context.Context, content string) (string, error)
	GenerateCourse(ctx context.Context, req domain.GenerationRequest, withQuizzes bool) (*orchestrator.GeneratedCourse, error)
}

// GeneratorFactory builds a Generator for one request.
type GeneratorFactory func(ctx context.Context) (Generator, error)

// GenerateLessonResult reports what one content-phase invocation did: the
// lesson that was generated, and whether it was the module's last one.
type GenerateLessonResult struct {
	Lesson          *domain.Lesson `json:"lesson"`
	ModuleCompleted bool           `json:"module_completed"`
}

// ModuleDetail is a module with its lessons, as returned by GetCourse.
type ModuleDetail struct {
	Module  *domain.Module   `json:"module"`
	Lessons []*domain.Lesson `json:"lessons"`
}

// CourseDetail is a course with its full content tree.
type CourseDetail struct {
	Course  *domain.Course  `json:"course"`
	Modules []*ModuleDetail `json:"modules"`
}

// CourseService exposes the generation workflow: structure creation,
// incremental lesson generation (the resume protocol), the one-shot legacy
// path, and the reads the API serves.
type CourseService interface {
	// CreateCourse runs the structure phase: one structuring call, then one
	// transaction persisting the course, its modules and its empty lessons.
	// A provider failure leaves the database untouched.
	CreateCourse(ctx context.Context, req domain.GenerationRequest) (*domain.Course, error)

	// GenerateNextLesson runs one step of the content phase: it picks the
	// lowest-index incomplete lesson of the module and generates exactly
	// that one. When the module's last lesson completes, the module is
	// flagged content_generated and published with its quiz attached; when
	// it was the course's last module, the course itself moves to
	// published. Invoking it repeatedly until ErrModuleAlreadyGenerated is
	// the resume protocol.
	GenerateNextLesson(ctx context.Context, courseID uuid.UUID, moduleIndex int) (*GenerateLessonResult, error)

	// GenerateCourseOneShot runs the whole pipeline in a single call and
	// returns the generated blobs without persisting anything.
	GenerateCourseOneShot(ctx context.Context, req domain.GenerationRequest, withQuizzes bool) (*orchestrator.GeneratedCourse, error)

	// GetCourse loads a course with its modules and lessons.
	GetCourse(ctx context.Context, courseID uuid.UUID) (*CourseDetail, error)

	// ListCourses pages through courses, newest first.
	ListCourses(ctx context.Context, limit, offset int) ([]*domain.Course, error)

	// DeleteCourse removes a course and, through cascade, everything under it.
	DeleteCourse(ctx context.Context, courseID uuid.UUID) error
}

// CourseServiceError wraps errors from the course service with context.
type CourseServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for CourseServiceError.
func (e *CourseServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("course service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("course service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *CourseServiceError) Unwrap() error {
	return e.Err
}

// NewCourseServiceError creates a new CourseServiceError. Known sentinel
// errors, service-level or store-level, come back unwrapped so callers can
// match them directly.
func NewCourseServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrCourseNotFound), errors.Is(err, store.ErrCourseNotFound):
		return ErrCourseNotFound
	case errors.Is(err, ErrModuleNotFound), errors.Is(err, store.ErrModuleNotFound):
		return ErrModuleNotFound
	case errors.Is(err, ErrLessonNotFound), errors.Is(err, store.ErrLessonNotFound):
		return ErrLessonNotFound
	case errors.Is(err, ErrModuleAlreadyGenerated):
		return ErrModuleAlreadyGenerated
	}

	return &CourseServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// courseServiceImpl implements the CourseService interface.
type courseServiceImpl struct {
	db           *sql.DB
	courseStore  store.CourseStore
	moduleStore  store.ModuleStore
	lessonStore  store.LessonStore
	newGenerator GeneratorFactory
	logger       *slog.Logger
}

// NewCourseService creates a new CourseService. It returns an error if any
// of the required dependencies are nil.
func NewCourseService(
	db *sql.DB,
	courseStore store.CourseStore,
	moduleStore store.ModuleStore,
	lessonStore store.LessonStore,
	newGenerator GeneratorFactory,
	logger *slog.Logger,
) (CourseService, error) {
	if db == nil {
		return nil, &CourseServiceError{Operation: "create_service", Message: "db cannot be nil"}
	}
	if courseStore == nil {
		return nil, &CourseServiceError{Operation: "create_service", Message: "courseStore cannot be nil"}
	}
	if moduleStore == nil {
		return nil, &CourseServiceError{Operation: "create_service", Message: "moduleStore cannot be nil"}
	}
	if lessonStore == nil {
		return nil, &CourseServiceError{Operation: "create_service", Message: "lessonStore cannot be nil"}
	}
	if newGenerator == nil {
		return nil, &CourseServiceError{Operation: "create_service", Message: "newGenerator cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &courseServiceImpl{
		db:           db,
		courseStore:  courseStore,
		moduleStore:  moduleStore,
		lessonStore:  lessonStore,
		newGenerator: newGenerator,
		logger:       logger.With(slog.String("component", "course_service")),
	}, nil
}

// CreateCourse implements CourseService.CreateCourse
func (s *courseServiceImpl) CreateCourse(ctx context.Context, req domain.GenerationRequest) (*domain.Course, error) {
	gen, err := s.newGenerator(ctx)
	if err != nil {
		return nil, NewCourseServiceError("create_course", "failed to build generator", err)
	}

	structure, err := gen.GenerateCourseStructure(ctx, req)
	if err != nil {
		return nil, NewCourseServiceError("create_course", "structure generation failed", err)
	}

	course, err := domain.NewCourse(*structure, req.Level)
	if err != nil {
		return nil, NewCourseServiceError("create_course", "invalid generated course", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.courseStore.WithTx(tx).Create(ctx, course); err != nil {
			return err
		}

		moduleStore := s.moduleStore.WithTx(tx)
		lessonStore := s.lessonStore.WithTx(tx)
		for _, ms := range structure.Modules {
			module, err := domain.NewModule(course.ID, ms)
			if err != nil {
				return err
			}
			if err := moduleStore.Create(ctx, module); err != nil {
				return err
			}

			for i, stub := range ms.Lessons {
				lesson, err := domain.NewLesson(module.ID, i+1, stub.Title)
				if err != nil {
					return err
				}
				if err := lessonStore.Create(ctx, lesson); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, NewCourseServiceError("create_course", "failed to persist course tree", err)
	}

	s.logger.InfoContext(ctx, "course created",
		slog.String("course_id", course.ID.String()),
		slog.String("title", course.Title),
		slog.Int("modules", course.ModulesCount))
	return course, nil
}

// GenerateNextLesson implements CourseService.GenerateNextLesson
func (s *courseServiceImpl) GenerateNextLesson(ctx context.Context, courseID uuid.UUID, moduleIndex int) (*GenerateLessonResult, error) {
	course, err := s.courseStore.GetByID(ctx, courseID)
	if err != nil {
		return nil, NewCourseServiceError("generate_next_lesson", "failed to load course", err)
	}

	module, err := s.moduleStore.GetByCourseAndIndex(ctx, courseID, moduleIndex)
	if err != nil {
		return nil, NewCourseServiceError("generate_next_lesson", "failed to load module", err)
	}

	if module.ContentGenerated {
		return nil, ErrModuleAlreadyGenerated
	}

	incomplete, err := s.lessonStore.ListIncomplete(ctx, module.ID)
	if err != nil {
		return nil, NewCourseServiceError("generate_next_lesson", "failed to list incomplete lessons", err)
	}
	if len(incomplete) == 0 {
		// Every lesson completed but the module flag never flipped, which
		// happens when a previous invocation was interrupted between the
		// lesson update and the module update. Finish the job now.
		return s.finalizeModule(ctx, course, module, nil)
	}

	next := incomplete[0]
	lastLesson := len(incomplete) == 1

	gen, err := s.newGenerator(ctx)
	if err != nil {
		return nil, NewCourseServiceError("generate_next_lesson", "failed to build generator", err)
	}

	content, err := gen.GenerateLesson(ctx, course.Title, module.Title, next.Title)
	if err != nil {
		return nil, NewCourseServiceError("generate_next_lesson", "lesson generation failed", err)
	}

	if err := next.MarkGenerated(content.Body, content.GeneratedBy, content.EstimatedReadTime); err != nil {
		return nil, NewCourseServiceError("generate_next_lesson", "generated lesson rejected", err)
	}

	if !lastLesson {
		if err := s.lessonStore.Update(ctx, next); err != nil {
			return nil, NewCourseServiceError("generate_next_lesson", "failed to persist lesson", err)
		}

		s.logger.InfoContext(ctx, "lesson generated",
			slog.String("course_id", courseID.String()),
			slog.Int("module_index", moduleIndex),
			slog.Int("lesson_index", next.LessonIndex),
			slog.Int("remaining", len(incomplete)-1))
		return &GenerateLessonResult{Lesson: next}, nil
	}

	return s.finalizeModule(ctx, course, module, next)
}

// finalizeModule completes a module: it generates the quiz over all lesson
// bodies and, in one transaction, persists the final lesson (when there is
// one) and flips content_generated with the quiz attached and the module
// published. When that was the course's last ungenerated module the course
// moves from draft to published in the same transaction. The quiz call
// happens before the transaction opens so no provider wait holds a
// database transaction.
func (s *courseServiceImpl) finalizeModule(ctx context.Context, course *domain.Course, module *domain.Module, finalLesson *domain.Lesson) (*GenerateLessonResult, error) {
	lessons, err := s.lessonStore.ListByModule(ctx, module.ID)
	if err != nil {
		return nil, NewCourseServiceError("generate_next_lesson", "failed to load module lessons", err)
	}

	var moduleBody strings.Builder
	for _, lesson := range lessons {
		if finalLesson != nil && lesson.ID == finalLesson.ID {
			lesson = finalLesson
		}
		if lesson.Content != nil {
			moduleBody.WriteString(*lesson.Content)
			moduleBody.WriteString("\n\n")
		}
	}

	gen, err := s.newGenerator(ctx)
	if err != nil {
		return nil, NewCourseServiceError("generate_next_lesson", "failed to build generator", err)
	}

	quizText, err := gen.GenerateModuleQuiz(ctx, moduleBody.String())
	if err != nil {
		return nil, NewCourseServiceError("generate_next_lesson", "quiz generation failed", err)
	}

	quiz, err := json.Marshal(quizText)
	if err != nil {
		return nil, NewCourseServiceError("generate_next_lesson", "failed to encode quiz", err)
	}
	module.MarkGenerated(quiz)

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if finalLesson != nil {
			if err := s.lessonStore.WithTx(tx).Update(ctx, finalLesson); err != nil {
				return err
			}
		}
		if err := s.moduleStore.WithTx(tx).Update(ctx, module); err != nil {
			return err
		}

		modules, err := s.moduleStore.WithTx(tx).ListByCourse(ctx, course.ID)
		if err != nil {
			return err
		}
		for _, m := range modules {
			if m.ID != module.ID && !m.ContentGenerated {
				return nil
			}
		}
		return s.courseStore.WithTx(tx).UpdateStatus(ctx, course.ID, domain.CourseStatusPublished)
	})
	if err != nil {
		return nil, NewCourseServiceError("generate_next_lesson", "failed to finalize module", err)
	}

	s.logger.InfoContext(ctx, "module content generation completed",
		slog.String("course_id", course.ID.String()),
		slog.Int("module_index", module.ModuleIndex),
		slog.Int("lessons", len(lessons)))
	return &GenerateLessonResult{Lesson: finalLesson, ModuleCompleted: true}, nil
}

// GenerateCourseOneShot implements CourseService.GenerateCourseOneShot
func (s *courseServiceImpl) GenerateCourseOneShot(ctx context.Context, req domain.GenerationRequest, withQuizzes bool) (*orchestrator.GeneratedCourse, error) {
	gen, err := s.newGenerator(ctx)
	if err != nil {
		return nil, NewCourseServiceError("generate_course_one_shot", "failed to build generator", err)
	}

	course, err := gen.GenerateCourse(ctx, req, withQuizzes)
	if err != nil {
		return nil, NewCourseServiceError("generate_course_one_shot", "generation failed", err)
	}
	return course, nil
}

// GetCourse implements CourseService.GetCourse
func (s *courseServiceImpl) GetCourse(ctx context.Context, courseID uuid.UUID) (*CourseDetail, error) {
	course, err := s.courseStore.GetByID(ctx, courseID)
	if err != nil {
		return nil, NewCourseServiceError("get_course", "failed to load course", err)
	}

	modules, err := s.moduleStore.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, NewCourseServiceError("get_course", "failed to load modules", err)
	}

	detail := &CourseDetail{
		Course:  course,
		Modules: make([]*ModuleDetail, 0, len(modules)),
	}
	for _, module := range modules {
		lessons, err := s.lessonStore.ListByModule(ctx, module.ID)
		if err != nil {
			return nil, NewCourseServiceError("get_course", "failed to load lessons", err)
		}
		detail.Modules = append(detail.Modules, &ModuleDetail{
			Module:  module,
			Lessons: lessons,
		})
	}

	return detail, nil
}

// ListCourses implements CourseService.ListCourses
func (s *courseServiceImpl) ListCourses(ctx context.Context, limit, offset int) ([]*domain.Course, error) {
	courses, err := s.courseStore.List(ctx, limit, offset)
	if err != nil {
		return nil, NewCourseServiceError("list_courses", "failed to list courses", err)
	}
	return courses, nil
}

// DeleteCourse implements CourseService.DeleteCourse
func (s *courseServiceImpl) DeleteCourse(ctx context.Context, courseID uuid.UUID) error {
	if err := s.courseStore.Delete(ctx, courseID); err != nil {
		return NewCourseServiceError("delete_course", "failed to delete course", err)
	}

	s.logger.InfoContext(ctx, "course deleted", slog.String("course_id", courseID.String()))
	return nil
}
