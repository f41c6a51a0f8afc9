package service_test

import (
	"context"
	"database/sql"

	"github.com/AtilaMoura/NIA/internal/domain"
	"github.com/AtilaMoura/NIA/internal/orchestrator"
	"github.com/AtilaMoura/NIA/internal/service"
	"github.com/AtilaMoura/NIA/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// mockCourseStore is a testify mock for store.CourseStore.
type mockCourseStore struct {
	mock.Mock
}

func (m *mockCourseStore) Create(ctx context.Context, course *domain.Course) error {
	args := m.Called(ctx, course)
	return args.Error(0)
}

func (m *mockCourseStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Course), args.Error(1)
}

func (m *mockCourseStore) List(ctx context.Context, limit, offset int) ([]*domain.Course, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Course), args.Error(1)
}

func (m *mockCourseStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.CourseStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockCourseStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockCourseStore) WithTx(tx *sql.Tx) store.CourseStore {
	m.Called(tx)
	return m
}

// mockModuleStore is a testify mock for store.ModuleStore.
type mockModuleStore struct {
	mock.Mock
}

func (m *mockModuleStore) Create(ctx context.Context, module *domain.Module) error {
	args := m.Called(ctx, module)
	return args.Error(0)
}

func (m *mockModuleStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Module, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Module), args.Error(1)
}

func (m *mockModuleStore) GetByCourseAndIndex(ctx context.Context, courseID uuid.UUID, moduleIndex int) (*domain.Module, error) {
	args := m.Called(ctx, courseID, moduleIndex)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Module), args.Error(1)
}

func (m *mockModuleStore) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]*domain.Module, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Module), args.Error(1)
}

func (m *mockModuleStore) Update(ctx context.Context, module *domain.Module) error {
	args := m.Called(ctx, module)
	return args.Error(0)
}

func (m *mockModuleStore) WithTx(tx *sql.Tx) store.ModuleStore {
	m.Called(tx)
	return m
}

// mockLessonStore is a testify mock for store.LessonStore.
type mockLessonStore struct {
	mock.Mock
}

func (m *mockLessonStore) Create(ctx context.Context, lesson *domain.Lesson) error {
	args := m.Called(ctx, lesson)
	return args.Error(0)
}

func (m *mockLessonStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lesson, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lesson), args.Error(1)
}

func (m *mockLessonStore) ListByModule(ctx context.Context, moduleID uuid.UUID) ([]*domain.Lesson, error) {
	args := m.Called(ctx, moduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Lesson), args.Error(1)
}

func (m *mockLessonStore) ListIncomplete(ctx context.Context, moduleID uuid.UUID) ([]*domain.Lesson, error) {
	args := m.Called(ctx, moduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Lesson), args.Error(1)
}

func (m *mockLessonStore) Update(ctx context.Context, lesson *domain.Lesson) error {
	args := m.Called(ctx, lesson)
	return args.Error(0)
}

func (m *mockLessonStore) WithTx(tx *sql.Tx) store.LessonStore {
	m.Called(tx)
	return m
}

// mockGenerator is a testify mock for service.Generator.
type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) GenerateCourseStructure(ctx context.Context, req domain.GenerationRequest) (*domain.CourseStructure, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CourseStructure), args.Error(1)
}

func (m *mockGenerator) GenerateLesson(ctx context.Context, course, module, lesson string) (*orchestrator.LessonContent, error) {
	args := m.Called(ctx, course, module, lesson)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orchestrator.LessonContent), args.Error(1)
}

func (m *mockGenerator) GenerateModuleQuiz(ctx context.Context, content string) (string, error) {
	args := m.Called(ctx, content)
	return args.String(0), args.Error(1)
}

func (m *mockGenerator) GenerateCourse(ctx context.Context, req domain.GenerationRequest, withQuizzes bool) (*orchestrator.GeneratedCourse, error) {
	args := m.Called(ctx, req, withQuizzes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orchestrator.GeneratedCourse), args.Error(1)
}

// factoryFor wraps a mock generator in a service.GeneratorFactory.
func factoryFor(gen service.Generator) service.GeneratorFactory {
	return func(ctx context.Context) (service.Generator, error) {
		return gen, nil
	}
}
