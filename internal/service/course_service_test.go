package service_test

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/AtilaMoura/NIA/internal/domain"
	"github.com/AtilaMoura/NIA/internal/generation"
	"github.com/AtilaMoura/NIA/internal/orchestrator"
	"github.com/AtilaMoura/NIA/internal/service"
	"github.com/AtilaMoura/NIA/internal/store"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type serviceFixture struct {
	db          *sql.DB
	dbMock      sqlmock.Sqlmock
	courseStore *mockCourseStore
	moduleStore *mockModuleStore
	lessonStore *mockLessonStore
	generator   *mockGenerator
	service     service.CourseService
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()

	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	f := &serviceFixture{
		db:          db,
		dbMock:      dbMock,
		courseStore: new(mockCourseStore),
		moduleStore: new(mockModuleStore),
		lessonStore: new(mockLessonStore),
		generator:   new(mockGenerator),
	}

	svc, err := service.NewCourseService(
		db, f.courseStore, f.moduleStore, f.lessonStore,
		factoryFor(f.generator), testLogger())
	require.NoError(t, err)
	f.service = svc
	return f
}

func testStructure(modules, lessonsPerModule int) domain.CourseStructure {
	structure := domain.CourseStructure{
		Title:       "Curso de História",
		Description: "Da antiguidade ao presente",
	}
	for m := 1; m <= modules; m++ {
		ms := domain.ModuleStructure{
			Index: m,
			Title: "Módulo",
		}
		for l := 0; l < lessonsPerModule; l++ {
			ms.Lessons = append(ms.Lessons, domain.LessonStub{Title: "Aula"})
		}
		structure.Modules = append(structure.Modules, ms)
	}
	return structure
}

func testRequest(t *testing.T, modules, lessons int) domain.GenerationRequest {
	t.Helper()
	req, err := domain.NewGenerationRequest("História", "cultura geral", domain.LevelBeginner, modules, lessons)
	require.NoError(t, err)
	return req
}

func TestCreateCourse(t *testing.T) {
	t.Run("persists the whole tree in one transaction", func(t *testing.T) {
		f := newFixture(t)
		req := testRequest(t, 2, 2)
		structure := testStructure(2, 2)

		f.generator.On("GenerateCourseStructure", mock.Anything, req).Return(&structure, nil)

		f.dbMock.ExpectBegin()
		f.courseStore.On("WithTx", mock.Anything).Return()
		f.moduleStore.On("WithTx", mock.Anything).Return()
		f.lessonStore.On("WithTx", mock.Anything).Return()
		f.courseStore.On("Create", mock.Anything, mock.AnythingOfType("*domain.Course")).Return(nil).Once()
		f.moduleStore.On("Create", mock.Anything, mock.AnythingOfType("*domain.Module")).Return(nil).Times(2)
		f.lessonStore.On("Create", mock.Anything, mock.AnythingOfType("*domain.Lesson")).Return(nil).Times(4)
		f.dbMock.ExpectCommit()

		course, err := f.service.CreateCourse(context.Background(), req)
		require.NoError(t, err)

		assert.Equal(t, "Curso de História", course.Title)
		assert.Equal(t, 2, course.ModulesCount)
		assert.Equal(t, domain.CourseStatusDraft, course.Status)
		assert.NotEmpty(t, course.Structure)

		f.courseStore.AssertExpectations(t)
		f.moduleStore.AssertExpectations(t)
		f.lessonStore.AssertExpectations(t)
		assert.NoError(t, f.dbMock.ExpectationsWereMet())
	})

	t.Run("provider failure touches nothing in the database", func(t *testing.T) {
		f := newFixture(t)
		req := testRequest(t, 3, 3)

		providerErr := &generation.ProviderError{Provider: "gemini", StatusCode: 503}
		f.generator.On("GenerateCourseStructure", mock.Anything, req).Return(nil, providerErr)

		_, err := f.service.CreateCourse(context.Background(), req)
		require.Error(t, err)
		assert.ErrorIs(t, err, generation.ErrProviderFailure)

		f.courseStore.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.NoError(t, f.dbMock.ExpectationsWereMet())
	})

	t.Run("a failed insert rolls the whole tree back", func(t *testing.T) {
		f := newFixture(t)
		req := testRequest(t, 1, 1)
		structure := testStructure(1, 1)

		f.generator.On("GenerateCourseStructure", mock.Anything, req).Return(&structure, nil)

		f.dbMock.ExpectBegin()
		f.courseStore.On("WithTx", mock.Anything).Return()
		f.moduleStore.On("WithTx", mock.Anything).Return()
		f.lessonStore.On("WithTx", mock.Anything).Return()
		f.courseStore.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.moduleStore.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.lessonStore.On("Create", mock.Anything, mock.Anything).
			Return(store.NewStoreError("lesson", "create", "insert failed", store.ErrInvalidEntity))
		f.dbMock.ExpectRollback()

		_, err := f.service.CreateCourse(context.Background(), req)
		require.Error(t, err)
		assert.NoError(t, f.dbMock.ExpectationsWereMet())
	})
}

func TestGenerateNextLesson(t *testing.T) {
	courseID := uuid.New()

	makeCourse := func() *domain.Course {
		structure := testStructure(1, 2)
		course, err := domain.NewCourse(structure, domain.LevelBeginner)
		if err != nil {
			panic(err)
		}
		course.ID = courseID
		return course
	}

	makeModule := func(course *domain.Course) *domain.Module {
		module, err := domain.NewModule(course.ID, domain.ModuleStructure{
			Index: 1,
			Title: "Módulo",
			Lessons: []domain.LessonStub{
				{Title: "Aula 1"}, {Title: "Aula 2"},
			},
		})
		if err != nil {
			panic(err)
		}
		return module
	}

	makeLesson := func(moduleID uuid.UUID, index int, title string) *domain.Lesson {
		lesson, err := domain.NewLesson(moduleID, index, title)
		if err != nil {
			panic(err)
		}
		return lesson
	}

	t.Run("generates exactly the lowest-index incomplete lesson", func(t *testing.T) {
		f := newFixture(t)
		course := makeCourse()
		module := makeModule(course)
		lesson1 := makeLesson(module.ID, 1, "Aula 1")
		lesson2 := makeLesson(module.ID, 2, "Aula 2")

		f.courseStore.On("GetByID", mock.Anything, courseID).Return(course, nil)
		f.moduleStore.On("GetByCourseAndIndex", mock.Anything, courseID, 1).Return(module, nil)
		f.lessonStore.On("ListIncomplete", mock.Anything, module.ID).
			Return([]*domain.Lesson{lesson1, lesson2}, nil)
		f.generator.On("GenerateLesson", mock.Anything, course.Title, module.Title, "Aula 1").
			Return(&orchestrator.LessonContent{
				Body:              "conteúdo da aula 1",
				EstimatedReadTime: 5,
				GeneratedBy:       "gemini",
			}, nil)
		f.lessonStore.On("Update", mock.Anything, lesson1).Return(nil).Once()

		result, err := f.service.GenerateNextLesson(context.Background(), courseID, 1)
		require.NoError(t, err)

		assert.False(t, result.ModuleCompleted)
		require.NotNil(t, result.Lesson)
		assert.Equal(t, 1, result.Lesson.LessonIndex)
		assert.True(t, result.Lesson.IsComplete())
		assert.Equal(t, "gemini", *result.Lesson.GeneratedBy)

		// Lesson 2 stays untouched and no module update happens yet.
		f.moduleStore.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		f.generator.AssertNumberOfCalls(t, "GenerateLesson", 1)
	})

	t.Run("completing the last lesson publishes the module and attaches the quiz", func(t *testing.T) {
		f := newFixture(t)
		course := makeCourse()
		module := makeModule(course)
		lesson1 := makeLesson(module.ID, 1, "Aula 1")
		require.NoError(t, lesson1.MarkGenerated("conteúdo da aula 1", "gemini", 4))
		lesson2 := makeLesson(module.ID, 2, "Aula 2")

		f.courseStore.On("GetByID", mock.Anything, courseID).Return(course, nil)
		f.moduleStore.On("GetByCourseAndIndex", mock.Anything, courseID, 1).Return(module, nil)
		f.lessonStore.On("ListIncomplete", mock.Anything, module.ID).
			Return([]*domain.Lesson{lesson2}, nil)
		f.generator.On("GenerateLesson", mock.Anything, course.Title, module.Title, "Aula 2").
			Return(&orchestrator.LessonContent{
				Body:              "conteúdo da aula 2",
				EstimatedReadTime: 6,
				GeneratedBy:       "gemini",
			}, nil)
		f.lessonStore.On("ListByModule", mock.Anything, module.ID).
			Return([]*domain.Lesson{lesson1, lesson2}, nil)

		// The quiz is generated over every lesson body of the module.
		f.generator.On("GenerateModuleQuiz", mock.Anything, mock.MatchedBy(func(content string) bool {
			return strings.Contains(content, "conteúdo da aula 1") &&
				strings.Contains(content, "conteúdo da aula 2")
		})).Return("1) Pergunta...", nil)

		f.dbMock.ExpectBegin()
		f.lessonStore.On("WithTx", mock.Anything).Return()
		f.moduleStore.On("WithTx", mock.Anything).Return()
		f.courseStore.On("WithTx", mock.Anything).Return()
		f.lessonStore.On("Update", mock.Anything, lesson2).Return(nil).Once()
		f.moduleStore.On("Update", mock.Anything, module).Return(nil).Once()
		f.moduleStore.On("ListByCourse", mock.Anything, courseID).
			Return([]*domain.Module{module}, nil)
		// The only module just completed, so the course is published too.
		f.courseStore.On("UpdateStatus", mock.Anything, courseID, domain.CourseStatusPublished).
			Return(nil).Once()
		f.dbMock.ExpectCommit()

		result, err := f.service.GenerateNextLesson(context.Background(), courseID, 1)
		require.NoError(t, err)

		assert.True(t, result.ModuleCompleted)
		assert.True(t, module.ContentGenerated)
		assert.True(t, module.IsPublished)
		assert.NotEmpty(t, module.Quiz)
		f.courseStore.AssertExpectations(t)
		assert.NoError(t, f.dbMock.ExpectationsWereMet())
	})

	t.Run("the course stays draft while other modules remain ungenerated", func(t *testing.T) {
		f := newFixture(t)
		structure := testStructure(2, 1)
		course, err := domain.NewCourse(structure, domain.LevelBeginner)
		require.NoError(t, err)
		module1, err := domain.NewModule(course.ID, structure.Modules[0])
		require.NoError(t, err)
		module2, err := domain.NewModule(course.ID, structure.Modules[1])
		require.NoError(t, err)
		lesson := makeLesson(module1.ID, 1, "Aula")

		f.courseStore.On("GetByID", mock.Anything, course.ID).Return(course, nil)
		f.moduleStore.On("GetByCourseAndIndex", mock.Anything, course.ID, 1).Return(module1, nil)
		f.lessonStore.On("ListIncomplete", mock.Anything, module1.ID).
			Return([]*domain.Lesson{lesson}, nil)
		f.generator.On("GenerateLesson", mock.Anything, course.Title, module1.Title, "Aula").
			Return(&orchestrator.LessonContent{
				Body:              "conteúdo",
				EstimatedReadTime: 2,
				GeneratedBy:       "gemini",
			}, nil)
		f.lessonStore.On("ListByModule", mock.Anything, module1.ID).
			Return([]*domain.Lesson{lesson}, nil)
		f.generator.On("GenerateModuleQuiz", mock.Anything, mock.Anything).Return("quiz", nil)

		f.dbMock.ExpectBegin()
		f.lessonStore.On("WithTx", mock.Anything).Return()
		f.moduleStore.On("WithTx", mock.Anything).Return()
		f.lessonStore.On("Update", mock.Anything, lesson).Return(nil).Once()
		f.moduleStore.On("Update", mock.Anything, module1).Return(nil).Once()
		f.moduleStore.On("ListByCourse", mock.Anything, course.ID).
			Return([]*domain.Module{module1, module2}, nil)
		f.dbMock.ExpectCommit()

		result, err := f.service.GenerateNextLesson(context.Background(), course.ID, 1)
		require.NoError(t, err)

		assert.True(t, result.ModuleCompleted)
		assert.True(t, module1.IsPublished)
		f.courseStore.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
		assert.NoError(t, f.dbMock.ExpectationsWereMet())
	})

	t.Run("already generated module needs no provider call", func(t *testing.T) {
		f := newFixture(t)
		course := makeCourse()
		module := makeModule(course)
		module.MarkGenerated(nil)

		f.courseStore.On("GetByID", mock.Anything, courseID).Return(course, nil)
		f.moduleStore.On("GetByCourseAndIndex", mock.Anything, courseID, 1).Return(module, nil)

		_, err := f.service.GenerateNextLesson(context.Background(), courseID, 1)
		assert.ErrorIs(t, err, service.ErrModuleAlreadyGenerated)
		f.generator.AssertNotCalled(t, "GenerateLesson", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing module maps to the service sentinel", func(t *testing.T) {
		f := newFixture(t)
		course := makeCourse()

		f.courseStore.On("GetByID", mock.Anything, courseID).Return(course, nil)
		f.moduleStore.On("GetByCourseAndIndex", mock.Anything, courseID, 9).
			Return(nil, store.ErrModuleNotFound)

		_, err := f.service.GenerateNextLesson(context.Background(), courseID, 9)
		assert.ErrorIs(t, err, service.ErrModuleNotFound)
	})

	t.Run("provider failure leaves the lesson incomplete", func(t *testing.T) {
		f := newFixture(t)
		course := makeCourse()
		module := makeModule(course)
		lesson1 := makeLesson(module.ID, 1, "Aula 1")

		f.courseStore.On("GetByID", mock.Anything, courseID).Return(course, nil)
		f.moduleStore.On("GetByCourseAndIndex", mock.Anything, courseID, 1).Return(module, nil)
		f.lessonStore.On("ListIncomplete", mock.Anything, module.ID).
			Return([]*domain.Lesson{lesson1}, nil)
		f.generator.On("GenerateLesson", mock.Anything, course.Title, module.Title, "Aula 1").
			Return(nil, &generation.ProviderError{Provider: "groq", StatusCode: 500})

		_, err := f.service.GenerateNextLesson(context.Background(), courseID, 1)
		require.Error(t, err)
		assert.ErrorIs(t, err, generation.ErrProviderFailure)
		f.lessonStore.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestGenerateCourseOneShot(t *testing.T) {
	f := newFixture(t)
	req := testRequest(t, 1, 1)
	generated := &orchestrator.GeneratedCourse{Title: "Curso"}

	f.generator.On("GenerateCourse", mock.Anything, req, true).Return(generated, nil)

	course, err := f.service.GenerateCourseOneShot(context.Background(), req, true)
	require.NoError(t, err)
	assert.Same(t, generated, course)
}

func TestCourseReads(t *testing.T) {
	t.Run("GetCourse assembles the full tree", func(t *testing.T) {
		f := newFixture(t)
		structure := testStructure(1, 1)
		course, err := domain.NewCourse(structure, domain.LevelAdvanced)
		require.NoError(t, err)
		module, err := domain.NewModule(course.ID, structure.Modules[0])
		require.NoError(t, err)
		lesson, err := domain.NewLesson(module.ID, 1, "Aula")
		require.NoError(t, err)

		f.courseStore.On("GetByID", mock.Anything, course.ID).Return(course, nil)
		f.moduleStore.On("ListByCourse", mock.Anything, course.ID).
			Return([]*domain.Module{module}, nil)
		f.lessonStore.On("ListByModule", mock.Anything, module.ID).
			Return([]*domain.Lesson{lesson}, nil)

		detail, err := f.service.GetCourse(context.Background(), course.ID)
		require.NoError(t, err)
		require.Len(t, detail.Modules, 1)
		assert.Equal(t, module.ID, detail.Modules[0].Module.ID)
		require.Len(t, detail.Modules[0].Lessons, 1)
	})

	t.Run("missing course maps to the service sentinel", func(t *testing.T) {
		f := newFixture(t)
		id := uuid.New()

		f.courseStore.On("GetByID", mock.Anything, id).Return(nil, store.ErrCourseNotFound)

		_, err := f.service.GetCourse(context.Background(), id)
		assert.ErrorIs(t, err, service.ErrCourseNotFound)
	})

	t.Run("DeleteCourse maps store not-found", func(t *testing.T) {
		f := newFixture(t)
		id := uuid.New()

		f.courseStore.On("Delete", mock.Anything, id).Return(store.ErrCourseNotFound)

		err := f.service.DeleteCourse(context.Background(), id)
		assert.ErrorIs(t, err, service.ErrCourseNotFound)
	})

	t.Run("unexpected errors come back wrapped", func(t *testing.T) {
		f := newFixture(t)
		id := uuid.New()

		f.courseStore.On("GetByID", mock.Anything, id).Return(nil, errors.New("connection reset"))

		_, err := f.service.GetCourse(context.Background(), id)
		require.Error(t, err)

		var svcErr *service.CourseServiceError
		assert.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "get_course", svcErr.Operation)
	})
}
