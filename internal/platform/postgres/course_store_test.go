package postgres

import (
	"context"
	"testing"

	"github.com/AtilaMoura/NIA/internal/domain"
	"github.com/AtilaMoura/NIA/internal/store"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCourseStore(t *testing.T) (*PostgresCourseStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresCourseStore(db, nil), mock
}

func courseRows(courses ...*domain.Course) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "title", "description", "level", "modules_count",
		"structure", "status", "created_at", "updated_at",
	})
	for _, c := range courses {
		rows.AddRow(c.ID.String(), c.Title, c.Description, string(c.Level),
			c.ModulesCount, []byte(c.Structure), string(c.Status),
			c.CreatedAt, c.UpdatedAt)
	}
	return rows
}

func testCourse(t *testing.T) *domain.Course {
	t.Helper()

	course, err := domain.NewCourse(domain.CourseStructure{
		Title:       "Álgebra Linear",
		Description: "Do zero aos autovalores",
		Modules: []domain.ModuleStructure{
			{Index: 1, Title: "Vetores", Lessons: []domain.LessonStub{{Title: "Aula 1"}}},
		},
	}, domain.LevelBeginner)
	require.NoError(t, err)
	return course
}

func TestCourseStoreCreate(t *testing.T) {
	t.Parallel()

	t.Run("inserts a draft course with its structure snapshot", func(t *testing.T) {
		t.Parallel()

		s, mock := newCourseStore(t)
		course := testCourse(t)

		mock.ExpectExec(`INSERT INTO courses`).
			WithArgs(course.ID, course.Title, course.Description, course.Level,
				course.ModulesCount, []byte(course.Structure), course.Status,
				course.CreatedAt, course.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Create(context.Background(), course))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects an invalid course before touching the database", func(t *testing.T) {
		t.Parallel()

		s, mock := newCourseStore(t)
		course := &domain.Course{ID: uuid.New(), Title: "Sem estrutura",
			Level: domain.LevelBeginner, Status: domain.CourseStatusDraft}

		err := s.Create(context.Background(), course)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCourseStoreGetByID(t *testing.T) {
	t.Parallel()

	t.Run("returns the course with the snapshot intact", func(t *testing.T) {
		t.Parallel()

		s, mock := newCourseStore(t)
		course := testCourse(t)

		mock.ExpectQuery(`SELECT .* FROM courses`).
			WithArgs(course.ID).
			WillReturnRows(courseRows(course))

		got, err := s.GetByID(context.Background(), course.ID)
		require.NoError(t, err)
		assert.Equal(t, course.ID, got.ID)
		assert.Equal(t, domain.CourseStatusDraft, got.Status)
		assert.JSONEq(t, string(course.Structure), string(got.Structure))
	})

	t.Run("maps no rows to the course sentinel", func(t *testing.T) {
		t.Parallel()

		s, mock := newCourseStore(t)

		mock.ExpectQuery(`SELECT .* FROM courses`).
			WillReturnRows(courseRows())

		_, err := s.GetByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, store.ErrCourseNotFound)
	})
}

func TestCourseStoreList(t *testing.T) {
	t.Parallel()

	s, mock := newCourseStore(t)
	c1 := testCourse(t)
	c2 := testCourse(t)

	// Out-of-range paging falls back to the defaults.
	mock.ExpectQuery(`SELECT .* FROM courses ORDER BY created_at DESC`).
		WithArgs(50, 0).
		WillReturnRows(courseRows(c1, c2))

	courses, err := s.List(context.Background(), 0, -1)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, c1.ID, courses[0].ID)
}

func TestCourseStoreUpdateStatus(t *testing.T) {
	t.Parallel()

	t.Run("moves the course to published", func(t *testing.T) {
		t.Parallel()

		s, mock := newCourseStore(t)
		id := uuid.New()

		mock.ExpectExec(`UPDATE courses SET status`).
			WithArgs(domain.CourseStatusPublished, id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.UpdateStatus(context.Background(), id, domain.CourseStatusPublished))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps zero affected rows to the course sentinel", func(t *testing.T) {
		t.Parallel()

		s, mock := newCourseStore(t)

		mock.ExpectExec(`UPDATE courses SET status`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := s.UpdateStatus(context.Background(), uuid.New(), domain.CourseStatusArchived)
		assert.ErrorIs(t, err, store.ErrCourseNotFound)
	})
}

func TestCourseStoreDelete(t *testing.T) {
	t.Parallel()

	t.Run("deletes the course", func(t *testing.T) {
		t.Parallel()

		s, mock := newCourseStore(t)
		id := uuid.New()

		mock.ExpectExec(`DELETE FROM courses`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Delete(context.Background(), id))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps zero affected rows to the course sentinel", func(t *testing.T) {
		t.Parallel()

		s, mock := newCourseStore(t)

		mock.ExpectExec(`DELETE FROM courses`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := s.Delete(context.Background(), uuid.New())
		assert.ErrorIs(t, err, store.ErrCourseNotFound)
	})
}
