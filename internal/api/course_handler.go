package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/AtilaMoura/NIA/internal/api/shared"
	"github.com/AtilaMoura/NIA/internal/domain"
	"github.com/AtilaMoura/NIA/internal/generation"
	"github.com/AtilaMoura/NIA/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// GenerateCourseRequest is the request body for both the structure-phase
// endpoint and the one-shot endpoint. Zero counts take the defaults
// (3 modules of 3 lessons).
type GenerateCourseRequest struct {
	Topic            string `json:"topic"              validate:"required"`
	Goal             string `json:"goal"`
	Level            string `json:"level"              validate:"omitempty,oneof=beginner intermediate advanced"`
	Modules          int    `json:"modules"            validate:"omitempty,gte=1,lte=10"`
	LessonsPerModule int    `json:"lessons_per_module" validate:"omitempty,gte=1,lte=10"`
	Quizzes          bool   `json:"quizzes"`
}

// CourseHandler serves the course generation and read endpoints.
type CourseHandler struct {
	service service.CourseService
	logger  *slog.Logger
}

// NewCourseHandler creates a CourseHandler backed by the given service.
func NewCourseHandler(svc service.CourseService, logger *slog.Logger) *CourseHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CourseHandler{
		service: svc,
		logger:  logger.With(slog.String("component", "course_handler")),
	}
}

// generationRequest turns the request body into a validated domain request.
func (req *GenerateCourseRequest) generationRequest() (domain.GenerationRequest, error) {
	level := domain.Level(req.Level)
	if req.Level == "" {
		level = domain.LevelBeginner
	}
	return domain.NewGenerationRequest(req.Topic, req.Goal, level, req.Modules, req.LessonsPerModule)
}

// CreateCourse handles POST /courses/generate-structure.
// It runs the structure phase and responds with the persisted course.
func (h *CourseHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var body GenerateCourseRequest
	if err := shared.DecodeJSON(r, &body); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := shared.ValidateRequest(&body); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	req, err := body.generationRequest()
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	course, err := h.service.CreateCourse(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, course)
}

// GenerateNextLesson handles POST /courses/{courseID}/modules/{moduleIndex}/generate.
// Each call completes exactly one lesson; repeat until the module reports
// completed to resume an interrupted generation.
func (h *CourseHandler) GenerateNextLesson(w http.ResponseWriter, r *http.Request) {
	courseID, err := uuid.Parse(chi.URLParam(r, "courseID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid course ID")
		return
	}

	moduleIndex, err := strconv.Atoi(chi.URLParam(r, "moduleIndex"))
	if err != nil || moduleIndex < 1 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid module index")
		return
	}

	result, err := h.service.GenerateNextLesson(r.Context(), courseID, moduleIndex)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// GenerateCourseOneShot handles POST /courses/generate.
// It runs the whole pipeline in one request and returns the generated
// content without persisting it.
func (h *CourseHandler) GenerateCourseOneShot(w http.ResponseWriter, r *http.Request) {
	var body GenerateCourseRequest
	if err := shared.DecodeJSON(r, &body); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := shared.ValidateRequest(&body); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	req, err := body.generationRequest()
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	course, err := h.service.GenerateCourseOneShot(r.Context(), req, body.Quizzes)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, course)
}

// GetCourse handles GET /courses/{courseID}.
func (h *CourseHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	courseID, err := uuid.Parse(chi.URLParam(r, "courseID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid course ID")
		return
	}

	detail, err := h.service.GetCourse(r.Context(), courseID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, detail)
}

// ListCourses handles GET /courses. Supports limit and offset query
// parameters.
func (h *CourseHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	courses, err := h.service.ListCourses(r.Context(), limit, offset)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, courses)
}

// DeleteCourse handles DELETE /courses/{courseID}.
func (h *CourseHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	courseID, err := uuid.Parse(chi.URLParam(r, "courseID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid course ID")
		return
	}

	if err := h.service.DeleteCourse(r.Context(), courseID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// respondServiceError maps service and generation errors to HTTP statuses.
func (h *CourseHandler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		shared.RespondWithError(w, r, http.StatusNotFound, "course not found")
	case errors.Is(err, service.ErrModuleNotFound):
		shared.RespondWithError(w, r, http.StatusNotFound, "module not found")
	case errors.Is(err, service.ErrLessonNotFound):
		shared.RespondWithError(w, r, http.StatusNotFound, "lesson not found")
	case errors.Is(err, service.ErrModuleAlreadyGenerated):
		shared.RespondWithError(w, r, http.StatusConflict, "module content already generated")
	case errors.Is(err, generation.ErrProviderFailure):
		shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable,
			"content provider unavailable", err)
	case errors.Is(err, generation.ErrInvalidResponse):
		shared.RespondWithErrorAndLog(w, r, http.StatusBadGateway,
			"content provider returned an unusable response", err)
	default:
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"internal server error", err)
	}
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
