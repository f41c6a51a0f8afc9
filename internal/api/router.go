// Package api contains the HTTP surface of the service: the chi router,
// the course generation handlers, and the shared request/response helpers.
package api

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	apimiddleware "github.com/AtilaMoura/NIA/internal/api/middleware"
	"github.com/AtilaMoura/NIA/internal/api/shared"
	"github.com/AtilaMoura/NIA/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the service's HTTP router: course generation endpoints,
// read endpoints, and a health check that pings the database.
func NewRouter(svc service.CourseService, db *sql.DB, logger *slog.Logger) chi.Router {
	handler := NewCourseHandler(svc, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)

	r.Get("/healthz", healthHandler(db))

	r.Route("/courses", func(r chi.Router) {
		r.Post("/generate-structure", handler.CreateCourse)
		r.Post("/generate", handler.GenerateCourseOneShot)
		r.Get("/", handler.ListCourses)

		r.Route("/{courseID}", func(r chi.Router) {
			r.Get("/", handler.GetCourse)
			r.Delete("/", handler.DeleteCourse)
			r.Post("/modules/{moduleIndex}/generate", handler.GenerateNextLesson)
		})
	})

	return r
}

// healthHandler reports liveness and database reachability.
func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable,
					"database unreachable", err)
				return
			}
		}
		shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	}
}
