// Package service provides application-level services around course
// generation: the staged persistence protocol, the resume flow for
// interrupted generations, and the read operations the API exposes.
package service

import "errors"

// Common service errors - sentinel errors used across service
// implementations. Callers check for them with errors.Is(); the API layer
// maps them to HTTP status codes.
var (
	// ErrCourseNotFound indicates that the course does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrCourseNotFound = errors.New("course not found")

	// ErrModuleNotFound indicates that the module does not exist within the
	// course. API layer should map this to HTTP 404 Not Found.
	ErrModuleNotFound = errors.New("module not found")

	// ErrLessonNotFound indicates that the lesson does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrLessonNotFound = errors.New("lesson not found")

	// ErrModuleAlreadyGenerated indicates that every lesson of the module is
	// already complete, so there is no next unit of work. API layer should
	// map this to HTTP 409 Conflict.
	ErrModuleAlreadyGenerated = errors.New("module content already generated")
)
