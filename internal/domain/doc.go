// Package domain contains the core business entities of the course
// generation pipeline: courses, modules, lessons and learner progress,
// together with their validation rules and lifecycle invariants.
//
// Entities are plain structs with constructor functions (NewCourse,
// NewLesson, ...) that validate on creation. The package has no
// dependencies on storage or transport concerns.
package domain
