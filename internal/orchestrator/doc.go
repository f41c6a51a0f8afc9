// Package orchestrator drives the generation pipeline. An Orchestrator is
// built per request on a selected provider client and sequences the agents
// for each operation: structure generation with size-contract enforcement,
// single-lesson generation with read-time trailer parsing, module quizzes,
// and the one-shot full-course path. Persistence belongs to the service
// layer; the orchestrator only talks to the provider.
package orchestrator
