// Package agent contains the behavioral wrappers around a generation
// provider. Each agent fixes a single responsibility and owns the embedded
// prompt template for it: structuring (Specialist), brief writing (Context),
// reviewing (Reviewer) and quiz writing (Quiz).
// Provider errors propagate unmodified to the orchestrator; only the
// specialist's malformed-JSON case is recovered locally, via the tolerant
// parser in the generation package.
package agent
