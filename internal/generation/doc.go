// Package generation defines the boundary between the course generation
// pipeline and external LLM providers. It contains the Provider interfaces
// implemented by the platform clients (Gemini, Groq), the error taxonomy
// shared across the pipeline, and the tolerant response parser that
// extracts structured JSON from raw model output.
package generation
