// Package groq implements the generation provider interface against
// Groq's OpenAI-compatible chat-completions API.
package groq
