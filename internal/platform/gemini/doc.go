// Package gemini implements the generation provider interfaces on top of
// Google's Gemini API. It is the default provider and the only one with a
// native JSON output mode.
package gemini
