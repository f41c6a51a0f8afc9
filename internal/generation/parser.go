package generation

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/AtilaMoura/NIA/internal/domain"
)

// FallbackTitle is the title of the placeholder structure returned when no
// JSON could be recovered from the model output. Generation degrades to a
// visibly-empty result instead of failing the request.
const FallbackTitle = "Erro ao gerar"

// fallbackDescriptionLimit caps how much raw model output is echoed into
// the placeholder description.
const fallbackDescriptionLimit = 200

var (
	openFenceRe  = regexp.MustCompile("^```(?:json)?[ \t]*\n?")
	closeFenceRe = regexp.MustCompile("\n?```\\s*$")
	jsonSpanRe   = regexp.MustCompile(`(?s)\{.*\}`)
)

// StructureResult is the outcome of parsing a structure response.
// Fallback marks the degraded placeholder branch, which callers can test
// for explicitly instead of catching an error.
type StructureResult struct {
	Structure domain.CourseStructure
	Fallback  bool
}

// stripFences removes a surrounding Markdown code fence, with or without a
// json language tag, from the text.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	text = openFenceRe.ReplaceAllString(text, "")
	text = closeFenceRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// ExtractJSON recovers a JSON value from raw model output, tolerating
// surrounding prose and code fences. It tries, in order: a direct parse of
// the fence-stripped text, then the first greedy {...} span. The boolean
// reports whether a parseable value was found.
func ExtractJSON(raw string) (json.RawMessage, bool) {
	stripped := stripFences(raw)

	var value json.RawMessage
	if err := json.Unmarshal([]byte(stripped), &value); err == nil {
		return value, true
	}

	if span := jsonSpanRe.FindString(stripped); span != "" {
		if err := json.Unmarshal([]byte(span), &value); err == nil {
			return value, true
		}
	}

	return nil, false
}

// ExtractStructure parses raw model output into a CourseStructure. It is a
// total function: when no JSON can be recovered, or the recovered JSON does
// not decode into a structure, it returns the placeholder structure with
// the first 200 characters of the raw output as its description.
func ExtractStructure(raw string) StructureResult {
	if value, ok := ExtractJSON(raw); ok {
		var structure domain.CourseStructure
		if err := json.Unmarshal(value, &structure); err == nil && structure.Title != "" {
			return StructureResult{Structure: structure}
		}
	}

	return StructureResult{
		Structure: domain.CourseStructure{
			Title:       FallbackTitle,
			Description: truncate(raw, fallbackDescriptionLimit),
			Modules:     []domain.ModuleStructure{},
		},
		Fallback: true,
	}
}

// truncate returns the first limit characters of text, counting runes so a
// multi-byte character is never split.
func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
