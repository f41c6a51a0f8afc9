package generation_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/AtilaMoura/NIA/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	object := map[string]any{
		"title":       "Curso de Go",
		"description": "Do básico à concorrência",
		"modules":     []any{map[string]any{"index": float64(1), "title": "Sintaxe"}},
	}
	encoded, err := json.Marshal(object)
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
	}{
		{"bare json", string(encoded)},
		{"fenced json with tag", "```json\n" + string(encoded) + "\n```"},
		{"fenced json without tag", "```\n" + string(encoded) + "\n```"},
		{"fenced with trailing whitespace", "```json\n" + string(encoded) + "\n```   \n"},
		{"surrounding prose", "Aqui está a estrutura pedida:\n" + string(encoded) + "\nEspero que ajude!"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			value, ok := generation.ExtractJSON(tc.raw)
			require.True(t, ok)

			var decoded map[string]any
			require.NoError(t, json.Unmarshal(value, &decoded))
			assert.Equal(t, object, decoded)
		})
	}

	t.Run("round-trips arbitrary JSON values", func(t *testing.T) {
		t.Parallel()

		for _, raw := range []string{`[1,2,3]`, `"texto"`, `42`, `{"nested":{"a":[true,null]}}`} {
			value, ok := generation.ExtractJSON("```json\n" + raw + "\n```")
			require.True(t, ok, "input %q", raw)
			assert.JSONEq(t, raw, string(value))
		}
	})

	t.Run("reports failure on free text", func(t *testing.T) {
		t.Parallel()

		_, ok := generation.ExtractJSON("Desculpe, não consegui gerar o curso.")
		assert.False(t, ok)
	})
}

func TestExtractStructure(t *testing.T) {
	t.Parallel()

	t.Run("parses a fenced structure", func(t *testing.T) {
		t.Parallel()

		raw := "```json\n{\"title\":\"Álgebra Linear\",\"description\":\"Curso\",\"modules\":[{\"index\":1,\"title\":\"Vetores\",\"description\":\"\",\"lessons\":[{\"title\":\"Aula 1\",\"content\":\"\"}]}]}\n```"

		result := generation.ExtractStructure(raw)
		require.False(t, result.Fallback)
		assert.Equal(t, "Álgebra Linear", result.Structure.Title)
		require.Len(t, result.Structure.Modules, 1)
		assert.Equal(t, "Vetores", result.Structure.Modules[0].Title)
	})

	t.Run("recovers a structure buried in prose", func(t *testing.T) {
		t.Parallel()

		raw := "Claro! Segue o JSON:\n{\"title\":\"Curso\",\"description\":\"d\",\"modules\":[]}\nQualquer dúvida, avise."

		result := generation.ExtractStructure(raw)
		require.False(t, result.Fallback)
		assert.Equal(t, "Curso", result.Structure.Title)
	})

	t.Run("degrades to the placeholder on free text", func(t *testing.T) {
		t.Parallel()

		raw := strings.Repeat("resposta inválida ", 20) // > 200 chars

		result := generation.ExtractStructure(raw)
		require.True(t, result.Fallback)
		assert.Equal(t, generation.FallbackTitle, result.Structure.Title)
		assert.Equal(t, string([]rune(raw)[:200]), result.Structure.Description)
		assert.Empty(t, result.Structure.Modules)
	})

	t.Run("keeps short raw text whole in the placeholder", func(t *testing.T) {
		t.Parallel()

		result := generation.ExtractStructure("curto")
		require.True(t, result.Fallback)
		assert.Equal(t, "curto", result.Structure.Description)
	})
}
