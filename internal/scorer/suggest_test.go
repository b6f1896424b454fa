package scorer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSuggestionsWithMissingSkills(t *testing.T) {
	suggestions := GenerateSuggestions([]string{"rust", "kubernetes"})

	require.NotEmpty(t, suggestions)
	assert.Contains(t, suggestions[0], "rust, kubernetes", "第一条建议应点名缺失技能")
	assert.Len(t, suggestions, 1+len(genericTips), "缺失不超过5项时只有一条针对性建议")
}

func TestGenerateSuggestionsManyMissingSkills(t *testing.T) {
	missing := []string{"a1", "b2", "c3", "d4", "e5", "f6", "g7"}
	suggestions := GenerateSuggestions(missing)

	require.GreaterOrEqual(t, len(suggestions), 2)
	assert.Contains(t, suggestions[0], "a1, b2, c3, d4, e5", "第一条列出前5项")
	assert.NotContains(t, suggestions[0], "f6")
	assert.Contains(t, suggestions[1], "f6, g7", "第二条列出随后的缺失项")
	assert.Len(t, suggestions, 2+len(genericTips))
}

func TestGenerateSuggestionsNoMissingSkills(t *testing.T) {
	suggestions := GenerateSuggestions(nil)

	require.NotEmpty(t, suggestions)
	assert.Contains(t, strings.ToLower(suggestions[0]), "covers all required skills",
		"无缺失时应给出正向反馈")
	assert.Len(t, suggestions, 1+len(genericTips))
}

func TestGenerateSuggestionsAlwaysIncludesGenericTips(t *testing.T) {
	for _, missing := range [][]string{nil, {"rust"}, {"a", "b", "c", "d", "e", "f"}} {
		suggestions := GenerateSuggestions(missing)
		for _, tip := range genericTips {
			assert.Contains(t, suggestions, tip)
		}
	}
}

func TestGenerateSuggestionsDeterministic(t *testing.T) {
	missing := []string{"rust", "go", "sql"}
	assert.Equal(t, GenerateSuggestions(missing), GenerateSuggestions(missing))
}
