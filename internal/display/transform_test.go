package display

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pqgrep/pqgrep/internal/pattern"
)

func compile(t *testing.T, query string) *pattern.Pattern {
	t.Helper()
	p, err := pattern.Compile(query, false)
	require.NoError(t, err)
	return p
}

func TestTransform_TrimCentersOnMatch(t *testing.T) {
	tr := Transform{Pattern: compile(t, "match"), TrimWidth: 10}

	in := strings.Repeat("a", 10) + "match" + strings.Repeat("b", 10)
	assert.Equal(t, "...aamatchbbb...", tr.Apply(in))
}

func TestTransform_TrimCollapsesAtEdges(t *testing.T) {
	tr := Transform{Pattern: compile(t, "match"), TrimWidth: 10}

	// Match at the start: all context goes right, no leading ellipsis.
	assert.Equal(t, "matchbbbbb...", tr.Apply("match"+strings.Repeat("b", 10)))

	// Match at the end: all context goes left, no trailing ellipsis.
	assert.Equal(t, "...aaaaamatch", tr.Apply(strings.Repeat("a", 10)+"match"))
}

func TestTransform_TrimWithoutMatchAnchorsAtStart(t *testing.T) {
	tr := Transform{Pattern: compile(t, "zzz"), TrimWidth: 8}
	assert.Equal(t, "abcdefgh...", tr.Apply("abcdefghijklmnop"))
}

func TestTransform_TrimKeepsOversizedMatchWhole(t *testing.T) {
	tr := Transform{Pattern: compile(t, "longmatch"), TrimWidth: 4}
	assert.Equal(t, "...longmatch...", tr.Apply("xxlongmatchyy"))
}

func TestTransform_TrimNeverSplitsRunes(t *testing.T) {
	tr := Transform{Pattern: compile(t, "match"), TrimWidth: 10}

	in := strings.Repeat("é", 5) + "match" + strings.Repeat("é", 5)
	out := tr.Apply(in).(string)
	assert.True(t, strings.HasPrefix(out, Ellipsis))
	assert.True(t, strings.HasSuffix(out, Ellipsis))
	trimmed := strings.TrimSuffix(strings.TrimPrefix(out, Ellipsis), Ellipsis)
	assert.Contains(t, trimmed, "match")
	assert.True(t, len(trimmed) <= 10+1) // a whole rune may overhang the budget
	for _, r := range trimmed {
		assert.NotEqual(t, '�', r)
	}
}

func TestTransform_ShortStringsPassThrough(t *testing.T) {
	tr := Transform{Pattern: compile(t, "match"), TrimWidth: 20}
	assert.Equal(t, "a match", tr.Apply("a match"))
}

func TestTransform_ZeroWidthMeansUnlimited(t *testing.T) {
	tr := Transform{Pattern: compile(t, "match")}
	in := strings.Repeat("a", 100) + "match"
	assert.Equal(t, in, tr.Apply(in))
}

func TestTransform_Highlight(t *testing.T) {
	tr := Transform{Pattern: compile(t, "match"), Highlight: true}
	assert.Equal(t, "a \x1b[1;31mmatch\x1b[0m here", tr.Apply("a match here"))

	// Every occurrence gets wrapped, not just the first.
	out := tr.Apply("match and match").(string)
	assert.Equal(t, 2, strings.Count(out, highlightOn))
}

func TestTransform_InvertDisablesHighlight(t *testing.T) {
	tr := Transform{Pattern: compile(t, "match"), Highlight: true, Invert: true}
	assert.Equal(t, "a match here", tr.Apply("a match here"))
}

func TestTransform_RecursesIntoNestedValues(t *testing.T) {
	tr := Transform{Pattern: compile(t, "match"), Highlight: true}

	out := tr.Apply([]any{"a match", int64(5)}).([]any)
	assert.Equal(t, "a \x1b[1;31mmatch\x1b[0m", out[0])
	assert.Equal(t, int64(5), out[1])

	nested := tr.Apply(map[string]any{"k": "match"}).(map[string]any)
	assert.Equal(t, "\x1b[1;31mmatch\x1b[0m", nested["k"])
}

func TestTransform_NonStringLeavesUntouched(t *testing.T) {
	tr := Transform{Pattern: compile(t, "42"), TrimWidth: 1, Highlight: true}
	assert.Equal(t, int64(42), tr.Apply(int64(42)))
	assert.Equal(t, true, tr.Apply(true))
	assert.Nil(t, tr.Apply(nil))
}
