// Package display renders emitted matches either as a grouped Markdown
// table or as a JSON line stream. Both renderers share one highlight/trim
// transform keyed to the compiled pattern.
package display

import (
	"strings"
	"unicode/utf8"

	"github.com/pqgrep/pqgrep/internal/pattern"
)

// Ellipsis is the truncation marker emitted after a windowed file section
// and around trimmed string context.
const Ellipsis = "..."

const (
	highlightOn  = "\x1b[1;31m"
	highlightOff = "\x1b[0m"
)

// Transform trims and highlights string leaf values in place, recursing
// into nested lists and mappings. Non-string leaves pass through untouched.
type Transform struct {
	Pattern *pattern.Pattern

	// Invert disables highlighting (there is no meaningful match span) but
	// trimming still anchors on the first non-inverted match, if any.
	Invert bool

	// Highlight wraps matched spans in emphasis markers. Callers leave it
	// off when output is not an interactive terminal.
	Highlight bool

	// TrimWidth is the context budget per string value. 0 means unlimited.
	TrimWidth int
}

// Apply returns v with the transform applied to every string leaf.
func (t Transform) Apply(v any) any {
	switch x := v.(type) {
	case string:
		return t.applyString(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = t.Apply(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = t.Apply(e)
		}
		return out
	default:
		return v
	}
}

func (t Transform) applyString(s string) string {
	out := s
	if t.TrimWidth > 0 && len(out) > t.TrimWidth {
		out = t.trim(out)
	}
	if t.Highlight && !t.Invert {
		out = t.Pattern.RE.ReplaceAllStringFunc(out, func(m string) string {
			return highlightOn + m + highlightOff
		})
	}
	return out
}

// trim keeps a symmetric window of context around the first match span,
// collapsing toward one side when the span sits near an edge. Without a
// match the window anchors at the start of the string.
func (t Transform) trim(s string) string {
	spanStart, spanEnd := 0, 0
	if loc := t.Pattern.RE.FindStringIndex(s); loc != nil {
		spanStart, spanEnd = loc[0], loc[1]
	}

	budget := t.TrimWidth
	span := spanEnd - spanStart
	if span >= budget {
		// The match alone fills the budget; keep it whole anyway.
		start, end := snap(s, spanStart, spanEnd)
		return mark(s, start, end)
	}

	context := budget - span
	left := context / 2
	start := spanStart - left
	end := spanEnd + (context - left)
	if start < 0 {
		end -= start
		start = 0
	}
	if end > len(s) {
		start -= end - len(s)
		end = len(s)
		if start < 0 {
			start = 0
		}
	}

	start, end = snap(s, start, end)
	return mark(s, start, end)
}

// snap moves byte positions down to UTF-8 rune boundaries so the window
// never splits a rune.
func snap(s string, start, end int) (int, int) {
	for start > 0 && start < len(s) && !utf8.RuneStart(s[start]) {
		start--
	}
	for end > 0 && end < len(s) && !utf8.RuneStart(s[end]) {
		end--
	}
	if end < start {
		end = start
	}
	return start, end
}

func mark(s string, start, end int) string {
	var sb strings.Builder
	if start > 0 {
		sb.WriteString(Ellipsis)
	}
	sb.WriteString(s[start:end])
	if end < len(s) {
		sb.WriteString(Ellipsis)
	}
	return sb.String()
}
