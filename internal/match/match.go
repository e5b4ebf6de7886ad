// Package match implements the per-record predicate and the Match value
// flowing through the pipeline.
package match

import (
	"github.com/pqgrep/pqgrep/internal/pattern"
	"github.com/pqgrep/pqgrep/internal/record"
)

// Match is one accepted record. Immutable once produced; Pattern is shared
// by reference across every match in a run.
type Match struct {
	RowOffset int64
	Record    record.Record
	Pattern   *pattern.Pattern
	FileID    string
}

// Predicate decides whether a record satisfies the compiled pattern,
// honoring inversion.
type Predicate struct {
	Pattern *pattern.Pattern
	Invert  bool
}

// Accept stringifies each field value and tests it against the pattern,
// short-circuiting on the first field that satisfies the expression.
// Null and missing values are skipped, not counted as non-matches, so a
// record with only null fields never matches normally and always matches
// under inversion.
func (p Predicate) Accept(r record.Record) bool {
	anyFieldMatched := false
	for _, f := range r.Fields {
		s, ok := record.ValueString(f.Value)
		if !ok {
			continue
		}
		if p.Pattern.RE.MatchString(s) {
			anyFieldMatched = true
			break
		}
	}

	if p.Invert {
		return !anyFieldMatched
	}
	return anyFieldMatched
}
