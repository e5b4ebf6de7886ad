// Package pattern compiles the query string into the regular expression
// shared by every match in a run.
package pattern

import (
	"regexp"
	"unicode"

	pqerrors "github.com/pqgrep/pqgrep/internal/errors"
)

// Pattern is a compiled query. It is created once at pipeline start and
// read-only thereafter; all matches in a run share it by reference.
type Pattern struct {
	RE            *regexp.Regexp
	Source        string
	CaseSensitive bool
}

// Compile builds a Pattern from the raw query using the smart-case rule:
// a query containing any uppercase letter is case-sensitive, unless
// forceInsensitive is set.
func Compile(query string, forceInsensitive bool) (*Pattern, error) {
	caseSensitive := !forceInsensitive && hasUpper(query)

	expr := query
	if !caseSensitive {
		expr = "(?i)" + expr
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, pqerrors.NewPatternError(query, err)
	}

	return &Pattern{
		RE:            re,
		Source:        query,
		CaseSensitive: caseSensitive,
	}, nil
}

func hasUpper(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}
