package display

import (
	"github.com/pqgrep/pqgrep/internal/match"
)

// Renderer consumes one file's emitted matches plus its truncation flag.
// It is never called for a file with zero matches.
type Renderer interface {
	RenderFile(fileID string, matches []match.Match, truncated bool) error
}
