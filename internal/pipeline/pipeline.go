// Package pipeline orchestrates the per-file match pipeline: stream adapter,
// predicate, window controller, and renderer, with per-file fault isolation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pqgrep/pqgrep/internal/debug"
	pqerrors "github.com/pqgrep/pqgrep/internal/errors"
	"github.com/pqgrep/pqgrep/internal/display"
	"github.com/pqgrep/pqgrep/internal/match"
	"github.com/pqgrep/pqgrep/internal/pattern"
	"github.com/pqgrep/pqgrep/internal/source"
	"github.com/pqgrep/pqgrep/internal/stream"
	"github.com/pqgrep/pqgrep/internal/window"
)

// Options configures one search run. Pattern and Window are validated before
// any file is opened.
type Options struct {
	Pattern *pattern.Pattern
	Invert  bool
	Window  window.Window

	Renderer display.Renderer
	Opener   source.Opener

	// Extensions and Exclude drive directory enumeration.
	Extensions []string
	Exclude    []string

	// ErrOut receives per-file failure reports. Defaults to io.Discard.
	ErrOut io.Writer
}

// FileResult is the windowed outcome for a single file. A zero-match result
// is never rendered.
type FileResult struct {
	FileID    string
	Matches   []match.Match
	Truncated bool
}

// Run resolves the target into a file list and processes each file in
// discovery order. A SourceError on one file is reported against that file
// only; processing continues with the rest.
func Run(ctx context.Context, target string, opts Options) error {
	if opts.ErrOut == nil {
		opts.ErrOut = io.Discard
	}

	files, err := ResolveTargets(target, opts.Extensions, opts.Exclude)
	if err != nil {
		return err
	}
	debug.LogPipeline("resolved %d file(s) for %q\n", len(files), target)

	for _, file := range files {
		result, err := SearchFile(ctx, opts.Opener, file, opts)
		if err != nil {
			var srcErr *pqerrors.SourceError
			if errors.As(err, &srcErr) {
				fmt.Fprintf(opts.ErrOut, "pqgrep: %v\n", srcErr)
				continue
			}
			return err
		}
		if len(result.Matches) == 0 {
			continue
		}
		if err := opts.Renderer.RenderFile(result.FileID, result.Matches, result.Truncated); err != nil {
			return err
		}
	}

	return nil
}

// SearchFile runs the match pipeline over one file. On truncation it stops
// pulling from the source instead of finishing enumeration.
func SearchFile(ctx context.Context, opener source.Opener, locator string, opts Options) (*FileResult, error) {
	reader, err := opener.Open(ctx, locator)
	if err != nil {
		return nil, err
	}

	scanner := stream.NewScanner(reader)
	defer scanner.Close()

	predicate := match.Predicate{Pattern: opts.Pattern, Invert: opts.Invert}
	controller := window.NewController(opts.Window)

	result := &FileResult{FileID: locator}

scan:
	for scanner.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !predicate.Accept(scanner.Record()) {
			continue
		}

		switch controller.Admit() {
		case window.Skip:
		case window.Emit:
			result.Matches = append(result.Matches, match.Match{
				RowOffset: scanner.Offset(),
				Record:    scanner.Record(),
				Pattern:   opts.Pattern,
				FileID:    locator,
			})
		case window.Stop:
			break scan
		}
	}

	if err := scanner.Err(); err != nil {
		var srcErr *pqerrors.SourceError
		if errors.As(err, &srcErr) {
			return nil, err
		}
		return nil, pqerrors.NewSourceError("read", locator, err)
	}

	controller.Exhausted()
	result.Truncated = controller.Truncated()

	debug.LogPipeline("%s: %d match(es), truncated=%t\n", locator, len(result.Matches), result.Truncated)
	return result, nil
}
