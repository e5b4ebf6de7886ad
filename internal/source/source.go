// Package source wraps the columnar file backends (local path or remote
// locator) behind a uniform lazy-read contract: structural metadata up
// front, one row group's records at a time.
package source

import (
	"context"
	"strings"
)

// Group describes one independently readable row group.
type Group struct {
	Index int
	Rows  int64
}

// Reader is an open columnar file. At most one GroupRows should be open at a
// time; closing the Reader releases the underlying file.
type Reader interface {
	// FieldNames returns the top-level field names in schema order.
	FieldNames() []string

	// Groups returns the ordered row groups with their row counts.
	Groups() []Group

	// ReadGroup opens the records of one group for sequential reading.
	ReadGroup(index int) (GroupRows, error)

	Close() error
}

// GroupRows reads one group's records as field-name keyed rows.
// Read follows the io.Reader convention and returns io.EOF when the group is
// exhausted. Close may be called before exhaustion to stop early.
type GroupRows interface {
	Read(rows []map[string]any) (int, error)
	Close() error
}

// Opener resolves a locator into an open Reader. It exists so the pipeline
// can be exercised against in-memory sources in tests.
type Opener interface {
	Open(ctx context.Context, locator string) (Reader, error)
}

// IsRemote reports whether the locator names a remote resource.
func IsRemote(locator string) bool {
	return strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://")
}

// DefaultOpener opens local paths directly and fetches remote locators into
// the download cache first.
type DefaultOpener struct {
	// CacheDir overrides the remote download cache location (tests).
	CacheDir string
}

func (o DefaultOpener) Open(ctx context.Context, locator string) (Reader, error) {
	if IsRemote(locator) {
		path, err := fetchRemote(ctx, locator, o.CacheDir)
		if err != nil {
			return nil, err
		}
		return openParquet(path, locator)
	}
	return openParquet(locator, locator)
}
