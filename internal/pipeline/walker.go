package pipeline

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/pqgrep/pqgrep/internal/debug"
	pqerrors "github.com/pqgrep/pqgrep/internal/errors"
	"github.com/pqgrep/pqgrep/internal/source"
)

// ResolveTargets expands the input into the ordered list of file locators to
// search. An explicit remote locator is used as-is; an explicit file path is
// used as a single file regardless of extension; a directory (or an empty
// target, meaning the working directory) triggers a recursive enumeration
// filtered by extension and exclusion globs.
func ResolveTargets(target string, extensions, exclude []string) ([]string, error) {
	if source.IsRemote(target) {
		return []string{target}, nil
	}

	root := target
	if root == "" {
		root = "."
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, pqerrors.NewSourceError("stat", root, err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	return walkDirectory(root, extensions, exclude)
}

func walkDirectory(root string, extensions, exclude []string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped, not fatal: enumeration
			// failures on one branch must not abort the run.
			debug.LogWalk("skipping %s: %v\n", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if path == root {
			return nil
		}

		name := d.Name()
		if strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if excluded(rel, d.IsDir(), exclude) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if matchesExtension(name, extensions) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, pqerrors.NewSourceError("walk", root, err)
	}

	debug.LogWalk("found %d candidate file(s) under %s\n", len(files), root)
	return files, nil
}

// excluded checks the relative path against the doublestar exclusion globs.
// Directory entries also probe a synthetic child path so patterns written as
// "**/node_modules/**" prune the whole subtree at the directory itself.
func excluded(rel string, isDir bool, exclude []string) bool {
	for _, pat := range exclude {
		if matched, err := doublestar.Match(pat, rel); err == nil && matched {
			return true
		}
		if isDir {
			if matched, err := doublestar.Match(pat, rel+"/_"); err == nil && matched {
				return true
			}
		}
	}
	return false
}

func matchesExtension(name string, extensions []string) bool {
	if len(extensions) == 0 {
		extensions = []string{".parquet"}
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range extensions {
		if ext == want {
			return true
		}
	}
	return false
}
