package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"

	"github.com/pqgrep/pqgrep/internal/debug"
	pqerrors "github.com/pqgrep/pqgrep/internal/errors"
)

// fetchRemote downloads a remote locator into the cache directory and
// returns the local path. A previously fetched locator is reused without
// re-downloading. Transient failures are not retried; they surface
// immediately as SourceError.
func fetchRemote(ctx context.Context, locator, cacheDir string) (string, error) {
	if cacheDir == "" {
		cacheDir = filepath.Join(os.TempDir(), "pqgrep-cache")
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", pqerrors.NewSourceError("cache", locator, err)
	}

	cachePath := filepath.Join(cacheDir, fmt.Sprintf("%016x.parquet", xxhash.Sum64String(locator)))
	if _, err := os.Stat(cachePath); err == nil {
		debug.LogSource("cache hit for %s\n", locator)
		return cachePath, nil
	}

	debug.LogSource("fetching %s\n", locator)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return "", pqerrors.NewSourceError("fetch", locator, err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", pqerrors.NewSourceError("fetch", locator, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", pqerrors.NewSourceError("fetch", locator, fmt.Errorf("unexpected status %s", resp.Status))
	}

	// Download to a temp name first so a partial body never shows up as a
	// cached file.
	tmp, err := os.CreateTemp(cacheDir, "download-*.tmp")
	if err != nil {
		return "", pqerrors.NewSourceError("cache", locator, err)
	}

	_, err = io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", pqerrors.NewSourceError("fetch", locator, err)
	}

	if err := os.Rename(tmp.Name(), cachePath); err != nil {
		os.Remove(tmp.Name())
		return "", pqerrors.NewSourceError("cache", locator, err)
	}

	return cachePath, nil
}
