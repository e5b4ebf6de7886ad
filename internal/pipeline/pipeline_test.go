package pipeline

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pqerrors "github.com/pqgrep/pqgrep/internal/errors"
	"github.com/pqgrep/pqgrep/internal/match"
	"github.com/pqgrep/pqgrep/internal/pattern"
	"github.com/pqgrep/pqgrep/internal/source"
	"github.com/pqgrep/pqgrep/internal/window"
)

// memOpener serves in-memory files keyed by locator.
type memOpener struct {
	files   map[string]*memFile
	openErr map[string]error
	opened  []string
}

type memFile struct {
	names  []string
	groups [][]map[string]any

	openedGroups []int
}

func (o *memOpener) Open(_ context.Context, locator string) (source.Reader, error) {
	if err := o.openErr[locator]; err != nil {
		return nil, err
	}
	f, ok := o.files[locator]
	if !ok {
		return nil, pqerrors.NewSourceError("open", locator, errors.New("no such file"))
	}
	o.opened = append(o.opened, locator)
	return &memReader{file: f}, nil
}

type memReader struct {
	file *memFile
}

func (r *memReader) FieldNames() []string { return r.file.names }

func (r *memReader) Groups() []source.Group {
	groups := make([]source.Group, len(r.file.groups))
	for i, g := range r.file.groups {
		groups[i] = source.Group{Index: i, Rows: int64(len(g))}
	}
	return groups
}

func (r *memReader) ReadGroup(index int) (source.GroupRows, error) {
	r.file.openedGroups = append(r.file.openedGroups, index)
	return &memRows{data: r.file.groups[index]}, nil
}

func (r *memReader) Close() error { return nil }

type memRows struct {
	data []map[string]any
	pos  int
}

func (r *memRows) Read(rows []map[string]any) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := len(r.data) - r.pos
	if n > len(rows) {
		n = len(rows)
	}
	for i := 0; i < n; i++ {
		for k, v := range r.data[r.pos+i] {
			rows[i][k] = v
		}
	}
	r.pos += n
	return n, nil
}

func (r *memRows) Close() error { return nil }

// collectRenderer records RenderFile calls.
type collectRenderer struct {
	calls []renderCall
}

type renderCall struct {
	fileID    string
	matches   []match.Match
	truncated bool
}

func (c *collectRenderer) RenderFile(fileID string, matches []match.Match, truncated bool) error {
	c.calls = append(c.calls, renderCall{fileID, matches, truncated})
	return nil
}

func singleGroupFile(values ...string) *memFile {
	rows := make([]map[string]any, len(values))
	for i, v := range values {
		rows[i] = map[string]any{"msg": v}
	}
	return &memFile{names: []string{"msg"}, groups: [][]map[string]any{rows}}
}

func searchOpts(t *testing.T, query string, w window.Window) Options {
	t.Helper()
	p, err := pattern.Compile(query, false)
	require.NoError(t, err)
	return Options{Pattern: p, Window: w}
}

func offsets(matches []match.Match) []int64 {
	out := make([]int64, len(matches))
	for i, m := range matches {
		out[i] = m.RowOffset
	}
	return out
}

func TestSearchFile_WindowedMatches(t *testing.T) {
	opener := &memOpener{files: map[string]*memFile{
		"f.parquet": singleGroupFile(
			"hit 0", "miss", "hit 1", "hit 2", "miss", "hit 3", "hit 4"),
	}}

	opts := searchOpts(t, "hit", window.Window{Offset: 1, Limit: 3})
	result, err := SearchFile(context.Background(), opener, "f.parquet", opts)
	require.NoError(t, err)

	// Accepted matches sit at rows 0,2,3,5,6; the window keeps the three
	// after the first.
	assert.Equal(t, []int64{2, 3, 5}, offsets(result.Matches))
	assert.True(t, result.Truncated)
}

func TestSearchFile_NotTruncatedWhenWindowCoversAll(t *testing.T) {
	opener := &memOpener{files: map[string]*memFile{
		"f.parquet": singleGroupFile("hit", "hit", "hit"),
	}}

	opts := searchOpts(t, "hit", window.Window{Limit: 3})
	result, err := SearchFile(context.Background(), opener, "f.parquet", opts)
	require.NoError(t, err)

	assert.Len(t, result.Matches, 3)
	assert.False(t, result.Truncated)
}

func TestSearchFile_Invert(t *testing.T) {
	opener := &memOpener{files: map[string]*memFile{
		"f.parquet": singleGroupFile("hit", "other", "hit", "more"),
	}}

	opts := searchOpts(t, "hit", window.Window{})
	opts.Invert = true
	result, err := SearchFile(context.Background(), opener, "f.parquet", opts)
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 3}, offsets(result.Matches))
}

func TestSearchFile_TruncationStopsPullingGroups(t *testing.T) {
	// One row per group so group opens count the rows actually pulled.
	groups := make([][]map[string]any, 10)
	for i := range groups {
		groups[i] = []map[string]any{{"msg": "hit"}}
	}
	f := &memFile{names: []string{"msg"}, groups: groups}
	opener := &memOpener{files: map[string]*memFile{"f.parquet": f}}

	opts := searchOpts(t, "hit", window.Window{Limit: 2})
	result, err := SearchFile(context.Background(), opener, "f.parquet", opts)
	require.NoError(t, err)

	assert.Len(t, result.Matches, 2)
	assert.True(t, result.Truncated)
	// Stopped after the third accepted match proved truncation; the other
	// seven groups were never opened.
	assert.Equal(t, []int{0, 1, 2}, f.openedGroups)
}

func TestSearchFile_ContextCancellation(t *testing.T) {
	opener := &memOpener{files: map[string]*memFile{
		"f.parquet": singleGroupFile("hit", "hit"),
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := searchOpts(t, "hit", window.Window{})
	_, err := SearchFile(ctx, opener, "f.parquet", opts)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_FaultIsolation(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.parquet")
	writeFile(t, dir, "b.parquet")
	writeFile(t, dir, "c.parquet")

	opener := &memOpener{
		files: map[string]*memFile{
			pathIn(dir, "a.parquet"): singleGroupFile("hit a"),
			pathIn(dir, "c.parquet"): singleGroupFile("hit c"),
		},
		openErr: map[string]error{
			pathIn(dir, "b.parquet"): pqerrors.NewSourceError("open", pathIn(dir, "b.parquet"), errors.New("corrupt footer")),
		},
	}

	var errOut strings.Builder
	renderer := &collectRenderer{}
	opts := searchOpts(t, "hit", window.Window{})
	opts.Opener = opener
	opts.Renderer = renderer
	opts.ErrOut = &errOut

	err := Run(context.Background(), dir, opts)
	require.NoError(t, err)

	// The broken file was reported and the rest still rendered, in order.
	require.Len(t, renderer.calls, 2)
	assert.Equal(t, pathIn(dir, "a.parquet"), renderer.calls[0].fileID)
	assert.Equal(t, pathIn(dir, "c.parquet"), renderer.calls[1].fileID)
	assert.Contains(t, errOut.String(), "b.parquet")
	assert.Contains(t, errOut.String(), "corrupt footer")
}

func TestRun_ZeroMatchFilesNotRendered(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.parquet")
	writeFile(t, dir, "b.parquet")

	opener := &memOpener{files: map[string]*memFile{
		pathIn(dir, "a.parquet"): singleGroupFile("nothing here"),
		pathIn(dir, "b.parquet"): singleGroupFile("a hit"),
	}}

	renderer := &collectRenderer{}
	opts := searchOpts(t, "hit", window.Window{})
	opts.Opener = opener
	opts.Renderer = renderer

	require.NoError(t, Run(context.Background(), dir, opts))
	require.Len(t, renderer.calls, 1)
	assert.Equal(t, pathIn(dir, "b.parquet"), renderer.calls[0].fileID)
}

func TestRun_NonSourceErrorIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.parquet")

	fatal := errors.New("renderer broke")
	opener := &memOpener{
		openErr: map[string]error{pathIn(dir, "a.parquet"): fatal},
	}

	opts := searchOpts(t, "hit", window.Window{})
	opts.Opener = opener
	opts.Renderer = &collectRenderer{}

	err := Run(context.Background(), dir, opts)
	assert.ErrorIs(t, err, fatal)
}

func TestRun_MissingTarget(t *testing.T) {
	opts := searchOpts(t, "hit", window.Window{})
	opts.Opener = &memOpener{}
	opts.Renderer = &collectRenderer{}

	err := Run(context.Background(), "/nonexistent/path", opts)
	var srcErr *pqerrors.SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, "stat", srcErr.Operation)
}
