package source

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"

	pqerrors "github.com/pqgrep/pqgrep/internal/errors"
)

// parquetReader adapts a parquet-go file to the Reader contract. The locator
// is kept for error reporting; for remote sources it names the original URL
// rather than the cache file.
type parquetReader struct {
	locator string
	osFile  *os.File
	file    *parquet.File
	names   []string
	groups  []Group
}

// openParquet opens path and decodes its structural metadata. Failures do
// not partially yield: either the whole Reader is usable or a SourceError is
// returned.
func openParquet(path, locator string) (Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pqerrors.NewSourceError("open", locator, err)
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, pqerrors.NewSourceError("stat", locator, err)
	}
	if st.IsDir() {
		f.Close()
		return nil, pqerrors.NewSourceError("open", locator, fmt.Errorf("is a directory"))
	}

	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		f.Close()
		return nil, pqerrors.NewSourceError("decode", locator, err)
	}

	schemaFields := pf.Schema().Fields()
	names := make([]string, len(schemaFields))
	for i, field := range schemaFields {
		names[i] = field.Name()
	}

	rowGroups := pf.RowGroups()
	groups := make([]Group, len(rowGroups))
	for i, rg := range rowGroups {
		groups[i] = Group{Index: i, Rows: rg.NumRows()}
	}

	return &parquetReader{
		locator: locator,
		osFile:  f,
		file:    pf,
		names:   names,
		groups:  groups,
	}, nil
}

func (r *parquetReader) FieldNames() []string {
	return r.names
}

func (r *parquetReader) Groups() []Group {
	return r.groups
}

func (r *parquetReader) ReadGroup(index int) (GroupRows, error) {
	if index < 0 || index >= len(r.groups) {
		return nil, pqerrors.NewSourceError("read group", r.locator, fmt.Errorf("group %d out of range", index))
	}
	rg := r.file.RowGroups()[index]
	return &parquetGroupRows{
		locator: r.locator,
		reader:  parquet.NewGenericRowGroupReader[map[string]any](rg),
	}, nil
}

func (r *parquetReader) Close() error {
	return r.osFile.Close()
}

type parquetGroupRows struct {
	locator string
	reader  *parquet.GenericReader[map[string]any]
}

func (g *parquetGroupRows) Read(rows []map[string]any) (int, error) {
	// The generic reader reconstructs into the supplied maps; they must be
	// non-nil.
	for i := range rows {
		if rows[i] == nil {
			rows[i] = make(map[string]any)
		}
	}
	return g.reader.Read(rows)
}

func (g *parquetGroupRows) Close() error {
	return g.reader.Close()
}
