package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/pqgrep/pqgrep/internal/match"
	"github.com/pqgrep/pqgrep/internal/record"
)

// cellEscaper keeps field values from merging with or terminating the table
// structure.
var cellEscaper = strings.NewReplacer(
	"|", "\\|",
	"\n", "\\n",
	"\r", "\\r",
)

// TableRenderer writes one Markdown table section per file: a header line
// naming the file, a header row of field names taken from the first match,
// then one row per match with the row offset in the first column.
type TableRenderer struct {
	Out       io.Writer
	Transform Transform

	wroteSection bool
}

func (t *TableRenderer) RenderFile(fileID string, matches []match.Match, truncated bool) error {
	if len(matches) == 0 {
		return nil
	}

	var sb strings.Builder
	if t.wroteSection {
		sb.WriteByte('\n')
	}
	t.wroteSection = true

	fmt.Fprintf(&sb, "### %s\n\n", fileID)

	names := matches[0].Record.Names()
	sb.WriteString("| row |")
	for _, name := range names {
		sb.WriteString(" ")
		sb.WriteString(cellEscaper.Replace(name))
		sb.WriteString(" |")
	}
	sb.WriteByte('\n')

	sb.WriteString("| --- |")
	for range names {
		sb.WriteString(" --- |")
	}
	sb.WriteByte('\n')

	for _, m := range matches {
		fmt.Fprintf(&sb, "| %d |", m.RowOffset)
		for _, f := range m.Record.Fields {
			cell := record.DisplayString(t.Transform.Apply(f.Value))
			sb.WriteString(" ")
			sb.WriteString(cellEscaper.Replace(cell))
			sb.WriteString(" |")
		}
		sb.WriteByte('\n')
	}

	if truncated {
		sb.WriteString(Ellipsis)
		sb.WriteByte('\n')
	}

	_, err := io.WriteString(t.Out, sb.String())
	return err
}
