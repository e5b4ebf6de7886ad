package display

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pqgrep/pqgrep/internal/match"
	"github.com/pqgrep/pqgrep/internal/record"
)

// maxExactJSONInt is the largest integer magnitude a generic JSON decoder is
// guaranteed to round-trip through a float64. Integers beyond it are emitted
// as strings so they survive losslessly.
const maxExactJSONInt = int64(1) << 53

// LineRenderer writes one self-contained JSON object per match:
// {"filename":..., "rowOffset":..., "value":{...}}. Top-level field order
// follows the record; a bare ellipsis line marks a truncated file.
type LineRenderer struct {
	Out       io.Writer
	Transform Transform
}

func (l *LineRenderer) RenderFile(fileID string, matches []match.Match, truncated bool) error {
	var sb strings.Builder
	for _, m := range matches {
		sb.Reset()
		sb.WriteString(`{"filename":`)
		writeJSONString(&sb, fileID)
		sb.WriteString(`,"rowOffset":`)
		sb.WriteString(strconv.FormatInt(m.RowOffset, 10))
		sb.WriteString(`,"value":`)
		l.writeRecord(&sb, m.Record)
		sb.WriteString("}\n")
		if _, err := io.WriteString(l.Out, sb.String()); err != nil {
			return err
		}
	}

	if truncated {
		if _, err := io.WriteString(l.Out, Ellipsis+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func (l *LineRenderer) writeRecord(sb *strings.Builder, r record.Record) {
	sb.WriteByte('{')
	for i, f := range r.Fields {
		if i > 0 {
			sb.WriteByte(',')
		}
		writeJSONString(sb, f.Name)
		sb.WriteByte(':')
		l.writeValue(sb, l.Transform.Apply(f.Value))
	}
	sb.WriteByte('}')
}

func (l *LineRenderer) writeValue(sb *strings.Builder, v any) {
	switch x := v.(type) {
	case nil:
		sb.WriteString("null")
	case string:
		writeJSONString(sb, x)
	case bool:
		sb.WriteString(strconv.FormatBool(x))
	case int:
		l.writeInt(sb, int64(x))
	case int32:
		sb.WriteString(strconv.FormatInt(int64(x), 10))
	case int64:
		l.writeInt(sb, x)
	case uint64:
		if x > uint64(maxExactJSONInt) {
			writeJSONString(sb, strconv.FormatUint(x, 10))
		} else {
			sb.WriteString(strconv.FormatUint(x, 10))
		}
	case float32:
		sb.WriteString(strconv.FormatFloat(float64(x), 'g', -1, 32))
	case float64:
		sb.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	case []byte:
		writeJSONString(sb, string(x))
	case []any:
		sb.WriteByte('[')
		for i, e := range x {
			if i > 0 {
				sb.WriteByte(',')
			}
			l.writeValue(sb, e)
		}
		sb.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeJSONString(sb, k)
			sb.WriteByte(':')
			l.writeValue(sb, x[k])
		}
		sb.WriteByte('}')
	default:
		writeJSONString(sb, fmt.Sprintf("%v", x))
	}
}

func (l *LineRenderer) writeInt(sb *strings.Builder, v int64) {
	if v > maxExactJSONInt || v < -maxExactJSONInt {
		writeJSONString(sb, strconv.FormatInt(v, 10))
		return
	}
	sb.WriteString(strconv.FormatInt(v, 10))
}

// writeJSONString escapes via encoding/json so the line stream always
// round-trips through a generic decoder.
func writeJSONString(sb *strings.Builder, s string) {
	b, err := json.Marshal(s)
	if err != nil {
		// json.Marshal of a string cannot fail; keep the contract obvious.
		sb.WriteString(`""`)
		return
	}
	sb.Write(b)
}
