// Package record defines the ordered field mapping produced by the columnar
// decoder and the canonical textual form of field values.
package record

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Field is a single named value within a record.
type Field struct {
	Name  string
	Value any
}

// Record is an ordered mapping from field name to value. Field order follows
// the file schema, so it is uniform within one file but not across files.
type Record struct {
	Fields []Field
}

// FromMap builds a Record from a decoded row, ordering fields by names.
// Names not present in the row map become nil-valued fields so the field set
// stays uniform within one file.
func FromMap(names []string, row map[string]any) Record {
	fields := make([]Field, len(names))
	for i, name := range names {
		fields[i] = Field{Name: name, Value: row[name]}
	}
	return Record{Fields: fields}
}

// Names returns the field names in record order.
func (r Record) Names() []string {
	names := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		names[i] = f.Name
	}
	return names
}

// ValueString converts a field value to its canonical text for matching.
// The second return is false for null/missing values, which are skipped by
// the predicate rather than treated as non-matches.
func ValueString(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	return valueText(v), true
}

// DisplayString converts a field value to its rendered cell text:
// null/missing becomes the literal "null", strings pass through as-is,
// everything else uses its canonical text.
func DisplayString(v any) string {
	if v == nil {
		return "null"
	}
	if s, ok := v.(string); ok {
		return s
	}
	return valueText(v)
}

// valueText renders v deterministically. Scalar conversions are
// locale-independent; nested mappings render with sorted keys since Go map
// iteration order is unspecified.
func valueText(v any) string {
	var sb strings.Builder
	writeValue(&sb, v)
	return sb.String()
}

func writeValue(sb *strings.Builder, v any) {
	switch x := v.(type) {
	case nil:
		sb.WriteString("null")
	case string:
		sb.WriteString(x)
	case bool:
		sb.WriteString(strconv.FormatBool(x))
	case int:
		sb.WriteString(strconv.FormatInt(int64(x), 10))
	case int32:
		sb.WriteString(strconv.FormatInt(int64(x), 10))
	case int64:
		sb.WriteString(strconv.FormatInt(x, 10))
	case uint64:
		sb.WriteString(strconv.FormatUint(x, 10))
	case float32:
		sb.WriteString(strconv.FormatFloat(float64(x), 'g', -1, 32))
	case float64:
		sb.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	case []byte:
		sb.Write(x)
	case []any:
		sb.WriteByte('[')
		for i, e := range x {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeValue(sb, e)
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
				sb.WriteString(", ")
			}
			sb.WriteString(k)
			sb.WriteString(": ")
			writeValue(sb, x[k])
		}
		sb.WriteByte('}')
	default:
		fmt.Fprintf(sb, "%v", x)
	}
}
