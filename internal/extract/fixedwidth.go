package extract

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/flatconv/pkg/core"
)

// FixedWidth extracts fields by consecutive character widths.
// Widths count Unicode code points, not bytes.
type FixedWidth struct{}

// Kind implements Extractor.
func (FixedWidth) Kind() core.ReaderKind { return core.ReaderFixedWidth }

// CheckSchema implements SchemaChecker. Fields without a name or with a
// non-positive length are reported and later skipped by Extract.
func (FixedWidth) CheckSchema(schema *core.Schema, warn WarnFunc) {
	for i := range schema.Fields {
		f := &schema.Fields[i]
		if !usableWidth(f) {
			warn(0, f.Name, core.WarnInvalidField,
				fmt.Sprintf("invalid field configuration (name %q, length %d); skipping field", f.Name, f.Length))
		}
	}
}

func usableWidth(f *core.Field) bool {
	return f.Name != "" && f.Length > 0
}

// Extract walks the schema fields with a cursor. A line that ends early
// yields the fields read so far; fields past the end are absent. Fields
// rejected by CheckSchema are skipped without moving the cursor.
func (FixedWidth) Extract(line string, lineNo int, schema *core.Schema, warn WarnFunc) *core.Record {
	chars := []rune(line)
	rec := core.NewRecord(len(schema.Fields))
	pos := 0

	for i := range schema.Fields {
		f := &schema.Fields[i]

		if !usableWidth(f) {
			continue
		}

		if pos >= len(chars) {
			warn(lineNo, f.Name, core.WarnShortLine,
				fmt.Sprintf("line ended before field %q (starts at %d)", f.Name, pos))
			break
		}

		if pos+f.Length > len(chars) {
			warn(lineNo, f.Name, core.WarnTruncatedField,
				fmt.Sprintf("line is shorter than expected for field %q (expected length %d starting at %d); reading partial data",
					f.Name, f.Length, pos))
			raw := strings.TrimSpace(string(chars[pos:]))
			rec.Set(f.Name, resolveField(f, raw, lineNo, warn))
			break
		}

		raw := strings.TrimSpace(string(chars[pos : pos+f.Length]))
		rec.Set(f.Name, resolveField(f, raw, lineNo, warn))
		pos += f.Length
	}

	if rec.Len() == 0 {
		return nil
	}
	return rec
}
