package extract

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/flatconv/pkg/core"
)

// Delimited extracts comma-separated fields by position.
// Quoting is not interpreted: every comma separates two fields.
type Delimited struct{}

// Kind implements Extractor.
func (Delimited) Kind() core.ReaderKind { return core.ReaderDelimited }

// CheckSchema implements SchemaChecker: unnamed fields are reported once and
// their columns dropped from every record.
func (Delimited) CheckSchema(schema *core.Schema, warn WarnFunc) {
	for i := range schema.Fields {
		if schema.Fields[i].Name == "" {
			warn(0, "", core.WarnInvalidField,
				fmt.Sprintf("field %d has no name; skipping column", i+1))
		}
	}
}

// CheckHeader compares the header column count with the schema. A mismatch
// is only reported; extraction still maps columns by position.
func (Delimited) CheckHeader(header string, schema *core.Schema, warn WarnFunc) {
	n := len(strings.Split(header, Delimiter))
	if n != len(schema.Fields) {
		warn(0, "", core.WarnHeaderMismatch,
			fmt.Sprintf("header has %d columns but schema declares %d fields", n, len(schema.Fields)))
	}
}

// Extract zips the line's tokens to the schema fields. Lines whose token
// count differs from the field count produce no record.
func (Delimited) Extract(line string, lineNo int, schema *core.Schema, warn WarnFunc) *core.Record {
	if strings.TrimSpace(line) == "" {
		return nil
	}

	tokens := strings.Split(line, Delimiter)
	if len(tokens) != len(schema.Fields) {
		warn(lineNo, "", core.WarnColumnMismatch,
			fmt.Sprintf("expected %d columns, found %d; skipping line", len(schema.Fields), len(tokens)))
		return nil
	}

	rec := core.NewRecord(len(tokens))
	for i := range schema.Fields {
		f := &schema.Fields[i]
		if f.Name == "" {
			continue
		}
		rec.Set(f.Name, resolveField(f, strings.TrimSpace(tokens[i]), lineNo, warn))
	}

	if rec.Len() == 0 {
		return nil
	}
	return rec
}
