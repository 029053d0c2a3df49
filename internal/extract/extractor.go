// Package extract maps raw text lines into ordered records.
//
// Two extractors are provided: FixedWidth splits lines by declared character
// widths and Delimited splits lines on commas. The Coordinator drives one of
// them over a whole input stream, collecting records and routing row-level
// anomalies to a core.Sink as warnings. Only an unusable schema or a failing
// stream aborts a file.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/flatconv/pkg/core"
)

// Delimiter separates fields in delimited files.
const Delimiter = ","

var (
	// ErrEmptySchema is returned when a schema declares no fields.
	ErrEmptySchema = errors.New("schema has no fields")
	// ErrMissingLookup is returned when a lookup field has no table attached.
	ErrMissingLookup = errors.New("lookup table missing")
)

// WarnFunc reports a row-level anomaly. line is 1-based, 0 for none.
type WarnFunc func(line int, field string, code core.WarningCode, msg string)

// Extractor turns one data line into a record. A nil result means the line
// produced no record.
type Extractor interface {
	Kind() core.ReaderKind
	Extract(line string, lineNo int, schema *core.Schema, warn WarnFunc) *core.Record
}

// SchemaChecker is implemented by extractors that report field definitions
// they cannot use. The coordinator calls it once per file, before any line.
type SchemaChecker interface {
	CheckSchema(schema *core.Schema, warn WarnFunc)
}

// HeaderReader is implemented by extractors whose files start with a header line.
type HeaderReader interface {
	CheckHeader(header string, schema *core.Schema, warn WarnFunc)
}

// ValidateSchema performs the structural checks required before extraction.
func ValidateSchema(s *core.Schema) error {
	if s == nil || len(s.Fields) == 0 {
		return ErrEmptySchema
	}
	for i := range s.Fields {
		f := &s.Fields[i]
		if f.RequiresLookup && f.Lookup == nil {
			return fmt.Errorf("field %q: %w", f.Name, ErrMissingLookup)
		}
	}
	return nil
}

// KindForPath picks the reader kind for an input file. An explicit override
// wins; otherwise ".csv" files are delimited and everything else is fixed-width.
func KindForPath(path string, override core.ReaderKind) core.ReaderKind {
	if override != core.ReaderAuto {
		return override
	}
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return core.ReaderDelimited
	}
	return core.ReaderFixedWidth
}

// New returns the extractor for kind.
func New(kind core.ReaderKind) (Extractor, error) {
	switch kind {
	case core.ReaderFixedWidth:
		return FixedWidth{}, nil
	case core.ReaderDelimited:
		return Delimited{}, nil
	default:
		return nil, fmt.Errorf("no extractor for reader kind %q", kind)
	}
}
