package core

import (
	"fmt"
	"strings"
)

// ReaderKind selects the extractor used for an input file.
type ReaderKind string

// Reader kinds.
const (
	ReaderAuto       ReaderKind = ""
	ReaderFixedWidth ReaderKind = "fixed"
	ReaderDelimited  ReaderKind = "delimited"
)

// ParseReaderKind converts a schema document value to a ReaderKind.
func ParseReaderKind(s string) (ReaderKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ReaderAuto, nil
	case "fixed", "fixed-width", "fixedwidth", "fixed_width":
		return ReaderFixedWidth, nil
	case "delimited", "csv":
		return ReaderDelimited, nil
	default:
		return ReaderAuto, fmt.Errorf("unknown reader kind %q (expected fixed or delimited)", s)
	}
}

// LookupTable maps raw field values to substitute values.
// A nil value is a null mapping and resolves to the empty string.
type LookupTable map[string]*string

// Field describes one column of an input file.
type Field struct {
	// Name is the output key, with any lookup marker already stripped.
	Name string
	// Length is the character width for fixed-width files. Ignored for delimited files.
	Length int
	// RequiresLookup marks fields whose values are translated through Lookup.
	RequiresLookup bool
	// Lookup is attached by the schema loader and never mutated afterwards.
	Lookup LookupTable
}

// Schema is the ordered field layout of one input file.
type Schema struct {
	// Name is the input file base name the schema was resolved for.
	Name   string
	Fields []Field
	// Reader overrides the extension-based reader choice when set.
	Reader ReaderKind
	// Encoding is an optional text encoding label (e.g. "latin1").
	Encoding string
	// Source is the path of the schema document, for diagnostics.
	Source string
}

// Width returns the total configured width of all valid fixed-width fields.
func (s *Schema) Width() int {
	total := 0
	for _, f := range s.Fields {
		if f.Length > 0 {
			total += f.Length
		}
	}
	return total
}

// FieldNames returns the field names in schema order.
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}
