package core

import (
	"fmt"
	"strings"
)

// WarningCode classifies a recoverable anomaly.
type WarningCode string

// Warning codes emitted during extraction.
const (
	WarnInvalidField   WarningCode = "invalid_field"
	WarnShortLine      WarningCode = "short_line"
	WarnTruncatedField WarningCode = "truncated_field"
	WarnColumnMismatch WarningCode = "column_mismatch"
	WarnHeaderMismatch WarningCode = "header_mismatch"
	WarnLookupMiss     WarningCode = "lookup_miss"
	WarnEmptyFile      WarningCode = "empty_file"
)

// Warning is a structured diagnostic event.
// Line is 1-based; zero means the warning has no line context.
type Warning struct {
	File    string      `json:"file"`
	Line    int         `json:"line,omitempty"`
	Field   string      `json:"field,omitempty"`
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

// String renders the warning on a single line.
func (w Warning) String() string {
	var b strings.Builder
	b.WriteString(w.File)
	if w.Line > 0 {
		fmt.Fprintf(&b, ":%d", w.Line)
	}
	if w.Field != "" {
		fmt.Fprintf(&b, " [%s]", w.Field)
	}
	fmt.Fprintf(&b, " %s: %s", w.Code, w.Message)
	return b.String()
}

// Sink receives warnings. Implementations used by the batch engine
// must be safe for concurrent use.
type Sink interface {
	Warn(w Warning)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Warning)

// Warn calls f(w).
func (f SinkFunc) Warn(w Warning) { f(w) }
