// Package core defines the shared language of flatconv.
//
// This package contains:
//   - Schema entities (Schema, Field, LookupTable, ReaderKind)
//   - Extraction output (Record, RecordSet)
//   - Diagnostics (Warning, Sink)
//   - Run history entities and the Store interface
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
