// Package state persists conversion run history in SQLite.
//
// Each batch is a run; each converted input file is a file run carrying its
// record count, output path and the warnings emitted while reading it.
package state

import "github.com/leapstack-labs/flatconv/pkg/core"

// Type aliases so callers holding a *SQLiteStore can stay in this package.
type (
	// Store is an alias for core.Store.
	Store = core.Store

	// Run is an alias for core.Run.
	Run = core.Run

	// FileRun is an alias for core.FileRun.
	FileRun = core.FileRun
)

// DefaultListLimit is used by ListRuns when limit is not positive.
const DefaultListLimit = 20

var _ Store = (*SQLiteStore)(nil)
