package engine

import "github.com/leapstack-labs/flatconv/pkg/core"

// Progress receives batch progress. OnFileDone is called from worker
// goroutines and must be safe for concurrent use.
type Progress interface {
	OnRunStart(total int)
	OnFileDone(res *core.FileResult)
	OnRunDone(batch *core.BatchResult)
}

// SetProgress installs a progress reporter for subsequent runs. Nil
// disables reporting.
func (e *Engine) SetProgress(p Progress) {
	e.progress = p
}
