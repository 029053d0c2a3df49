package engine

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/flatconv/pkg/core"
)

// Run converts the given files, or every discovered input file when none
// are given. Per-file failures are reported in the result; the returned
// error covers discovery, the history store and cancellation.
func (e *Engine) Run(ctx context.Context, paths ...string) (*core.BatchResult, error) {
	files := paths
	if len(files) == 0 {
		var err error
		if files, err = e.Discover(); err != nil {
			return nil, err
		}
	}

	e.logger.Info("starting run", "files", len(files), "format", e.formatName, "workers", e.workers)

	batch := &core.BatchResult{Files: make([]*core.FileResult, 0, len(files))}
	if e.store != nil {
		run, err := e.store.CreateRun(e.inputDir, e.formatName)
		if err != nil {
			return nil, fmt.Errorf("failed to create run: %w", err)
		}
		batch.RunID = run.ID
		e.logger.Debug("created run", "run_id", run.ID)
	}

	if e.progress != nil {
		e.progress.OnRunStart(len(files))
	}

	results := make([]*core.FileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, path := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			res := e.ConvertFile(gctx, path)
			e.recordFile(batch.RunID, res)
			results[i] = res
			if e.progress != nil {
				e.progress.OnFileDone(res)
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, res := range results {
		if res != nil {
			batch.Files = append(batch.Files, res)
		}
	}

	runErr := ctx.Err()
	e.completeRun(batch, runErr)
	if e.progress != nil {
		e.progress.OnRunDone(batch)
	}
	return batch, runErr
}

func (e *Engine) recordFile(runID string, res *core.FileResult) {
	if e.store == nil || runID == "" {
		return
	}
	if err := e.store.RecordFile(runID, res); err != nil {
		e.logger.Warn("failed to record file result", "file", res.Input, "error", err)
	}
}

func (e *Engine) completeRun(batch *core.BatchResult, runErr error) {
	status, msg := core.RunStatusCompleted, ""
	switch {
	case errors.Is(runErr, context.Canceled), errors.Is(runErr, context.DeadlineExceeded):
		status, msg = core.RunStatusCancelled, runErr.Error()
	case batch.Failed() > 0:
		status, msg = core.RunStatusFailed, fmt.Sprintf("%d file(s) failed", batch.Failed())
	}

	if status == core.RunStatusCompleted {
		e.logger.Info("run completed", "run_id", batch.RunID, "files", len(batch.Files),
			"records", batch.Records(), "warnings", batch.Warnings())
	} else {
		e.logger.Info("run finished with errors", "run_id", batch.RunID, "status", string(status), "error", msg)
	}

	if e.store == nil || batch.RunID == "" {
		return
	}
	if err := e.store.CompleteRun(batch.RunID, status, msg); err != nil {
		e.logger.Warn("failed to complete run", "run_id", batch.RunID, "error", err)
	}
}
