package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/leapstack-labs/flatconv/internal/schema"
	"github.com/leapstack-labs/flatconv/pkg/core"
)

// Watch re-converts input files when they, their schema or one of their
// lookup tables change. Changes are debounced and converted as one run.
// onResult (optional) receives every batch. Watch returns when ctx is done.
func (e *Engine) Watch(ctx context.Context, onResult func(*core.BatchResult)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	inputDir := filepath.Clean(e.inputDir)
	schemaDir := filepath.Clean(e.loader.Dir())

	if err := watcher.Add(inputDir); err != nil {
		return fmt.Errorf("watching input directory %q: %w", inputDir, err)
	}
	if schemaDir != inputDir {
		if err := watcher.Add(schemaDir); err != nil {
			// Schemas are resolved per file; conversions still report the missing directory.
			e.logger.Warn("failed to watch schema directory", "dir", schemaDir, "error", err)
		}
	}

	e.logger.Info("watching for changes", "input_dir", inputDir, "schema_dir", schemaDir, "debounce", e.debounce)

	var (
		mu            sync.Mutex
		pending       = make(map[string]struct{})
		debounceTimer *time.Timer
		ready         = make(chan struct{}, 1)
	)
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			affected := e.affectedInputs(event.Name, inputDir, schemaDir)
			if len(affected) == 0 {
				continue
			}

			e.logger.Debug("file changed", "file", event.Name, "affected", len(affected))

			mu.Lock()
			for _, p := range affected {
				pending[p] = struct{}{}
			}
			mu.Unlock()

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(e.debounce, func() {
				select {
				case ready <- struct{}{}:
				default:
				}
			})

		case <-ready:
			mu.Lock()
			paths := make([]string, 0, len(pending))
			for p := range pending {
				if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
					paths = append(paths, p)
				}
			}
			pending = make(map[string]struct{})
			mu.Unlock()

			if len(paths) == 0 {
				continue
			}
			sort.Strings(paths)

			batch, err := e.Run(ctx, paths...)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				e.logger.Error("watch run failed", "error", err)
				continue
			}
			if onResult != nil {
				onResult(batch)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			e.logger.Error("watcher error", "error", err)
		}
	}
}

// affectedInputs maps a changed path to the input files to re-convert.
func (e *Engine) affectedInputs(changed, inputDir, schemaDir string) []string {
	name := filepath.Base(changed)
	if strings.HasPrefix(name, ".") {
		return nil
	}
	dir := filepath.Dir(changed)

	var out []string
	if dir == inputDir && e.included(name) {
		out = append(out, changed)
	}
	if dir == schemaDir {
		inputs, err := e.Discover()
		if err != nil {
			return out
		}
		for _, in := range inputs {
			if in != changed && schema.Affects(changed, in) {
				out = append(out, in)
			}
		}
	}
	return out
}
