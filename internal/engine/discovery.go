package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/leapstack-labs/flatconv/internal/schema"
)

// Discover lists the regular files of the input directory that pass the
// include filters, sorted by name. Hidden files are skipped.
func (e *Engine) Discover() ([]string, error) {
	entries, err := os.ReadDir(e.inputDir)
	if err != nil {
		return nil, fmt.Errorf("input directory not found at %q: %w", e.inputDir, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if !e.included(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(e.inputDir, entry.Name()))
	}

	e.logger.Debug("discovered input files", "dir", e.inputDir, "count", len(files))
	return files, nil
}

// included reports whether name passes the include filters.
func (e *Engine) included(name string) bool {
	if len(e.include) == 0 {
		return true
	}
	for _, g := range e.include {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// compilePatterns compiles include patterns. Besides * ? and [...] they
// accept {a,b} alternation.
func compilePatterns(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern %q: %w", p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func outputPath(outputDir, inputPath, ext string) string {
	return filepath.Join(outputDir, schema.BaseName(inputPath)+"."+ext)
}
