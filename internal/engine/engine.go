// Package engine converts directories of flat files into structured documents.
// It resolves a schema per input file, runs the matching extractor, serializes
// the records and tracks every batch in the run history store.
package engine

import (
	"log/slog"
	"time"

	"github.com/gobwas/glob"

	"github.com/leapstack-labs/flatconv/internal/diagnostic"
	"github.com/leapstack-labs/flatconv/internal/format"
	"github.com/leapstack-labs/flatconv/internal/schema"
	"github.com/leapstack-labs/flatconv/pkg/core"
)

// DefaultDebounce is the watch debounce used when Config.Debounce is zero.
const DefaultDebounce = 250 * time.Millisecond

// Engine orchestrates batch conversions.
type Engine struct {
	inputDir   string
	outputDir  string
	include    []glob.Glob
	workers    int
	debounce   time.Duration
	formatName string

	loader     *schema.Loader
	serializer format.Serializer
	store      core.Store
	sink       core.Sink
	progress   Progress
	logger     *slog.Logger
}

// Config holds engine configuration.
type Config struct {
	// InputDir is scanned for input files when Run is called without paths.
	InputDir string
	// OutputDir receives one document per converted file. Created on demand.
	OutputDir string
	// SchemaDir holds schema and lookup documents.
	SchemaDir string
	// Format is the registered serializer name (xml, json, yaml).
	Format string
	// Workers bounds the number of files converted concurrently (default 1).
	Workers int
	// Include holds glob patterns matched against input file names
	// ("*.txt", "emp_{2024,2025}*").
	// Empty means every file.
	Include []string
	// LookupMarker prefixes lookup field names in schemas (default "*").
	LookupMarker string
	// Debounce delays watch-triggered conversions (default DefaultDebounce).
	Debounce time.Duration
	// Store records run history (optional).
	Store core.Store
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates an engine. It fails on an unknown output format or an
// invalid include pattern.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	serializer, err := format.New(cfg.Format)
	if err != nil {
		return nil, err
	}
	include, err := compilePatterns(cfg.Include)
	if err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	logger.Debug("initializing engine",
		"input_dir", cfg.InputDir,
		"output_dir", cfg.OutputDir,
		"schema_dir", cfg.SchemaDir,
		"format", serializer.Name(),
		"workers", workers)

	return &Engine{
		inputDir:   cfg.InputDir,
		outputDir:  cfg.OutputDir,
		include:    include,
		workers:    workers,
		debounce:   debounce,
		formatName: serializer.Name(),
		loader:     schema.NewLoader(cfg.SchemaDir, cfg.LookupMarker, logger),
		serializer: serializer,
		store:      cfg.Store,
		sink:       diagnostic.NewLogSink(logger),
		logger:     logger,
	}, nil
}

// Loader returns the schema loader used by the engine.
func (e *Engine) Loader() *schema.Loader {
	return e.loader
}

// Format returns the output format name.
func (e *Engine) Format() string {
	return e.formatName
}

// InputDir returns the configured input directory.
func (e *Engine) InputDir() string {
	return e.inputDir
}

// OutputPath returns the document path written for an input file.
func (e *Engine) OutputPath(inputPath string) string {
	return outputPath(e.outputDir, inputPath, e.serializer.Extension())
}
