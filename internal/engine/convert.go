package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/text/encoding/htmlindex"

	"github.com/leapstack-labs/flatconv/internal/diagnostic"
	"github.com/leapstack-labs/flatconv/internal/extract"
	"github.com/leapstack-labs/flatconv/pkg/core"
)

// ConvertFile converts one input file and writes its output document.
// Failures are reported in the result, never returned, so a batch can
// continue with the next file.
func (e *Engine) ConvertFile(ctx context.Context, path string) *core.FileResult {
	start := time.Now()
	res := &core.FileResult{Input: path, Status: core.FileStatusSuccess}
	defer func() { res.Duration = time.Since(start) }()

	if err := e.convert(ctx, path, res); err != nil {
		res.Status = core.FileStatusFailed
		res.Error = err.Error()
		e.logger.Error("conversion failed", "file", path, "error", err)
		return res
	}

	e.logger.Info("converted file",
		"file", path,
		"output", res.Output,
		"records", res.Records,
		"warnings", len(res.Warnings))
	return res
}

func (e *Engine) convert(ctx context.Context, path string, res *core.FileResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sch, err := e.loader.Load(path)
	if err != nil {
		return err
	}
	if err := extract.ValidateSchema(sch); err != nil {
		return fmt.Errorf("schema %s: %w", sch.Source, err)
	}

	kind := extract.KindForPath(path, sch.Reader)
	ex, err := extract.New(kind)
	if err != nil {
		return err
	}
	res.Reader = kind

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer func() { _ = f.Close() }()

	r, err := decodeReader(f, sch.Encoding)
	if err != nil {
		return err
	}

	collector := diagnostic.NewCollector()
	coord := extract.NewCoordinator(ex, diagnostic.Tee(collector, e.sink), path)
	records, err := coord.ReadAll(r, sch)
	res.Warnings = collector.Warnings()
	if err != nil {
		return err
	}
	res.Records = len(records)

	data, err := e.serializer.Serialize(records)
	if err != nil {
		return fmt.Errorf("serializing %s: %w", e.formatName, err)
	}

	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	out := e.OutputPath(path)
	if err := writeFileAtomic(out, data); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	res.Output = out
	return nil
}

// decodeReader wraps r with a decoder for the named text encoding.
// An empty name reads the input as UTF-8.
func decodeReader(r io.Reader, name string) (io.Reader, error) {
	if name == "" {
		return r, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", name, err)
	}
	return enc.NewDecoder().Reader(r), nil
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place, so watchers never see a partial document.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	if err := os.Chmod(name, 0o644); err != nil {
		_ = os.Remove(name)
		return err
	}
	return os.Rename(name, path)
}
