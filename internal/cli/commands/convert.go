package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/flatconv/internal/cli/output"
	"github.com/leapstack-labs/flatconv/pkg/core"
)

// ConvertOptions holds options for the convert command.
type ConvertOptions struct {
	Strict bool
}

// NewConvertCommand creates the convert command.
func NewConvertCommand() *cobra.Command {
	opts := &ConvertOptions{}

	cmd := &cobra.Command{
		Use:   "convert [files...]",
		Short: "Convert input files to structured documents",
		Long: `Convert every file in the input directory, or only the given files.

Each file is read with the schema resolved from the schema directory and
written to the output directory in the configured format. A file that
cannot be converted does not stop the others; the command exits non-zero
when any file failed.`,
		Example: `  # Convert the whole input directory to XML
  flatconv convert

  # Convert two files to JSON with four workers
  flatconv convert -f json -w 4 input/emp.txt input/people.csv

  # Only convert .txt and .csv files and fail on any warning
  flatconv convert --include '*.{txt,csv}' --strict`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "Exit non-zero when any warning was emitted")
	cmd.Flags().StringArray("include", nil, "Glob pattern selecting input file names (repeatable)")

	return cmd
}

func runConvert(cmd *cobra.Command, args []string, opts *ConvertOptions) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if bp := newBarProgress(cc.Renderer, cmd.ErrOrStderr(), cc.Cfg.Verbose); bp != nil {
		cc.Engine.SetProgress(bp)
	}

	batch, err := cc.Engine.Run(ctx, args...)
	if batch == nil {
		return err
	}

	if cc.Renderer.EffectiveMode() == output.ModeJSON {
		if jerr := cc.Renderer.JSON(batch); jerr != nil {
			return jerr
		}
	} else {
		renderBatch(cc.Renderer, batch)
	}

	if err != nil {
		return err
	}
	return batchError(batch, opts.Strict)
}

// batchError turns failed files (and warnings in strict mode) into the
// command's exit error.
func batchError(batch *core.BatchResult, strict bool) error {
	if failed := batch.Failed(); failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", failed, len(batch.Files))
	}
	if strict {
		if n := batch.Warnings(); n > 0 {
			return fmt.Errorf("%d warning(s) emitted (--strict)", n)
		}
	}
	return nil
}

// renderBatch prints the per-file summary table followed by warnings and errors.
func renderBatch(r *output.Renderer, batch *core.BatchResult) {
	if len(batch.Files) == 0 {
		r.Warning("No input files found")
		return
	}

	rows := make([][]string, 0, len(batch.Files))
	for _, f := range batch.Files {
		rows = append(rows, []string{
			filepath.Base(f.Input),
			string(f.Reader),
			strconv.Itoa(f.Records),
			strconv.Itoa(len(f.Warnings)),
			string(f.Status),
			f.Duration.Round(time.Millisecond).String(),
		})
	}
	r.Table([]string{"File", "Reader", "Records", "Warnings", "Status", "Duration"}, rows)

	for _, f := range batch.Files {
		if f.Failed() {
			r.StatusLine(filepath.Base(f.Input), "failed", f.Error)
		}
		for _, w := range f.Warnings {
			r.StatusLine(w.String(), "warning", "")
		}
	}

	r.Println("")
	summary := fmt.Sprintf("%d file(s), %d record(s), %d warning(s)",
		len(batch.Files), batch.Records(), batch.Warnings())
	if batch.RunID != "" {
		summary += " " + r.Muted("run "+batch.RunID)
	}
	if batch.Failed() > 0 {
		r.Error(fmt.Sprintf("%s, %d failed", summary, batch.Failed()))
		return
	}
	r.Success(summary)
}

// commandContext returns the command's context, or Background when the
// command is executed outside a root command.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
