package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/flatconv/internal/cli/output"
	"github.com/leapstack-labs/flatconv/pkg/core"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Convert input files whenever they or their schemas change",
		Long: `Convert the input directory once, then keep watching the input and
schema directories. A changed input file is converted again; a changed
schema or lookup table converts every input file that uses it.

Runs until interrupted (Ctrl+C).`,
		Example: `  # Watch with the configured directories
  flatconv watch

  # Batch bursts of changes for one second
  flatconv watch --debounce 1s`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}

	cmd.Flags().Duration("debounce", 0, "Delay before converting after a change (default 250ms)")
	cmd.Flags().StringArray("include", nil, "Glob pattern selecting input file names (repeatable)")

	return cmd
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report := func(batch *core.BatchResult) {
		if cc.Renderer.EffectiveMode() == output.ModeJSON {
			_ = cc.Renderer.JSON(batch)
			return
		}
		cc.Renderer.Header(2, "Run at "+time.Now().Format(time.TimeOnly))
		renderBatch(cc.Renderer, batch)
	}

	batch, err := cc.Engine.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	report(batch)

	if cc.Renderer.EffectiveMode() != output.ModeJSON {
		cc.Renderer.Println(cc.Renderer.Muted(fmt.Sprintf("Watching %s (Ctrl+C to stop)", cc.Engine.InputDir())))
	}
	return cc.Engine.Watch(ctx, report)
}
