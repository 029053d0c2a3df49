package commands

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/flatconv/internal/cli/output"
	"github.com/leapstack-labs/flatconv/internal/state"
	"github.com/leapstack-labs/flatconv/pkg/core"
)

// RunDetail is one run with its files and their warnings.
type RunDetail struct {
	*core.Run
	Files    []*core.FileRun `json:"files"`
	Warnings []core.Warning  `json:"warnings,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recent conversion runs",
		Long: `List recent conversion runs, newest first. With a run ID, show the files
converted by that run and the warnings they produced.`,
		Example: `  flatconv history
  flatconv history --limit 5 -o json
  flatconv history 0b6f3c1e-7d0a-4c55-9d7e-1f2a3b4c5d6e`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContextWithoutEngine(cmd)
			store, err := openStore(cc.Cfg, cc.Logger)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if len(args) == 1 {
				return runHistoryDetail(cc.Renderer, store, args[0])
			}
			return runHistoryList(cc.Renderer, store, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", state.DefaultListLimit, "Maximum number of runs to show")

	return cmd
}

// title renders a status for display ("failed" -> "Failed").
func title(s string) string {
	return cases.Title(language.English).String(s)
}

func runHistoryList(r *output.Renderer, store core.Store, limit int) error {
	runs, err := store.ListRuns(limit)
	if err != nil {
		return err
	}
	if r.EffectiveMode() == output.ModeJSON {
		if runs == nil {
			runs = []*core.Run{}
		}
		return r.JSON(runs)
	}
	if len(runs) == 0 {
		r.Println("No runs recorded yet")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			run.StartedAt.Local().Format(time.DateTime),
			runDuration(run),
			run.Format,
			title(string(run.Status)),
			run.InputDir,
		})
	}
	r.Table([]string{"Run", "Started", "Duration", "Format", "Status", "Input"}, rows)
	return nil
}

func runHistoryDetail(r *output.Renderer, store core.Store, id string) error {
	run, err := store.GetRun(id)
	if err != nil {
		return err
	}
	files, err := store.GetFileRuns(id)
	if err != nil {
		return err
	}
	detail := RunDetail{Run: run, Files: files}
	for _, f := range files {
		if f.WarningCount == 0 {
			continue
		}
		ws, err := store.GetWarnings(f.ID)
		if err != nil {
			return err
		}
		detail.Warnings = append(detail.Warnings, ws...)
	}

	if r.EffectiveMode() == output.ModeJSON {
		if detail.Files == nil {
			detail.Files = []*core.FileRun{}
		}
		return r.JSON(detail)
	}

	r.Header(1, "Run "+run.ID)
	r.KeyValue("Status", title(string(run.Status)))
	r.KeyValue("Started", run.StartedAt.Local().Format(time.DateTime))
	r.KeyValue("Duration", runDuration(run))
	r.KeyValue("Format", run.Format)
	r.KeyValue("Input", run.InputDir)
	if run.Error != "" {
		r.KeyValue("Error", run.Error)
	}
	r.Println("")

	rows := make([][]string, 0, len(files))
	for _, f := range files {
		rows = append(rows, []string{
			f.InputPath,
			string(f.Reader),
			strconv.Itoa(f.Records),
			strconv.Itoa(f.WarningCount),
			title(string(f.Status)),
			f.Error,
		})
	}
	r.Table([]string{"File", "Reader", "Records", "Warnings", "Status", "Error"}, rows)

	if len(detail.Warnings) > 0 {
		r.Println("")
		r.Header(2, "Warnings")
		for _, w := range detail.Warnings {
			r.StatusLine(w.String(), "warning", "")
		}
	}
	return nil
}

func runDuration(run *core.Run) string {
	if run.CompletedAt == nil {
		return "-"
	}
	return run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
}
