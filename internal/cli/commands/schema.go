package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/flatconv/internal/cli/output"
	"github.com/leapstack-labs/flatconv/internal/extract"
	"github.com/leapstack-labs/flatconv/internal/schema"
	"github.com/leapstack-labs/flatconv/pkg/core"
)

// SchemaView is the resolved schema of one input file.
type SchemaView struct {
	Input    string               `json:"input"`
	Source   string               `json:"source"`
	Reader   core.ReaderKind      `json:"reader"`
	Encoding string               `json:"encoding,omitempty"`
	Width    int                  `json:"width"`
	Fields   []schema.FieldLayout `json:"fields"`
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema <input-file>",
		Short: "Show the schema resolved for an input file",
		Long: `Resolve the schema document for an input file and show its field layout:
offsets and widths for fixed-width files, and which fields are translated
through lookup tables.`,
		Example: `  flatconv schema input/emp.txt
  flatconv schema input/people.csv -o json`,
		Args: cobra.ExactArgs(1),
		RunE: runSchema,
	}
}

func runSchema(cmd *cobra.Command, args []string) error {
	cc := NewCommandContextWithoutEngine(cmd)
	loader := schema.NewLoader(cc.Cfg.SchemaDir, cc.Cfg.LookupMarker, cc.Logger)

	s, err := loader.Load(args[0])
	if err != nil {
		return err
	}

	view := SchemaView{
		Input:    args[0],
		Source:   s.Source,
		Reader:   extract.KindForPath(args[0], s.Reader),
		Encoding: s.Encoding,
		Width:    s.Width(),
		Fields:   schema.Describe(s),
	}
	renderSchema(cc.Renderer, &view)
	return nil
}

func renderSchema(r *output.Renderer, view *SchemaView) {
	if r.EffectiveMode() == output.ModeJSON {
		_ = r.JSON(view)
		return
	}

	r.Header(1, "Schema: "+view.Input)
	r.KeyValue("Source", view.Source)
	r.KeyValue("Reader", string(view.Reader))
	if view.Encoding != "" {
		r.KeyValue("Encoding", view.Encoding)
	}
	fixed := view.Reader == core.ReaderFixedWidth
	if fixed {
		r.KeyValue("Width", strconv.Itoa(view.Width))
	}
	r.Println("")

	header := []string{"#", "Field", "Lookup"}
	if fixed {
		header = []string{"#", "Field", "Offset", "Length", "Lookup"}
	}
	rows := make([][]string, 0, len(view.Fields))
	for i, f := range view.Fields {
		lookup := "-"
		if f.Lookup {
			lookup = strconv.Itoa(f.LookupSize) + " entries"
		}
		name := f.Name
		if !f.Valid && fixed {
			name += " (skipped)"
		}
		row := []string{strconv.Itoa(i + 1), name, lookup}
		if fixed {
			offset, length := "-", strconv.Itoa(f.Length)
			if f.Valid {
				offset = strconv.Itoa(f.Offset)
			}
			row = []string{strconv.Itoa(i + 1), name, offset, length, lookup}
		}
		rows = append(rows, row)
	}
	r.Table(header, rows)
}
