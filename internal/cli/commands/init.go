package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/flatconv/internal/cli/config"
	"github.com/leapstack-labs/flatconv/internal/cli/output"
)

const projectTemplate = "minimal"

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new flatconv project",
		Long: `Initialize a new flatconv project with a working example.

This creates:
  - flatconv.yaml configuration file
  - input/ with a fixed-width file (emp.txt) and a delimited file (people.csv)
  - cfg/ with their schemas and lookup tables
  - output/ for converted documents`,
		Example: `  # Initialize in current directory
  flatconv init

  # Initialize in a new directory
  flatconv init my-project

  # Overwrite an existing configuration and example files
  flatconv init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			cfg := getConfig()
			mode, _ := output.ParseMode(cfg.OutputFormat)
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

			return runInit(r, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

func runInit(r *output.Renderer, dir string, force bool) error {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	configPath := filepath.Join(dir, config.ConfigFileNames[0])
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", config.ConfigFileNames[0])
	}

	if err := copyTemplate(projectTemplate, dir, force); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, config.DefaultOutputDir), 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	files, err := listTemplateFiles(projectTemplate)
	if err != nil {
		return err
	}
	groups := groupTemplateFiles(files)

	r.Header(2, "Configuration")
	for _, f := range groups["config"] {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Header(2, "Inputs")
	for _, f := range groups["inputs"] {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Header(2, "Schemas")
	for _, f := range groups["schemas"] {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Success("flatconv project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  flatconv schema input/emp.txt   Inspect a resolved schema")
	r.Println("  flatconv convert                Convert every input file")
	r.Println("  flatconv watch                  Convert on every change")
	r.Println("  flatconv history                List previous runs")

	return nil
}
