package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/flatconv/internal/cli/output"
	"github.com/leapstack-labs/flatconv/internal/format"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.InputDir == "" {
		return fmt.Errorf("input_dir is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	if c.SchemaDir == "" {
		return fmt.Errorf("schema_dir is required")
	}
	if !format.IsRegistered(c.Format) {
		return &format.UnknownFormatError{Format: c.Format, Available: format.List()}
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if strings.TrimSpace(c.LookupMarker) == "" {
		return fmt.Errorf("lookup_marker must not be empty")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format %q (expected text or json)", c.LogFormat)
	}
	if _, err := output.ParseMode(c.OutputFormat); err != nil {
		return err
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}

	in := filepath.Clean(c.InputDir)
	if in == filepath.Clean(c.OutputDir) {
		return fmt.Errorf("output_dir must differ from input_dir (%s)", c.InputDir)
	}
	if in == filepath.Clean(c.SchemaDir) {
		return fmt.Errorf("schema_dir must differ from input_dir (%s)", c.InputDir)
	}
	return nil
}
