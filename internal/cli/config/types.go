// Package config provides configuration management for the flatconv CLI.
//
// Values are layered with koanf: defaults, then flatconv.yaml, then
// FLATCONV_* environment variables, then command-line flags.
package config

import "time"

// Config holds all CLI configuration options.
type Config struct {
	InputDir     string      `koanf:"input_dir"`
	OutputDir    string      `koanf:"output_dir"`
	SchemaDir    string      `koanf:"schema_dir"`
	Format       string      `koanf:"format"`
	Workers      int         `koanf:"workers"`
	Include      []string    `koanf:"include"`
	LookupMarker string      `koanf:"lookup_marker"`
	StatePath    string      `koanf:"state_path"`
	NoHistory    bool        `koanf:"no_history"`
	Verbose      bool        `koanf:"verbose"`
	LogFormat    string      `koanf:"log_format"`
	OutputFormat string      `koanf:"output"`
	Watch        WatchConfig `koanf:"watch"`

	// ProjectRoot is the directory relative paths are resolved against:
	// the directory holding the config file, or the working directory.
	ProjectRoot string `koanf:"-"`
}

// WatchConfig holds options for the watch command.
type WatchConfig struct {
	Debounce time.Duration `koanf:"debounce"`
}

// Default configuration values.
const (
	DefaultInputDir     = "input"
	DefaultOutputDir    = "output"
	DefaultSchemaDir    = "cfg"
	DefaultFormat       = "xml"
	DefaultWorkers      = 1
	DefaultLookupMarker = "*"
	DefaultStateFile    = ".flatconv/state.db"
	DefaultLogFormat    = "text"
	DefaultOutput       = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultDebounce     = 250 * time.Millisecond
)

// ConfigFileNames are searched in order in the project root.
var ConfigFileNames = []string{"flatconv.yaml", "flatconv.yml"}

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		InputDir:     DefaultInputDir,
		OutputDir:    DefaultOutputDir,
		SchemaDir:    DefaultSchemaDir,
		Format:       DefaultFormat,
		Workers:      DefaultWorkers,
		LookupMarker: DefaultLookupMarker,
		StatePath:    DefaultStateFile,
		LogFormat:    DefaultLogFormat,
		OutputFormat: DefaultOutput,
		Watch:        WatchConfig{Debounce: DefaultDebounce},
	}
}
