package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/flatconv/internal/format"
)

// chdir switches the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("input-dir", "", "")
	fs.String("output-dir", "", "")
	fs.String("schema-dir", "", "")
	fs.StringP("format", "f", "", "")
	fs.IntP("workers", "w", 0, "")
	fs.StringArray("include", nil, "")
	fs.String("state", "", "")
	fs.Bool("no-history", false, "")
	fs.Duration("debounce", 0, "")
	return fs
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	chdir(t, dir)
	// Resolve symlinks (macOS /var -> /private/var) the same way Getwd does.
	cwd, err := os.Getwd()
	require.NoError(t, err)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, cwd, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(cwd, "input"), cfg.InputDir)
	assert.Equal(t, filepath.Join(cwd, "output"), cfg.OutputDir)
	assert.Equal(t, filepath.Join(cwd, "cfg"), cfg.SchemaDir)
	assert.Equal(t, filepath.Join(cwd, ".flatconv", "state.db"), cfg.StatePath)
	assert.Equal(t, "xml", cfg.Format)
	assert.Equal(t, 1, cfg.Workers)
	assert.Empty(t, cfg.Include)
	assert.Equal(t, "*", cfg.LookupMarker)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "auto", cfg.OutputFormat)
	assert.Equal(t, DefaultDebounce, cfg.Watch.Debounce)
	assert.Empty(t, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_FileFoundUpward(t *testing.T) {
	ResetConfig()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "flatconv.yaml"), []byte(`
input_dir: data/in
format: json
workers: 3
include:
  - "*.txt"
watch:
  debounce: 1s
`), 0o600))
	sub := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	chdir(t, sub)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	rootReal, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	assert.Equal(t, rootReal, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(rootReal, "data", "in"), cfg.InputDir)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, []string{"*.txt"}, cfg.Include)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)
	assert.Equal(t, filepath.Join(rootReal, "flatconv.yaml"), GetConfigFileUsed())
}

func TestLoadConfig_Precedence(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	chdir(t, dir)
	cwd, err := os.Getwd()
	require.NoError(t, err)

	cfgPath := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("format: json\nworkers: 2\noutput_dir: out-file\n"), 0o600))

	t.Setenv("FLATCONV_FORMAT", "yaml")
	t.Setenv("FLATCONV_INCLUDE", "*.csv *.txt")
	t.Setenv("FLATCONV_WATCH_DEBOUNCE", "50ms")

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--workers", "8", "--state", "history.db", "--debounce", "75ms"}))

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)

	assert.Equal(t, "yaml", cfg.Format, "env overrides file")
	assert.Equal(t, 8, cfg.Workers, "flag overrides file")
	assert.Equal(t, []string{"*.csv", "*.txt"}, cfg.Include)
	assert.Equal(t, 75*time.Millisecond, cfg.Watch.Debounce, "flag overrides env")
	assert.Equal(t, filepath.Join(cwd, "history.db"), cfg.StatePath, "flag paths resolve against CWD")
	assert.Equal(t, filepath.Join(dir, "out-file"), cfg.OutputDir, "file paths resolve against the config dir")
	assert.Equal(t, cfgPath, GetConfigFileUsed())
}

func TestLoadConfig_IncludeKeepsBraceAlternation(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		flags []string
		want  []string
	}{
		{
			name:  "flag",
			flags: []string{"--include", "*.{txt,csv}"},
			want:  []string{"*.{txt,csv}"},
		},
		{
			name:  "repeated flag",
			flags: []string{"--include", "*.{txt,csv}", "--include", "emp*"},
			want:  []string{"*.{txt,csv}", "emp*"},
		},
		{
			name: "env",
			env:  "*.{txt,csv}",
			want: []string{"*.{txt,csv}"},
		},
		{
			name: "env with separators",
			env:  "*.{txt,csv}; emp* \tpeople.dat",
			want: []string{"*.{txt,csv}", "emp*", "people.dat"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			chdir(t, t.TempDir())
			if tt.env != "" {
				t.Setenv("FLATCONV_INCLUDE", tt.env)
			}
			flags := newFlags()
			require.NoError(t, flags.Parse(tt.flags))

			cfg, err := LoadConfig("", flags)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Include)
		})
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	ResetConfig()
	chdir(t, t.TempDir())

	_, err := LoadConfig("missing.yaml", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")

	require.NoError(t, os.WriteFile("flatconv.yaml", []byte("format: [unclosed"), 0o600))
	_, err = LoadConfig("", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		errSubstr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"missing input", func(c *Config) { c.InputDir = "" }, "input_dir is required"},
		{"missing output", func(c *Config) { c.OutputDir = "" }, "output_dir is required"},
		{"missing schema dir", func(c *Config) { c.SchemaDir = "" }, "schema_dir is required"},
		{"unknown format", func(c *Config) { c.Format = "csv" }, `unknown output format "csv"`},
		{"zero workers", func(c *Config) { c.Workers = 0 }, "workers must be at least 1"},
		{"empty marker", func(c *Config) { c.LookupMarker = " " }, "lookup_marker must not be empty"},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "invalid log_format"},
		{"bad output mode", func(c *Config) { c.OutputFormat = "html" }, "invalid output mode"},
		{"negative debounce", func(c *Config) { c.Watch.Debounce = -time.Second }, "watch.debounce"},
		{"output equals input", func(c *Config) { c.OutputDir = "input/" }, "output_dir must differ"},
		{"schema equals input", func(c *Config) { c.SchemaDir = "./input" }, "schema_dir must differ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}

	var unknown *format.UnknownFormatError
	cfg := Default()
	cfg.Format = "csv"
	assert.ErrorAs(t, cfg.Validate(), &unknown)
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()))

	logger := slog.New(slog.DiscardHandler)
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, GetLogger(ctx))
}

func TestEnvAndFlagKeys(t *testing.T) {
	assert.Equal(t, "input_dir", envKey("FLATCONV_INPUT_DIR"))
	assert.Equal(t, "watch.debounce", envKey("FLATCONV_WATCH_DEBOUNCE"))
	assert.Equal(t, "state_path", flagKey("state"))
	assert.Equal(t, "no_history", flagKey("no-history"))
	assert.Equal(t, "watch.debounce", flagKey("debounce"))
}
