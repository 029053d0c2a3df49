package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/flatconv/internal/cli/config"
	"github.com/leapstack-labs/flatconv/internal/cli/output"
	"github.com/leapstack-labs/flatconv/internal/engine"
	"github.com/leapstack-labs/flatconv/internal/state"
	"github.com/leapstack-labs/flatconv/pkg/core"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Store    core.Store
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with engine, history store and
// renderer. Returns the context and a cleanup function that must be called
// (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cc := NewCommandContextWithoutEngine(cmd)

	var store core.Store
	if !cc.Cfg.NoHistory {
		s, err := openStore(cc.Cfg, cc.Logger)
		if err != nil {
			return nil, nil, err
		}
		store = s
	}

	eng, err := createEngine(cc.Cfg, store, cc.Logger)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, nil, err
	}

	cc.Engine = eng
	cc.Store = store
	cleanup := func() {
		if store != nil {
			_ = store.Close()
		}
	}
	return cc, cleanup, nil
}

// NewCommandContextWithoutEngine creates a CommandContext without an engine.
// Useful for commands that only inspect schemas or history.
func NewCommandContextWithoutEngine(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode, _ := output.ParseMode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the current configuration, or defaults when none was
// loaded (commands constructed directly in tests).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}

// openStore opens and migrates the run history database.
func openStore(cfg *config.Config, logger *slog.Logger) (*state.SQLiteStore, error) {
	store := state.NewSQLiteStore(logger)
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, fmt.Errorf("failed to open run history: %w", err)
	}
	if err := store.InitSchema(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize run history: %w", err)
	}
	return store, nil
}

func createEngine(cfg *config.Config, store core.Store, logger *slog.Logger) (*engine.Engine, error) {
	return engine.New(engine.Config{
		InputDir:     cfg.InputDir,
		OutputDir:    cfg.OutputDir,
		SchemaDir:    cfg.SchemaDir,
		Format:       cfg.Format,
		Workers:      cfg.Workers,
		Include:      cfg.Include,
		LookupMarker: cfg.LookupMarker,
		Debounce:     cfg.Watch.Debounce,
		Store:        store,
		Logger:       logger,
	})
}
