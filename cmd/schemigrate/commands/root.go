// Package commands implements CLI commands.
package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/schemigrate/internal/config"
	"github.com/satishbabariya/schemigrate/internal/debug"
	"github.com/satishbabariya/schemigrate/internal/utils/container"
	"github.com/satishbabariya/schemigrate/internal/version"
)

// App carries state shared by all commands of one invocation.
type App struct {
	configFile string
	debug      bool

	cfg       *config.Config
	container *container.Container
}

// exitError carries a process exit code. A silent one has already been
// reported to the user.
type exitError struct {
	code   int
	silent bool
	err    error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// errChangesPending makes `diff --check` fail without printing an error.
var errChangesPending = &exitError{code: 2, silent: true, err: errors.New("schema changes pending")}

// ExitCode maps a command error onto a process exit code.
func ExitCode(err error) int {
	var e *exitError
	if errors.As(err, &e) {
		return e.code
	}
	return 1
}

// IsSilent reports whether err was already reported.
func IsSilent(err error) bool {
	var e *exitError
	return errors.As(err, &e) && e.silent
}

// NewRootCommand creates the schemigrate root command.
func NewRootCommand() *cobra.Command {
	app := &App{}

	rootCmd := &cobra.Command{
		Use:           "schemigrate",
		Short:         "Generate reversible migrations from schema changes",
		Long:          "schemigrate diffs a declarative schema against its last snapshot and writes a db-migrate migration with up and down steps",
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if app.container != nil {
				return app.container.Close(cmd.Context())
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&app.configFile, "config", "", "Config file (default .schemigrate.yaml)")
	rootCmd.PersistentFlags().BoolVar(&app.debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(NewGenerateCommand(app))
	rootCmd.AddCommand(NewDiffCommand(app))
	rootCmd.AddCommand(NewStatusCommand(app))
	rootCmd.AddCommand(NewInitCommand(app))
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

func (a *App) setup() error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	debug.Init(a.debug || cfg.Debug)
	if cfg.File != "" {
		debug.Debug("config loaded", "file", cfg.File)
	}

	return version.CheckConstraint(version.Version, cfg.RequiredVersion)
}

// Container builds the dependency container on first use.
func (a *App) Container() (*container.Container, error) {
	if a.container != nil {
		return a.container, nil
	}
	if a.cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}

	c, err := container.NewContainer(a.cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize container: %w", err)
	}
	a.container = c
	return c, nil
}

// Config returns the loaded configuration.
func (a *App) Config() *config.Config {
	return a.cfg
}
