package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/schemigrate/internal/core/migration"
	"github.com/satishbabariya/schemigrate/internal/debug"
	"github.com/satishbabariya/schemigrate/internal/service"
	"github.com/satishbabariya/schemigrate/internal/ui"
	"github.com/satishbabariya/schemigrate/internal/watch"
)

type generateOptions struct {
	schemaPath    string
	snapshotPath  string
	migrationsDir string
	dryRun        bool
	yes           bool
	watch         bool
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(app *App) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a migration from schema changes",
		Long:  "Compare the schema file with its last snapshot and write a reversible migration for the difference",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), app, opts)
		},
	}

	cmd.Flags().StringVar(&opts.schemaPath, "schema", "", "Path to schema file")
	cmd.Flags().StringVar(&opts.snapshotPath, "snapshot", "", "Path to the previous schema snapshot")
	cmd.Flags().StringVar(&opts.migrationsDir, "migrations-dir", "", "Directory migrations are written to")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Print the migration without writing anything")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Do not ask before writing destructive migrations")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Regenerate whenever the schema file changes")

	return cmd
}

func runGenerate(ctx context.Context, app *App, opts *generateOptions) error {
	c, err := app.Container()
	if err != nil {
		return err
	}
	cfg := app.Config()

	if !opts.dryRun {
		if err := c.OpenHistory(ctx); err != nil {
			debug.Warn("history database unavailable", "url", cfg.HistoryURL, "error", err)
			ui.PrintWarning("History database unavailable, migrations will not be recorded: %v", err)
		}
	}

	input := service.GenerateInput{
		SchemaPath:    pathOr(opts.schemaPath, cfg.SchemaFile),
		SnapshotPath:  pathOr(opts.snapshotPath, cfg.SnapshotFile),
		MigrationsDir: pathOr(opts.migrationsDir, cfg.MigrationsDir),
		DryRun:        opts.dryRun,
	}
	if !opts.yes {
		input.Confirm = confirmDestructive
	}

	once := func() error {
		return generateOnce(ctx, c.MigrationService(), input)
	}

	if !opts.watch {
		return once()
	}

	w, err := watch.NewWatcher(input.SchemaPath, watch.DefaultDebounce, func() error {
		if err := once(); err != nil {
			ui.PrintError("%v", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	ui.PrintInfo("Watching %s for changes. Press Ctrl+C to stop.", input.SchemaPath)
	return w.Run(ctx)
}

func generateOnce(ctx context.Context, svc *service.MigrationService, input service.GenerateInput) error {
	res, err := svc.Generate(ctx, input)
	if errors.Is(err, service.ErrAborted) {
		ui.PrintWarning("Migration aborted, nothing was written.")
		return nil
	}
	if err != nil {
		return err
	}

	if res.Status == migration.NoChanges {
		ui.PrintInfo("No schema changes found.")
		return nil
	}

	if input.DryRun {
		ui.PrintSection(fmt.Sprintf("%s (dry run)", res.Artifact.Filename))
		ui.PrintCodeBlock(res.Artifact.Text, "javascript")
		return nil
	}

	ui.PrintSuccess("Created migration %s", res.Path)
	ui.PrintList(describeOperations(res.Artifact.Up))
	if res.HistoryErr != nil {
		ui.PrintWarning("Migration was not recorded in the history database: %v", res.HistoryErr)
	}
	return nil
}
