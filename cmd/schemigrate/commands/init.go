package commands

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/schemigrate/internal/config"
	"github.com/satishbabariya/schemigrate/internal/ui"
)

const defaultSchema = `{
    "users": {
        "properties": {
            "name": "string",
            "email": {
                "type": "string",
                "unique": true
            }
        }
    }
}
`

// NewInitCommand creates the init command.
func NewInitCommand(app *App) *cobra.Command {
	var (
		schemaPath    string
		migrationsDir string
		historyURL    string
		force         bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new schemigrate project",
		Long:  "Create a config file, a starter schema and the migrations directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := config.FileName + ".yaml"
			exists, err := afero.Exists(config.AppFs, configPath)
			if err != nil {
				return err
			}
			if exists && !force {
				return fmt.Errorf("config file already exists: %s (use --force to overwrite)", configPath)
			}

			cfg := *app.Config()
			cfg.SchemaFile = pathOr(schemaPath, cfg.SchemaFile)
			cfg.MigrationsDir = pathOr(migrationsDir, cfg.MigrationsDir)
			cfg.HistoryURL = pathOr(historyURL, config.DefaultHistoryURL(cfg.MigrationsDir))

			if err := config.Save(&cfg, configPath); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			ui.PrintSuccess("Created %s", configPath)

			schemaExists, err := afero.Exists(config.AppFs, cfg.SchemaFile)
			if err != nil {
				return err
			}
			if !schemaExists {
				if err := afero.WriteFile(config.AppFs, cfg.SchemaFile, []byte(defaultSchema), 0o644); err != nil {
					return fmt.Errorf("failed to create schema file: %w", err)
				}
				ui.PrintSuccess("Created schema at %s", cfg.SchemaFile)
			}

			if err := config.AppFs.MkdirAll(cfg.MigrationsDir, 0o755); err != nil {
				return fmt.Errorf("failed to create migrations directory: %w", err)
			}

			ui.PrintInfo("Next steps:")
			ui.PrintList([]string{
				fmt.Sprintf("Describe your resources in %s", cfg.SchemaFile),
				"Run `schemigrate generate` to write the first migration",
				"Run `db-migrate up` to apply it",
			})
			return nil
		},
	}

	cmd.Flags().StringVar(&schemaPath, "schema", "", "Path to schema file")
	cmd.Flags().StringVar(&migrationsDir, "migrations-dir", "", "Directory migrations are written to")
	cmd.Flags().StringVar(&historyURL, "history-url", "", "History database URL, or \"off\"")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}
