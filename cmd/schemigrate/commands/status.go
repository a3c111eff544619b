package commands

import (
	"github.com/spf13/cobra"

	"github.com/satishbabariya/schemigrate/internal/ui"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(app *App) *cobra.Command {
	var migrationsDir string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "List generated migrations",
		Long:  "List the migrations on disk and check them against the history database",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Container()
			if err != nil {
				return err
			}
			if err := c.OpenHistory(cmd.Context()); err != nil {
				return err
			}

			dir := pathOr(migrationsDir, app.Config().MigrationsDir)
			statuses, err := c.MigrationService().Status(cmd.Context(), dir)
			if err != nil {
				return err
			}
			if len(statuses) == 0 {
				ui.PrintInfo("No migrations in %s.", dir)
				return nil
			}

			rows := make([][]string, 0, len(statuses))
			modified := 0
			for _, st := range statuses {
				recorded, generatedAt, state := "no", "-", ui.Colorize("success", "ok")
				if st.Recorded {
					recorded = "yes"
					generatedAt = st.GeneratedAt.Local().Format("2006-01-02 15:04:05")
				}
				if st.Modified {
					state = ui.Colorize("warning", "modified")
					modified++
				}
				rows = append(rows, []string{st.Filename, recorded, generatedAt, state})
			}
			if err := ui.PrintTable([]string{"Migration", "Recorded", "Generated", "State"}, rows); err != nil {
				return err
			}

			if modified > 0 {
				ui.PrintWarning("%d migration(s) changed since they were generated.", modified)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&migrationsDir, "migrations-dir", "", "Directory migrations are read from")

	return cmd
}
