package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/schemigrate/internal/core/migration/domain"
	"github.com/satishbabariya/schemigrate/internal/core/migration/renderer"
	"github.com/satishbabariya/schemigrate/internal/service"
	"github.com/satishbabariya/schemigrate/internal/ui"
)

// NewDiffCommand creates the diff command.
func NewDiffCommand(app *App) *cobra.Command {
	var (
		schemaPath   string
		snapshotPath string
		check        bool
		script       bool
	)

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Show pending schema changes",
		Long:  "List the operations the next generate would write, without writing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Container()
			if err != nil {
				return err
			}
			cfg := app.Config()

			plan, err := c.MigrationService().Plan(cmd.Context(), service.PlanInput{
				SchemaPath:   pathOr(schemaPath, cfg.SchemaFile),
				SnapshotPath: pathOr(snapshotPath, cfg.SnapshotFile),
			})
			if err != nil {
				return err
			}

			if plan.IsEmpty() {
				ui.PrintInfo("No schema changes found.")
				return nil
			}

			rows := operationRows(domain.Up, plan.Up)
			rows = append(rows, operationRows(domain.Down, plan.Down)...)
			if err := ui.PrintTable([]string{"Step", "Operation", "Table", "Column"}, rows); err != nil {
				return err
			}

			if destructive := domain.Destructive(plan.Up); len(destructive) > 0 {
				ui.PrintWarning("%d destructive operation(s); changed columns are dropped and recreated.", len(destructive))
			}

			if script {
				if err := ui.PrintMarkdown(planMarkdown(c.Compiler().Renderer(), plan)); err != nil {
					return err
				}
			}

			if check {
				return errChangesPending
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&schemaPath, "schema", "", "Path to schema file")
	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "Path to the previous schema snapshot")
	cmd.Flags().BoolVar(&check, "check", false, "Exit with status 2 when there are pending changes")
	cmd.Flags().BoolVar(&script, "script", false, "Also print the statements of each direction")

	return cmd
}

// planMarkdown renders the statements of a plan as a markdown document.
// Statements that cannot be rendered are shown as comments.
func planMarkdown(r *renderer.Renderer, plan domain.Plan) string {
	var b strings.Builder
	section := func(title string, ops []domain.Operation) {
		fmt.Fprintf(&b, "## %s\n\n```js\n", title)
		for _, op := range ops {
			stmt, err := r.Statement(op)
			if err != nil {
				stmt = "// " + err.Error()
			}
			b.WriteString(stmt)
			b.WriteString("\n")
		}
		b.WriteString("```\n\n")
	}
	section("Up", plan.Up)
	section("Down", plan.Down)
	return b.String()
}
