package commands

import (
	"fmt"
	"os"

	"github.com/satishbabariya/schemigrate/internal/core/migration/domain"
	"github.com/satishbabariya/schemigrate/internal/ui"
)

// pathOr returns flagValue when set and fallback otherwise.
func pathOr(flagValue, fallback string) string {
	if flagValue != "" {
		return flagValue
	}
	return fallback
}

// operationTarget returns the table and column an operation touches.
func operationTarget(op domain.Operation) (table, column string) {
	switch o := op.(type) {
	case domain.CreateTable:
		return o.Name, ""
	case domain.DropTable:
		return o.Name, ""
	case domain.AddColumn:
		return o.Table, o.Name
	case domain.RemoveColumn:
		return o.Table, o.Name
	}
	return "", ""
}

// operationRows formats operations for ui.PrintTable.
func operationRows(dir domain.Direction, ops []domain.Operation) [][]string {
	rows := make([][]string, 0, len(ops))
	for i, op := range ops {
		table, column := operationTarget(op)
		kind := string(op.Kind())
		if op.IsDestructive() {
			kind = ui.Colorize("error", kind)
		} else {
			kind = ui.Colorize("success", kind)
		}
		rows = append(rows, []string{fmt.Sprintf("%s %d", dir, i+1), kind, table, column})
	}
	return rows
}

// describeOperations lists operation descriptions.
func describeOperations(ops []domain.Operation) []string {
	items := make([]string, len(ops))
	for i, op := range ops {
		items[i] = op.Description()
	}
	return items
}

// isInteractive reports whether stdin is a terminal.
func isInteractive() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// confirmDestructive asks before writing a migration that drops data.
func confirmDestructive(ops []domain.Operation) (bool, error) {
	ui.PrintWarning("This migration drops data:")
	ui.PrintList(describeOperations(ops))
	if !isInteractive() {
		ui.PrintInfo("Non-interactive session, continuing. Use --yes to silence this check.")
		return true, nil
	}
	return ui.Confirm("Write the migration anyway?", false)
}
