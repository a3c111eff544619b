// Package differ compares two schema snapshots and derives the structural
// operations that turn one into the other, together with their exact inverse.
package differ

import (
	"github.com/satishbabariya/schemigrate/internal/core/migration/domain"
	schema "github.com/satishbabariya/schemigrate/internal/core/schema/domain"
	"github.com/satishbabariya/schemigrate/internal/debug"
)

// Diff returns the operations that transform from into to (up) and the
// operations that transform the result back (down).
//
// Passes run in a fixed order: table creations, table drops, then per-table
// column changes in the order of to. Inputs are never modified; operations carry
// deep copies of the definitions they reference.
func Diff(from, to *schema.Schema) (up, down []domain.Operation) {
	up, down = []domain.Operation{}, []domain.Operation{}

	// New tables. Non-persistent resources have no backing table.
	for _, name := range to.Names() {
		if from.Has(name) {
			continue
		}
		r, _ := to.Get(name)
		if !r.IsPersistent() {
			continue
		}
		up = append(up, domain.CreateTable{Name: name, Resource: r.Clone()})
		down = append(down, domain.DropTable{Name: name})
	}

	// Removed tables. The inverse recreates the old definition verbatim.
	for _, name := range from.Names() {
		if to.Has(name) {
			continue
		}
		r, _ := from.Get(name)
		up = append(up, domain.DropTable{Name: name})
		down = append(down, domain.CreateTable{Name: name, Resource: r.Clone()})
	}

	// Column changes, only for resources present on both sides.
	for _, name := range to.Names() {
		prev, ok := from.Get(name)
		if !ok {
			continue
		}
		next, _ := to.Get(name)
		if prev.IsMalformed() || next.IsMalformed() {
			if prev.Equal(next) {
				continue
			}
			// Without a property list on one side the table is replaced
			// wholesale; rendering then reports the malformed definition.
			up = append(up, domain.DropTable{Name: name}, domain.CreateTable{Name: name, Resource: next.Clone()})
			down = append(down, domain.DropTable{Name: name}, domain.CreateTable{Name: name, Resource: prev.Clone()})
			continue
		}
		u, d := diffColumns(name, prev, next)
		up = append(up, u...)
		down = append(down, d...)
	}

	return up, down
}

// Plan wraps Diff into a domain.Plan.
func Plan(from, to *schema.Schema) domain.Plan {
	up, down := Diff(from, to)
	return domain.Plan{Up: up, Down: down}
}

func diffColumns(table string, prev, next *schema.Resource) (up, down []domain.Operation) {
	for _, col := range next.PropertyNames() {
		nextDef, _ := next.Property(col)
		prevDef, exists := prev.Property(col)

		if !exists {
			up = append(up, domain.AddColumn{Table: table, Name: col, Property: nextDef.Clone()})
			down = append(down, domain.RemoveColumn{Table: table, Name: col})
			continue
		}

		if prevDef.Equal(nextDef) {
			continue
		}

		// A changed definition is dropped and recreated; the column's data
		// does not survive.
		debug.Debug("diff cols", "table", table, "column", col, "prev", prevDef, "next", nextDef)
		up = append(up,
			domain.RemoveColumn{Table: table, Name: col},
			domain.AddColumn{Table: table, Name: col, Property: nextDef.Clone()},
		)
		down = append(down,
			domain.RemoveColumn{Table: table, Name: col},
			domain.AddColumn{Table: table, Name: col, Property: prevDef.Clone()},
		)
	}

	for _, col := range prev.PropertyNames() {
		if next.Properties.Has(col) {
			continue
		}
		prevDef, _ := prev.Property(col)
		up = append(up, domain.RemoveColumn{Table: table, Name: col})
		down = append(down, domain.AddColumn{Table: table, Name: col, Property: prevDef.Clone()})
	}

	return up, down
}
