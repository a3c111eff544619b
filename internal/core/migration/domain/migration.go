// Package domain contains the core entities of the migration domain: the
// structural operations a schema change decomposes into, and the artifact they
// are rendered into.
package domain

import (
	"errors"
	"fmt"

	schema "github.com/satishbabariya/schemigrate/internal/core/schema/domain"
)

// ErrUnsupportedOperationKind is returned when an operation outside the four
// known kinds reaches the renderer.
var ErrUnsupportedOperationKind = errors.New("unsupported operation kind")

// Kind tags an operation.
type Kind string

const (
	// KindCreateTable creates a table for a resource.
	KindCreateTable Kind = "create_table"
	// KindDropTable drops a table.
	KindDropTable Kind = "drop_table"
	// KindAddColumn adds a column for a property.
	KindAddColumn Kind = "add_column"
	// KindRemoveColumn removes a column.
	KindRemoveColumn Kind = "remove_column"
)

// Operation is one atomic structural change. Implementations are immutable
// value records; equality is structural.
type Operation interface {
	// Kind returns the operation tag.
	Kind() Kind

	// Description returns a human-readable description.
	Description() string

	// IsDestructive returns true if the operation may cause data loss.
	IsDestructive() bool
}

// CreateTable creates a table from a resource definition.
type CreateTable struct {
	Name     string
	Resource *schema.Resource
}

func (o CreateTable) Kind() Kind { return KindCreateTable }
func (o CreateTable) Description() string {
	return fmt.Sprintf("Create table %s", o.Name)
}
func (o CreateTable) IsDestructive() bool { return false }

// DropTable drops a table.
type DropTable struct {
	Name string
}

func (o DropTable) Kind() Kind { return KindDropTable }
func (o DropTable) Description() string {
	return fmt.Sprintf("Drop table %s", o.Name)
}
func (o DropTable) IsDestructive() bool { return true }

// AddColumn adds a column to a table.
type AddColumn struct {
	Table    string
	Name     string
	Property schema.Property
}

func (o AddColumn) Kind() Kind { return KindAddColumn }
func (o AddColumn) Description() string {
	return fmt.Sprintf("Add column %s to table %s", o.Name, o.Table)
}
func (o AddColumn) IsDestructive() bool { return false }

// RemoveColumn removes a column from a table.
type RemoveColumn struct {
	Table string
	Name  string
}

func (o RemoveColumn) Kind() Kind { return KindRemoveColumn }
func (o RemoveColumn) Description() string {
	return fmt.Sprintf("Remove column %s from table %s", o.Name, o.Table)
}
func (o RemoveColumn) IsDestructive() bool { return true }

// Equal reports structural equality of two operations.
func Equal(a, b Operation) bool {
	switch x := a.(type) {
	case CreateTable:
		y, ok := b.(CreateTable)
		return ok && x.Name == y.Name && x.Resource.Equal(y.Resource)
	case DropTable:
		y, ok := b.(DropTable)
		return ok && x == y
	case AddColumn:
		y, ok := b.(AddColumn)
		return ok && x.Table == y.Table && x.Name == y.Name && x.Property.Equal(y.Property)
	case RemoveColumn:
		y, ok := b.(RemoveColumn)
		return ok && x == y
	default:
		return false
	}
}

// Destructive returns the operations that may cause data loss, in order.
func Destructive(ops []Operation) []Operation {
	var out []Operation
	for _, op := range ops {
		if op.IsDestructive() {
			out = append(out, op)
		}
	}
	return out
}

// Direction names one side of a migration.
type Direction string

const (
	// Up is the forward direction.
	Up Direction = "up"
	// Down is the backward direction.
	Down Direction = "down"
)

// Plan is the ordered pair of operation lists produced by the differ.
type Plan struct {
	Up   []Operation
	Down []Operation
}

// IsEmpty reports whether the plan carries no operations in either direction.
func (p Plan) IsEmpty() bool {
	return len(p.Up) == 0 && len(p.Down) == 0
}

// Artifact is a rendered, reversible migration.
type Artifact struct {
	Plan
	// Text is the rendered migration script.
	Text string
	// Filename is the timestamp-derived name the artifact should be stored under.
	Filename string
}

// OperationError reports the operation whose rendering failed.
type OperationError struct {
	Direction Direction
	Index     int
	Op        Operation
	Err       error
}

func (e *OperationError) Error() string {
	desc := "unknown operation"
	if e.Op != nil {
		desc = e.Op.Description()
	}
	return fmt.Sprintf("%s operation %d (%s): %v", e.Direction, e.Index, desc, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }
