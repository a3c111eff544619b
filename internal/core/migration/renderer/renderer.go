// Package renderer turns operation lists into a migration artifact: one DSL
// statement per operation, wrapped by a swappable template.
//
// The statement DSL has four constructors:
//
//	db.createTable(name, propsByName)
//	db.dropTable(name)
//	db.addColumn(table, name, propDef)
//	db.removeColumn(table, name)
package renderer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/satishbabariya/schemigrate/internal/core/migration/domain"
	schema "github.com/satishbabariya/schemigrate/internal/core/schema/domain"
	"github.com/satishbabariya/schemigrate/internal/core/schema/sanitizer"
)

// filenameLayout is YYYYMMDDHHMMSS.
const filenameLayout = "20060102150405"

// Renderer renders operations through a template.
type Renderer struct {
	tmpl   Template
	parsed *template.Template
}

// New creates a renderer for the given template.
func New(t Template) (*Renderer, error) {
	parsed, err := t.parse()
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: t, parsed: parsed}, nil
}

// NewDefault creates a renderer for the db-migrate template.
func NewDefault() *Renderer {
	r, err := New(DBMigrate)
	if err != nil {
		panic(err)
	}
	return r
}

// Template returns the template the renderer uses.
func (r *Renderer) Template() Template {
	return r.tmpl
}

// Render produces the artifact text. Any failure aborts the whole render and
// no text is returned.
func (r *Renderer) Render(up, down []domain.Operation) (string, error) {
	upBody, err := r.body(domain.Up, up)
	if err != nil {
		return "", err
	}
	downBody, err := r.body(domain.Down, down)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := r.parsed.Execute(&buf, Body{Up: upBody, Down: downBody}); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", r.tmpl.Name, err)
	}
	return buf.String(), nil
}

// Filename derives the artifact filename from the UTC time to the second.
// Two artifacts generated within the same second get the same name.
func (r *Renderer) Filename(now time.Time) string {
	return now.UTC().Format(filenameLayout) + r.tmpl.Suffix
}

func (r *Renderer) body(dir domain.Direction, ops []domain.Operation) (string, error) {
	lines := make([]string, 0, len(ops))
	for i, op := range ops {
		stmt, err := r.Statement(op)
		if err != nil {
			return "", &domain.OperationError{Direction: dir, Index: i, Op: op, Err: err}
		}
		lines = append(lines, r.tmpl.Indent+stmt)
	}
	return strings.Join(lines, "\n"), nil
}

// Statement renders a single operation as a DSL statement. Property
// definitions are sanitized first.
func (r *Renderer) Statement(op domain.Operation) (string, error) {
	switch o := op.(type) {
	case domain.CreateTable:
		if o.Resource == nil || o.Resource.IsMalformed() {
			return "", schema.NewShapeError("resource %q must be a mapping", o.Name)
		}
		props, err := sanitizer.SanitizeProperties(o.Resource.Properties)
		if err != nil {
			return "", fmt.Errorf("table %q: %w", o.Name, err)
		}
		def, err := r.encode(props)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("db.createTable(%s, %s);", quote(o.Name), def), nil

	case domain.DropTable:
		return fmt.Sprintf("db.dropTable(%s);", quote(o.Name)), nil

	case domain.AddColumn:
		prop, err := sanitizer.Sanitize(o.Property)
		if err != nil {
			return "", fmt.Errorf("column %q of table %q: %w", o.Name, o.Table, err)
		}
		def, err := r.encode(prop)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("db.addColumn(%s, %s, %s);", quote(o.Table), quote(o.Name), def), nil

	case domain.RemoveColumn:
		return fmt.Sprintf("db.removeColumn(%s, %s);", quote(o.Table), quote(o.Name)), nil

	default:
		return "", fmt.Errorf("%w: %T", domain.ErrUnsupportedOperationKind, op)
	}
}

func (r *Renderer) encode(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent(r.tmpl.Indent, "    ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to encode definition: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func quote(s string) string {
	out, _ := schema.Marshal(s)
	return string(out)
}
