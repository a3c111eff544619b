// Package migration compiles two schema snapshots into a reversible migration
// artifact: diff, then render.
package migration

import (
	"time"

	"github.com/satishbabariya/schemigrate/internal/core/migration/differ"
	"github.com/satishbabariya/schemigrate/internal/core/migration/domain"
	"github.com/satishbabariya/schemigrate/internal/core/migration/renderer"
	schema "github.com/satishbabariya/schemigrate/internal/core/schema/domain"
)

// Status is the outcome of a compilation.
type Status int

const (
	// NoChanges means the snapshots are structurally equal; no artifact is
	// produced.
	NoChanges Status = iota
	// Generated means an artifact was produced.
	Generated
)

func (s Status) String() string {
	if s == Generated {
		return "generated"
	}
	return "no changes"
}

// Result is what Compile reports when it does not fail.
type Result struct {
	Status Status
	// Artifact is nil when Status is NoChanges.
	Artifact *domain.Artifact
}

// Compiler diffs snapshots and renders the result.
type Compiler struct {
	renderer *renderer.Renderer
}

// NewCompiler creates a compiler. A nil renderer selects the db-migrate
// template.
func NewCompiler(r *renderer.Renderer) *Compiler {
	if r == nil {
		r = renderer.NewDefault()
	}
	return &Compiler{renderer: r}
}

// Renderer returns the renderer in use.
func (c *Compiler) Renderer() *renderer.Renderer {
	return c.renderer
}

// Compile diffs from against to and renders the artifact. now only feeds the
// filename. Generation is all-or-nothing: on error no artifact is returned.
func (c *Compiler) Compile(from, to *schema.Schema, now time.Time) (*Result, error) {
	plan := differ.Plan(from, to)
	if plan.IsEmpty() {
		return &Result{Status: NoChanges}, nil
	}

	text, err := c.renderer.Render(plan.Up, plan.Down)
	if err != nil {
		return nil, err
	}

	return &Result{
		Status: Generated,
		Artifact: &domain.Artifact{
			Plan:     plan,
			Text:     text,
			Filename: c.renderer.Filename(now),
		},
	}, nil
}
