// Package repository defines repository interfaces for data access.
package repository

import (
	"context"

	"github.com/satishbabariya/schemigrate/internal/core/migration/domain"
	"github.com/satishbabariya/schemigrate/internal/core/migration/history"
	schemadomain "github.com/satishbabariya/schemigrate/internal/core/schema/domain"
)

// SchemaRepository defines the interface for schema data access.
type SchemaRepository interface {
	// Load loads a schema from file.
	Load(ctx context.Context, path string) (*schemadomain.Schema, error)

	// Save saves a schema snapshot to file.
	Save(ctx context.Context, path string, schema *schemadomain.Schema) error

	// Exists reports whether a schema file exists.
	Exists(ctx context.Context, path string) (bool, error)
}

// MigrationRepository defines the interface for migration artifact access.
type MigrationRepository interface {
	// Save writes an artifact into dir and returns its path.
	Save(ctx context.Context, dir string, artifact *domain.Artifact) (string, error)

	// List returns the artifact filenames in dir, oldest first.
	List(ctx context.Context, dir string) ([]string, error)

	// Read returns the content of an artifact.
	Read(ctx context.Context, dir, filename string) (string, error)
}

// HistoryRepository defines the interface for migration history data access.
type HistoryRepository interface {
	// Record records a generated migration.
	Record(ctx context.Context, record *history.Record) error

	// List returns all records, oldest first.
	List(ctx context.Context) ([]history.Record, error)

	// ValidateChecksum fails if a recorded migration was modified.
	ValidateChecksum(ctx context.Context, filename, content string) error
}
