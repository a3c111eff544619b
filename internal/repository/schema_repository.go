package repository

import (
	"context"
	"fmt"

	"github.com/satishbabariya/schemigrate/internal/adapters/storage"
	schemadomain "github.com/satishbabariya/schemigrate/internal/core/schema/domain"
	"github.com/satishbabariya/schemigrate/internal/core/schema/parser"
)

// SchemaRepositoryImpl loads and saves schema documents through a storage
// adapter.
type SchemaRepositoryImpl struct {
	storage storage.Storage
}

// NewSchemaRepository creates a new schema repository.
func NewSchemaRepository(store storage.Storage) *SchemaRepositoryImpl {
	return &SchemaRepositoryImpl{storage: store}
}

// Load reads and parses a schema document. The format follows the file
// extension and falls back to content sniffing.
func (r *SchemaRepositoryImpl) Load(ctx context.Context, path string) (*schemadomain.Schema, error) {
	content, err := r.storage.Read(ctx, path)
	if err != nil {
		return nil, err
	}

	schema, err := parser.Parse(content, parser.FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return schema, nil
}

// Save writes a schema snapshot as indented JSON.
func (r *SchemaRepositoryImpl) Save(ctx context.Context, path string, schema *schemadomain.Schema) error {
	content, err := parser.Encode(schema)
	if err != nil {
		return err
	}
	return r.storage.Write(ctx, path, content)
}

// Exists reports whether a schema file exists.
func (r *SchemaRepositoryImpl) Exists(ctx context.Context, path string) (bool, error) {
	return r.storage.Exists(ctx, path)
}
