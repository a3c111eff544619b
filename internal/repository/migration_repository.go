package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/satishbabariya/schemigrate/internal/adapters/storage"
	"github.com/satishbabariya/schemigrate/internal/core/migration/domain"
)

// MigrationRepositoryImpl stores rendered artifacts as files.
type MigrationRepositoryImpl struct {
	storage storage.Storage
	suffix  string
}

// NewMigrationRepository creates a repository for artifacts whose filenames
// end in suffix.
func NewMigrationRepository(store storage.Storage, suffix string) *MigrationRepositoryImpl {
	return &MigrationRepositoryImpl{storage: store, suffix: suffix}
}

// Save writes an artifact. It refuses to overwrite an existing file, which
// happens when two artifacts are generated within the same second.
func (r *MigrationRepositoryImpl) Save(ctx context.Context, dir string, artifact *domain.Artifact) (string, error) {
	path := filepath.Join(dir, artifact.Filename)

	exists, err := r.storage.Exists(ctx, path)
	if err != nil {
		return "", err
	}
	if exists {
		return "", fmt.Errorf("migration %s already exists", path)
	}

	if err := r.storage.Write(ctx, path, []byte(artifact.Text)); err != nil {
		return "", fmt.Errorf("failed to save migration: %w", err)
	}
	return path, nil
}

// List returns the artifact filenames in dir. Timestamp prefixes make name
// order generation order.
func (r *MigrationRepositoryImpl) List(ctx context.Context, dir string) ([]string, error) {
	entries, err := r.storage.List(ctx, dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, name := range entries {
		if strings.HasSuffix(name, r.suffix) {
			files = append(files, name)
		}
	}
	return files, nil
}

// Read returns the content of an artifact.
func (r *MigrationRepositoryImpl) Read(ctx context.Context, dir, filename string) (string, error) {
	content, err := r.storage.Read(ctx, filepath.Join(dir, filename))
	if err != nil {
		return "", err
	}
	return string(content), nil
}
