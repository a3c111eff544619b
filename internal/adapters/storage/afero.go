package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

// FSStorage implements Storage on top of an afero filesystem.
type FSStorage struct {
	fs       afero.Fs
	basePath string
}

// NewFilesystemStorage creates a storage adapter on the local filesystem.
// Relative paths resolve against basePath.
func NewFilesystemStorage(basePath string) *FSStorage {
	return NewFSStorage(afero.NewOsFs(), basePath)
}

// NewMemoryStorage creates an in-memory storage adapter.
func NewMemoryStorage() *FSStorage {
	return NewFSStorage(afero.NewMemMapFs(), "")
}

// NewFSStorage creates a storage adapter on an arbitrary afero filesystem.
func NewFSStorage(fs afero.Fs, basePath string) *FSStorage {
	return &FSStorage{fs: fs, basePath: basePath}
}

// Fs returns the underlying filesystem.
func (s *FSStorage) Fs() afero.Fs {
	return s.fs
}

// resolvePath resolves a path relative to the base path.
func (s *FSStorage) resolvePath(path string) string {
	if filepath.IsAbs(path) || s.basePath == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(s.basePath, path)
}

// Read reads contents from a path.
func (s *FSStorage) Read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := afero.ReadFile(s.fs, s.resolvePath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return content, nil
}

// Write writes contents to a path.
func (s *FSStorage) Write(ctx context.Context, path string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath := s.resolvePath(path)
	if err := s.fs.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := afero.WriteFile(s.fs, fullPath, content, 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Exists checks if a path exists.
func (s *FSStorage) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	ok, err := afero.Exists(s.fs, s.resolvePath(path))
	if err != nil {
		return false, fmt.Errorf("failed to check file: %w", err)
	}
	return ok, nil
}

// List lists the entries of a directory.
func (s *FSStorage) List(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := afero.ReadDir(s.fs, s.resolvePath(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list directory: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	return files, nil
}

// MkdirAll creates a directory and all parent directories.
func (s *FSStorage) MkdirAll(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.fs.MkdirAll(s.resolvePath(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}
