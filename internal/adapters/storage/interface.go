// Package storage provides storage adapter interfaces.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a path does not exist.
var ErrNotFound = errors.New("file not found")

// Storage defines the storage adapter interface.
type Storage interface {
	// Read reads contents from a path.
	Read(ctx context.Context, path string) ([]byte, error)

	// Write writes contents to a path, creating parent directories.
	Write(ctx context.Context, path string, content []byte) error

	// Exists checks if a path exists.
	Exists(ctx context.Context, path string) (bool, error)

	// List lists the entries of a directory, sorted by name. A missing
	// directory lists as empty.
	List(ctx context.Context, dir string) ([]string, error)

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(ctx context.Context, path string) error
}

// Config holds storage configuration.
type Config struct {
	// Type is the storage type (filesystem, memory).
	Type string

	// BasePath is the base path for filesystem storage.
	BasePath string
}
