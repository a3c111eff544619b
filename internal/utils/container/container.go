// Package container provides dependency injection.
package container

import (
	"context"
	"fmt"

	"github.com/satishbabariya/schemigrate/internal/adapters/storage"
	"github.com/satishbabariya/schemigrate/internal/config"
	"github.com/satishbabariya/schemigrate/internal/core/migration"
	"github.com/satishbabariya/schemigrate/internal/core/migration/history"
	"github.com/satishbabariya/schemigrate/internal/core/migration/renderer"
	"github.com/satishbabariya/schemigrate/internal/repository"
	"github.com/satishbabariya/schemigrate/internal/service"
)

// Container holds all application dependencies.
type Container struct {
	// Configuration
	config *config.Config

	// Adapters
	storage storage.Storage
	tracker *history.Tracker

	// Repositories
	schemaRepo    repository.SchemaRepository
	migrationRepo repository.MigrationRepository

	// Core
	compiler *migration.Compiler

	// Services
	migrationService *service.MigrationService
}

// NewContainer creates a new dependency injection container. The history
// database is not opened until OpenHistory is called.
func NewContainer(cfg *config.Config, store storage.Storage) (*Container, error) {
	if store == nil {
		store = storage.NewFilesystemStorage(".")
	}

	tmpl, err := renderer.Lookup(cfg.Template)
	if err != nil {
		return nil, err
	}
	r, err := renderer.New(tmpl)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	c := &Container{
		config:   cfg,
		storage:  store,
		compiler: migration.NewCompiler(r),
	}

	c.schemaRepo = repository.NewSchemaRepository(store)
	c.migrationRepo = repository.NewMigrationRepository(store, tmpl.Suffix)
	c.migrationService = service.NewMigrationService(c.schemaRepo, c.migrationRepo, nil, c.compiler)

	return c, nil
}

// OpenHistory connects the history database, if one is configured, and
// attaches it to the migration service. On failure the service keeps running
// without history.
func (c *Container) OpenHistory(ctx context.Context) error {
	if c.tracker != nil || c.config.HistoryURL == "" {
		return nil
	}

	tracker, err := history.Open(ctx, c.config.HistoryURL)
	if err != nil {
		return err
	}
	c.tracker = tracker
	c.migrationService = service.NewMigrationService(c.schemaRepo, c.migrationRepo, tracker, c.compiler)
	return nil
}

// Config returns the configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Storage returns the storage adapter.
func (c *Container) Storage() storage.Storage {
	return c.storage
}

// Compiler returns the migration compiler.
func (c *Container) Compiler() *migration.Compiler {
	return c.compiler
}

// MigrationService returns the migration service.
func (c *Container) MigrationService() *service.MigrationService {
	return c.migrationService
}

// Close cleans up resources.
func (c *Container) Close(ctx context.Context) error {
	if c.tracker != nil {
		err := c.tracker.Close()
		c.tracker = nil
		return err
	}
	return nil
}
