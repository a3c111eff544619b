package container

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/schemigrate/internal/adapters/storage"
	"github.com/satishbabariya/schemigrate/internal/config"
	"github.com/satishbabariya/schemigrate/internal/core/migration"
	"github.com/satishbabariya/schemigrate/internal/service"
)

func TestNewContainer_UnknownTemplate(t *testing.T) {
	_, err := NewContainer(&config.Config{Template: "knex"}, storage.NewMemoryStorage())
	assert.Error(t, err)
}

func TestContainer_GenerateWithHistory(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := storage.NewFilesystemStorage(dir)

	cfg := &config.Config{
		SchemaFile:    "schema.json",
		MigrationsDir: "migrations",
		Template:      "db-migrate",
		HistoryURL:    config.DefaultHistoryURL(filepath.Join(dir, "migrations")),
	}
	c, err := NewContainer(cfg, store)
	require.NoError(t, err)
	defer c.Close(ctx)

	require.NoError(t, c.OpenHistory(ctx))
	require.NoError(t, c.OpenHistory(ctx))

	require.NoError(t, store.Write(ctx, "schema.json", []byte(`{"users": {"properties": {"name": "string"}}}`)))

	svc := c.MigrationService()
	res, err := svc.Generate(ctx, service.GenerateInput{SchemaPath: "schema.json", MigrationsDir: "migrations"})
	require.NoError(t, err)
	assert.Equal(t, migration.Generated, res.Status)
	assert.NoError(t, res.HistoryErr)

	statuses, err := svc.Status(ctx, "migrations")
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].Recorded)
	assert.False(t, statuses[0].Modified)
}

func TestContainer_HistoryDisabled(t *testing.T) {
	c, err := NewContainer(&config.Config{Template: "db-migrate"}, storage.NewMemoryStorage())
	require.NoError(t, err)

	require.NoError(t, c.OpenHistory(context.Background()))
	assert.NoError(t, c.Close(context.Background()))
}

func TestContainer_UnreachableHistory(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()

	c, err := NewContainer(&config.Config{Template: "db-migrate", HistoryURL: "mongodb://nowhere/db"}, store)
	require.NoError(t, err)
	defer c.Close(ctx)

	require.Error(t, c.OpenHistory(ctx))

	require.NoError(t, store.Write(ctx, "schema.json", []byte(`{"users": {"properties": {"name": "string"}}}`)))
	res, err := c.MigrationService().Generate(ctx, service.GenerateInput{SchemaPath: "schema.json", MigrationsDir: "migrations"})
	require.NoError(t, err)
	assert.Equal(t, migration.Generated, res.Status)
	assert.NoError(t, res.HistoryErr)
}
