package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/schemigrate/internal/adapters/storage"
	"github.com/satishbabariya/schemigrate/internal/core/migration"
	"github.com/satishbabariya/schemigrate/internal/core/migration/domain"
	"github.com/satishbabariya/schemigrate/internal/core/migration/history"
	"github.com/satishbabariya/schemigrate/internal/repository"
)

type memoryHistory struct {
	records []history.Record
	fail    error
}

func (m *memoryHistory) Record(_ context.Context, r *history.Record) error {
	if m.fail != nil {
		return m.fail
	}
	m.records = append(m.records, *r)
	return nil
}

func (m *memoryHistory) List(context.Context) ([]history.Record, error) {
	return m.records, nil
}

func (m *memoryHistory) ValidateChecksum(_ context.Context, filename, content string) error {
	for _, r := range m.records {
		if r.Filename == filename && r.Checksum != history.CalculateChecksum(content) {
			return errors.New("modified")
		}
	}
	return nil
}

type fixture struct {
	store   *storage.FSStorage
	history *memoryHistory
	svc     *MigrationService
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:   storage.NewMemoryStorage(),
		history: &memoryHistory{},
		now:     time.Date(2024, time.May, 6, 7, 8, 9, 0, time.UTC),
	}
	f.svc = NewMigrationService(
		repository.NewSchemaRepository(f.store),
		repository.NewMigrationRepository(f.store, "-generated.js"),
		f.history,
		migration.NewCompiler(nil),
	)
	f.svc.SetClock(func() time.Time { return f.now })
	return f
}

func (f *fixture) writeSchema(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, f.store.Write(context.Background(), "app/schema.json", []byte(content)))
}

func (f *fixture) input() GenerateInput {
	return GenerateInput{SchemaPath: "app/schema.json", MigrationsDir: "app/migrations"}
}

func TestGenerate_FirstRunWritesArtifactAndSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.writeSchema(t, `{"users": {"properties": {"name": "string"}}}`)

	res, err := f.svc.Generate(ctx, f.input())
	require.NoError(t, err)

	assert.Equal(t, migration.Generated, res.Status)
	assert.Equal(t, "app/migrations/20240506070809-generated.js", res.Path)

	content, err := f.store.Read(ctx, res.Path)
	require.NoError(t, err)
	assert.Equal(t, res.Artifact.Text, string(content))

	snapshot, err := f.store.Read(ctx, "app/.curr.schema.json")
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"users\": {\n        \"properties\": {\n            \"name\": \"string\"\n        }\n    }\n}\n", string(snapshot))

	require.Len(t, f.history.records, 1)
	assert.Equal(t, "20240506070809-generated.js", f.history.records[0].Filename)
	assert.Equal(t, history.CalculateChecksum(res.Artifact.Text), f.history.records[0].Checksum)
	assert.False(t, f.history.records[0].Destructive)
}

func TestGenerate_SecondRunWithoutChanges(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.writeSchema(t, `{"users": {"properties": {"name": "string"}}}`)

	_, err := f.svc.Generate(ctx, f.input())
	require.NoError(t, err)

	f.now = f.now.Add(time.Minute)
	res, err := f.svc.Generate(ctx, f.input())
	require.NoError(t, err)
	assert.Equal(t, migration.NoChanges, res.Status)
	assert.Nil(t, res.Artifact)

	files, err := f.store.List(ctx, "app/migrations")
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestGenerate_IncrementalChange(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.writeSchema(t, `{"users": {"properties": {"name": "string"}}}`)
	_, err := f.svc.Generate(ctx, f.input())
	require.NoError(t, err)

	f.now = f.now.Add(time.Second)
	f.writeSchema(t, `{"users": {"properties": {"name": "string", "age": "int"}}}`)
	res, err := f.svc.Generate(ctx, f.input())
	require.NoError(t, err)

	assert.Contains(t, res.Artifact.Text, `db.addColumn("users", "age", "int");`)
	assert.Contains(t, res.Artifact.Text, `db.removeColumn("users", "age");`)
	assert.NotContains(t, res.Artifact.Text, "createTable")
}

func TestGenerate_MissingSchema(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Generate(context.Background(), f.input())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchemaNotFound))
	assert.Contains(t, err.Error(), "could not locate schema file: app/schema.json")
}

func TestGenerate_DryRunWritesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.writeSchema(t, `{"users": {"properties": {"name": "string"}}}`)

	in := f.input()
	in.DryRun = true
	res, err := f.svc.Generate(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, migration.Generated, res.Status)
	assert.Empty(t, res.Path)
	assert.NotEmpty(t, res.Artifact.Text)

	ok, err := f.store.Exists(ctx, "app/.curr.schema.json")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = f.store.Exists(ctx, "app/migrations")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, f.history.records)
}

func TestGenerate_InvalidPropertyLeavesSnapshotUntouched(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.writeSchema(t, `{"users": {"properties": {"name": "string"}}}`)
	_, err := f.svc.Generate(ctx, f.input())
	require.NoError(t, err)
	before, err := f.store.Read(ctx, "app/.curr.schema.json")
	require.NoError(t, err)

	f.now = f.now.Add(time.Second)
	f.writeSchema(t, `{"users": {"properties": {"name": "string", "bad": {"default": 1}}}}`)
	_, err = f.svc.Generate(ctx, f.input())
	require.Error(t, err)

	after, err := f.store.Read(ctx, "app/.curr.schema.json")
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))

	files, err := f.store.List(ctx, "app/migrations")
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestGenerate_DestructiveNeedsConfirmation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.writeSchema(t, `{"users": {"properties": {"name": "string"}}, "logs": {"properties": {"line": "text"}}}`)
	_, err := f.svc.Generate(ctx, f.input())
	require.NoError(t, err)

	f.now = f.now.Add(time.Second)
	f.writeSchema(t, `{"users": {"properties": {"name": "string"}}}`)

	var asked []domain.Operation
	in := f.input()
	in.Confirm = func(ops []domain.Operation) (bool, error) {
		asked = ops
		return false, nil
	}
	_, err = f.svc.Generate(ctx, in)
	assert.True(t, errors.Is(err, ErrAborted))
	require.Len(t, asked, 1)
	assert.Equal(t, "Drop table logs", asked[0].Description())

	in.Confirm = func([]domain.Operation) (bool, error) { return true, nil }
	res, err := f.svc.Generate(ctx, in)
	require.NoError(t, err)
	assert.Contains(t, res.Artifact.Text, `db.dropTable("logs");`)
	assert.True(t, f.history.records[len(f.history.records)-1].Destructive)
}

func TestGenerate_HistoryFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.history.fail = errors.New("database is locked")
	f.writeSchema(t, `{"users": {"properties": {"name": "string"}}}`)

	res, err := f.svc.Generate(ctx, f.input())
	require.NoError(t, err)
	assert.NotEmpty(t, res.Path)
	assert.EqualError(t, res.HistoryErr, "database is locked")

	ok, err := f.store.Exists(ctx, "app/.curr.schema.json")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGenerate_CustomSnapshotPath(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.writeSchema(t, `{"users": {"properties": {"name": "string"}}}`)

	in := f.input()
	in.SnapshotPath = "state/schema.json"
	_, err := f.svc.Generate(ctx, in)
	require.NoError(t, err)

	ok, err := f.store.Exists(ctx, "state/schema.json")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPlan(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.writeSchema(t, `{"users": {"properties": {"name": "string"}}}`)

	plan, err := f.svc.Plan(ctx, PlanInput{SchemaPath: "app/schema.json"})
	require.NoError(t, err)
	require.Len(t, plan.Up, 1)
	assert.Equal(t, domain.KindCreateTable, plan.Up[0].Kind())

	ok, err := f.store.Exists(ctx, "app/.curr.schema.json")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.writeSchema(t, `{"users": {"properties": {"name": "string"}}}`)
	res, err := f.svc.Generate(ctx, f.input())
	require.NoError(t, err)

	require.NoError(t, f.store.Write(ctx, "app/migrations/20200101000000-generated.js", []byte("manual")))

	statuses, err := f.svc.Status(ctx, "app/migrations")
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, "20200101000000-generated.js", statuses[0].Filename)
	assert.False(t, statuses[0].Recorded)
	assert.True(t, statuses[1].Recorded)
	assert.False(t, statuses[1].Modified)

	edited := strings.Replace(res.Artifact.Text, "return null;", "return undefined;", 1)
	require.NoError(t, f.store.Write(ctx, res.Path, []byte(edited)))

	statuses, err = f.svc.Status(ctx, "app/migrations")
	require.NoError(t, err)
	assert.True(t, statuses[1].Modified)
}

func TestDefaultSnapshotPath(t *testing.T) {
	assert.Equal(t, "app/.curr.schema.json", DefaultSnapshotPath("app/schema.yaml"))
	assert.Equal(t, ".curr.schema.json", DefaultSnapshotPath("schema.json"))
}
