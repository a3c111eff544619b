// Package service implements application services (use cases).
package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/satishbabariya/schemigrate/internal/adapters/storage"
	"github.com/satishbabariya/schemigrate/internal/core/migration"
	"github.com/satishbabariya/schemigrate/internal/core/migration/differ"
	"github.com/satishbabariya/schemigrate/internal/core/migration/domain"
	"github.com/satishbabariya/schemigrate/internal/core/migration/history"
	schemadomain "github.com/satishbabariya/schemigrate/internal/core/schema/domain"
	"github.com/satishbabariya/schemigrate/internal/debug"
	"github.com/satishbabariya/schemigrate/internal/repository"
)

// SnapshotFilename is the name of the previous-schema snapshot kept next to
// the schema file.
const SnapshotFilename = ".curr.schema.json"

var (
	// ErrSchemaNotFound is returned when the schema file does not exist.
	ErrSchemaNotFound = errors.New("could not locate schema file")
	// ErrAborted is returned when destructive operations were not confirmed.
	ErrAborted = errors.New("migration aborted")
)

// DefaultSnapshotPath returns the snapshot path for a schema file.
func DefaultSnapshotPath(schemaPath string) string {
	return filepath.Join(filepath.Dir(schemaPath), SnapshotFilename)
}

// MigrationService orchestrates migration generation.
type MigrationService struct {
	schemaRepo    repository.SchemaRepository
	migrationRepo repository.MigrationRepository
	historyRepo   repository.HistoryRepository
	compiler      *migration.Compiler
	now           func() time.Time
}

// NewMigrationService creates a new migration service. historyRepo may be nil,
// in which case generated migrations are not recorded.
func NewMigrationService(
	schemaRepo repository.SchemaRepository,
	migrationRepo repository.MigrationRepository,
	historyRepo repository.HistoryRepository,
	compiler *migration.Compiler,
) *MigrationService {
	return &MigrationService{
		schemaRepo:    schemaRepo,
		migrationRepo: migrationRepo,
		historyRepo:   historyRepo,
		compiler:      compiler,
		now:           time.Now,
	}
}

// SetClock replaces the clock used for artifact filenames.
func (s *MigrationService) SetClock(now func() time.Time) {
	s.now = now
}

// ConfirmFunc is asked before destructive operations are written. Returning
// false aborts generation.
type ConfirmFunc func(destructive []domain.Operation) (bool, error)

// GenerateInput represents input for generating a migration.
type GenerateInput struct {
	SchemaPath    string
	SnapshotPath  string
	MigrationsDir string
	// DryRun compiles without writing anything.
	DryRun bool
	// Confirm is consulted when the up direction drops tables or columns. A
	// nil Confirm accepts.
	Confirm ConfirmFunc
}

// GenerateResult reports what Generate did.
type GenerateResult struct {
	Status   migration.Status
	Artifact *domain.Artifact
	// Path is where the artifact was written; empty for dry runs.
	Path string
	// HistoryErr is set when the artifact was written but could not be
	// recorded in the history database.
	HistoryErr error
}

// Generate compiles the schema against the previous snapshot and, when there
// are changes, writes the artifact, records it and replaces the snapshot.
// On error nothing after the failing step happens, so the next run diffs
// against the same snapshot.
func (s *MigrationService) Generate(ctx context.Context, input GenerateInput) (*GenerateResult, error) {
	prev, next, err := s.load(ctx, input.SchemaPath, input.SnapshotPath)
	if err != nil {
		return nil, err
	}

	res, err := s.compiler.Compile(prev, next, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to generate migration: %w", err)
	}
	if res.Status == migration.NoChanges {
		debug.Info("No schema changes found.")
		return &GenerateResult{Status: migration.NoChanges}, nil
	}

	result := &GenerateResult{Status: res.Status, Artifact: res.Artifact}
	if input.DryRun {
		return result, nil
	}

	if destructive := domain.Destructive(res.Artifact.Up); len(destructive) > 0 && input.Confirm != nil {
		ok, err := input.Confirm(destructive)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrAborted
		}
	}

	path, err := s.migrationRepo.Save(ctx, input.MigrationsDir, res.Artifact)
	if err != nil {
		return nil, err
	}
	result.Path = path
	debug.Info("migration written", "path", path, "up", len(res.Artifact.Up), "down", len(res.Artifact.Down))

	if s.historyRepo != nil {
		record := &history.Record{
			Filename:    res.Artifact.Filename,
			Checksum:    history.CalculateChecksum(res.Artifact.Text),
			UpCount:     len(res.Artifact.Up),
			DownCount:   len(res.Artifact.Down),
			Destructive: len(domain.Destructive(res.Artifact.Up)) > 0,
		}
		if err := s.historyRepo.Record(ctx, record); err != nil {
			debug.Warn("failed to record migration history", "file", res.Artifact.Filename, "error", err)
			result.HistoryErr = err
		}
	}

	if err := s.schemaRepo.Save(ctx, s.snapshotPath(input), next); err != nil {
		return nil, fmt.Errorf("migration written to %s but the schema snapshot could not be saved: %w", path, err)
	}

	return result, nil
}

// PlanInput represents input for computing a plan.
type PlanInput struct {
	SchemaPath   string
	SnapshotPath string
}

// Plan returns the operations the next Generate would emit, without rendering.
func (s *MigrationService) Plan(ctx context.Context, input PlanInput) (domain.Plan, error) {
	prev, next, err := s.load(ctx, input.SchemaPath, input.SnapshotPath)
	if err != nil {
		return domain.Plan{}, err
	}
	return differ.Plan(prev, next), nil
}

// MigrationStatus describes one artifact on disk.
type MigrationStatus struct {
	Filename string
	// Recorded is true when the history database knows the artifact.
	Recorded bool
	// Modified is true when the artifact changed since it was generated.
	Modified    bool
	GeneratedAt time.Time
}

// Status lists the artifacts in dir and checks them against the history.
func (s *MigrationService) Status(ctx context.Context, dir string) ([]MigrationStatus, error) {
	files, err := s.migrationRepo.List(ctx, dir)
	if err != nil {
		return nil, err
	}

	records := make(map[string]history.Record)
	if s.historyRepo != nil {
		list, err := s.historyRepo.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, r := range list {
			records[r.Filename] = r
		}
	}

	statuses := make([]MigrationStatus, 0, len(files))
	for _, file := range files {
		st := MigrationStatus{Filename: file}
		if r, ok := records[file]; ok {
			st.Recorded = true
			st.GeneratedAt = r.GeneratedAt

			content, err := s.migrationRepo.Read(ctx, dir, file)
			if err != nil {
				return nil, err
			}
			if err := s.historyRepo.ValidateChecksum(ctx, file, content); err != nil {
				debug.Debug("checksum mismatch", "file", file, "error", err)
				st.Modified = true
			}
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}

func (s *MigrationService) load(ctx context.Context, schemaPath, snapshotPath string) (prev, next *schemadomain.Schema, err error) {
	exists, err := s.schemaRepo.Exists(ctx, schemaPath)
	if err != nil {
		return nil, nil, err
	}
	if !exists {
		return nil, nil, fmt.Errorf("%w: %s", ErrSchemaNotFound, schemaPath)
	}

	next, err = s.schemaRepo.Load(ctx, schemaPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load schema: %w", err)
	}

	if snapshotPath == "" {
		snapshotPath = DefaultSnapshotPath(schemaPath)
	}
	prev, err = s.schemaRepo.Load(ctx, snapshotPath)
	if errors.Is(err, storage.ErrNotFound) {
		debug.Debug("no previous schema snapshot", "path", snapshotPath)
		return schemadomain.NewSchema(), next, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load schema snapshot: %w", err)
	}
	return prev, next, nil
}

func (s *MigrationService) snapshotPath(input GenerateInput) string {
	if input.SnapshotPath != "" {
		return input.SnapshotPath
	}
	return DefaultSnapshotPath(input.SchemaPath)
}
