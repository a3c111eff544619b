// Package history records generated migrations in a database table, so that
// later runs can tell which artifacts were produced and whether they were
// edited since.
package history

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/satishbabariya/schemigrate/internal/debug"
)

// TableName is the history table.
const TableName = "_schemigrate_history"

// Record represents a generated migration in the history table.
type Record struct {
	ID          string
	Filename    string
	Checksum    string
	UpCount     int
	DownCount   int
	Destructive bool
	GeneratedAt time.Time
}

// Tracker manages migration history in the database.
type Tracker struct {
	db      *sql.DB
	dialect Dialect
}

// NewTracker creates a tracker on an open database.
func NewTracker(db *sql.DB, dialect Dialect) *Tracker {
	return &Tracker{db: db, dialect: dialect}
}

// Open connects to the history database named by rawURL and makes sure the
// history table exists.
func Open(ctx context.Context, rawURL string) (*Tracker, error) {
	dialect, dsn, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}

	if dialect == SQLite {
		if err := prepareSQLite(dsn); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open(dialect.Name, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if dialect == SQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	t := NewTracker(db, dialect)
	if err := t.EnsureTable(ctx); err != nil {
		db.Close()
		return nil, err
	}

	debug.Debug("history opened", "driver", dialect.Name)
	return t, nil
}

// Close closes the underlying database.
func (t *Tracker) Close() error {
	return t.db.Close()
}

// EnsureTable creates the history table if it doesn't exist.
func (t *Tracker) EnsureTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			filename VARCHAR(255) NOT NULL UNIQUE,
			checksum VARCHAR(64) NOT NULL,
			up_count INTEGER NOT NULL,
			down_count INTEGER NOT NULL,
			destructive BOOLEAN NOT NULL DEFAULT FALSE,
			generated_at %s NOT NULL
		)`, TableName, t.dialect.TimestampType)

	if _, err := t.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create history table: %w", err)
	}
	return nil
}

// Record stores a generated migration. An empty ID is filled with a fresh
// UUID and a zero GeneratedAt with the current time.
func (t *Tracker) Record(ctx context.Context, r *Record) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.GeneratedAt.IsZero() {
		r.GeneratedAt = time.Now()
	}
	r.GeneratedAt = r.GeneratedAt.UTC().Truncate(time.Microsecond)

	query := fmt.Sprintf(`
		INSERT INTO %s (id, filename, checksum, up_count, down_count, destructive, generated_at)
		VALUES (%s)`, TableName, t.dialect.Placeholders(7))

	_, err := t.db.ExecContext(ctx, query,
		r.ID, r.Filename, r.Checksum, r.UpCount, r.DownCount, r.Destructive, r.GeneratedAt)
	if err != nil {
		return fmt.Errorf("failed to record migration %s: %w", r.Filename, err)
	}
	return nil
}

// List returns all records, oldest first.
func (t *Tracker) List(ctx context.Context) ([]Record, error) {
	query := fmt.Sprintf(`
		SELECT id, filename, checksum, up_count, down_count, destructive, generated_at
		FROM %s
		ORDER BY generated_at ASC, filename ASC`, TableName)

	rows, err := t.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Filename, &r.Checksum, &r.UpCount,
			&r.DownCount, &r.Destructive, &r.GeneratedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

// Get returns the record for a filename, or nil if none exists.
func (t *Tracker) Get(ctx context.Context, filename string) (*Record, error) {
	query := fmt.Sprintf(`
		SELECT id, filename, checksum, up_count, down_count, destructive, generated_at
		FROM %s
		WHERE filename = %s`, TableName, t.dialect.Placeholder(1))

	var r Record
	err := t.db.QueryRowContext(ctx, query, filename).Scan(
		&r.ID, &r.Filename, &r.Checksum, &r.UpCount, &r.DownCount, &r.Destructive, &r.GeneratedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ValidateChecksum verifies that a migration hasn't been modified since it
// was generated. Unknown migrations pass.
func (t *Tracker) ValidateChecksum(ctx context.Context, filename, content string) error {
	r, err := t.Get(ctx, filename)
	if err != nil {
		return fmt.Errorf("failed to get checksum: %w", err)
	}
	if r == nil {
		return nil
	}

	if actual := CalculateChecksum(content); actual != r.Checksum {
		return fmt.Errorf("migration %s has been modified (checksum mismatch: expected %s, got %s)",
			filename, r.Checksum, actual)
	}
	return nil
}

// CalculateChecksum computes SHA256 checksum of migration content.
func CalculateChecksum(content string) string {
	hash := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", hash)
}
