package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/briefly/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/briefly/internal/core/domain"
	"github.com/custodia-labs/briefly/internal/core/ports/driven"
)

// Ensure ItemStore implements the interface.
var _ driven.ItemStore = (*ItemStore)(nil)

// DefaultTable is used when no table name is configured.
const DefaultTable = "items"

// ItemStore persists key-value items in SQLite.
type ItemStore struct {
	db    *sql.DB
	path  string
	table string
}

// NewItemStore opens (or creates) the item database in dataDir and scopes
// every operation to table. If dataDir is empty, defaults to ~/.briefly/data.
func NewItemStore(dataDir, table string) (*ItemStore, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".briefly", "data")
	}
	if table == "" {
		table = DefaultTable
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "items.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &ItemStore{
		db:    db,
		path:  dbPath,
		table: table,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *ItemStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *ItemStore) Path() string {
	return s.path
}

// Table returns the logical table this store reads and writes.
func (s *ItemStore) Table() string {
	return s.table
}

// PutItem replaces the item under key wholesale.
func (s *ItemStore) PutItem(ctx context.Context, key string, item map[string]any) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshalling item: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO items (table_name, item_key, item, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(table_name, item_key) DO UPDATE SET
			item = excluded.item,
			updated_at = excluded.updated_at
	`, s.table, key, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving item: %w", err)
	}
	return nil
}

// GetItem returns the item under key.
func (s *ItemStore) GetItem(ctx context.Context, key string) (map[string]any, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT item FROM items WHERE table_name = ? AND item_key = ?`,
		s.table, key,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning item: %w", err)
	}

	var item map[string]any
	if err := json.Unmarshal([]byte(data), &item); err != nil {
		return nil, fmt.Errorf("unmarshalling item: %w", err)
	}
	return item, nil
}

// migrate runs all pending migrations.
func (s *ItemStore) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_items.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}
