package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/repotree/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/repotree/internal/core/domain"
	"github.com/custodia-labs/repotree/internal/core/ports/driven"
)

// DBName is the database file name inside the data directory.
const DBName = "repotree.db"

// Store is a unified SQLite-based storage that provides access to
// the token and run stores through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.repotree/data/repotree.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".repotree", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DBName)

	// WAL mode lets a second repotree process read while one writes.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	// Tokens are secrets.
	if err := os.Chmod(dbPath, 0600); err != nil {
		db.Close()
		return nil, fmt.Errorf("restricting database permissions: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// TokenStore returns a TokenStore interface backed by this store.
func (s *Store) TokenStore() driven.TokenStore {
	return &tokenStore{store: s}
}

// RunStore returns a RunStore interface backed by this store.
func (s *Store) RunStore() driven.RunStore {
	return &runStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
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
		// Extract version number (e.g., "001_tokens.up.sql" -> 1)
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

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("starting migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}

	return nil
}

// normaliseURL makes "https://host/" and "https://host" the same key.
func normaliseURL(url string) string {
	return strings.TrimRight(strings.TrimSpace(url), "/")
}

// ==================== Token Store ====================

// tokenStore implements driven.TokenStore.
type tokenStore struct {
	store *Store
}

var _ driven.TokenStore = (*tokenStore)(nil)

// Save stores or replaces the token for url.
func (s *tokenStore) Save(ctx context.Context, url, token string) error {
	if normaliseURL(url) == "" {
		return domain.NewConfigError("url", "is required")
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO tokens (url, token, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			token = excluded.token,
			updated_at = excluded.updated_at
	`, normaliseURL(url), token, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	return nil
}

// Get returns the token for url.
func (s *tokenStore) Get(ctx context.Context, url string) (string, error) {
	var token string
	err := s.store.db.QueryRowContext(ctx, `SELECT token FROM tokens WHERE url = ?`, normaliseURL(url)).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("token for %s: %w", url, domain.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("getting token: %w", err)
	}
	return token, nil
}

// Delete removes the token for url.
func (s *tokenStore) Delete(ctx context.Context, url string) error {
	res, err := s.store.db.ExecContext(ctx, `DELETE FROM tokens WHERE url = ?`, normaliseURL(url))
	if err != nil {
		return fmt.Errorf("deleting token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting token: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("token for %s: %w", url, domain.ErrNotFound)
	}
	return nil
}

// List returns the URLs with stored tokens, sorted.
func (s *tokenStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx, `SELECT url FROM tokens ORDER BY url`)
	if err != nil {
		return nil, fmt.Errorf("listing tokens: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("scanning token: %w", err)
		}
		urls = append(urls, url)
	}
	return urls, rows.Err()
}

// ==================== Run Store ====================

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

// SaveRun records a finished run.
func (s *runStore) SaveRun(ctx context.Context, run domain.RunSummary) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO runs (id, url, dest, started_at, finished_at, cloned, pulled, skipped, failed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.RunID, run.URL, run.Dest, run.StartedAt.UTC(), run.FinishedAt.UTC(),
		run.Cloned, run.Pulled, run.Skipped, run.Failed)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs first.
func (s *runStore) ListRuns(ctx context.Context, limit int) ([]domain.RunSummary, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, url, dest, started_at, finished_at, cloned, pulled, skipped, failed
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.RunSummary
	for rows.Next() {
		var r domain.RunSummary
		if err := rows.Scan(&r.RunID, &r.URL, &r.Dest, &r.StartedAt, &r.FinishedAt,
			&r.Cloned, &r.Pulled, &r.Skipped, &r.Failed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
