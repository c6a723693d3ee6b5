package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the file-backed cache backend. It survives process
// restarts, which the in-process store does not.
type SQLiteStore struct {
	conn *sql.DB
	mu   sync.RWMutex
}

// OpenSQLite opens (and if needed creates) the cache database at path.
// WAL mode is enabled for concurrent reads.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	s := &SQLiteStore{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS cache_entries (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			expires_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_cache_expires ON cache_entries(expires_at);
	`)
	if err != nil {
		return fmt.Errorf("create cache schema: %w", err)
	}
	return nil
}

// Set upserts the value with its absolute expiry.
func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expires := time.Now().Add(ttl).UTC().Format(time.RFC3339Nano)
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO cache_entries (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value, expires_at=excluded.expires_at
	`, key, value, expires)
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Get returns the value if present and unexpired. Expired rows are deleted
// opportunistically.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	row := s.conn.QueryRowContext(ctx, `SELECT value, expires_at FROM cache_entries WHERE key = ?`, key)
	var value []byte
	var expiresStr string
	err := row.Scan(&value, &expiresStr)
	s.mu.RUnlock()

	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}

	expires, err := time.Parse(time.RFC3339Nano, expiresStr)
	if err != nil || !time.Now().Before(expires) {
		s.mu.Lock()
		s.conn.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key)
		s.mu.Unlock()
		return nil, false, nil
	}
	return value, true, nil
}

// Keys returns the live keys matching the glob pattern, sorted by key.
func (s *SQLiteStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	rows, err := s.conn.QueryContext(ctx, `SELECT key FROM cache_entries WHERE expires_at > ? ORDER BY key`, now)
	if err != nil {
		return nil, fmt.Errorf("cache keys: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan cache key: %w", err)
		}
		if ok, _ := path.Match(pattern, k); ok {
			out = append(out, k)
		}
	}
	return out, rows.Err()
}

// PurgeExpired deletes every expired row. Returns the number removed.
func (s *SQLiteStore) PurgeExpired(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.conn.ExecContext(ctx, `DELETE FROM cache_entries WHERE expires_at <= ?`, now)
	if err != nil {
		return 0, fmt.Errorf("purge expired: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}
