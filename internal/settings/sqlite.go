package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver" // SQLite driver
	_ "github.com/ncruces/go-sqlite3/embed"  // Embed SQLite
)

const schema = `CREATE TABLE IF NOT EXISTS system_settings (
	user_id TEXT NOT NULL,
	name    TEXT NOT NULL,
	value   INTEGER NOT NULL,
	PRIMARY KEY (user_id, name)
)`

// SQLiteStore persists settings in a single SQLite table keyed by user and name.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the settings database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("settings database path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create settings directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to settings database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create settings schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) GetInt(ctx context.Context, u User, name string, def int) (int, error) {
	var value int
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM system_settings WHERE user_id = ? AND name = ?`,
		string(u), name,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("failed to read setting %s: %w", name, err)
	}
	return value, nil
}

func (s *SQLiteStore) PutInt(ctx context.Context, u User, name string, value int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO system_settings (user_id, name, value) VALUES (?, ?, ?)
		 ON CONFLICT (user_id, name) DO UPDATE SET value = excluded.value`,
		string(u), name, value,
	)
	if err != nil {
		return fmt.Errorf("failed to write setting %s: %w", name, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
