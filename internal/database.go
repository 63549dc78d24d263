package internal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const createItemTableSQL = `
CREATE TABLE IF NOT EXISTS ItemTable (
	key TEXT PRIMARY KEY,
	value TEXT
)`

// OpenDatabase opens a SQLite database in read-only mode.
// mode=ro is only honoured in URI form, so the path gets a file: prefix.
func OpenDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return db, nil
}

// OpenStateDatabase opens (creating if needed) the read-write state database at path
func OpenStateDatabase(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, &StoreError{Path: path, Op: "open", Err: err}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StoreError{Path: path, Op: "open", Err: err}
	}
	// A single connection serializes writers and keeps :memory: databases coherent
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &StoreError{Path: path, Op: "open", Err: fmt.Errorf("database ping failed: %w", err)}
	}
	if err := EnsureItemTable(context.Background(), db); err != nil {
		db.Close()
		return nil, &StoreError{Path: path, Op: "open", Err: err}
	}

	return db, nil
}

// EnsureItemTable creates the key-value table if it does not exist
func EnsureItemTable(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, createItemTableSQL); err != nil {
		return fmt.Errorf("failed to create ItemTable: %w", err)
	}
	return nil
}

// QueryItemTable queries the ItemTable with a LIKE pattern
func QueryItemTable(ctx context.Context, db *sql.DB, pattern string) ([]KeyValuePair, error) {
	query := "SELECT key, value FROM ItemTable WHERE key LIKE ? AND value IS NOT NULL ORDER BY key"
	rows, err := db.QueryContext(ctx, query, pattern)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var pairs []KeyValuePair
	for rows.Next() {
		var pair KeyValuePair
		var value sql.NullString
		if err := rows.Scan(&pair.Key, &value); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		if value.Valid {
			pair.Value = value.String
			pairs = append(pairs, pair)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return pairs, nil
}

// KeyValuePair represents a key-value pair from ItemTable
type KeyValuePair struct {
	Key   string
	Value string
}
