package internal

import (
	"context"
	"database/sql"
	"errors"
	"sync"
)

// SessionIDKey is the single device-local key holding the current session id
const SessionIDKey = "chatSessionId"

// KeyValueStore is the persisted device-local state
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Clear(ctx context.Context, key string) error
}

// SQLiteStore keeps state in the ItemTable of a SQLite database
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a new SQLiteStore over an open database.
// path is only used in error messages.
func NewSQLiteStore(db *sql.DB, path string) *SQLiteStore {
	return &SQLiteStore{db: db, path: path}
}

// OpenSQLiteStore opens the state database at path and wraps it in a store
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := OpenStateDatabase(path)
	if err != nil {
		return nil, err
	}
	return NewSQLiteStore(db, path), nil
}

// Get returns the value stored under key
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT value FROM ItemTable WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &StoreError{Path: s.path, Op: "get", Err: err}
	}
	if !value.Valid {
		return "", false, nil
	}
	return value.String, true, nil
}

// Set stores value under key, replacing any previous value
func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO ItemTable (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	if err != nil {
		return &StoreError{Path: s.path, Op: "set", Err: err}
	}
	return nil
}

// Clear removes key
func (s *SQLiteStore) Clear(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM ItemTable WHERE key = ?", key); err != nil {
		return &StoreError{Path: s.path, Op: "clear", Err: err}
	}
	return nil
}

// Items returns every stored pair ordered by key
func (s *SQLiteStore) Items(ctx context.Context) ([]KeyValuePair, error) {
	pairs, err := QueryItemTable(ctx, s.db, "%")
	if err != nil {
		return nil, &StoreError{Path: s.path, Op: "get", Err: err}
	}
	return pairs, nil
}

// Path returns the database location
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// MemoryStore is an in-process KeyValueStore
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get returns the value stored under key
func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set stores value under key
func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Clear removes key
func (m *MemoryStore) Clear(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

var (
	_ KeyValueStore = (*SQLiteStore)(nil)
	_ KeyValueStore = (*MemoryStore)(nil)
)
