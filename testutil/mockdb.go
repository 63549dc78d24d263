package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

const createItemTableSQL = `
CREATE TABLE IF NOT EXISTS ItemTable (
	key TEXT PRIMARY KEY,
	value TEXT
)`

// CreateInMemoryDB creates an in-memory SQLite database with an empty ItemTable
func CreateInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createItemTableSQL); err != nil {
		db.Close()
		t.Fatalf("Failed to create ItemTable: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// CreateTestDB creates an in-memory state database holding a session id
// and a couple of unrelated rows
func CreateTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db := CreateInMemoryDB(t)

	items := []struct {
		key   string
		value string
	}{
		{key: "chatSessionId", value: "session_1700000000000"},
		{key: "theme", value: "dark"},
		{key: "lastExport", value: "2025-01-02T15:04:05Z"},
	}

	stmt, err := db.Prepare("INSERT INTO ItemTable (key, value) VALUES (?, ?)")
	if err != nil {
		t.Fatalf("Failed to prepare insert statement: %v", err)
	}
	defer stmt.Close()

	for _, item := range items {
		if _, err := stmt.Exec(item.key, item.value); err != nil {
			t.Fatalf("Failed to insert item: %v", err)
		}
	}

	return db
}

// InsertItem inserts a row into ItemTable
func InsertItem(t *testing.T, db *sql.DB, key, value string) {
	t.Helper()
	if _, err := db.Exec("INSERT INTO ItemTable (key, value) VALUES (?, ?)", key, value); err != nil {
		t.Fatalf("Failed to insert item: %v", err)
	}
}
