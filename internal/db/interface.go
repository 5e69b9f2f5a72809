package db

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
)

// Database is the common interface for SQLite and DuckDB
type Database interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
	Begin() (*sql.Tx, error)
	Close() error
	Path() string
	Type() DBType
	GetVersion() (int, error)
	SetMeta(key, value string) error
	GetDB() *sql.DB
}

// Ensure both types implement Database interface
var _ Database = (*DB)(nil)
var _ Database = (*DuckDB)(nil)

// GetDB returns the underlying sql.DB for DB (SQLite)
func (d *DB) GetDB() *sql.DB {
	return d.DB
}

// GetDB returns the underlying sql.DB for DuckDB
func (d *DuckDB) GetDB() *sql.DB {
	return d.DB
}

// DBType represents the database type
type DBType string

const (
	TypeSQLite DBType = "sqlite"
	TypeDuckDB DBType = "duckdb"
)

// ParseType validates a --type value
func ParseType(s string) (DBType, error) {
	switch DBType(strings.ToLower(s)) {
	case TypeSQLite:
		return TypeSQLite, nil
	case TypeDuckDB:
		return TypeDuckDB, nil
	}
	return "", fmt.Errorf("지원하지 않는 DB 타입: %q (sqlite, duckdb)", s)
}

// TypeFromPath guesses the store type: an existing DuckDB file or a
// .duckdb/.ddb extension selects DuckDB, anything else SQLite.
func TypeFromPath(path string) DBType {
	if IsDuckDB(path) {
		return TypeDuckDB
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".duckdb", ".ddb":
		return TypeDuckDB
	}
	return TypeSQLite
}

// OpenType opens a store of the given type
func OpenType(t DBType, path string) (Database, error) {
	if t == TypeDuckDB {
		return OpenDuckDB(path)
	}
	return Open(path)
}

// OpenAuto opens path with the type guessed from the file
func OpenAuto(path string) (Database, error) {
	return OpenType(TypeFromPath(path), path)
}
