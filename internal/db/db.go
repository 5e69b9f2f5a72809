package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const schemaVersion = 1

// SQLite 내보내기 스키마
const schema = `
-- 메타데이터
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- 디바이스별 부유도 (결과 CSV와 동일한 컬럼)
CREATE TABLE IF NOT EXISTS device_richness (
    row_index INTEGER NOT NULL,
    device_aid TEXT PRIMARY KEY,
    cafe_cluster INTEGER NOT NULL,
    ping_cluster INTEGER NOT NULL,
    restaurant_cluster INTEGER NOT NULL,
    cafe_richness_score REAL,
    ping_richness_score REAL,
    restaurant_richness_score REAL,
    "OverallRichnessScore" REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_device_richness_overall ON device_richness("OverallRichnessScore");
`

// DB wraps sql.DB with helper methods
type DB struct {
	*sql.DB
	path string
}

// Open opens or creates the database
func Open(path string) (*DB, error) {
	// 디렉토리 생성
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("디렉토리 생성 실패: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("DB 열기 실패: %w", err)
	}

	// 연결 테스트
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("DB 연결 실패: %w", err)
	}

	d := &DB{DB: db, path: path}

	// 스키마 자동 초기화
	if err := d.Init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("스키마 초기화 실패: %w", err)
	}

	return d, nil
}

// Init initializes the database schema
func (d *DB) Init() error {
	if _, err := d.Exec(schema); err != nil {
		return fmt.Errorf("스키마 적용 실패: %w", err)
	}

	_, err := d.Exec(`INSERT OR REPLACE INTO metadata (key, value, updated_at) VALUES ('schema_version', ?, CURRENT_TIMESTAMP)`, schemaVersion)
	if err != nil {
		return fmt.Errorf("버전 저장 실패: %w", err)
	}

	return nil
}

// SetMeta upserts a metadata entry
func (d *DB) SetMeta(key, value string) error {
	_, err := d.Exec(`INSERT OR REPLACE INTO metadata (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`, key, value)
	return err
}

// GetVersion returns current schema version
func (d *DB) GetVersion() (int, error) {
	var version int
	err := d.QueryRow(`SELECT CAST(value AS INTEGER) FROM metadata WHERE key = 'schema_version'`).Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return version, nil
}

// Path returns the database file path
func (d *DB) Path() string {
	return d.path
}

// Type returns TypeSQLite
func (d *DB) Type() DBType {
	return TypeSQLite
}
