package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb/v2"
)

// DuckDB 스키마 버전
const duckDBSchemaVersion = 1

// DuckDB 스키마 (SQLite 호환)
// device_aid에 PK를 두지 않음: 같은 트랜잭션의 DELETE 후 재삽입이 제약 검사에 걸림
const duckDBSchema = `
CREATE TABLE IF NOT EXISTS metadata (
    key VARCHAR PRIMARY KEY,
    value VARCHAR,
    updated_at TIMESTAMP DEFAULT now()
);

CREATE TABLE IF NOT EXISTS device_richness (
    row_index INTEGER NOT NULL,
    device_aid VARCHAR NOT NULL,
    cafe_cluster INTEGER NOT NULL,
    ping_cluster INTEGER NOT NULL,
    restaurant_cluster INTEGER NOT NULL,
    cafe_richness_score DOUBLE,
    ping_richness_score DOUBLE,
    restaurant_richness_score DOUBLE,
    "OverallRichnessScore" DOUBLE NOT NULL
);
`

// DuckDB wraps sql.DB for DuckDB
type DuckDB struct {
	*sql.DB
	path string
}

// OpenDuckDB opens or creates a DuckDB database
func OpenDuckDB(path string) (*DuckDB, error) {
	// 디렉토리 생성
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("디렉토리 생성 실패: %w", err)
	}

	// DuckDB 연결
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("DuckDB 열기 실패: %w", err)
	}

	// 연결 테스트
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("DuckDB 연결 실패: %w", err)
	}

	d := &DuckDB{DB: db, path: path}

	// 스키마 초기화
	if err := d.Init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("스키마 초기화 실패: %w", err)
	}

	return d, nil
}

// Init initializes the DuckDB schema
func (d *DuckDB) Init() error {
	if _, err := d.Exec(duckDBSchema); err != nil {
		return fmt.Errorf("스키마 적용 실패: %w", err)
	}

	if err := d.SetMeta("schema_version", fmt.Sprint(duckDBSchemaVersion)); err != nil {
		return fmt.Errorf("버전 저장 실패: %w", err)
	}
	return nil
}

// SetMeta upserts a metadata entry
func (d *DuckDB) SetMeta(key, value string) error {
	_, err := d.Exec(`
		INSERT INTO metadata (key, value, updated_at)
		VALUES (?, ?, now())
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = now()
	`, key, value)
	return err
}

// Path returns the database file path
func (d *DuckDB) Path() string {
	return d.path
}

// Type returns TypeDuckDB
func (d *DuckDB) Type() DBType {
	return TypeDuckDB
}

// GetVersion returns current schema version
func (d *DuckDB) GetVersion() (int, error) {
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

// ExportParquet copies device_richness, in artifact order, to a Parquet file
func (d *DuckDB) ExportParquet(outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("디렉토리 생성 실패: %w", err)
	}
	query := fmt.Sprintf(`COPY (SELECT %s FROM device_richness ORDER BY row_index) TO '%s' (FORMAT PARQUET)`,
		columnList(), strings.ReplaceAll(outputPath, "'", "''"))
	if _, err := d.Exec(query); err != nil {
		return fmt.Errorf("Parquet 내보내기 실패: %w", err)
	}
	return nil
}

// IsDuckDB checks if path is a DuckDB file
func IsDuckDB(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	// 매직 바이트는 헤더 오프셋 8에 위치
	header := make([]byte, 12)
	if _, err := f.Read(header); err != nil {
		return false
	}
	return string(header[8:12]) == "DUCK"
}
