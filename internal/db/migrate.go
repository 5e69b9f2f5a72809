package db

import (
	"fmt"
	"os"
)

// MigrationResult contains migration statistics
type MigrationResult struct {
	Rows     int
	Source   string
	Target   string
	Artifact string
}

// Migrate copies an exported store into another store, typically SQLite to
// DuckDB. An existing target file is kept as <target>.backup.
func Migrate(src Database, targetType DBType, targetPath string) (*MigrationResult, error) {
	recs, err := LoadRecords(src)
	if err != nil {
		return nil, fmt.Errorf("원본 읽기 실패: %w", err)
	}
	artifact, err := GetMeta(src, MetaSourceArtifact)
	if err != nil {
		return nil, fmt.Errorf("원본 메타데이터 읽기 실패: %w", err)
	}

	// 기존 파일 백업
	if _, err := os.Stat(targetPath); err == nil {
		if err := os.Rename(targetPath, targetPath+".backup"); err != nil {
			return nil, fmt.Errorf("백업 실패: %w", err)
		}
	}

	dst, err := OpenType(targetType, targetPath)
	if err != nil {
		return nil, err
	}
	defer dst.Close()

	if err := Export(dst, recs, artifact); err != nil {
		return nil, err
	}

	return &MigrationResult{
		Rows:     len(recs),
		Source:   src.Path(),
		Target:   targetPath,
		Artifact: artifact,
	}, nil
}
