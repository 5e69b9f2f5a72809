package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/n0roo/richness-kit/internal/richness"
)

// Metadata keys written on export
const (
	MetaSourceArtifact = "source_artifact"
	MetaExportedAt     = "exported_at"
	MetaRowCount       = "row_count"
)

func columnList() string {
	cols := richness.ArtifactColumns()
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = `"` + c + `"`
	}
	return strings.Join(quoted, ", ")
}

// Export replaces device_richness with recs in one transaction and records
// the source artifact in metadata.
func Export(d Database, recs []richness.Record, source string) error {
	tx, err := d.Begin()
	if err != nil {
		return fmt.Errorf("트랜잭션 시작 실패: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM device_richness`); err != nil {
		return fmt.Errorf("기존 데이터 삭제 실패: %w", err)
	}

	stmt, err := tx.Prepare(fmt.Sprintf(
		`INSERT INTO device_richness (row_index, %s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, columnList()))
	if err != nil {
		return fmt.Errorf("INSERT 준비 실패: %w", err)
	}
	defer stmt.Close()

	for i, r := range recs {
		_, err := stmt.Exec(i, r.DeviceID, r.CafeCluster, r.PingCluster, r.RestaurantCluster,
			nullFloat(r.CafeScore), nullFloat(r.PingScore), nullFloat(r.RestaurantScore), r.Overall)
		if err != nil {
			return fmt.Errorf("%s 삽입 실패: %w", r.DeviceID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("커밋 실패: %w", err)
	}

	meta := map[string]string{
		MetaSourceArtifact: source,
		MetaExportedAt:     time.Now().UTC().Format(time.RFC3339),
		MetaRowCount:       fmt.Sprint(len(recs)),
	}
	for k, v := range meta {
		if err := d.SetMeta(k, v); err != nil {
			return fmt.Errorf("메타데이터 저장 실패: %w", err)
		}
	}
	return nil
}

// LoadRecords reads device_richness back in artifact order
func LoadRecords(d Database) ([]richness.Record, error) {
	rows, err := d.Query(fmt.Sprintf(`SELECT %s FROM device_richness ORDER BY row_index`, columnList()))
	if err != nil {
		return nil, fmt.Errorf("조회 실패: %w", err)
	}
	defer rows.Close()

	var recs []richness.Record
	for rows.Next() {
		var r richness.Record
		var cafe, ping, rest sql.NullFloat64
		if err := rows.Scan(&r.DeviceID, &r.CafeCluster, &r.PingCluster, &r.RestaurantCluster,
			&cafe, &ping, &rest, &r.Overall); err != nil {
			return nil, fmt.Errorf("행 읽기 실패: %w", err)
		}
		r.CafeScore = fromNull(cafe)
		r.PingScore = fromNull(ping)
		r.RestaurantScore = fromNull(rest)
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// GetMeta returns a metadata value, or "" when absent
func GetMeta(d Database, key string) (string, error) {
	var value sql.NullString
	err := d.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value.String, nil
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func fromNull(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	return richness.Float(n.Float64)
}
