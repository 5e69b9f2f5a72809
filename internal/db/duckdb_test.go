package db

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDuckDBExportAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "richness.duckdb")

	duck, err := OpenDuckDB(path)
	if err != nil {
		t.Fatalf("DuckDB 열기 실패: %v", err)
	}
	defer duck.Close()

	if v, err := duck.GetVersion(); err != nil || v != duckDBSchemaVersion {
		t.Errorf("버전 = %d, %v", v, err)
	}

	recs := sampleRecords()
	if err := Export(duck, recs, "overall.csv"); err != nil {
		t.Fatalf("Export 실패: %v", err)
	}
	// 같은 디바이스로 재삽입
	if err := Export(duck, recs, "overall.csv"); err != nil {
		t.Fatalf("재 Export 실패: %v", err)
	}

	got, err := LoadRecords(duck)
	if err != nil {
		t.Fatalf("LoadRecords 실패: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("결과 수 = %d, want 2", len(got))
	}
	if got[0].DeviceID != "0042" || got[0].RestaurantScore != nil {
		t.Errorf("첫 행 불일치: %+v", got[0])
	}
	if got[1].PingScore == nil || *got[1].PingScore != -3.5 {
		t.Errorf("ping 점수 불일치: %v", got[1].PingScore)
	}

	parquet := filepath.Join(t.TempDir(), "richness.parquet")
	if err := duck.ExportParquet(parquet); err != nil {
		t.Fatalf("Parquet 내보내기 실패: %v", err)
	}
	if _, err := os.Stat(parquet); err != nil {
		t.Errorf("Parquet 파일 없음: %v", err)
	}
}

func TestMigrate(t *testing.T) {
	sqlite, cleanup := setupTestDB(t)
	defer cleanup()

	if err := Export(sqlite, sampleRecords(), "overall.csv"); err != nil {
		t.Fatalf("Export 실패: %v", err)
	}

	target := filepath.Join(t.TempDir(), "richness.duckdb")
	result, err := Migrate(sqlite, TypeDuckDB, target)
	if err != nil {
		t.Fatalf("Migrate 실패: %v", err)
	}
	if result.Rows != 2 || result.Artifact != "overall.csv" {
		t.Errorf("결과 불일치: %+v", result)
	}

	if !IsDuckDB(target) {
		t.Error("대상 파일이 DuckDB 형식이 아님")
	}

	duck, err := OpenAuto(target)
	if err != nil {
		t.Fatalf("OpenAuto 실패: %v", err)
	}
	defer duck.Close()

	if duck.Type() != TypeDuckDB {
		t.Errorf("타입 = %s, want duckdb", duck.Type())
	}
	got, err := LoadRecords(duck)
	if err != nil || len(got) != 2 {
		t.Errorf("LoadRecords = %d, %v", len(got), err)
	}
}
