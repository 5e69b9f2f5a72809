package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/n0roo/richness-kit/internal/artifact"
	"github.com/n0roo/richness-kit/internal/db"
	"github.com/spf13/cobra"
)

var (
	exportType    string
	exportDB      string
	exportFrom    string
	exportParquet string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "아티팩트를 DB로 내보내기",
	Long: `아티팩트 CSV를 SQLite 또는 DuckDB의 device_richness 테이블로 복사합니다.
DuckDB의 경우 Parquet 파일도 함께 만들 수 있습니다.

예시:
  richness export --db out/richness.db
  richness export --type duckdb --db out/richness.duckdb --parquet out/richness.parquet
  richness export --from other/overall.csv --db out/other.db`,
	RunE: runExport,
}

var exportMigrateCmd = &cobra.Command{
	Use:   "migrate <source-db>",
	Short: "내보낸 DB를 다른 형식으로 복사",
	Long: `내보낸 DB를 다른 형식으로 복사합니다 (예: SQLite → DuckDB).
대상 파일이 이미 있으면 <target>.backup 으로 백업합니다.

예시:
  richness export migrate out/richness.db --type duckdb --db out/richness.duckdb`,
	Args: cobra.ExactArgs(1),
	RunE: runExportMigrate,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.AddCommand(exportMigrateCmd)

	exportCmd.PersistentFlags().StringVar(&exportType, "type", "", "DB 타입 (sqlite, duckdb; 기본: 확장자로 판단)")
	exportCmd.PersistentFlags().StringVar(&exportDB, "db", "", "대상 DB 경로")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "아티팩트 경로 (기본: output.path)")
	exportCmd.Flags().StringVar(&exportParquet, "parquet", "", "Parquet 파일 경로 (DuckDB 전용)")
	_ = exportCmd.MarkPersistentFlagRequired("db")
}

func exportTarget() (db.DBType, error) {
	if exportType == "" {
		return db.TypeFromPath(exportDB), nil
	}
	return db.ParseType(exportType)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	typ, err := exportTarget()
	if err != nil {
		return err
	}
	if exportParquet != "" && typ != db.TypeDuckDB {
		return fmt.Errorf("--parquet 은 DuckDB 타입에서만 사용할 수 있습니다")
	}

	source := viewerSource(cfg, exportFrom)
	recs, err := artifact.Read(source)
	if err != nil {
		return err
	}

	database, err := db.OpenType(typ, exportDB)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.Export(database, recs, source); err != nil {
		return err
	}

	if exportParquet != "" {
		duck, ok := database.(*db.DuckDB)
		if !ok {
			return fmt.Errorf("DuckDB 연결이 아닙니다: %s", database.Type())
		}
		if err := duck.ExportParquet(exportParquet); err != nil {
			return err
		}
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"source":  source,
			"target":  exportDB,
			"type":    typ,
			"rows":    len(recs),
			"parquet": exportParquet,
		})
	}

	fmt.Printf("✅ %d행 내보내기 완료: %s (%s)\n", len(recs), exportDB, typ)
	if exportParquet != "" {
		fmt.Printf("   Parquet: %s\n", exportParquet)
	}
	return nil
}

func runExportMigrate(cmd *cobra.Command, args []string) error {
	typ, err := exportTarget()
	if err != nil {
		return err
	}

	src, err := db.OpenAuto(args[0])
	if err != nil {
		return err
	}
	defer src.Close()

	if src.Type() == typ {
		return fmt.Errorf("원본과 대상 타입이 같습니다: %s", typ)
	}

	result, err := db.Migrate(src, typ, exportDB)
	if err != nil {
		return err
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(result)
	}

	fmt.Println("✅ 마이그레이션 완료")
	fmt.Printf("  원본:     %s (%s)\n", result.Source, src.Type())
	fmt.Printf("  대상:     %s (%s)\n", result.Target, typ)
	fmt.Printf("  행 수:    %d\n", result.Rows)
	fmt.Printf("  아티팩트: %s\n", result.Artifact)
	return nil
}
