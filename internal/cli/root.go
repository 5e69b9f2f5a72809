package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/n0roo/richness-kit/internal/artifact"
	"github.com/n0roo/richness-kit/internal/config"
	"github.com/n0roo/richness-kit/internal/db"
	"github.com/n0roo/richness-kit/internal/logger"
	"github.com/n0roo/richness-kit/internal/richness"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	jsonOut    bool
)

var rootCmd = &cobra.Command{
	Use:   "richness",
	Short: "디바이스 리치니스 점수 계산 도구",
	Long: `richness - 디바이스 리치니스 점수 계산 도구

카페, 핑, 레스토랑 클러스터 프로파일을 점수화하고 디바이스별 종합
리치니스 점수를 계산합니다.

주요 기능:
  - run:    전체 파이프라인 실행 후 아티팩트 저장
  - score:  단일 도메인 클러스터 점수 계산
  - view:   터미널 뷰어
  - serve:  읽기 전용 HTTP 뷰어
  - export: SQLite / DuckDB / Parquet 내보내기`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "설정 파일 경로 (기본: ./richness.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "상세 출력")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "JSON 출력")
}

// IsVerbose returns verbose flag
func IsVerbose() bool {
	return verbose
}

// IsJSON returns json output flag
func IsJSON() bool {
	return jsonOut
}

// loadConfig reads .env then the effective configuration
func loadConfig() (*config.Config, error) {
	config.LoadEnv()
	return config.Load(configPath)
}

func newLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(cfg.Log.Mode, verbose)
}

// isDatabase reports whether a viewer source is an export database
func isDatabase(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3", ".duckdb", ".ddb":
		return true
	}
	return db.IsDuckDB(path)
}

// recordLoader reads viewer records from an artifact CSV or an export DB
func recordLoader(source string) func() ([]richness.Record, error) {
	return func() ([]richness.Record, error) {
		if !isDatabase(source) {
			return artifact.Read(source)
		}

		database, err := db.OpenAuto(source)
		if err != nil {
			return nil, fmt.Errorf("DB 열기 실패: %w", err)
		}
		defer database.Close()
		return db.LoadRecords(database)
	}
}

// viewerSource picks the explicit source or the configured artifact
func viewerSource(cfg *config.Config, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return cfg.ResolvePath(cfg.Output.Path)
}
