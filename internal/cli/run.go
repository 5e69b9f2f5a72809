package cli

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/n0roo/richness-kit/internal/pipeline"
	"github.com/n0roo/richness-kit/internal/richness"
	"github.com/spf13/cobra"
)

var (
	runOutput      string
	runScoreDir    string
	runMetricsFile string
	runMissing     string
	runDuplicates  string
	runWorkers     int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "전체 파이프라인 실행",
	Long: `세 도메인의 클러스터를 점수화하고 디바이스별 종합 점수를 계산해
아티팩트 CSV로 저장합니다.

예시:
  richness run
  richness run --output out/overall.csv --score-dir out/scores
  richness run --missing rescale --json`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "아티팩트 경로 (기본: output.path)")
	runCmd.Flags().StringVar(&runScoreDir, "score-dir", "", "도메인 점수 테이블 저장 디렉토리")
	runCmd.Flags().StringVar(&runMetricsFile, "metrics-file", "", "Prometheus textfile 저장 경로")
	runCmd.Flags().StringVar(&runMissing, "missing", "", "null 점수 처리 (zero, rescale)")
	runCmd.Flags().StringVar(&runDuplicates, "duplicates", "", "중복 디바이스 처리 (last, first, reject)")
	runCmd.Flags().IntVarP(&runWorkers, "workers", "w", 0, "동시에 읽을 입력 파일 수 (1-6)")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if runOutput != "" {
		cfg.Output.Path = runOutput
	}
	if runScoreDir != "" {
		cfg.Output.ScoreDir = runScoreDir
	}
	if runMetricsFile != "" {
		cfg.Output.MetricsFile = runMetricsFile
	}
	if runMissing != "" {
		cfg.Overall.MissingPolicy = runMissing
	}
	if runDuplicates != "" {
		cfg.Duplicates = runDuplicates
	}
	if runWorkers > 0 {
		cfg.Workers = runWorkers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := pipeline.NewService(cfg, log, nil).Run(ctx)
	if err != nil {
		return err
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	printReport(report)
	return nil
}

func printReport(r *pipeline.Report) {
	fmt.Println("📊 Richness 실행 완료")
	fmt.Println()
	fmt.Printf("  Run ID:    %s\n", r.RunID)
	fmt.Printf("  아티팩트:  %s\n", r.Output)
	for _, d := range richness.Domains() {
		if path, ok := r.ScoreTables[d]; ok {
			fmt.Printf("  %-10s %s\n", d+":", path)
		}
	}
	if r.MetricsFile != "" {
		fmt.Printf("  메트릭:    %s\n", r.MetricsFile)
	}
	fmt.Println()

	fmt.Printf("  디바이스:  cafe %d / ping %d / restaurant %d\n",
		r.Populations[richness.DomainCafe], r.Populations[richness.DomainPing], r.Populations[richness.DomainRestaurant])
	fmt.Printf("  유지:      %d (제외 %d)\n", r.Retained, r.Dropped())
	fmt.Printf("  null 점수: cafe %d / ping %d / restaurant %d\n",
		r.NullScores[richness.DomainCafe], r.NullScores[richness.DomainPing], r.NullScores[richness.DomainRestaurant])
	if !math.IsNaN(r.Summary.Mean) {
		fmt.Printf("  평균 점수: %.4f (min %.4f, max %.4f)\n", r.Summary.Mean, r.Summary.Min, r.Summary.Max)
	}
	fmt.Printf("  소요 시간: %.2fs\n", r.DurationSec)

	if len(r.Warnings) > 0 {
		fmt.Println()
		fmt.Printf("⚠️  경고 %d건\n", len(r.Warnings))
		limit := len(r.Warnings)
		if !verbose && limit > 10 {
			limit = 10
		}
		for _, w := range r.Warnings[:limit] {
			fmt.Printf("  - %s\n", w)
		}
		if limit < len(r.Warnings) {
			fmt.Printf("  ... 외 %d건 (-v 로 전체 표시)\n", len(r.Warnings)-limit)
		}
	}
}
