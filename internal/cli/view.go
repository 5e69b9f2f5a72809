package cli

import (
	"github.com/n0roo/richness-kit/internal/persona"
	"github.com/n0roo/richness-kit/internal/tui"
	"github.com/spf13/cobra"
)

var (
	viewSource   string
	viewPersonas string
	viewRows     int
)

var viewCmd = &cobra.Command{
	Use:     "view",
	Aliases: []string{"tui"},
	Short:   "터미널 뷰어 실행",
	Long: `아티팩트(또는 내보낸 DB)를 터미널 뷰어로 탐색합니다.

키:
  1-3 / tab     탭 전환 (Data, Stats, Persona)
  [ ]           최소 점수 조정
  { }           최대 점수 조정
  c             필터 초기화
  enter         선택한 디바이스의 페르소나 보기
  q             종료`,
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)

	viewCmd.Flags().StringVarP(&viewSource, "source", "s", "", "아티팩트 CSV 또는 DB 경로 (기본: output.path)")
	viewCmd.Flags().StringVar(&viewPersonas, "personas", "", "페르소나 YAML 경로 (기본: 내장)")
	viewCmd.Flags().IntVar(&viewRows, "rows", 0, "표시할 최대 행 수 (기본: viewer.max_rows)")
}

func runView(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	personas, err := persona.Load(cfg.ResolvePath(firstNonEmpty(viewPersonas, cfg.Viewer.Personas)))
	if err != nil {
		return err
	}

	rows := cfg.Viewer.MaxRows
	if viewRows > 0 {
		rows = viewRows
	}

	source := viewerSource(cfg, viewSource)
	return tui.Run(source, recordLoader(source), personas, rows)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
