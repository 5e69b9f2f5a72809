package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/n0roo/richness-kit/internal/config"
	"github.com/n0roo/richness-kit/internal/richness"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "설정 관리",
	Long: `richness 설정을 관리합니다.

설정 파일: ./richness.yaml (--config 또는 RICHNESS_CONFIG 로 변경)
설정 파일이 없으면 내장 기본값을 사용합니다.

예시:
  richness config init         # 기본 설정 파일 생성
  richness config show         # 현재 적용된 설정 표시
  richness config validate     # 설정 검증`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "현재 설정 표시",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "설정 초기화",
	Long: `기본 가중치와 입력 경로로 richness.yaml 을 생성합니다.
필요한 값을 수정한 뒤 'richness run' 을 실행하세요.`,
	RunE: runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "설정 검증",
	RunE:  runConfigValidate,
}

var (
	configForce bool
)

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "기존 설정 덮어쓰기")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(cfg)
	}

	if cfg.Path() != "" {
		fmt.Printf("# %s\n", cfg.Path())
	} else {
		fmt.Println("# 내장 기본값 (설정 파일 없음)")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("설정 직렬화 실패: %w", err)
	}
	fmt.Print(string(data))
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}

	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("설정 파일이 이미 존재합니다: %s\n--force 옵션으로 덮어쓰기 가능", path)
	}

	cfg := config.Default()
	if err := config.Save(path, cfg); err != nil {
		return err
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"status": "created",
			"path":   path,
		})
	}

	fmt.Println("✅ 설정 파일 생성 완료!")
	fmt.Printf("   파일: %s\n", path)
	fmt.Println()
	fmt.Println("기본 설정:")
	w := cfg.Overall.Weights
	fmt.Printf("  종합 가중치: cafe %g / ping %g / restaurant %g\n", w.Cafe, w.Ping, w.Restaurant)
	fmt.Printf("  null 점수:   %s\n", cfg.Overall.MissingPolicy)
	fmt.Printf("  중복 처리:   %s\n", cfg.Duplicates)
	fmt.Printf("  출력:        %s\n", cfg.Output.Path)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"valid": true,
			"path":  cfg.Path(),
		})
	}

	fmt.Println("✅ 설정이 유효합니다.")
	for _, d := range richness.Domains() {
		dc := cfg.Domains.Get(d)
		fmt.Printf("  %-10s 피처 %d개, 변환 %d개\n", d, len(dc.Scoring.Weights), len(dc.Scoring.Transforms))
	}
	return nil
}
