package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/n0roo/richness-kit/internal/artifact"
	"github.com/n0roo/richness-kit/internal/config"
	"github.com/n0roo/richness-kit/internal/profile"
	"github.com/n0roo/richness-kit/internal/richness"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "입력 파일과 설정 확인",
	Long:  `설정, 입력 테이블, 출력 위치를 실행 전에 확인합니다.`,
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// CheckResult represents a single check result
type CheckResult struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // ok, warning, error
	Message string `json:"message"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	checks := []CheckResult{{
		Name:    "System",
		Status:  "ok",
		Message: fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}}

	cfg, err := loadConfig()
	if err != nil {
		checks = append(checks, CheckResult{Name: "Config", Status: "error", Message: err.Error()})
		return reportChecks(checks)
	}
	source := cfg.Path()
	if source == "" {
		source = "내장 기본값"
	}
	checks = append(checks, CheckResult{Name: "Config", Status: "ok", Message: source})

	checks = append(checks, inputChecks(cfg)...)
	checks = append(checks, outputCheck(cfg))

	return reportChecks(checks)
}

// inputChecks verifies every profile and assignment table exists
func inputChecks(cfg *config.Config) []CheckResult {
	var checks []CheckResult
	for _, d := range richness.Domains() {
		dc := cfg.Domains.Get(d)
		for _, in := range []struct{ kind, path string }{
			{"profile", dc.Profile.Path},
			{"assignments", dc.Assignments.Path},
		} {
			path := cfg.ResolvePath(in.path)
			name := fmt.Sprintf("%s %s", d, in.kind)
			if profile.HasBuiltin(path) {
				checks = append(checks, CheckResult{Name: name, Status: "ok", Message: "내장 테이블 " + path})
				continue
			}
			if _, err := os.Stat(path); err != nil {
				checks = append(checks, CheckResult{Name: name, Status: "error", Message: fmt.Sprintf("파일 없음: %s", path)})
				continue
			}
			checks = append(checks, CheckResult{Name: name, Status: "ok", Message: path})
		}
	}
	return checks
}

// outputCheck reports the output directory and any previous artifact
func outputCheck(cfg *config.Config) CheckResult {
	path := cfg.ResolvePath(cfg.Output.Path)
	if _, err := os.Stat(path); err == nil {
		recs, err := artifact.Read(path)
		if err != nil {
			return CheckResult{Name: "Artifact", Status: "warning", Message: fmt.Sprintf("읽기 실패: %v", err)}
		}
		return CheckResult{Name: "Artifact", Status: "ok", Message: fmt.Sprintf("%s (%d rows)", path, len(recs))}
	}

	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		return CheckResult{Name: "Artifact", Status: "warning", Message: fmt.Sprintf("출력 디렉토리가 생성됩니다: %s", filepath.Dir(path))}
	}
	return CheckResult{Name: "Artifact", Status: "warning", Message: fmt.Sprintf("아직 생성되지 않음: %s", path)}
}

func reportChecks(checks []CheckResult) error {
	hasError := false
	for _, c := range checks {
		if c.Status == "error" {
			hasError = true
		}
	}

	if jsonOut {
		if err := json.NewEncoder(os.Stdout).Encode(checks); err != nil {
			return err
		}
	} else {
		fmt.Println("🩺 Richness Doctor")
		fmt.Println()

		for _, c := range checks {
			var icon string
			switch c.Status {
			case "ok":
				icon = "✅"
			case "warning":
				icon = "⚠️"
			case "error":
				icon = "❌"
			}
			fmt.Printf("%s %s: %s\n", icon, c.Name, c.Message)
		}

		fmt.Println()
		if !hasError {
			fmt.Println("✨ 모든 검사를 통과했습니다.")
		} else {
			fmt.Println("❌ 문제가 발견되었습니다. 위 메시지를 확인하세요.")
		}
	}

	if hasError {
		return fmt.Errorf("check failed")
	}
	return nil
}
