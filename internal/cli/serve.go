package cli

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/n0roo/richness-kit/internal/persona"
	"github.com/n0roo/richness-kit/internal/server"
	"github.com/spf13/cobra"
)

var (
	serveAddr     string
	serveSource   string
	servePersonas string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "HTTP 뷰어 실행",
	Long: `아티팩트를 읽기 전용 HTTP API로 제공합니다.

엔드포인트:
  GET /api/devices?min=&max=&limit=   점수 범위 필터
  GET /api/devices/{id}               디바이스 + 페르소나
  GET /api/summary                    통계 요약
  GET /metrics                        Prometheus 메트릭
  GET /healthz`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "리슨 주소 (기본: viewer.addr)")
	serveCmd.Flags().StringVarP(&serveSource, "source", "s", "", "아티팩트 CSV 또는 DB 경로 (기본: output.path)")
	serveCmd.Flags().StringVar(&servePersonas, "personas", "", "페르소나 YAML 경로 (기본: 내장)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	personas, err := persona.Load(cfg.ResolvePath(firstNonEmpty(servePersonas, cfg.Viewer.Personas)))
	if err != nil {
		return err
	}

	source := viewerSource(cfg, serveSource)
	srv := server.NewServer(server.Config{
		Addr:    firstNonEmpty(serveAddr, cfg.Viewer.Addr),
		Source:  source,
		MaxRows: cfg.Viewer.MaxRows,
	}, recordLoader(source), personas, nil, log)

	// 시작 전에 한 번 로드해 잘못된 소스를 바로 알림
	if _, err := srv.Records(); err != nil {
		return err
	}

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		fmt.Println("\nShutting down...")
		if err := srv.Stop(); err != nil {
			log.Error("서버 종료 실패", "error", err)
		}
	}()

	fmt.Printf("🚀 Richness viewer running at http://localhost%s\n", firstNonEmpty(serveAddr, cfg.Viewer.Addr, ":8080"))
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
