package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/n0roo/richness-kit/internal/pipeline"
	"github.com/n0roo/richness-kit/internal/richness"
	"github.com/spf13/cobra"
)

var scoreOut string

var scoreCmd = &cobra.Command{
	Use:       "score <cafe|ping|restaurant>",
	Short:     "단일 도메인 클러스터 점수 계산",
	Long:      `한 도메인의 클러스터 프로파일을 점수화해 출력하거나 점수 테이블로 저장합니다.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"cafe", "ping", "restaurant"},
	RunE:      runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.Flags().StringVarP(&scoreOut, "out", "o", "", "점수 테이블 저장 경로 (기본: stdout)")
}

func runScore(cmd *cobra.Command, args []string) error {
	d, err := richness.ParseDomain(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	res, err := pipeline.NewService(cfg, log, nil).ScoreDomain(d)
	if err != nil {
		return err
	}
	scoreColumn := cfg.Domains.Get(d).Scoring.ScoreColumn

	for _, w := range res.Warnings {
		log.Warn(w.Detail, "kind", w.Kind, "domain", w.Domain, "column", w.Column)
	}

	if scoreOut != "" {
		if err := pipeline.WriteScoreTable(scoreOut, res, scoreColumn); err != nil {
			return err
		}
		fmt.Printf("✅ %s 점수 테이블 저장: %s (%d clusters)\n", d, scoreOut, len(res.Scores))
		return nil
	}

	if jsonOut {
		ids := make([]int, 0, len(res.Scores))
		for id := range res.Scores {
			ids = append(ids, id)
		}
		sort.Ints(ids)

		type clusterScore struct {
			Cluster int      `json:"cluster"`
			Score   *float64 `json:"score"`
		}
		out := make([]clusterScore, 0, len(ids))
		for _, id := range ids {
			cs := clusterScore{Cluster: id}
			// NaN 점수는 null
			if v := res.Scores[id]; !math.IsNaN(v) {
				cs.Score = richness.Float(v)
			}
			out = append(out, cs)
		}
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"domain":   d,
			"scores":   out,
			"warnings": res.Warnings,
		})
	}

	header, rows := res.Rows(scoreColumn)
	w := csv.NewWriter(os.Stdout)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return nil
}
