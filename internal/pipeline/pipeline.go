// Package pipeline runs the batch: score each domain's clusters, resolve
// device assignments, intersect the domains, attach scores, aggregate and
// write the artifact.
package pipeline

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/n0roo/richness-kit/internal/aggregate"
	"github.com/n0roo/richness-kit/internal/analytics"
	"github.com/n0roo/richness-kit/internal/artifact"
	"github.com/n0roo/richness-kit/internal/config"
	"github.com/n0roo/richness-kit/internal/joiner"
	"github.com/n0roo/richness-kit/internal/logger"
	"github.com/n0roo/richness-kit/internal/metrics"
	"github.com/n0roo/richness-kit/internal/resolver"
	"github.com/n0roo/richness-kit/internal/richness"
	"github.com/n0roo/richness-kit/internal/scorer"
	"golang.org/x/sync/errgroup"
)

// Stage names used in logs
const (
	StageScore     = "score"
	StageResolve   = "resolve"
	StageIntersect = "intersect"
	StageAttach    = "attach"
	StageAggregate = "aggregate"
	StageWrite     = "write"
)

// Report summarizes one run
type Report struct {
	RunID       string                     `json:"run_id"`
	StartedAt   time.Time                  `json:"started_at"`
	DurationSec float64                    `json:"duration_sec"`
	Output      string                     `json:"output"`
	ScoreTables map[richness.Domain]string `json:"score_tables,omitempty"`
	MetricsFile string                     `json:"metrics_file,omitempty"`

	Populations map[richness.Domain]int `json:"populations"`
	Retained    int                     `json:"retained"`
	NullScores  map[richness.Domain]int `json:"null_scores"`
	Warnings    []richness.Warning      `json:"warnings"`

	// 결과 레코드와 통계 (JSON 출력 제외)
	Records []richness.Record `json:"-"`
	Summary analytics.Summary `json:"-"`
}

// Dropped returns the number of cafe devices missing from another domain
func (r *Report) Dropped() int {
	return r.Populations[richness.DomainCafe] - r.Retained
}

// Service runs the pipeline for one configuration
type Service struct {
	cfg     *config.Config
	log     *logger.Logger
	metrics *metrics.Recorder
}

// NewService creates a pipeline service. A nil logger discards output and a
// nil recorder gets a private registry.
func NewService(cfg *config.Config, log *logger.Logger, rec *metrics.Recorder) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if rec == nil {
		rec = metrics.New()
	}
	return &Service{cfg: cfg, log: log, metrics: rec}
}

// Metrics returns the recorder the service reports to
func (s *Service) Metrics() *metrics.Recorder {
	return s.metrics
}

// Run executes every stage. Any fatal error aborts before the artifact is
// written; a previous artifact at the output path is left untouched.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:       uuid.New().String(),
		StartedAt:   time.Now(),
		Output:      s.cfg.ResolvePath(s.cfg.Output.Path),
		Populations: make(map[richness.Domain]int, 3),
	}
	log := s.log.With("run_id", report.RunID)
	s = &Service{cfg: s.cfg, log: log, metrics: s.metrics}
	log.Info("run started", "output", report.Output)

	results, assignments, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range richness.Domains() {
		res := assignments[d]
		report.Populations[d] = res.Len()
		report.Warnings = append(report.Warnings, res.Warnings...)
		s.metrics.ObserveDomain(d, res.Len())
	}

	for _, res := range results {
		report.Warnings = append(report.Warnings, res.Warnings...)
	}

	in, err := joiner.Intersect(
		assignments[richness.DomainCafe].Assignments,
		assignments[richness.DomainPing].Assignments,
		assignments[richness.DomainRestaurant].Assignments,
	)
	if err != nil {
		log.Error("intersection failed", "stage", StageIntersect, "error", err)
		return nil, err
	}
	report.Retained = in.Retained()
	s.metrics.ObserveIntersection(report.Retained)
	log.Info("domains intersected", "stage", StageIntersect, "retained", report.Retained, "dropped", report.Dropped())

	scores := make(map[richness.Domain]map[int]float64, 3)
	for d, res := range results {
		scores[d] = res.Scores
	}
	recs, warnings := joiner.AttachScores(in.Keys, scores)
	report.Warnings = append(report.Warnings, warnings...)
	log.Debug("scores attached", "stage", StageAttach, "unresolved", len(warnings))

	w := OverallWeights(s.cfg)
	if err := w.Validate(); err != nil {
		return nil, err
	}
	policy := aggregate.MissingPolicy(s.cfg.Overall.MissingPolicy)
	recs = aggregate.Apply(recs, w, policy)
	log.Debug("overall computed", "stage", StageAggregate, "policy", policy)

	report.Records = recs
	report.Summary = analytics.DescribeRecords(recs)
	report.NullScores = report.Summary.NullScores

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	richness.SortWarnings(report.Warnings)
	for _, wn := range report.Warnings {
		log.Warn(wn.Detail, "kind", wn.Kind, "domain", wn.Domain, "column", wn.Column, "count", wn.Count)
	}

	if dir := s.cfg.Output.ScoreDir; dir != "" {
		report.ScoreTables = make(map[richness.Domain]string, 3)
		for _, d := range richness.Domains() {
			path := ScoreTablePath(s.cfg.ResolvePath(dir), d)
			if err := WriteScoreTable(path, results[d], s.cfg.Domains.Get(d).Scoring.ScoreColumn); err != nil {
				return nil, fmt.Errorf("%s 점수 테이블 저장 실패: %w", d, err)
			}
			report.ScoreTables[d] = path
		}
	}

	if err := artifact.Write(report.Output, recs); err != nil {
		return nil, fmt.Errorf("결과 저장 실패: %w", err)
	}
	log.Info("artifact written", "stage", StageWrite, "path", report.Output, "rows", len(recs))

	report.DurationSec = time.Since(report.StartedAt).Seconds()
	s.observe(report)

	if path := s.cfg.Output.MetricsFile; path != "" {
		report.MetricsFile = s.cfg.ResolvePath(path)
		if err := s.metrics.WriteTextfile(report.MetricsFile); err != nil {
			return nil, err
		}
	}

	log.Info("run completed", "retained", report.Retained, "warnings", len(report.Warnings), "duration_sec", report.DurationSec)
	return report, nil
}

// loadAll scores every domain's profiles and resolves its assignments,
// reading up to cfg.Workers inputs at once. The first failure cancels the rest.
func (s *Service) loadAll(ctx context.Context) (map[richness.Domain]*scorer.Result, map[richness.Domain]*resolver.Result, error) {
	var mu sync.Mutex
	results := make(map[richness.Domain]*scorer.Result, 3)
	assignments := make(map[richness.Domain]*resolver.Result, 3)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.cfg.Workers, 1))

	for _, d := range richness.Domains() {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.ScoreDomain(d)
			if err != nil {
				s.log.Error("scoring failed", "stage", StageScore, "domain", d, "error", err)
				return err
			}
			mu.Lock()
			results[d] = res
			mu.Unlock()
			return nil
		})
	}
	for _, d := range richness.Domains() {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.ResolveDomain(d)
			if err != nil {
				s.log.Error("resolution failed", "stage", StageResolve, "domain", d, "error", err)
				return err
			}
			mu.Lock()
			assignments[d] = res
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return results, assignments, nil
}

func (s *Service) observe(r *Report) {
	s.metrics.ObserveNullScores(r.NullScores)
	s.metrics.ObserveWarnings(r.Warnings)
	s.metrics.ObserveRun(time.Duration(r.DurationSec * float64(time.Second)))

	stats := r.Summary.Map()
	for k, v := range stats {
		if math.IsNaN(v) {
			delete(stats, k)
		}
	}
	s.metrics.ObserveOverall(stats)
}
