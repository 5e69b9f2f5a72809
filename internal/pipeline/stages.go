package pipeline

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/n0roo/richness-kit/internal/aggregate"
	"github.com/n0roo/richness-kit/internal/config"
	"github.com/n0roo/richness-kit/internal/profile"
	"github.com/n0roo/richness-kit/internal/resolver"
	"github.com/n0roo/richness-kit/internal/richness"
	"github.com/n0roo/richness-kit/internal/scorer"
	"github.com/n0roo/richness-kit/internal/table"
)

// ScoreDomain loads a domain's cluster profiles and scores every cluster.
// Unparseable profile cells are reported as warnings on the result.
func (s *Service) ScoreDomain(d richness.Domain) (*scorer.Result, error) {
	dc := s.cfg.Domains.Get(d)
	log := s.log.With("domain", d)

	src := profileSource(s.cfg, dc)
	log.Debug("loading profiles", "path", src.Path, "layout", src.Layout)

	pt, issues, err := profile.Load(src)
	if err != nil {
		return nil, fmt.Errorf("%s 프로파일 로드 실패: %w", d, err)
	}

	res := scorer.Score(pt, ScorerSpec(d, dc))
	res.Warnings = append(issueWarnings(d, issues), res.Warnings...)

	log.Info("domain scored", "stage", StageScore, "clusters", len(res.Scores), "warnings", len(res.Warnings))
	return res, nil
}

// ResolveDomain loads a domain's device→cluster table
func (s *Service) ResolveDomain(d richness.Domain) (*resolver.Result, error) {
	dc := s.cfg.Domains.Get(d)
	src := resolverSource(s.cfg, d, dc)

	res, err := resolver.Load(src)
	if err != nil {
		return nil, fmt.Errorf("%s 할당 로드 실패: %w", d, err)
	}
	s.log.Info("assignments resolved", "stage", StageResolve, "domain", d, "devices", res.Len())
	return res, nil
}

// WriteScoreTable writes one domain's per-cluster score table
func WriteScoreTable(path string, res *scorer.Result, scoreColumn string) error {
	header, rows := res.Rows(scoreColumn)
	return table.WriteAtomic(path, table.DefaultFormat, header, rows)
}

// ScoreTablePath is <dir>/<domain>_richness_scores.csv
func ScoreTablePath(dir string, d richness.Domain) string {
	return filepath.Join(dir, fmt.Sprintf("%s_richness_scores.csv", d))
}

// ScorerSpec converts a domain configuration into a scoring spec
func ScorerSpec(d richness.Domain, dc *config.DomainConfig) scorer.Spec {
	return scorer.Spec{
		Domain:       d,
		Weights:      dc.Scoring.Weights,
		Transforms:   dc.Scoring.Transforms,
		KeepOriginal: dc.Scoring.KeepOriginal,
		ScoreColumn:  dc.Scoring.ScoreColumn,
	}
}

// OverallWeights converts the configured overall weights
func OverallWeights(cfg *config.Config) aggregate.Weights {
	w := cfg.Overall.Weights
	return aggregate.Weights{Cafe: w.Cafe, Ping: w.Ping, Restaurant: w.Restaurant}
}

func profileSource(cfg *config.Config, dc *config.DomainConfig) profile.Source {
	return profile.Source{
		Path:          cfg.ResolvePath(dc.Profile.Path),
		Format:        format(dc.Profile.Delimiter, dc.Profile.Decimal),
		Layout:        profile.Layout(dc.Profile.Layout),
		ClusterColumn: dc.Profile.ClusterColumn,
	}
}

func resolverSource(cfg *config.Config, d richness.Domain, dc *config.DomainConfig) resolver.Source {
	return resolver.Source{
		Domain:            d,
		Path:              cfg.ResolvePath(dc.Assignments.Path),
		Format:            format(dc.Assignments.Delimiter, "."),
		IDColumn:          dc.Assignments.IDColumn,
		ClusterColumn:     dc.Assignments.ClusterColumn,
		IDFromFirstColumn: dc.Assignments.IDFromFirstColumn,
		Duplicates:        resolver.DuplicatePolicy(cfg.Duplicates),
	}
}

func format(delimiter, decimal string) table.Format {
	f := table.DefaultFormat
	if r := []rune(delimiter); len(r) == 1 {
		f.Delimiter = r[0]
	}
	if r := []rune(decimal); len(r) == 1 {
		f.Decimal = r[0]
	}
	return f
}

// issueWarnings folds profile parse issues into one warning per feature
func issueWarnings(d richness.Domain, issues []profile.Issue) []richness.Warning {
	if len(issues) == 0 {
		return nil
	}

	byFeature := make(map[string][]profile.Issue)
	for _, is := range issues {
		byFeature[is.Feature] = append(byFeature[is.Feature], is)
	}

	features := make([]string, 0, len(byFeature))
	for f := range byFeature {
		features = append(features, f)
	}
	sort.Strings(features)

	warnings := make([]richness.Warning, 0, len(features))
	for _, f := range features {
		var clusters []string
		for _, is := range byFeature[f] {
			clusters = append(clusters, fmt.Sprintf("%d=%q", is.ClusterID, is.Value))
		}
		warnings = append(warnings, richness.Warning{
			Kind:   richness.MalformedRowWarning,
			Domain: d,
			Column: f,
			Count:  len(byFeature[f]),
			Detail: "비어 있거나 숫자가 아닌 프로파일 값을 NaN으로 처리: " + strings.Join(clusters, ", "),
		})
	}
	return warnings
}
