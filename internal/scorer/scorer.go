// Package scorer turns a domain's cluster profiles into one richness score
// per cluster: an optional log1p transform on skewed features followed by a
// signed weighted sum.
package scorer

import (
	"fmt"
	"math"

	"github.com/n0roo/richness-kit/internal/richness"
	"github.com/n0roo/richness-kit/internal/table"
)

// OriginalSuffix marks retained pre-transform columns
const OriginalSuffix = "_original"

// Spec is one domain's scoring configuration
type Spec struct {
	Domain       richness.Domain
	Weights      []richness.FeatureWeight
	Transforms   []string
	KeepOriginal bool
	// ScoreColumn names the score column in the written score table
	ScoreColumn string
}

// Result holds the per-cluster scores and the transformed profile table
type Result struct {
	Domain   richness.Domain
	Scores   map[int]float64
	Table    *richness.ProfileTable
	Warnings []richness.Warning
}

// Score applies the transforms then the weighted sum. The input table is
// not modified.
func Score(pt *richness.ProfileTable, spec Spec) *Result {
	transformed, warnings := Transform(pt, spec.Domain, spec.Transforms, spec.KeepOriginal)

	weights := make([]richness.FeatureWeight, 0, len(spec.Weights))
	for _, fw := range spec.Weights {
		if !transformed.HasColumn(fw.Feature) {
			warnings = append(warnings, richness.Warning{
				Kind:   richness.SchemaWarning,
				Domain: spec.Domain,
				Column: fw.Feature,
				Detail: "가중치 피처가 프로파일에 없어 건너뜀",
			})
			continue
		}
		weights = append(weights, fw)
	}

	scores := make(map[int]float64, len(transformed.Clusters))
	for _, c := range transformed.Clusters {
		scores[c.ClusterID] = WeightedSum(c.Features, weights)
	}

	return &Result{
		Domain:   spec.Domain,
		Scores:   scores,
		Table:    transformed,
		Warnings: warnings,
	}
}

// WeightedSum folds weight*value over the weights in order. Features absent
// from the map contribute 0.
func WeightedSum(features map[string]float64, weights []richness.FeatureWeight) float64 {
	sum := 0.0
	for _, fw := range weights {
		v, ok := features[fw.Feature]
		if !ok {
			continue
		}
		sum += fw.Weight * v
	}
	return sum
}

// Transform returns a copy of pt with ln(1+x) applied to each listed
// feature. Listed features missing from the table are reported and skipped.
func Transform(pt *richness.ProfileTable, domain richness.Domain, features []string, keepOriginal bool) (*richness.ProfileTable, []richness.Warning) {
	var warnings []richness.Warning
	apply := make(map[string]bool, len(features))
	var kept []string
	for _, f := range features {
		if apply[f] {
			continue
		}
		if !pt.HasColumn(f) {
			warnings = append(warnings, richness.Warning{
				Kind:   richness.SchemaWarning,
				Domain: domain,
				Column: f,
				Detail: "log1p 변환 대상 컬럼이 없음",
			})
			continue
		}
		apply[f] = true
		if keepOriginal {
			kept = append(kept, f)
		}
	}

	out := &richness.ProfileTable{
		Columns:  append([]string(nil), pt.Columns...),
		Clusters: make([]richness.ClusterProfile, 0, len(pt.Clusters)),
	}
	for _, f := range kept {
		out.Columns = append(out.Columns, f+OriginalSuffix)
	}

	for _, c := range pt.Clusters {
		feats := make(map[string]float64, len(c.Features)+len(kept))
		for k, v := range c.Features {
			if apply[k] {
				feats[k] = math.Log1p(v)
				continue
			}
			feats[k] = v
		}
		for _, f := range kept {
			feats[f+OriginalSuffix] = c.Features[f]
		}
		out.Clusters = append(out.Clusters, richness.ClusterProfile{ClusterID: c.ClusterID, Features: feats})
	}
	return out, warnings
}

// Rows renders the score table the way the per-domain score files are laid
// out: cluster id, every profile column, then the score column.
func (r *Result) Rows(scoreColumn string) ([]string, [][]string) {
	if scoreColumn == "" {
		scoreColumn = fmt.Sprintf("%sRichnessScore", r.Domain)
	}
	header := append([]string{"cluster"}, r.Table.Columns...)
	header = append(header, scoreColumn)

	rows := make([][]string, 0, len(r.Table.Clusters))
	for _, c := range r.Table.Clusters {
		row := make([]string, 0, len(header))
		row = append(row, fmt.Sprintf("%d", c.ClusterID))
		for _, col := range r.Table.Columns {
			row = append(row, formatCell(c.Features[col]))
		}
		row = append(row, formatCell(r.Scores[c.ClusterID]))
		rows = append(rows, row)
	}
	return header, rows
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return table.FormatFloat(v)
}
