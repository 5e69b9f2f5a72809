// Package profile loads cluster-level feature profiles produced by the
// upstream clustering step.
package profile

import (
	"fmt"
	"math"

	"github.com/n0roo/richness-kit/internal/richness"
	"github.com/n0roo/richness-kit/internal/table"
)

// Layout is the orientation of a profile file
type Layout string

const (
	// LayoutRows has one row per cluster and one column per feature
	LayoutRows Layout = "rows"
	// LayoutColumns is transposed: one row per feature, one column per cluster
	LayoutColumns Layout = "columns"
)

// Source describes where a domain's profile table lives
type Source struct {
	Path          string
	Format        table.Format
	Layout        Layout
	ClusterColumn string
}

// Issue is a cell that is empty, missing or not a number. The cell loads as NaN.
type Issue struct {
	ClusterID int
	Feature   string
	Value     string
}

// Load reads a profile table from disk, or from the shipped tables when the
// path carries BuiltinPrefix
func Load(src Source) (*richness.ProfileTable, []Issue, error) {
	var (
		t   *table.Table
		err error
	)
	if IsBuiltin(src.Path) {
		t, err = readBuiltin(src.Path, src.Format)
	} else {
		t, err = table.Read(src.Path, src.Format)
	}
	if err != nil {
		return nil, nil, err
	}
	return FromTable(t, src)
}

// FromTable converts raw rows into a profile table
func FromTable(t *table.Table, src Source) (*richness.ProfileTable, []Issue, error) {
	if src.Layout == LayoutColumns {
		return fromColumns(t, src.Format.Decimal)
	}
	clusterCol := src.ClusterColumn
	if clusterCol == "" {
		clusterCol = "cluster"
	}
	return fromRows(t, clusterCol, src.Format.Decimal)
}

func fromRows(t *table.Table, clusterCol string, decimal rune) (*richness.ProfileTable, []Issue, error) {
	idIdx := t.Index(clusterCol)
	if idIdx < 0 {
		return nil, nil, fmt.Errorf("클러스터 컬럼 %q 없음 (헤더: %v)", clusterCol, t.Header)
	}

	pt := &richness.ProfileTable{}
	for i, h := range t.Header {
		if i != idIdx {
			pt.Columns = append(pt.Columns, h)
		}
	}

	var issues []Issue
	seen := make(map[int]bool)
	for line, row := range t.Rows {
		id, err := table.ParseInt(table.Cell(row, idIdx))
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: 클러스터 ID: %w", line+2, err)
		}
		if seen[id] {
			return nil, nil, fmt.Errorf("line %d: 중복 클러스터 ID %d", line+2, id)
		}
		seen[id] = true

		cp := richness.ClusterProfile{ClusterID: id, Features: make(map[string]float64, len(pt.Columns))}
		for i, h := range t.Header {
			if i == idIdx {
				continue
			}
			raw := table.Cell(row, i)
			v, err := table.ParseFloat(raw, decimal)
			if err != nil || raw == "" {
				issues = append(issues, Issue{ClusterID: id, Feature: h, Value: raw})
				v = math.NaN()
			}
			cp.Features[h] = v
		}
		pt.Clusters = append(pt.Clusters, cp)
	}
	return pt, issues, nil
}

// fromColumns handles summaries written with features down the first column
// and one column per cluster id.
func fromColumns(t *table.Table, decimal rune) (*richness.ProfileTable, []Issue, error) {
	if len(t.Header) < 2 {
		return nil, nil, fmt.Errorf("전치 프로파일에 클러스터 컬럼이 없습니다 (헤더: %v)", t.Header)
	}

	pt := &richness.ProfileTable{}
	for i, h := range t.Header[1:] {
		id, err := table.ParseInt(h)
		if err != nil {
			return nil, nil, fmt.Errorf("컬럼 %d: 클러스터 ID: %w", i+2, err)
		}
		pt.Clusters = append(pt.Clusters, richness.ClusterProfile{ClusterID: id, Features: make(map[string]float64)})
	}

	var issues []Issue
	for _, row := range t.Rows {
		feature := table.Cell(row, 0)
		if feature == "" {
			continue
		}
		pt.Columns = append(pt.Columns, feature)
		for ci := range pt.Clusters {
			raw := table.Cell(row, ci+1)
			v, err := table.ParseFloat(raw, decimal)
			if err != nil || raw == "" {
				issues = append(issues, Issue{ClusterID: pt.Clusters[ci].ClusterID, Feature: feature, Value: raw})
				v = math.NaN()
			}
			pt.Clusters[ci].Features[feature] = v
		}
	}
	return pt, issues, nil
}
