// Package artifact persists and reloads the pipeline's terminal output: one
// row per device with three cluster ids, three nullable domain scores and
// the overall score.
package artifact

import (
	"fmt"
	"strconv"

	"github.com/n0roo/richness-kit/internal/richness"
	"github.com/n0roo/richness-kit/internal/table"
)

// Write stores records at path. The file is replaced atomically.
func Write(path string, recs []richness.Record) error {
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []string{
			r.DeviceID,
			strconv.Itoa(r.CafeCluster),
			strconv.Itoa(r.PingCluster),
			strconv.Itoa(r.RestaurantCluster),
			nullable(r.CafeScore),
			nullable(r.PingScore),
			nullable(r.RestaurantScore),
			table.FormatFloat(r.Overall),
		})
	}
	return table.WriteAtomic(path, table.DefaultFormat, richness.ArtifactColumns(), rows)
}

// Read loads an artifact. Columns are located by name; all of them must be
// present.
func Read(path string) ([]richness.Record, error) {
	t, err := table.Read(path, table.DefaultFormat)
	if err != nil {
		return nil, err
	}

	cols := richness.ArtifactColumns()
	idx := make(map[string]int, len(cols))
	for _, c := range cols {
		i := t.Index(c)
		if i < 0 {
			return nil, fmt.Errorf("%s: 필수 컬럼 %q 없음", path, c)
		}
		idx[c] = i
	}

	recs := make([]richness.Record, 0, len(t.Rows))
	for n, row := range t.Rows {
		line := n + 2
		rec := richness.Record{DeviceID: table.Cell(row, idx[richness.DeviceColumn])}

		for _, d := range richness.Domains() {
			cluster, err := table.ParseInt(table.Cell(row, idx[d.ClusterColumn()]))
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %s: %w", path, line, d.ClusterColumn(), err)
			}
			switch d {
			case richness.DomainCafe:
				rec.CafeCluster = cluster
			case richness.DomainPing:
				rec.PingCluster = cluster
			default:
				rec.RestaurantCluster = cluster
			}

			raw := table.Cell(row, idx[d.ScoreColumn()])
			if raw == "" {
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %s: %w", path, line, d.ScoreColumn(), err)
			}
			rec.SetScore(d, richness.Float(v))
		}

		overall, err := strconv.ParseFloat(table.Cell(row, idx[richness.OverallColumn]), 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %s: %w", path, line, richness.OverallColumn, err)
		}
		rec.Overall = overall
		recs = append(recs, rec)
	}
	return recs, nil
}

func nullable(v *float64) string {
	if v == nil {
		return ""
	}
	return table.FormatFloat(*v)
}
