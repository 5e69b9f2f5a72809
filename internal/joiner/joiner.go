// Package joiner intersects the three domains' device assignments and
// attaches each domain's cluster score to the surviving devices.
package joiner

import (
	"fmt"
	"math"
	"sort"

	"github.com/n0roo/richness-kit/internal/richness"
)

// Intersection is the set of devices observed in every domain, in the cafe
// table's order, with each domain's own population for reporting.
type Intersection struct {
	Keys        []richness.Record
	Populations map[richness.Domain]int
}

// Retained returns the number of devices present in all three domains
func (in *Intersection) Retained() int {
	return len(in.Keys)
}

// Intersect inner-joins the three assignment tables on device id. A device
// missing from any one domain is dropped. An empty result is an error.
func Intersect(cafe, ping, restaurant []richness.Assignment) (*Intersection, error) {
	in := &Intersection{
		Populations: map[richness.Domain]int{
			richness.DomainCafe:       len(cafe),
			richness.DomainPing:       len(ping),
			richness.DomainRestaurant: len(restaurant),
		},
	}

	pingIdx := index(ping)
	restIdx := index(restaurant)

	for _, a := range cafe {
		pc, ok := pingIdx[a.DeviceID]
		if !ok {
			continue
		}
		rc, ok := restIdx[a.DeviceID]
		if !ok {
			continue
		}
		in.Keys = append(in.Keys, richness.Record{
			DeviceID:          a.DeviceID,
			CafeCluster:       a.ClusterID,
			PingCluster:       pc,
			RestaurantCluster: rc,
		})
	}

	if len(in.Keys) == 0 {
		return nil, &richness.EmptyIntersectionError{Populations: in.Populations}
	}
	return in, nil
}

// index maps device id to cluster id. Input is already deduplicated by the
// resolver, so a later row only wins if the caller skipped that step.
func index(as []richness.Assignment) map[string]int {
	m := make(map[string]int, len(as))
	for _, a := range as {
		m[a.DeviceID] = a.ClusterID
	}
	return m
}

// AttachScores left-joins each domain's cluster scores onto the keys. An
// unresolved cluster id, or a NaN score, leaves that domain's score nil.
// One warning is returned per affected score column.
func AttachScores(keys []richness.Record, scores map[richness.Domain]map[int]float64) ([]richness.Record, []richness.Warning) {
	out := make([]richness.Record, len(keys))
	nulls := make(map[richness.Domain]int)
	missingClusters := make(map[richness.Domain]map[int]bool)

	for i, k := range keys {
		rec := richness.Record{
			DeviceID:          k.DeviceID,
			CafeCluster:       k.CafeCluster,
			PingCluster:       k.PingCluster,
			RestaurantCluster: k.RestaurantCluster,
		}
		for _, d := range richness.Domains() {
			cluster := rec.Cluster(d)
			v, ok := scores[d][cluster]
			if !ok || math.IsNaN(v) {
				nulls[d]++
				if missingClusters[d] == nil {
					missingClusters[d] = make(map[int]bool)
				}
				missingClusters[d][cluster] = true
				continue
			}
			rec.SetScore(d, richness.Float(v))
		}
		out[i] = rec
	}

	var warnings []richness.Warning
	for _, d := range richness.Domains() {
		if nulls[d] == 0 {
			continue
		}
		warnings = append(warnings, richness.Warning{
			Kind:   richness.UnresolvedClusterWarning,
			Domain: d,
			Column: d.ScoreColumn(),
			Count:  nulls[d],
			Detail: fmt.Sprintf("점수 테이블에 없는 클러스터 %v: 해당 디바이스의 점수는 null", sortedKeys(missingClusters[d])),
		})
	}
	return out, warnings
}

func sortedKeys(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
