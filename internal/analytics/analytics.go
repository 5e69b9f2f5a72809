// Package analytics computes the viewer's descriptive statistics over
// artifact records.
package analytics

import (
	"math"
	"sort"

	"github.com/n0roo/richness-kit/internal/richness"
)

// Summary mirrors a describe() of OverallRichnessScore
type Summary struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	P25   float64 `json:"p25"`
	P50   float64 `json:"p50"`
	P75   float64 `json:"p75"`
	Max   float64 `json:"max"`

	// 도메인별 null 점수 개수
	NullScores map[richness.Domain]int `json:"null_scores,omitempty"`
}

// Map returns the statistics keyed by name
func (s Summary) Map() map[string]float64 {
	return map[string]float64{
		"count": float64(s.Count),
		"mean":  s.Mean,
		"std":   s.Std,
		"min":   s.Min,
		"p25":   s.P25,
		"p50":   s.P50,
		"p75":   s.P75,
		"max":   s.Max,
	}
}

// Bin is one histogram bucket covering [Lower, Upper)
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Overall returns the finite overall scores of recs
func Overall(recs []richness.Record) []float64 {
	out := make([]float64, 0, len(recs))
	for _, r := range recs {
		if math.IsNaN(r.Overall) || math.IsInf(r.Overall, 0) {
			continue
		}
		out = append(out, r.Overall)
	}
	return out
}

// Describe computes count, mean, sample std and linear-interpolated
// quartiles. Std is NaN below two values; everything is NaN for none.
func Describe(values []float64) Summary {
	s := Summary{Count: len(values)}
	if len(values) == 0 {
		nan := math.NaN()
		s.Mean, s.Std, s.Min, s.P25, s.P50, s.P75, s.Max = nan, nan, nan, nan, nan, nan, nan
		return s
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	s.Mean = sum / float64(len(sorted))

	if len(sorted) > 1 {
		ss := 0.0
		for _, v := range sorted {
			d := v - s.Mean
			ss += d * d
		}
		s.Std = math.Sqrt(ss / float64(len(sorted)-1))
	} else {
		s.Std = math.NaN()
	}

	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.P25 = Quantile(sorted, 0.25)
	s.P50 = Quantile(sorted, 0.5)
	s.P75 = Quantile(sorted, 0.75)
	return s
}

// DescribeRecords summarizes the overall score and counts null domain scores
func DescribeRecords(recs []richness.Record) Summary {
	s := Describe(Overall(recs))
	s.NullScores = NullScores(recs)
	return s
}

// Quantile interpolates linearly between the closest ranks of an ascending
// slice.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Histogram splits [min, max] into n equal-width bins. The last bin is
// closed on the right.
func Histogram(values []float64, n int) []Bin {
	if len(values) == 0 || n <= 0 {
		return nil
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	if lo == hi {
		return []Bin{{Lower: lo, Upper: hi, Count: len(values)}}
	}

	width := (hi - lo) / float64(n)
	bins := make([]Bin, n)
	for i := range bins {
		bins[i].Lower = lo + float64(i)*width
		bins[i].Upper = lo + float64(i+1)*width
	}
	bins[n-1].Upper = hi

	for _, v := range values {
		i := int((v - lo) / width)
		if i >= n {
			i = n - 1
		}
		bins[i].Count++
	}
	return bins
}

// Range returns the min and max overall score, or zeros when empty
func Range(recs []richness.Record) (float64, float64) {
	values := Overall(recs)
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// Filter keeps records whose overall score lies in [lo, hi], preserving
// order.
func Filter(recs []richness.Record, lo, hi float64) []richness.Record {
	out := make([]richness.Record, 0, len(recs))
	for _, r := range recs {
		if r.Overall >= lo && r.Overall <= hi {
			out = append(out, r)
		}
	}
	return out
}

// NullScores counts null domain scores per domain
func NullScores(recs []richness.Record) map[richness.Domain]int {
	out := make(map[richness.Domain]int, 3)
	for _, d := range richness.Domains() {
		out[d] = 0
	}
	for i := range recs {
		for _, d := range richness.Domains() {
			if recs[i].Score(d) == nil {
				out[d]++
			}
		}
	}
	return out
}

// Find returns the record for a device id
func Find(recs []richness.Record, deviceID string) (richness.Record, bool) {
	for _, r := range recs {
		if r.DeviceID == deviceID {
			return r, true
		}
	}
	return richness.Record{}, false
}
