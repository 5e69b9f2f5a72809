package scorer

import (
	"math"
	"testing"

	"github.com/n0roo/richness-kit/internal/richness"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restaurantProfiles() *richness.ProfileTable {
	return &richness.ProfileTable{
		Columns: []string{"avg_SatisHacmi", "avg_PopulationInverseScore", "total_visits"},
		Clusters: []richness.ClusterProfile{
			{ClusterID: 0, Features: map[string]float64{"avg_SatisHacmi": 0.917531, "avg_PopulationInverseScore": 2.212629, "total_visits": 3.592412}},
			{ClusterID: 5, Features: map[string]float64{"avg_SatisHacmi": 0.750049, "avg_PopulationInverseScore": 2.688764, "total_visits": 152.231707}},
		},
	}
}

func restaurantSpec() Spec {
	return Spec{
		Domain: richness.DomainRestaurant,
		Weights: []richness.FeatureWeight{
			{Feature: "avg_SatisHacmi", Weight: 4},
			{Feature: "avg_PopulationInverseScore", Weight: -3},
			{Feature: "total_visits", Weight: 3},
		},
		Transforms:   []string{"total_visits"},
		KeepOriginal: true,
	}
}

func TestScore_WeightedLog1p(t *testing.T) {
	res := Score(restaurantProfiles(), restaurantSpec())
	require.Empty(t, res.Warnings)

	want := 0.917531*4 + 2.212629*-3 + math.Log1p(3.592412)*3
	assert.InDelta(t, want, res.Scores[0], 1e-12)

	want5 := 0.750049*4 + 2.688764*-3 + math.Log1p(152.231707)*3
	assert.InDelta(t, want5, res.Scores[5], 1e-12)
}

func TestScore_NegativeWeightLowersScore(t *testing.T) {
	pt := &richness.ProfileTable{
		Columns: []string{"avg_PopulationInverseScore"},
		Clusters: []richness.ClusterProfile{
			{ClusterID: 0, Features: map[string]float64{"avg_PopulationInverseScore": 1}},
			{ClusterID: 1, Features: map[string]float64{"avg_PopulationInverseScore": 2}},
		},
	}
	res := Score(pt, Spec{Weights: []richness.FeatureWeight{{Feature: "avg_PopulationInverseScore", Weight: -3}}})
	assert.Equal(t, -3.0, res.Scores[0])
	assert.Equal(t, -6.0, res.Scores[1])
	assert.Less(t, res.Scores[1], res.Scores[0])
}

func TestScore_MissingWeightFeatureWarns(t *testing.T) {
	spec := restaurantSpec()
	spec.Weights = append(spec.Weights, richness.FeatureWeight{Feature: "avg_QualityScore", Weight: 4})

	res := Score(restaurantProfiles(), spec)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, richness.SchemaWarning, res.Warnings[0].Kind)
	assert.Equal(t, "avg_QualityScore", res.Warnings[0].Column)

	// 누락 피처는 0 기여
	base := Score(restaurantProfiles(), restaurantSpec())
	assert.Equal(t, base.Scores, res.Scores)
}

func TestScore_Deterministic(t *testing.T) {
	a := Score(restaurantProfiles(), restaurantSpec())
	b := Score(restaurantProfiles(), restaurantSpec())
	for id, v := range a.Scores {
		assert.Equal(t, math.Float64bits(v), math.Float64bits(b.Scores[id]))
	}
}

func TestTransform(t *testing.T) {
	pt := restaurantProfiles()
	out, warnings := Transform(pt, richness.DomainRestaurant, []string{"total_visits", "total_visits", "nope"}, true)

	require.Len(t, warnings, 1)
	assert.Equal(t, "nope", warnings[0].Column)

	for i, c := range out.Clusters {
		orig := pt.Clusters[i].Features
		assert.Equal(t, math.Log1p(orig["total_visits"]), c.Features["total_visits"], "변환 대상은 ln(1+x)")
		assert.Equal(t, orig["avg_SatisHacmi"], c.Features["avg_SatisHacmi"], "비대상은 원값")
		assert.Equal(t, orig["total_visits"], c.Features["total_visits_original"])
	}
	assert.Equal(t, "total_visits_original", out.Columns[len(out.Columns)-1])

	// 입력은 변경되지 않음
	assert.Equal(t, 3.592412, pt.Clusters[0].Features["total_visits"])
	assert.Len(t, pt.Columns, 3)
}

func TestTransform_WithoutKeepOriginal(t *testing.T) {
	out, _ := Transform(restaurantProfiles(), richness.DomainRestaurant, []string{"total_visits"}, false)
	assert.Len(t, out.Columns, 3)
	_, ok := out.Clusters[0].Features["total_visits_original"]
	assert.False(t, ok)
}

func TestWeightedSum_SkipsAbsent(t *testing.T) {
	got := WeightedSum(map[string]float64{"a": 2}, []richness.FeatureWeight{
		{Feature: "a", Weight: 0.5},
		{Feature: "b", Weight: 100},
	})
	assert.Equal(t, 1.0, got)
}

func TestScore_NaNFeaturePropagates(t *testing.T) {
	pt := &richness.ProfileTable{
		Columns:  []string{"a"},
		Clusters: []richness.ClusterProfile{{ClusterID: 0, Features: map[string]float64{"a": math.NaN()}}},
	}
	res := Score(pt, Spec{Weights: []richness.FeatureWeight{{Feature: "a", Weight: 1}}})
	assert.True(t, math.IsNaN(res.Scores[0]))

	_, rows := res.Rows("S")
	assert.Equal(t, []string{"0", "", ""}, rows[0])
}

func TestResult_Rows(t *testing.T) {
	res := Score(restaurantProfiles(), restaurantSpec())
	header, rows := res.Rows("RichnessScore")

	assert.Equal(t, []string{"cluster", "avg_SatisHacmi", "avg_PopulationInverseScore", "total_visits", "total_visits_original", "RichnessScore"}, header)
	require.Len(t, rows, 2)
	assert.Equal(t, "5", rows[1][0])
	assert.Equal(t, "152.231707", rows[1][4])
}
