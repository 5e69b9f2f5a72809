package profile

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/n0roo/richness-kit/internal/richness"
	"github.com/n0roo/richness-kit/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromTable_Rows(t *testing.T) {
	in := "cluster,total_visits,VenueType_R_rate\n0,3.59,0.80\n1,4.95,0.09\n"
	raw, err := table.ReadFrom(strings.NewReader(in), table.DefaultFormat)
	require.NoError(t, err)

	pt, issues, err := FromTable(raw, Source{Layout: LayoutRows})
	require.NoError(t, err)
	assert.Empty(t, issues)

	assert.Equal(t, []string{"total_visits", "VenueType_R_rate"}, pt.Columns)
	require.Len(t, pt.Clusters, 2)
	assert.Equal(t, 1, pt.Clusters[1].ClusterID)
	assert.Equal(t, 4.95, pt.Clusters[1].Features["total_visits"])
}

func TestFromTable_Transposed(t *testing.T) {
	// 피처가 행, 클러스터가 열
	in := ",0,1,2\ntotal_pings,10,20,30\nratio_in_hotels,0.1,0.2,x\n"
	raw, err := table.ReadFrom(strings.NewReader(in), table.DefaultFormat)
	require.NoError(t, err)

	pt, issues, err := FromTable(raw, Source{Layout: LayoutColumns})
	require.NoError(t, err)

	assert.Equal(t, []string{"total_pings", "ratio_in_hotels"}, pt.Columns)
	require.Len(t, pt.Clusters, 3)
	assert.Equal(t, 2, pt.Clusters[2].ClusterID)
	assert.Equal(t, 30.0, pt.Clusters[2].Features["total_pings"])

	require.Len(t, issues, 1)
	assert.Equal(t, "ratio_in_hotels", issues[0].Feature)
	assert.True(t, math.IsNaN(pt.Clusters[2].Features["ratio_in_hotels"]))
}

func TestFromTable_EmptyCellsAreIssues(t *testing.T) {
	in := "cluster,total_visits,VenueType_R_rate\n0,,0.80\n1,4.95\n"
	raw, err := table.ReadFrom(strings.NewReader(in), table.DefaultFormat)
	require.NoError(t, err)

	pt, issues, err := FromTable(raw, Source{Layout: LayoutRows})
	require.NoError(t, err)

	require.Len(t, issues, 2)
	assert.Equal(t, Issue{ClusterID: 0, Feature: "total_visits", Value: ""}, issues[0])
	assert.Equal(t, Issue{ClusterID: 1, Feature: "VenueType_R_rate", Value: ""}, issues[1])
	assert.True(t, math.IsNaN(pt.Clusters[0].Features["total_visits"]))
	assert.True(t, math.IsNaN(pt.Clusters[1].Features["VenueType_R_rate"]))
}

func TestFromTable_DecimalComma(t *testing.T) {
	in := "cluster;avg_QualityScore\n0;0,75\n"
	f := table.Format{Delimiter: ';', Decimal: ','}
	raw, err := table.ReadFrom(strings.NewReader(in), f)
	require.NoError(t, err)

	pt, _, err := FromTable(raw, Source{Format: f})
	require.NoError(t, err)
	assert.Equal(t, 0.75, pt.Clusters[0].Features["avg_QualityScore"])
}

func TestFromTable_Errors(t *testing.T) {
	raw, err := table.ReadFrom(strings.NewReader("id,a\n0,1\n"), table.DefaultFormat)
	require.NoError(t, err)
	_, _, err = FromTable(raw, Source{})
	assert.Error(t, err, "cluster 컬럼이 없으면 실패")

	raw, err = table.ReadFrom(strings.NewReader("cluster,a\n0,1\n0,2\n"), table.DefaultFormat)
	require.NoError(t, err)
	_, _, err = FromTable(raw, Source{})
	assert.Error(t, err, "중복 클러스터는 실패")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cafe.csv")
	require.NoError(t, os.WriteFile(path, []byte("cluster,a\n7,1.5\n"), 0644))

	pt, _, err := Load(Source{Path: path, Format: table.DefaultFormat})
	require.NoError(t, err)
	assert.Equal(t, 7, pt.Clusters[0].ClusterID)
}

func TestLoad_Builtin(t *testing.T) {
	assert.Equal(t, []string{"builtin:cafe", "builtin:restaurant"}, Builtins())

	cafe, issues, err := Load(Source{Path: "builtin:cafe", Format: table.DefaultFormat, Layout: LayoutRows})
	require.NoError(t, err)
	assert.Empty(t, issues)
	require.Len(t, cafe.Clusters, 10)
	assert.Len(t, cafe.Columns, 15)
	assert.Equal(t, 7, cafe.Clusters[7].ClusterID)
	assert.Equal(t, 77.677356, cafe.Clusters[7].Features["avg_visits_per_week"])

	restaurant, issues, err := Load(Source{Path: "builtin:restaurant", Format: table.DefaultFormat, Layout: LayoutRows})
	require.NoError(t, err)
	assert.Empty(t, issues)
	require.Len(t, restaurant.Clusters, 7)
	assert.Equal(t, 152.231707, restaurant.Clusters[5].Features["total_visits"])

	_, _, err = Load(Source{Path: "builtin:bakery", Format: table.DefaultFormat})
	assert.True(t, errors.Is(err, richness.ErrMissingInput))
	assert.False(t, HasBuiltin("builtin:bakery"))
	assert.False(t, HasBuiltin("cafe"))
}
