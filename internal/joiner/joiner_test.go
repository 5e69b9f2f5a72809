package joiner

import (
	"errors"
	"math"
	"testing"

	"github.com/n0roo/richness-kit/internal/richness"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntersect_DropsPartialDevices(t *testing.T) {
	cafe := []richness.Assignment{{DeviceID: "a", ClusterID: 0}, {DeviceID: "b", ClusterID: 1}, {DeviceID: "c", ClusterID: 2}}
	ping := []richness.Assignment{{DeviceID: "c", ClusterID: 9}, {DeviceID: "a", ClusterID: 8}}
	rest := []richness.Assignment{{DeviceID: "a", ClusterID: 5}, {DeviceID: "b", ClusterID: 6}, {DeviceID: "c", ClusterID: 7}}

	in, err := Intersect(cafe, ping, rest)
	require.NoError(t, err)

	// b는 ping에 없으므로 제외, 순서는 cafe 기준
	require.Equal(t, 2, in.Retained())
	assert.Equal(t, richness.Record{DeviceID: "a", CafeCluster: 0, PingCluster: 8, RestaurantCluster: 5}, in.Keys[0])
	assert.Equal(t, "c", in.Keys[1].DeviceID)

	assert.Equal(t, 3, in.Populations[richness.DomainCafe])
	assert.Equal(t, 2, in.Populations[richness.DomainPing])
	assert.Equal(t, 3, in.Populations[richness.DomainRestaurant])
}

func TestIntersect_Empty(t *testing.T) {
	cafe := []richness.Assignment{{DeviceID: "a"}}
	ping := []richness.Assignment{{DeviceID: "b"}}
	rest := []richness.Assignment{{DeviceID: "a"}}

	_, err := Intersect(cafe, ping, rest)
	require.Error(t, err)
	assert.True(t, errors.Is(err, richness.ErrEmptyIntersection))

	var empty *richness.EmptyIntersectionError
	require.True(t, errors.As(err, &empty))
	assert.Equal(t, 1, empty.Populations[richness.DomainPing])
	assert.Contains(t, err.Error(), "cafe=1")
}

func TestIntersect_StringIdentity(t *testing.T) {
	// 정규화된 문자열 기준 비교
	cafe := []richness.Assignment{{DeviceID: "42"}}
	ping := []richness.Assignment{{DeviceID: "42"}}
	rest := []richness.Assignment{{DeviceID: "042"}}

	_, err := Intersect(cafe, ping, rest)
	assert.True(t, errors.Is(err, richness.ErrEmptyIntersection))
}

func TestAttachScores_LeftJoin(t *testing.T) {
	keys := []richness.Record{
		{DeviceID: "42", CafeCluster: 0, PingCluster: 1, RestaurantCluster: 3},
		{DeviceID: "43", CafeCluster: 0, PingCluster: 2, RestaurantCluster: 4},
	}
	scores := map[richness.Domain]map[int]float64{
		richness.DomainCafe:       {0: 10},
		richness.DomainPing:       {1: 20, 2: math.NaN()},
		richness.DomainRestaurant: {4: 30},
	}

	recs, warnings := AttachScores(keys, scores)
	require.Len(t, recs, 2)

	assert.Equal(t, 10.0, *recs[0].CafeScore)
	assert.Equal(t, 20.0, *recs[0].PingScore)
	assert.Nil(t, recs[0].RestaurantScore)

	assert.Nil(t, recs[1].PingScore, "NaN 점수는 null")
	assert.Equal(t, 30.0, *recs[1].RestaurantScore)

	require.Len(t, warnings, 2)
	assert.Equal(t, "ping_richness_score", warnings[0].Column)
	assert.Equal(t, 1, warnings[0].Count)
	assert.Equal(t, "restaurant_richness_score", warnings[1].Column)
	assert.Equal(t, richness.UnresolvedClusterWarning, warnings[1].Kind)
	assert.Contains(t, warnings[1].Detail, "[3]")

	// 입력 키는 변경되지 않음
	assert.Nil(t, keys[0].CafeScore)
}

func TestAttachScores_NoWarningsWhenResolved(t *testing.T) {
	keys := []richness.Record{{DeviceID: "x"}}
	scores := map[richness.Domain]map[int]float64{
		richness.DomainCafe:       {0: 1},
		richness.DomainPing:       {0: 2},
		richness.DomainRestaurant: {0: 3},
	}
	_, warnings := AttachScores(keys, scores)
	assert.Empty(t, warnings)
}
