package aggregate

import (
	"errors"
	"testing"

	"github.com/n0roo/richness-kit/internal/richness"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverall_AllResolved(t *testing.T) {
	s1, s2, s3 := 1.5, -2.25, 4.0
	w := Weights{Cafe: 2, Ping: 1, Restaurant: 3}
	rec := richness.Record{CafeScore: &s1, PingScore: &s2, RestaurantScore: &s3}

	want := (s1*w.Cafe + s2*w.Ping + s3*w.Restaurant) / (w.Cafe + w.Ping + w.Restaurant)
	assert.Equal(t, want, Overall(rec, w, MissingZero))
	assert.Equal(t, want, Overall(rec, w, MissingRescale))
}

func TestOverall_MissingScoreIsZero(t *testing.T) {
	// device "42": cafe=10, ping=20, restaurant 누락
	rec := richness.Record{
		DeviceID:        "42",
		CafeScore:       richness.Float(10),
		PingScore:       richness.Float(20),
		RestaurantScore: nil,
	}
	got := Overall(rec, DefaultWeights(), MissingZero)
	assert.Equal(t, 40.0/6.0, got)
	assert.InDelta(t, 6.6666, got, 1e-3)
}

func TestOverall_RescalePolicy(t *testing.T) {
	rec := richness.Record{CafeScore: richness.Float(10), PingScore: richness.Float(20)}
	assert.Equal(t, 40.0/3.0, Overall(rec, DefaultWeights(), MissingRescale))

	assert.Equal(t, 0.0, Overall(richness.Record{}, DefaultWeights(), MissingRescale))
}

func TestOverall_ZeroScoreAndNullIndistinguishable(t *testing.T) {
	zero := richness.Record{CafeScore: richness.Float(10), PingScore: richness.Float(0), RestaurantScore: richness.Float(5)}
	null := richness.Record{CafeScore: richness.Float(10), RestaurantScore: richness.Float(5)}
	assert.Equal(t, Overall(zero, DefaultWeights(), MissingZero), Overall(null, DefaultWeights(), MissingZero))
}

func TestApply(t *testing.T) {
	in := []richness.Record{{DeviceID: "a", CafeScore: richness.Float(6)}}
	out := Apply(in, DefaultWeights(), MissingZero)

	require.Len(t, out, 1)
	assert.Equal(t, 2.0, out[0].Overall)
	assert.Equal(t, 0.0, in[0].Overall, "입력은 변경되지 않음")
}

func TestWeights_Validate(t *testing.T) {
	assert.NoError(t, DefaultWeights().Validate())
	assert.True(t, errors.Is(Weights{}.Validate(), ErrInvalidWeights))
	assert.Error(t, Weights{Cafe: -1, Ping: 2}.Validate())
	assert.Equal(t, 6.0, DefaultWeights().Sum())
	assert.Equal(t, 3.0, DefaultWeights().Of(richness.DomainRestaurant))
}
