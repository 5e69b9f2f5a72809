// Package aggregate combines a device's three domain scores into the
// overall richness score.
package aggregate

import (
	"errors"
	"fmt"

	"github.com/n0roo/richness-kit/internal/richness"
)

// MissingPolicy decides how a null domain score enters the overall score
type MissingPolicy string

const (
	// MissingZero substitutes 0 and keeps the full denominator
	MissingZero MissingPolicy = "zero"
	// MissingRescale divides by the weight of the resolved domains only
	MissingRescale MissingPolicy = "rescale"
)

// ErrInvalidWeights indicates a non-positive weight total
var ErrInvalidWeights = errors.New("invalid overall weights")

// Weights are the per-domain weights of the overall score
type Weights struct {
	Cafe       float64 `yaml:"cafe" json:"cafe" validate:"gte=0"`
	Ping       float64 `yaml:"ping" json:"ping" validate:"gte=0"`
	Restaurant float64 `yaml:"restaurant" json:"restaurant" validate:"gte=0"`
}

// DefaultWeights favours restaurant, then cafe, then ping
func DefaultWeights() Weights {
	return Weights{Cafe: 2, Ping: 1, Restaurant: 3}
}

// Of returns the weight of a domain
func (w Weights) Of(d richness.Domain) float64 {
	switch d {
	case richness.DomainCafe:
		return w.Cafe
	case richness.DomainPing:
		return w.Ping
	default:
		return w.Restaurant
	}
}

// Sum returns the total weight
func (w Weights) Sum() float64 {
	return w.Cafe + w.Ping + w.Restaurant
}

// Validate checks the weights can be used as a denominator
func (w Weights) Validate() error {
	if w.Cafe < 0 || w.Ping < 0 || w.Restaurant < 0 {
		return fmt.Errorf("%w: 음수 가중치 (%+v)", ErrInvalidWeights, w)
	}
	if w.Sum() <= 0 {
		return fmt.Errorf("%w: 가중치 합이 0", ErrInvalidWeights)
	}
	return nil
}

// Overall computes the weighted score of one record.
//
// Under MissingZero a null domain score counts as 0 and its weight stays in
// the denominator, so a partially resolved device scores lower than a fully
// resolved one with the same other scores.
func Overall(rec richness.Record, w Weights, policy MissingPolicy) float64 {
	cafe, cafeOK := value(rec.CafeScore)
	ping, pingOK := value(rec.PingScore)
	rest, restOK := value(rec.RestaurantScore)

	num := cafe*w.Cafe + ping*w.Ping + rest*w.Restaurant

	denom := w.Sum()
	if policy == MissingRescale {
		denom = 0
		if cafeOK {
			denom += w.Cafe
		}
		if pingOK {
			denom += w.Ping
		}
		if restOK {
			denom += w.Restaurant
		}
		if denom == 0 {
			return 0
		}
	}
	return num / denom
}

// Apply returns copies of recs with Overall filled in
func Apply(recs []richness.Record, w Weights, policy MissingPolicy) []richness.Record {
	out := make([]richness.Record, len(recs))
	for i, r := range recs {
		r.Overall = Overall(r, w, policy)
		out[i] = r
	}
	return out
}

func value(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}
